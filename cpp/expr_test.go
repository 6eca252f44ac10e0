package cpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evalFrame(t *testing.T, pp *Preprocessor, expr string) (int64, bool) {
	t.Helper()
	f := newFrame(expr+"\n", "expr_test")
	return pp.evaluateExpression(f)
}

func TestEvaluateExpressionArithmeticPrecedence(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "2 + 3 * 4")
	require.True(t, ok)
	require.EqualValues(t, 14, v)
	require.Nil(t, pp.Err())
}

func TestEvaluateExpressionComparisonAndEquality(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "2 + 3 * 4 == 14")
	require.True(t, ok)
	require.EqualValues(t, 1, v)
}

func TestEvaluateExpressionParentheses(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "(2 + 3) * 4")
	require.True(t, ok)
	require.EqualValues(t, 20, v)
}

func TestEvaluateExpressionLogicalOperators(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "1 && 0 || 1")
	require.True(t, ok)
	require.EqualValues(t, 1, v)
}

func TestEvaluateExpressionUnaryNot(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "!0")
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	v, ok = evalFrame(t, pp, "!!5")
	require.True(t, ok)
	require.EqualValues(t, 1, v, "!!E must gate identically to E")
}

func TestEvaluateExpressionDefinedOperator(t *testing.T) {
	pp := New()
	pp.Define("A", "")

	v, ok := evalFrame(t, pp, "defined(A)")
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	v, ok = evalFrame(t, pp, "defined(B)")
	require.True(t, ok)
	require.EqualValues(t, 0, v)
}

func TestEvaluateExpressionDefinedOperandNotMacroExpanded(t *testing.T) {
	pp := New()
	pp.Define("ALIAS", "A")
	pp.Define("A", "")

	// defined(ALIAS) must ask about ALIAS itself, not expand it to A
	// first.
	v, ok := evalFrame(t, pp, "defined(ALIAS)")
	require.True(t, ok)
	require.EqualValues(t, 1, v)
}

func TestEvaluateExpressionUndefinedIdentifierIsZero(t *testing.T) {
	pp := New()
	v, ok := evalFrame(t, pp, "UNDEFINED_THING == 0")
	require.True(t, ok)
	require.EqualValues(t, 1, v)
}

func TestEvaluateExpressionMacroExpandedBeforeEvaluation(t *testing.T) {
	pp := New()
	pp.Define("N", "3")
	v, ok := evalFrame(t, pp, "N * N")
	require.True(t, ok)
	require.EqualValues(t, 9, v)
}

func TestEvaluateExpressionDivisionByZero(t *testing.T) {
	pp := New()
	_, ok := evalFrame(t, pp, "1 / 0")
	require.False(t, ok)
	require.NotNil(t, pp.Err())
	require.Equal(t, DivisionByZero, pp.Err().Kind)
}

func TestEvaluateExpressionMismatchedParenIsInvalid(t *testing.T) {
	pp := New()
	_, ok := evalFrame(t, pp, "(1 + 2")
	require.False(t, ok)
	require.Equal(t, InvalidExpression, pp.Err().Kind)
}

func TestEvaluateExpressionFloatLiteralIsSyntaxError(t *testing.T) {
	pp := New()
	_, ok := evalFrame(t, pp, "1.5 + 1")
	require.False(t, ok)
	require.Equal(t, SyntaxError, pp.Err().Kind)
}

func TestEvaluateExpressionEquivalentToParenthesizedForm(t *testing.T) {
	pp1 := New()
	v1, ok1 := evalFrame(t, pp1, "1 + 2 * 3 == 7")
	require.True(t, ok1)

	pp2 := New()
	v2, ok2 := evalFrame(t, pp2, "(1 + 2 * 3) == (7)")
	require.True(t, ok2)

	require.Equal(t, v1, v2)
}
