package cpp

import "strconv"

// exprStackCap is the fixed capacity of both the operator and value
// stacks used by the shunting-yard evaluator. Overflowing either is
// ExpressionTooComplex.
const exprStackCap = 16

// exprOp is one entry on the operator stack: the token type (used both
// to decide precedence and, for ParenLeft, as a sentinel the
// precedence comparison never pops past) and whether it was pushed as
// a unary prefix operator (only logical_not can be).
type exprOp struct {
	typ   TokenType
	unary bool
}

// evaluateExpression implements spec.md §4.6: a shunting-yard integer
// evaluator over the tokens of the current line, used by #if, #elif
// and #eval. Tokens are pulled through coreNextToken with macro
// expansion enabled, except for the operand of "defined(...)" which
// must not be macro-expanded.
func (pp *Preprocessor) evaluateExpression(f *frame) (int64, bool) {
	var values []int64
	var ops []exprOp
	expectOperand := true

	pushValue := func(v int64) bool {
		if len(values) >= exprStackCap {
			pp.fail(ExpressionTooComplex, f)
			return false
		}
		values = append(values, v)
		return true
	}
	pushOp := func(op exprOp) bool {
		if len(ops) >= exprStackCap {
			pp.fail(ExpressionTooComplex, f)
			return false
		}
		ops = append(ops, op)
		return true
	}
	popValue := func() (int64, bool) {
		if len(values) == 0 {
			pp.fail(InvalidExpression, f)
			return 0, false
		}
		v := values[len(values)-1]
		values = values[:len(values)-1]
		return v, true
	}

	apply := func(op exprOp) bool {
		if op.unary {
			v, ok := popValue()
			if !ok {
				return false
			}
			if v == 0 {
				return pushValue(1)
			}
			return pushValue(0)
		}
		rhs, ok := popValue()
		if !ok {
			return false
		}
		lhs, ok := popValue()
		if !ok {
			return false
		}
		switch op.typ {
		case Add:
			return pushValue(lhs + rhs)
		case Subtract:
			return pushValue(lhs - rhs)
		case Multiply:
			return pushValue(lhs * rhs)
		case Divide:
			if rhs == 0 {
				pp.fail(DivisionByZero, f)
				return false
			}
			return pushValue(lhs / rhs)
		case Less:
			return pushValue(boolInt(lhs < rhs))
		case LessEqual:
			return pushValue(boolInt(lhs <= rhs))
		case Greater:
			return pushValue(boolInt(lhs > rhs))
		case GreaterEqual:
			return pushValue(boolInt(lhs >= rhs))
		case Equal:
			return pushValue(boolInt(lhs == rhs))
		case NotEqual:
			return pushValue(boolInt(lhs != rhs))
		case LogicalAnd:
			return pushValue(boolInt(lhs != 0 && rhs != 0))
		case LogicalOr:
			return pushValue(boolInt(lhs != 0 || rhs != 0))
		}
		pp.fail(InvalidExpression, f)
		return false
	}

	// drainOne pops the top operator and applies it. Callers check for
	// a ParenLeft sentinel before calling it.
	drainOne := func() bool {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		return apply(top)
	}

	for {
		tok, end, ok := pp.coreNextToken(f, true)
		if !ok {
			return 0, false
		}
		if end || tok.Type == EndOfLine {
			break
		}

		if expectOperand {
			switch tok.Type {
			case Number:
				v, ok := parseExprNumber(tok.Text)
				if !ok {
					pp.fail(SyntaxError, f)
					return 0, false
				}
				if !pushValue(v) {
					return 0, false
				}
				expectOperand = false
			case Identifier:
				if tok.Text == "defined" {
					v, ok := pp.evalDefined(f)
					if !ok {
						return 0, false
					}
					if !pushValue(v) {
						return 0, false
					}
				} else {
					// Identifiers that are not macros (macros
					// were already substituted by coreNextToken)
					// are all considered to be the number zero.
					if !pushValue(0) {
						return 0, false
					}
				}
				expectOperand = false
			case LogicalNot:
				if !pushOp(exprOp{typ: LogicalNot, unary: true}) {
					return 0, false
				}
				// still expecting an operand
			case ParenLeft:
				if !pushOp(exprOp{typ: ParenLeft}) {
					return 0, false
				}
			default:
				pp.fail(InvalidExpression, f)
				return 0, false
			}
			continue
		}

		switch tok.Type {
		case ParenRight:
			closed := false
			for len(ops) > 0 {
				if ops[len(ops)-1].typ == ParenLeft {
					ops = ops[:len(ops)-1]
					closed = true
					break
				}
				if !drainOne() {
					return 0, false
				}
			}
			if !closed {
				pp.fail(InvalidExpression, f)
				return 0, false
			}
			expectOperand = false
		case Add, Subtract, Multiply, Divide, Less, LessEqual, Greater,
			GreaterEqual, Equal, NotEqual, LogicalAnd, LogicalOr:
			for len(ops) > 0 && ops[len(ops)-1].typ != ParenLeft && tok.Type >= ops[len(ops)-1].typ {
				if !drainOne() {
					return 0, false
				}
			}
			if !pushOp(exprOp{typ: tok.Type}) {
				return 0, false
			}
			expectOperand = true
		default:
			pp.fail(InvalidExpression, f)
			return 0, false
		}
	}

	for len(ops) > 0 {
		if ops[len(ops)-1].typ == ParenLeft {
			pp.fail(InvalidExpression, f)
			return 0, false
		}
		if !drainOne() {
			return 0, false
		}
	}

	if len(values) != 1 {
		pp.fail(InvalidExpression, f)
		return 0, false
	}
	return values[0], true
}

// evalDefined parses the "( NAME )" that must follow a `defined`
// identifier in an #if/#elif/#eval expression. The name itself must
// not be macro-expanded, so tokens here are read with expansion
// disabled.
func (pp *Preprocessor) evalDefined(f *frame) (int64, bool) {
	lparen, end, ok := pp.coreNextToken(f, false)
	if !ok {
		return 0, false
	}
	if end || lparen.Type != ParenLeft {
		pp.fail(InvalidExpression, f)
		return 0, false
	}
	name, end, ok := pp.coreNextToken(f, false)
	if !ok {
		return 0, false
	}
	if end || name.Type != Identifier {
		pp.fail(InvalidExpression, f)
		return 0, false
	}
	rparen, end, ok := pp.coreNextToken(f, false)
	if !ok {
		return 0, false
	}
	if end || rparen.Type != ParenRight {
		pp.fail(InvalidExpression, f)
		return 0, false
	}
	if _, found := pp.macros.find(name.Text); found {
		return 1, true
	}
	return 0, true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseExprNumber accepts only plain base-10 integer lexemes. Float
// markers ('.', exponent, trailing 'f') are lexically valid Number
// tokens but spec.md leaves their integer interpretation undefined;
// this implementation treats them as a syntax error rather than
// silently truncating.
func parseExprNumber(text string) (int64, bool) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', 'e', 'E', 'f':
			return 0, false
		}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
