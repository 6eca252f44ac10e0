package cpp

import "fmt"

// ErrorKind is the closed set of fault codes the preprocessor can
// surface. Once a non-None kind is recorded it is sticky: see fail in
// preprocessor.go.
type ErrorKind int

const (
	None ErrorKind = iota
	UnexpectedEOF
	SyntaxError
	InvalidString
	InvalidPath
	ExpectedIdentifier
	MismatchIf
	IncludeError
	ReadFailed
	ExpressionTooComplex
	InvalidExpression
	DivisionByZero
	ErrorDirective
)

var errorKindNames = [...]string{
	None:                 "none",
	UnexpectedEOF:        "unexpected_eof",
	SyntaxError:          "syntax_error",
	InvalidString:        "invalid_string",
	InvalidPath:          "invalid_path",
	ExpectedIdentifier:   "expected_identifier",
	MismatchIf:           "mismatch_if",
	IncludeError:         "include_error",
	ReadFailed:           "read_failed",
	ExpressionTooComplex: "expression_too_complex",
	InvalidExpression:    "invalid_expression",
	DivisionByZero:       "division_by_zero",
	ErrorDirective:       "error_directive",
}

func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(errorKindNames) {
		return "unknown"
	}
	return errorKindNames[k]
}

// Error is the out-of-band fault the preprocessor carries once
// something goes wrong. It names the kind, the source that was active
// when the fault occurred, and the 1-based line number within that
// source.
type Error struct {
	Kind       ErrorKind
	SourceName string
	Line       int
	// Message carries the #error directive's text. Every other kind
	// leaves it empty.
	Message string
}

func (e *Error) Error() string {
	if e == nil || e.Kind == None {
		return "none"
	}
	if e.Message != "" {
		return fmt.Sprintf("%s at %s:%d: %s", e.Kind, e.SourceName, e.Line, e.Message)
	}
	return fmt.Sprintf("%s at %s:%d", e.Kind, e.SourceName, e.Line)
}
