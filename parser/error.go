package parser

import (
	"fmt"

	"nilan/token"
)

// SyntaxError is the parser's own error type: a message plus the
// byte-offset span of source it concerns. Lexer errors met while parsing
// are returned unchanged as lexer.Error values.
type SyntaxError struct {
	Span    token.Span
	Message string
}

func CreateSyntaxError(span token.Span, message string) SyntaxError {
	return SyntaxError{Span: span, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 Nilan Syntax error %s: %s", e.Span, e.Message)
}

// ErrNoResult is the sentinel parseTopLevel returns when the token stream is empty
// at a top-level boundary — an eof in that position is not an error.
var ErrNoResult = fmt.Errorf("🤖 no result: end of input reached at a top-level boundary")
