package lexer

import (
	"errors"
	"fmt"

	"nilan/token"
)

// ErrEOF is returned by Next once the source text is exhausted. Running
// out of input is a distinct error, not a token — the parser is the one
// that turns this into a usable `eof` token for its one-token lookahead.
var ErrEOF = errors.New("🤖 end of file reached, no new tokens can be generated")

// Kind distinguishes the lexer's four named error variants.
type Kind int

const (
	InvalidCharacter Kind = iota
	NumberExpected
	InvalidOctal
	InvalidBinary
)

// Error is the lexer's error type: a Kind, the offending span, and — for
// InvalidCharacter/InvalidOctal/InvalidBinary — the offending text.
type Error struct {
	Kind   Kind
	Span   token.Span
	Detail string
}

func (e Error) Error() string {
	switch e.Kind {
	case NumberExpected:
		return fmt.Sprintf("💥 Nilan Lexer error %s: number expected after radix prefix", e.Span)
	case InvalidOctal:
		return fmt.Sprintf("💥 Nilan Lexer error %s: invalid digit in octal literal %q", e.Span, e.Detail)
	case InvalidBinary:
		return fmt.Sprintf("💥 Nilan Lexer error %s: invalid digit in binary literal %q", e.Span, e.Detail)
	default:
		return fmt.Sprintf("💥 Nilan Lexer error %s: invalid character %q", e.Span, e.Detail)
	}
}
