package token

import (
	"fmt"
)

const (
	// delimiters
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"

	// naming given by programmer, i.e. myVar, sq, f ..etc
	IDENTIFIER TokenType = "IDENTIFIER"
	STRING     TokenType = "STRING"
	NUMBER     TokenType = "NUMBER"

	// operators
	EQUAL TokenType = "="

	PLUS        TokenType = "+"
	PLUS_EQUAL  TokenType = "+="
	MINUS       TokenType = "-"
	MINUS_EQUAL TokenType = "-="
	STAR        TokenType = "*"
	STAR_EQUAL  TokenType = "*="
	SLASH       TokenType = "/"
	SLASH_EQUAL TokenType = "/="

	EXPONENT       TokenType = "**"
	EXPONENT_EQUAL TokenType = "**="

	AMP         TokenType = "&"
	AMP_EQUAL   TokenType = "&="
	PIPE        TokenType = "|"
	PIPE_EQUAL  TokenType = "|="
	CARET       TokenType = "^"
	CARET_EQUAL TokenType = "^="

	SHL       TokenType = "<<"
	SHL_EQUAL TokenType = "<<="
	SHR       TokenType = ">>"
	SHR_EQUAL TokenType = ">>="

	// NULLTOK is never produced by the lexer; it is the parser's
	// "nothing read yet" sentinel before the first token is pulled.
	NULLTOK TokenType = "NULL_TOKEN"

	// EOF is materialized by the parser for one-token lookahead. The lexer
	// itself reports running out of input as an error, not a token — the
	// parser is what turns that into a usable sentinel.
	EOF TokenType = "EOF"
)

// TokenType classifies a Token. Nilan has no reserved words at the lexer
// level — `let`, `delete`, `Null` and `print` are ordinary IDENTIFIER tokens
// that only the parser gives meaning to, in `base()`.
type TokenType string

// NumberBase records which radix a NUMBER token's lexeme was written in, so
// the parser knows how to turn the lexeme into a float64.
//
// Example:
//
//	0b1010  -> BaseBinary
//	0o17    -> BaseOctal
//	0xFF    -> BaseHex
//	12.5    -> BaseReal
type NumberBase int

const (
	BaseReal NumberBase = iota
	BaseBinary
	BaseOctal
	BaseHex
)

func (b NumberBase) String() string {
	switch b {
	case BaseBinary:
		return "binary"
	case BaseOctal:
		return "octal"
	case BaseHex:
		return "hexadecimal"
	default:
		return "real"
	}
}

// Token represents a single lexical unit produced by the lexer: its type,
// the exact source text it came from, the radix when Type is NUMBER, and
// the span of source bytes it occupies.
//
// Fields:
//   - Type: The classification of the token (NUMBER, IDENTIFIER, an
//     operator, a delimiter, ...).
//   - Lexeme: The exact string from the source that produced this token.
//   - NumberBase: Meaningful only when Type == NUMBER; which radix the
//     lexeme is written in.
//   - Span: The byte-offset range `[Start, End)` the token occupies.
type Token struct {
	Type       TokenType
	Lexeme     string
	NumberBase NumberBase
	Span       Span
}

// New constructs a Token covering the given span.
func New(tokenType TokenType, lexeme string, span Span) Token {
	return Token{Type: tokenType, Lexeme: lexeme, Span: span}
}

// NewNumber constructs a NUMBER token tagged with the radix its lexeme was
// read in.
func NewNumber(lexeme string, base NumberBase, span Span) Token {
	return Token{Type: NUMBER, Lexeme: lexeme, NumberBase: base, Span: span}
}

// Null returns the synthetic "nothing read yet" token the parser uses to
// seed its one-token lookahead before the first real token is pulled.
func Null() Token {
	return Token{Type: NULLTOK, Span: NullSpan()}
}

// EOFAt returns the synthetic end-of-file token the parser materializes
// once the lexer reports it has run out of input, at byte offset `pos`.
func EOFAt(pos int) Token {
	return Token{Type: EOF, Span: NewSpan(pos, pos)}
}

// compoundBases maps each compound-assignment token type to the plain
// binary-operator token type it pairs with, e.g. PLUS_EQUAL -> PLUS.
var compoundBases = map[TokenType]TokenType{
	PLUS_EQUAL:     PLUS,
	MINUS_EQUAL:    MINUS,
	STAR_EQUAL:     STAR,
	SLASH_EQUAL:    SLASH,
	EXPONENT_EQUAL: EXPONENT,
	AMP_EQUAL:      AMP,
	PIPE_EQUAL:     PIPE,
	CARET_EQUAL:    CARET,
	SHL_EQUAL:      SHL,
	SHR_EQUAL:      SHR,
}

// IsCompoundAssign reports whether tt is one of the `+=`-shaped token types.
func IsCompoundAssign(tt TokenType) bool {
	_, ok := compoundBases[tt]
	return ok
}

// BaseOf returns the plain binary-operator token type underlying a
// compound-assignment token type, e.g. BaseOf(PLUS_EQUAL) == PLUS.
func BaseOf(tt TokenType) TokenType {
	return compoundBases[tt]
}

// String returns a human-readable representation of the Token, formatted to
// show its type and lexeme. Intended for debugging and logging only.
func (t Token) String() string {
	return fmt.Sprintf("Token {Type: %s, Value: %q, Span: %s}", t.Type, t.Lexeme, t.Span)
}
