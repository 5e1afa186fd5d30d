package token

import "fmt"

// Span is a half-open byte-offset range `[Start, End)` into the source text
// that produced a Token, AST node, or error. `Start == End` denotes a point
// location (used for synthetic tokens and point-like errors).
type Span struct {
	Start int
	End   int
}

// NullSpan is the zero-value span used by synthetic tokens that were never
// read from source text.
func NullSpan() Span {
	return Span{Start: 0, End: 0}
}

// NewSpan constructs a Span covering `[start, end)`.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Merge returns the smallest span covering both `s` and `other`. Used when an
// AST node's span must cover several child spans (e.g. a FunctionCall's span
// covering its name through its closing paren).
func (s Span) Merge(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// String renders a point span as `[n]` and a range span as `[start:end]`.
func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("[%d]", s.Start)
	}
	return fmt.Sprintf("[%d:%d]", s.Start, s.End)
}
