package compiler

import (
	"fmt"

	"nilan/token"
)

// SemanticError is a compile-time error detected after parsing succeeds —
// in practice, only the post-FunctionDecl recursion check.
type SemanticError struct {
	Span    token.Span
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError %s: %s", e.Span, e.Message)
}

// DeveloperError signals an invariant the generator itself violated (e.g. a
// Decode failure over its own freshly-emitted bytes) — never the user's
// fault.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
