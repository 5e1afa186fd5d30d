// expressions.go contains every AST node type. Nilan has no separate
// statement grammar — every node, including declarations and function
// decls, evaluates and leaves a value — so all node types live here
// together rather than split across separate expression/statement files.
package ast

import (
	"nilan/token"
)

// Number is a floating-point literal, e.g. `12`, `0xFF`, `.15`.
type Number struct {
	Value   float64
	SrcSpan token.Span
}

func (n Number) Accept(v Visitor) (any, error) { return v.VisitNumber(n) }
func (n Number) Span() token.Span              { return n.SrcSpan }

// Identifier is a bare reference to a previously-bound variable, e.g. `x`.
type Identifier struct {
	Name    string
	SrcSpan token.Span
}

func (n Identifier) Accept(v Visitor) (any, error) { return v.VisitIdentifier(n) }
func (n Identifier) Span() token.Span              { return n.SrcSpan }

// String is a decoded string literal, e.g. `"hi\n"` -> `hi` + newline.
type String struct {
	Value   string
	SrcSpan token.Span
}

func (n String) Accept(v Visitor) (any, error) { return v.VisitString(n) }
func (n String) Span() token.Span              { return n.SrcSpan }

// Null is the `Null` literal.
type Null struct {
	SrcSpan token.Span
}

func (n Null) Accept(v Visitor) (any, error) { return v.VisitNull(n) }
func (n Null) Span() token.Span              { return n.SrcSpan }

// UnaryOp is a prefix `+`/`-` applied to a single operand.
type UnaryOp struct {
	Op      Operator
	Rhs     Node
	SrcSpan token.Span
}

func (n UnaryOp) Accept(v Visitor) (any, error) { return v.VisitUnaryOp(n) }
func (n UnaryOp) Span() token.Span              { return n.SrcSpan }

// BinaryOp is a left-associative binary operator expression.
type BinaryOp struct {
	Op      Operator
	Lhs     Node
	Rhs     Node
	SrcSpan token.Span
}

func (n BinaryOp) Accept(v Visitor) (any, error) { return v.VisitBinaryOp(n) }
func (n BinaryOp) Span() token.Span              { return n.SrcSpan }

// Declare is `let x` with no initializer: binds x to Null.
type Declare struct {
	Name    string
	SrcSpan token.Span
}

func (n Declare) Accept(v Visitor) (any, error) { return v.VisitDeclare(n) }
func (n Declare) Span() token.Span              { return n.SrcSpan }

// DeclareAssign is `let x = value`: binds x to value's result.
type DeclareAssign struct {
	Name    string
	Value   Node
	SrcSpan token.Span
}

func (n DeclareAssign) Accept(v Visitor) (any, error) { return v.VisitDeclareAssign(n) }
func (n DeclareAssign) Span() token.Span              { return n.SrcSpan }

// Assign is `x = value` for a name already bound as a variable.
type Assign struct {
	Name    string
	Value   Node
	SrcSpan token.Span
}

func (n Assign) Accept(v Visitor) (any, error) { return v.VisitAssign(n) }
func (n Assign) Span() token.Span              { return n.SrcSpan }

// AssignOp is `x += value` and its sibling compound-assignment forms.
type AssignOp struct {
	Name    string
	Op      Operator
	Value   Node
	SrcSpan token.Span
}

func (n AssignOp) Accept(v Visitor) (any, error) { return v.VisitAssignOp(n) }
func (n AssignOp) Span() token.Span              { return n.SrcSpan }

// Output wraps an expression terminated by `:`, requesting its result be
// appended to the program's outputs list.
type Output struct {
	Inner   Node
	SrcSpan token.Span
}

func (n Output) Accept(v Visitor) (any, error) { return v.VisitOutput(n) }
func (n Output) Span() token.Span              { return n.SrcSpan }

// FunctionCall invokes a built-in or user-defined function by name.
type FunctionCall struct {
	Name    string
	Args    []Node
	SrcSpan token.Span
}

func (n FunctionCall) Accept(v Visitor) (any, error) { return v.VisitFunctionCall(n) }
func (n FunctionCall) Span() token.Span              { return n.SrcSpan }

// FunctionDecl declares a single-expression user function: `let f a b = body`.
type FunctionDecl struct {
	Name    string
	Args    []string
	Body    Node
	SrcSpan token.Span
}

func (n FunctionDecl) Accept(v Visitor) (any, error) { return v.VisitFunctionDecl(n) }
func (n FunctionDecl) Span() token.Span              { return n.SrcSpan }

// Print is the variadic built-in `print(...)`.
type Print struct {
	Args    []Node
	SrcSpan token.Span
}

func (n Print) Accept(v Visitor) (any, error) { return v.VisitPrint(n) }
func (n Print) Span() token.Span              { return n.SrcSpan }

// Delete removes a name from both symbol tables: `delete y`.
type Delete struct {
	Name    string
	SrcSpan token.Span
}

func (n Delete) Accept(v Visitor) (any, error) { return v.VisitDelete(n) }
func (n Delete) Span() token.Span              { return n.SrcSpan }
