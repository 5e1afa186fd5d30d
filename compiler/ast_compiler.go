package compiler

// This file implements the Generator, which lowers the abstract syntax
// tree (AST) directly to the self-contained, symbolic-name-carrying opcode
// set in code.go, and surfaces errors as ordinary returns so that a
// top-level parse or lowering failure can be contained and reported
// without unwinding through a panic.

import (
	"fmt"

	"nilan/ast"
	"nilan/parser"
)

// Generator is a single ast.Visitor pass lowering one node at a time. It
// holds no symbol-table state of its own — the parser already validated
// every reference before a node reaches here — only the instruction stream
// being built.
type Generator struct {
	ins Instructions
}

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) emit(ins Instructions) {
	g.ins = append(g.ins, ins...)
}

// lower dispatches n to the matching VisitX method via its Accept.
func (g *Generator) lower(n ast.Node) error {
	_, err := n.Accept(g)
	return err
}

func (g *Generator) VisitNumber(n ast.Number) (any, error) {
	g.emit(MakeLoadNumber(n.Value))
	return nil, nil
}

func (g *Generator) VisitIdentifier(n ast.Identifier) (any, error) {
	g.emit(MakeName(OpCallSymbol, n.Name))
	return nil, nil
}

func (g *Generator) VisitString(n ast.String) (any, error) {
	g.emit(MakeLoadString(n.Value))
	return nil, nil
}

func (g *Generator) VisitNull(n ast.Null) (any, error) {
	g.emit(MakeSimple(OpNull))
	return nil, nil
}

func (g *Generator) VisitUnaryOp(n ast.UnaryOp) (any, error) {
	if err := g.lower(n.Rhs); err != nil {
		return nil, err
	}
	g.emit(MakeOperator(OpUnary, n.Op))
	return nil, nil
}

func (g *Generator) VisitBinaryOp(n ast.BinaryOp) (any, error) {
	if err := g.lower(n.Lhs); err != nil {
		return nil, err
	}
	if err := g.lower(n.Rhs); err != nil {
		return nil, err
	}
	g.emit(MakeOperator(OpBinary, n.Op))
	return nil, nil
}

func (g *Generator) VisitDeclare(n ast.Declare) (any, error) {
	g.emit(MakeName(OpLoadSymbolName, n.Name))
	return nil, nil
}

func (g *Generator) VisitDeclareAssign(n ast.DeclareAssign) (any, error) {
	if err := g.lower(n.Value); err != nil {
		return nil, err
	}
	g.emit(MakeName(OpLoadSymbol, n.Name))
	return nil, nil
}

func (g *Generator) VisitAssign(n ast.Assign) (any, error) {
	if err := g.lower(n.Value); err != nil {
		return nil, err
	}
	g.emit(MakeName(OpReloadSymbol, n.Name))
	return nil, nil
}

func (g *Generator) VisitAssignOp(n ast.AssignOp) (any, error) {
	if err := g.lower(n.Value); err != nil {
		return nil, err
	}
	g.emit(MakeReloadSymbolOp(n.Name, n.Op))
	return nil, nil
}

func (g *Generator) VisitOutput(n ast.Output) (any, error) {
	if err := g.lower(n.Inner); err != nil {
		return nil, err
	}
	g.emit(MakeSimple(OpOutput))
	return nil, nil
}

func (g *Generator) VisitFunctionCall(n ast.FunctionCall) (any, error) {
	for _, arg := range n.Args {
		if err := g.lower(arg); err != nil {
			return nil, err
		}
	}
	g.emit(MakeName(OpFunctionCall, n.Name))
	return nil, nil
}

func (g *Generator) VisitPrint(n ast.Print) (any, error) {
	for _, arg := range n.Args {
		if err := g.lower(arg); err != nil {
			return nil, err
		}
	}
	g.emit(MakePrint(len(n.Args)))
	return nil, nil
}

func (g *Generator) VisitDelete(n ast.Delete) (any, error) {
	g.emit(MakeName(OpDelete, n.Name))
	return nil, nil
}

// VisitFunctionDecl emits the placeholder header, each argument name, the
// lowered body, patches the header's end-offset field, then runs the
// recursion check over the just-emitted body range.
func (g *Generator) VisitFunctionDecl(n ast.FunctionDecl) (any, error) {
	headerPC := len(g.ins)
	g.emit(MakeFunctionDeclHeader(n.Name, len(n.Args)))
	for _, arg := range n.Args {
		g.emit(MakeName(OpArgumentName, arg))
	}

	bodyStart := len(g.ins)
	if err := g.lower(n.Body); err != nil {
		return nil, err
	}
	bodyEnd := len(g.ins)
	PatchEnd(g.ins, headerPC, n.Name, uint16(bodyEnd))

	if err := g.checkNoSelfCall(n, bodyStart, bodyEnd); err != nil {
		return nil, err
	}
	return nil, nil
}

// checkNoSelfCall scans the instruction range just emitted for n's body for
// any FunctionCall naming n itself: single-expression bodies make
// recursion meaningless, so this is a hard compile-time rule.
func (g *Generator) checkNoSelfCall(n ast.FunctionDecl, start, end int) error {
	for pc := start; pc < end; {
		instr, err := Decode(g.ins, pc)
		if err != nil {
			return DeveloperError{Message: fmt.Sprintf("decoding freshly emitted bytecode: %s", err)}
		}
		if instr.Op == OpFunctionCall && instr.Name == n.Name {
			return SemanticError{
				Span:    n.SrcSpan,
				Message: fmt.Sprintf("function '%s' cannot call itself recursively", n.Name),
			}
		}
		pc += instr.Width
	}
	return nil
}

// compileErrorStream is the one-instruction program the whole compile
// pipeline is replaced by on any parse or lowering failure: the emitted
// stream always begins with CompileError when compilation did not succeed.
func compileErrorStream() Instructions {
	return MakeSimple(OpCompileError)
}

// Compile runs the full parse-then-lower pipeline over source text,
// threading (and mutating) the caller's symbol environment so a REPL can
// carry it across turns. On any parse or lowering error, the whole program
// is replaced by a single CompileError instruction and every error
// encountered is returned together: compilation is all-or-nothing.
func Compile(source string, symbols *parser.Symbols) (Instructions, *parser.Symbols, []error) {
	if symbols == nil {
		symbols = parser.NewSymbols()
	}

	p, err := parser.New(source, symbols)
	if err != nil {
		return compileErrorStream(), symbols, []error{err}
	}

	nodes, errs := p.ParseProgram()

	gen := NewGenerator()
	for _, n := range nodes {
		if err := gen.lower(n); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return compileErrorStream(), p.Symbols, errs
	}
	return gen.ins, p.Symbols, nil
}
