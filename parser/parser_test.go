package parser

import (
	"testing"

	"nilan/ast"
)

func parseOne(t *testing.T, source string) ast.Node {
	t.Helper()
	p, err := New(source, nil)
	if err != nil {
		t.Fatalf("New(%q) returned error: %v", source, err)
	}
	nodes, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("ParseProgram(%q) errors: %v", source, errs)
	}
	if len(nodes) != 1 {
		t.Fatalf("ParseProgram(%q) = %d nodes, want 1", source, len(nodes))
	}
	return nodes[0]
}

func TestOperatorPrecedence(t *testing.T) {
	node := parseOne(t, "1 + 2 * 3;")
	bin, ok := node.(ast.BinaryOp)
	if !ok {
		t.Fatalf("node = %#v, want a BinaryOp at the top (addition binds loosest)", node)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("top operator = %v, want OpAdd", bin.Op)
	}
	rhs, ok := bin.Rhs.(ast.BinaryOp)
	if !ok || rhs.Op != ast.OpMul {
		t.Errorf("rhs = %#v, want a multiplication", bin.Rhs)
	}
}

func TestBareExpressionRequiresTerminator(t *testing.T) {
	p, err := New("1 + 2", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected a syntax error for a missing terminator, got none")
	}
}

func TestColonProducesOutputNode(t *testing.T) {
	node := parseOne(t, "1 + 1:")
	if _, ok := node.(ast.Output); !ok {
		t.Fatalf("node = %#v, want ast.Output", node)
	}
}

func TestSemicolonProducesBareExpression(t *testing.T) {
	node := parseOne(t, "1 + 1;")
	if _, ok := node.(ast.Output); ok {
		t.Fatalf("node = %#v, want a bare (non-Output) node for ';'", node)
	}
}

func TestLetDeclareAndUse(t *testing.T) {
	p, err := New("let x = 5; x + 1:", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	nodes, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if _, ok := nodes[0].(ast.DeclareAssign); !ok {
		t.Errorf("nodes[0] = %#v, want DeclareAssign", nodes[0])
	}
	ok, shadowed := p.Symbols.LookupVariable("x")
	if !ok || shadowed {
		t.Errorf("LookupVariable(x) = (%v, %v), want (true, false)", ok, shadowed)
	}
}

func TestUndeclaredVariableUseIsError(t *testing.T) {
	p, err := New("y + 1;", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected an error referencing an undeclared variable, got none")
	}
}

func TestFunctionDeclAndCall(t *testing.T) {
	p, err := New("let sq x = x * x; sq(4):", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	nodes, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	decl, ok := nodes[0].(ast.FunctionDecl)
	if !ok {
		t.Fatalf("nodes[0] = %#v, want FunctionDecl", nodes[0])
	}
	if decl.Name != "sq" || len(decl.Args) != 1 || decl.Args[0] != "x" {
		t.Errorf("decl = %#v, want name sq, args [x]", decl)
	}
	out, ok := nodes[1].(ast.Output)
	if !ok {
		t.Fatalf("nodes[1] = %#v, want Output", nodes[1])
	}
	if _, ok := out.Inner.(ast.FunctionCall); !ok {
		t.Errorf("Output.Inner = %#v, want FunctionCall", out.Inner)
	}
}

func TestFunctionCallArityMismatchIsError(t *testing.T) {
	p, err := New("let sq x = x * x; sq(1, 2):", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected an arity-mismatch error, got none")
	}
}

func TestShadowingIsReversible(t *testing.T) {
	p, err := New("let x = 1; let x y = y; delete x; x + 1:", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	_, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ok, shadowed := p.Symbols.LookupVariable("x")
	if !ok || shadowed {
		t.Errorf("after deleting the shadowing function, LookupVariable(x) = (%v, %v), want (true, false)", ok, shadowed)
	}
}

func TestBuiltinCannotBeRedeclaredOrDeleted(t *testing.T) {
	p1, err := New("let sqrt x = x; 0;", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, errs := p1.ParseProgram(); len(errs) == 0 {
		t.Error("expected an error redeclaring a built-in, got none")
	}

	p2, err := New("delete sqrt;", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, errs := p2.ParseProgram(); len(errs) == 0 {
		t.Error("expected an error deleting a built-in, got none")
	}
}

func TestCompoundAssignmentRequiresExistingVariable(t *testing.T) {
	p, err := New("z += 1;", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, errs := p.ParseProgram(); len(errs) == 0 {
		t.Error("expected an error assigning to an undeclared variable, got none")
	}
}

func TestSymbolsAcrossParserInstancesThreadState(t *testing.T) {
	p1, err := New("let x = 5;", nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, errs := p1.ParseProgram(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	p2, err := New("x + 1:", p1.Symbols)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, errs := p2.ParseProgram(); len(errs) != 0 {
		t.Fatalf("unexpected errors carrying symbols forward: %v", errs)
	}
}
