package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nilan/compiler"
)

func run(t *testing.T, source string) *VM {
	t.Helper()
	ins, _, errs := compiler.Compile(source, nil)
	require.Empty(t, errs, "compile error for %q", source)
	machine := New(ins)
	require.NoError(t, machine.Run(), "runtime error for %q", source)
	return machine
}

func wantNumberOutput(t *testing.T, source string, want float64) {
	t.Helper()
	machine := run(t, source)
	require.Len(t, machine.Outputs, 1, "source %q outputs", source)
	got, ok := machine.Outputs[0].(float64)
	require.True(t, ok, "source %q - output is not a number: %v", source, machine.Outputs[0])
	assert.Equal(t, want, got, "source %q", source)
}

func TestArithmeticPrecedence(t *testing.T) {
	wantNumberOutput(t, "1 + 2 * 3:", 7)
}

func TestVariableDeclarationAndUse(t *testing.T) {
	wantNumberOutput(t, "let x = 5; let y = 3; x + y:", 8)
}

func TestCompoundAssignment(t *testing.T) {
	wantNumberOutput(t, "let x = 10; x += 5; x:", 15)
}

func TestUserFunctionCall(t *testing.T) {
	wantNumberOutput(t, "let sq x = x * x; sq(7):", 49)
}

func TestRedeclareShadowsWithNewType(t *testing.T) {
	machine := run(t, `let x = 2; let x = "hi"; x:`)
	require.Len(t, machine.Outputs, 1)
	got, ok := machine.Outputs[0].(string)
	require.True(t, ok, "output is not a string: %v", machine.Outputs[0])
	assert.Equal(t, "hi", got)
}

func TestBuiltinFunctions(t *testing.T) {
	wantNumberOutput(t, "sqrt(16) + cbrt(27):", 7)
}

func TestBitwiseOr(t *testing.T) {
	wantNumberOutput(t, "0b1010 | 0b0101:", 15)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	ins, _, errs := compiler.Compile("1 / 0:", nil)
	require.Empty(t, errs)
	machine := New(ins)
	err := machine.Run()
	assert.Error(t, err, "expected a runtime error dividing by zero")
	assert.Empty(t, machine.Outputs, "expected no outputs after a runtime error")
}

func TestSelfRecursionIsACompileError(t *testing.T) {
	ins, _, errs := compiler.Compile("let f x = f(x):", nil)
	require.NotEmpty(t, errs, "expected a compile error for self-recursion")
	require.Len(t, ins, 1)
	assert.Equal(t, compiler.OpCompileError, compiler.Opcode(ins[0]))
}

func TestEmptySourceYieldsNoInstructionsOrOutputs(t *testing.T) {
	ins, _, errs := compiler.Compile("", nil)
	require.Empty(t, errs)
	assert.Empty(t, ins, "expected zero instructions for empty source")
	machine := New(ins)
	require.NoError(t, machine.Run())
	assert.Empty(t, machine.Outputs)
}

func TestShadowingIsReversible(t *testing.T) {
	ins, symbols, errs := compiler.Compile("let f x = x + 1:", nil)
	require.Empty(t, errs)
	machine := New(ins)
	require.NoError(t, machine.Run())

	ins2, _, errs := compiler.Compile("let f; delete f; f(3):", symbols)
	require.Empty(t, errs)

	machine2 := Restore(ins2, machine.Symbols, machine.Functions)
	require.NoError(t, machine2.Run(), "deleting the variable f should un-shadow the function so f(3) runs")
	got, ok := machine2.Outputs[len(machine2.Outputs)-1].(float64)
	require.True(t, ok, "expected un-shadowed function call to evaluate f(3), got: %v", machine2.Outputs)
	assert.Equal(t, float64(4), got)
}

func TestCompileIsDeterministic(t *testing.T) {
	ins1, _, _ := compiler.Compile("1 + 2 * 3:", nil)
	ins2, _, _ := compiler.Compile("1 + 2 * 3:", nil)
	assert.Equal(t, string(ins1), string(ins2), "compiling the same source twice should produce identical instruction streams")
}
