package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nilan/ast"
	"nilan/builtins"
	"nilan/compiler"
)

// Value is the dynamic runtime value a stack slot or symbol holds: float64,
// string, or nil standing in for the language's Null.
type Value = any

// Function is a registered user-defined function's location within the
// instruction stream, recorded when the VM's linear execution passes over
// its FunctionDecl header.
type Function struct {
	ArgCount int
	ArgsAt   int // pc of the first ArgumentName instruction
	BodyAt   int // pc where the body's first instruction starts
	BodyEnd  int // pc one past the body's last instruction
}

// Represents a stack based virtual-machine (VM). It is the runtime
// environment where Nilan bytecode gets executed.
type VM struct {
	ins       compiler.Instructions
	stack     Stack
	pc        int
	Outputs   []Value
	Symbols   map[string]Value
	Functions map[string]Function
}

// New creates a VM with an empty environment, for a fresh top-level run.
func New(ins compiler.Instructions) *VM {
	return &VM{
		ins:       ins,
		Symbols:   map[string]Value{},
		Functions: map[string]Function{},
	}
}

// Restore creates a VM carrying over a previously-built environment, so a
// REPL's variable and function bindings survive across turns.
func Restore(ins compiler.Instructions, symbols map[string]Value, functions map[string]Function) *VM {
	if symbols == nil {
		symbols = map[string]Value{}
	}
	if functions == nil {
		functions = map[string]Function{}
	}
	return &VM{ins: ins, Symbols: symbols, Functions: functions}
}

// Run executes the VM's instruction stream to completion. A stream that is
// empty or begins with CompileError is a no-op: the compiler already
// reported its errors, and the VM has nothing sound to execute.
func (vm *VM) Run() error {
	if len(vm.ins) == 0 || compiler.Opcode(vm.ins[0]) == compiler.OpCompileError {
		return nil
	}
	for vm.pc < len(vm.ins) {
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) pop() (Value, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		return nil, RuntimeError{Message: "stack underflow: this is most likely a bug in the bytecode"}
	}
	return v, nil
}

// step decodes and executes exactly one instruction, advancing pc past it.
func (vm *VM) step() error {
	instr, err := compiler.Decode(vm.ins, vm.pc)
	if err != nil {
		return RuntimeError{Message: err.Error()}
	}
	vm.pc += instr.Width

	switch instr.Op {
	case compiler.OpLoadNumber:
		vm.stack.Push(instr.Number)

	case compiler.OpLoadString:
		vm.stack.Push(instr.Name)

	case compiler.OpNull:
		vm.stack.Push(nil)

	case compiler.OpBinary:
		return vm.binary(instr.Operator)

	case compiler.OpUnary:
		return vm.unary(instr.Operator)

	case compiler.OpOutput:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Outputs = append(vm.Outputs, v)

	case compiler.OpLoadSymbolName:
		vm.Symbols[instr.Name] = nil
		vm.stack.Push(nil)

	case compiler.OpLoadSymbol:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Symbols[instr.Name] = v
		vm.stack.Push(nil)

	case compiler.OpCallSymbol:
		v, ok := vm.Symbols[instr.Name]
		if !ok {
			return RuntimeError{Message: fmt.Sprintf("the variable '%s' does not exist", instr.Name)}
		}
		vm.stack.Push(v)

	case compiler.OpReloadSymbol:
		if _, ok := vm.Symbols[instr.Name]; !ok {
			return RuntimeError{Message: fmt.Sprintf("cannot assign a value to variable '%s' because it does not exist", instr.Name)}
		}
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.Symbols[instr.Name] = v
		vm.stack.Push(nil)

	case compiler.OpReloadSymbolOp:
		return vm.reloadSymbolOp(instr.Name, instr.Operator)

	case compiler.OpFunctionCall:
		return vm.call(instr.Name)

	case compiler.OpFunctionDecl:
		return vm.declare(instr)

	case compiler.OpDelete:
		if builtins.IsBuiltin(instr.Name) {
			return RuntimeError{Message: fmt.Sprintf("cannot delete builtin function '%s'", instr.Name)}
		}
		delete(vm.Symbols, instr.Name)
		delete(vm.Functions, instr.Name)
		vm.stack.Push(nil)

	case compiler.OpPrint:
		return vm.print(instr.Count)

	default:
		return RuntimeError{Message: fmt.Sprintf("unexpected instruction %s at pc %d - this is most probably a bug in the bytecode", instr.Op.Name(), vm.pc-instr.Width)}
	}
	return nil
}

func (vm *VM) binary(op ast.Operator) error {
	rhs, err := vm.pop()
	if err != nil {
		return err
	}
	lhs, err := vm.pop()
	if err != nil {
		return err
	}

	switch l := lhs.(type) {
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return mismatchedTypes(op, lhs, rhs)
		}
		v, err := numericBinary(op, l, r)
		if err != nil {
			return err
		}
		vm.stack.Push(v)

	case string:
		r, ok := rhs.(string)
		if !ok {
			return mismatchedTypes(op, lhs, rhs)
		}
		if op != ast.OpAdd {
			return RuntimeError{Message: fmt.Sprintf("cannot perform binary operation '%s' on strings", op)}
		}
		vm.stack.Push(l + r)

	default:
		return RuntimeError{Message: fmt.Sprintf("cannot perform binary operation '%s' on Null", op)}
	}
	return nil
}

func (vm *VM) unary(op ast.Operator) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok {
		return RuntimeError{Message: "cannot perform a unary operation on a value that is not a number"}
	}
	switch op {
	case ast.OpAdd:
		vm.stack.Push(n)
	case ast.OpSub:
		vm.stack.Push(-n)
	default:
		return RuntimeError{Message: fmt.Sprintf("unable to perform unary operation '%s' on a number", op)}
	}
	return nil
}

func (vm *VM) reloadSymbolOp(name string, op ast.Operator) error {
	old, ok := vm.Symbols[name]
	if !ok {
		return RuntimeError{Message: fmt.Sprintf("cannot find variable '%s' to change its value", name)}
	}
	rhs, err := vm.pop()
	if err != nil {
		return err
	}

	switch o := old.(type) {
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return mismatchedTypes(op, old, rhs)
		}
		v, err := numericBinary(op, o, r)
		if err != nil {
			return err
		}
		vm.Symbols[name] = v

	case string:
		r, ok := rhs.(string)
		if !ok {
			return mismatchedTypes(op, old, rhs)
		}
		if op != ast.OpAdd {
			return RuntimeError{Message: fmt.Sprintf("cannot perform operation '%s' on strings", op)}
		}
		vm.Symbols[name] = o + r

	default:
		return RuntimeError{Message: fmt.Sprintf("cannot perform operation '%s' on Null", op)}
	}
	vm.stack.Push(nil)
	return nil
}

func mismatchedTypes(op ast.Operator, lhs, rhs Value) error {
	return RuntimeError{Message: fmt.Sprintf(
		"cannot perform binary operation '%s' on mismatched types: lhs '%s' and rhs '%s'",
		op, typeOf(lhs), typeOf(rhs),
	)}
}

func typeOf(v Value) string {
	switch v.(type) {
	case float64:
		return "{Number}"
	case string:
		return "{String}"
	default:
		return "{Null}"
	}
}

// numericBinary implements every binary operator over two numbers. Bitwise
// operators coerce through uint64: Nilan has no integer type of its own, so
// bitwise operators borrow the machine word.
func numericBinary(op ast.Operator, a, b float64) (float64, error) {
	switch op {
	case ast.OpAdd:
		return a + b, nil
	case ast.OpSub:
		return a - b, nil
	case ast.OpMul:
		return a * b, nil
	case ast.OpDiv:
		if b == 0 {
			return 0, RuntimeError{Message: "cannot divide a number by zero"}
		}
		return a / b, nil
	case ast.OpExp:
		return math.Pow(a, b), nil
	case ast.OpBitAnd:
		return float64(uint64(a) & uint64(b)), nil
	case ast.OpBitOr:
		return float64(uint64(a) | uint64(b)), nil
	case ast.OpBitXor:
		return float64(uint64(a) ^ uint64(b)), nil
	case ast.OpShl:
		return float64(uint64(a) << uint64(b)), nil
	case ast.OpShr:
		return float64(uint64(a) >> uint64(b)), nil
	default:
		return 0, RuntimeError{Message: fmt.Sprintf("unknown binary operator '%s'", op)}
	}
}

// call dispatches a FunctionCall by name, checking built-ins before
// user-defined functions — the same order the parser already checked names
// in, so a name can never resolve differently at runtime than it did at
// compile time.
func (vm *VM) call(name string) error {
	if fn, ok := builtins.Lookup(name); ok {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		n, ok := v.(float64)
		if !ok {
			return RuntimeError{Message: fmt.Sprintf("built-in function '%s' only accepts numbers", name)}
		}
		vm.stack.Push(fn(n))
		return nil
	}

	fn, ok := vm.Functions[name]
	if !ok {
		return RuntimeError{Message: fmt.Sprintf("the function '%s' does not exist", name)}
	}
	return vm.invoke(name, fn)
}

// invoke runs a user-defined function's body in its own activation frame: a
// full clone of the current symbol table, seeded with the call's arguments
// bound to the function's parameter names, restored byte-for-byte once the
// body finishes.
func (vm *VM) invoke(name string, fn Function) error {
	names := make([]string, fn.ArgCount)
	pc := fn.ArgsAt
	for i := 0; i < fn.ArgCount; i++ {
		instr, err := compiler.Decode(vm.ins, pc)
		if err != nil || instr.Op != compiler.OpArgumentName {
			return RuntimeError{Message: fmt.Sprintf("invalid bytecode in function '%s' header", name)}
		}
		names[i] = instr.Name
		pc += instr.Width
	}

	savedSymbols := vm.Symbols
	frame := make(map[string]Value, len(savedSymbols)+fn.ArgCount)
	for k, v := range savedSymbols {
		frame[k] = v
	}
	vm.Symbols = frame

	for i := fn.ArgCount - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			vm.Symbols = savedSymbols
			return RuntimeError{Message: fmt.Sprintf("failed to get arguments to function '%s'", name)}
		}
		vm.Symbols[names[i]] = v
	}

	savedPC := vm.pc
	vm.pc = fn.BodyAt
	for vm.pc < fn.BodyEnd {
		if err := vm.step(); err != nil {
			vm.pc = savedPC
			vm.Symbols = savedSymbols
			return err
		}
	}

	vm.pc = savedPC
	vm.Symbols = savedSymbols
	return nil
}

// declare registers a user function at the location its FunctionDecl header
// names, then skips straight past the body: a declaration is recorded, not
// executed.
func (vm *VM) declare(header compiler.Instr) error {
	argsAt := vm.pc
	bodyAt := argsAt
	for i := 0; i < header.Count; i++ {
		argInstr, err := compiler.Decode(vm.ins, bodyAt)
		if err != nil || argInstr.Op != compiler.OpArgumentName {
			return RuntimeError{Message: fmt.Sprintf("invalid bytecode in function '%s' header", header.Name)}
		}
		bodyAt += argInstr.Width
	}

	vm.Functions[header.Name] = Function{
		ArgCount: header.Count,
		ArgsAt:   argsAt,
		BodyAt:   bodyAt,
		BodyEnd:  header.End,
	}
	vm.pc = header.End
	vm.stack.Push(nil)
	return nil
}

func (vm *VM) print(depth int) error {
	if len(vm.stack) < depth {
		return RuntimeError{Message: "stack underflow: this is most likely a bug in the bytecode"}
	}
	start := len(vm.stack) - depth
	parts := make([]string, depth)
	for i, v := range vm.stack[start:] {
		parts[i] = formatValue(v)
	}
	vm.stack = vm.stack[:start]

	fmt.Println(strings.Join(parts, " "))
	vm.stack.Push(nil)
	return nil
}

// formatValue renders a value the way Print and a REPL's results line
// display it: numbers and strings print plain, Null renders as the literal
// "{NULL}".
func formatValue(v Value) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return "{NULL}"
	}
}
