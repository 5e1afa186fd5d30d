package compiler

import (
	"testing"

	"nilan/ast"
)

func TestMakeLoadNumberRoundTrip(t *testing.T) {
	ins := MakeLoadNumber(3.5)
	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Op != OpLoadNumber {
		t.Errorf("wrong opcode - got: %s, want: %s", instr.Op.Name(), OpLoadNumber.Name())
	}
	if instr.Number != 3.5 {
		t.Errorf("wrong operand - got: %v, want: %v", instr.Number, 3.5)
	}
	if instr.Width != len(ins) {
		t.Errorf("wrong width - got: %d, want: %d", instr.Width, len(ins))
	}
}

func TestMakeLoadStringRoundTrip(t *testing.T) {
	ins := MakeLoadString("hello")
	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Name != "hello" {
		t.Errorf("wrong operand - got: %q, want: %q", instr.Name, "hello")
	}
}

func TestMakeOperatorRoundTrip(t *testing.T) {
	ins := MakeOperator(OpBinary, ast.OpAdd)
	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Operator != ast.OpAdd {
		t.Errorf("wrong operator - got: %s, want: %s", instr.Operator, ast.OpAdd)
	}
}

func TestMakeReloadSymbolOpRoundTrip(t *testing.T) {
	ins := MakeReloadSymbolOp("x", ast.OpSub)
	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Name != "x" || instr.Operator != ast.OpSub {
		t.Errorf("wrong operands - got: name=%q op=%s", instr.Name, instr.Operator)
	}
}

func TestMakePrintRoundTrip(t *testing.T) {
	ins := MakePrint(3)
	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Count != 3 {
		t.Errorf("wrong arity - got: %d, want: %d", instr.Count, 3)
	}
}

func TestFunctionDeclHeaderPatch(t *testing.T) {
	ins := MakeFunctionDeclHeader("sq", 1)
	PatchEnd(ins, 0, "sq", 42)

	instr, err := Decode(ins, 0)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	if instr.Name != "sq" {
		t.Errorf("wrong name - got: %q, want: %q", instr.Name, "sq")
	}
	if instr.Count != 1 {
		t.Errorf("wrong arg count - got: %d, want: %d", instr.Count, 1)
	}
	if instr.End != 42 {
		t.Errorf("wrong patched end - got: %d, want: %d", instr.End, 42)
	}
}

func TestDecodeSequence(t *testing.T) {
	var ins Instructions
	ins = append(ins, MakeLoadNumber(1)...)
	ins = append(ins, MakeLoadNumber(2)...)
	ins = append(ins, MakeOperator(OpBinary, ast.OpAdd)...)
	ins = append(ins, MakeSimple(OpOutput)...)

	var ops []Opcode
	for pc := 0; pc < len(ins); {
		instr, err := Decode(ins, pc)
		if err != nil {
			t.Fatalf("decode error at pc %d: %s", pc, err)
		}
		ops = append(ops, instr.Op)
		pc += instr.Width
	}

	want := []Opcode{OpLoadNumber, OpLoadNumber, OpBinary, OpOutput}
	if len(ops) != len(want) {
		t.Fatalf("wrong instruction count - got: %d, want: %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("instruction %d - got: %s, want: %s", i, ops[i].Name(), want[i].Name())
		}
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	if _, err := Decode(Instructions{}, 0); err == nil {
		t.Error("expected an error decoding an empty instruction stream")
	}
}
