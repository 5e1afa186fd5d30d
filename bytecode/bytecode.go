// Package bytecode persists a compiled instruction stream to and from a
// `.nic` file, and renders it as a human-readable disassembly. The framing
// is built around the self-contained, name-carrying instruction encoding
// in compiler/code.go, so a `.nic` file's bytes need no external constants
// pool to be replayed or disassembled.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"nilan/compiler"
)

// magic tags a `.nic` file so Load can reject anything else; version lets a
// future framing change be detected rather than silently misread.
var magic = [4]byte{'N', 'I', 'L', 'C'}

const version = 1

// Write encodes ins as a `.nic`-framed stream: a 4-byte magic, a version
// byte, a big-endian uint32 length, then the raw instruction bytes
// (already self-describing via compiler.Decode, so no per-instruction
// framing is needed beyond the overall length).
func Write(w io.Writer, ins compiler.Instructions) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{version}); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ins)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(ins)
	return err
}

// Read decodes a stream previously produced by Write.
func Read(r io.Reader) (compiler.Instructions, error) {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading bytecode header: %w", err)
	}
	if [4]byte{header[0], header[1], header[2], header[3]} != magic {
		return nil, fmt.Errorf("not a nilan bytecode file: bad magic")
	}
	if header[4] != version {
		return nil, fmt.Errorf("unsupported bytecode version %d (expected %d)", header[4], version)
	}
	length := binary.BigEndian.Uint32(header[5:9])

	ins := make(compiler.Instructions, length)
	if _, err := io.ReadFull(r, ins); err != nil {
		return nil, fmt.Errorf("reading %d bytes of bytecode: %w", length, err)
	}
	return ins, nil
}

// Disassemble renders ins as one mnemonic line per instruction, each line
// its 4-digit byte offset followed by `OP_NAME, operand: value`, as written
// by the emit command's -disassemble flag.
func Disassemble(ins compiler.Instructions) (string, error) {
	var b strings.Builder
	for pc := 0; pc < len(ins); {
		instr, err := compiler.Decode(ins, pc)
		if err != nil {
			return b.String(), fmt.Errorf("disassembling at pc %d: %w", pc, err)
		}
		fmt.Fprintf(&b, "%04d %s", pc, instr.Op.Name())
		switch instr.Op {
		case compiler.OpLoadNumber:
			fmt.Fprintf(&b, ", value: %v", instr.Number)
		case compiler.OpLoadString, compiler.OpLoadSymbolName, compiler.OpLoadSymbol,
			compiler.OpReloadSymbol, compiler.OpCallSymbol, compiler.OpFunctionCall,
			compiler.OpArgumentName, compiler.OpDelete:
			fmt.Fprintf(&b, ", name: %q", instr.Name)
		case compiler.OpReloadSymbolOp:
			fmt.Fprintf(&b, ", name: %q, op: %s", instr.Name, instr.Operator)
		case compiler.OpBinary, compiler.OpUnary:
			fmt.Fprintf(&b, ", op: %s", instr.Operator)
		case compiler.OpPrint:
			fmt.Fprintf(&b, ", arity: %d", instr.Count)
		case compiler.OpFunctionDecl:
			fmt.Fprintf(&b, ", name: %q, args: %d, end: %d", instr.Name, instr.Count, instr.End)
		}
		b.WriteByte('\n')
		pc += instr.Width
	}
	return b.String(), nil
}
