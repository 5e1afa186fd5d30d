package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"nilan/bytecode"
	"nilan/compiler"
)

// emitBytecodeCmd implements the "compile-to-bytecode-file" driver mode:
// compile a source file and write its bytecode to a `.nic` file, optionally
// alongside a human-readable disassembly.
type emitBytecodeCmd struct {
	disassemble bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Compile a source file and write its bytecode to a .nic file"
}
func (*emitBytecodeCmd) Usage() string {
	return `nilan emit <file>`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "Also write a human-readable disassembly to a .dnic file")
}

func (cmd *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	nilanFile := args[0]
	data, err := os.ReadFile(nilanFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	ins, _, errs := compiler.Compile(string(data), nil)
	if len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "\t%v\n", e)
		}
		return subcommands.ExitFailure
	}

	base := strings.TrimSuffix(nilanFile, filepath.Ext(nilanFile))

	out, err := os.Create(base + ".nic")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to create bytecode file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := bytecode.Write(out, ins); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write bytecode: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.disassemble {
		text, err := bytecode.Disassemble(ins)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Disassemble error:\n\t%v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(base+".dnic", []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to write disassembly: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
