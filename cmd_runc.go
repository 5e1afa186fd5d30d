package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/bytecode"
	"nilan/vm"
)

// runCompiledCmd implements the "run-from-bytecode-file" driver mode: load
// a previously emitted `.nic` file and execute it directly, skipping
// lexing/parsing/lowering entirely.
type runCompiledCmd struct{}

func (*runCompiledCmd) Name() string     { return "runc" }
func (*runCompiledCmd) Synopsis() string { return "Execute a previously compiled .nic bytecode file" }
func (*runCompiledCmd) Usage() string {
	return `runc <file.nic>:
  Execute previously compiled Nilan bytecode.
`
}
func (r *runCompiledCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to open file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	ins, err := bytecode.Read(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read bytecode: %v\n", err)
		return subcommands.ExitFailure
	}

	machine := vm.New(ins)
	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println(formatOutputs(machine.Outputs))
	return subcommands.ExitSuccess
}
