package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/subcommands"

	"nilan/bytecode"
	"nilan/compiler"
	"nilan/parser"
	"nilan/vm"
)

var (
	replBanner = `
    ███╗   ██╗██╗██╗      █████╗ ███╗   ██╗
    ████╗  ██║██║██║     ██╔══██╗████╗  ██║
    ██╔██╗ ██║██║██║     ███████║██╔██╗ ██║
    ██║╚██╗██║██║██║     ██╔══██║██║╚██╗██║
    ██║ ╚████║██║███████╗██║  ██║██║ ╚████║
    ╚═╝  ╚═══╝╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝
`
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
)

// replCmd implements the interactive REPL driver mode: it carries the
// compile-time symbol table and the VM's runtime environment across turns,
// so each line builds on the bindings and functions the session has
// accumulated so far.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Nilan session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	session := &replSession{symbols: parser.NewSymbols()}
	session.run(os.Stdout)
	return subcommands.ExitSuccess
}

// replSession holds everything that must survive across turns: the
// compile-time symbol table, the VM's runtime bindings, and the `.time`
// toggle.
type replSession struct {
	symbols     *parser.Symbols
	vmSymbols   map[string]vm.Value
	vmFunctions map[string]vm.Function
	timer       bool
}

func (s *replSession) printBanner(w io.Writer) {
	blueColor.Fprintln(w, strings.Repeat("-", 44))
	greenColor.Fprint(w, replBanner)
	blueColor.Fprintln(w, strings.Repeat("-", 44))
	fmt.Fprintln(w, "Type '.quit' or '.exit' to leave.")
	fmt.Fprintln(w, "Type '.show variables' or '.show functions' to list bindings.")
	fmt.Fprintln(w, "Type '.time' to toggle a compile-and-run timer.")
	fmt.Fprintln(w, "Type '.load <path>' or '.load b <path>' to run a file.")
	blueColor.Fprintln(w, strings.Repeat("-", 44))
}

func (s *replSession) run(w io.Writer) {
	s.printBanner(w)

	rl, err := readline.NewEx(&readline.Config{Prompt: ">>> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start line editor: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl+D) or readline.ErrInterrupt (Ctrl+C)
			fmt.Fprintln(w, "Good bye!")
			return
		}

		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rl.SaveHistory(line)

		if s.handleDotCommand(w, line) {
			continue
		}

		s.evalTurn(w, rewriteTerminator(line), s.timer)
	}
}

// stripComment drops everything from the first `//` onward.
func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

// rewriteTerminator applies the REPL's own terminator rule: every `;` in the
// line is rewritten to `:`, and a bare expression is treated as
// `:`-terminated, so every expression on a REPL line prints its result.
func rewriteTerminator(line string) string {
	line = strings.ReplaceAll(line, ";", ":")
	if strings.HasSuffix(line, ":") {
		return line
	}
	return line + ":"
}

// handleDotCommand recognizes and executes a `.`-prefixed REPL command,
// reporting whether line was one.
func (s *replSession) handleDotCommand(w io.Writer, line string) bool {
	switch {
	case line == ".quit" || line == ".exit":
		fmt.Fprintln(w, "Good bye!")
		os.Exit(0)

	case line == ".show variables":
		s.showVariables(w)

	case line == ".show functions":
		s.showFunctions(w)

	case line == ".time":
		s.timer = !s.timer
		state := "off"
		if s.timer {
			state = "on"
		}
		fmt.Fprintf(w, "The timer is now %s\n", state)

	case strings.HasPrefix(line, ".load b "):
		s.loadBytecode(w, strings.TrimSpace(strings.TrimPrefix(line, ".load b ")))

	case strings.HasPrefix(line, ".load "):
		s.loadSource(w, strings.TrimSpace(strings.TrimPrefix(line, ".load ")))

	default:
		if strings.HasPrefix(line, ".") {
			redColor.Fprintf(w, "unknown command '%s'\n", line)
			return true
		}
		return false
	}
	return true
}

func (s *replSession) showVariables(w io.Writer) {
	bindings := s.symbols.Variables()
	if len(bindings) == 0 {
		fmt.Fprintln(w, "No variables declared")
		return
	}
	for _, b := range bindings {
		if b.Shadowed {
			fmt.Fprintf(w, "%s (shadowed by a function)\n", b.Name)
			continue
		}
		value := s.vmSymbols[b.Name]
		fmt.Fprintf(w, "%s = %s\n", b.Name, formatOutput(value))
	}
}

func (s *replSession) showFunctions(w io.Writer) {
	bindings := s.symbols.Functions()
	if len(bindings) == 0 {
		fmt.Fprintln(w, "No functions declared")
		return
	}
	for _, b := range bindings {
		if b.Shadowed {
			fmt.Fprintf(w, "%s/%d (shadowed by a variable)\n", b.Name, b.Arity)
			continue
		}
		fmt.Fprintf(w, "%s/%d\n", b.Name, b.Arity)
	}
}

func (s *replSession) loadSource(w io.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		redColor.Fprintf(w, "💥 failed to read '%s': %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "loading file and executing: %s\n", path)
	s.evalTurn(w, string(data), false)
}

func (s *replSession) loadBytecode(w io.Writer, path string) {
	file, err := os.Open(path)
	if err != nil {
		redColor.Fprintf(w, "💥 failed to open '%s': %v\n", path, err)
		return
	}
	defer file.Close()

	ins, err := bytecode.Read(file)
	if err != nil {
		redColor.Fprintf(w, "💥 failed to read bytecode from '%s': %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "loading bytecode and executing: %s\n", path)

	machine := vm.Restore(ins, s.vmSymbols, s.vmFunctions)
	if err := machine.Run(); err != nil {
		redColor.Fprintln(w, err)
		return
	}
	s.vmSymbols, s.vmFunctions = machine.Symbols, machine.Functions
	yellowColor.Fprintln(w, formatOutputs(machine.Outputs))
}

// evalTurn compiles and runs one piece of source against the session's
// carried-over state, reporting compile or runtime errors in red and a
// successful result in yellow.
func (s *replSession) evalTurn(w io.Writer, source string, withTimer bool) {
	if withTimer {
		fmt.Fprintln(w, "Begin compilation")
	}
	start := time.Now()
	ins, symbols, errs := compiler.Compile(source, s.symbols)
	if withTimer {
		fmt.Fprintf(w, "Finished compilation in %s\n", time.Since(start))
	}
	s.symbols = symbols
	if len(errs) > 0 {
		for _, e := range errs {
			redColor.Fprintln(w, e)
		}
		return
	}

	if withTimer {
		fmt.Fprintln(w, "Begin run")
	}
	start = time.Now()
	machine := vm.Restore(ins, s.vmSymbols, s.vmFunctions)
	err := machine.Run()
	if withTimer {
		fmt.Fprintf(w, "Finished run in %s\n", time.Since(start))
	}
	s.vmSymbols, s.vmFunctions = machine.Symbols, machine.Functions

	if err != nil {
		redColor.Fprintln(w, err)
		return
	}
	yellowColor.Fprintln(w, formatOutputs(machine.Outputs))
}
