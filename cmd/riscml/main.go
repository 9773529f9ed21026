package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/funvibe/riscml/internal/analyzer"
	"github.com/funvibe/riscml/internal/asm"
	"github.com/funvibe/riscml/internal/codegen"
	"github.com/funvibe/riscml/internal/evaluator"
	"github.com/funvibe/riscml/internal/lexer"
	"github.com/funvibe/riscml/internal/parser"
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/renamer"
	"github.com/funvibe/riscml/internal/repl"
)

var redColor = color.New(color.FgRed)

var (
	backend = flag.String("backend", "asm", "execution backend: asm (compile and interpret) or tree (reference evaluator)")
	emitAsm = flag.Bool("S", false, "print the generated assembly instead of executing")
	execAsm = flag.Bool("exec-asm", false, "execute a textual assembly listing and print the register environment")
)

func main() {
	// Catch panics and show a user-friendly error.
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "repl" {
		if err := repl.New().Run(); err != nil {
			fail(err)
		}
		return
	}

	flag.Parse()

	source, err := readInput(flag.Args())
	if err != nil {
		fail(err)
	}

	if *execAsm {
		runListing(source)
		return
	}

	if *backend == "tree" {
		runTree(source)
		return
	}

	runCompiled(source)
}

func readInput(args []string) (string, error) {
	if len(args) >= 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// frontend runs every stage up to and including type checking.
func frontend(source string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.TypeCheckProcessor{},
	).Run(ctx)
}

// runCompiled is the default path: compile to three-address code, then
// interpret the abstract machine.
func runCompiled(source string) {
	ctx := pipeline.NewPipelineContext(source)
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.TypeCheckProcessor{},
		&renamer.RenameProcessor{},
		&codegen.CodegenProcessor{},
	).Run(ctx)
	if reportErrors(ctx) {
		os.Exit(1)
	}

	if *emitAsm {
		fmt.Print(ctx.Program.Listing())
		return
	}

	if err := ctx.Program.Run(); err != nil {
		fail(err)
	}
	result, err := ctx.Program.GetVal(ctx.ResultReg)
	if err != nil {
		fail(err)
	}
	fmt.Println(result)
}

// runTree executes through the reference evaluator instead of the machine.
func runTree(source string) {
	ctx := frontend(source)
	if reportErrors(ctx) {
		os.Exit(1)
	}

	result, err := evaluator.New().Eval(ctx.AstRoot, evaluator.NewEnvironment())
	if err != nil {
		fail(err)
	}
	fmt.Println(result.Inspect())
}

// runListing parses a textual assembly listing, runs it, and prints the
// final register environment sorted by name.
func runListing(source string) {
	insts, err := asm.ParseListing(source)
	if err != nil {
		fail(err)
	}
	prog := asm.NewProgramFromInsts(insts, asm.DefaultMemorySize)
	if err := prog.Run(); err != nil {
		fail(err)
	}
	fmt.Print(prog.EnvString())
}

// reportErrors prints the first diagnostic, if any, as one line on stderr.
func reportErrors(ctx *pipeline.PipelineContext) bool {
	if !ctx.HasErrors() {
		return false
	}
	redColor.Fprintln(os.Stderr, ctx.Errors[0])
	return true
}

func fail(err error) {
	redColor.Fprintln(os.Stderr, err)
	os.Exit(1)
}
