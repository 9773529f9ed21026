package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/funvibe/riscml/internal/analyzer"
	"github.com/funvibe/riscml/internal/codegen"
	"github.com/funvibe/riscml/internal/lexer"
	"github.com/funvibe/riscml/internal/parser"
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/renamer"
)

// Color definitions for REPL output: results are yellow, errors red, and
// the banner green.
var (
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

const banner = `riscml - an ML-flavored expression language on a RISC-like machine`

// Repl is the interactive loop: each line is compiled and executed as a
// complete program.
type Repl struct {
	Prompt string
}

func New() *Repl {
	return &Repl{Prompt: "riscml> "}
}

func (r *Repl) Run() error {
	rl, err := readline.New(r.Prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	greenColor.Println(banner)
	cyanColor.Println("Type an expression, :asm <expr> to see its code, :quit to leave.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return nil
		case strings.HasPrefix(line, ":asm "):
			r.showAsm(strings.TrimPrefix(line, ":asm "))
		default:
			r.evalLine(line)
		}
	}
}

func (r *Repl) compile(source string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.TypeCheckProcessor{},
		&renamer.RenameProcessor{},
		&codegen.CodegenProcessor{},
	).Run(ctx)
}

func (r *Repl) evalLine(source string) {
	ctx := r.compile(source)
	if r.reportErrors(ctx) {
		return
	}

	if err := ctx.Program.Run(); err != nil {
		redColor.Println(err)
		return
	}
	result, err := ctx.Program.GetVal(ctx.ResultReg)
	if err != nil {
		redColor.Println(err)
		return
	}
	yellowColor.Println(result)
}

func (r *Repl) showAsm(source string) {
	ctx := r.compile(source)
	if r.reportErrors(ctx) {
		return
	}
	cyanColor.Print(ctx.Program.Listing())
}

func (r *Repl) reportErrors(ctx *pipeline.PipelineContext) bool {
	for _, err := range ctx.Errors {
		redColor.Println(err)
	}
	return ctx.HasErrors()
}
