package pipeline

import (
	"github.com/funvibe/riscml/internal/asm"
	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/typesystem"
)

// PipelineContext holds all the data passed between pipeline stages.
type PipelineContext struct {
	SourceCode  string
	TokenStream TokenStream
	AstRoot     ast.Expr

	// TypeEnv maps every source identifier to its inferred monomorphic type.
	TypeEnv map[string]typesystem.Type

	// Program and ResultReg are produced by the code generator. ResultReg
	// names the register that holds the value of the whole expression once
	// Program has run.
	Program   *asm.Program
	ResultReg string

	Errors []*diagnostics.DiagnosticError
}

// NewPipelineContext creates and initializes a new PipelineContext.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		TypeEnv:    make(map[string]typesystem.Type),
		Errors:     []*diagnostics.DiagnosticError{},
	}
}

// HasErrors reports whether any stage has failed so far. Later stages use
// it as their guard: the pipeline itself always runs every processor.
func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
