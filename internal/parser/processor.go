package parser

import (
	"github.com/funvibe/riscml/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.TokenStream == nil {
		return ctx
	}

	p := New(ctx.TokenStream)
	root, err := p.Parse()
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.AstRoot = root
	return ctx
}
