package lexer

import (
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/token"
)

// bufferedStream is the finite, non-restartable token sequence consumed by
// the parser. Scanning happens once, up front, so lexer diagnostics are
// known before parsing starts.
type bufferedStream struct {
	tokens []token.Token
	pos    int
}

func (bs *bufferedStream) Next() token.Token {
	tok := bs.tokens[bs.pos]
	if bs.pos < len(bs.tokens)-1 {
		bs.pos++
	}
	return tok
}

func (bs *bufferedStream) Peek() token.Token {
	return bs.tokens[bs.pos]
}

var _ pipeline.TokenStream = (*bufferedStream)(nil)

// Scan runs the lexer to completion and returns the buffered tokens,
// including the trailing EOF.
func Scan(l *Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// NewTokenStream wraps an already scanned token slice.
func NewTokenStream(tokens []token.Token) pipeline.TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	return &bufferedStream{tokens: tokens}
}

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.SourceCode)
	tokens := Scan(l)
	ctx.Errors = append(ctx.Errors, l.Errors...)
	ctx.TokenStream = NewTokenStream(tokens)
	return ctx
}
