package parser

import (
	"strconv"

	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/token"
	"github.com/funvibe/riscml/internal/typesystem"
)

// Parser holds the state of our parser. The grammar is expression-only;
// precedence is encoded in the call chain, loosest first:
//
//	fn/if < or < and < '=' < '<=' '<' < '+' '-' < '*' '/' < '~' 'not'
//	    < let < application < atom
//
// Application by juxtaposition binds tighter than every binary operator,
// so `f x + y` is `(f x) + y` and `x * f (x-1)` is `x * (f (x-1))`.
type Parser struct {
	stream pipeline.TokenStream
	cur    token.Token

	// The first error is fatal; once set, the parser unwinds without
	// attempting recovery.
	err *diagnostics.DiagnosticError
}

func New(stream pipeline.TokenStream) *Parser {
	p := &Parser{stream: stream}
	p.cur = p.stream.Next()
	return p
}

// Parse consumes the whole stream and returns the expression it encodes.
func (p *Parser) Parse() (ast.Expr, *diagnostics.DiagnosticError) {
	expr := p.parseExpr()
	p.expect(token.EOF)
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.cur = p.stream.Next()
}

func (p *Parser) expect(t token.TokenType) token.Token {
	tok := p.cur
	if tok.Type != t {
		p.fail(t, tok)
		return tok
	}
	if t != token.EOF {
		p.advance()
	}
	return tok
}

func (p *Parser) fail(expected token.TokenType, found token.Token) {
	if p.err != nil {
		return
	}
	got := string(found.Type)
	if found.Type == token.EOF {
		got = "end of input"
	}
	p.err = diagnostics.NewPhaseError(
		diagnostics.PhaseParser, diagnostics.ErrP001, found, string(expected), got)
}

func (p *Parser) parseExpr() ast.Expr {
	if p.err != nil {
		return nil
	}
	switch p.cur.Type {
	case token.FN:
		return p.parseFn()
	case token.IF:
		return p.parseIf()
	default:
		return p.parseOr()
	}
}

func (p *Parser) parseFn() ast.Expr {
	tok := p.expect(token.FN)
	formal := p.expect(token.IDENT)
	var ann typesystem.Type
	if p.cur.Type == token.COLON {
		p.advance()
		ann = p.parseType()
	}
	p.expect(token.ARROW)
	body := p.parseExpr()
	if p.err != nil {
		return nil
	}
	return &ast.Fn{Token: tok, Formal: formal.Lexeme, Ann: ann, Body: body}
}

func (p *Parser) parseIf() ast.Expr {
	tok := p.expect(token.IF)
	cond := p.parseOr()
	p.expect(token.THEN)
	thn := p.parseExpr()
	p.expect(token.ELSE)
	els := p.parseExpr()
	p.expect(token.END)
	if p.err != nil {
		return nil
	}
	return &ast.IfThenElse{Token: tok, Cond: cond, Then: thn, Else: els}
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.err == nil && p.cur.Type == token.OR {
		tok := p.cur
		p.advance()
		right := p.parseAnd()
		left = &ast.Or{Token: tok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.err == nil && p.cur.Type == token.AND {
		tok := p.cur
		p.advance()
		right := p.parseEquality()
		left = &ast.And{Token: tok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.err == nil && p.cur.Type == token.EQL {
		tok := p.cur
		p.advance()
		right := p.parseComparison()
		left = &ast.Eql{Token: tok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.err == nil {
		switch p.cur.Type {
		case token.LEQ:
			tok := p.cur
			p.advance()
			right := p.parseAdditive()
			left = &ast.Leq{Token: tok, Left: left, Right: right}
		case token.LTH:
			tok := p.cur
			p.advance()
			right := p.parseAdditive()
			left = &ast.Lth{Token: tok, Left: left, Right: right}
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.err == nil {
		switch p.cur.Type {
		case token.ADD:
			tok := p.cur
			p.advance()
			right := p.parseMultiplicative()
			left = &ast.Add{Token: tok, Left: left, Right: right}
		case token.SUB:
			tok := p.cur
			p.advance()
			right := p.parseMultiplicative()
			left = &ast.Sub{Token: tok, Left: left, Right: right}
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.err == nil {
		switch p.cur.Type {
		case token.MUL:
			tok := p.cur
			p.advance()
			right := p.parseUnary()
			left = &ast.Mul{Token: tok, Left: left, Right: right}
		case token.DIV:
			tok := p.cur
			p.advance()
			right := p.parseUnary()
			left = &ast.Div{Token: tok, Left: left, Right: right}
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.NEG:
		tok := p.cur
		p.advance()
		return &ast.Neg{Token: tok, Exp: p.parseUnary()}
	case token.NOT:
		tok := p.cur
		p.advance()
		return &ast.Not{Token: tok, Exp: p.parseUnary()}
	default:
		return p.parseLet()
	}
}

func (p *Parser) parseLet() ast.Expr {
	if p.cur.Type != token.LET {
		return p.parseApplication()
	}

	tok := p.expect(token.LET)

	if p.cur.Type == token.REC {
		// let rec f x = body in b end  desugars to  Let(f, Fun(f, x, body), b)
		p.advance()
		name := p.expect(token.IDENT)
		formal := p.expect(token.IDENT)
		p.expect(token.EQL)
		body := p.parseExpr()
		p.expect(token.IN)
		letBody := p.parseExpr()
		p.expect(token.END)
		if p.err != nil {
			return nil
		}
		fun := &ast.Fun{Token: tok, Name: name.Lexeme, Formal: formal.Lexeme, Body: body}
		return &ast.Let{Token: tok, Name: name.Lexeme, Def: fun, Body: letBody}
	}

	name := p.expect(token.IDENT)
	var ann typesystem.Type
	if p.cur.Type == token.COLON {
		p.advance()
		ann = p.parseType()
	}
	p.expect(token.ASSIGN)
	def := p.parseExpr()
	p.expect(token.IN)
	body := p.parseExpr()
	p.expect(token.END)
	if p.err != nil {
		return nil
	}
	return &ast.Let{Token: tok, Name: name.Lexeme, Ann: ann, Def: def, Body: body}
}

func (p *Parser) parseApplication() ast.Expr {
	left := p.parseAtom()
	for p.err == nil && p.isAtomStart() {
		tok := p.cur
		right := p.parseAtom()
		left = &ast.App{Token: tok, Fn: left, Arg: right}
	}
	return left
}

func (p *Parser) isAtomStart() bool {
	switch p.cur.Type {
	case token.NUM, token.TRUE, token.FALSE, token.IDENT, token.LPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.cur
	switch tok.Type {
	case token.NUM:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			if p.err == nil {
				p.err = diagnostics.NewPhaseError(
					diagnostics.PhaseParser, diagnostics.ErrP002, tok, tok.Lexeme)
			}
			return nil
		}
		return &ast.Num{Token: tok, Value: value}
	case token.TRUE:
		p.advance()
		return &ast.Bln{Token: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.Bln{Token: tok, Value: false}
	case token.IDENT:
		p.advance()
		return &ast.Var{Token: tok, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return expr
	default:
		p.fail("expression", tok)
		return nil
	}
}

// parseType parses a type annotation: base ('->' type)?, right-associative.
func (p *Parser) parseType() typesystem.Type {
	base := p.parseBaseType()
	if p.cur.Type == token.TYPEARROW {
		p.advance()
		tail := p.parseType()
		if p.err != nil {
			return nil
		}
		return typesystem.TArrow{Head: base, Tail: tail}
	}
	return base
}

func (p *Parser) parseBaseType() typesystem.Type {
	tok := p.cur
	switch tok.Type {
	case token.TINT:
		p.advance()
		return typesystem.Int
	case token.TBOOL:
		p.advance()
		return typesystem.Bool
	case token.LPAREN:
		p.advance()
		t := p.parseType()
		p.expect(token.RPAREN)
		return t
	default:
		p.fail("type", tok)
		return nil
	}
}
