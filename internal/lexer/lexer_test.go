package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/token"
)

func kinds(input string) []token.TokenType {
	l := New(input)
	var result []token.TokenType
	for _, tok := range Scan(l) {
		result = append(result, tok.Type)
	}
	return result
}

func TestScanKinds(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.TokenType
	}{
		{"1 + 3", []token.TokenType{token.NUM, token.ADD, token.NUM, token.EOF}},
		{"1 * 2\n", []token.TokenType{token.NUM, token.MUL, token.NUM, token.EOF}},
		{"1 * 2 -- 3\n", []token.TokenType{token.NUM, token.MUL, token.NUM, token.EOF}},
		{"1 + var", []token.TokenType{token.NUM, token.ADD, token.IDENT, token.EOF}},
		{"let v <- 2 in v end", []token.TokenType{
			token.LET, token.IDENT, token.ASSIGN, token.NUM, token.IN, token.IDENT, token.END, token.EOF,
		}},
		{"v: int -> int", []token.TokenType{
			token.IDENT, token.COLON, token.TINT, token.TYPEARROW, token.TINT, token.EOF,
		}},
		{"v: int -> bool", []token.TokenType{
			token.IDENT, token.COLON, token.TINT, token.TYPEARROW, token.TBOOL, token.EOF,
		}},
		{"fn v => v <= 1", []token.TokenType{
			token.FN, token.IDENT, token.ARROW, token.IDENT, token.LEQ, token.NUM, token.EOF,
		}},
		{"if true then ~1 else not false end", []token.TokenType{
			token.IF, token.TRUE, token.THEN, token.NEG, token.NUM,
			token.ELSE, token.NOT, token.FALSE, token.END, token.EOF,
		}},
		{"a == b = c", []token.TokenType{
			token.IDENT, token.EQL, token.IDENT, token.EQL, token.IDENT, token.EOF,
		}},
		{"(* a (comment) *) 7", []token.TokenType{token.NUM, token.EOF}},
		{"let rec f x = x in f end", []token.TokenType{
			token.LET, token.REC, token.IDENT, token.IDENT, token.EQL,
			token.IDENT, token.IN, token.IDENT, token.END, token.EOF,
		}},
		{"", []token.TokenType{token.EOF}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, kinds(tt.input), "input: %q", tt.input)
	}
}

func TestScanLexemes(t *testing.T) {
	l := New("let value_1 <- 210 in value_1 / 10 end")
	tokens := Scan(l)
	require.Empty(t, l.Errors)

	var lexemes []string
	for _, tok := range tokens[:len(tokens)-1] {
		lexemes = append(lexemes, tok.Lexeme)
	}
	assert.Equal(t, []string{"let", "value_1", "<-", "210", "in", "value_1", "/", "10", "end"}, lexemes)
}

func TestKeywordsUseMaximalMunch(t *testing.T) {
	// Identifiers that merely start with a keyword stay identifiers.
	assert.Equal(t,
		[]token.TokenType{token.IDENT, token.IDENT, token.IDENT, token.EOF},
		kinds("lethal inx endless"))
}

func TestDeterminism(t *testing.T) {
	input := "let f <- fn x => x * 2 in f 21 end -- comment\n(* block *)"
	first := Scan(New(input))
	second := Scan(New(input))
	assert.Equal(t, first, second)
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New("1 + $")
	Scan(l)
	require.Len(t, l.Errors, 1)
	assert.Equal(t, diagnostics.ErrL001, l.Errors[0].Code)
	assert.Equal(t, diagnostics.PhaseLexer, l.Errors[0].Phase)
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("1 (* never closed")
	Scan(l)
	require.Len(t, l.Errors, 1)
	assert.Equal(t, diagnostics.ErrL002, l.Errors[0].Code)
}

func TestPositions(t *testing.T) {
	l := New("1\n  abc")
	tokens := Scan(l)
	require.Len(t, tokens, 3)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 3, tokens[1].Column)
}
