package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/riscml/internal/analyzer"
	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/lexer"
	"github.com/funvibe/riscml/internal/parser"
	"github.com/funvibe/riscml/internal/typesystem"
)

func infer(t *testing.T, input string) (map[string]typesystem.Type, *diagnostics.DiagnosticError) {
	t.Helper()
	l := lexer.New(input)
	root, err := parser.New(lexer.NewTokenStream(lexer.Scan(l))).Parse()
	require.Nil(t, err, "input: %q", input)
	return analyzer.New().Infer(root)
}

func mustInfer(t *testing.T, input string) map[string]typesystem.Type {
	t.Helper()
	env, err := infer(t, input)
	require.Nil(t, err, "input: %q", input)
	return env
}

func inferError(t *testing.T, input string) *diagnostics.DiagnosticError {
	t.Helper()
	_, err := infer(t, input)
	require.NotNil(t, err, "input: %q", input)
	return err
}

var (
	intToInt = typesystem.TArrow{Head: typesystem.Int, Tail: typesystem.Int}
)

func TestInferLet(t *testing.T) {
	env := mustInfer(t, "let v <- 42 in v end")
	assert.Equal(t, typesystem.Int, env["v"])
}

func TestInferChainedLets(t *testing.T) {
	env := mustInfer(t, "let v <- 1 in let y <- v in y end end")
	assert.Equal(t, typesystem.Int, env["v"])
	assert.Equal(t, typesystem.Int, env["y"])
}

func TestInferConditionalResult(t *testing.T) {
	env := mustInfer(t,
		"let w <- if (let v <- 1 in v end) < 2 then true else false end in w and w end")
	assert.Equal(t, typesystem.Int, env["v"])
	assert.Equal(t, typesystem.Bool, env["w"])
}

func TestInferFunction(t *testing.T) {
	env := mustInfer(t, "let f <- (fn x => x + 1) in f 2 end")
	assert.Equal(t, typesystem.Int, env["x"])
	assert.Equal(t, intToInt, env["f"])
}

func TestInferFromAnnotation(t *testing.T) {
	env := mustInfer(t, "let f : int -> int <- (fn x => x) in f 3 end")
	assert.Equal(t, intToInt, env["f"])
	assert.Equal(t, typesystem.Int, env["x"])
}

func TestInferEqualityIsPolymorphicInItsOperands(t *testing.T) {
	env := mustInfer(t, "let p <- true = false in let q <- 1 = 2 in p and q end end")
	assert.Equal(t, typesystem.Bool, env["p"])
	assert.Equal(t, typesystem.Bool, env["q"])
}

func TestInferRecursiveFunction(t *testing.T) {
	env := mustInfer(t, "let rec f x = if x < 2 then 1 else x * f (x - 1) end in f 5 end")
	assert.Equal(t, intToInt, env["f"])
	assert.Equal(t, typesystem.Int, env["x"])
}

func TestInferHigherOrder(t *testing.T) {
	env := mustInfer(t, "let apply <- (fn g => g 1) in apply (fn x => x + 1) end")
	assert.Equal(t, intToInt, env["g"])
	assert.Equal(t,
		typesystem.TArrow{Head: intToInt, Tail: typesystem.Int},
		env["apply"])
}

func TestMismatch(t *testing.T) {
	tests := []string{
		"1 + true",
		"if 1 then 2 else 3 end",
		"true < false",
		"not 1",
		"~false",
		"1 and 2",
		"1 = true",
		"let v : bool <- 1 in v end",
		"(fn x : bool => x) 1",
		"let f <- (fn x => x + 1) in f true end",
	}
	for _, input := range tests {
		err := inferError(t, input)
		assert.Equal(t, diagnostics.ErrT001, err.Code, "input: %q", input)
		assert.Equal(t, diagnostics.PhaseTypecheck, err.Phase, "input: %q", input)
	}
}

func TestInfiniteType(t *testing.T) {
	err := inferError(t, "let rec f x = f in f end")
	assert.Equal(t, diagnostics.ErrT002, err.Code)
}

func TestPolymorphic(t *testing.T) {
	tests := []string{
		"fn x => x",
		"let id <- (fn x => x) in true end",
	}
	for _, input := range tests {
		err := inferError(t, input)
		assert.Equal(t, diagnostics.ErrT003, err.Code, "input: %q", input)
	}
}

func TestUndefinedVariable(t *testing.T) {
	tests := []string{
		"v",
		"let v <- v in v end",
		"let v <- 1 in w end",
	}
	for _, input := range tests {
		err := inferError(t, input)
		assert.Equal(t, diagnostics.ErrT005, err.Code, "input: %q", input)
	}
}

func TestEveryBinderGetsExactlyOneType(t *testing.T) {
	env := mustInfer(t, "let a <- 1 in let b <- a < 2 in if b then a else 0 end end end")
	require.Len(t, env, 2)
	assert.Equal(t, typesystem.Int, env["a"])
	assert.Equal(t, typesystem.Bool, env["b"])
}

func TestModConstraintsMatchArithmetic(t *testing.T) {
	root := &ast.Let{
		Name: "m",
		Def: &ast.Mod{
			Left:  &ast.Num{Value: 7},
			Right: &ast.Num{Value: 3},
		},
		Body: &ast.Var{Name: "m"},
	}
	env, err := analyzer.New().Infer(root)
	require.Nil(t, err)
	assert.Equal(t, typesystem.Int, env["m"])
}
