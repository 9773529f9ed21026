package evaluator

import (
	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/token"
)

// Evaluator is the reference tree-walking backend. The compiled pipeline
// must agree with it on every well-typed program that does not divide by
// zero.
type Evaluator struct{}

func New() *Evaluator {
	return &Evaluator{}
}

func (ev *Evaluator) Eval(e ast.Expr, env *Environment) (Object, error) {
	switch e := e.(type) {
	case *ast.Num:
		return &Integer{Value: e.Value}, nil
	case *ast.Bln:
		return &Boolean{Value: e.Value}, nil
	case *ast.Var:
		if obj, ok := env.Get(e.Name); ok {
			return obj, nil
		}
		return nil, runtimeError(e.GetToken(), "undefined variable: "+e.Name)
	case *ast.Add:
		return ev.arith(e.Left, e.Right, env, e.GetToken(), func(a, b int64) (int64, error) { return a + b, nil })
	case *ast.Sub:
		return ev.arith(e.Left, e.Right, env, e.GetToken(), func(a, b int64) (int64, error) { return a - b, nil })
	case *ast.Mul:
		return ev.arith(e.Left, e.Right, env, e.GetToken(), func(a, b int64) (int64, error) { return a * b, nil })
	case *ast.Div:
		return ev.arith(e.Left, e.Right, env, e.GetToken(), floorDiv)
	case *ast.Mod:
		return ev.arith(e.Left, e.Right, env, e.GetToken(), floorMod)
	case *ast.Neg:
		operand, err := ev.evalInt(e.Exp, env)
		if err != nil {
			return nil, err
		}
		return &Integer{Value: -operand}, nil
	case *ast.Lth:
		return ev.compare(e.Left, e.Right, env, func(a, b int64) bool { return a < b })
	case *ast.Leq:
		return ev.compare(e.Left, e.Right, env, func(a, b int64) bool { return a <= b })
	case *ast.Eql:
		left, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.equals(left, right, e.GetToken())
	case *ast.Not:
		operand, err := ev.evalBool(e.Exp, env)
		if err != nil {
			return nil, err
		}
		return &Boolean{Value: !operand}, nil
	case *ast.And:
		left, err := ev.evalBool(e.Left, env)
		if err != nil {
			return nil, err
		}
		if !left {
			return &Boolean{Value: false}, nil
		}
		right, err := ev.evalBool(e.Right, env)
		if err != nil {
			return nil, err
		}
		return &Boolean{Value: right}, nil
	case *ast.Or:
		left, err := ev.evalBool(e.Left, env)
		if err != nil {
			return nil, err
		}
		if left {
			return &Boolean{Value: true}, nil
		}
		right, err := ev.evalBool(e.Right, env)
		if err != nil {
			return nil, err
		}
		return &Boolean{Value: right}, nil
	case *ast.IfThenElse:
		cond, err := ev.evalBool(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond {
			return ev.Eval(e.Then, env)
		}
		return ev.Eval(e.Else, env)
	case *ast.Let:
		def, err := ev.Eval(e.Def, env)
		if err != nil {
			return nil, err
		}
		inner := NewEnclosedEnvironment(env)
		inner.Set(e.Name, def)
		return ev.Eval(e.Body, inner)
	case *ast.Fn:
		return &Function{Formal: e.Formal, Body: e.Body, Env: env}, nil
	case *ast.Fun:
		return &RecFunction{Name: e.Name, Formal: e.Formal, Body: e.Body, Env: env}, nil
	case *ast.App:
		fn, err := ev.Eval(e.Fn, env)
		if err != nil {
			return nil, err
		}
		arg, err := ev.Eval(e.Arg, env)
		if err != nil {
			return nil, err
		}
		return ev.apply(fn, arg, e.GetToken())
	}
	return nil, runtimeError(e.GetToken(), "unhandled expression")
}

func (ev *Evaluator) apply(fn, arg Object, tok token.Token) (Object, error) {
	switch fn := fn.(type) {
	case *Function:
		inner := NewEnclosedEnvironment(fn.Env)
		inner.Set(fn.Formal, arg)
		return ev.Eval(fn.Body, inner)
	case *RecFunction:
		inner := NewEnclosedEnvironment(fn.Env)
		inner.Set(fn.Name, fn)
		inner.Set(fn.Formal, arg)
		return ev.Eval(fn.Body, inner)
	default:
		return nil, diagnostics.NewPhaseError(
			diagnostics.PhaseRuntime, diagnostics.ErrR004, tok, fn.Inspect())
	}
}

func (ev *Evaluator) equals(left, right Object, tok token.Token) (Object, error) {
	switch left := left.(type) {
	case *Integer:
		if right, ok := right.(*Integer); ok {
			return &Boolean{Value: left.Value == right.Value}, nil
		}
	case *Boolean:
		if right, ok := right.(*Boolean); ok {
			return &Boolean{Value: left.Value == right.Value}, nil
		}
	}
	return nil, runtimeError(tok, "equality on incompatible values")
}

func (ev *Evaluator) arith(left, right ast.Expr, env *Environment, tok token.Token, op func(a, b int64) (int64, error)) (Object, error) {
	a, err := ev.evalInt(left, env)
	if err != nil {
		return nil, err
	}
	b, err := ev.evalInt(right, env)
	if err != nil {
		return nil, err
	}
	result, err := op(a, b)
	if err != nil {
		if de, ok := err.(*diagnostics.DiagnosticError); ok && de.Token.Line == 0 {
			de.Token = tok
		}
		return nil, err
	}
	return &Integer{Value: result}, nil
}

func (ev *Evaluator) compare(left, right ast.Expr, env *Environment, op func(a, b int64) bool) (Object, error) {
	a, err := ev.evalInt(left, env)
	if err != nil {
		return nil, err
	}
	b, err := ev.evalInt(right, env)
	if err != nil {
		return nil, err
	}
	return &Boolean{Value: op(a, b)}, nil
}

func (ev *Evaluator) evalInt(e ast.Expr, env *Environment) (int64, error) {
	obj, err := ev.Eval(e, env)
	if err != nil {
		return 0, err
	}
	i, ok := obj.(*Integer)
	if !ok {
		return 0, runtimeError(e.GetToken(), "expected an integer")
	}
	return i.Value, nil
}

func (ev *Evaluator) evalBool(e ast.Expr, env *Environment) (bool, error) {
	obj, err := ev.Eval(e, env)
	if err != nil {
		return false, err
	}
	b, ok := obj.(*Boolean)
	if !ok {
		return false, runtimeError(e.GetToken(), "expected a boolean")
	}
	return b.Value, nil
}

func floorDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, diagnostics.NewPhaseError(
			diagnostics.PhaseRuntime, diagnostics.ErrR002, token.Token{})
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

func floorMod(a, b int64) (int64, error) {
	q, err := floorDiv(a, b)
	if err != nil {
		return 0, err
	}
	return a - q*b, nil
}

func runtimeError(tok token.Token, message string) error {
	return diagnostics.NewPhaseError(
		diagnostics.PhaseRuntime, diagnostics.ErrR000, tok, message)
}
