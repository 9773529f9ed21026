package analyzer

import (
	"reflect"

	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/token"
	"github.com/funvibe/riscml/internal/typesystem"
)

// solve unifies every constraint, composing the substitutions.
func (a *Analyzer) solve() (typesystem.Subst, *diagnostics.DiagnosticError) {
	subst := typesystem.Subst{}
	for _, c := range a.constraints {
		left := c.Left.Apply(subst)
		right := c.Right.Apply(subst)
		s, err := typesystem.Unify(left, right)
		if err != nil {
			switch err := err.(type) {
			case *typesystem.MismatchError:
				return nil, diagnostics.NewPhaseError(
					diagnostics.PhaseTypecheck, diagnostics.ErrT001, c.Token, err.T1, err.T2)
			case *typesystem.InfiniteTypeError:
				return nil, diagnostics.NewPhaseError(
					diagnostics.PhaseTypecheck, diagnostics.ErrT002, c.Token, err.Var, err.In)
			default:
				return nil, diagnostics.WrapError(diagnostics.PhaseTypecheck, c.Token, err)
			}
		}
		subst = subst.Compose(s)
	}
	return subst, nil
}

// canonicalize resolves every binder's placeholder to a concrete type.
// A binder whose type still contains variables is underconstrained; an
// annotated binder whose resolved type disagrees with its (resolved)
// annotation is ambiguous. The latter cannot happen when unification
// succeeded and exists as a safety net.
func (a *Analyzer) canonicalize(root ast.Expr, subst typesystem.Subst) (map[string]typesystem.Type, *diagnostics.DiagnosticError) {
	env := make(map[string]typesystem.Type)
	var firstErr *diagnostics.DiagnosticError

	visit := func(e ast.Expr) *diagnostics.DiagnosticError {
		switch e := e.(type) {
		case *ast.Let:
			if err := resolveBinder(env, e.Name, e.GetToken(), subst); err != nil {
				return err
			}
			if e.Ann != nil {
				resolved := env[e.Name]
				annotated := e.Ann.Apply(subst)
				if !reflect.DeepEqual(resolved, annotated) {
					return diagnostics.NewPhaseError(
						diagnostics.PhaseTypecheck, diagnostics.ErrT004, e.GetToken(),
						e.Name, resolved, annotated)
				}
			}
		case *ast.Fn:
			return resolveBinder(env, e.Formal, e.GetToken(), subst)
		case *ast.Fun:
			if err := resolveBinder(env, e.Name, e.GetToken(), subst); err != nil {
				return err
			}
			return resolveBinder(env, e.Formal, e.GetToken(), subst)
		}
		return nil
	}

	walk(root, func(e ast.Expr) bool {
		if firstErr != nil {
			return false
		}
		if err := visit(e); err != nil {
			firstErr = err
			return false
		}
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return env, nil
}

func resolveBinder(env map[string]typesystem.Type, name string, tok token.Token, subst typesystem.Subst) *diagnostics.DiagnosticError {
	resolved := typesystem.TVar{Name: name}.Apply(subst)
	if !typesystem.IsConcrete(resolved) {
		return diagnostics.NewPhaseError(
			diagnostics.PhaseTypecheck, diagnostics.ErrT003, tok, name)
	}
	env[name] = resolved
	return nil
}

// walk traverses e depth-first, pre-order; fn returning false stops the
// descent into the node's children.
func walk(e ast.Expr, fn func(ast.Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *ast.Add:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Sub:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Mul:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Div:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Mod:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Eql:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Leq:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Lth:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.And:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Or:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *ast.Neg:
		walk(e.Exp, fn)
	case *ast.Not:
		walk(e.Exp, fn)
	case *ast.Let:
		walk(e.Def, fn)
		walk(e.Body, fn)
	case *ast.IfThenElse:
		walk(e.Cond, fn)
		walk(e.Then, fn)
		walk(e.Else, fn)
	case *ast.Fn:
		walk(e.Body, fn)
	case *ast.Fun:
		walk(e.Body, fn)
	case *ast.App:
		walk(e.Fn, fn)
		walk(e.Arg, fn)
	}
}
