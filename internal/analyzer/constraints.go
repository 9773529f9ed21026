package analyzer

import (
	"fmt"

	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/token"
	"github.com/funvibe/riscml/internal/typesystem"
)

// Constraint is an equality between two type terms. Program identifiers
// appear as type variables named after the identifier; placeholder
// variables are named TV_1, TV_2, ...
type Constraint struct {
	Left  typesystem.Type
	Right typesystem.Type
	Token token.Token
}

func (c Constraint) String() string {
	return fmt.Sprintf("(%s, %s)", c.Left, c.Right)
}

func (a *Analyzer) freshTypeVar() typesystem.TVar {
	a.freshCounter++
	return typesystem.TVar{Name: fmt.Sprintf("TV_%d", a.freshCounter)}
}

func (a *Analyzer) add(left, right typesystem.Type, tok token.Token) {
	a.constraints = append(a.constraints, Constraint{Left: left, Right: right, Token: tok})
}

// generate collects the equality constraints for e, whose type is stood
// for by the placeholder expected.
func (a *Analyzer) generate(e ast.Expr, expected typesystem.Type) {
	switch e := e.(type) {
	case *ast.Num:
		a.add(typesystem.Int, expected, e.Token)
	case *ast.Bln:
		a.add(typesystem.Bool, expected, e.Token)
	case *ast.Var:
		a.add(typesystem.TVar{Name: e.Name}, expected, e.Token)
	case *ast.Add:
		a.arith(e.Left, e.Right, expected, e.Token)
	case *ast.Sub:
		a.arith(e.Left, e.Right, expected, e.Token)
	case *ast.Mul:
		a.arith(e.Left, e.Right, expected, e.Token)
	case *ast.Div:
		a.arith(e.Left, e.Right, expected, e.Token)
	case *ast.Mod:
		a.arith(e.Left, e.Right, expected, e.Token)
	case *ast.Neg:
		a.generate(e.Exp, typesystem.Int)
		a.add(typesystem.Int, expected, e.Token)
	case *ast.And:
		a.logic(e.Left, e.Right, expected, e.Token)
	case *ast.Or:
		a.logic(e.Left, e.Right, expected, e.Token)
	case *ast.Not:
		a.generate(e.Exp, typesystem.Bool)
		a.add(typesystem.Bool, expected, e.Token)
	case *ast.Leq:
		a.comparison(e.Left, e.Right, expected, e.Token)
	case *ast.Lth:
		a.comparison(e.Left, e.Right, expected, e.Token)
	case *ast.Eql:
		// Both sides share a fresh type variable: equality is defined on
		// any single type, and the result is boolean.
		shared := a.freshTypeVar()
		a.generate(e.Left, shared)
		a.generate(e.Right, shared)
		a.add(typesystem.Bool, expected, e.Token)
	case *ast.IfThenElse:
		a.generate(e.Cond, typesystem.Bool)
		branch := a.freshTypeVar()
		a.generate(e.Then, branch)
		a.generate(e.Else, branch)
		a.add(branch, expected, e.Token)
	case *ast.Let:
		// The definition is generated against the placeholder named by the
		// binder itself, so every use site shares it.
		binder := typesystem.TVar{Name: e.Name}
		a.generate(e.Def, binder)
		if e.Ann != nil {
			a.add(binder, e.Ann, e.Token)
		}
		body := a.freshTypeVar()
		a.generate(e.Body, body)
		a.add(body, expected, e.Token)
	case *ast.Fn:
		arg := a.freshTypeVar()
		res := a.freshTypeVar()
		a.add(typesystem.TVar{Name: e.Formal}, arg, e.Token)
		if e.Ann != nil {
			a.add(arg, e.Ann, e.Token)
		}
		a.generate(e.Body, res)
		a.add(typesystem.TArrow{Head: arg, Tail: res}, expected, e.Token)
	case *ast.Fun:
		arg := a.freshTypeVar()
		res := a.freshTypeVar()
		arrow := typesystem.TArrow{Head: arg, Tail: res}
		a.add(typesystem.TVar{Name: e.Formal}, arg, e.Token)
		// The function's own name is in scope in its body.
		a.add(typesystem.TVar{Name: e.Name}, arrow, e.Token)
		a.generate(e.Body, res)
		a.add(arrow, expected, e.Token)
	case *ast.App:
		arg := a.freshTypeVar()
		a.generate(e.Fn, typesystem.TArrow{Head: arg, Tail: expected})
		a.generate(e.Arg, arg)
	}
}

func (a *Analyzer) arith(left, right ast.Expr, expected typesystem.Type, tok token.Token) {
	a.generate(left, typesystem.Int)
	a.generate(right, typesystem.Int)
	a.add(typesystem.Int, expected, tok)
}

func (a *Analyzer) logic(left, right ast.Expr, expected typesystem.Type, tok token.Token) {
	a.generate(left, typesystem.Bool)
	a.generate(right, typesystem.Bool)
	a.add(typesystem.Bool, expected, tok)
}

func (a *Analyzer) comparison(left, right ast.Expr, expected typesystem.Type, tok token.Token) {
	a.generate(left, typesystem.Int)
	a.generate(right, typesystem.Int)
	a.add(typesystem.Bool, expected, tok)
}
