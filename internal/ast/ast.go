package ast

import (
	"github.com/funvibe/riscml/internal/token"
	"github.com/funvibe/riscml/internal/typesystem"
)

// Expr is the interface implemented by every expression node. The language
// is expression-oriented: there are no statements, a program is one Expr.
type Expr interface {
	exprNode()
	GetToken() token.Token
	Clone() Expr
}

// Num is an integer literal.
type Num struct {
	Token token.Token
	Value int64
}

func (n *Num) exprNode()             {}
func (n *Num) GetToken() token.Token { return n.Token }
func (n *Num) Clone() Expr           { c := *n; return &c }

// Bln is a boolean literal.
type Bln struct {
	Token token.Token
	Value bool
}

func (b *Bln) exprNode()             {}
func (b *Bln) GetToken() token.Token { return b.Token }
func (b *Bln) Clone() Expr           { c := *b; return &c }

// Var is the use of an identifier. The renamer rewrites Name in place.
type Var struct {
	Token token.Token
	Name  string
}

func (v *Var) exprNode()             {}
func (v *Var) GetToken() token.Token { return v.Token }
func (v *Var) Clone() Expr           { c := *v; return &c }

// Binary operators. Each operator is its own node type so that every stage
// can dispatch exhaustively with a type switch.

type Add struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Add) exprNode()             {}
func (e *Add) GetToken() token.Token { return e.Token }
func (e *Add) Clone() Expr           { return &Add{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Sub struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Sub) exprNode()             {}
func (e *Sub) GetToken() token.Token { return e.Token }
func (e *Sub) Clone() Expr           { return &Sub{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Mul struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Mul) exprNode()             {}
func (e *Mul) GetToken() token.Token { return e.Token }
func (e *Mul) Clone() Expr           { return &Mul{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Div struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Div) exprNode()             {}
func (e *Div) GetToken() token.Token { return e.Token }
func (e *Div) Clone() Expr           { return &Div{e.Token, e.Left.Clone(), e.Right.Clone()} }

// Mod has no surface syntax; it exists for programmatic construction and is
// lowered with floor semantics like Div.
type Mod struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Mod) exprNode()             {}
func (e *Mod) GetToken() token.Token { return e.Token }
func (e *Mod) Clone() Expr           { return &Mod{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Eql struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Eql) exprNode()             {}
func (e *Eql) GetToken() token.Token { return e.Token }
func (e *Eql) Clone() Expr           { return &Eql{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Leq struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Leq) exprNode()             {}
func (e *Leq) GetToken() token.Token { return e.Token }
func (e *Leq) Clone() Expr           { return &Leq{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Lth struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Lth) exprNode()             {}
func (e *Lth) GetToken() token.Token { return e.Token }
func (e *Lth) Clone() Expr           { return &Lth{e.Token, e.Left.Clone(), e.Right.Clone()} }

type And struct {
	Token       token.Token
	Left, Right Expr
}

func (e *And) exprNode()             {}
func (e *And) GetToken() token.Token { return e.Token }
func (e *And) Clone() Expr           { return &And{e.Token, e.Left.Clone(), e.Right.Clone()} }

type Or struct {
	Token       token.Token
	Left, Right Expr
}

func (e *Or) exprNode()             {}
func (e *Or) GetToken() token.Token { return e.Token }
func (e *Or) Clone() Expr           { return &Or{e.Token, e.Left.Clone(), e.Right.Clone()} }

// Neg is the integer additive inverse, written '~'.
type Neg struct {
	Token token.Token
	Exp   Expr
}

func (e *Neg) exprNode()             {}
func (e *Neg) GetToken() token.Token { return e.Token }
func (e *Neg) Clone() Expr           { return &Neg{e.Token, e.Exp.Clone()} }

// Not is the boolean complement.
type Not struct {
	Token token.Token
	Exp   Expr
}

func (e *Not) exprNode()             {}
func (e *Not) GetToken() token.Token { return e.Token }
func (e *Not) Clone() Expr           { return &Not{e.Token, e.Exp.Clone()} }

// Let binds Name to Def inside Body. Ann is the optional type annotation.
type Let struct {
	Token token.Token
	Name  string
	Ann   typesystem.Type // nil when unannotated
	Def   Expr
	Body  Expr
}

func (e *Let) exprNode()             {}
func (e *Let) GetToken() token.Token { return e.Token }
func (e *Let) Clone() Expr {
	return &Let{e.Token, e.Name, e.Ann, e.Def.Clone(), e.Body.Clone()}
}

type IfThenElse struct {
	Token      token.Token
	Cond       Expr
	Then, Else Expr
}

func (e *IfThenElse) exprNode()             {}
func (e *IfThenElse) GetToken() token.Token { return e.Token }
func (e *IfThenElse) Clone() Expr {
	return &IfThenElse{e.Token, e.Cond.Clone(), e.Then.Clone(), e.Else.Clone()}
}

// Fn is an anonymous function literal.
type Fn struct {
	Token  token.Token
	Formal string
	Ann    typesystem.Type // nil when unannotated
	Body   Expr
}

func (e *Fn) exprNode()             {}
func (e *Fn) GetToken() token.Token { return e.Token }
func (e *Fn) Clone() Expr {
	return &Fn{e.Token, e.Formal, e.Ann, e.Body.Clone()}
}

// Fun is a named, self-referential function literal: Body may refer to Name.
type Fun struct {
	Token  token.Token
	Name   string
	Formal string
	Body   Expr
}

func (e *Fun) exprNode()             {}
func (e *Fun) GetToken() token.Token { return e.Token }
func (e *Fun) Clone() Expr {
	return &Fun{e.Token, e.Name, e.Formal, e.Body.Clone()}
}

// App is function application by juxtaposition.
type App struct {
	Token token.Token
	Fn    Expr
	Arg   Expr
}

func (e *App) exprNode()             {}
func (e *App) GetToken() token.Token { return e.Token }
func (e *App) Clone() Expr {
	return &App{e.Token, e.Fn.Clone(), e.Arg.Clone()}
}
