package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/funvibe/riscml/internal/ast"
)

// --- Code Printer (output looks like source code) ---

// CodePrinter renders an AST back into surface syntax. The output is
// re-parsable: parsing it again yields a structurally equivalent tree.
type CodePrinter struct {
	buf bytes.Buffer
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print returns the surface syntax of e.
func (p *CodePrinter) Print(e ast.Expr) string {
	p.buf.Reset()
	p.print(e)
	return p.buf.String()
}

func (p *CodePrinter) print(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Num:
		if e.Value < 0 {
			fmt.Fprintf(&p.buf, "~%d", -e.Value)
			return
		}
		fmt.Fprintf(&p.buf, "%d", e.Value)
	case *ast.Bln:
		if e.Value {
			p.buf.WriteString("true")
		} else {
			p.buf.WriteString("false")
		}
	case *ast.Var:
		p.buf.WriteString(e.Name)
	case *ast.Add:
		p.binary(e.Left, "+", e.Right)
	case *ast.Sub:
		p.binary(e.Left, "-", e.Right)
	case *ast.Mul:
		p.binary(e.Left, "*", e.Right)
	case *ast.Div:
		p.binary(e.Left, "/", e.Right)
	case *ast.Mod:
		// Mod has no surface operator; shown for diagnostics only.
		p.binary(e.Left, "mod", e.Right)
	case *ast.Eql:
		p.binary(e.Left, "=", e.Right)
	case *ast.Leq:
		p.binary(e.Left, "<=", e.Right)
	case *ast.Lth:
		p.binary(e.Left, "<", e.Right)
	case *ast.And:
		p.binary(e.Left, "and", e.Right)
	case *ast.Or:
		p.binary(e.Left, "or", e.Right)
	case *ast.Neg:
		p.buf.WriteString("~")
		p.operand(e.Exp)
	case *ast.Not:
		p.buf.WriteString("not ")
		p.operand(e.Exp)
	case *ast.Let:
		if fun, ok := e.Def.(*ast.Fun); ok && fun.Name == e.Name {
			p.buf.WriteString("let rec ")
			p.buf.WriteString(fun.Name)
			p.buf.WriteString(" ")
			p.buf.WriteString(fun.Formal)
			p.buf.WriteString(" = ")
			p.print(fun.Body)
		} else {
			p.buf.WriteString("let ")
			p.buf.WriteString(e.Name)
			if e.Ann != nil {
				p.buf.WriteString(" : ")
				p.buf.WriteString(e.Ann.String())
			}
			p.buf.WriteString(" <- ")
			p.print(e.Def)
		}
		p.buf.WriteString(" in ")
		p.print(e.Body)
		p.buf.WriteString(" end")
	case *ast.IfThenElse:
		p.buf.WriteString("if ")
		p.print(e.Cond)
		p.buf.WriteString(" then ")
		p.print(e.Then)
		p.buf.WriteString(" else ")
		p.print(e.Else)
		p.buf.WriteString(" end")
	case *ast.Fn:
		p.buf.WriteString("fn ")
		p.buf.WriteString(e.Formal)
		if e.Ann != nil {
			p.buf.WriteString(" : ")
			p.buf.WriteString(e.Ann.String())
		}
		p.buf.WriteString(" => ")
		p.print(e.Body)
	case *ast.Fun:
		// Only meaningful as a let-rec definition; printed bare for debugging.
		fmt.Fprintf(&p.buf, "rec %s %s = ", e.Name, e.Formal)
		p.print(e.Body)
	case *ast.App:
		p.operand(e.Fn)
		p.buf.WriteString(" ")
		p.operand(e.Arg)
	}
}

func (p *CodePrinter) binary(left ast.Expr, op string, right ast.Expr) {
	p.operand(left)
	p.buf.WriteString(" ")
	p.buf.WriteString(op)
	p.buf.WriteString(" ")
	p.operand(right)
}

// operand prints a subexpression, parenthesized unless it is self-delimiting.
func (p *CodePrinter) operand(e ast.Expr) {
	if isAtom(e) {
		p.print(e)
		return
	}
	p.buf.WriteString("(")
	p.print(e)
	p.buf.WriteString(")")
}

func isAtom(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Bln, *ast.Var:
		return true
	case *ast.Num:
		return e.Value >= 0
	default:
		return false
	}
}
