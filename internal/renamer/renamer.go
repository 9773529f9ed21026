package renamer

import (
	"fmt"

	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/pipeline"
)

// Renamer rewrites every binder to a globally unique name, in place.
// After it runs, later passes may treat variable names as globally
// distinct registers. Free variables are left alone.
type Renamer struct {
	counter int
}

func New() *Renamer {
	return &Renamer{}
}

func (r *Renamer) fresh(base string) string {
	name := fmt.Sprintf("%s_%d", base, r.counter)
	r.counter++
	return name
}

// Rename renames e under the empty scope.
func (r *Renamer) Rename(e ast.Expr) {
	r.rename(e, map[string]string{})
}

// RenameWith renames e under an initial mapping. The application-site
// inliner uses it to substitute a formal parameter by an argument register.
func (r *Renamer) RenameWith(e ast.Expr, names map[string]string) {
	r.rename(e, names)
}

func (r *Renamer) rename(e ast.Expr, names map[string]string) {
	switch e := e.(type) {
	case *ast.Num, *ast.Bln:
	case *ast.Var:
		if fresh, ok := names[e.Name]; ok {
			e.Name = fresh
		}
	case *ast.Add:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Sub:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Mul:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Div:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Mod:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Eql:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Leq:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Lth:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.And:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Or:
		r.rename(e.Left, names)
		r.rename(e.Right, names)
	case *ast.Neg:
		r.rename(e.Exp, names)
	case *ast.Not:
		r.rename(e.Exp, names)
	case *ast.IfThenElse:
		r.rename(e.Cond, names)
		r.rename(e.Then, names)
		r.rename(e.Else, names)
	case *ast.Let:
		// The binder is not in scope in its own definition.
		r.rename(e.Def, names)
		original := e.Name
		e.Name = r.fresh(original)
		r.rename(e.Body, extend(names, original, e.Name))
	case *ast.Fn:
		original := e.Formal
		e.Formal = r.fresh(original)
		r.rename(e.Body, extend(names, original, e.Formal))
	case *ast.Fun:
		// The function's own name IS in scope in its body.
		extended := names
		originalName := e.Name
		e.Name = r.fresh(originalName)
		extended = extend(extended, originalName, e.Name)
		originalFormal := e.Formal
		e.Formal = r.fresh(originalFormal)
		extended = extend(extended, originalFormal, e.Formal)
		r.rename(e.Body, extended)
	case *ast.App:
		r.rename(e.Fn, names)
		r.rename(e.Arg, names)
	}
}

func extend(names map[string]string, original, fresh string) map[string]string {
	extended := make(map[string]string, len(names)+1)
	for k, v := range names {
		extended[k] = v
	}
	extended[original] = fresh
	return extended
}

type RenameProcessor struct{}

func (rp *RenameProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.AstRoot == nil {
		return ctx
	}
	New().Rename(ctx.AstRoot)
	return ctx
}
