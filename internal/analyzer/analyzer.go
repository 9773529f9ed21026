package analyzer

import (
	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/typesystem"
)

// Analyzer runs the type inference phase: a use-def check, constraint
// generation, unification, and canonical naming. It is read-only over the
// AST and must run before the renamer, so constraints can be keyed by the
// source-level identifier names.
type Analyzer struct {
	freshCounter int
	constraints  []Constraint
}

func New() *Analyzer {
	return &Analyzer{}
}

// Infer returns the mapping from every source identifier to its single
// monomorphic type, or the first error found.
func (a *Analyzer) Infer(root ast.Expr) (map[string]typesystem.Type, *diagnostics.DiagnosticError) {
	if err := checkDefined(root, map[string]bool{}); err != nil {
		return nil, err
	}

	a.constraints = a.constraints[:0]
	a.generate(root, a.freshTypeVar())

	subst, err := a.solve()
	if err != nil {
		return nil, err
	}

	return a.canonicalize(root, subst)
}

// checkDefined rejects programs with free variables before constraint
// generation runs.
func checkDefined(e ast.Expr, defined map[string]bool) *diagnostics.DiagnosticError {
	switch e := e.(type) {
	case *ast.Num, *ast.Bln:
		return nil
	case *ast.Var:
		if !defined[e.Name] {
			return diagnostics.NewPhaseError(
				diagnostics.PhaseTypecheck, diagnostics.ErrT005, e.Token, e.Name)
		}
		return nil
	case *ast.Add:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Sub:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Mul:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Div:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Mod:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Eql:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Leq:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Lth:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.And:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Or:
		return checkBinary(e.Left, e.Right, defined)
	case *ast.Neg:
		return checkDefined(e.Exp, defined)
	case *ast.Not:
		return checkDefined(e.Exp, defined)
	case *ast.Let:
		if err := checkDefined(e.Def, defined); err != nil {
			return err
		}
		return checkDefined(e.Body, extend(defined, e.Name))
	case *ast.IfThenElse:
		if err := checkDefined(e.Cond, defined); err != nil {
			return err
		}
		if err := checkDefined(e.Then, defined); err != nil {
			return err
		}
		return checkDefined(e.Else, defined)
	case *ast.Fn:
		return checkDefined(e.Body, extend(defined, e.Formal))
	case *ast.Fun:
		return checkDefined(e.Body, extend(extend(defined, e.Name), e.Formal))
	case *ast.App:
		return checkBinary(e.Fn, e.Arg, defined)
	default:
		return nil
	}
}

func checkBinary(left, right ast.Expr, defined map[string]bool) *diagnostics.DiagnosticError {
	if err := checkDefined(left, defined); err != nil {
		return err
	}
	return checkDefined(right, defined)
}

func extend(defined map[string]bool, name string) map[string]bool {
	extended := make(map[string]bool, len(defined)+1)
	for k := range defined {
		extended[k] = true
	}
	extended[name] = true
	return extended
}

type TypeCheckProcessor struct{}

func (tp *TypeCheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.AstRoot == nil {
		return ctx
	}

	env, err := New().Infer(ctx.AstRoot)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.TypeEnv = env
	return ctx
}
