package codegen

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/riscml/internal/asm"
	"github.com/funvibe/riscml/internal/ast"
	"github.com/funvibe/riscml/internal/pipeline"
	"github.com/funvibe/riscml/internal/renamer"
)

// Generator lowers a renamed AST into the abstract machine's three-address
// code. Every Gen call returns the name of the register that holds the
// subexpression's value once the program runs.
type Generator struct {
	prog       *asm.Program
	tmpCounter int

	// inliner renames cloned function bodies at application sites; its
	// counter is independent from the pipeline renamer's.
	inliner *renamer.Renamer
}

func New(prog *asm.Program) *Generator {
	return &Generator{prog: prog, inliner: renamer.New()}
}

func (g *Generator) fresh() string {
	g.tmpCounter++
	return fmt.Sprintf("tmp%d", g.tmpCounter)
}

// freshClosureSlot names the register that holds a function literal's
// closure. The uuid suffix keeps the slot disjoint from every renamed
// program variable and temporary.
func (g *Generator) freshClosureSlot() string {
	return "fn_" + uuid.NewString()[:8]
}

// Gen emits code for e and returns the register holding its value.
func (g *Generator) Gen(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Num:
		dest := g.fresh()
		g.prog.AddInst(asm.Addi{BinOpImm: asm.BinOpImm{Rd: dest, Rs1: "x0", Imm: e.Value}})
		return dest
	case *ast.Bln:
		dest := g.fresh()
		value := int64(0)
		if e.Value {
			value = 1
		}
		g.prog.AddInst(asm.Addi{BinOpImm: asm.BinOpImm{Rd: dest, Rs1: "x0", Imm: value}})
		return dest
	case *ast.Var:
		// The renamer guarantees the name is unique, so the variable is
		// its own register.
		return e.Name
	case *ast.Add:
		return g.binOp(e.Left, e.Right, func(rd, rs1, rs2 string) asm.Inst {
			return asm.Add{BinOp: asm.BinOp{Rd: rd, Rs1: rs1, Rs2: rs2}}
		})
	case *ast.Sub:
		return g.binOp(e.Left, e.Right, func(rd, rs1, rs2 string) asm.Inst {
			return asm.Sub{BinOp: asm.BinOp{Rd: rd, Rs1: rs1, Rs2: rs2}}
		})
	case *ast.Mul:
		return g.binOp(e.Left, e.Right, func(rd, rs1, rs2 string) asm.Inst {
			return asm.Mul{BinOp: asm.BinOp{Rd: rd, Rs1: rs1, Rs2: rs2}}
		})
	case *ast.Div:
		return g.binOp(e.Left, e.Right, func(rd, rs1, rs2 string) asm.Inst {
			return asm.Div{BinOp: asm.BinOp{Rd: rd, Rs1: rs1, Rs2: rs2}}
		})
	case *ast.Mod:
		// a mod b = a - (a div b) * b, with floor division.
		left := g.Gen(e.Left)
		right := g.Gen(e.Right)
		quot := g.fresh()
		g.prog.AddInst(asm.Div{BinOp: asm.BinOp{Rd: quot, Rs1: left, Rs2: right}})
		prod := g.fresh()
		g.prog.AddInst(asm.Mul{BinOp: asm.BinOp{Rd: prod, Rs1: quot, Rs2: right}})
		dest := g.fresh()
		g.prog.AddInst(asm.Sub{BinOp: asm.BinOp{Rd: dest, Rs1: left, Rs2: prod}})
		return dest
	case *ast.Lth:
		left := g.Gen(e.Left)
		right := g.Gen(e.Right)
		dest := g.fresh()
		g.prog.AddInst(asm.Slt{BinOp: asm.BinOp{Rd: dest, Rs1: left, Rs2: right}})
		return dest
	case *ast.Leq:
		// a <= b is the negation of b < a.
		left := g.Gen(e.Left)
		right := g.Gen(e.Right)
		greater := g.fresh()
		g.prog.AddInst(asm.Slt{BinOp: asm.BinOp{Rd: greater, Rs1: right, Rs2: left}})
		dest := g.fresh()
		g.prog.AddInst(asm.Xori{BinOpImm: asm.BinOpImm{Rd: dest, Rs1: greater, Imm: 1}})
		return dest
	case *ast.Eql:
		left := g.Gen(e.Left)
		right := g.Gen(e.Right)
		diff := g.fresh()
		g.prog.AddInst(asm.Sub{BinOp: asm.BinOp{Rd: diff, Rs1: left, Rs2: right}})
		return g.isZero(diff)
	case *ast.Neg:
		operand := g.Gen(e.Exp)
		dest := g.fresh()
		g.prog.AddInst(asm.Sub{BinOp: asm.BinOp{Rd: dest, Rs1: "x0", Rs2: operand}})
		return dest
	case *ast.Not:
		// A boolean is 1 or 0, so `not` is the is-zero test.
		operand := g.Gen(e.Exp)
		return g.isZero(operand)
	case *ast.And:
		// Short-circuit: the right operand is not evaluated when the left
		// one is false.
		left := g.Gen(e.Left)
		skip := &asm.Beq{Rs1: left, Rs2: "x0"}
		g.prog.AddInst(skip)
		right := g.Gen(e.Right)
		dest := g.fresh()
		g.prog.AddInst(asm.Add{BinOp: asm.BinOp{Rd: dest, Rs1: right, Rs2: "x0"}})
		done := &asm.Jal{Rd: "x0"}
		g.prog.AddInst(done)
		skip.SetTarget(g.prog.NumInsts())
		g.prog.AddInst(asm.Addi{BinOpImm: asm.BinOpImm{Rd: dest, Rs1: "x0", Imm: 0}})
		done.SetTarget(g.prog.NumInsts())
		return dest
	case *ast.Or:
		left := g.Gen(e.Left)
		toRight := &asm.Beq{Rs1: left, Rs2: "x0"}
		g.prog.AddInst(toRight)
		dest := g.fresh()
		g.prog.AddInst(asm.Addi{BinOpImm: asm.BinOpImm{Rd: dest, Rs1: "x0", Imm: 1}})
		done := &asm.Jal{Rd: "x0"}
		g.prog.AddInst(done)
		toRight.SetTarget(g.prog.NumInsts())
		right := g.Gen(e.Right)
		g.prog.AddInst(asm.Add{BinOp: asm.BinOp{Rd: dest, Rs1: right, Rs2: "x0"}})
		done.SetTarget(g.prog.NumInsts())
		return dest
	case *ast.IfThenElse:
		cond := g.Gen(e.Cond)
		toElse := &asm.Beq{Rs1: cond, Rs2: "x0"}
		g.prog.AddInst(toElse)
		thenReg := g.Gen(e.Then)
		dest := g.fresh()
		g.prog.AddInst(asm.Add{BinOp: asm.BinOp{Rd: dest, Rs1: thenReg, Rs2: "x0"}})
		done := &asm.Jal{Rd: "x0"}
		g.prog.AddInst(done)
		toElse.SetTarget(g.prog.NumInsts())
		elseReg := g.Gen(e.Else)
		g.prog.AddInst(asm.Add{BinOp: asm.BinOp{Rd: dest, Rs1: elseReg, Rs2: "x0"}})
		done.SetTarget(g.prog.NumInsts())
		return dest
	case *ast.Let:
		defReg := g.Gen(e.Def)
		// The add-x0 copy works for closure values too; the machine treats
		// it as a reference copy.
		g.prog.AddInst(asm.Add{BinOp: asm.BinOp{Rd: e.Name, Rs1: defReg, Rs2: "x0"}})
		return g.Gen(e.Body)
	case *ast.Fn:
		return g.genFunction(e.Formal, "", e.Body)
	case *ast.Fun:
		return g.genFunction(e.Formal, e.Name, e.Body)
	case *ast.App:
		if fn, ok := e.Fn.(*ast.Fn); ok {
			// A literal lambda is inlined: clone the body and rename the
			// formal to the argument's register.
			argReg := g.Gen(e.Arg)
			body := fn.Body.Clone()
			g.inliner.RenameWith(body, map[string]string{fn.Formal: argReg})
			return g.Gen(body)
		}
		fnReg := g.Gen(e.Fn)
		argReg := g.Gen(e.Arg)
		dest := g.fresh()
		g.prog.AddInst(&asm.Callc{Rd: dest, Rf: fnReg, Rs: argReg})
		return dest
	}
	return "x0"
}

// isZero emits the 1-exactly-when-zero pattern: reg < 1 XOR reg < 0.
func (g *Generator) isZero(reg string) string {
	ltOne := g.fresh()
	g.prog.AddInst(asm.Slti{BinOpImm: asm.BinOpImm{Rd: ltOne, Rs1: reg, Imm: 1}})
	ltZero := g.fresh()
	g.prog.AddInst(asm.Slti{BinOpImm: asm.BinOpImm{Rd: ltZero, Rs1: reg, Imm: 0}})
	dest := g.fresh()
	g.prog.AddInst(asm.Xor{BinOp: asm.BinOp{Rd: dest, Rs1: ltOne, Rs2: ltZero}})
	return dest
}

func (g *Generator) binOp(left, right ast.Expr, build func(rd, rs1, rs2 string) asm.Inst) string {
	leftReg := g.Gen(left)
	rightReg := g.Gen(right)
	dest := g.fresh()
	g.prog.AddInst(build(dest, leftReg, rightReg))
	return dest
}

// genFunction emits the function body once, jumped over by the fall-through
// path, preceded by a mkclo that captures the register file into a fresh
// slot. A non-empty selfName makes the closure reachable under its own
// name, which is how recursion finds it.
func (g *Generator) genFunction(formal, selfName string, body ast.Expr) string {
	slot := g.freshClosureSlot()
	mk := &asm.Mkclo{Rd: slot, Formal: formal, Self: selfName}
	g.prog.AddInst(mk)
	skip := &asm.Jal{Rd: "x0"}
	g.prog.AddInst(skip)

	mk.SetTarget(g.prog.NumInsts())
	bodyReg := g.Gen(body)
	g.prog.AddInst(&asm.Retc{Rs: bodyReg})
	skip.SetTarget(g.prog.NumInsts())
	return slot
}

type CodegenProcessor struct{}

func (cp *CodegenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.AstRoot == nil {
		return ctx
	}

	prog := asm.NewProgram(asm.DefaultMemorySize)
	ctx.ResultReg = New(prog).Gen(ctx.AstRoot)
	ctx.Program = prog
	return ctx
}
