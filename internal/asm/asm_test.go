package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/riscml/internal/diagnostics"
)

func run(t *testing.T, p *Program) {
	t.Helper()
	require.NoError(t, p.Run())
}

func intReg(t *testing.T, p *Program, name string) int64 {
	t.Helper()
	v, err := p.GetInt(name)
	require.NoError(t, err)
	return v
}

func TestArithmetic(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("b0", IntVal(2))
	p.SetVal("b1", IntVal(3))
	p.SetVal("b2", IntVal(4))
	p.AddInst(Add{BinOp{"t0", "b0", "b1"}})
	p.AddInst(Sub{BinOp{"x1", "t0", "b2"}})
	p.AddInst(Mul{BinOp{"t1", "b0", "b2"}})
	p.AddInst(Addi{BinOpImm{"t2", "t1", 5}})
	run(t, p)

	assert.Equal(t, int64(5), intReg(t, p, "t0"))
	assert.Equal(t, int64(1), intReg(t, p, "x1"))
	assert.Equal(t, int64(8), intReg(t, p, "t1"))
	assert.Equal(t, int64(13), intReg(t, p, "t2"))
}

func TestX0IsAlwaysZero(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("b0", IntVal(2))
	p.SetVal("b1", IntVal(3))
	p.AddInst(Add{BinOp{"x0", "b0", "b1"}})
	run(t, p)

	assert.Equal(t, int64(0), intReg(t, p, "x0"))
}

func TestDivisionIsFloorDivision(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{8, 3, 2},
		{13, 2, 6},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
	}
	for _, tt := range tests {
		p := NewProgram(0)
		p.SetVal("a", IntVal(tt.a))
		p.SetVal("b", IntVal(tt.b))
		p.AddInst(Div{BinOp{"q", "a", "b"}})
		run(t, p)
		assert.Equal(t, tt.want, intReg(t, p, "q"), "%d / %d", tt.a, tt.b)
	}
}

func TestDivisionByZero(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("a", IntVal(3))
	p.AddInst(Div{BinOp{"q", "a", "x0"}})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR002, err.(*diagnostics.DiagnosticError).Code)
}

func TestComparisons(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("b0", IntVal(2))
	p.SetVal("b1", IntVal(3))
	p.AddInst(Slt{BinOp{"t0", "b0", "b1"}})
	p.AddInst(Slt{BinOp{"t1", "b1", "b0"}})
	p.AddInst(Slti{BinOpImm{"t2", "b0", 3}})
	p.AddInst(Slti{BinOpImm{"t3", "b0", 2}})
	p.AddInst(Xor{BinOp{"t4", "b0", "b1"}})
	p.AddInst(Xori{BinOpImm{"t5", "b0", 3}})
	run(t, p)

	assert.Equal(t, int64(1), intReg(t, p, "t0"))
	assert.Equal(t, int64(0), intReg(t, p, "t1"))
	assert.Equal(t, int64(1), intReg(t, p, "t2"))
	assert.Equal(t, int64(0), intReg(t, p, "t3"))
	assert.Equal(t, int64(1), intReg(t, p, "t4"))
	assert.Equal(t, int64(1), intReg(t, p, "t5"))
}

func TestBranching(t *testing.T) {
	// An always-taken branch skips the write to t0.
	p := NewProgram(0)
	p.SetVal("t0", IntVal(7))
	p.AddInst(&Beq{Rs1: "x0", Rs2: "x0", Target: 2})
	p.AddInst(Addi{BinOpImm{"t0", "x0", 99}})
	p.AddInst(Addi{BinOpImm{"t1", "x0", 1}})
	run(t, p)

	assert.Equal(t, int64(7), intReg(t, p, "t0"))
	assert.Equal(t, int64(1), intReg(t, p, "t1"))
}

func TestJalStoresReturnAddress(t *testing.T) {
	p := NewProgram(10)
	p.AddInst(&Jal{Rd: "ra", Target: 2})
	p.AddInst(Addi{BinOpImm{"skipped", "x0", 1}})
	p.AddInst(Addi{BinOpImm: BinOpImm{"t0", "x0", 5}})
	run(t, p)

	assert.Equal(t, int64(1), intReg(t, p, "ra"))
	assert.Equal(t, int64(5), intReg(t, p, "t0"))
	_, err := p.GetVal("skipped")
	assert.Error(t, err)
}

func TestJalrJumpsIndirect(t *testing.T) {
	p := NewProgram(10)
	p.SetVal("b", IntVal(1))
	p.AddInst(&Jalr{Rd: "ra", Rs1: "b", Offset: 2})
	p.AddInst(Addi{BinOpImm{"skipped", "x0", 1}})
	p.AddInst(Addi{BinOpImm{"skipped2", "x0", 1}})
	p.AddInst(Addi{BinOpImm{"t0", "x0", 9}})
	run(t, p)

	assert.Equal(t, int64(1), intReg(t, p, "ra"))
	assert.Equal(t, int64(9), intReg(t, p, "t0"))
}

func TestMemory(t *testing.T) {
	p := NewProgram(10)
	p.SetVal("a", IntVal(3))
	p.SetVal("b", IntVal(2))
	p.AddInst(Sw{MemOp{Base: "a", Offset: 0, Reg: "b"}})
	p.AddInst(Lw{MemOp{Base: "a", Offset: 0, Reg: "c"}})
	run(t, p)

	assert.Equal(t, int64(2), intReg(t, p, "c"))
}

func TestMemoryBounds(t *testing.T) {
	p := NewProgram(4)
	p.SetVal("a", IntVal(10))
	p.SetVal("b", IntVal(1))
	p.AddInst(Sw{MemOp{Base: "a", Offset: 0, Reg: "b"}})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR003, err.(*diagnostics.DiagnosticError).Code)
}

func TestUndefinedRegister(t *testing.T) {
	p := NewProgram(0)
	p.AddInst(Add{BinOp{"t0", "nowhere", "x0"}})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR001, err.(*diagnostics.DiagnosticError).Code)
}

func TestStackPointerStartsAtMemorySize(t *testing.T) {
	p := NewProgram(64)
	assert.Equal(t, int64(64), intReg(t, p, "sp"))
}

func TestClosureCallAndReturn(t *testing.T) {
	// Instructions 1-2 are the body of a successor function.
	p := NewProgram(0)
	p.AddInst(&Jal{Rd: "x0", Target: 3})
	p.AddInst(Addi{BinOpImm{"t1", "n", 1}})
	p.AddInst(&Retc{Rs: "t1"})
	p.AddInst(Addi{BinOpImm{"arg", "x0", 41}})
	p.AddInst(&Callc{Rd: "result", Rf: "succ", Rs: "arg"})
	p.SetVal("succ", CloVal(&Closure{Entry: 1, Formal: "n"}))
	run(t, p)

	assert.Equal(t, int64(42), intReg(t, p, "result"))
}

func TestCallRestoresRegisters(t *testing.T) {
	p := NewProgram(0)
	p.AddInst(&Jal{Rd: "x0", Target: 3})
	p.AddInst(Addi{BinOpImm{"t1", "n", 0}})
	p.AddInst(&Retc{Rs: "t1"})
	p.AddInst(Addi{BinOpImm{"t1", "x0", 7}})
	p.AddInst(Addi{BinOpImm{"arg", "x0", 1}})
	p.AddInst(&Callc{Rd: "result", Rf: "f", Rs: "arg"})
	p.AddInst(Add{BinOp{"after", "t1", "x0"}})
	p.SetVal("f", CloVal(&Closure{Entry: 1, Formal: "n"}))
	run(t, p)

	// The callee wrote t1, but the caller's t1 survives the call.
	assert.Equal(t, int64(7), intReg(t, p, "after"))
	assert.Equal(t, int64(1), intReg(t, p, "result"))
}

func TestMkcloCapturesTheRegisterFile(t *testing.T) {
	// A closure built after "captured" is set still sees it when called,
	// even though the caller's file is replaced during the activation.
	p := NewProgram(0)
	p.AddInst(Addi{BinOpImm{"captured", "x0", 40}})
	p.AddInst(&Mkclo{Rd: "f", Entry: 3, Formal: "n"})
	p.AddInst(&Jal{Rd: "x0", Target: 5})
	p.AddInst(Add{BinOp{"t1", "captured", "n"}})
	p.AddInst(&Retc{Rs: "t1"})
	p.AddInst(Addi{BinOpImm{"arg", "x0", 2}})
	p.AddInst(&Callc{Rd: "result", Rf: "f", Rs: "arg"})
	run(t, p)

	assert.Equal(t, int64(42), intReg(t, p, "result"))
}

func TestMkcloSelfBindingEnablesRecursion(t *testing.T) {
	// A sum: f n = if n == 0 then 0 else n + f (n - 1).
	p := NewProgram(0)
	p.AddInst(&Mkclo{Rd: "f", Entry: 2, Formal: "n", Self: "f"})
	p.AddInst(&Jal{Rd: "x0", Target: 9})
	p.AddInst(&Beq{Rs1: "n", Rs2: "x0", Target: 7})
	p.AddInst(Addi{BinOpImm{"m", "n", -1}})
	p.AddInst(&Callc{Rd: "t1", Rf: "f", Rs: "m"})
	p.AddInst(Add{BinOp{"t2", "n", "t1"}})
	p.AddInst(&Retc{Rs: "t2"})
	p.AddInst(Addi{BinOpImm{"t2", "x0", 0}})
	p.AddInst(&Retc{Rs: "t2"})
	p.AddInst(Addi{BinOpImm{"arg", "x0", 3}})
	p.AddInst(&Callc{Rd: "result", Rf: "f", Rs: "arg"})
	run(t, p)

	assert.Equal(t, int64(6), intReg(t, p, "result"))
}

func TestCallcOnNonClosure(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("f", IntVal(3))
	p.SetVal("arg", IntVal(1))
	p.AddInst(&Callc{Rd: "r", Rf: "f", Rs: "arg"})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR004, err.(*diagnostics.DiagnosticError).Code)
}

func TestRetcOutsideCall(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("t0", IntVal(1))
	p.AddInst(&Retc{Rs: "t0"})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR004, err.(*diagnostics.DiagnosticError).Code)
}

func TestClosureCopyThroughAdd(t *testing.T) {
	p := NewProgram(0)
	clo := &Closure{Entry: 5, Formal: "n"}
	p.SetVal("f", CloVal(clo))
	p.AddInst(Add{BinOp{"g", "f", "x0"}})
	run(t, p)

	v, err := p.GetVal("g")
	require.NoError(t, err)
	require.True(t, v.IsClosure())
	assert.Equal(t, clo, v.AsClosure())
}

func TestAddingAClosureFails(t *testing.T) {
	p := NewProgram(0)
	p.SetVal("f", CloVal(&Closure{Entry: 0, Formal: "n"}))
	p.SetVal("one", IntVal(1))
	p.AddInst(Add{BinOp{"r", "f", "one"}})
	err := p.Run()
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR004, err.(*diagnostics.DiagnosticError).Code)
}
