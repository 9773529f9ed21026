package asm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/riscml/internal/diagnostics"
	"github.com/funvibe/riscml/internal/token"
)

// Program is a list of instructions plus a register file that associates
// names with values, a word-addressable memory, and a program counter.
// The register x0 always reads as zero; writes to it are discarded.
type Program struct {
	insts []Inst
	regs  map[string]Value
	mem   []int64
	pc    int

	// closure-call bookkeeping for callc/retc
	returning bool
	retVal    Value
	depth     int
}

// DefaultMemorySize matches the driver's historical configuration.
const DefaultMemorySize = 1000

func NewProgram(memorySize int) *Program {
	p := &Program{
		regs: make(map[string]Value),
		mem:  make([]int64, memorySize),
	}
	p.regs["sp"] = IntVal(int64(memorySize))
	return p
}

// AddInst appends an instruction and returns it for convenience.
func (p *Program) AddInst(inst Inst) Inst {
	p.insts = append(p.insts, inst)
	return inst
}

// NumInsts is the index one past the last instruction: the position a
// patched branch uses to fall off the end and halt.
func (p *Program) NumInsts() int {
	return len(p.insts)
}

func (p *Program) Insts() []Inst {
	return p.insts
}

// GetVal reads a register. Reading x0 always yields zero.
func (p *Program) GetVal(name string) (Value, error) {
	if name == "x0" {
		return IntVal(0), nil
	}
	v, ok := p.regs[name]
	if !ok {
		return Value{}, undefinedRegister(name)
	}
	return v, nil
}

// GetInt reads a register that must hold an integer.
func (p *Program) GetInt(name string) (int64, error) {
	v, err := p.GetVal(name)
	if err != nil {
		return 0, err
	}
	if v.IsClosure() {
		return 0, malformedClosure(name)
	}
	return v.AsInt(), nil
}

// SetVal writes a register. Writes to x0 are silently discarded.
func (p *Program) SetVal(name string, v Value) {
	if name == "x0" {
		return
	}
	p.regs[name] = v
}

func (p *Program) SetMem(addr, value int64) error {
	if addr < 0 || addr >= int64(len(p.mem)) {
		return memoryBounds(addr)
	}
	p.mem[addr] = value
	return nil
}

func (p *Program) GetMem(addr int64) (int64, error) {
	if addr < 0 || addr >= int64(len(p.mem)) {
		return 0, memoryBounds(addr)
	}
	return p.mem[addr], nil
}

func (p *Program) evalIntBinOp(rd, rs1, rs2 string, op func(a, b int64) (int64, error)) error {
	a, err := p.GetInt(rs1)
	if err != nil {
		return err
	}
	b, err := p.GetInt(rs2)
	if err != nil {
		return err
	}
	result, err := op(a, b)
	if err != nil {
		return err
	}
	p.SetVal(rd, IntVal(result))
	return nil
}

// Run executes the program from instruction zero until the pc falls off
// the end of the instruction list.
func (p *Program) Run() error {
	p.pc = 0
	return p.loop()
}

func (p *Program) loop() error {
	for p.pc >= 0 && p.pc < len(p.insts) {
		inst := p.insts[p.pc]
		p.pc++
		if err := inst.Eval(p); err != nil {
			return err
		}
		if p.returning {
			if p.depth == 0 {
				return diagnostics.NewPhaseError(
					diagnostics.PhaseRuntime, diagnostics.ErrR004, token.Token{}, "retc")
			}
			return nil
		}
	}
	return nil
}

// call runs the closure c on arg and returns its result. The callee runs
// on a copy of the closure's captured register file, so recursion gets a
// fresh view of the formal and of every temporary, and the caller's
// registers survive the activation untouched.
func (p *Program) call(c *Closure, arg Value) (Value, error) {
	saved := p.regs
	savedPC := p.pc

	callee := make(map[string]Value, len(c.Env)+2)
	for name, v := range c.Env {
		callee[name] = v
	}
	if c.Self != "" {
		callee[c.Self] = CloVal(c)
	}
	callee[c.Formal] = arg

	p.regs = callee
	p.pc = c.Entry
	p.depth++
	err := p.loop()
	p.depth--

	if err == nil && !p.returning {
		err = malformedClosure(c.Formal)
	}
	p.returning = false
	result := p.retVal

	p.regs = saved
	p.pc = savedPC
	if err != nil {
		return Value{}, err
	}
	return result, nil
}

func (p *Program) ret(v Value) error {
	p.retVal = v
	p.returning = true
	return nil
}

// Listing renders the program in the textual assembly format, one
// instruction per line. The result parses back with ParseListing.
func (p *Program) Listing() string {
	var b strings.Builder
	for _, inst := range p.insts {
		fmt.Fprintf(&b, "%s\n", inst)
	}
	return b.String()
}

// EnvString renders the register file sorted by name, one register per
// line.
func (p *Program) EnvString() string {
	names := make([]string, 0, len(p.regs)+1)
	for name := range p.regs {
		names = append(names, name)
	}
	names = append(names, "x0")
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v, _ := p.GetVal(name)
		fmt.Fprintf(&b, "%s: %s\n", name, v)
	}
	return b.String()
}

func undefinedRegister(name string) error {
	return diagnostics.NewPhaseError(
		diagnostics.PhaseRuntime, diagnostics.ErrR001, token.Token{}, name)
}

func divByZero() error {
	return diagnostics.NewPhaseError(
		diagnostics.PhaseRuntime, diagnostics.ErrR002, token.Token{})
}

func memoryBounds(addr int64) error {
	return diagnostics.NewPhaseError(
		diagnostics.PhaseRuntime, diagnostics.ErrR003, token.Token{}, addr)
}

func malformedClosure(name string) error {
	return diagnostics.NewPhaseError(
		diagnostics.PhaseRuntime, diagnostics.ErrR004, token.Token{}, name)
}
