package asm

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Parser for the textual assembly format produced by Program.Listing and
// Inst.String: one instruction per line, `;` to end of line is a comment.

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z_0-9]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Punct", Pattern: `[=,()]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

type listing struct {
	Lines []*line `parser:"@@*"`
}

type line struct {
	Branch *branchLine `parser:"( @@"`
	Jump   *jumpLine   `parser:"| @@"`
	Jalr   *jalrLine   `parser:"| @@"`
	Mkclo  *mkcloLine  `parser:"| @@"`
	Call   *callLine   `parser:"| @@"`
	Ret    *retLine    `parser:"| @@"`
	Mem    *memLine    `parser:"| @@"`
	Def    *defLine    `parser:"| @@ )"`
}

type branchLine struct {
	Rs1    string `parser:"'beq' @Ident"`
	Rs2    string `parser:"@Ident"`
	Target int    `parser:"@Int"`
}

type jumpLine struct {
	Rd     string `parser:"'jal' @Ident"`
	Target int    `parser:"@Int"`
}

type jalrLine struct {
	Rd     string `parser:"'jalr' @Ident"`
	Rs1    string `parser:"@Ident"`
	Offset int64  `parser:"@Int"`
}

type mkcloLine struct {
	Rd     string `parser:"'mkclo' @Ident"`
	Entry  int    `parser:"@Int"`
	Formal string `parser:"@Ident"`
	Self   string `parser:"@Ident"`
}

type callLine struct {
	Rd string `parser:"'callc' @Ident"`
	Rf string `parser:"@Ident"`
	Rs string `parser:"@Ident"`
}

type retLine struct {
	Rs string `parser:"'retc' @Ident"`
}

type memLine struct {
	Op     string `parser:"@('sw' | 'lw')"`
	Reg    string `parser:"@Ident ','"`
	Offset int64  `parser:"@Int"`
	Base   string `parser:"'(' @Ident ')'"`
}

type defLine struct {
	Rd  string `parser:"@Ident '='"`
	Op  string `parser:"@Ident"`
	Rs1 string `parser:"@Ident"`
	Reg *string `parser:"( @Ident"`
	Imm *int64  `parser:"| @Int )"`
}

var listingParser = participle.MustBuild[listing](
	participle.Lexer(asmLexer),
	participle.UseLookahead(2),
	participle.Elide("Comment"),
)

// ParseListing reads a textual assembly listing into an instruction slice.
func ParseListing(source string) ([]Inst, error) {
	parsed, err := listingParser.ParseString("", source)
	if err != nil {
		return nil, err
	}

	insts := make([]Inst, 0, len(parsed.Lines))
	for _, l := range parsed.Lines {
		inst, err := l.instruction()
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

func (l *line) instruction() (Inst, error) {
	switch {
	case l.Branch != nil:
		return &Beq{Rs1: l.Branch.Rs1, Rs2: l.Branch.Rs2, Target: l.Branch.Target}, nil
	case l.Jump != nil:
		return &Jal{Rd: l.Jump.Rd, Target: l.Jump.Target}, nil
	case l.Jalr != nil:
		return &Jalr{Rd: l.Jalr.Rd, Rs1: l.Jalr.Rs1, Offset: l.Jalr.Offset}, nil
	case l.Mkclo != nil:
		self := l.Mkclo.Self
		if self == "_" {
			self = ""
		}
		return &Mkclo{Rd: l.Mkclo.Rd, Entry: l.Mkclo.Entry, Formal: l.Mkclo.Formal, Self: self}, nil
	case l.Call != nil:
		return &Callc{Rd: l.Call.Rd, Rf: l.Call.Rf, Rs: l.Call.Rs}, nil
	case l.Ret != nil:
		return &Retc{Rs: l.Ret.Rs}, nil
	case l.Mem != nil:
		m := MemOp{Base: l.Mem.Base, Offset: l.Mem.Offset, Reg: l.Mem.Reg}
		if l.Mem.Op == "sw" {
			return Sw{MemOp: m}, nil
		}
		return Lw{MemOp: m}, nil
	case l.Def != nil:
		return l.Def.instruction()
	default:
		return nil, fmt.Errorf("empty assembly line")
	}
}

func (d *defLine) instruction() (Inst, error) {
	if d.Reg != nil {
		b := BinOp{Rd: d.Rd, Rs1: d.Rs1, Rs2: *d.Reg}
		switch d.Op {
		case "add":
			return Add{BinOp: b}, nil
		case "sub":
			return Sub{BinOp: b}, nil
		case "mul":
			return Mul{BinOp: b}, nil
		case "div":
			return Div{BinOp: b}, nil
		case "xor":
			return Xor{BinOp: b}, nil
		case "slt":
			return Slt{BinOp: b}, nil
		}
		return nil, fmt.Errorf("unknown register opcode: %s", d.Op)
	}

	b := BinOpImm{Rd: d.Rd, Rs1: d.Rs1, Imm: *d.Imm}
	switch d.Op {
	case "addi":
		return Addi{BinOpImm: b}, nil
	case "xori":
		return Xori{BinOpImm: b}, nil
	case "slti":
		return Slti{BinOpImm: b}, nil
	}
	return nil, fmt.Errorf("unknown immediate opcode: %s", d.Op)
}

// NewProgramFromInsts builds a runnable program from parsed instructions.
func NewProgramFromInsts(insts []Inst, memorySize int) *Program {
	p := NewProgram(memorySize)
	p.insts = insts
	return p
}
