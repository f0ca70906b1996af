package hw

import (
	"errors"
	"fmt"
)

// ErrDuplicateOpcode is returned when building an instruction table in which
// the same opcode is defined more than once.
var ErrDuplicateOpcode = errors.New("duplicate opcode")

// handler executes an instruction, given its addressing mode and effective
// address. Operand bytes have already been consumed.
type handler func(c *CPU, mode AddrMode, addr uint16)

// Instruction is an entry of the instruction table.
type Instruction struct {
	Name      string
	Mode      AddrMode
	Cycles    uint8 // base cycle count
	PageCycle bool  // one more cycle when indexing crosses a page

	exec handler
}

// opdef is a declarative instruction definition.
type opdef struct {
	code   uint8
	name   string
	mode   AddrMode
	cycles uint8
	exec   handler
	xpage  bool
}

// ops is the instruction table, indexed by opcode. Empty entries are illegal
// opcodes.
var ops = mustBuild(opdefs)

func buildTable(defs []opdef) (*[256]Instruction, error) {
	var tbl [256]Instruction
	for _, d := range defs {
		if d.exec == nil {
			return nil, fmt.Errorf("opcode $%02X (%s): nil handler", d.code, d.name)
		}
		if prev := tbl[d.code]; prev.exec != nil {
			return nil, fmt.Errorf("opcode $%02X (%s %s), already defined as %s %s: %w",
				d.code, d.name, d.mode, prev.Name, prev.Mode, ErrDuplicateOpcode)
		}
		tbl[d.code] = Instruction{
			Name:      d.name,
			Mode:      d.mode,
			Cycles:    d.cycles,
			PageCycle: d.xpage,
			exec:      d.exec,
		}
	}
	return &tbl, nil
}

func mustBuild(defs []opdef) *[256]Instruction {
	tbl, err := buildTable(defs)
	if err != nil {
		panic(err)
	}
	return tbl
}

// LookupOpcode returns the instruction table entry for opcode. ok is false for
// illegal opcodes.
func LookupOpcode(opcode uint8) (Instruction, bool) {
	op := ops[opcode]
	return op, op.exec != nil
}

// Official 6502 instruction set.
var opdefs = []opdef{
	{0x69, "ADC", Immediate, 2, adc, false},
	{0x65, "ADC", ZeroPage, 3, adc, false},
	{0x75, "ADC", ZeroPageX, 4, adc, false},
	{0x6D, "ADC", Absolute, 4, adc, false},
	{0x7D, "ADC", AbsoluteX, 4, adc, true},
	{0x79, "ADC", AbsoluteY, 4, adc, true},
	{0x61, "ADC", IndexedIndirect, 6, adc, false},
	{0x71, "ADC", IndirectIndexed, 5, adc, true},

	{0x29, "AND", Immediate, 2, and, false},
	{0x25, "AND", ZeroPage, 3, and, false},
	{0x35, "AND", ZeroPageX, 4, and, false},
	{0x2D, "AND", Absolute, 4, and, false},
	{0x3D, "AND", AbsoluteX, 4, and, true},
	{0x39, "AND", AbsoluteY, 4, and, true},
	{0x21, "AND", IndexedIndirect, 6, and, false},
	{0x31, "AND", IndirectIndexed, 5, and, true},

	{0x0A, "ASL", Accumulator, 2, asl, false},
	{0x06, "ASL", ZeroPage, 5, asl, false},
	{0x16, "ASL", ZeroPageX, 6, asl, false},
	{0x0E, "ASL", Absolute, 6, asl, false},
	{0x1E, "ASL", AbsoluteX, 7, asl, false},

	{0x90, "BCC", Relative, 2, bcc, false},
	{0xB0, "BCS", Relative, 2, bcs, false},
	{0xF0, "BEQ", Relative, 2, beq, false},
	{0x30, "BMI", Relative, 2, bmi, false},
	{0xD0, "BNE", Relative, 2, bne, false},
	{0x10, "BPL", Relative, 2, bpl, false},
	{0x50, "BVC", Relative, 2, bvc, false},
	{0x70, "BVS", Relative, 2, bvs, false},

	{0x24, "BIT", ZeroPage, 3, bit, false},
	{0x2C, "BIT", Absolute, 4, bit, false},

	{0x00, "BRK", Implied, 7, brk, false},

	{0x18, "CLC", Implied, 2, clc, false},
	{0xD8, "CLD", Implied, 2, cld, false},
	{0x58, "CLI", Implied, 2, cli, false},
	{0xB8, "CLV", Implied, 2, clv, false},

	{0xC9, "CMP", Immediate, 2, cmpa, false},
	{0xC5, "CMP", ZeroPage, 3, cmpa, false},
	{0xD5, "CMP", ZeroPageX, 4, cmpa, false},
	{0xCD, "CMP", Absolute, 4, cmpa, false},
	{0xDD, "CMP", AbsoluteX, 4, cmpa, true},
	{0xD9, "CMP", AbsoluteY, 4, cmpa, true},
	{0xC1, "CMP", IndexedIndirect, 6, cmpa, false},
	{0xD1, "CMP", IndirectIndexed, 5, cmpa, true},

	{0xE0, "CPX", Immediate, 2, cpx, false},
	{0xE4, "CPX", ZeroPage, 3, cpx, false},
	{0xEC, "CPX", Absolute, 4, cpx, false},

	{0xC0, "CPY", Immediate, 2, cpy, false},
	{0xC4, "CPY", ZeroPage, 3, cpy, false},
	{0xCC, "CPY", Absolute, 4, cpy, false},

	{0xC6, "DEC", ZeroPage, 5, dec, false},
	{0xD6, "DEC", ZeroPageX, 6, dec, false},
	{0xCE, "DEC", Absolute, 6, dec, false},
	{0xDE, "DEC", AbsoluteX, 7, dec, false},

	{0xCA, "DEX", Implied, 2, dex, false},
	{0x88, "DEY", Implied, 2, dey, false},

	{0x49, "EOR", Immediate, 2, eor, false},
	{0x45, "EOR", ZeroPage, 3, eor, false},
	{0x55, "EOR", ZeroPageX, 4, eor, false},
	{0x4D, "EOR", Absolute, 4, eor, false},
	{0x5D, "EOR", AbsoluteX, 4, eor, true},
	{0x59, "EOR", AbsoluteY, 4, eor, true},
	{0x41, "EOR", IndexedIndirect, 6, eor, false},
	{0x51, "EOR", IndirectIndexed, 5, eor, true},

	{0xE6, "INC", ZeroPage, 5, inc, false},
	{0xF6, "INC", ZeroPageX, 6, inc, false},
	{0xEE, "INC", Absolute, 6, inc, false},
	{0xFE, "INC", AbsoluteX, 7, inc, false},

	{0xE8, "INX", Implied, 2, inx, false},
	{0xC8, "INY", Implied, 2, iny, false},

	{0x4C, "JMP", Absolute, 3, jmp, false},
	{0x6C, "JMP", Indirect, 5, jmp, false},
	{0x20, "JSR", Absolute, 6, jsr, false},

	{0xA9, "LDA", Immediate, 2, lda, false},
	{0xA5, "LDA", ZeroPage, 3, lda, false},
	{0xB5, "LDA", ZeroPageX, 4, lda, false},
	{0xAD, "LDA", Absolute, 4, lda, false},
	{0xBD, "LDA", AbsoluteX, 4, lda, true},
	{0xB9, "LDA", AbsoluteY, 4, lda, true},
	{0xA1, "LDA", IndexedIndirect, 6, lda, false},
	{0xB1, "LDA", IndirectIndexed, 5, lda, true},

	{0xA2, "LDX", Immediate, 2, ldx, false},
	{0xA6, "LDX", ZeroPage, 3, ldx, false},
	{0xB6, "LDX", ZeroPageY, 4, ldx, false},
	{0xAE, "LDX", Absolute, 4, ldx, false},
	{0xBE, "LDX", AbsoluteY, 4, ldx, true},

	{0xA0, "LDY", Immediate, 2, ldy, false},
	{0xA4, "LDY", ZeroPage, 3, ldy, false},
	{0xB4, "LDY", ZeroPageX, 4, ldy, false},
	{0xAC, "LDY", Absolute, 4, ldy, false},
	{0xBC, "LDY", AbsoluteX, 4, ldy, true},

	{0x4A, "LSR", Accumulator, 2, lsr, false},
	{0x46, "LSR", ZeroPage, 5, lsr, false},
	{0x56, "LSR", ZeroPageX, 6, lsr, false},
	{0x4E, "LSR", Absolute, 6, lsr, false},
	{0x5E, "LSR", AbsoluteX, 7, lsr, false},

	{0xEA, "NOP", Implied, 2, nop, false},

	{0x09, "ORA", Immediate, 2, ora, false},
	{0x05, "ORA", ZeroPage, 3, ora, false},
	{0x15, "ORA", ZeroPageX, 4, ora, false},
	{0x0D, "ORA", Absolute, 4, ora, false},
	{0x1D, "ORA", AbsoluteX, 4, ora, true},
	{0x19, "ORA", AbsoluteY, 4, ora, true},
	{0x01, "ORA", IndexedIndirect, 6, ora, false},
	{0x11, "ORA", IndirectIndexed, 5, ora, true},

	{0x48, "PHA", Implied, 3, pha, false},
	{0x08, "PHP", Implied, 3, php, false},
	{0x68, "PLA", Implied, 4, pla, false},
	{0x28, "PLP", Implied, 4, plp, false},

	{0x2A, "ROL", Accumulator, 2, rol, false},
	{0x26, "ROL", ZeroPage, 5, rol, false},
	{0x36, "ROL", ZeroPageX, 6, rol, false},
	{0x2E, "ROL", Absolute, 6, rol, false},
	{0x3E, "ROL", AbsoluteX, 7, rol, false},

	{0x6A, "ROR", Accumulator, 2, ror, false},
	{0x66, "ROR", ZeroPage, 5, ror, false},
	{0x76, "ROR", ZeroPageX, 6, ror, false},
	{0x6E, "ROR", Absolute, 6, ror, false},
	{0x7E, "ROR", AbsoluteX, 7, ror, false},

	{0x40, "RTI", Implied, 6, rti, false},
	{0x60, "RTS", Implied, 6, rts, false},

	{0xE9, "SBC", Immediate, 2, sbc, false},
	{0xE5, "SBC", ZeroPage, 3, sbc, false},
	{0xF5, "SBC", ZeroPageX, 4, sbc, false},
	{0xED, "SBC", Absolute, 4, sbc, false},
	{0xFD, "SBC", AbsoluteX, 4, sbc, true},
	{0xF9, "SBC", AbsoluteY, 4, sbc, true},
	{0xE1, "SBC", IndexedIndirect, 6, sbc, false},
	{0xF1, "SBC", IndirectIndexed, 5, sbc, true},

	{0x38, "SEC", Implied, 2, sec, false},
	{0xF8, "SED", Implied, 2, sed, false},
	{0x78, "SEI", Implied, 2, sei, false},

	{0x85, "STA", ZeroPage, 3, sta, false},
	{0x95, "STA", ZeroPageX, 4, sta, false},
	{0x8D, "STA", Absolute, 4, sta, false},
	{0x9D, "STA", AbsoluteX, 5, sta, false},
	{0x99, "STA", AbsoluteY, 5, sta, false},
	{0x81, "STA", IndexedIndirect, 6, sta, false},
	{0x91, "STA", IndirectIndexed, 6, sta, false},

	{0x86, "STX", ZeroPage, 3, stx, false},
	{0x96, "STX", ZeroPageY, 4, stx, false},
	{0x8E, "STX", Absolute, 4, stx, false},

	{0x84, "STY", ZeroPage, 3, sty, false},
	{0x94, "STY", ZeroPageX, 4, sty, false},
	{0x8C, "STY", Absolute, 4, sty, false},

	{0xAA, "TAX", Implied, 2, tax, false},
	{0xA8, "TAY", Implied, 2, tay, false},
	{0xBA, "TSX", Implied, 2, tsx, false},
	{0x8A, "TXA", Implied, 2, txa, false},
	{0x9A, "TXS", Implied, 2, txs, false},
	{0x98, "TYA", Implied, 2, tya, false},
}
