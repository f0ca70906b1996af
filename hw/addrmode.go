package hw

//go:generate go tool stringer -type=AddrMode

// AddrMode is a 6502 addressing mode.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Relative
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// OperandSize returns the number of operand bytes following the opcode.
func (m AddrMode) OperandSize() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	}
	return 1
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// resolve consumes the operand bytes of the current instruction and returns
// its effective address. crossed reports whether indexing crossed a page
// boundary.
func (c *CPU) resolve(mode AddrMode) (addr uint16, crossed bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false
	case Immediate:
		addr = c.PC
		c.PC++
	case ZeroPage:
		addr = uint16(c.fetch8())
	case ZeroPageX:
		addr = uint16(c.fetch8() + c.X)
	case ZeroPageY:
		addr = uint16(c.fetch8() + c.Y)
	case Absolute:
		addr = c.fetch16()
	case AbsoluteX:
		base := c.fetch16()
		addr = base + uint16(c.X)
		crossed = pagesDiffer(base, addr)
	case AbsoluteY:
		base := c.fetch16()
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case Relative:
		off := c.fetch8()
		addr = c.PC + uint16(int16(int8(off)))
	case Indirect:
		ptr := c.fetch16()
		// The high byte is fetched without carrying into the pointer's page.
		lo := c.Read8(ptr)
		hi := c.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		addr = uint16(hi)<<8 | uint16(lo)
	case IndexedIndirect:
		zp := c.fetch8() + c.X
		addr = c.readZP16(zp)
	case IndirectIndexed:
		base := c.readZP16(c.fetch8())
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	}
	return addr, crossed
}

// readZP16 reads a pointer from the zero page, wrapping within it.
func (c *CPU) readZP16(zp uint8) uint16 {
	lo := c.Read8(uint16(zp))
	hi := c.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}
