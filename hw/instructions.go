package hw

// Instruction handlers. Z/N updates go through P.checkNZ.

/* loads, stores and transfers */

func lda(c *CPU, _ AddrMode, addr uint16) {
	c.A = c.Read8(addr)
	c.P.checkNZ(c.A)
}

func ldx(c *CPU, _ AddrMode, addr uint16) {
	c.X = c.Read8(addr)
	c.P.checkNZ(c.X)
}

func ldy(c *CPU, _ AddrMode, addr uint16) {
	c.Y = c.Read8(addr)
	c.P.checkNZ(c.Y)
}

func sta(c *CPU, _ AddrMode, addr uint16) { c.Write8(addr, c.A) }
func stx(c *CPU, _ AddrMode, addr uint16) { c.Write8(addr, c.X) }
func sty(c *CPU, _ AddrMode, addr uint16) { c.Write8(addr, c.Y) }

func tax(c *CPU, _ AddrMode, _ uint16) {
	c.X = c.A
	c.P.checkNZ(c.X)
}

func tay(c *CPU, _ AddrMode, _ uint16) {
	c.Y = c.A
	c.P.checkNZ(c.Y)
}

func tsx(c *CPU, _ AddrMode, _ uint16) {
	c.X = c.SP
	c.P.checkNZ(c.X)
}

func txa(c *CPU, _ AddrMode, _ uint16) {
	c.A = c.X
	c.P.checkNZ(c.A)
}

func tya(c *CPU, _ AddrMode, _ uint16) {
	c.A = c.Y
	c.P.checkNZ(c.A)
}

// TXS is the only transfer not affecting flags.
func txs(c *CPU, _ AddrMode, _ uint16) { c.SP = c.X }

/* increments and decrements */

func inx(c *CPU, _ AddrMode, _ uint16) {
	c.X++
	c.P.checkNZ(c.X)
}

func iny(c *CPU, _ AddrMode, _ uint16) {
	c.Y++
	c.P.checkNZ(c.Y)
}

func dex(c *CPU, _ AddrMode, _ uint16) {
	c.X--
	c.P.checkNZ(c.X)
}

func dey(c *CPU, _ AddrMode, _ uint16) {
	c.Y--
	c.P.checkNZ(c.Y)
}

func inc(c *CPU, _ AddrMode, addr uint16) {
	val := c.Read8(addr) + 1
	c.Write8(addr, val)
	c.P.checkNZ(val)
}

func dec(c *CPU, _ AddrMode, addr uint16) {
	val := c.Read8(addr) - 1
	c.Write8(addr, val)
	c.P.checkNZ(val)
}

/* arithmetic and logic */

func (c *CPU) add(val uint8) {
	sum := uint16(c.A) + uint16(val)
	if c.P.C() {
		sum++
	}
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

// Decimal mode is not wired on the NES 2A03.
func adc(c *CPU, _ AddrMode, addr uint16) { c.add(c.Read8(addr)) }
func sbc(c *CPU, _ AddrMode, addr uint16) { c.add(^c.Read8(addr)) }

func and(c *CPU, _ AddrMode, addr uint16) {
	c.A &= c.Read8(addr)
	c.P.checkNZ(c.A)
}

func ora(c *CPU, _ AddrMode, addr uint16) {
	c.A |= c.Read8(addr)
	c.P.checkNZ(c.A)
}

func eor(c *CPU, _ AddrMode, addr uint16) {
	c.A ^= c.Read8(addr)
	c.P.checkNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.checkNZ(reg - val)
}

func cmpa(c *CPU, _ AddrMode, addr uint16) { c.compare(c.A, c.Read8(addr)) }
func cpx(c *CPU, _ AddrMode, addr uint16)  { c.compare(c.X, c.Read8(addr)) }
func cpy(c *CPU, _ AddrMode, addr uint16)  { c.compare(c.Y, c.Read8(addr)) }

func bit(c *CPU, _ AddrMode, addr uint16) {
	val := c.Read8(addr)
	c.P.set(Zero, c.A&val == 0)
	c.P.set(Overflow, val&0x40 != 0)
	c.P.set(Negative, val&0x80 != 0)
}

/* shifts and rotations */

// rmw applies f to the accumulator or to the byte at addr.
func (c *CPU) rmw(mode AddrMode, addr uint16, f func(uint8) uint8) {
	if mode == Accumulator {
		c.A = f(c.A)
		c.P.checkNZ(c.A)
		return
	}
	val := f(c.Read8(addr))
	c.Write8(addr, val)
	c.P.checkNZ(val)
}

func asl(c *CPU, mode AddrMode, addr uint16) {
	c.rmw(mode, addr, func(v uint8) uint8 {
		c.P.set(Carry, v&0x80 != 0)
		return v << 1
	})
}

func lsr(c *CPU, mode AddrMode, addr uint16) {
	c.rmw(mode, addr, func(v uint8) uint8 {
		c.P.set(Carry, v&0x01 != 0)
		return v >> 1
	})
}

func rol(c *CPU, mode AddrMode, addr uint16) {
	c.rmw(mode, addr, func(v uint8) uint8 {
		carry := uint8(c.P & Carry)
		c.P.set(Carry, v&0x80 != 0)
		return v<<1 | carry
	})
}

func ror(c *CPU, mode AddrMode, addr uint16) {
	c.rmw(mode, addr, func(v uint8) uint8 {
		carry := uint8(c.P&Carry) << 7
		c.P.set(Carry, v&0x01 != 0)
		return v>>1 | carry
	})
}

/* flags */

func clc(c *CPU, _ AddrMode, _ uint16) { c.P.set(Carry, false) }
func cld(c *CPU, _ AddrMode, _ uint16) { c.P.set(Decimal, false) }
func cli(c *CPU, _ AddrMode, _ uint16) { c.P.set(Interrupt, false) }
func clv(c *CPU, _ AddrMode, _ uint16) { c.P.set(Overflow, false) }
func sec(c *CPU, _ AddrMode, _ uint16) { c.P.set(Carry, true) }
func sed(c *CPU, _ AddrMode, _ uint16) { c.P.set(Decimal, true) }
func sei(c *CPU, _ AddrMode, _ uint16) { c.P.set(Interrupt, true) }

/* branches and jumps */

// branch jumps to addr if cond holds. A taken branch costs one more cycle,
// two if the target is on another page.
func (c *CPU) branch(cond bool, addr uint16) {
	if !cond {
		return
	}
	c.extra++
	if pagesDiffer(c.PC, addr) {
		c.extra++
	}
	c.PC = addr
}

func bcc(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.C(), addr) }
func bcs(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.C(), addr) }
func beq(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.Z(), addr) }
func bne(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.Z(), addr) }
func bmi(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.N(), addr) }
func bpl(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.N(), addr) }
func bvc(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.V(), addr) }
func bvs(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.V(), addr) }

func jmp(c *CPU, _ AddrMode, addr uint16) { c.PC = addr }

func jsr(c *CPU, _ AddrMode, addr uint16) {
	c.push16(c.PC - 1)
	c.PC = addr
}

func rts(c *CPU, _ AddrMode, _ uint16) {
	c.PC = c.pull16() + 1
}

/* stack */

func pha(c *CPU, _ AddrMode, _ uint16) { c.push8(c.A) }

// PHP always pushes B and the unused bit set.
func php(c *CPU, _ AddrMode, _ uint16) { c.push8(uint8(c.P | Break | Unused)) }

func pla(c *CPU, _ AddrMode, _ uint16) {
	c.A = c.pull8()
	c.P.checkNZ(c.A)
}

func (c *CPU) pullP() {
	c.P = P(c.pull8())&^Break | Unused
}

func plp(c *CPU, _ AddrMode, _ uint16) { c.pullP() }

/* interrupts */

func brk(c *CPU, _ AddrMode, _ uint16) {
	// skip the padding byte.
	c.PC++
	c.interrupt(IRQVector, true)
}

func rti(c *CPU, _ AddrMode, _ uint16) {
	c.pullP()
	c.PC = c.pull16()
}

func nop(*CPU, AddrMode, uint16) {}
