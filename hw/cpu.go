package hw

import (
	"errors"
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/hwio"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// ErrIllegalOpcode is returned by Step when the fetched opcode has no entry in
// the instruction table.
var ErrIllegalOpcode = errors.New("illegal opcode")

// IllegalOpcodeError reports the illegal opcode and where it was fetched.
type IllegalOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode $%02X at $%04X", e.Opcode, e.PC)
}

func (e *IllegalOpcodeError) Unwrap() error { return ErrIllegalOpcode }

// Bus is the CPU view of the address space.
type Bus interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, val uint8) error
}

const nmiCycles = 7

type CPU struct {
	Bus Bus

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	Cycles int64 // total elapsed CPU cycles

	// extra cycles taken by the current instruction (branches).
	extra int

	// first bus fault of the current step.
	err error

	nmi bool // pending NMI

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// NewCPU creates a CPU connected to bus. Call Reset before stepping.
func NewCPU(bus Bus) *CPU {
	return &CPU{
		Bus: bus,
		SP:  0xFD,
		P:   ResetP,
	}
}

// Reset loads PC from the reset vector and puts the registers in their reset
// state. An error is only possible if the reset vector isn't mapped.
func (c *CPU) Reset() error {
	c.A = 0x00
	c.X = 0x00
	c.Y = 0x00
	c.SP = 0xFD
	c.P = ResetP
	c.nmi = false
	c.extra = 0
	c.Cycles = 0

	c.err = nil
	c.PC = c.Read16(ResetVector)

	log.ModCPU.InfoZ("reset").Hex16("PC", c.PC).End()
	return c.err
}

// Step executes a single instruction, or services a pending NMI, and returns
// the number of elapsed cycles.
//
// The first bus fault happening during the step is returned, the step still
// runs to completion. On an illegal opcode, PC is left pointing at it.
func (c *CPU) Step() (int, error) {
	c.err = nil
	c.extra = 0

	if c.nmi {
		c.nmi = false
		c.interrupt(NMIVector, false)
		c.Cycles += nmiCycles
		return nmiCycles, c.err
	}

	c.traceOp()

	pc := c.PC
	opcode := c.fetch8()
	if c.err != nil {
		return 0, c.err
	}

	op := &ops[opcode]
	if op.exec == nil {
		c.PC = pc
		log.ModCPU.DebugZ("illegal opcode").Hex8("opcode", opcode).Hex16("PC", pc).End()
		return 0, &IllegalOpcodeError{Opcode: opcode, PC: pc}
	}

	addr, crossed := c.resolve(op.Mode)
	op.exec(c, op.Mode, addr)

	cycles := int(op.Cycles) + c.extra
	if crossed && op.PageCycle {
		cycles++
	}
	c.Cycles += int64(cycles)
	return cycles, c.err
}

// TriggerNMI schedules a non-maskable interrupt, serviced at the start of the
// next step.
func (c *CPU) TriggerNMI() {
	c.nmi = true
}

// Stall accounts for n cycles during which the CPU is suspended (OAM DMA).
func (c *CPU) Stall(n int) {
	c.Cycles += int64(n)
}

func (c *CPU) fault(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *CPU) Read8(addr uint16) uint8 {
	val, err := c.Bus.Read8(addr)
	if err != nil {
		c.fault(err)
		return 0
	}
	return val
}

func (c *CPU) Write8(addr uint16, val uint8) {
	if err := c.Bus.Write8(addr, val); err != nil {
		c.fault(err)
	}
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Peek8 reads a byte without side effects when the bus allows it.
func (c *CPU) Peek8(addr uint16) uint8 {
	if p, ok := c.Bus.(hwio.Peeker); ok {
		return p.Peek8(addr)
	}
	val, _ := c.Bus.Read8(addr)
	return val
}

func (c *CPU) fetch8() uint8 {
	val := c.Read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	val := c.Read16(c.PC)
	c.PC += 2
	return val
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := uint16(c.SP) + 0x0100
	c.Write8(top, val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := uint16(c.SP) + 0x0100
	return c.Read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt handling */

// interrupt pushes PC and P then jumps through vector. brk tells whether the
// B flag is set in the pushed status.
func (c *CPU) interrupt(vector uint16, brk bool) {
	prevpc := c.PC
	c.push16(c.PC)

	p := c.P | Unused
	p.set(Break, brk)
	c.push8(uint8(p))

	c.P.set(Interrupt, true)
	c.PC = c.Read16(vector)

	log.ModCPU.DebugZ("interrupt").
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		Bool("nmi", vector == NMIVector).
		End()
}

/* tracing */

func (c *CPU) traceOp() {
	if c.tracer != nil {
		c.tracer.write(cpuState{
			A:     c.A,
			X:     c.X,
			Y:     c.Y,
			P:     c.P,
			SP:    c.SP,
			PC:    c.PC,
			Clock: c.Cycles,
		})
	}
}

// SetTraceOutput enables execution tracing to w, in nestest log format.
// A nil writer disables tracing.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) Disasm(pc uint16) DisasmOp {
	return disasm(c, pc)
}
