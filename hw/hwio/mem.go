package hwio

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when accessing a memory area beyond its
	// configured capacity.
	ErrOutOfRange = errors.New("address out of range")

	// ErrReadOnly is returned when writing to read-only memory.
	ErrReadOnly = errors.New("write to read-only memory")
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
)

// Mem is a fixed-capacity linear memory area (RAM or ROM). Accesses are
// bounds-checked against the buffer length, there is no implicit mirroring.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	Flags MemFlags // flags determining how the memory can be accessed
}

// NewRAM allocates a zeroed read-write memory area of the given size.
func NewRAM(name string, size int) *Mem {
	return &Mem{Name: name, Data: make([]byte, size)}
}

// NewROM wraps buf into a read-only memory area. buf is not copied.
func NewROM(name string, buf []byte) *Mem {
	return &Mem{Name: name, Data: buf, Flags: MemFlag8ReadOnly}
}

func (m *Mem) Len() int { return len(m.Data) }

func (m *Mem) ReadOnly() bool { return m.Flags&MemFlag8ReadOnly != 0 }

func (m *Mem) rangeErr(addr uint16) error {
	return fmt.Errorf("%s: $%04X (size $%04X): %w", m.Name, addr, len(m.Data), ErrOutOfRange)
}

func (m *Mem) Read8(addr uint16) (uint8, error) {
	if int(addr) >= len(m.Data) {
		return 0, m.rangeErr(addr)
	}
	return m.Data[addr], nil
}

// Peek8 reads a byte without reporting errors, out of range reads return 0.
// It's meant for debugging and tracing.
func (m *Mem) Peek8(addr uint16) uint8 {
	if int(addr) >= len(m.Data) {
		return 0
	}
	return m.Data[addr]
}

func (m *Mem) Write8(addr uint16, val uint8) error {
	if int(addr) >= len(m.Data) {
		return m.rangeErr(addr)
	}
	if m.ReadOnly() {
		return fmt.Errorf("%s: $%04X: %w", m.Name, addr, ErrReadOnly)
	}
	m.Data[addr] = val
	return nil
}

// Reset zeroes a read-write memory area. Read-only areas are left untouched.
func (m *Mem) Reset() {
	if !m.ReadOnly() {
		clear(m.Data)
	}
}
