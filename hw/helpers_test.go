package hw

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// flatMem is a 64KB RAM covering the whole address space.
type flatMem [0x10000]uint8

func (m *flatMem) Read8(addr uint16) (uint8, error) { return m[addr], nil }
func (m *flatMem) Write8(addr uint16, val uint8) error {
	m[addr] = val
	return nil
}
func (m *flatMem) Peek8(addr uint16) uint8 { return m[addr] }

// busMock is a Bus whose accesses are programmed with testify/mock.
type busMock struct {
	mock.Mock
}

func (m *busMock) Read8(addr uint16) (uint8, error) {
	args := m.Called(addr)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *busMock) Write8(addr uint16, val uint8) error {
	args := m.Called(addr, val)
	return args.Error(0)
}

// newTestCPU loads prog at $8000 and resets the CPU so that execution starts
// there.
func newTestCPU(tb testing.TB, prog ...uint8) (*CPU, *flatMem) {
	tb.Helper()

	mem := new(flatMem)
	copy(mem[0x8000:], prog)
	mem[ResetVector] = 0x00
	mem[ResetVector+1] = 0x80

	cpu := NewCPU(mem)
	require.NoError(tb, cpu.Reset())
	return cpu, mem
}

// step runs one instruction, failing the test on error, and returns the
// number of cycles.
func step(tb testing.TB, cpu *CPU) int {
	tb.Helper()

	n, err := cpu.Step()
	require.NoError(tb, err, "PC=$%04X", cpu.PC)
	return n
}
