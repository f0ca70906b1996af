package hw

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nescore/hw/hwio"
	"nescore/ines"
)

// testRom builds a cartridge with the given number of PRG banks. Each PRG byte
// holds its bank number in the high bits.
func testRom(tb testing.TB, prgBanks int, flags6 uint8) *ines.Rom {
	tb.Helper()

	var buf bytes.Buffer
	buf.WriteString(ines.Magic)
	buf.Write([]byte{byte(prgBanks), 1, flags6, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	for bank := range prgBanks {
		prg := bytes.Repeat([]byte{byte(0x10 * (bank + 1))}, ines.PRGBankSize)
		buf.Write(prg)
	}
	buf.Write(make([]byte, ines.CHRBankSize))

	rom, err := ines.Decode(&buf)
	require.NoError(tb, err)
	return rom
}

func newTestBus(tb testing.TB, prgBanks int) *CPUBus {
	tb.Helper()

	rom := testRom(tb, prgBanks, 0)
	ppu := NewPPU(rom.CHR, HorizontalMirroring)
	bus, err := NewCPUBus(hwio.NewRAM("ram", RAMSize), ppu, rom)
	require.NoError(tb, err)
	return bus
}

func read8(tb testing.TB, b hwio.BankIO8, addr uint16) uint8 {
	tb.Helper()
	val, err := b.Read8(addr)
	require.NoError(tb, err, "read $%04X", addr)
	return val
}

func TestBusPRGMirroring(t *testing.T) {
	t.Run("16KB", func(t *testing.T) {
		bus := newTestBus(t, 1)
		for _, addr := range []uint16{0x8000, 0xBFFF, 0xC000, 0xFFFF} {
			assert.Equalf(t, uint8(0x10), read8(t, bus, addr), "$%04X", addr)
		}
	})
	t.Run("32KB", func(t *testing.T) {
		bus := newTestBus(t, 2)
		assert.Equal(t, uint8(0x10), read8(t, bus, 0x8000))
		assert.Equal(t, uint8(0x10), read8(t, bus, 0xBFFF))
		assert.Equal(t, uint8(0x20), read8(t, bus, 0xC000))
		assert.Equal(t, uint8(0x20), read8(t, bus, 0xFFFF))
	})
	t.Run("write", func(t *testing.T) {
		bus := newTestBus(t, 1)
		require.NoError(t, bus.Write8(0x8000, 0xAA))
		assert.Equal(t, uint8(0x10), read8(t, bus, 0x8000))
	})
}

func TestBusRAMMirroring(t *testing.T) {
	bus := newTestBus(t, 1)

	require.NoError(t, bus.Write8(0x0123, 0x42))
	for _, addr := range []uint16{0x0123, 0x0923, 0x1123, 0x1923} {
		assert.Equalf(t, uint8(0x42), read8(t, bus, addr), "$%04X", addr)
	}

	require.NoError(t, bus.Write8(0x1FFF, 0x99))
	assert.Equal(t, uint8(0x99), bus.RAM.Data[0x07FF])
}

func TestBusPPURegisters(t *testing.T) {
	bus := newTestBus(t, 1)

	// $200E mirrors $2006, $3FFF mirrors $2007.
	require.NoError(t, bus.Write8(0x200E, 0x21))
	require.NoError(t, bus.Write8(0x2006, 0x08))
	assert.Equal(t, uint16(0x2108), bus.PPU.VRAMAddr)

	require.NoError(t, bus.Write8(0x3FFF, 0x5A))
	assert.Equal(t, uint8(0x5A), bus.PPU.VRAM.Data[0x108])

	bus.PPU.Status = statusVBlank
	assert.Equal(t, uint8(statusVBlank), read8(t, bus, 0x3FFA))
	assert.Zero(t, bus.PPU.Status&statusVBlank)
}

func TestBusIOAndCartRAM(t *testing.T) {
	bus := newTestBus(t, 1)

	for _, addr := range []uint16{0x4000, 0x4016, 0x5FFF, 0x6000, 0x7FFF} {
		require.NoError(t, bus.Write8(addr, 0xFF))
		assert.Zerof(t, read8(t, bus, addr), "$%04X", addr)
	}

	name, devaddr, ok := bus.Lookup(0x6123)
	require.True(t, ok)
	assert.Equal(t, "sram", name)
	assert.Equal(t, uint16(0x6123), devaddr)
}

func TestOAMDMA(t *testing.T) {
	bus := newTestBus(t, 1)

	for i := range 256 {
		require.NoError(t, bus.Write8(0x0200+uint16(i), uint8(i)))
	}
	require.NoError(t, bus.Write8(0x2003, 0x00))
	require.NoError(t, bus.Write8(OAMDMAReg, 0x02))

	for i := range 256 {
		require.Equalf(t, uint8(i), bus.PPU.OAM.Data[i], "OAM[%d]", i)
	}
	assert.Equal(t, OAMDMACycles, bus.IO.TakeStall())
	assert.Zero(t, bus.IO.TakeStall())

	// DMA from the PRG ROM page.
	require.NoError(t, bus.Write8(OAMDMAReg, 0x80))
	assert.Equal(t, uint8(0x10), bus.PPU.OAM.Data[0])
	assert.Equal(t, OAMDMACycles, bus.IO.TakeStall())
}

func TestOAMDMAUnmappedSource(t *testing.T) {
	bus := newTestBus(t, 1)
	bus.Unmap(0x6000)

	err := bus.Write8(OAMDMAReg, 0x60)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hwio.ErrUnmapped))
	assert.Zero(t, bus.IO.TakeStall())
}

func TestNewCPUBusUnsupportedMapper(t *testing.T) {
	rom := testRom(t, 1, 0x10) // mapper 1
	ppu := NewPPU(rom.CHR, HorizontalMirroring)

	_, err := NewCPUBus(hwio.NewRAM("ram", RAMSize), ppu, rom)
	assert.Error(t, err)
}

func TestCPUOnBus(t *testing.T) {
	rom := testRom(t, 1, 0)
	// LDA #$42; STA $10; JMP $8004
	copy(rom.PRG.Data, []byte{0xA9, 0x42, 0x85, 0x10, 0x4C, 0x04, 0x80})
	rom.PRG.Data[0x3FFC] = 0x00
	rom.PRG.Data[0x3FFD] = 0x80

	ppu := NewPPU(rom.CHR, HorizontalMirroring)
	bus, err := NewCPUBus(hwio.NewRAM("ram", RAMSize), ppu, rom)
	require.NoError(t, err)

	cpu := NewCPU(bus)
	require.NoError(t, cpu.Reset())
	assert.Equal(t, uint16(0x8000), cpu.PC)

	step(t, cpu)
	step(t, cpu)
	assert.Equal(t, uint8(0x42), bus.RAM.Data[0x10])
	assert.Equal(t, "LDA #$42", cpu.Disasm(0x8000).String()[16:])
}
