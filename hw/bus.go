package hw

import (
	"fmt"

	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/ines"
)

const (
	RAMSize = 0x800
	RAMMask = 0x07FF
	PPUMask = 0x2007
)

// CPUBus is the CPU address space.
//
//	$0000-$1FFF  2KB internal RAM, mirrored
//	$2000-$3FFF  PPU registers, mirrored every 8 bytes
//	$4000-$5FFF  APU and I/O registers, OAM DMA
//	$6000-$7FFF  cartridge RAM (writes discarded, reads 0)
//	$8000-$FFFF  PRG ROM (16KB mirrored, or 32KB)
type CPUBus struct {
	*hwio.Table

	RAM *hwio.Mem
	PPU *PPU
	IO  *IO
}

// NewCPUBus maps ram, ppu and the program ROM of rom. Only mapper 0 layout is
// supported.
func NewCPUBus(ram *hwio.Mem, ppu *PPU, rom *ines.Rom) (*CPUBus, error) {
	if rom.MapperNumber() != 0 {
		return nil, fmt.Errorf("unsupported mapper %d", rom.MapperNumber())
	}
	if rom.PRG.Len() == 0 {
		return nil, fmt.Errorf("cartridge has no PRG ROM: %w", ines.ErrFormat)
	}

	bus := &CPUBus{
		Table: hwio.NewTable("cpu"),
		RAM:   ram,
		PPU:   ppu,
	}
	bus.IO = &IO{bus: bus.Table, ppu: ppu}

	bus.MapRegion(0x0000, "ram", ram, RAMMask)
	bus.MapRegion(0x2000, "ppu", ppu, PPUMask)
	bus.MapRegion(0x4000, "io", bus.IO, 0xFFFF)
	bus.MapRegion(0x6000, "sram", sink{}, 0xFFFF)

	prg := prgROM{rom.PRG}
	mask := rom.PRGMask()
	for base := uint16(0x8000); base != 0; base += hwio.RegionSize {
		bus.MapRegion(base, "prg", prg, mask)
	}
	log.ModBus.DebugZ("cpu bus ready").Hex16("prgmask", mask).End()
	return bus, nil
}

// prgROM ignores writes, which on mapper 0 have no effect.
type prgROM struct{ *hwio.Mem }

func (prgROM) Write8(uint16, uint8) error { return nil }

// sink accepts and discards everything.
type sink struct{}

func (sink) Read8(uint16) (uint8, error) { return 0, nil }
func (sink) Write8(uint16, uint8) error  { return nil }
func (sink) Peek8(uint16) uint8          { return 0 }
