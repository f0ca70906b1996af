package emu

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
	"nescore/ines"
)

// dotsPerCycle is the number of PPU dots elapsed during one CPU cycle.
const dotsPerCycle = 3

type NES struct {
	CPU *hw.CPU
	PPU *hw.PPU
	Bus *hw.CPUBus
	RAM *hwio.Mem
	Rom *ines.Rom
}

// PowerUp builds the console around rom and resets it. Components are created
// in dependency order: storage, PPU, bus, CPU.
func PowerUp(rom *ines.Rom) (*NES, error) {
	mirroring := hw.HorizontalMirroring
	if rom.IsVerticalVramMirroring() {
		mirroring = hw.VerticalMirroring
	}

	ram := hwio.NewRAM("ram", hw.RAMSize)
	ppu := hw.NewPPU(rom.CHR, mirroring)
	bus, err := hw.NewCPUBus(ram, ppu, rom)
	if err != nil {
		return nil, err
	}
	cpu := hw.NewCPU(bus)

	nes := &NES{
		CPU: cpu,
		PPU: ppu,
		Bus: bus,
		RAM: ram,
		Rom: rom,
	}
	if err := nes.Reset(); err != nil {
		return nil, err
	}

	log.ModEmu.InfoZ("power up").
		Stringer("rom", rom).
		Stringer("mirroring", mirroring).
		End()
	return nes, nil
}

// Reset puts the console back in its power-up state. RAM content is cleared.
func (nes *NES) Reset() error {
	nes.RAM.Reset()
	nes.PPU.Reset()
	nes.Bus.IO.TakeStall()
	return nes.CPU.Reset()
}

// Step executes one CPU instruction then advances the PPU by the elapsed
// number of cycles. It returns the number of CPU cycles, DMA stall included,
// and whether the PPU completed a frame.
func (nes *NES) Step() (cycles int, frameDone bool, err error) {
	cycles, err = nes.CPU.Step()
	if err != nil {
		return cycles, false, err
	}

	if stall := nes.Bus.IO.TakeStall(); stall != 0 {
		nes.CPU.Stall(stall)
		cycles += stall
	}

	frameDone, err = nes.PPU.Advance(cycles * dotsPerCycle)
	if err != nil {
		return cycles, frameDone, fmt.Errorf("ppu: %w", err)
	}
	if nes.PPU.TakeNMI() {
		nes.CPU.TriggerNMI()
	}
	return cycles, frameDone, nil
}

// RunOneFrame steps the console until the PPU completes a frame.
func (nes *NES) RunOneFrame() error {
	for {
		_, done, err := nes.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// SaveSnapshot captures the state of the console.
func (nes *NES) SaveSnapshot() *snapshot.NES {
	return &snapshot.NES{
		Version: snapshot.Version,
		CPU:     nes.CPU.SaveState(),
		RAM:     append([]byte(nil), nes.RAM.Data...),
		PPU:     nes.PPU.SaveState(),
	}
}

// LoadSnapshot restores a state previously captured by SaveSnapshot, on the
// same cartridge.
func (nes *NES) LoadSnapshot(state *snapshot.NES) error {
	if len(state.RAM) != nes.RAM.Len() {
		return fmt.Errorf("ram state: got %d bytes, want %d", len(state.RAM), nes.RAM.Len())
	}
	if err := nes.PPU.LoadState(&state.PPU); err != nil {
		return err
	}
	copy(nes.RAM.Data, state.RAM)
	nes.CPU.LoadState(&state.CPU)
	nes.Bus.IO.TakeStall()
	return nil
}

// WriteState encodes the console state to w.
func (nes *NES) WriteState(w io.Writer) error {
	return nes.SaveSnapshot().Encode(w)
}

// ReadState decodes a state from r and restores it.
func (nes *NES) ReadState(r io.Reader) error {
	state, err := snapshot.Decode(r)
	if err != nil {
		return err
	}
	return nes.LoadSnapshot(state)
}
