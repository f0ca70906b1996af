package emu

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

// ErrHalted is returned by RunOneFrame once the emulator stopped on an illegal
// opcode.
var ErrHalted = errors.New("emulation halted")

type Emulator struct {
	NES *NES
	out Output
	cfg EmulationConfig

	frames uint64
	halted bool

	// Accessed concurrently by the emulator loop and the UI.
	quit atomic.Bool
}

// Launch powers up the console and connects it to out. It doesn't start the
// emulation loop, call Run for that. trace, if not nil, receives the CPU
// execution trace.
func Launch(rom *ines.Rom, cfg Config, out Output, trace io.Writer) (*Emulator, error) {
	nes, err := PowerUp(rom)
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	if trace != nil {
		nes.CPU.SetTraceOutput(trace)
	}

	return &Emulator{
		NES: nes,
		out: out,
		cfg: cfg.Emulation,
	}, nil
}

// RunOneFrame runs the console until the next frame is complete and presents
// it.
func (e *Emulator) RunOneFrame() error {
	if e.halted {
		return ErrHalted
	}

	if err := e.NES.RunOneFrame(); err != nil {
		var illegal *hw.IllegalOpcodeError
		if errors.As(err, &illegal) && e.cfg.HaltOnIllegalOpcode {
			log.ModEmu.WarnZ("halting on illegal opcode").
				Hex8("opcode", illegal.Opcode).
				Hex16("PC", illegal.PC).
				Uint("frame", e.frames).
				End()
			e.halted = true
			return ErrHalted
		}
		return err
	}

	e.frames++
	return e.out.Present(e.NES.PPU.Frame())
}

// Run loops until the output asks to stop, Stop is called, the frame limit is
// reached or the CPU halts. Halting on an illegal opcode isn't an error.
func (e *Emulator) Run() error {
	defer func() {
		if err := e.out.Close(); err != nil {
			log.ModEmu.WarnZ("failed to close output").Error("err", err).End()
		}
	}()

	for e.out.Poll() && !e.shouldStop() {
		if err := e.RunOneFrame(); err != nil {
			if errors.Is(err, ErrHalted) {
				break
			}
			return err
		}
	}

	log.ModEmu.InfoZ("emulation loop exited").
		Uint("frames", e.frames).
		Int64("cycles", e.NES.CPU.Cycles).
		End()
	return nil
}

// Frames returns the number of frames run so far.
func (e *Emulator) Frames() uint64 { return e.frames }

// Halted reports whether the emulator stopped on an illegal opcode.
func (e *Emulator) Halted() bool { return e.halted }

// Stop requests the emulation loop to exit at the end of the current frame.
func (e *Emulator) Stop() { e.quit.Store(true) }

func (e *Emulator) shouldStop() bool {
	if e.quit.Load() || e.halted {
		return true
	}
	return e.cfg.MaxFrames != 0 && e.frames >= e.cfg.MaxFrames
}
