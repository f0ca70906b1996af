package hw

import (
	"fmt"

	"nescore/hw/snapshot"
)

func (c *CPU) SaveState() snapshot.CPU {
	return snapshot.CPU{
		PC:     c.PC,
		SP:     c.SP,
		P:      uint8(c.P),
		A:      c.A,
		X:      c.X,
		Y:      c.Y,
		Cycles: c.Cycles,
		NMI:    c.nmi,
	}
}

func (c *CPU) LoadState(s *snapshot.CPU) {
	c.PC = s.PC
	c.SP = s.SP
	c.P = P(s.P)
	c.A = s.A
	c.X = s.X
	c.Y = s.Y
	c.Cycles = s.Cycles
	c.nmi = s.NMI
}

func (p *PPU) SaveState() snapshot.PPU {
	return snapshot.PPU{
		Ctrl:        p.Ctrl,
		Mask:        p.Mask,
		Status:      p.Status,
		OAMAddr:     p.OAMAddr,
		VRAMAddr:    p.VRAMAddr,
		AddrLatch:   p.addrLatch == awaitingLowByte,
		ScrollLatch: p.scrollLatch == awaitingLowByte,
		ScrollX:     p.ScrollX,
		ScrollY:     p.ScrollY,
		ReadBuf:     p.readBuf,
		Dot:         p.Dot,
		Scanline:    p.Scanline,
		Frames:      p.Frames,
		VRAM:        append([]byte(nil), p.VRAM.Data...),
		OAM:         append([]byte(nil), p.OAM.Data...),
		Palette:     append([]byte(nil), p.Palette[:]...),
	}
}

// LoadState restores the PPU from s. Background tiles of the frame in
// progress are not part of the state, so the first frame after a load only
// shows the rows built after it.
func (p *PPU) LoadState(s *snapshot.PPU) error {
	if len(s.VRAM) != p.VRAM.Len() || len(s.OAM) != p.OAM.Len() || len(s.Palette) != PaletteSize {
		return fmt.Errorf("ppu state: wrong memory sizes (vram=%d oam=%d palette=%d)",
			len(s.VRAM), len(s.OAM), len(s.Palette))
	}
	if s.Scanline < 0 || s.Scanline >= NumScanlines || s.Dot < 0 || s.Dot >= NumCycles {
		return fmt.Errorf("ppu state: invalid position (scanline=%d dot=%d)", s.Scanline, s.Dot)
	}

	p.Ctrl = s.Ctrl
	p.Mask = s.Mask
	p.Status = s.Status
	p.OAMAddr = s.OAMAddr
	p.VRAMAddr = s.VRAMAddr
	p.addrLatch = toLatch(s.AddrLatch)
	p.scrollLatch = toLatch(s.ScrollLatch)
	p.ScrollX = s.ScrollX
	p.ScrollY = s.ScrollY
	p.readBuf = s.ReadBuf
	p.Dot = s.Dot
	p.Scanline = s.Scanline
	p.Frames = s.Frames
	copy(p.VRAM.Data, s.VRAM)
	copy(p.OAM.Data, s.OAM)
	copy(p.Palette[:], s.Palette)
	p.tiles = p.tiles[:0]
	p.nmi = false
	return nil
}

func toLatch(low bool) latch {
	if low {
		return awaitingLowByte
	}
	return awaitingHighByte
}
