package hw

import (
	"image"

	"nescore/emu/log"
	"nescore/hw/hwio"
)

const (
	NumScanlines  = 262 // Number of scanlines per frame.
	NumCycles     = 341 // Number of PPU dots per scanline.
	VBlankLine    = 241 // First scanline of vertical blank.
	ScreenWidth   = 256
	ScreenHeight  = 240
	VRAMSize      = 0x800
	OAMSize       = 0x100
	PaletteSize   = 0x20
	CHRBlankSize  = 0x2000
	paletteOffset = 0x3F00
)

const (
	// PPUCTRL bits ($2000)
	ctrlNametable  = 0b11 // base nametable (0: $2000, 1: $2400, 2: $2800, 3: $2C00)
	ctrlVRAMIncr   = 1 << 2
	ctrlSpriteAddr = 1 << 3 // sprite pattern table (0: $0000, 1: $1000)
	ctrlBgAddr     = 1 << 4 // background pattern table (0: $0000, 1: $1000)
	ctrlNMI        = 1 << 7 // NMI at the start of vblank

	// PPUMASK bits ($2001)
	maskShowBg      = 1 << 3
	maskShowSprites = 1 << 4

	// PPUSTATUS bits ($2002)
	statusVBlank = 1 << 7
)

// Mirroring is the nametable arrangement decided by the cartridge.
type Mirroring uint8

const (
	HorizontalMirroring Mirroring = iota
	VerticalMirroring
)

func (m Mirroring) String() string {
	if m == VerticalMirroring {
		return "vertical"
	}
	return "horizontal"
}

// latch is the shared write toggle of the 2-writes registers.
type latch uint8

const (
	awaitingHighByte latch = iota
	awaitingLowByte
)

type PPU struct {
	CHR       *hwio.Mem // pattern tables, read-only cartridge data
	VRAM      *hwio.Mem // nametables and attribute tables
	OAM       *hwio.Mem // sprite RAM
	Palette   [PaletteSize]uint8
	Mirroring Mirroring

	// registers
	Ctrl     uint8
	Mask     uint8
	Status   uint8
	OAMAddr  uint8
	VRAMAddr uint16

	addrLatch   latch
	scrollLatch latch
	ScrollX     uint8
	ScrollY     uint8
	readBuf     uint8 // PPUDATA read buffer

	Dot      int    // Current dot in scanline
	Scanline int    // Current scanline
	Frames   uint64 // Number of completed frames

	tiles  []tile // background tiles built so far in current frame
	screen *image.RGBA

	nmi bool // raised at vblank start, collected by TakeNMI
}

// NewPPU creates a PPU reading pattern data from chr. A nil or empty chr is
// replaced with a blank 8KB pattern table.
func NewPPU(chr *hwio.Mem, mirroring Mirroring) *PPU {
	if chr == nil || chr.Len() == 0 {
		chr = hwio.NewROM("chr", make([]byte, CHRBlankSize))
	}
	return &PPU{
		CHR:       chr,
		VRAM:      hwio.NewRAM("vram", VRAMSize),
		OAM:       hwio.NewRAM("oam", OAMSize),
		Mirroring: mirroring,
		tiles:     make([]tile, 0, 32*30),
		screen:    image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
	}
}

func (p *PPU) Reset() {
	p.Ctrl = 0
	p.Mask = 0
	p.Status = 0
	p.OAMAddr = 0
	p.VRAMAddr = 0
	p.addrLatch = awaitingHighByte
	p.scrollLatch = awaitingHighByte
	p.ScrollX = 0
	p.ScrollY = 0
	p.readBuf = 0
	p.Dot = 0
	p.Scanline = 0
	p.Frames = 0
	p.tiles = p.tiles[:0]
	p.nmi = false
}

// VRAM address increment after PPUDATA accesses.
func (p *PPU) addrIncrement() uint16 {
	if p.Ctrl&ctrlVRAMIncr != 0 {
		return 0x20
	}
	return 0x01
}

// BgPatternBase returns the address of the background pattern table.
func (p *PPU) BgPatternBase() uint16 {
	if p.Ctrl&ctrlBgAddr != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) spritePatternBase() uint16 {
	if p.Ctrl&ctrlSpriteAddr != 0 {
		return 0x1000
	}
	return 0x0000
}

// TakeNMI reports whether an NMI has been raised since the last call.
func (p *PPU) TakeNMI() bool {
	nmi := p.nmi
	p.nmi = false
	return nmi
}

/* register port, mapped at $2000-$2007 */

func (p *PPU) Write8(addr uint16, val uint8) error {
	switch addr & 0x7 {
	case 0: // PPUCTRL
		p.Ctrl = val
	case 1: // PPUMASK
		p.Mask = val
	case 2: // PPUSTATUS is read-only
	case 3: // OAMADDR
		p.OAMAddr = val
	case 4: // OAMDATA
		p.OAM.Data[p.OAMAddr] = val
		p.OAMAddr++
	case 5: // PPUSCROLL
		p.writeScroll(val)
	case 6: // PPUADDR
		p.writeAddr(val)
	case 7: // PPUDATA
		err := p.writeVRAM(p.VRAMAddr, val)
		p.VRAMAddr += p.addrIncrement()
		return err
	}
	return nil
}

func (p *PPU) Read8(addr uint16) (uint8, error) {
	switch addr & 0x7 {
	case 2: // PPUSTATUS
		val := p.Status
		p.Status &^= statusVBlank
		p.addrLatch = awaitingHighByte
		p.scrollLatch = awaitingHighByte
		return val, nil
	case 4: // OAMDATA
		return p.OAM.Data[p.OAMAddr], nil
	case 7: // PPUDATA
		return p.readData()
	}
	// write-only registers.
	return 0, nil
}

// Peek8 returns the value a read would return, without side effects.
func (p *PPU) Peek8(addr uint16) uint8 {
	switch addr & 0x7 {
	case 2:
		return p.Status
	case 4:
		return p.OAM.Data[p.OAMAddr]
	case 7:
		return p.readBuf
	}
	return 0
}

// writeAddr drives the PPUADDR latch: high byte first, then low byte.
func (p *PPU) writeAddr(val uint8) {
	switch p.addrLatch {
	case awaitingHighByte:
		p.VRAMAddr = uint16(val) << 8
		p.addrLatch = awaitingLowByte
	case awaitingLowByte:
		p.VRAMAddr = p.VRAMAddr&0xFF00 | uint16(val)
		p.addrLatch = awaitingHighByte
		log.ModPPU.DebugZ("vram address").Hex16("addr", p.VRAMAddr).End()
	}
}

// writeScroll stores the scroll position: X first, then Y.
func (p *PPU) writeScroll(val uint8) {
	switch p.scrollLatch {
	case awaitingHighByte:
		p.ScrollX = val
		p.scrollLatch = awaitingLowByte
	case awaitingLowByte:
		p.ScrollY = val
		p.scrollLatch = awaitingHighByte
	}
}

func (p *PPU) readData() (uint8, error) {
	addr := p.VRAMAddr & 0x3FFF
	defer func() { p.VRAMAddr += p.addrIncrement() }()

	if addr >= paletteOffset {
		// Palette reads are immediate, the buffer gets the nametable byte
		// underneath.
		buf, err := p.readVRAM(addr - 0x1000)
		if err != nil {
			return 0, err
		}
		p.readBuf = buf
		return p.Palette[paletteIndex(addr)], nil
	}

	val := p.readBuf
	buf, err := p.readVRAM(addr)
	if err != nil {
		return 0, err
	}
	p.readBuf = buf
	return val, nil
}

/* VRAM classification */

// paletteIndex maps a palette address to an index in palette RAM. Sprite
// palettes entry 0 ($3F10/$3F14/$3F18/$3F1C) mirror background ones.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx&0x03 == 0 {
		idx -= 0x10
	}
	return idx
}

// nametableIndex maps a nametable address ($2000-$3EFF) to an index in the
// 2KB of VRAM, according to the mirroring mode.
func (p *PPU) nametableIndex(addr uint16) uint16 {
	if addr >= 0x3000 {
		addr -= 0x3000
	} else {
		addr -= 0x2000
	}

	switch p.Mirroring {
	case VerticalMirroring:
		return addr & 0x07FF
	default:
		return (addr>>1)&0x0400 | addr&0x03FF
	}
}

func (p *PPU) writeVRAM(addr uint16, val uint8) error {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		// Pattern tables are cartridge ROM.
		log.ModPPU.DebugZ("ignored write to pattern table").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return nil
	case addr >= paletteOffset:
		p.Palette[paletteIndex(addr)] = val
		return nil
	}
	return p.VRAM.Write8(p.nametableIndex(addr), val)
}

func (p *PPU) readVRAM(addr uint16) (uint8, error) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.CHR.Read8(addr)
	case addr >= paletteOffset:
		return p.Palette[paletteIndex(addr)], nil
	}
	return p.VRAM.Read8(p.nametableIndex(addr))
}

// WriteOAM copies buf into sprite RAM, starting at OAMADDR and wrapping.
func (p *PPU) WriteOAM(buf []byte) {
	for _, b := range buf {
		p.OAM.Data[p.OAMAddr] = b
		p.OAMAddr++
	}
}
