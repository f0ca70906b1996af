package hw

import (
	"image"

	"nescore/emu/log"
)

// tile is a background tile, decoded from the pattern table.
type tile struct {
	x, y    int         // screen position
	pixels  [8][8]uint8 // 2-bit color indices, [row][column]
	palette uint8       // background palette (0-3)
}

// Advance runs the PPU for the given number of dots. It returns true when a
// frame has been completed, at which point Frame holds the whole picture.
func (p *PPU) Advance(dots int) (frameDone bool, err error) {
	if p.Scanline == 0 {
		p.tiles = p.tiles[:0]
	}

	p.Dot += dots
	for p.Dot >= NumCycles {
		p.Dot -= NumCycles
		p.Scanline++

		switch {
		case p.Scanline <= ScreenHeight && p.Scanline%8 == 0:
			if err := p.buildRow(p.Scanline/8 - 1); err != nil {
				return frameDone, err
			}
		case p.Scanline == VBlankLine:
			p.Status |= statusVBlank
			if p.Ctrl&ctrlNMI != 0 {
				p.nmi = true
			}
		case p.Scanline == NumScanlines:
			p.Scanline = 0
			p.Status &^= statusVBlank
			if err := p.render(); err != nil {
				return frameDone, err
			}
			p.tiles = p.tiles[:0]
			p.Frames++
			frameDone = true
		}
	}
	return frameDone, nil
}

// buildRow decodes the 32 background tiles of a tile row.
func (p *PPU) buildRow(row int) error {
	ntoff := uint16(p.Ctrl&ctrlNametable) * 0x400
	for col := range 32 {
		t, err := p.buildTile(col, row, ntoff)
		if err != nil {
			return err
		}
		p.tiles = append(p.tiles, t)
	}
	return nil
}

func (p *PPU) buildTile(col, row int, ntoff uint16) (tile, error) {
	t := tile{x: col * 8, y: row * 8}

	// Each attribute byte covers 4x4 tiles, in 4 blocks of 2x2 tiles.
	blockID := (col%4)/2 + (row%4)/2*2

	pattern, err := p.readVRAM(0x2000 + ntoff + uint16(row*32+col))
	if err != nil {
		return t, err
	}
	attr, err := p.readVRAM(0x2000 + ntoff + 0x03C0 + uint16(col/4+row/4*8))
	if err != nil {
		return t, err
	}
	t.palette = (attr >> (blockID * 2)) & 0x03

	base := uint16(pattern)*16 + p.BgPatternBase()
	for y := range 8 {
		lo, err := p.CHR.Read8(base + uint16(y))
		if err != nil {
			return t, err
		}
		hi, err := p.CHR.Read8(base + uint16(y) + 8)
		if err != nil {
			return t, err
		}
		for x := range 8 {
			bit := 7 - x
			t.pixels[y][x] = (hi>>bit&1)<<1 | lo>>bit&1
		}
	}
	return t, nil
}

// render draws the background tiles, then the sprites if enabled, into the
// frame buffer.
func (p *PPU) render() error {
	for i := range p.tiles {
		t := &p.tiles[i]
		for y := range 8 {
			for x := range 8 {
				p.screen.SetRGBA(t.x+x, t.y+y, p.colorAt(t.palette, t.pixels[y][x]))
			}
		}
	}

	if p.Mask&maskShowSprites != 0 {
		if err := p.renderSprites(); err != nil {
			return err
		}
	}

	log.ModPPU.DebugZ("frame rendered").
		Uint("frame", p.Frames).
		Int("tiles", len(p.tiles)).
		End()
	return nil
}

// renderSprites draws the 64 8x8 sprites of OAM on top of the background.
// Sprites are drawn in reverse order so that lower indices have priority.
func (p *PPU) renderSprites() error {
	base := p.spritePatternBase()
	for i := 63; i >= 0; i-- {
		spr := p.OAM.Data[i*4 : i*4+4]
		y := int(spr[0]) + 1
		if y >= ScreenHeight {
			continue
		}
		pattern, attr, x := spr[1], spr[2], int(spr[3])
		pal := 4 + attr&0x03
		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0

		for row := range 8 {
			py := row
			if flipV {
				py = 7 - row
			}
			addr := uint16(pattern)*16 + base + uint16(py)
			lo, err := p.CHR.Read8(addr)
			if err != nil {
				return err
			}
			hi, err := p.CHR.Read8(addr + 8)
			if err != nil {
				return err
			}
			for col := range 8 {
				bit := 7 - col
				if flipH {
					bit = col
				}
				pix := (hi>>bit&1)<<1 | lo>>bit&1
				sx, sy := x+col, y+row
				if pix == 0 || sx >= ScreenWidth || sy >= ScreenHeight {
					continue
				}
				p.screen.SetRGBA(sx, sy, p.colorAt(pal, pix))
			}
		}
	}
	return nil
}

// Frame returns the frame buffer. Its content is only complete right after
// Advance reported a finished frame.
func (p *PPU) Frame() *image.RGBA {
	return p.screen
}

// Pixel returns the 0xRRGGBB color of the pixel at (x, y).
func (p *PPU) Pixel(x, y int) uint32 {
	c := p.screen.RGBAAt(x, y)
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
