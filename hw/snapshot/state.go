// Package snapshot defines the serialized state of the emulated hardware.
//
// States are stored as JSON documents. Memory blocks are base64 encoded.
package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-faster/jx"
)

// Version of the state format. Decode rejects other versions.
const Version = 1

var (
	ErrVersion = errors.New("unsupported snapshot version")
	ErrRange   = errors.New("value out of range")
)

type NES struct {
	Version int
	CPU     CPU
	RAM     []byte
	PPU     PPU
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles int64
	NMI    bool // pending NMI
}

type PPU struct {
	Ctrl     uint8
	Mask     uint8
	Status   uint8
	OAMAddr  uint8
	VRAMAddr uint16

	AddrLatch   bool // true when awaiting the low byte
	ScrollLatch bool
	ScrollX     uint8
	ScrollY     uint8
	ReadBuf     uint8

	Dot      int
	Scanline int
	Frames   uint64

	VRAM    []byte
	OAM     []byte
	Palette []byte
}

// Encode writes s to w.
func (s *NES) Encode(w io.Writer) error {
	var e jx.Encoder
	e.SetIdent(2)
	s.encode(&e)
	if _, err := w.Write(e.Bytes()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *NES) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
		e.Field("cpu", s.CPU.encode)
		e.Field("ram", func(e *jx.Encoder) { e.Base64(s.RAM) })
		e.Field("ppu", s.PPU.encode)
	})
}

func (s *CPU) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(s.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(s.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(s.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(s.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(s.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("nmi", func(e *jx.Encoder) { e.Bool(s.NMI) })
	})
}

func (s *PPU) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("ctrl", func(e *jx.Encoder) { e.UInt8(s.Ctrl) })
		e.Field("mask", func(e *jx.Encoder) { e.UInt8(s.Mask) })
		e.Field("status", func(e *jx.Encoder) { e.UInt8(s.Status) })
		e.Field("oam_addr", func(e *jx.Encoder) { e.UInt8(s.OAMAddr) })
		e.Field("vram_addr", func(e *jx.Encoder) { e.UInt16(s.VRAMAddr) })
		e.Field("addr_latch", func(e *jx.Encoder) { e.Bool(s.AddrLatch) })
		e.Field("scroll_latch", func(e *jx.Encoder) { e.Bool(s.ScrollLatch) })
		e.Field("scroll_x", func(e *jx.Encoder) { e.UInt8(s.ScrollX) })
		e.Field("scroll_y", func(e *jx.Encoder) { e.UInt8(s.ScrollY) })
		e.Field("read_buf", func(e *jx.Encoder) { e.UInt8(s.ReadBuf) })
		e.Field("dot", func(e *jx.Encoder) { e.Int(s.Dot) })
		e.Field("scanline", func(e *jx.Encoder) { e.Int(s.Scanline) })
		e.Field("frames", func(e *jx.Encoder) { e.UInt64(s.Frames) })
		e.Field("vram", func(e *jx.Encoder) { e.Base64(s.VRAM) })
		e.Field("oam", func(e *jx.Encoder) { e.Base64(s.OAM) })
		e.Field("palette", func(e *jx.Encoder) { e.Base64(s.Palette) })
	})
}

// Decode reads a state from r. Unknown fields are ignored.
func Decode(r io.Reader) (*NES, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	s := new(NES)
	if err := s.decode(jx.DecodeBytes(buf)); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	return s, nil
}

func (s *NES) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
		case "cpu":
			err = s.CPU.decode(d)
		case "ram":
			s.RAM, err = d.Base64()
		case "ppu":
			err = s.PPU.decode(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (s *CPU) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = decodeUint16(d)
		case "sp":
			s.SP, err = decodeUint8(d)
		case "p":
			s.P, err = decodeUint8(d)
		case "a":
			s.A, err = decodeUint8(d)
		case "x":
			s.X, err = decodeUint8(d)
		case "y":
			s.Y, err = decodeUint8(d)
		case "cycles":
			s.Cycles, err = d.Int64()
		case "nmi":
			s.NMI, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (s *PPU) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "ctrl":
			s.Ctrl, err = decodeUint8(d)
		case "mask":
			s.Mask, err = decodeUint8(d)
		case "status":
			s.Status, err = decodeUint8(d)
		case "oam_addr":
			s.OAMAddr, err = decodeUint8(d)
		case "vram_addr":
			s.VRAMAddr, err = decodeUint16(d)
		case "addr_latch":
			s.AddrLatch, err = d.Bool()
		case "scroll_latch":
			s.ScrollLatch, err = d.Bool()
		case "scroll_x":
			s.ScrollX, err = decodeUint8(d)
		case "scroll_y":
			s.ScrollY, err = decodeUint8(d)
		case "read_buf":
			s.ReadBuf, err = decodeUint8(d)
		case "dot":
			s.Dot, err = d.Int()
		case "scanline":
			s.Scanline, err = d.Int()
		case "frames":
			s.Frames, err = d.UInt64()
		case "vram":
			s.VRAM, err = d.Base64()
		case "oam":
			s.OAM, err = d.Base64()
		case "palette":
			s.Palette, err = d.Base64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

// decodeUint8 and decodeUint16 fail with ErrRange on numbers that don't fit.
func decodeUint8(d *jx.Decoder) (uint8, error) {
	v, err := decodeUint(d, 0xFF)
	return uint8(v), err
}

func decodeUint16(d *jx.Decoder) (uint16, error) {
	v, err := decodeUint(d, 0xFFFF)
	return uint16(v), err
}

func decodeUint(d *jx.Decoder, limit uint64) (uint64, error) {
	v, err := d.UInt64()
	if err != nil {
		return 0, err
	}
	if v > limit {
		return 0, fmt.Errorf("%w: %d > %d", ErrRange, v, limit)
	}
	return v, nil
}
