// Package ines decodes cartridge images in the iNES file format, used for the
// distribution of NES programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"

	"nescore/emu/log"
	"nescore/hw/hwio"
)

// ErrFormat is returned when a cartridge image is malformed.
var ErrFormat = errors.New("invalid iNES format")

const (
	Magic = "NES\x1a"

	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 16384
	CHRBankSize = 8192
)

// Rom is an immutable cartridge image.
type Rom struct {
	header
	Trainer []byte    // 512 bytes if present, or empty.
	PRG     *hwio.Mem // program ROM, multiple of 16KB.
	CHR     *hwio.Mem // character ROM, multiple of 8KB (may be empty).
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a whole cartridge image from r.
func Decode(r io.Reader) (*Rom, error) {
	rom := new(Rom)
	if _, err := rom.ReadFrom(r); err != nil {
		return nil, err
	}
	log.ModCart.DebugZ("decoded cartridge").
		Uint("mapper", uint64(rom.MapperNumber())).
		Int("prg", rom.PRG.Len()).
		Int("chr", rom.CHR.Len()).
		End()
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("header: %w", err)
	}
	off := HeaderSize

	if rom.HasTrainer() {
		if len(buf) < off+TrainerSize {
			return 0, fmt.Errorf("incomplete trainer section: %w", ErrFormat)
		}
		rom.Trainer = buf[off : off+TrainerSize]
		off += TrainerSize
	}

	if len(buf) < off+rom.prgsz {
		return 0, fmt.Errorf("incomplete PRG section (%d < %d): %w", len(buf)-off, rom.prgsz, ErrFormat)
	}
	rom.PRG = hwio.NewROM("prg", buf[off:off+rom.prgsz])
	off += rom.prgsz

	if len(buf) < off+rom.chrsz {
		return 0, fmt.Errorf("incomplete CHR section (%d < %d): %w", len(buf)-off, rom.chrsz, ErrFormat)
	}
	rom.CHR = hwio.NewROM("chr", buf[off:off+rom.chrsz])
	off += rom.chrsz

	return int64(len(buf)), nil
}

func (hdr *header) decode(p []byte) error {
	if len(p) < HeaderSize {
		return fmt.Errorf("too small, needs %d bytes: %w", HeaderSize, ErrFormat)
	}
	if string(p[:4]) != Magic {
		return fmt.Errorf("invalid magic number %q: %w", p[:4], ErrFormat)
	}
	copy(hdr.raw[:], p[:HeaderSize])

	hdr.prgsz = int(hdr.raw[4]) * PRGBankSize
	hdr.chrsz = int(hdr.raw[5]) * CHRBankSize
	return nil
}

type header struct {
	raw   [HeaderSize]byte
	prgsz int
	chrsz int
}

// ProgramRomSize returns the number of 16KB PRG banks.
func (hdr *header) ProgramRomSize() int { return int(hdr.raw[4]) }

// CharacterRomSize returns the number of 8KB CHR banks.
func (hdr *header) CharacterRomSize() int { return int(hdr.raw[5]) }

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasBatteryBackedMemory indicates the presence of persistent memory.
func (hdr *header) HasBatteryBackedMemory() bool {
	return hdr.raw[6]&0x02 != 0
}

// IsVerticalVramMirroring reports whether nametables are mirrored vertically
// (horizontal arrangement). When false, mirroring is horizontal.
func (hdr *header) IsVerticalVramMirroring() bool {
	return hdr.raw[6]&0x01 != 0
}

// MapperNumber combines the high nibble of flags 7 and the high nibble of
// flags 6.
func (hdr *header) MapperNumber() uint8 {
	return hdr.raw[7]&0xF0 | hdr.raw[6]>>4
}

// PRGMask returns the mask applied to CPU addresses in $8000-$FFFF to index
// the PRG ROM. A single 16KB bank is mirrored in both halves.
func (hdr *header) PRGMask() uint16 {
	if hdr.raw[4] == 1 {
		return 0x3FFF
	}
	return 0x7FFF
}

// Header returns a copy of the raw 16-byte header.
func (hdr *header) Header() [HeaderSize]byte {
	return hdr.raw
}

func (rom *Rom) String() string {
	mirroring := "horizontal"
	if rom.IsVerticalVramMirroring() {
		mirroring = "vertical"
	}
	return fmt.Sprintf("mapper=%d prg=%dx16KB chr=%dx8KB mirroring=%s battery=%t trainer=%t",
		rom.MapperNumber(), rom.ProgramRomSize(), rom.CharacterRomSize(),
		mirroring, rom.HasBatteryBackedMemory(), rom.HasTrainer())
}
