package emu

import (
	"bytes"
	"testing"

	"nescore/emu/log"
	"nescore/ines"
)

func init() {
	log.Disable()
}

// Vectors and program of the test cartridge. The main loop increments $00
// forever, the NMI handler increments $01.
const (
	progStart = 0x8000
	nmiStart  = 0x8018
)

var loopProgram = []byte{
	0x78,             // 8000 SEI
	0xD8,             // 8001 CLD
	0xA2, 0xFF,       // 8002 LDX #$FF
	0x9A,             // 8004 TXS
	0xA9, 0x80,       // 8005 LDA #$80
	0x8D, 0x00, 0x20, // 8007 STA $2000
	0xA9, 0x00,       // 800A LDA #$00
	0x85, 0x00,       // 800C STA $00
	0xE6, 0x00,       // 800E INC $00
	0xA5, 0x00,       // 8010 LDA $00
	0x8D, 0x00, 0x03, // 8012 STA $0300
	0x4C, 0x0E, 0x80, // 8015 JMP $800E
	0xE6, 0x01,       // 8018 INC $01
	0x40,             // 801A RTI
}

// buildRom assembles a mapper 0 cartridge with a single PRG bank holding prog
// at $8000.
func buildRom(tb testing.TB, prog []byte) *ines.Rom {
	tb.Helper()

	prg := make([]byte, ines.PRGBankSize)
	copy(prg, prog)
	vectors := []uint16{nmiStart, progStart, nmiStart}
	for i, v := range vectors {
		prg[0x3FFA+2*i] = byte(v)
		prg[0x3FFB+2*i] = byte(v >> 8)
	}

	var buf bytes.Buffer
	buf.WriteString(ines.Magic)
	buf.Write([]byte{1, 1, 0x01, 0x00, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write(prg)
	buf.Write(make([]byte, ines.CHRBankSize))

	rom, err := ines.Decode(&buf)
	if err != nil {
		tb.Fatalf("failed to decode test rom: %v", err)
	}
	return rom
}

func powerUpTest(tb testing.TB, prog []byte) *NES {
	tb.Helper()

	nes, err := PowerUp(buildRom(tb, prog))
	if err != nil {
		tb.Fatalf("power up: %v", err)
	}
	return nes
}
