package ines

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildRom(hdr []byte, trainer bool) []byte {
	var buf bytes.Buffer
	buf.Write(hdr)
	if trainer {
		buf.Write(make([]byte, TrainerSize))
	}
	prg := make([]byte, int(hdr[4])*PRGBankSize)
	for i := range prg {
		prg[i] = byte(i)
	}
	buf.Write(prg)
	buf.Write(make([]byte, int(hdr[5])*CHRBankSize))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	hdr := []byte{'N', 'E', 'S', 0x1A, 2, 1, 0x01, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	rom, err := Decode(bytes.NewReader(buildRom(hdr, false)))
	if err != nil {
		t.Fatal(err)
	}

	type infos struct {
		Mapper    uint8
		PRG, CHR  int
		Battery   bool
		Vertical  bool
		PRGLen    int
		CHRLen    int
		PRGMask   uint16
		HasTrainr bool
	}
	got := infos{
		Mapper:    rom.MapperNumber(),
		PRG:       rom.ProgramRomSize(),
		CHR:       rom.CharacterRomSize(),
		Battery:   rom.HasBatteryBackedMemory(),
		Vertical:  rom.IsVerticalVramMirroring(),
		PRGLen:    rom.PRG.Len(),
		CHRLen:    rom.CHR.Len(),
		PRGMask:   rom.PRGMask(),
		HasTrainr: rom.HasTrainer(),
	}
	want := infos{
		Mapper:   0,
		PRG:      2,
		CHR:      1,
		Vertical: true,
		PRGLen:   2 * PRGBankSize,
		CHRLen:   CHRBankSize,
		PRGMask:  0x7FFF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rom infos mismatch (-want +got):\n%s", diff)
	}

	if !rom.PRG.ReadOnly() || !rom.CHR.ReadOnly() {
		t.Errorf("PRG and CHR should be read-only")
	}
}

func TestDecodeFlags(t *testing.T) {
	tests := []struct {
		name     string
		flags6   byte
		flags7   byte
		mapper   uint8
		battery  bool
		vertical bool
		trainer  bool
	}{
		{name: "horizontal", flags6: 0x00},
		{name: "battery", flags6: 0x02, battery: true},
		{name: "trainer", flags6: 0x04, trainer: true},
		{name: "mapper 1", flags6: 0x10, mapper: 1},
		{name: "mapper 0x42", flags6: 0x21, flags7: 0x40, mapper: 0x42, vertical: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := []byte{'N', 'E', 'S', 0x1A, 1, 0, tt.flags6, tt.flags7, 0, 0, 0, 0, 0, 0, 0, 0}
			rom, err := Decode(bytes.NewReader(buildRom(hdr, tt.trainer)))
			if err != nil {
				t.Fatal(err)
			}
			if got := rom.MapperNumber(); got != tt.mapper {
				t.Errorf("MapperNumber() = %d, want %d", got, tt.mapper)
			}
			if got := rom.HasBatteryBackedMemory(); got != tt.battery {
				t.Errorf("HasBatteryBackedMemory() = %t, want %t", got, tt.battery)
			}
			if got := rom.IsVerticalVramMirroring(); got != tt.vertical {
				t.Errorf("IsVerticalVramMirroring() = %t, want %t", got, tt.vertical)
			}
			if got := rom.PRGMask(); got != 0x3FFF {
				t.Errorf("PRGMask() = %04X, want 3FFF", got)
			}
			// PRG data starts after the trainer, if any.
			if v, _ := rom.PRG.Read8(0x10); v != 0x10 {
				t.Errorf("PRG[0x10] = %02X, want 10", v)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := buildRom([]byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, false)

	badMagic := bytes.Clone(valid)
	badMagic[3] = 0x1B

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short header", valid[:10]},
		{"bad magic", badMagic},
		{"truncated prg", valid[:HeaderSize+100]},
		{"truncated chr", valid[:len(valid)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.buf))
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Decode error = %v, want %v", err, ErrFormat)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nes")
	buf := buildRom([]byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, false)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	rom, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("%v", rom)

	if _, err := Open(filepath.Join(t.TempDir(), "missing.nes")); err == nil {
		t.Errorf("Open should fail on missing file")
	}
}
