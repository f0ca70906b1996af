package hw

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func BenchmarkDisasmOpBytes(b *testing.B) {
	want := fmt.Sprintf("%-48s", "C000  4C F5 C5  JMP $C5F5")

	op := DisasmOp{
		Opcode: "JMP",
		Oper:   "$C5F5",
		Buf:    []byte{0x4c, 0xf5, 0xc5},
		PC:     0xC000,
	}

	var opbytes []byte
	for range b.N {
		opbytes = op.Bytes()
	}

	if string(opbytes) != want {
		b.Fatalf("\ngot:  \"%s\"\nwant: \"%s\"\n", string(opbytes), want)
	}
}

type dummyDisasm map[uint16]DisasmOp

func (dd dummyDisasm) Disasm(pc uint16) DisasmOp {
	return dd[pc]
}

func TestTraceFormat(t *testing.T) {
	want := []string{
		`E052  A9 32     LDA #$32                        A:00 X:01 Y:00 P:07 SP:F4 CYC:8`,
		`E054  20 EE E0  JSR $E0EE                       A:32 X:01 Y:00 P:05 SP:F4 CYC:10`,
	}

	var out bytes.Buffer

	tr := tracer{
		d: dummyDisasm{
			0xE052: DisasmOp{
				PC:     0xE052,
				Buf:    []byte{0xA9, 0x32},
				Opcode: "LDA",
				Oper:   "#$32",
			},
			0xE054: DisasmOp{
				PC:     0xE054,
				Buf:    []byte{0x20, 0xEE, 0xE0},
				Opcode: "JSR",
				Oper:   "$E0EE",
			},
		},
		w: &out,
	}

	tr.write(cpuState{
		PC: 0xE052,
		A:  0x00, X: 0x01, Y: 0x00, P: P(0x07), SP: 0xF4,
		Clock: 8,
	})
	tr.write(cpuState{
		PC: 0xE054,
		A:  0x32, X: 0x01, Y: 0x00, P: P(0x05), SP: 0xF4,
		Clock: 10,
	})

	wantstr := strings.Join(want, "\n") + "\n"
	if out.String() != wantstr {
		t.Fatalf("trace differs\ngot:\n%s\nwant:\n%s\n", out.String(), wantstr)
	}
}

func TestCPUTrace(t *testing.T) {
	// LDA #$32; STA $0200,X; BNE $8000; ASL A
	cpu, _ := newTestCPU(t, 0xA9, 0x32, 0x9D, 0x00, 0x02, 0xD0, 0xF9, 0x0A)

	var out bytes.Buffer
	cpu.SetTraceOutput(&out)
	step(t, cpu)
	step(t, cpu)
	step(t, cpu)
	cpu.SetTraceOutput(nil)
	step(t, cpu)

	want := []string{
		fmt.Sprintf("%-48s%s", "8000  A9 32     LDA #$32", "A:00 X:00 Y:00 P:24 SP:FD CYC:0"),
		fmt.Sprintf("%-48s%s", "8002  9D 00 02  STA $0200,X", "A:32 X:00 Y:00 P:24 SP:FD CYC:2"),
		fmt.Sprintf("%-48s%s", "8005  D0 F9     BNE $8000", "A:32 X:00 Y:00 P:24 SP:FD CYC:7"),
	}
	wantstr := strings.Join(want, "\n") + "\n"
	if out.String() != wantstr {
		t.Fatalf("trace differs\ngot:\n%s\nwant:\n%s\n", out.String(), wantstr)
	}
}

func TestDisasm(t *testing.T) {
	cpu, mem := newTestCPU(t)
	prog := []struct {
		bytes []byte
		want  string
	}{
		{[]byte{0xEA}, "NOP"},
		{[]byte{0x0A}, "ASL A"},
		{[]byte{0xA5, 0x10}, "LDA $10"},
		{[]byte{0xB6, 0x10}, "LDX $10,Y"},
		{[]byte{0x6C, 0x34, 0x12}, "JMP ($1234)"},
		{[]byte{0xA1, 0x20}, "LDA ($20,X)"},
		{[]byte{0x91, 0x20}, "STA ($20),Y"},
		{[]byte{0xB9, 0x00, 0x03}, "LDA $0300,Y"},
		{[]byte{0x02}, "???"},
	}
	for _, p := range prog {
		copy(mem[0x9000:], p.bytes)
		got := cpu.Disasm(0x9000)
		if got.Opcode+" "+got.Oper != p.want && got.Opcode != p.want {
			t.Errorf("Disasm(% X) = %q %q, want %q", p.bytes, got.Opcode, got.Oper, p.want)
		}
	}
}
