package hw

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock int64
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer
}

// write the execution trace for the instruction about to be executed, in
// nestest log format (without the PPU columns).
func (t *tracer) write(state cpuState) {
	dis := t.d.Disasm(state.PC)
	buf := dis.Bytes()
	buf = fmt.Appendf(buf, "A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		state.A, state.X, state.Y, byte(state.P), state.SP, state.Clock)
	t.w.Write(buf)
}
