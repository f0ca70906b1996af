package hw

import (
	"fmt"
	"strings"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// Bytes returns the string representation of a DisasmOp, padded to 48
// columns, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], d.Opcode)
	if d.Oper == "" {
		buf = buf[:off]
	} else {
		buf[off] = ' '
		off++
		buf = append(buf[:off], d.Oper...)
	}

	if len(buf) >= totalLen {
		return append(buf, ' ')
	}
	for len(buf) < totalLen {
		buf = append(buf, ' ')
	}
	return buf
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// disasm disassembles the instruction at pc, reading memory without side
// effects.
func disasm(c *CPU, pc uint16) DisasmOp {
	opcode := c.Peek8(pc)
	op, ok := LookupOpcode(opcode)
	if !ok {
		return DisasmOp{
			PC:     pc,
			Opcode: "???",
			Oper:   fmt.Sprintf("$%02X", opcode),
			Buf:    []byte{opcode},
		}
	}

	buf := []byte{opcode}
	for i := range op.Mode.OperandSize() {
		buf = append(buf, c.Peek8(pc+1+uint16(i)))
	}

	var oper uint16
	switch len(buf) {
	case 2:
		oper = uint16(buf[1])
	case 3:
		oper = uint16(buf[2])<<8 | uint16(buf[1])
	}

	return DisasmOp{
		PC:     pc,
		Opcode: op.Name,
		Oper:   formatOperand(op.Mode, pc, oper),
		Buf:    buf,
	}
}

func formatOperand(mode AddrMode, pc, oper uint16) string {
	switch mode {
	case Accumulator:
		return "A"
	case Immediate:
		return fmt.Sprintf("#$%02X", oper)
	case ZeroPage:
		return fmt.Sprintf("$%02X", oper)
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", oper)
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", oper)
	case Absolute:
		return fmt.Sprintf("$%04X", oper)
	case AbsoluteX:
		return fmt.Sprintf("$%04X,X", oper)
	case AbsoluteY:
		return fmt.Sprintf("$%04X,Y", oper)
	case Relative:
		return fmt.Sprintf("$%04X", pc+2+uint16(int16(int8(oper))))
	case Indirect:
		return fmt.Sprintf("($%04X)", oper)
	case IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", oper)
	case IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", oper)
	}
	return ""
}
