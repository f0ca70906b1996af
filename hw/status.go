package hw

// P is the processor status register.
type P uint8

const (
	Carry P = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Unused
	Overflow
	Negative
)

// ResetP is the status register value after a reset: interrupts disabled and
// the unused bit set, everything else clear.
const ResetP = Interrupt | Unused

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) has(flag P) bool { return p&flag != 0 }

func (p *P) set(flag P, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

// Read-only flag accessors.

func (p P) C() bool { return p.has(Carry) }
func (p P) Z() bool { return p.has(Zero) }
func (p P) I() bool { return p.has(Interrupt) }
func (p P) D() bool { return p.has(Decimal) }
func (p P) B() bool { return p.has(Break) }
func (p P) V() bool { return p.has(Overflow) }
func (p P) N() bool { return p.has(Negative) }

// checkNZ sets Z if v is 0 and N if bit 7 of v is set, clearing them
// otherwise.
func (p *P) checkNZ(v uint8) {
	p.set(Zero, v == 0)
	p.set(Negative, v&0x80 != 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.set(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.set(Overflow, v != 0)
}
