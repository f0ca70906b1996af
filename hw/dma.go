package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

const (
	OAMDMAReg    = 0x4014
	OAMDMACycles = 513 // CPU cycles during which the CPU is halted by OAM DMA.
)

// IO serves the $4000-$5FFF region. Audio and controller registers are not
// emulated: writes are discarded and reads return 0. Writing $4014 copies a
// 256-byte CPU page into sprite RAM.
type IO struct {
	bus hwio.BankIO8 // CPU bus, source of OAM DMA
	ppu *PPU

	stall int // CPU cycles owed to DMA, collected by TakeStall
}

func (io *IO) Read8(addr uint16) (uint8, error) {
	return 0, nil
}

func (io *IO) Peek8(addr uint16) uint8 { return 0 }

func (io *IO) Write8(addr uint16, val uint8) error {
	if addr != OAMDMAReg {
		return nil
	}
	return io.oamDMA(val)
}

func (io *IO) oamDMA(page uint8) error {
	log.ModPPU.DebugZ("OAM DMA transfer").Hex8("page", page).End()

	var buf [OAMSize]byte
	src := uint16(page) << 8
	for i := range buf {
		val, err := io.bus.Read8(src + uint16(i))
		if err != nil {
			return err
		}
		buf[i] = val
	}
	io.ppu.WriteOAM(buf[:])
	io.stall += OAMDMACycles
	return nil
}

// TakeStall returns, and clears, the number of CPU cycles consumed by DMA
// transfers since the last call.
func (io *IO) TakeStall() int {
	n := io.stall
	io.stall = 0
	return n
}
