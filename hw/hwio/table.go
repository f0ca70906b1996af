package hwio

import (
	"errors"
	"fmt"

	"nescore/emu/log"
)

// ErrUnmapped is returned when accessing an address for which no device has
// been mapped.
var ErrUnmapped = errors.New("unmapped address")

// BankIO8 is implemented by the devices that can be mapped into a Table.
type BankIO8 interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, val uint8) error
}

// Peeker is optionally implemented by devices supporting side-effect free
// reads (debugging/tracing).
type Peeker interface {
	Peek8(addr uint16) uint8
}

// BusError reports a failed access on a Table.
type BusError struct {
	Bus   string
	Addr  uint16
	Write bool
	Err   error
}

func (e *BusError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s bus: %s $%04X: %v", e.Bus, op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

const (
	// RegionMask selects the region an address belongs to.
	RegionMask = 0xE000
	RegionSize = 0x2000
	numRegions = 0x10000 / RegionSize
)

type region struct {
	name string
	dev  BankIO8
	mask uint16
}

// Table routes 16-bit addresses to devices. The address space is partitioned
// into 8 regions of 8KB each, selected by the 3 high bits of the address. Each
// region is served by at most one device, which sees the address after it's
// been and-ed with the region mask.
type Table struct {
	Name string

	regions [numRegions]region
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	return t
}

func (t *Table) Reset() {
	t.regions = [numRegions]region{}
}

// MapRegion maps dev to the 8KB region starting at base. Addresses are and-ed
// with mask before being forwarded to dev. Mapping a misaligned base, or a
// region that is already mapped, is a configuration error and panics.
func (t *Table) MapRegion(base uint16, name string, dev BankIO8, mask uint16) {
	if base&^RegionMask != 0 {
		panic(fmt.Sprintf("%s bus: region base $%04X is not 8KB aligned", t.Name, base))
	}
	r := &t.regions[base>>13]
	if r.dev != nil {
		panic(fmt.Sprintf("%s bus: region $%04X already mapped to %s", t.Name, base, r.name))
	}

	log.ModHwIo.DebugZ("mapping region").
		String("bus", t.Name).
		Hex16("base", base).
		Hex16("mask", mask).
		String("dev", name).
		End()

	*r = region{name: name, dev: dev, mask: mask}
}

// Unmap removes the device mapped at the region containing addr.
func (t *Table) Unmap(addr uint16) {
	t.regions[addr>>13] = region{}
}

// Lookup returns the name of the device serving addr, and the address as seen
// by the device. ok is false if no device is mapped.
func (t *Table) Lookup(addr uint16) (name string, devaddr uint16, ok bool) {
	r := &t.regions[addr>>13]
	if r.dev == nil {
		return "", 0, false
	}
	return r.name, addr & r.mask, true
}

func (t *Table) Read8(addr uint16) (uint8, error) {
	r := &t.regions[addr>>13]
	if r.dev == nil {
		return 0, &BusError{Bus: t.Name, Addr: addr, Err: ErrUnmapped}
	}
	val, err := r.dev.Read8(addr & r.mask)
	if err != nil {
		return 0, &BusError{Bus: t.Name, Addr: addr, Err: err}
	}
	return val, nil
}

func (t *Table) Write8(addr uint16, val uint8) error {
	r := &t.regions[addr>>13]
	if r.dev == nil {
		return &BusError{Bus: t.Name, Addr: addr, Write: true, Err: ErrUnmapped}
	}
	if err := r.dev.Write8(addr&r.mask, val); err != nil {
		return &BusError{Bus: t.Name, Addr: addr, Write: true, Err: err}
	}
	return nil
}

// Peek8 reads a byte without side effects, if the mapped device supports it.
// Returns 0 otherwise.
func (t *Table) Peek8(addr uint16) uint8 {
	r := &t.regions[addr>>13]
	if p, ok := r.dev.(Peeker); ok {
		return p.Peek8(addr & r.mask)
	}
	return 0
}

func Read16(b BankIO8, addr uint16) (uint16, error) {
	lo, err := b.Read8(addr)
	if err != nil {
		return 0, err
	}
	hi, err := b.Read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}
