package emu

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/bmp"

	"nescore/emu/log"
)

// Output receives the frames produced by the PPU.
type Output interface {
	// Present is called each time a frame is complete. frame is reused by
	// the PPU, it must be copied if retained.
	Present(frame *image.RGBA) error

	// Poll reports whether the emulation should go on.
	Poll() bool

	Close() error
}

// HeadlessOutput discards frames, only keeping a copy of the last one.
type HeadlessOutput struct {
	last   *image.RGBA
	frames uint64
}

func NewHeadlessOutput() *HeadlessOutput {
	return &HeadlessOutput{}
}

func (o *HeadlessOutput) Present(frame *image.RGBA) error {
	if o.last == nil {
		o.last = image.NewRGBA(frame.Rect)
	}
	copy(o.last.Pix, frame.Pix)
	o.frames++
	return nil
}

func (o *HeadlessOutput) Poll() bool   { return true }
func (o *HeadlessOutput) Close() error { return nil }

// Frames returns the number of frames presented so far.
func (o *HeadlessOutput) Frames() uint64 { return o.frames }

// Screenshot returns the last presented frame, or nil.
func (o *HeadlessOutput) Screenshot() *image.RGBA { return o.last }

// SaveAsBMP writes img to path in BMP format.
func SaveAsBMP(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.ModEmu.InfoZ("screenshot saved").String("path", path).End()
	return nil
}
