package dualscreen

import (
	"errors"
	"fmt"

	"github.com/gogpu/dualscreen/pixel"
)

// Frame geometry.
const (
	// ScreenWidth is the width of one screen in pixels.
	ScreenWidth = 256
	// ScreenHeight is the height of one screen in scanlines.
	ScreenHeight = 192
	// Screens is the number of screens stacked in the output.
	Screens = 2

	// OutputWidth and OutputHeight are the dimensions of the composited
	// output: both screens stacked vertically.
	OutputWidth  = ScreenWidth
	OutputHeight = Screens * ScreenHeight

	// Width3D and Height3D are the dimensions of the 3D engine's
	// framebuffer.
	Width3D  = 256
	Height3D = 192
)

// ErrInvalidFrame is returned when a frame's buffers do not have the
// expected sizes.
var ErrInvalidFrame = errors.New("dualscreen: invalid frame")

// LayerPair holds the two highest-priority layer pixels at one position.
type LayerPair struct {
	Top    pixel.LayerWord
	Bottom pixel.LayerWord
}

// Frame is one emulated frame as handed to the compositor. The compositor
// only reads it; a frame must not be written while it is being composed.
type Frame struct {
	// Layers holds OutputWidth×OutputHeight pairs, row-major, screen 0
	// first.
	Layers []LayerPair

	// Output3D holds the 3D engine's Width3D×Height3D framebuffer.
	Output3D []pixel.Word3D

	// Scanlines holds the blend configuration of every scanline of both
	// screens.
	Scanlines [Screens][ScreenHeight]pixel.ScanlineConfig

	// Engine3DEnabled reports whether the 3D engine produced output this
	// frame. When false every 3D sample reads as a transparent word.
	Engine3DEnabled bool

	// Index is a frame counter stamped by the producer.
	Index uint64
}

// NewFrame allocates a blank frame.
func NewFrame() *Frame {
	return &Frame{
		Layers:   make([]LayerPair, OutputWidth*OutputHeight),
		Output3D: make([]pixel.Word3D, Width3D*Height3D),
	}
}

// Reset clears the frame to its blank state, keeping the buffers.
func (f *Frame) Reset() {
	clear(f.Layers)
	clear(f.Output3D)
	f.Scanlines = [Screens][ScreenHeight]pixel.ScanlineConfig{}
	f.Engine3DEnabled = false
	f.Index = 0
}

// Validate checks buffer sizes.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	if len(f.Layers) != OutputWidth*OutputHeight {
		return fmt.Errorf("%w: %d layer pairs, want %d", ErrInvalidFrame, len(f.Layers), OutputWidth*OutputHeight)
	}
	if len(f.Output3D) != Width3D*Height3D {
		return fmt.Errorf("%w: %d 3D words, want %d", ErrInvalidFrame, len(f.Output3D), Width3D*Height3D)
	}
	return nil
}

// LayerAt returns the layer pair at output position (x, y), y in
// [0, OutputHeight).
func (f *Frame) LayerAt(x, y int) LayerPair {
	return f.Layers[y*OutputWidth+x]
}

// SetLayer stores the layer pair at output position (x, y).
func (f *Frame) SetLayer(x, y int, p LayerPair) {
	f.Layers[y*OutputWidth+x] = p
}

// Sample3D returns the 3D word for output position (x, y). Both screens
// sample the same 3D framebuffer, so row y maps to y mod Height3D.
func (f *Frame) Sample3D(x, y int) pixel.Word3D {
	if !f.Engine3DEnabled {
		return 0
	}
	return f.Output3D[(y%Height3D)*Width3D+x]
}

// ScanlineAt returns the configuration for output row y.
func (f *Frame) ScanlineAt(y int) pixel.ScanlineConfig {
	return f.Scanlines[y/ScreenHeight][y%ScreenHeight]
}

// SetScanline sets the configuration of one scanline of one screen.
func (f *Frame) SetScanline(screen, line int, cfg pixel.ScanlineConfig) {
	f.Scanlines[screen][line] = cfg
}

// CopyFrom makes f a deep copy of src, reusing f's buffers.
func (f *Frame) CopyFrom(src *Frame) {
	f.Layers = append(f.Layers[:0], src.Layers...)
	f.Output3D = append(f.Output3D[:0], src.Output3D...)
	f.Scanlines = src.Scanlines
	f.Engine3DEnabled = src.Engine3DEnabled
	f.Index = src.Index
}

// ComposeAt evaluates the per-pixel function for output position (x, y).
// Every scheduler goes through it.
func (f *Frame) ComposeAt(x, y int) pixel.Color {
	p := f.Layers[y*OutputWidth+x]
	return pixel.Compose(p.Top, p.Bottom, f.Sample3D(x, y), f.ScanlineAt(y))
}
