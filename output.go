package dualscreen

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/dualscreen/pixel"
)

// Output is the composited color buffer of both screens: float32 RGBA,
// four values per pixel, row-major, screen 0 on top.
type Output struct {
	Pix           []float32
	Width, Height int

	// Index is the index of the frame last composed into the buffer by a
	// Compositor.
	Index uint64
}

// NewOutput allocates an output buffer for both screens.
func NewOutput() *Output {
	return &Output{
		Pix:    make([]float32, OutputWidth*OutputHeight*4),
		Width:  OutputWidth,
		Height: OutputHeight,
	}
}

// Validate checks the buffer dimensions.
func (o *Output) Validate() error {
	if o == nil {
		return errors.New("dualscreen: nil output")
	}
	if o.Width != OutputWidth || o.Height != OutputHeight || len(o.Pix) != OutputWidth*OutputHeight*4 {
		return fmt.Errorf("dualscreen: output is %dx%d with %d values, want %dx%d",
			o.Width, o.Height, len(o.Pix), OutputWidth, OutputHeight)
	}
	return nil
}

// At returns the color at (x, y).
func (o *Output) At(x, y int) pixel.Color {
	i := (y*o.Width + x) * 4
	s := o.Pix[i : i+4 : i+4]
	return pixel.Color{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set stores c at (x, y).
func (o *Output) Set(x, y int, c pixel.Color) {
	i := (y*o.Width + x) * 4
	s := o.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Equal reports whether both buffers hold bit-identical values.
func (o *Output) Equal(other *Output) bool {
	_, _, differ := o.FirstMismatch(other)
	return !differ
}

// FirstMismatch returns the first pixel, in row-major order, whose values
// are not bit-identical in both buffers. ok is false when there is none.
// Buffers of different sizes mismatch at (0, 0).
func (o *Output) FirstMismatch(other *Output) (x, y int, ok bool) {
	if o.Width != other.Width || o.Height != other.Height || len(o.Pix) != len(other.Pix) {
		return 0, 0, true
	}
	for i := range o.Pix {
		if math.Float32bits(o.Pix[i]) != math.Float32bits(other.Pix[i]) {
			p := i / 4
			return p % o.Width, p / o.Width, true
		}
	}
	return 0, 0, false
}

// to8 converts a channel in [0, 1] to 8 bits, rounding to nearest.
func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// ToNRGBA converts the buffer to an 8-bit image. This is the only place
// precision is dropped.
func (o *Output) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, o.Width, o.Height))
	for i, v := range o.Pix {
		img.Pix[i] = to8(v)
	}
	return img
}

// Screen returns one screen as an 8-bit image.
func (o *Output) Screen(i int) *image.NRGBA {
	sub := &Output{
		Pix:    o.Pix[i*ScreenHeight*o.Width*4 : (i+1)*ScreenHeight*o.Width*4],
		Width:  o.Width,
		Height: ScreenHeight,
	}
	return sub.ToNRGBA()
}

// Scaled returns the output upscaled by an integer factor with
// nearest-neighbour sampling, for presentation.
func (o *Output) Scaled(factor int) *image.NRGBA {
	src := o.ToNRGBA()
	if factor <= 1 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, o.Width*factor, o.Height*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
