package dualscreen

import (
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/dualscreen/pixel"
)

func TestOutput_SetAt(t *testing.T) {
	o := NewOutput()
	c := pixel.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}
	o.Set(10, 200, c)
	if got := o.At(10, 200); got != c {
		t.Errorf("At(10, 200) = %+v, want %+v", got, c)
	}
	if o.At(11, 200) != (pixel.Color{}) {
		t.Error("Set touched a neighbouring pixel")
	}
}

func TestOutput_FirstMismatch(t *testing.T) {
	a, b := NewOutput(), NewOutput()
	if !a.Equal(b) {
		t.Fatal("two blank outputs differ")
	}

	b.Set(3, 77, pixel.Color{G: math.SmallestNonzeroFloat32})
	x, y, ok := a.FirstMismatch(b)
	if !ok || x != 3 || y != 77 {
		t.Errorf("FirstMismatch = (%d, %d, %v), want (3, 77, true)", x, y, ok)
	}
	if a.Equal(b) {
		t.Error("Equal ignored a one-ulp difference")
	}

	small := &Output{Width: 1, Height: 1, Pix: make([]float32, 4)}
	if a.Equal(small) {
		t.Error("outputs of different sizes compare equal")
	}
}

func TestOutput_Equal_NegativeZero(t *testing.T) {
	a, b := NewOutput(), NewOutput()
	b.Pix[0] = float32(math.Copysign(0, -1))
	if a.Equal(b) {
		t.Error("Equal treats -0 and +0 as identical; it must compare bits")
	}
}

func TestOutput_ToNRGBA(t *testing.T) {
	o := NewOutput()
	o.Set(0, 0, pixel.Color{R: 1, G: 0.5, B: 0, A: 1})
	o.Set(1, 0, pixel.Color{R: -1, G: 2, B: 0.2, A: 1})

	img := o.ToNRGBA()
	if b := img.Bounds(); b.Dx() != OutputWidth || b.Dy() != OutputHeight {
		t.Fatalf("bounds = %v, want %dx%d", b, OutputWidth, OutputHeight)
	}
	if got, want := img.NRGBAAt(0, 0), (color.NRGBA{R: 255, G: 128, B: 0, A: 255}); got != want {
		t.Errorf("pixel (0,0) = %v, want %v", got, want)
	}
	if got, want := img.NRGBAAt(1, 0), (color.NRGBA{R: 0, G: 255, B: 51, A: 255}); got != want {
		t.Errorf("pixel (1,0) = %v, want %v", got, want)
	}
}

func TestOutput_Screen(t *testing.T) {
	o := NewOutput()
	o.Set(4, ScreenHeight+2, pixel.Color{B: 1, A: 1})

	img := o.Screen(1)
	if b := img.Bounds(); b.Dx() != ScreenWidth || b.Dy() != ScreenHeight {
		t.Fatalf("Screen(1) bounds = %v", b)
	}
	if got := img.NRGBAAt(4, 2); got.B != 255 || got.A != 255 {
		t.Errorf("Screen(1) pixel (4,2) = %v, want opaque blue", got)
	}
	if got := o.Screen(0).NRGBAAt(4, 2); got.B != 0 {
		t.Errorf("Screen(0) pixel (4,2) = %v, want black", got)
	}
}

func TestOutput_Scaled(t *testing.T) {
	o := NewOutput()
	o.Set(1, 1, pixel.Color{R: 1, A: 1})

	img := o.Scaled(3)
	if b := img.Bounds(); b.Dx() != OutputWidth*3 || b.Dy() != OutputHeight*3 {
		t.Fatalf("Scaled(3) bounds = %v", b)
	}
	for y := 3; y < 6; y++ {
		for x := 3; x < 6; x++ {
			if got := img.NRGBAAt(x, y); got.R != 255 {
				t.Errorf("Scaled(3) pixel (%d,%d) = %v, want red", x, y, got)
			}
		}
	}
	if got := img.NRGBAAt(6, 3); got.R != 0 {
		t.Errorf("Scaled(3) pixel (6,3) = %v, want black", got)
	}
	if o.Scaled(1).Bounds().Dx() != OutputWidth {
		t.Error("Scaled(1) changed the size")
	}
}
