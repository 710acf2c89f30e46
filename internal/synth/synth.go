// Package synth fills frames with generated content for tests, benchmarks
// and the dscompose command.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/dualscreen"
	"github.com/gogpu/dualscreen/pixel"
)

// Layer target bits used by Demo.
const (
	targetBG0 = 1 << iota
	targetBG1
	targetBG2
	targetBG3
	targetOBJ
	targetBackdrop
)

// Random fills f with uniformly random words and scanline configurations,
// including out-of-range coefficients and factors. The same seed always
// produces the same frame.
func Random(f *dualscreen.Frame, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	for i := range f.Layers {
		f.Layers[i] = dualscreen.LayerPair{
			Top:    pixel.LayerWord(rng.Uint32()),
			Bottom: pixel.LayerWord(rng.Uint32()),
		}
	}
	for i := range f.Output3D {
		f.Output3D[i] = pixel.Word3D(rng.Uint32())
	}
	for s := range dualscreen.Screens {
		for l := range dualscreen.ScreenHeight {
			f.SetScanline(s, l, pixel.ScanlineConfig{
				MasterFactor: uint8(rng.IntN(32)),
				MasterMode:   pixel.BrightnessMode(rng.IntN(3)),
				Effect:       pixel.Effect(rng.IntN(4)),
				Target1:      uint8(rng.IntN(64)),
				Target2:      uint8(rng.IntN(64)),
				CoeffA:       uint8(rng.IntN(32)),
				CoeffB:       uint8(rng.IntN(32)),
			})
		}
	}
	f.Engine3DEnabled = rng.IntN(4) != 0
}

// Demo fills f with frame t of an animated scene that exercises every
// stage: a 3D ball blended over a gradient on the top screen, a
// semi-transparent window with per-pixel coefficients, brightness effect
// bands on the bottom screen, and a master brightness fade-in.
func Demo(f *dualscreen.Frame, t int) {
	f.Engine3DEnabled = true
	demo3D(f, t)

	for y := range dualscreen.OutputHeight {
		screen := y / dualscreen.ScreenHeight
		line := y % dualscreen.ScreenHeight
		for x := range dualscreen.OutputWidth {
			f.SetLayer(x, y, demoPixel(x, line, screen, t))
		}
		f.SetScanline(screen, line, demoScanline(line, screen, t))
	}
}

func demoPixel(x, line, screen, t int) dualscreen.LayerPair {
	backdrop := pixel.LayerPixel{
		Color: pixel.RGB6{
			R: uint8((x + t) % 64),
			G: uint8(line * 63 / (dualscreen.ScreenHeight - 1)),
			B: uint8(32 + screen*31),
		},
		TargetMask: targetBackdrop,
	}

	var top pixel.LayerPixel
	switch {
	case screen == 0 && inBall(x, line, t):
		top = pixel.LayerPixel{Is3D: true, TargetMask: targetBG0}
	case inWindow(x, line):
		coeff := uint8(4 + (x/16+t/8)%13)
		top = pixel.LayerPixel{
			Color:         pixel.RGB6{R: 63, G: 48, B: 8},
			AlphaBlend:    true,
			PerPixelCoeff: x >= 128,
			Coeff:         coeff,
			TargetMask:    targetOBJ,
		}
	case (x/32+line/32)%2 == 0:
		top = pixel.LayerPixel{Color: pixel.RGB6{R: 10, G: 40, B: 20}, TargetMask: targetBG1}
	default:
		return dualscreen.LayerPair{Top: pixel.EncodeLayer(backdrop)}
	}
	return dualscreen.LayerPair{
		Top:    pixel.EncodeLayer(top),
		Bottom: pixel.EncodeLayer(backdrop),
	}
}

func demoScanline(line, screen, t int) pixel.ScanlineConfig {
	fade := uint8(max(16-t/2, 0))

	if screen == 0 {
		return pixel.ScanlineConfig{
			MasterMode:   pixel.BrightnessDown,
			MasterFactor: fade,
			Effect:       pixel.EffectAlphaBlend,
			Target1:      targetBG1,
			Target2:      targetBackdrop,
			CoeffA:       10,
			CoeffB:       6,
		}
	}

	cfg := pixel.ScanlineConfig{
		MasterMode:   pixel.BrightnessUp,
		MasterFactor: fade,
		Target2:      targetBackdrop,
		CoeffA:       8,
		CoeffB:       8,
	}
	switch (line + t) / 24 % 3 {
	case 1:
		cfg.Effect = pixel.EffectBrightnessDown
		cfg.MasterMode = pixel.BrightnessNone
		cfg.MasterFactor = 8
	case 2:
		cfg.Effect = pixel.EffectBrightnessUp
		cfg.MasterMode = pixel.BrightnessNone
		cfg.MasterFactor = 6
	}
	return cfg
}

func ballCenter(t int) (cx, cy float64) {
	phase := float64(t) * 0.05
	return 128 + 64*math.Cos(phase), 96 + 40*math.Sin(phase*1.3)
}

const ballRadius = 40

func inBall(x, y, t int) bool {
	cx, cy := ballCenter(t)
	dx, dy := float64(x)-cx, float64(y)-cy
	return dx*dx+dy*dy <= ballRadius*ballRadius
}

func inWindow(x, y int) bool {
	return x >= 48 && x < 208 && y >= 120 && y < 176
}

// demo3D draws a shaded ball whose alpha fades toward the rim, leaving
// the rim fully transparent.
func demo3D(f *dualscreen.Frame, t int) {
	cx, cy := ballCenter(t)
	for y := range dualscreen.Height3D {
		for x := range dualscreen.Width3D {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Sqrt(dx*dx+dy*dy) / ballRadius
			if d > 1 {
				f.Output3D[y*dualscreen.Width3D+x] = 0
				continue
			}
			shade := 1 - d*d
			f.Output3D[y*dualscreen.Width3D+x] = pixel.Encode3D(pixel.Pixel3D{
				Color: pixel.RGB6{
					R: uint8(20 + 43*shade),
					G: uint8(10 + 30*shade),
					B: uint8(63 * shade),
				},
				Alpha: uint8(31 * (1 - d)),
			})
		}
	}
}
