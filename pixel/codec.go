// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// Bit layout of a LayerWord. The 3D word shares the color and alpha fields.
//
//	bits  0-5   red
//	bits  6-11  green
//	bits 12-17  blue
//	bits 18-22  per-pixel blend coefficient (3D word: alpha)
//	bit  23     sourced from the 3D layer
//	bit  24     alpha blend enabled
//	bit  25     uses per-pixel coefficient
//	bits 26-31  target mask
const (
	redShift   = 0
	greenShift = 6
	blueShift  = 12
	coeffShift = 18
	is3DBit    = 23
	blendBit   = 24
	perPixBit  = 25
	maskShift  = 26

	channelMask = 0x3F
	coeffMask   = 0x1F
	targetMask  = 0x3F
	rgbMask     = 0x3_FFFF
)

// Channel scales. Hardware channels are 6 bits wide, so full scale is 63,
// not 255. Scaling always multiplies by these constants.
const (
	channelScale float32 = 1.0 / 63.0
	coeffScale   float32 = 1.0 / 16.0
	alphaScale   float32 = 1.0 / 31.0
)

// LayerWord is the packed per-pixel word the 2D rasterizer emits for the
// top or bottom compositing slot.
type LayerWord uint32

// Word3D is the packed per-pixel word of the 3D rasterizer's framebuffer.
type Word3D uint32

// RGB6 is a color with three 6-bit channels.
type RGB6 struct {
	R, G, B uint8
}

// Color converts the 6-bit channels to an opaque normalized color.
func (c RGB6) Color() Color {
	return Color{
		R: float32(c.R) * channelScale,
		G: float32(c.G) * channelScale,
		B: float32(c.B) * channelScale,
		A: 1,
	}
}

func (c RGB6) pack() uint32 {
	return uint32(c.R&channelMask)<<redShift |
		uint32(c.G&channelMask)<<greenShift |
		uint32(c.B&channelMask)<<blueShift
}

func unpackRGB6(w uint32) RGB6 {
	return RGB6{
		R: uint8(w >> redShift & channelMask),   //nolint:gosec // masked to 6 bits
		G: uint8(w >> greenShift & channelMask), //nolint:gosec // masked to 6 bits
		B: uint8(w >> blueShift & channelMask),  //nolint:gosec // masked to 6 bits
	}
}

// LayerPixel is a decoded LayerWord.
type LayerPixel struct {
	Color RGB6

	// Is3D marks a pixel whose color comes from the 3D layer.
	Is3D bool

	// AlphaBlend forces alpha blending with the bottom slot (semi-transparent
	// objects). Meaningful for the top slot only.
	AlphaBlend bool

	// PerPixelCoeff selects Coeff over the scanline's global coefficients.
	// Meaningful for the top slot only.
	PerPixelCoeff bool

	// Coeff is the per-pixel blend coefficient, scaled by 1/16.
	Coeff uint8

	// TargetMask identifies the source layer for target matching.
	TargetMask uint8
}

// DecodeLayer decodes a packed layer word. Every bit pattern is valid.
func DecodeLayer(w LayerWord) LayerPixel {
	v := uint32(w)
	return LayerPixel{
		Color:         unpackRGB6(v),
		Is3D:          v&(1<<is3DBit) != 0,
		AlphaBlend:    v&(1<<blendBit) != 0,
		PerPixelCoeff: v&(1<<perPixBit) != 0,
		Coeff:         uint8(v >> coeffShift & coeffMask), //nolint:gosec // masked to 5 bits
		TargetMask:    uint8(v >> maskShift & targetMask), //nolint:gosec // masked to 6 bits
	}
}

// EncodeLayer packs a LayerPixel. Fields wider than their bit range are
// truncated.
func EncodeLayer(p LayerPixel) LayerWord {
	v := p.Color.pack() |
		uint32(p.Coeff&coeffMask)<<coeffShift |
		uint32(p.TargetMask&targetMask)<<maskShift
	if p.Is3D {
		v |= 1 << is3DBit
	}
	if p.AlphaBlend {
		v |= 1 << blendBit
	}
	if p.PerPixelCoeff {
		v |= 1 << perPixBit
	}
	return LayerWord(v)
}

// Pixel3D is a decoded Word3D.
type Pixel3D struct {
	Color RGB6
	Alpha uint8 // 0-31
}

// AlphaFactor returns the alpha scaled to [0, 1].
func (p Pixel3D) AlphaFactor() float32 {
	return float32(p.Alpha) * alphaScale
}

// Decode3D decodes a packed 3D word.
func Decode3D(w Word3D) Pixel3D {
	v := uint32(w)
	return Pixel3D{
		Color: unpackRGB6(v),
		Alpha: uint8(v >> coeffShift & coeffMask), //nolint:gosec // masked to 5 bits
	}
}

// Encode3D packs a Pixel3D.
func Encode3D(p Pixel3D) Word3D {
	return Word3D(p.Color.pack() | uint32(p.Alpha&coeffMask)<<coeffShift)
}
