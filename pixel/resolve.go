// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// Blend returns clamp(a*ca + b*cb) per channel with alpha 1.
//
// The explicit float32 conversions are rounding points, which keeps the
// compiler from fusing the products into the sum.
func Blend(a, b Color, ca, cb float32) Color {
	return Color{
		R: clamp01(float32(a.R*ca) + float32(b.R*cb)),
		G: clamp01(float32(a.G*ca) + float32(b.G*cb)),
		B: clamp01(float32(a.B*ca) + float32(b.B*cb)),
		A: 1,
	}
}

// BrightenUp moves each channel toward white by factor.
func BrightenUp(c Color, factor float32) Color {
	return Color{
		R: clamp01(c.R + float32((1-c.R)*factor)),
		G: clamp01(c.G + float32((1-c.G)*factor)),
		B: clamp01(c.B + float32((1-c.B)*factor)),
		A: 1,
	}
}

// BrightenDown moves each channel toward black by factor.
func BrightenDown(c Color, factor float32) Color {
	return Color{
		R: clamp01(c.R - float32(c.R*factor)),
		G: clamp01(c.G - float32(c.G*factor)),
		B: clamp01(c.B - float32(c.B*factor)),
		A: 1,
	}
}

// Resolve picks the blending behavior of one pixel and returns the
// composited color. The first matching rule wins:
//
//  1. 3D top pixel over a target-2 bottom: blend by 3D alpha.
//  2. Alpha-blend top pixel over a target-2 bottom: blend by the per-pixel
//     coefficient or the scanline's global coefficients.
//  3. The scanline color effect.
//
// topColor and botColor are the colors after 3D substitution.
func Resolve(top, bot LayerPixel, topColor, botColor Color, p Pixel3D, cfg ScanlineConfig) Color {
	botMatches := bot.TargetMask&cfg.Target2 != 0

	if top.Is3D && botMatches {
		a := p.AlphaFactor()
		return Blend(topColor, botColor, a, 1-a)
	}

	if top.AlphaBlend && botMatches {
		if top.PerPixelCoeff {
			a := float32(top.Coeff) * coeffScale
			return Blend(topColor, botColor, a, 1-a)
		}
		return Blend(topColor, botColor, float32(cfg.CoeffA)*coeffScale, float32(cfg.CoeffB)*coeffScale)
	}

	switch cfg.Effect {
	case EffectAlphaBlend:
		if top.TargetMask&cfg.Target1 != 0 && botMatches {
			return Blend(topColor, botColor, float32(cfg.CoeffA)*coeffScale, float32(cfg.CoeffB)*coeffScale)
		}
	case EffectBrightnessUp:
		return BrightenUp(topColor, float32(cfg.MasterFactor)*coeffScale)
	case EffectBrightnessDown:
		return BrightenDown(topColor, float32(cfg.MasterFactor)*coeffScale)
	}
	return topColor.Opaque()
}
