// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// ApplyMasterBrightness applies the scanline's master brightness to a
// resolved color. It runs after Resolve whatever effect Resolve applied.
//
// factor is scaled by 1/16 and is not bounded here.
func ApplyMasterBrightness(c Color, mode BrightnessMode, factor uint8) Color {
	switch mode {
	case BrightnessUp:
		return BrightenUp(c, float32(factor)*coeffScale)
	case BrightnessDown:
		return BrightenDown(c, float32(factor)*coeffScale)
	default:
		return c
	}
}
