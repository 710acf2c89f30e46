// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// Color is a composited color with components in [0, 1].
//
// float32 is the precision the accelerator computes in, so the CPU path
// uses it too.
type Color struct {
	R, G, B, A float32
}

// Black is opaque black.
var Black = Color{A: 1}

// Opaque returns the color with alpha forced to 1.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// Clamp clamps the color channels to [0, 1]. Alpha is set to 1.
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: 1}
}

// clamp01 matches WGSL clamp(x, 0.0, 1.0) for every non-NaN input.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
