// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// Compose runs the full pipeline for one output pixel: decode, 3D
// substitution, blend resolution and master brightness.
//
// Compose is pure. Every scheduler calls it, and shaders/compose.wgsl in
// internal/gpu mirrors it operation for operation.
func Compose(top, bot LayerWord, w3d Word3D, cfg ScanlineConfig) Color {
	t := DecodeLayer(top)
	b := DecodeLayer(bot)
	p := Decode3D(w3d)

	topColor, botColor := Substitute3D(t, b, p)
	c := Resolve(t, b, topColor, botColor, p, cfg)
	return ApplyMasterBrightness(c, cfg.MasterMode, cfg.MasterFactor)
}
