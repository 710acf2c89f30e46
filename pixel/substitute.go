// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

// Substitute3D returns the top and bottom slot colors after replacing
// 3D-sourced slots with the 3D layer's color.
//
// A fully transparent 3D pixel falls through differently per slot: the top
// slot takes the bottom slot's own decoded color, the bottom slot becomes
// opaque black. Hardware does the same.
func Substitute3D(top, bot LayerPixel, p Pixel3D) (topColor, botColor Color) {
	topColor = top.Color.Color()
	botColor = bot.Color.Color()
	color3D := p.Color.Color()

	if top.Is3D {
		if p.Alpha == 0 {
			topColor = botColor
		} else {
			topColor = color3D
		}
	}
	if bot.Is3D {
		if p.Alpha == 0 {
			botColor = Black
		} else {
			botColor = color3D
		}
	}
	return topColor, botColor
}
