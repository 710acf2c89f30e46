package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const labelSize = 12

// drawLabel writes text in the top-left corner of img over a dark strip.
func drawLabel(img draw.Image, text string) error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    labelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	m := face.Metrics()
	width := d.MeasureString(text).Ceil() + 8
	height := (m.Ascent + m.Descent).Ceil() + 4
	strip := image.Rect(0, 0, width, height).Intersect(img.Bounds())
	draw.Draw(img, strip, image.NewUniform(color.NRGBA{A: 160}), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{X: fixed.I(4), Y: m.Ascent + fixed.I(2)}
	d.DrawString(text)
	return nil
}
