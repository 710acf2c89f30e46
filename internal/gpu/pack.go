//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/dualscreen"
)

// GPU buffer sizes in bytes.
const (
	paramsSize   = 32 // Params: eight u32
	scanlineSize = 16 // vec4<u32>
	layerSize    = 8  // vec2<u32>
	word3DSize   = 4
	outPixelSize = 16 // vec4<f32>

	scanlinesBytes = dualscreen.Screens * dualscreen.ScreenHeight * scanlineSize
	layersBytes    = dualscreen.OutputWidth * dualscreen.OutputHeight * layerSize
	output3DBytes  = dualscreen.Width3D * dualscreen.Height3D * word3DSize
	outputBytes    = dualscreen.OutputWidth * dualscreen.OutputHeight * outPixelSize
)

// frameParams mirrors the shader's Params uniform.
type frameParams struct {
	Width        uint32
	Height       uint32
	ScreenHeight uint32
	Height3D     uint32
	Engine3D     uint32
}

func newFrameParams(f *dualscreen.Frame) frameParams {
	p := frameParams{
		Width:        dualscreen.OutputWidth,
		Height:       dualscreen.OutputHeight,
		ScreenHeight: dualscreen.ScreenHeight,
		Height3D:     dualscreen.Height3D,
	}
	if f.Engine3DEnabled {
		p.Engine3D = 1
	}
	return p
}

// appendParams appends the 32-byte uniform block. The last three words are
// padding.
func appendParams(dst []byte, p frameParams) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, p.Width)
	dst = binary.LittleEndian.AppendUint32(dst, p.Height)
	dst = binary.LittleEndian.AppendUint32(dst, p.ScreenHeight)
	dst = binary.LittleEndian.AppendUint32(dst, p.Height3D)
	dst = binary.LittleEndian.AppendUint32(dst, p.Engine3D)
	for range 3 {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
	}
	return dst
}

// appendScanlines appends one 16-byte record per scanline, screen 0 first.
func appendScanlines(dst []byte, f *dualscreen.Frame) []byte {
	for screen := range f.Scanlines {
		for _, cfg := range f.Scanlines[screen] {
			for _, v := range cfg.Pack() {
				dst = binary.LittleEndian.AppendUint32(dst, v)
			}
		}
	}
	return dst
}

// appendLayers appends the top and bottom words of every output pixel.
func appendLayers(dst []byte, f *dualscreen.Frame) []byte {
	for _, p := range f.Layers {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(p.Top))
		dst = binary.LittleEndian.AppendUint32(dst, uint32(p.Bottom))
	}
	return dst
}

func append3D(dst []byte, f *dualscreen.Frame) []byte {
	for _, w := range f.Output3D {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(w))
	}
	return dst
}

// unpackOutput copies the shader's vec4<f32> pixels into out. src holds
// exactly outputBytes bytes.
func unpackOutput(src []byte, out *dualscreen.Output) {
	for i := range out.Pix {
		out.Pix[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
