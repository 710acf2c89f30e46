// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import "fmt"

// BrightnessMode is the master brightness mode of a scanline.
type BrightnessMode uint8

const (
	BrightnessNone BrightnessMode = iota
	BrightnessUp
	BrightnessDown
)

// String implements fmt.Stringer.
func (m BrightnessMode) String() string {
	switch m {
	case BrightnessNone:
		return "none"
	case BrightnessUp:
		return "up"
	case BrightnessDown:
		return "down"
	default:
		return fmt.Sprintf("BrightnessMode(%d)", uint8(m))
	}
}

// Effect is the color special effect selected for a scanline.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectAlphaBlend
	EffectBrightnessUp
	EffectBrightnessDown
)

// String implements fmt.Stringer.
func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectAlphaBlend:
		return "alpha-blend"
	case EffectBrightnessUp:
		return "brightness-up"
	case EffectBrightnessDown:
		return "brightness-down"
	default:
		return fmt.Sprintf("Effect(%d)", uint8(e))
	}
}

// ScanlineConfig holds the blending parameters of one scanline of one
// screen. The register emulation rebuilds it every frame.
//
// MasterFactor, CoeffA and CoeffB are scaled by 1/16 when applied. Values
// above 16 over-saturate before the final clamp. MasterFactor is used
// as given: FromRegisters bounds it, a hand-built config is not checked.
type ScanlineConfig struct {
	MasterFactor uint8
	MasterMode   BrightnessMode
	Effect       Effect
	Target1      uint8
	Target2      uint8
	CoeffA       uint8
	CoeffB       uint8
}

// Register field layouts.
const (
	regFactorMask   = 0x1F
	regModeShift    = 14
	regTarget1Mask  = 0x3F
	regEffectShift  = 6
	regTarget2Shift = 8
	regCoeffBShift  = 8
	regMaxCoeff     = 16
)

// FromRegisters decodes the master brightness, blend control and blend
// coefficient registers of a scanline.
//
// As on hardware, the master factor and both blend coefficients saturate
// at 16 and master mode 3 behaves like mode 0.
func FromRegisters(masterBright, blendControl, blendAlpha uint16) ScanlineConfig {
	mode := BrightnessMode(masterBright >> regModeShift & 3)
	if mode > BrightnessDown {
		mode = BrightnessNone
	}
	factor := uint8(masterBright & regFactorMask)                 //nolint:gosec // masked to 5 bits
	coeffA := uint8(blendAlpha & regFactorMask)                   //nolint:gosec // masked to 5 bits
	coeffB := uint8(blendAlpha >> regCoeffBShift & regFactorMask) //nolint:gosec // masked to 5 bits
	return ScanlineConfig{
		MasterFactor: min(factor, regMaxCoeff),
		MasterMode:   mode,
		Effect:       Effect(blendControl >> regEffectShift & 3),
		Target1:      uint8(blendControl & regTarget1Mask),
		Target2:      uint8(blendControl >> regTarget2Shift & regTarget1Mask),
		CoeffA:       min(coeffA, regMaxCoeff),
		CoeffB:       min(coeffB, regMaxCoeff),
	}
}

// MasterBrightnessOnly returns the configuration for a scanline on which
// color effects do not apply (disabled engine, non-layer display mode).
func MasterBrightnessOnly(mode BrightnessMode, factor uint8) ScanlineConfig {
	return ScanlineConfig{
		MasterFactor: min(factor, regMaxCoeff),
		MasterMode:   mode,
	}
}

// Pack encodes the config as the 16-byte per-scanline record the compute
// shader reads (one vec4<u32>):
//
//	x: master factor | master mode << 8
//	y: effect | target1 << 8 | target2 << 16
//	z: coeff A | coeff B << 16
//	w: reserved
func (c ScanlineConfig) Pack() [4]uint32 {
	return [4]uint32{
		uint32(c.MasterFactor) | uint32(c.MasterMode)<<8,
		uint32(c.Effect) | uint32(c.Target1)<<8 | uint32(c.Target2)<<16,
		uint32(c.CoeffA) | uint32(c.CoeffB)<<16,
		0,
	}
}

// UnpackScanlineConfig decodes a record produced by Pack.
func UnpackScanlineConfig(r [4]uint32) ScanlineConfig {
	return ScanlineConfig{
		MasterFactor: uint8(r[0]), //nolint:gosec // byte field
		MasterMode:   BrightnessMode(r[0] >> 8),
		Effect:       Effect(r[1]),
		Target1:      uint8(r[1] >> 8),  //nolint:gosec // byte field
		Target2:      uint8(r[1] >> 16), //nolint:gosec // byte field
		CoeffA:       uint8(r[2]),       //nolint:gosec // byte field
		CoeffB:       uint8(r[2] >> 16), //nolint:gosec // byte field
	}
}
