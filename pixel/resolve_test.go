package pixel

import (
	"math"
	"testing"
)

func approxColor(a, b Color) bool {
	const eps = 1e-6
	return math.Abs(float64(a.R-b.R)) < eps &&
		math.Abs(float64(a.G-b.G)) < eps &&
		math.Abs(float64(a.B-b.B)) < eps &&
		math.Abs(float64(a.A-b.A)) < eps
}

func TestBlend_Linearity(t *testing.T) {
	a := Color{R: 0.8, G: 0.2, B: 0.4, A: 1}
	b := Color{R: 0.2, G: 0.6, B: 0.0, A: 1}

	if got := Blend(a, b, 1, 0); got != a {
		t.Errorf("Blend(a, b, 1, 0) = %+v, want %+v", got, a)
	}
	if got := Blend(a, b, 0, 1); got != b {
		t.Errorf("Blend(a, b, 0, 1) = %+v, want %+v", got, b)
	}
	want := Color{R: 0.5, G: 0.4, B: 0.2, A: 1}
	if got := Blend(a, b, 0.5, 0.5); !approxColor(got, want) {
		t.Errorf("Blend(a, b, 0.5, 0.5) = %+v, want %+v", got, want)
	}
}

func TestBlend_ClampsOversaturation(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 1}
	got := Blend(c, c, 31.0/16.0, 31.0/16.0)
	want := Color{R: 1, G: 1, B: 0, A: 1}
	if got != want {
		t.Errorf("oversaturated blend = %+v, want %+v", got, want)
	}
}

func TestBlend_ForcesAlpha(t *testing.T) {
	got := Blend(Color{}, Color{}, 0, 0)
	if got.A != 1 {
		t.Errorf("Blend alpha = %v, want 1", got.A)
	}
}

func TestBrighten(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 1}
	if got, want := BrightenUp(c, 0.5), (Color{R: 1, G: 0.75, B: 0.5, A: 1}); got != want {
		t.Errorf("BrightenUp = %+v, want %+v", got, want)
	}
	if got, want := BrightenDown(c, 0.5), (Color{R: 0.5, G: 0.25, B: 0, A: 1}); got != want {
		t.Errorf("BrightenDown = %+v, want %+v", got, want)
	}
	if got, want := BrightenUp(c, 2), (Color{R: 1, G: 1, B: 1, A: 1}); got != want {
		t.Errorf("BrightenUp overdriven = %+v, want %+v", got, want)
	}
	if got, want := BrightenDown(c, 2), (Color{A: 1}); got != want {
		t.Errorf("BrightenDown overdriven = %+v, want %+v", got, want)
	}
}

func TestResolve_Rules(t *testing.T) {
	topC := red.Color()
	botC := green.Color()
	half := Color{R: 0.5, G: 0.5, A: 1}

	tests := []struct {
		name     string
		top, bot LayerPixel
		p        Pixel3D
		cfg      ScanlineConfig
		want     Color
	}{
		{
			name: "no rule, effect none",
			top:  LayerPixel{TargetMask: 1},
			bot:  LayerPixel{TargetMask: 2},
			cfg:  ScanlineConfig{Target1: 1, Target2: 2},
			want: topC,
		},
		{
			name: "3d alpha blend",
			top:  LayerPixel{Is3D: true},
			bot:  LayerPixel{TargetMask: 2},
			p:    Pixel3D{Alpha: 31},
			cfg:  ScanlineConfig{Target2: 2},
			want: topC,
		},
		{
			name: "3d top without target 2 bottom",
			top:  LayerPixel{Is3D: true},
			bot:  LayerPixel{TargetMask: 4},
			p:    Pixel3D{Alpha: 0},
			cfg:  ScanlineConfig{Target2: 2},
			want: topC,
		},
		{
			name: "explicit blend per-pixel coefficient",
			top:  LayerPixel{AlphaBlend: true, PerPixelCoeff: true, Coeff: 8},
			bot:  LayerPixel{TargetMask: 2},
			cfg:  ScanlineConfig{Target2: 2, CoeffA: 16, CoeffB: 0},
			want: half,
		},
		{
			name: "explicit blend global coefficients",
			top:  LayerPixel{AlphaBlend: true, Coeff: 16},
			bot:  LayerPixel{TargetMask: 2},
			cfg:  ScanlineConfig{Target2: 2, CoeffA: 8, CoeffB: 8},
			want: half,
		},
		{
			name: "explicit blend needs target 2 bottom",
			top:  LayerPixel{AlphaBlend: true},
			bot:  LayerPixel{TargetMask: 1},
			cfg:  ScanlineConfig{Target2: 2, CoeffA: 8, CoeffB: 8},
			want: topC,
		},
		{
			name: "effect alpha blend",
			top:  LayerPixel{TargetMask: 1},
			bot:  LayerPixel{TargetMask: 2},
			cfg:  ScanlineConfig{Effect: EffectAlphaBlend, Target1: 1, Target2: 2, CoeffA: 8, CoeffB: 8},
			want: half,
		},
		{
			name: "effect alpha blend top not target 1",
			top:  LayerPixel{TargetMask: 4},
			bot:  LayerPixel{TargetMask: 2},
			cfg:  ScanlineConfig{Effect: EffectAlphaBlend, Target1: 1, Target2: 2, CoeffA: 8, CoeffB: 8},
			want: topC,
		},
		{
			name: "effect alpha blend bottom not target 2",
			top:  LayerPixel{TargetMask: 1},
			bot:  LayerPixel{TargetMask: 4},
			cfg:  ScanlineConfig{Effect: EffectAlphaBlend, Target1: 1, Target2: 2, CoeffA: 8, CoeffB: 8},
			want: topC,
		},
		{
			name: "effect brightness up",
			cfg:  ScanlineConfig{Effect: EffectBrightnessUp, MasterFactor: 8},
			want: Color{R: 1, G: 0.5, B: 0.5, A: 1},
		},
		{
			name: "effect brightness down",
			cfg:  ScanlineConfig{Effect: EffectBrightnessDown, MasterFactor: 8},
			want: Color{R: 0.5, A: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := tt.top
			top.Color = red
			bot := tt.bot
			bot.Color = green
			got := Resolve(top, bot, topC, botC, tt.p, tt.cfg)
			if !approxColor(got, tt.want) {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_3DAlphaBeatsColorEffect(t *testing.T) {
	top := LayerPixel{Color: red, Is3D: true, TargetMask: 1}
	bot := LayerPixel{Color: green, TargetMask: 2}
	p := Pixel3D{Color: blue, Alpha: 31}
	cfg := ScanlineConfig{
		Effect:  EffectAlphaBlend,
		Target1: 1,
		Target2: 2,
		CoeffA:  4,
		CoeffB:  12,
	}

	topC, botC := Substitute3D(top, bot, p)
	got := Resolve(top, bot, topC, botC, p, cfg)

	want3D := Blend(topC, botC, 1, 0)
	wantEffect := Blend(topC, botC, 0.25, 0.75)
	if got != want3D {
		t.Errorf("Resolve = %+v, want 3D alpha blend %+v", got, want3D)
	}
	if got == wantEffect {
		t.Error("color effect blend was applied instead of 3D alpha blend")
	}
}

func TestResolve_ExplicitBlendBeatsBrightnessEffect(t *testing.T) {
	top := LayerPixel{Color: red, AlphaBlend: true, TargetMask: 1}
	bot := LayerPixel{Color: green, TargetMask: 2}
	cfg := ScanlineConfig{Effect: EffectBrightnessUp, MasterFactor: 16, Target1: 1, Target2: 2, CoeffA: 16}

	got := Resolve(top, bot, red.Color(), green.Color(), Pixel3D{}, cfg)
	if got != red.Color() {
		t.Errorf("Resolve = %+v, want explicit blend result %+v", got, red.Color())
	}
}
