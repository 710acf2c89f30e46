package pixel

import (
	"math/rand/v2"
	"testing"
)

func TestCompose_BrightnessDownScenario(t *testing.T) {
	top := EncodeLayer(LayerPixel{Color: RGB6{R: 63}})
	cfg := ScanlineConfig{
		Effect:       EffectBrightnessDown,
		MasterFactor: 8,
		MasterMode:   BrightnessNone,
	}

	got := Compose(top, 0, 0, cfg)
	want := Color{R: 0.5, G: 0, B: 0, A: 1}
	if got != want {
		t.Errorf("Compose = %+v, want %+v", got, want)
	}
}

func TestCompose_EffectThenMasterBrightness(t *testing.T) {
	top := EncodeLayer(LayerPixel{Color: RGB6{R: 63, G: 20}, TargetMask: 1})
	bot := EncodeLayer(LayerPixel{Color: RGB6{G: 63, B: 40}, TargetMask: 2})
	cfg := ScanlineConfig{
		Effect:       EffectAlphaBlend,
		Target1:      1,
		Target2:      2,
		CoeffA:       10,
		CoeffB:       6,
		MasterMode:   BrightnessUp,
		MasterFactor: 4,
	}

	blended := Blend(RGB6{R: 63, G: 20}.Color(), RGB6{G: 63, B: 40}.Color(), 10.0/16.0, 6.0/16.0)
	want := BrightenUp(blended, 4.0/16.0)

	got := Compose(top, bot, 0, cfg)
	if got != want {
		t.Errorf("Compose = %+v, want %+v", got, want)
	}
	if got == blended {
		t.Error("master brightness was not applied after the effect")
	}
}

func TestCompose_TransparentTop3DShowsBottom(t *testing.T) {
	top := EncodeLayer(LayerPixel{Color: RGB6{R: 63}, Is3D: true})
	bot := EncodeLayer(LayerPixel{Color: RGB6{B: 63}})
	w3d := Encode3D(Pixel3D{Color: RGB6{G: 63}, Alpha: 0})

	if got, want := Compose(top, bot, w3d, ScanlineConfig{}), (RGB6{B: 63}).Color(); got != want {
		t.Errorf("Compose = %+v, want %+v", got, want)
	}
}

func TestCompose_OutputInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20000; i++ {
		cfg := UnpackScanlineConfig([4]uint32{rng.Uint32() & 0x03FF, rng.Uint32() & 0x3F_3F03, rng.Uint32() & 0x1F_001F, 0})
		got := Compose(LayerWord(rng.Uint32()), LayerWord(rng.Uint32()), Word3D(rng.Uint32()), cfg)
		for _, v := range []float32{got.R, got.G, got.B} {
			if v < 0 || v > 1 {
				t.Fatalf("Compose channel %v out of range (cfg %+v)", v, cfg)
			}
		}
		if got.A != 1 {
			t.Fatalf("Compose alpha = %v, want 1", got.A)
		}
	}
}

func BenchmarkCompose(b *testing.B) {
	top := EncodeLayer(LayerPixel{Color: RGB6{R: 40, G: 12, B: 3}, AlphaBlend: true, TargetMask: 1})
	bot := EncodeLayer(LayerPixel{Color: RGB6{R: 3, G: 50, B: 33}, TargetMask: 2})
	cfg := ScanlineConfig{Effect: EffectAlphaBlend, Target1: 1, Target2: 2, CoeffA: 9, CoeffB: 7, MasterMode: BrightnessDown, MasterFactor: 3}
	var sink Color
	for b.Loop() {
		sink = Compose(top, bot, 0, cfg)
	}
	_ = sink
}
