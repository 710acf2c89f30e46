//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/dualscreen"
)

func TestRegistersAccelerator(t *testing.T) {
	a := dualscreen.RegisteredAccelerator()
	if a == nil {
		t.Fatal("no accelerator registered")
	}
	if got := a.Name(); got != "wgpu-compose" {
		t.Errorf("registered %q, want wgpu-compose", got)
	}
}

func TestCompositorUsesRegisteredAccelerator(t *testing.T) {
	c := dualscreen.NewCompositor(dualscreen.WithBackend(dualscreen.BackendAccelerator))
	defer c.Close()

	f := dualscreen.NewFrame()
	f.SetLayer(0, 0, dualscreen.LayerPair{Top: 0x3F}) // full red
	out := dualscreen.NewOutput()
	if err := c.ComposeAccelerated(f, out); err != nil {
		t.Fatalf("ComposeAccelerated: %v", err)
	}
	if got := out.At(0, 0); got.R != 1 || got.G != 0 || got.B != 0 || got.A != 1 {
		t.Errorf("At(0, 0) = %+v, want opaque red", got)
	}
}
