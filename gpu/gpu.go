//go:build !nogpu

// Package gpu registers the wgpu compute accelerator.
//
// The accelerator composes each frame in a compute shader. If GPU
// initialization fails (no Vulkan available), or the device does not
// reproduce the CPU output bit for bit, it composes on the CPU instead,
// so registration never makes the output differ.
//
// Usage:
//
//	import _ "github.com/gogpu/dualscreen/gpu" // enable GPU composition
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/dualscreen"
	gpuimpl "github.com/gogpu/dualscreen/internal/gpu"
)

func init() {
	accel := &gpuimpl.ComposeAccelerator{}
	if err := dualscreen.RegisterAccelerator(accel); err != nil {
		dualscreen.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU
// device from an external provider (e.g., the frontend's window), so the
// compositor does not open a second device.
//
// The provider must also expose HalDevice() and HalQueue() for direct HAL
// access.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return dualscreen.SetAcceleratorDeviceProvider(provider)
}
