package dualscreen

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot compose this frame.
// The compositor recomposes it on the CPU scheduler.
var ErrFallbackToCPU = errors.New("dualscreen: falling back to CPU composition")

// Accelerator is the massively parallel backend of the compositor. It
// evaluates pixel.Compose once per output pixel, with no ordering between
// pixels, and must produce output bit-identical to the CPU scheduler.
//
// Implementations are registered through RegisterAccelerator, usually from
// a blank import:
//
//	import _ "github.com/gogpu/dualscreen/gpu"
type Accelerator interface {
	// Name returns the accelerator name (e.g. "dispatch", "wgpu").
	Name() string

	// Init acquires resources. Called once during registration.
	Init() error

	// Close releases resources.
	Close()

	// Compose writes the composited frame to out.
	// Returns ErrFallbackToCPU if the frame cannot be accelerated.
	Compose(f *Frame, out *Output) error
}

// DeviceProviderAware is implemented by accelerators that can run on a GPU
// device owned by the host application instead of opening their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers the accelerator used by BackendAccelerator
// and BackendAuto. A later registration replaces and closes the previous
// one. If Init fails the accelerator is not registered.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("dualscreen: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil && old != a {
		old.Close()
	}
	Logger().Info("dualscreen: accelerator registered", "name", a.Name())
	return nil
}

// RegisteredAccelerator returns the registered accelerator, or nil.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator. It is a no-op when none is registered or the accelerator
// cannot share devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
