package dualscreen

import (
	"fmt"
	"strings"
)

// Backend selects the scheduler that evaluates the per-pixel function.
type Backend int

const (
	// BackendAuto uses the registered accelerator when there is one and
	// the CPU scheduler otherwise.
	BackendAuto Backend = iota

	// BackendCPU partitions rows into bands on a fixed worker pool.
	BackendCPU

	// BackendAccelerator hands the frame to the accelerator, one
	// independent invocation per pixel.
	BackendAccelerator
)

// String returns the backend name as accepted by ParseBackend.
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendCPU:
		return "cpu"
	case BackendAccelerator:
		return "accel"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses a backend name. It is case-insensitive and also
// accepts "gpu" and "accelerator" for BackendAccelerator.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "cpu":
		return BackendCPU, nil
	case "accel", "accelerator", "gpu":
		return BackendAccelerator, nil
	default:
		return BackendAuto, fmt.Errorf("dualscreen: unknown backend %q", s)
	}
}
