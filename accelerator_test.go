package dualscreen

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/gogpu/dualscreen/pixel"
)

// mockAccelerator is a scriptable Accelerator.
type mockAccelerator struct {
	name       string
	initErr    error
	composeErr error
	fill       pixel.Color

	mu       sync.Mutex
	closed   bool
	calls    int
	logger   *slog.Logger
	provider any
}

func (m *mockAccelerator) Name() string { return m.name }

func (m *mockAccelerator) Init() error { return m.initErr }

func (m *mockAccelerator) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockAccelerator) Compose(_ *Frame, out *Output) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.composeErr != nil {
		return m.composeErr
	}
	for y := range out.Height {
		for x := range out.Width {
			out.Set(x, y, m.fill)
		}
	}
	return nil
}

func (m *mockAccelerator) SetLogger(l *slog.Logger) {
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

func (m *mockAccelerator) SetDeviceProvider(p any) error {
	m.mu.Lock()
	m.provider = p
	m.mu.Unlock()
	return nil
}

func (m *mockAccelerator) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockAccelerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockAccelerator) currentLogger() *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}

// resetAccelerator clears the global accelerator between tests.
func resetAccelerator() {
	accelMu.Lock()
	accel = nil
	accelMu.Unlock()
}

func TestRegisterAcceleratorNil(t *testing.T) {
	resetAccelerator()

	if err := RegisterAccelerator(nil); err == nil {
		t.Fatal("expected error when registering nil accelerator")
	}
	if RegisteredAccelerator() != nil {
		t.Error("accelerator should remain nil after failed registration")
	}
}

func TestRegisterAcceleratorInitError(t *testing.T) {
	resetAccelerator()

	initErr := errors.New("adapter lost")
	err := RegisterAccelerator(&mockAccelerator{name: "failing", initErr: initErr})
	if !errors.Is(err, initErr) {
		t.Errorf("RegisterAccelerator() = %v, want %v", err, initErr)
	}
	if RegisteredAccelerator() != nil {
		t.Error("accelerator should remain nil after Init failure")
	}
}

func TestRegisterAcceleratorReplacesOld(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	first := &mockAccelerator{name: "first"}
	second := &mockAccelerator{name: "second"}
	if err := RegisterAccelerator(first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := RegisterAccelerator(second); err != nil {
		t.Fatalf("register second: %v", err)
	}

	if !first.isClosed() {
		t.Error("first accelerator should be closed after replacement")
	}
	if second.isClosed() {
		t.Error("second accelerator should not be closed")
	}
	if a := RegisteredAccelerator(); a == nil || a.Name() != "second" {
		t.Errorf("RegisteredAccelerator() = %v, want second", a)
	}
}

func TestRegisterAcceleratorSameTwice(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	m := &mockAccelerator{name: "same"}
	_ = RegisterAccelerator(m)
	_ = RegisterAccelerator(m)
	if m.isClosed() {
		t.Error("re-registering the same accelerator closed it")
	}
}

func TestSetAcceleratorDeviceProvider(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	if err := SetAcceleratorDeviceProvider("device"); err != nil {
		t.Errorf("no accelerator: SetAcceleratorDeviceProvider() = %v, want nil", err)
	}

	m := &mockAccelerator{name: "shared"}
	if err := RegisterAccelerator(m); err != nil {
		t.Fatal(err)
	}
	if err := SetAcceleratorDeviceProvider("device"); err != nil {
		t.Fatalf("SetAcceleratorDeviceProvider() = %v", err)
	}
	m.mu.Lock()
	got := m.provider
	m.mu.Unlock()
	if got != "device" {
		t.Errorf("provider = %v, want %q", got, "device")
	}
}
