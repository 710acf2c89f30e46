package dualscreen

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/dualscreen/internal/dispatch"
	"github.com/gogpu/dualscreen/internal/parallel"
)

// DispatchAccelerator runs the per-pixel function the way the compute
// shader does: one invocation per output pixel in 8×8 workgroups, with
// workgroups claimed by goroutines in no fixed order.
//
// It needs no GPU. The wgpu accelerator uses it when no adapter is
// available, and tests use it to check the dispatch path against the CPU
// scheduler.
type DispatchAccelerator struct {
	mu      sync.Mutex
	workers int
	pool    *parallel.WorkerPool
	disp    *dispatch.Dispatcher
	log     *slog.Logger
}

// NewDispatchAccelerator returns an accelerator using the given number of
// goroutines. Zero or negative uses GOMAXPROCS.
func NewDispatchAccelerator(workers int) *DispatchAccelerator {
	return &DispatchAccelerator{workers: workers, log: Logger()}
}

// Name implements Accelerator.
func (a *DispatchAccelerator) Name() string { return "dispatch" }

// Init implements Accelerator. It is safe to call more than once.
func (a *DispatchAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		return nil
	}
	a.pool = parallel.NewWorkerPool(a.workers)
	a.disp = dispatch.New(a.pool, dispatch.DefaultWorkgroupSize)
	return nil
}

// Close implements Accelerator.
func (a *DispatchAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
		a.disp = nil
	}
}

// SetLogger sets the accelerator's logger.
func (a *DispatchAccelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.log = l
	a.mu.Unlock()
}

// Compose implements Accelerator.
func (a *DispatchAccelerator) Compose(f *Frame, out *Output) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	disp, log := a.disp, a.log
	a.mu.Unlock()
	if disp == nil {
		return ErrFallbackToCPU
	}

	gx, gy := dispatch.WorkgroupCount(OutputWidth, OutputHeight, disp.WorkgroupSize())
	log.Debug("dualscreen: dispatch", "frame", f.Index, "workgroups_x", gx, "workgroups_y", gy)

	err := disp.Dispatch(OutputWidth, OutputHeight, func(inv dispatch.Invocation) {
		if !inv.InBounds(OutputWidth, OutputHeight) {
			return
		}
		x, y := int(inv.GlobalID[0]), int(inv.GlobalID[1])
		out.Set(x, y, f.ComposeAt(x, y))
	})
	if errors.Is(err, parallel.ErrPoolClosed) {
		return ErrFallbackToCPU
	}
	return err
}
