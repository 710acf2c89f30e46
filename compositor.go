package dualscreen

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/dualscreen/internal/parallel"
)

// ErrClosed is returned by a closed Compositor.
var ErrClosed = errors.New("dualscreen: compositor is closed")

// Compositor turns frames into output color buffers. Both schedulers call
// the same per-pixel function and produce bit-identical buffers.
//
// A Compositor is safe for concurrent use, but each call must use its own
// Output.
type Compositor struct {
	backend Backend
	accel   Accelerator // nil: use the registered accelerator
	bands   []parallel.Band

	mu     sync.RWMutex
	pool   *parallel.WorkerPool
	closed bool
}

// NewCompositor creates a compositor and starts its CPU worker pool.
func NewCompositor(opts ...Option) *Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pool := parallel.NewWorkerPool(o.workers)
	var bands []parallel.Band
	if o.rowsPerBand > 0 {
		bands = parallel.RowBands(OutputHeight, o.rowsPerBand)
	} else {
		bands = parallel.BandsFor(OutputHeight, pool.Workers())
	}

	Logger().Debug("dualscreen: compositor created",
		"backend", o.backend, "workers", pool.Workers(), "bands", len(bands))

	return &Compositor{
		backend: o.backend,
		accel:   o.accel,
		bands:   bands,
		pool:    pool,
	}
}

// Backend returns the configured backend.
func (c *Compositor) Backend() Backend {
	return c.backend
}

// Workers returns the CPU scheduler's worker count.
func (c *Compositor) Workers() int {
	return c.pool.Workers()
}

func (c *Compositor) accelerator() Accelerator {
	if c.accel != nil {
		return c.accel
	}
	return RegisteredAccelerator()
}

// Compose composites f into out using the configured backend.
//
// With BackendAccelerator or BackendAuto the frame goes to the accelerator
// first. If it fails, for any reason, the frame is recomposed on the CPU
// scheduler and a warning is logged. BackendAccelerator without any
// accelerator also runs on the CPU.
func (c *Compositor) Compose(f *Frame, out *Output) error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}

	if c.backend != BackendCPU {
		if a := c.accelerator(); a != nil {
			err := a.Compose(f, out)
			if err == nil {
				out.Index = f.Index
				return nil
			}
			Logger().Warn("dualscreen: accelerator failed, composing on CPU",
				"accelerator", a.Name(), "frame", f.Index, "err", err)
		} else if c.backend == BackendAccelerator {
			Logger().Warn("dualscreen: no accelerator registered, composing on CPU", "frame", f.Index)
		}
	}
	return c.ComposeCPU(f, out)
}

// ComposeCPU composites f on the CPU scheduler: output rows are split into
// bands and the bands run on the worker pool. It returns once every band
// has finished.
func (c *Compositor) ComposeCPU(f *Frame, out *Output) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	err := c.pool.ForEachBand(c.bands, func(b parallel.Band) {
		for y := b.Y0; y < b.Y1; y++ {
			for x := range OutputWidth {
				out.Set(x, y, f.ComposeAt(x, y))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("dualscreen: cpu compose: %w", err)
	}
	out.Index = f.Index
	return nil
}

// ComposeAccelerated composites f on the accelerator only. Unlike Compose
// it does not fall back, so tests and tools can compare both schedulers.
func (c *Compositor) ComposeAccelerated(f *Frame, out *Output) error {
	a := c.accelerator()
	if a == nil {
		return ErrFallbackToCPU
	}
	if err := a.Compose(f, out); err != nil {
		return err
	}
	out.Index = f.Index
	return nil
}

func (c *Compositor) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close stops the CPU worker pool. Close is safe to call more than once.
func (c *Compositor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Close()
}
