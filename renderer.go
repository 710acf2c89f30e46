package dualscreen

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Presenter receives composited output. Present is called from the
// renderer goroutine and out is reused for the next frame once it returns.
type Presenter interface {
	Present(out *Output) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(out *Output) error

// Present calls fn(out).
func (fn PresenterFunc) Present(out *Output) error {
	return fn(out)
}

// Renderer is the compositor's goroutine. The producer publishes frames to
// a FrameExchange and calls FrameDone; the renderer wakes up, composes the
// newest frame and presents it. Frames published while a frame is being
// composed collapse into one wake-up.
type Renderer struct {
	comp      *Compositor
	exchange  *FrameExchange
	presenter Presenter

	ready  chan struct{}
	out    *Output
	frames atomic.Uint64
}

// NewRenderer returns a renderer reading from ex, composing with c and
// presenting to p.
func NewRenderer(c *Compositor, ex *FrameExchange, p Presenter) *Renderer {
	return &Renderer{
		comp:      c,
		exchange:  ex,
		presenter: p,
		ready:     make(chan struct{}, 1),
		out:       NewOutput(),
	}
}

// FrameDone signals that a frame was published. It never blocks.
func (r *Renderer) FrameDone() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Frames returns the number of frames presented.
func (r *Renderer) Frames() uint64 {
	return r.frames.Load()
}

// Run composes and presents frames until ctx is done or composing or
// presenting fails. It returns ctx.Err() on cancellation.
func (r *Renderer) Run(ctx context.Context) error {
	log := Logger()
	log.Info("dualscreen: renderer started", "backend", r.comp.Backend())
	defer log.Info("dualscreen: renderer stopped", "frames", r.frames.Load())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.ready:
		}

		f, fresh := r.exchange.Latest()
		if !fresh {
			continue
		}
		if err := r.comp.Compose(f, r.out); err != nil {
			return fmt.Errorf("dualscreen: compose frame %d: %w", f.Index, err)
		}
		if err := r.presenter.Present(r.out); err != nil {
			return fmt.Errorf("dualscreen: present frame %d: %w", f.Index, err)
		}
		r.frames.Add(1)
	}
}
