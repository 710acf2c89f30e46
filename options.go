package dualscreen

// Option configures a Compositor.
//
// Example:
//
//	c := dualscreen.NewCompositor(
//	    dualscreen.WithBackend(dualscreen.BackendCPU),
//	    dualscreen.WithWorkers(4),
//	)
type Option func(*options)

type options struct {
	backend     Backend
	workers     int
	rowsPerBand int
	accel       Accelerator
}

func defaultOptions() options {
	return options{
		backend:     BackendAuto,
		workers:     0, // GOMAXPROCS
		rowsPerBand: 0, // derived from the worker count
	}
}

// WithBackend selects the scheduler. The default is BackendAuto.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithWorkers sets the CPU scheduler's worker count.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithRowsPerBand sets how many output rows one CPU job composes.
// Zero or negative picks a size from the worker count.
func WithRowsPerBand(n int) Option {
	return func(o *options) {
		o.rowsPerBand = n
	}
}

// WithAccelerator makes the compositor use a instead of the registered
// accelerator. The compositor does not call Init or Close on it.
func WithAccelerator(a Accelerator) Option {
	return func(o *options) {
		o.accel = a
	}
}
