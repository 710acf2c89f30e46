// Package dualscreen composites the 2D layer output of a dual-screen
// handheld into final colors, the way the console's display hardware does.
//
// # Overview
//
// Each output pixel is produced by one pure function, [pixel.Compose],
// from four inputs: the two highest-priority layer pixels at that position,
// the 3D engine's pixel, and the scanline's blend configuration. The
// function decodes the packed words, substitutes 3D output into 3D-sourced
// slots, resolves blending (3D alpha, then per-pixel alpha, then the
// scanline's color effect) and applies master brightness.
//
// # Backends
//
// The [Compositor] evaluates that function for all 256×384 pixels with
// one of two schedulers:
//
//   - [BackendCPU] splits output rows into bands run on a fixed worker pool.
//   - [BackendAccelerator] hands the frame to the registered [Accelerator],
//     which runs one independent invocation per pixel.
//
// Both produce bit-identical float32 output. The accelerator falls back
// to the CPU scheduler whenever it cannot run.
//
// GPU composition is enabled with a blank import:
//
//	import _ "github.com/gogpu/dualscreen/gpu"
//
// Without it, or with the nogpu build tag, register a [DispatchAccelerator]
// to run the per-pixel dispatch on goroutines instead.
//
// # Frames
//
// A producer fills the [Frame] returned by [FrameExchange.Current] and
// calls [FrameExchange.Publish]. A [Renderer] picks up the newest frame,
// composes it and hands the [Output] to a [Presenter]:
//
//	c := dualscreen.NewCompositor()
//	defer c.Close()
//	ex := dualscreen.NewFrameExchange()
//	r := dualscreen.NewRenderer(c, ex, presenter)
//	go r.Run(ctx)
//
//	f := ex.Current()
//	// ... fill f ...
//	ex.Publish()
//	r.FrameDone()
//
// # Logging
//
// Logging is silent by default. See [SetLogger].
package dualscreen
