//go:build !nogpu

// Package gpu composes frames on the GPU through wgpu/hal compute shaders.
//
// ComposeAccelerator uploads a frame's layer words, 3D framebuffer and
// scanline records into storage buffers, runs shaders/compose.wgsl with one
// invocation per output pixel in 8×8 workgroups, and reads the float32
// result back through a staging buffer.
//
// The shader repeats pixel.Compose operation for operation with the same
// float32 constants, so a conforming device produces bit-identical output.
// Because drivers are free to contract a*b+c into a fused multiply-add,
// the accelerator composes two synthetic frames on the device during
// initialization and refuses the device if a single bit differs. Frames are
// then composed on a DispatchAccelerator instead.
//
// Import github.com/gogpu/dualscreen/gpu to register the accelerator.
package gpu
