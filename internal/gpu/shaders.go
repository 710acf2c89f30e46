//go:build !nogpu

package gpu

import _ "embed"

// composeShaderSource is the per-pixel compositing kernel. Its workgroup
// size must match dispatch.DefaultWorkgroupSize.
//
//go:embed shaders/compose.wgsl
var composeShaderSource string

// composeEntryPoint is the kernel's entry point.
const composeEntryPoint = "main"
