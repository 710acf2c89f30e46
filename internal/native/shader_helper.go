// Package native holds the wgpu/hal plumbing shared by the compute
// accelerators: WGSL compilation and resource teardown.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// ErrInvalidSPIRV is returned when the compiler output is not a SPIR-V
// module.
var ErrInvalidSPIRV = errors.New("native: invalid SPIR-V")

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if spirvCode[0] != SPIRVMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, spirvCode[0])
	}
	return spirvCode, nil
}

// CreateShaderModule compiles WGSL source and creates a HAL shader module
// from the SPIR-V.
func CreateShaderModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	spirvCode, err := CompileShaderToSPIRV(wgslSource)
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirvCode,
		},
	})
}

// GPUResources groups the pipeline objects of one compute shader so they
// can be destroyed together.
type GPUResources struct {
	Device         hal.Device
	ShaderModule   hal.ShaderModule
	PipelineLayout hal.PipelineLayout
	BindLayouts    []hal.BindGroupLayout
	Pipelines      []hal.ComputePipeline
}

// Destroy releases all resources in dependency order and clears the
// struct. It is safe to call more than once.
func (r *GPUResources) Destroy() {
	if r.Device == nil {
		return
	}

	for _, p := range r.Pipelines {
		if p != nil {
			r.Device.DestroyComputePipeline(p)
		}
	}
	if r.PipelineLayout != nil {
		r.Device.DestroyPipelineLayout(r.PipelineLayout)
	}
	for _, l := range r.BindLayouts {
		if l != nil {
			r.Device.DestroyBindGroupLayout(l)
		}
	}
	if r.ShaderModule != nil {
		r.Device.DestroyShaderModule(r.ShaderModule)
	}
	*r = GPUResources{}
}
