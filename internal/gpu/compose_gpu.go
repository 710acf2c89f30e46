//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dualscreen"
	"github.com/gogpu/dualscreen/internal/dispatch"
	"github.com/gogpu/dualscreen/internal/native"
	"github.com/gogpu/dualscreen/internal/synth"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// errParityMismatch is returned by the parity probe when the device does
// not reproduce the CPU result bit for bit.
var errParityMismatch = errors.New("gpu-compose: device output differs from CPU")

// parityProbeSeeds are the synthetic frames composed on both paths before
// the device is trusted.
var parityProbeSeeds = []uint64{1, 0x9E3779B97F4A7C15}

// ComposeAccelerator composes frames with a wgpu/hal compute shader. It
// implements dualscreen.Accelerator.
//
// The frame is uploaded into persistent storage buffers, one invocation
// runs per output pixel, and the result is copied into a mappable staging
// buffer for readback. Without a usable device, or when the device fails
// the parity probe, frames are composed by a DispatchAccelerator instead.
type ComposeAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	pipeline  native.GPUResources
	bindGroup hal.BindGroup

	paramsBuf   hal.Buffer
	scanlineBuf hal.Buffer
	layerBuf    hal.Buffer
	buf3D       hal.Buffer
	outBuf      hal.Buffer
	stagingBuf  hal.Buffer

	// upload is reused to pack each frame.
	upload []byte

	cpuFallback    *dualscreen.DispatchAccelerator
	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
	adapterName    string
}

var (
	_ dualscreen.Accelerator         = (*ComposeAccelerator)(nil)
	_ dualscreen.DeviceProviderAware = (*ComposeAccelerator)(nil)
)

// Name implements dualscreen.Accelerator.
func (a *ComposeAccelerator) Name() string { return "wgpu-compose" }

// Init implements dualscreen.Accelerator. A missing or unusable GPU is not
// an error: the accelerator then composes on its CPU fallback.
func (a *ComposeAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cpuFallback == nil {
		a.cpuFallback = dualscreen.NewDispatchAccelerator(0)
	}
	if err := a.cpuFallback.Init(); err != nil {
		return fmt.Errorf("gpu-compose: init cpu fallback: %w", err)
	}
	if a.gpuReady {
		return nil
	}
	if err := a.initGPU(); err != nil {
		slogger().Warn("gpu-compose: GPU init failed, using CPU fallback", "err", err)
		a.releaseDevice()
	}
	return nil
}

// Close implements dualscreen.Accelerator.
func (a *ComposeAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseDevice()
	if a.cpuFallback != nil {
		a.cpuFallback.Close()
	}
}

// SetLogger receives the logger propagated by dualscreen.SetLogger.
func (a *ComposeAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
	a.mu.Lock()
	fb := a.cpuFallback
	a.mu.Unlock()
	if fb != nil {
		fb.SetLogger(l)
	}
}

// GPUReady reports whether frames are composed on the device.
func (a *ComposeAccelerator) GPUReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// AdapterName returns the name of the adapter in use, or "" when composing
// on the CPU fallback or on a shared device.
func (a *ComposeAccelerator) AdapterName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.adapterName
}

// SetDeviceProvider switches the accelerator to a shared GPU device from
// an external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (a *ComposeAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu-compose: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu-compose: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu-compose: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseDevice()
	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createResources(); err != nil {
		a.releaseDevice()
		return fmt.Errorf("gpu-compose: create resources on shared device: %w", err)
	}
	if err := a.probeParity(); err != nil {
		a.releaseDevice()
		return fmt.Errorf("gpu-compose: shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gpu-compose: switched to shared GPU device")
	return nil
}

// Compose implements dualscreen.Accelerator.
func (a *ComposeAccelerator) Compose(f *dualscreen.Frame, out *dualscreen.Output) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		if a.cpuFallback == nil {
			return dualscreen.ErrFallbackToCPU
		}
		return a.cpuFallback.Compose(f, out)
	}
	if err := a.composeLocked(f, out); err != nil {
		slogger().Warn("gpu-compose: dispatch failed", "frame", f.Index, "err", err)
		return err
	}
	return nil
}

func (a *ComposeAccelerator) composeLocked(f *dualscreen.Frame, out *dualscreen.Output) error {
	if err := a.uploadFrame(f); err != nil {
		return err
	}
	if err := a.encodeAndSubmit(); err != nil {
		return err
	}
	return a.readback(out)
}

// uploadFrame writes the frame into the persistent input buffers. The 3D
// buffer is skipped when the shader will not read it.
func (a *ComposeAccelerator) uploadFrame(f *dualscreen.Frame) error {
	buf := a.upload[:0]
	buf = appendParams(buf, newFrameParams(f))
	buf = appendScanlines(buf, f)
	buf = appendLayers(buf, f)
	if f.Engine3DEnabled {
		buf = append3D(buf, f)
	}
	a.upload = buf

	off := 0
	write := func(dst hal.Buffer, size int) error {
		if err := a.queue.WriteBuffer(dst, 0, buf[off:off+size]); err != nil {
			return fmt.Errorf("write buffer: %w", err)
		}
		off += size
		return nil
	}
	if err := write(a.paramsBuf, paramsSize); err != nil {
		return err
	}
	if err := write(a.scanlineBuf, scanlinesBytes); err != nil {
		return err
	}
	if err := write(a.layerBuf, layersBytes); err != nil {
		return err
	}
	if f.Engine3DEnabled {
		return write(a.buf3D, output3DBytes)
	}
	return nil
}

func (a *ComposeAccelerator) encodeAndSubmit() error {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "compose_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("compose"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	gx, gy := dispatch.WorkgroupCount(dualscreen.OutputWidth, dualscreen.OutputHeight, dispatch.DefaultWorkgroupSize)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "compose_pass"})
	pass.SetPipeline(a.pipeline.Pipelines[0])
	pass.SetBindGroup(0, a.bindGroup, nil)
	pass.Dispatch(uint32(gx), uint32(gy), 1) //nolint:gosec // small workgroup counts
	pass.End()

	encoder.CopyBufferToBuffer(a.outBuf, a.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outputBytes},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	if _, err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := a.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

func (a *ComposeAccelerator) readback(out *dualscreen.Output) error {
	m, err := a.device.MapBuffer(a.stagingBuf, 0, outputBytes)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(m.Ptr), outputBytes)
	unpackOutput(src, out)
	if err := a.device.UnmapBuffer(a.stagingBuf); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// probeParity composes synthetic frames on the device and on the CPU
// fallback and requires bit-identical output.
func (a *ComposeAccelerator) probeParity() error {
	f := dualscreen.NewFrame()
	got := dualscreen.NewOutput()
	want := dualscreen.NewOutput()
	for _, seed := range parityProbeSeeds {
		synth.Random(f, seed)
		f.Engine3DEnabled = true
		for y := range dualscreen.OutputHeight {
			for x := range dualscreen.OutputWidth {
				want.Set(x, y, f.ComposeAt(x, y))
			}
		}
		if err := a.composeLocked(f, got); err != nil {
			return fmt.Errorf("parity probe: %w", err)
		}
		if x, y, differ := got.FirstMismatch(want); differ {
			return fmt.Errorf("%w: seed %d at (%d, %d): got %v, want %v",
				errParityMismatch, seed, x, y, got.At(x, y), want.At(x, y))
		}
	}
	return nil
}

func (a *ComposeAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createResources(); err != nil {
		return fmt.Errorf("create resources: %w", err)
	}
	if err := a.probeParity(); err != nil {
		return err
	}
	a.gpuReady = true
	a.adapterName = selected.Info.Name
	slogger().Info("gpu-compose: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *ComposeAccelerator) createResources() error {
	if err := a.createPipeline(); err != nil {
		return err
	}
	if err := a.createBuffers(); err != nil {
		return err
	}
	return a.createBindGroup()
}

func (a *ComposeAccelerator) createPipeline() error {
	a.pipeline.Device = a.device

	shader, err := native.CreateShaderModule(a.device, "compose", composeShaderSource)
	if err != nil {
		return fmt.Errorf("compile compose shader: %w", err)
	}
	a.pipeline.ShaderModule = shader

	storage := func(binding uint32, t gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding: binding, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: t},
		}
	}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "compose_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			storage(0, gputypes.BufferBindingTypeUniform),
			storage(1, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(2, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(3, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(4, gputypes.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.pipeline.BindLayouts = []hal.BindGroupLayout{bindLayout}

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "compose_pipe_layout", BindGroupLayouts: a.pipeline.BindLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeline.PipelineLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "compose_pipeline", Layout: pipeLayout,
		Compute: hal.ComputeState{Module: shader, EntryPoint: composeEntryPoint},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline.Pipelines = []hal.ComputePipeline{pipeline}
	return nil
}

func (a *ComposeAccelerator) createBuffers() error {
	specs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&a.paramsBuf, "compose_params", paramsSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&a.scanlineBuf, "compose_scanlines", scanlinesBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&a.layerBuf, "compose_layers", layersBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&a.buf3D, "compose_3d", output3DBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&a.outBuf, "compose_out", outputBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&a.stagingBuf, "compose_staging", outputBytes, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, s := range specs {
		buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{Label: s.label, Size: s.size, Usage: s.usage})
		if err != nil {
			return fmt.Errorf("create %s buffer: %w", s.label, err)
		}
		*s.dst = buf
	}
	a.upload = make([]byte, 0, paramsSize+scanlinesBytes+layersBytes+output3DBytes)
	return nil
}

func (a *ComposeAccelerator) createBindGroup() error {
	binding := func(n uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding:  n,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		}
	}
	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "compose_bind", Layout: a.pipeline.BindLayouts[0],
		Entries: []gputypes.BindGroupEntry{
			binding(0, a.paramsBuf, paramsSize),
			binding(1, a.scanlineBuf, scanlinesBytes),
			binding(2, a.layerBuf, layersBytes),
			binding(3, a.buf3D, output3DBytes),
			binding(4, a.outBuf, outputBytes),
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	a.bindGroup = bg
	return nil
}

// releaseDevice destroys every device resource and, unless the device is
// shared, the device and instance. The CPU fallback is kept.
func (a *ComposeAccelerator) releaseDevice() {
	a.gpuReady = false
	a.adapterName = ""
	a.upload = nil
	if a.device != nil {
		if a.bindGroup != nil {
			a.device.DestroyBindGroup(a.bindGroup)
		}
		for _, b := range []hal.Buffer{a.paramsBuf, a.scanlineBuf, a.layerBuf, a.buf3D, a.outBuf, a.stagingBuf} {
			if b != nil {
				a.device.DestroyBuffer(b)
			}
		}
	}
	a.bindGroup = nil
	a.paramsBuf, a.scanlineBuf, a.layerBuf, a.buf3D, a.outBuf, a.stagingBuf = nil, nil, nil, nil, nil, nil
	a.pipeline.Destroy()

	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.externalDevice = false
}
