//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/lanenc/internal/tensor"
)

// pipeline returns the cached compute pipeline for name, compiling code on
// first use. Callers hold b.mu.
func (b *Backend) pipeline(name, code string) *wgpu.ComputePipeline {
	if p, ok := b.pipelines[name]; ok {
		return p
	}
	shader, ok := b.shaders[name]
	if !ok {
		shader = b.device.CreateShaderModuleWGSL(code)
		b.shaders[name] = shader
	}
	p := b.device.CreateComputePipelineSimple(nil, shader, "main")
	b.pipelines[name] = p
	return p
}

// upload creates a buffer holding data.
func (b *Backend) upload(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buf := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	//nolint:gosec // mapped range is exactly size bytes
	copy(unsafe.Slice((*byte)(buf.GetMappedRange(0, size)), size), data)
	buf.Unmap()
	return buf
}

// uniform uploads 32-bit parameters padded to the 16-byte uniform alignment.
func (b *Backend) uniform(values ...uint32) *wgpu.Buffer {
	data := make([]byte, (len(values)*4+15)&^15)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	return b.upload(data, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

func (b *Backend) output(size uint64) *wgpu.Buffer {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:  size,
	})
}

// dispatch runs one compute pass and copies out back to the host.
func (b *Backend) dispatch(p *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry, x, y, z uint32, out *wgpu.Buffer, size uint64) ([]byte, error) {
	group := b.device.CreateBindGroupSimple(p.GetBindGroupLayout(0), entries)
	defer group.Release()

	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	enc := b.device.CreateCommandEncoder(nil)
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups(x, y, z)
	pass.End()
	enc.CopyBufferToBuffer(out, 0, staging, 0, size)
	b.queue.Submit(enc.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map result: %w", err)
	}
	result := make([]byte, size)
	//nolint:gosec // mapped range is exactly size bytes
	copy(result, unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size))
	staging.Unmap()
	return result, nil
}

func (b *Backend) runMatMul(x, y *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, k, n := x.Shape()[0], x.Shape()[1], y.Shape()[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	size := uint64(result.ByteSize()) //nolint:gosec // non-negative

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.pipeline("matmul", matmulShader)
	bufX := b.upload(x.Data(), wgpu.BufferUsageStorage)
	defer bufX.Release()
	bufY := b.upload(y.Data(), wgpu.BufferUsageStorage)
	defer bufY.Release()
	out := b.output(size)
	defer out.Release()
	dims := b.uniform(uint32(m), uint32(k), uint32(n)) //nolint:gosec // tensor dims fit in u32
	defer dims.Release()

	data, err := b.dispatch(p, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufX, 0, uint64(x.ByteSize())), //nolint:gosec // non-negative
		wgpu.BufferBindingEntry(1, bufY, 0, uint64(y.ByteSize())), //nolint:gosec // non-negative
		wgpu.BufferBindingEntry(2, out, 0, size),
		wgpu.BufferBindingEntry(3, dims, 0, 16),
	}, groups(n, tile), groups(m, tile), 1, out, size)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

func (b *Backend) runUnary(name, expr string, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	size := uint64(result.ByteSize()) //nolint:gosec // non-negative

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.pipeline(name, strings.Replace(unaryShader, "%s", expr, 1))
	in := b.upload(x.Data(), wgpu.BufferUsageStorage)
	defer in.Release()
	out := b.output(size)
	defer out.Release()
	n := b.uniform(uint32(x.NumElements())) //nolint:gosec // element counts fit in u32
	defer n.Release()

	data, err := b.dispatch(p, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, in, 0, size),
		wgpu.BufferBindingEntry(1, out, 0, size),
		wgpu.BufferBindingEntry(2, n, 0, 16),
	}, groups(x.NumElements(), workgroupSize), 1, 1, out, size)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}

// groups returns ceil(n / per).
func groups(n, per int) uint32 {
	return uint32((n + per - 1) / per) //nolint:gosec // non-negative
}
