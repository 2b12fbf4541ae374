//go:build windows

package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/tensor"
)

// DefaultMinElements is the smallest output size sent to the GPU. Smaller
// kernels cost more in transfers than they save.
const DefaultMinElements = 4096

// Backend offloads float32 MatMul, Sigmoid and Tanh to the GPU and runs every
// other operation on the embedded CPU backend. Tensors stay in host memory
// between operations.
type Backend struct {
	*cpu.CPUBackend

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu        sync.Mutex // guards the caches and serialises submissions
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	minElements int
	adapterName string
}

// New acquires a high-performance adapter and its device. It fails when
// wgpu-native is missing or no adapter is available.
func New() (b *Backend, err error) {
	// go-webgpu panics when the native library cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	if err := wgpu.Init(); err != nil {
		return nil, fmt.Errorf("webgpu: init: %w", err)
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("webgpu: create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: device has no queue")
	}

	info := adapter.GetInfo()
	return &Backend{
		CPUBackend:  cpu.New(),
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		minElements: DefaultMinElements,
		adapterName: info.Name,
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns tensor.WebGPU.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterName returns the GPU the backend runs on.
func (b *Backend) AdapterName() string {
	return b.adapterName
}

// SetMinElements sets the output size below which kernels stay on the CPU.
// Zero sends everything to the GPU.
func (b *Backend) SetMinElements(n int) {
	b.minElements = n
}

// MatMul implements tensor.Backend.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xs, ys := x.Shape(), y.Shape()
	if !b.offload(x, y) || len(xs) != 2 || len(ys) != 2 || xs[1] != ys[0] || xs[0]*ys[1] < b.minElements {
		return b.CPUBackend.MatMul(x, y)
	}
	out, err := b.runMatMul(x, y)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}
	return out
}

// Sigmoid implements tensor.Backend.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	if !b.offload(x) || x.NumElements() < b.minElements {
		return b.CPUBackend.Sigmoid(x)
	}
	out, err := b.runUnary("sigmoid", sigmoidExpr, x)
	if err != nil {
		panic(fmt.Sprintf("sigmoid: %v", err))
	}
	return out
}

// Tanh implements tensor.Backend.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	if !b.offload(x) || x.NumElements() < b.minElements {
		return b.CPUBackend.Tanh(x)
	}
	out, err := b.runUnary("tanh", tanhExpr, x)
	if err != nil {
		panic(fmt.Sprintf("tanh: %v", err))
	}
	return out
}

// offload reports whether every operand is float32, the only type the
// shaders handle.
func (b *Backend) offload(ts ...*tensor.RawTensor) bool {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			return false
		}
	}
	return true
}

// Release frees the GPU objects. The backend must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	b.pipelines, b.shaders = nil, nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	b, err := New()
	if err != nil {
		return false
	}
	b.Release()
	return true
}
