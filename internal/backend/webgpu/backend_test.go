//go:build windows

package webgpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/tensor"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(b.Release)
	b.SetMinElements(0)
	return b
}

func randomRaw(shape tensor.Shape, rng *rand.Rand) *tensor.RawTensor {
	raw := tensor.MustRaw(shape, tensor.Float32, tensor.CPU)
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	return raw
}

func requireClose(t *testing.T, want, got *tensor.RawTensor) {
	t.Helper()
	require.Equal(t, want.Shape(), got.Shape())
	w, g := want.AsFloat32(), got.AsFloat32()
	for i := range w {
		if math.Abs(float64(w[i]-g[i])) > 1e-4*(1+math.Abs(float64(w[i]))) {
			t.Fatalf("element %d: gpu %v, cpu %v", i, g[i], w[i])
		}
	}
}

func TestMatchesCPU(t *testing.T) {
	gpu := newBackend(t)
	ref := cpu.New()
	rng := rand.New(rand.NewSource(1))

	// Sizes straddle the 16x16 tile.
	for _, dims := range [][3]int{{1, 1, 1}, {3, 17, 5}, {33, 40, 18}, {64, 300, 1536}} {
		x := randomRaw(tensor.Shape{dims[0], dims[1]}, rng)
		y := randomRaw(tensor.Shape{dims[1], dims[2]}, rng)
		requireClose(t, ref.MatMul(x, y), gpu.MatMul(x, y))
	}

	x := randomRaw(tensor.Shape{7, 300}, rng)
	requireClose(t, ref.Sigmoid(x), gpu.Sigmoid(x))
	requireClose(t, ref.Tanh(x), gpu.Tanh(x))
}

func TestFallbacks(t *testing.T) {
	gpu := newBackend(t)
	gpu.SetMinElements(DefaultMinElements)

	x := tensor.MustRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.Equal(t, tensor.CPU, gpu.Sigmoid(x).Device(), "small tensors stay on the CPU")

	d := tensor.MustRaw(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)
	require.Equal(t, tensor.Float64, gpu.MatMul(d, d).DType())
	require.Equal(t, "WebGPU", gpu.Name())
}
