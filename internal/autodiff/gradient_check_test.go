package autodiff_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/lanenc/internal/autodiff"
	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/tensor"
)

type adBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

type t64 = tensor.Tensor[float64, adBackend]

// checkGradients compares tape gradients of sum(f(inputs)) with central
// finite differences for every element of every input.
func checkGradients(t *testing.T, shapes []tensor.Shape, f func(b adBackend, xs []*t64) *t64) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	backend := autodiff.New(cpu.NewSequential())

	xs := make([]*t64, len(shapes))
	for i, s := range shapes {
		xs[i] = tensor.Randn[float64](s, rng, backend)
	}

	backend.Tape().Clear()
	backend.Tape().StartRecording()
	out := f(backend, xs)
	grads := autodiff.Backward(out, backend)
	backend.Tape().StopRecording()

	sum := func() float64 {
		var s float64
		for _, v := range f(backend, xs).Data() {
			s += v
		}
		return s
	}

	const eps = 1e-6
	for i, x := range xs {
		g, ok := grads[x.Raw()]
		if !ok {
			t.Fatalf("input %d received no gradient", i)
		}
		analytic := g.AsFloat64()
		data := x.Data()
		for j := range data {
			orig := data[j]
			data[j] = orig + eps
			up := sum()
			data[j] = orig - eps
			down := sum()
			data[j] = orig

			numeric := (up - down) / (2 * eps)
			if math.Abs(numeric-analytic[j]) > 1e-4*(1+math.Abs(numeric)) {
				t.Errorf("input %d element %d: autodiff %.6f, numeric %.6f", i, j, analytic[j], numeric)
			}
		}
	}
}

func TestGradients(t *testing.T) {
	tests := []struct {
		name   string
		shapes []tensor.Shape
		f      func(b adBackend, xs []*t64) *t64
	}{
		{
			name:   "broadcast add and mul",
			shapes: []tensor.Shape{{2, 3}, {3}},
			f: func(_ adBackend, xs []*t64) *t64 {
				return xs[0].Add(xs[1]).Mul(xs[0])
			},
		},
		{
			name:   "matmul sigmoid",
			shapes: []tensor.Shape{{2, 3}, {3, 4}},
			f: func(_ adBackend, xs []*t64) *t64 {
				return xs[0].MatMul(xs[1]).Sigmoid()
			},
		},
		{
			name:   "tanh with scalars",
			shapes: []tensor.Shape{{4}},
			f: func(_ adBackend, xs []*t64) *t64 {
				return xs[0].Tanh().MulScalar(2).AddScalar(1).Sub(xs[0].Mul(xs[0]))
			},
		},
		{
			name:   "cat then chunk",
			shapes: []tensor.Shape{{2, 2}, {2, 2}},
			f: func(_ adBackend, xs []*t64) *t64 {
				parts := tensor.Cat([]*t64{xs[0], xs[1]}, 1).Chunk(2, 1)
				return parts[0].Mul(parts[1].Tanh())
			},
		},
		{
			name:   "unused chunk part",
			shapes: []tensor.Shape{{2, 6}},
			f: func(_ adBackend, xs []*t64) *t64 {
				return xs[0].Chunk(3, 1)[1].Sigmoid()
			},
		},
		{
			name:   "reductions",
			shapes: []tensor.Shape{{2, 3, 2}},
			f: func(_ adBackend, xs []*t64) *t64 {
				mean := xs[0].MeanDim(1, true)            // [2,1,2]
				peak := xs[0].Mul(xs[0]).MaxDim(1, false) // [2,2]
				return mean.Squeeze(1).Mul(peak).SumDim(0, false)
			},
		},
		{
			name:   "transpose reshape unsqueeze",
			shapes: []tensor.Shape{{2, 3}, {1, 6}},
			f: func(_ adBackend, xs []*t64) *t64 {
				return xs[0].Transpose().Reshape(6).Unsqueeze(0).Mul(xs[1])
			},
		},
		{
			name:   "index select with repeats",
			shapes: []tensor.Shape{{3, 2}},
			f: func(b adBackend, xs []*t64) *t64 {
				idx := tensor.MustFromSlice([]int32{2, 0, 2}, tensor.Shape{3}, b)
				sel := xs[0].IndexSelect(0, idx)
				return sel.Mul(sel)
			},
		},
		{
			name:   "embedding lookup",
			shapes: []tensor.Shape{{4, 3}},
			f: func(b adBackend, xs []*t64) *t64 {
				idx := tensor.MustFromSlice([]int32{1, 3, 1, 0}, tensor.Shape{2, 2}, b)
				return tensor.Embedding(xs[0], idx).Tanh()
			},
		},
		{
			name:   "gated recurrent step",
			shapes: []tensor.Shape{{2, 3}, {2, 2}, {3, 6}, {2, 6}, {6}},
			f: func(_ adBackend, xs []*t64) *t64 {
				x, h, wi, wh, bias := xs[0], xs[1], xs[2], xs[3], xs[4]
				gi := x.MatMul(wi).Add(bias).Chunk(3, 1)
				gh := h.MatMul(wh).Chunk(3, 1)
				r := gi[0].Add(gh[0]).Sigmoid()
				z := gi[1].Add(gh[1]).Sigmoid()
				n := gi[2].Add(r.Mul(gh[2])).Tanh()
				return n.Add(z.Mul(h.Sub(n)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkGradients(t, tt.shapes, tt.f)
		})
	}
}

func TestTapeRecordingControl(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones[float32](tensor.Shape{2}, backend)

	_ = x.Add(x)
	if n := backend.Tape().NumOps(); n != 0 {
		t.Fatalf("stopped tape recorded %d ops", n)
	}

	backend.Tape().StartRecording()
	_ = x.Abs()
	_ = x.Equal(x)
	if n := backend.Tape().NumOps(); n != 0 {
		t.Errorf("non-differentiable ops recorded %d ops", n)
	}
	y := x.Mul(x)
	if n := backend.Tape().NumOps(); n != 1 {
		t.Errorf("NumOps = %d, want 1", n)
	}

	grads := autodiff.Backward(y, backend)
	if got := grads[x.Raw()].AsFloat32(); got[0] != 2 || got[1] != 2 {
		t.Errorf("d(x*x)/dx = %v, want [2 2]", got)
	}
	if !backend.Tape().IsRecording() {
		t.Error("Backward should restore the recording state")
	}

	backend.Tape().Clear()
	if backend.Tape().NumOps() != 0 {
		t.Error("Clear should empty the tape")
	}
}

func TestBackwardWithoutOpsPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones[float32](tensor.Shape{1}, backend)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	autodiff.Backward(x, backend)
}
