package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/lanenc/internal/tensor"
)

func newTestBackend() *CPUBackend {
	return New()
}

func raw32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r := tensor.MustRaw(shape, tensor.Float32, tensor.CPU)
	if len(data) != r.NumElements() {
		t.Fatalf("raw32: %d values for shape %v", len(data), shape)
	}
	copy(r.AsFloat32(), data)
	return r
}

func rawInt32(t *testing.T, shape tensor.Shape, data ...int32) *tensor.RawTensor {
	t.Helper()
	r := tensor.MustRaw(shape, tensor.Int32, tensor.CPU)
	copy(r.AsInt32(), data)
	return r
}

func float32SliceEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func TestCPUBackend_New(t *testing.T) {
	b := newTestBackend()
	if b.Name() != "CPU" {
		t.Errorf("Name() = %q, want CPU", b.Name())
	}
	if b.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", b.Device())
	}
}

func TestCPUBackend_Elementwise(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	bias := raw32(t, tensor.Shape{3}, 10, 20, 30)
	col := raw32(t, tensor.Shape{2, 1}, 2, 3)

	tests := []struct {
		name  string
		got   *tensor.RawTensor
		shape tensor.Shape
		want  []float32
	}{
		{"add same shape", b.Add(x, x), tensor.Shape{2, 3}, []float32{2, 4, 6, 8, 10, 12}},
		{"add row bias", b.Add(x, bias), tensor.Shape{2, 3}, []float32{11, 22, 33, 14, 25, 36}},
		{"sub column", b.Sub(x, col), tensor.Shape{2, 3}, []float32{-1, 0, 1, 1, 2, 3}},
		{"mul column", b.Mul(x, col), tensor.Shape{2, 3}, []float32{2, 4, 6, 12, 15, 18}},
		{"mul scalar", b.MulScalar(x, 0.5), tensor.Shape{2, 3}, []float32{0.5, 1, 1.5, 2, 2.5, 3}},
		{"add scalar", b.AddScalar(x, float32(-1)), tensor.Shape{2, 3}, []float32{0, 1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Shape().Equal(tt.shape) {
				t.Fatalf("shape = %v, want %v", tt.got.Shape(), tt.shape)
			}
			if !float32SliceEqual(tt.got.AsFloat32(), tt.want) {
				t.Errorf("got %v, want %v", tt.got.AsFloat32(), tt.want)
			}
		})
	}

	expectPanic(t, "incompatible shapes", func() { b.Add(x, raw32(t, tensor.Shape{2}, 1, 2)) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	for name, b := range map[string]*CPUBackend{"parallel": New(), "sequential": NewSequential()} {
		t.Run(name, func(t *testing.T) {
			a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
			m := raw32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)
			got := b.MatMul(a, m)
			want := []float32{58, 64, 139, 154}
			if !got.Shape().Equal(tensor.Shape{2, 2}) || !float32SliceEqual(got.AsFloat32(), want) {
				t.Errorf("matmul = %v%v, want [2 2]%v", got.Shape(), got.AsFloat32(), want)
			}
			expectPanic(t, "inner mismatch", func() { b.MatMul(a, a) })
		})
	}
}

func TestCPUBackend_Transpose(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	got := b.Transpose(x)
	if !got.Shape().Equal(tensor.Shape{3, 2}) || !float32SliceEqual(got.AsFloat32(), []float32{1, 4, 2, 5, 3, 6}) {
		t.Errorf("2D transpose = %v%v", got.Shape(), got.AsFloat32())
	}

	// [T=2, B=2, H=2] → [B, T, H]
	y := raw32(t, tensor.Shape{2, 2, 2}, 1, 2, 3, 4, 5, 6, 7, 8)
	got = b.Transpose(y, 1, 0, 2)
	if !float32SliceEqual(got.AsFloat32(), []float32{1, 2, 5, 6, 3, 4, 7, 8}) {
		t.Errorf("3D transpose = %v", got.AsFloat32())
	}

	expectPanic(t, "bad permutation", func() { b.Transpose(y, 0, 0, 1) })
}

func TestCPUBackend_Activations(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{3}, -1000, 0, 2)

	s := b.Sigmoid(x).AsFloat32()
	if s[0] != 0 || s[1] != 0.5 || math.Abs(float64(s[2])-0.8807971) > 1e-6 {
		t.Errorf("sigmoid = %v", s)
	}
	th := b.Tanh(x).AsFloat32()
	if th[0] != -1 || th[1] != 0 || math.Abs(float64(th[2])-0.9640276) > 1e-6 {
		t.Errorf("tanh = %v", th)
	}

	expectPanic(t, "sigmoid on ints", func() { b.Sigmoid(rawInt32(t, tensor.Shape{1}, 1)) })
}

func TestCPUBackend_AbsEqual(t *testing.T) {
	b := newTestBackend()
	idx := rawInt32(t, tensor.Shape{2, 3}, 1, -2, 0, 0, 3, 0)
	zero := tensor.MustRaw(tensor.Shape{1}, tensor.Int32, tensor.CPU)

	mask := b.Equal(b.Abs(idx), zero)
	if mask.DType() != tensor.Bool {
		t.Fatalf("dtype = %s, want bool", mask.DType())
	}
	want := []bool{false, false, true, true, false, true}
	for i, v := range mask.AsBool() {
		if v != want[i] {
			t.Fatalf("mask = %v, want %v", mask.AsBool(), want)
		}
	}
}

func TestCPUBackend_Reductions(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{2, 3}, 1, 5, 3, 4, 2, 6)

	tests := []struct {
		name  string
		got   *tensor.RawTensor
		shape tensor.Shape
		want  []float32
	}{
		{"sum dim0", b.SumDim(x, 0, false), tensor.Shape{3}, []float32{5, 7, 9}},
		{"mean dim1 keep", b.MeanDim(x, 1, true), tensor.Shape{2, 1}, []float32{3, 4}},
		{"max dim0 keep", b.MaxDim(x, 0, true), tensor.Shape{1, 3}, []float32{4, 5, 6}},
		{"max last", b.MaxDim(x, -1, false), tensor.Shape{2}, []float32{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Shape().Equal(tt.shape) {
				t.Fatalf("shape = %v, want %v", tt.got.Shape(), tt.shape)
			}
			if !float32SliceEqual(tt.got.AsFloat32(), tt.want) {
				t.Errorf("got %v, want %v", tt.got.AsFloat32(), tt.want)
			}
		})
	}
}

func TestCPUBackend_CatChunk(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
	y := raw32(t, tensor.Shape{2, 1}, 9, 8)

	cat := b.Cat([]*tensor.RawTensor{x, y}, 1)
	if !cat.Shape().Equal(tensor.Shape{2, 3}) || !float32SliceEqual(cat.AsFloat32(), []float32{1, 2, 9, 3, 4, 8}) {
		t.Errorf("cat = %v%v", cat.Shape(), cat.AsFloat32())
	}

	parts := b.Chunk(cat, 3, 1)
	if len(parts) != 3 || !float32SliceEqual(parts[2].AsFloat32(), []float32{9, 8}) {
		t.Errorf("chunk = %v", parts)
	}
	rows := b.Chunk(cat, 2, 0)
	if !float32SliceEqual(rows[1].AsFloat32(), []float32{3, 4, 8}) {
		t.Errorf("chunk rows = %v", rows[1].AsFloat32())
	}

	expectPanic(t, "indivisible chunk", func() { b.Chunk(cat, 2, 1) })
	expectPanic(t, "cat mismatch", func() { b.Cat([]*tensor.RawTensor{x, y}, 0) })
}

func TestCPUBackend_SqueezeUnsqueeze(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	u := b.Unsqueeze(x, 1)
	if !u.Shape().Equal(tensor.Shape{2, 1, 3}) {
		t.Errorf("unsqueeze shape = %v", u.Shape())
	}
	if s := b.Squeeze(u, 1); !s.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("squeeze shape = %v", s.Shape())
	}
	if last := b.Unsqueeze(x, -1); !last.Shape().Equal(tensor.Shape{2, 3, 1}) {
		t.Errorf("unsqueeze(-1) shape = %v", last.Shape())
	}
	expectPanic(t, "squeeze non-1", func() { b.Squeeze(x, 0) })
}

func TestCPUBackend_Embedding(t *testing.T) {
	b := newTestBackend()
	w := raw32(t, tensor.Shape{3, 2}, 0, 0, 1, 1, 2, 2)
	idx := rawInt32(t, tensor.Shape{2, 2}, 2, 1, 0, 2)

	got := b.Embedding(w, idx)
	if !got.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("shape = %v", got.Shape())
	}
	if !float32SliceEqual(got.AsFloat32(), []float32{2, 2, 1, 1, 0, 0, 2, 2}) {
		t.Errorf("embedding = %v", got.AsFloat32())
	}
	expectPanic(t, "out of range", func() { b.Embedding(w, rawInt32(t, tensor.Shape{1}, 3)) })
	expectPanic(t, "negative", func() { b.Embedding(w, rawInt32(t, tensor.Shape{1}, -1)) })
}

func TestCPUBackend_IndexSelect(t *testing.T) {
	b := newTestBackend()
	x := raw32(t, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)

	rows := b.IndexSelect(x, 0, rawInt32(t, tensor.Shape{2}, 2, 0))
	if !rows.Shape().Equal(tensor.Shape{2, 2}) || !float32SliceEqual(rows.AsFloat32(), []float32{5, 6, 1, 2}) {
		t.Errorf("rows = %v%v", rows.Shape(), rows.AsFloat32())
	}
	cols := b.IndexSelect(x, 1, rawInt32(t, tensor.Shape{1}, 1))
	if !float32SliceEqual(cols.AsFloat32(), []float32{2, 4, 6}) {
		t.Errorf("cols = %v", cols.AsFloat32())
	}
}
