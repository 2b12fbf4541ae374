package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/parallel"
	"github.com/born-ml/lanenc/internal/tensor"
)

// MatMul multiplies (M, K) @ (K, N) → (M, N). Output rows are split across
// goroutines when the backend is configured for it.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", as, bs))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := as[0], as[1], bs[1]
	result := tensor.MustRaw(tensor.Shape{m, n}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		matmul(tensor.Values[float32](result), a.AsFloat32(), b.AsFloat32(), m, k, n, cpu.parallel)
	case tensor.Float64:
		matmul(tensor.Values[float64](result), a.AsFloat64(), b.AsFloat64(), m, k, n, cpu.parallel)
	case tensor.Int32:
		matmul(tensor.Values[int32](result), a.AsInt32(), b.AsInt32(), m, k, n, cpu.parallel)
	case tensor.Int64:
		matmul(tensor.Values[int64](result), a.AsInt64(), b.AsInt64(), m, k, n, cpu.parallel)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
	return result
}

// matmul uses i-k-j ordering so the inner loop walks both b and c
// contiguously.
func matmul[T tensor.Numeric](c, a, b []T, m, k, n int, cfg parallel.Config) {
	parallel.Range(m, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row := c[i*n : (i+1)*n]
			for p := 0; p < k; p++ {
				av := a[i*k+p]
				if av == 0 {
					continue
				}
				bRow := b[p*n : (p+1)*n]
				for j := range row {
					row[j] += av * bRow[j]
				}
			}
		}
	})
}
