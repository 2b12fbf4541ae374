package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

type reduceOp int

const (
	reduceSum reduceOp = iota
	reduceMean
	reduceMax
)

// SumDim sums along dim.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sum_dim", x, dim, keepDim, reduceSum)
}

// MeanDim averages along dim. Float tensors only.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("mean_dim: requires a float tensor, got %s", x.DType()))
	}
	return cpu.reduce("mean_dim", x, dim, keepDim, reduceMean)
}

// MaxDim takes the maximum along dim.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("max_dim", x, dim, keepDim, reduceMax)
}

func (cpu *CPUBackend) reduce(name string, x *tensor.RawTensor, dim int, keepDim bool, op reduceOp) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)
	outer, size, inner := splitAt(shape, dim)
	result := tensor.MustRaw(ReducedShape(shape, dim, keepDim), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		reduceAlong(tensor.Values[float32](result), x.AsFloat32(), outer, size, inner, op)
	case tensor.Float64:
		reduceAlong(tensor.Values[float64](result), x.AsFloat64(), outer, size, inner, op)
	case tensor.Int32:
		reduceAlong(tensor.Values[int32](result), x.AsInt32(), outer, size, inner, op)
	case tensor.Int64:
		reduceAlong(tensor.Values[int64](result), x.AsInt64(), outer, size, inner, op)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func reduceAlong[T tensor.Numeric](out, in []T, outer, size, inner int, op reduceOp) {
	for o := 0; o < outer; o++ {
		base := o * size * inner
		for i := 0; i < inner; i++ {
			acc := in[base+i]
			for k := 1; k < size; k++ {
				v := in[base+k*inner+i]
				if op == reduceMax {
					if v > acc {
						acc = v
					}
				} else {
					acc += v
				}
			}
			if op == reduceMean {
				acc /= T(size)
			}
			out[o*inner+i] = acc
		}
	}
}

// splitAt views shape as (outer, shape[dim], inner).
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

// ReducedShape is the shape left after reducing dim.
func ReducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
}
