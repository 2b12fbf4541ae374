package ops

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// reduceBroadcast sums grad down to targetShape, undoing forward broadcasting.
//
//	Forward:  a[3,1] + b[3,4] → c[3,4]
//	Backward: grad_c[3,4] → grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}
	for i, d := range targetShape {
		if d == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}
	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// zerosLike allocates a zero tensor with x's shape and dtype.
func zerosLike(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return tensor.MustRaw(x.Shape(), x.DType(), backend.Device())
}

// sliceAlong copies x[..., start:start+length, ...] along dim.
func sliceAlong(x *tensor.RawTensor, dim, start, length int, backend tensor.Backend) *tensor.RawTensor {
	shape := x.Shape()
	outShape := shape.Clone()
	outShape[dim] = length
	result := tensor.MustRaw(outShape, x.DType(), backend.Device())

	outer, size, inner := split(shape, dim)
	elem := x.DType().Size()
	width := length * inner * elem
	row := size * inner * elem
	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		from := o*row + start*inner*elem
		copy(dst[o*width:(o+1)*width], src[from:from+width])
	}
	return result
}

// split views shape as (outer, shape[dim], inner).
func split(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

// expandAlong broadcasts grad, which has dim reduced (or kept as 1), back to
// shape, multiplying by scale.
func expandAlong(grad *tensor.RawTensor, shape tensor.Shape, dim int, scale float64, backend tensor.Backend) *tensor.RawTensor {
	result := tensor.MustRaw(shape, grad.DType(), backend.Device())
	outer, size, inner := split(shape, dim)
	switch grad.DType() {
	case tensor.Float32:
		expand(result.AsFloat32(), grad.AsFloat32(), outer, size, inner, float32(scale))
	case tensor.Float64:
		expand(result.AsFloat64(), grad.AsFloat64(), outer, size, inner, scale)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", grad.DType()))
	}
	return result
}

func expand[T tensor.Float](dst, src []T, outer, size, inner int, scale T) {
	for o := 0; o < outer; o++ {
		for k := 0; k < size; k++ {
			for i := 0; i < inner; i++ {
				dst[(o*size+k)*inner+i] = src[o*inner+i] * scale
			}
		}
	}
}
