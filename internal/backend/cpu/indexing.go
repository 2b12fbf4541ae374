package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Embedding copies weight rows for every index.
// weight is [vocab, dim], indices is int32 of any shape, the result has
// shape indices.Shape()+[dim].
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got %v", ws))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	vocab, dim := ws[0], ws[1]
	outShape := append(indices.Shape().Clone(), dim)
	result := tensor.MustRaw(outShape, weight.DType(), cpu.device)

	row := dim * weight.DType().Size()
	src, dst := weight.Data(), result.Data()
	for i, idx := range indices.AsInt32() {
		if idx < 0 || int(idx) >= vocab {
			panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", idx, vocab))
		}
		copy(dst[i*row:(i+1)*row], src[int(idx)*row:(int(idx)+1)*row])
	}
	return result
}

// IndexSelect gathers the slices of x at the int32 positions in index along
// dim. index must be 1D.
func (cpu *CPUBackend) IndexSelect(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)
	if index.DType() != tensor.Int32 || len(index.Shape()) != 1 {
		panic(fmt.Sprintf("index_select: index must be 1D int32, got %s%v", index.DType(), index.Shape()))
	}

	idx := index.AsInt32()
	outShape := shape.Clone()
	outShape[dim] = len(idx)
	result := tensor.MustRaw(outShape, x.DType(), cpu.device)

	elem := x.DType().Size()
	outer, size, inner := splitAt(shape, dim)
	width := inner * elem
	src, dst := x.Data(), result.Data()

	for o := 0; o < outer; o++ {
		for j, k := range idx {
			if k < 0 || int(k) >= size {
				panic(fmt.Sprintf("index_select: index %d out of range [0, %d)", k, size))
			}
			from := (o*size + int(k)) * width
			to := (o*len(idx) + j) * width
			copy(dst[to:to+width], src[from:from+width])
		}
	}
	return result
}
