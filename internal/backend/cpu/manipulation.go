package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Cat concatenates tensors along dim. Shapes must agree elsewhere.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}
	first := tensors[0]
	ref := first.Shape()
	dim = ref.NormalizeDim(dim)

	outShape := ref.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if t.DType() != first.DType() || len(s) != len(ref) {
			panic(fmt.Sprintf("cat: tensor %d has %s%v, expected %s with rank %d", i, t.DType(), s, first.DType(), len(ref)))
		}
		for d := range s {
			if d != dim && s[d] != ref[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dim %d: %v vs %v", d, s, ref))
			}
		}
		outShape[dim] += s[dim]
	}

	result := tensor.MustRaw(outShape, first.DType(), cpu.device)
	elem := first.DType().Size()
	outer, _, inner := splitAt(outShape, dim)
	dst := result.Data()
	outRow := outShape[dim] * inner * elem

	offset := 0
	for _, t := range tensors {
		width := t.Shape()[dim] * inner * elem
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*outRow+offset:o*outRow+offset+width], src[o*width:(o+1)*width])
		}
		offset += width
	}
	return result
}

// Chunk splits x into n equal parts along dim.
func (cpu *CPUBackend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)
	if n <= 0 || shape[dim]%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d of %v is not divisible into %d parts", dim, shape, n))
	}

	part := shape[dim] / n
	partShape := shape.Clone()
	partShape[dim] = part

	elem := x.DType().Size()
	outer, _, inner := splitAt(shape, dim)
	src := x.Data()
	row := shape[dim] * inner * elem
	width := part * inner * elem

	out := make([]*tensor.RawTensor, n)
	for c := range out {
		r := tensor.MustRaw(partShape, x.DType(), cpu.device)
		dst := r.Data()
		for o := 0; o < outer; o++ {
			start := o*row + c*width
			copy(dst[o*width:(o+1)*width], src[start:start+width])
		}
		out[c] = r
	}
	return out
}

// Unsqueeze inserts a size-1 dimension at dim (0 ≤ dim ≤ rank, negative
// values count from the end).
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dim %d out of range for shape %v", dim, shape))
	}
	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return cpu.Reshape(x, out)
}

// Squeeze removes the size-1 dimension at dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d of %v is not 1", dim, shape))
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	return cpu.Reshape(x, out)
}
