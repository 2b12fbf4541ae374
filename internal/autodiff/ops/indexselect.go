package ops

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// IndexSelectOp records y = x.IndexSelect(dim, index).
type IndexSelectOp struct {
	input  *tensor.RawTensor
	dim    int
	index  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewIndexSelectOp creates a new IndexSelectOp. dim must already be
// non-negative.
func NewIndexSelectOp(input *tensor.RawTensor, dim int, index, output *tensor.RawTensor) *IndexSelectOp {
	return &IndexSelectOp{input: input, dim: dim, index: index, output: output}
}

// Backward scatter-adds the gradient slices back to their source positions.
func (op *IndexSelectOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input, backend)
	outer, size, inner := split(op.input.Shape(), op.dim)
	idx := op.index.AsInt32()

	switch grad.DType() {
	case tensor.Float32:
		scatterAlong(grad.AsFloat32(), outputGrad.AsFloat32(), idx, outer, size, inner)
	case tensor.Float64:
		scatterAlong(grad.AsFloat64(), outputGrad.AsFloat64(), idx, outer, size, inner)
	default:
		panic(fmt.Sprintf("index_select backward: unsupported dtype %s", grad.DType()))
	}
	return []*tensor.RawTensor{grad}
}

func scatterAlong[T tensor.Float](dst, src []T, idx []int32, outer, size, inner int) {
	n := len(idx)
	for o := 0; o < outer; o++ {
		for j, k := range idx {
			d := dst[(o*size+int(k))*inner : (o*size+int(k)+1)*inner]
			s := src[(o*n+j)*inner : (o*n+j+1)*inner]
			for i := range d {
				d[i] += s[i]
			}
		}
	}
}

// Inputs returns x; the index carries no gradient.
func (op *IndexSelectOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the selection.
func (op *IndexSelectOp) Output() *tensor.RawTensor { return op.output }
