package ops

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// EmbeddingOp records a row lookup output[i] = weight[indices[i]].
// Rows looked up more than once accumulate their gradients:
//
//	indices = [0, 1, 0], grad = [[1,2], [3,4], [5,6]]
//	grad_weight[0] = [6, 8], grad_weight[1] = [3, 4]
type EmbeddingOp struct {
	weight  *tensor.RawTensor
	indices *tensor.RawTensor
	output  *tensor.RawTensor
}

// NewEmbeddingOp creates a new EmbeddingOp.
func NewEmbeddingOp(weight, indices, output *tensor.RawTensor) *EmbeddingOp {
	return &EmbeddingOp{weight: weight, indices: indices, output: output}
}

// Backward scatter-adds gradient rows into a zero weight gradient.
func (op *EmbeddingOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.weight, backend)
	dim := op.weight.Shape()[1]
	idx := op.indices.AsInt32()

	switch grad.DType() {
	case tensor.Float32:
		scatterRows(grad.AsFloat32(), outputGrad.AsFloat32(), idx, dim)
	case tensor.Float64:
		scatterRows(grad.AsFloat64(), outputGrad.AsFloat64(), idx, dim)
	default:
		panic(fmt.Sprintf("embedding backward: unsupported dtype %s", grad.DType()))
	}
	return []*tensor.RawTensor{grad}
}

func scatterRows[T tensor.Float](dst, src []T, idx []int32, dim int) {
	for i, row := range idx {
		d := dst[int(row)*dim : (int(row)+1)*dim]
		s := src[i*dim : (i+1)*dim]
		for j := range d {
			d[j] += s[j]
		}
	}
}

// Inputs returns the weight only; indices carry no gradient.
func (op *EmbeddingOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.weight} }

// Output returns the looked-up rows.
func (op *EmbeddingOp) Output() *tensor.RawTensor { return op.output }
