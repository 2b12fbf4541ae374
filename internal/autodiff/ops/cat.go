package ops

import "github.com/born-ml/lanenc/internal/tensor"

// CatOp records a concatenation along dim. Each input receives the slice of
// the output gradient it contributed.
type CatOp struct {
	inputs []*tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewCatOp creates a new CatOp. dim must already be non-negative.
func NewCatOp(inputs []*tensor.RawTensor, dim int, output *tensor.RawTensor) *CatOp {
	return &CatOp{inputs: append([]*tensor.RawTensor(nil), inputs...), dim: dim, output: output}
}

// Backward splits the gradient at the input boundaries.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	start := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = sliceAlong(outputGrad, op.dim, start, size, backend)
		start += size
	}
	return grads
}

// Inputs returns the concatenated tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the concatenation.
func (op *CatOp) Output() *tensor.RawTensor { return op.output }
