package ops

import "github.com/born-ml/lanenc/internal/tensor"

// TransposeOp records a permutation of dimensions.
type TransposeOp struct {
	input  *tensor.RawTensor
	axes   []int
	output *tensor.RawTensor
}

// NewTransposeOp creates a new TransposeOp. Empty axes means reversed order.
func NewTransposeOp(input *tensor.RawTensor, axes []int, output *tensor.RawTensor) *TransposeOp {
	if len(axes) == 0 {
		n := len(input.Shape())
		axes = make([]int, n)
		for i := range axes {
			axes[i] = n - 1 - i
		}
	}
	return &TransposeOp{input: input, axes: append([]int(nil), axes...), output: output}
}

// Backward applies the inverse permutation to the gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// Inputs returns the transposed tensor.
func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the permuted tensor.
func (op *TransposeOp) Output() *tensor.RawTensor { return op.output }
