package ops

import "github.com/born-ml/lanenc/internal/tensor"

// TanhOp records y = tanh(x).
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

// Backward computes ∂L/∂x = grad * (1 - y²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY2 := backend.AddScalar(backend.MulScalar(backend.Mul(y, y), -1.0), 1.0)
	return []*tensor.RawTensor{backend.Mul(outputGrad, oneMinusY2)}
}

// Inputs returns x.
func (op *TanhOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns y.
func (op *TanhOp) Output() *tensor.RawTensor { return op.output }
