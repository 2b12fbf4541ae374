package ops

import "github.com/born-ml/lanenc/internal/tensor"

// SigmoidOp records y = σ(x).
type SigmoidOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{input: input, output: output}
}

// Backward computes ∂L/∂x = grad * y * (1 - y).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY := backend.AddScalar(backend.MulScalar(y, -1.0), 1.0)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Mul(y, oneMinusY))}
}

// Inputs returns x.
func (op *SigmoidOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns y.
func (op *SigmoidOp) Output() *tensor.RawTensor { return op.output }
