package ops

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// SumDimOp records a sum along dim.
type SumDimOp struct {
	input  *tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewSumDimOp creates a new SumDimOp. dim must already be non-negative.
func NewSumDimOp(input *tensor.RawTensor, dim int, output *tensor.RawTensor) *SumDimOp {
	return &SumDimOp{input: input, dim: dim, output: output}
}

// Backward broadcasts the gradient back along dim.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandAlong(outputGrad, op.input.Shape(), op.dim, 1, backend)}
}

// Inputs returns x.
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the sum.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }

// MeanDimOp records a mean along dim.
type MeanDimOp struct {
	input  *tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewMeanDimOp creates a new MeanDimOp. dim must already be non-negative.
func NewMeanDimOp(input *tensor.RawTensor, dim int, output *tensor.RawTensor) *MeanDimOp {
	return &MeanDimOp{input: input, dim: dim, output: output}
}

// Backward spreads grad / n evenly along dim.
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := op.input.Shape()[op.dim]
	return []*tensor.RawTensor{expandAlong(outputGrad, op.input.Shape(), op.dim, 1/float64(n), backend)}
}

// Inputs returns x.
func (op *MeanDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the mean.
func (op *MeanDimOp) Output() *tensor.RawTensor { return op.output }

// MaxDimOp records a maximum along dim. The gradient goes to the first
// position holding the maximum; ties do not share it.
type MaxDimOp struct {
	input  *tensor.RawTensor
	dim    int
	output *tensor.RawTensor
}

// NewMaxDimOp creates a new MaxDimOp. dim must already be non-negative.
func NewMaxDimOp(input *tensor.RawTensor, dim int, output *tensor.RawTensor) *MaxDimOp {
	return &MaxDimOp{input: input, dim: dim, output: output}
}

// Backward routes each output gradient to its argmax.
func (op *MaxDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input, backend)
	outer, size, inner := split(op.input.Shape(), op.dim)

	switch grad.DType() {
	case tensor.Float32:
		routeMax(grad.AsFloat32(), op.input.AsFloat32(), op.output.AsFloat32(), outputGrad.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		routeMax(grad.AsFloat64(), op.input.AsFloat64(), op.output.AsFloat64(), outputGrad.AsFloat64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("max_dim backward: unsupported dtype %s", grad.DType()))
	}
	return []*tensor.RawTensor{grad}
}

func routeMax[T tensor.Float](dst, x, maxima, g []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			m := maxima[o*inner+i]
			for k := 0; k < size; k++ {
				at := (o*size+k)*inner + i
				if x[at] == m {
					dst[at] = g[o*inner+i]
					break
				}
			}
		}
	}
}

// Inputs returns x.
func (op *MaxDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the maxima.
func (op *MaxDimOp) Output() *tensor.RawTensor { return op.output }
