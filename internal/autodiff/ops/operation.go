// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and maps an output gradient to one gradient per input:
//   - AddOp, SubOp, MulOp: element-wise with broadcast reduction
//   - MatMulOp: d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad
//   - SigmoidOp, TanhOp: derivatives expressed through the output
//   - CatOp, ChunkOp, ReshapeOp, TransposeOp: gradient routing
//   - EmbeddingOp, IndexSelectOp: scatter-add
//   - SumDimOp, MeanDimOp, MaxDimOp: reductions
package ops

import "github.com/born-ml/lanenc/internal/tensor"

// Operation is a differentiable operation in the computation graph.
type Operation interface {
	// Backward returns one gradient per input, in Inputs() order. A nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation is an operation with several outputs (Chunk). The tape
// collects gradients for all outputs, substituting zeros for outputs that
// received none, before calling BackwardMulti.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes input gradients from the gradients of every output.
	BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}
