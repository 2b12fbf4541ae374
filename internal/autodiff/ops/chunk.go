package ops

import "github.com/born-ml/lanenc/internal/tensor"

// ChunkOp records the split of one tensor into equal parts along dim.
type ChunkOp struct {
	input   *tensor.RawTensor
	dim     int
	outputs []*tensor.RawTensor
}

// NewChunkOp creates a new ChunkOp. dim must already be non-negative.
func NewChunkOp(input *tensor.RawTensor, dim int, outputs []*tensor.RawTensor) *ChunkOp {
	return &ChunkOp{input: input, dim: dim, outputs: append([]*tensor.RawTensor(nil), outputs...)}
}

// Backward is only meaningful with all output gradients; see BackwardMulti.
func (op *ChunkOp) Backward(_ *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	panic("chunk: Backward called on a multi-output operation, use BackwardMulti")
}

// BackwardMulti concatenates the per-part gradients.
func (op *ChunkOp) BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Cat(outputGrads, op.dim)}
}

// Inputs returns the chunked tensor.
func (op *ChunkOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the first part.
func (op *ChunkOp) Output() *tensor.RawTensor { return op.outputs[0] }

// Outputs returns every part.
func (op *ChunkOp) Outputs() []*tensor.RawTensor { return op.outputs }
