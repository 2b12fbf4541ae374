package textenc

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Pooler reduces the recurrent outputs of a batch to one vector per sequence.
//
//	words:  [batch, T, D·H]   per-token outputs
//	hidden: [batch, L·D, H]   final states, batch-major
//	mask:   [batch, T]        true at padding
//
// The result is [batch, 1, width].
type Pooler[B tensor.Backend] interface {
	Pool(words, hidden *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B]) (*tensor.Tensor[float32, B], error)
}

func newPooler[B tensor.Backend](kind PoolKind) Pooler[B] {
	switch kind {
	case PoolMean:
		return maskedPool[B]{reduce: func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
			return x.MeanDim(0, true)
		}}
	case PoolMax:
		return maskedPool[B]{reduce: func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
			return x.MaxDim(0, true)
		}}
	default:
		return finalStatePool[B]{}
	}
}

// maskedPool reduces each sequence over its non-padded positions only.
type maskedPool[B tensor.Backend] struct {
	reduce func(*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

func (p maskedPool[B]) Pool(words, _ *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B]) (*tensor.Tensor[float32, B], error) {
	shape := words.Shape()
	batch, steps := shape[0], shape[1]
	padded := mask.Data()

	valid := make([][]int32, batch)
	for b := range valid {
		for t := 0; t < steps; t++ {
			if !padded[b*steps+t] {
				valid[b] = append(valid[b], int32(t))
			}
		}
		if len(valid[b]) == 0 {
			return nil, fmt.Errorf("%w: batch row %d", ErrEmptySequence, b)
		}
	}

	backend := words.Backend()
	seqs := words.Chunk(batch, 0)
	rows := make([]*tensor.Tensor[float32, B], batch)
	for b, seq := range seqs {
		idx := tensor.MustFromSlice(valid[b], tensor.Shape{len(valid[b])}, backend)
		rows[b] = p.reduce(seq.Squeeze(0).IndexSelect(0, idx)) // [1, D·H]
	}
	return tensor.Cat(rows, 0).Unsqueeze(1), nil
}

// finalStatePool flattens the final states of every layer and direction.
type finalStatePool[B tensor.Backend] struct{}

func (finalStatePool[B]) Pool(_, hidden *tensor.Tensor[float32, B], _ *tensor.Tensor[bool, B]) (*tensor.Tensor[float32, B], error) {
	shape := hidden.Shape()
	return hidden.Reshape(shape[0], 1, shape[1]*shape[2]), nil
}
