package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Embedding maps int32 indices to rows of a [NumEmbed, EmbedDim] table.
//
//	embed := nn.NewEmbedding(10000, 300, nil, backend)
//	vectors := embed.Forward(indices) // [batch, seq] → [batch, seq, 300]
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B]
	NumEmbed int
	EmbedDim int
}

// NewEmbedding creates a table initialised from N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, rng *rand.Rand, backend B) *Embedding[B] {
	weight := Normal(tensor.Shape{numEmbeddings, embeddingDim}, rng, backend)
	return &Embedding[B]{
		Weight:   NewParameter[B]("weight", weight),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
	}
}

// NewEmbeddingFromPretrained creates a table holding a copy of weight. With
// freeze set, the weight parameter is excluded from optimizer updates.
func NewEmbeddingFromPretrained[B tensor.Backend](weight *tensor.Tensor[float32, B], freeze bool) (*Embedding[B], error) {
	if weight == nil {
		return nil, fmt.Errorf("embedding: nil weight")
	}
	shape := weight.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("embedding: weight must be 2D, got shape %v", shape)
	}

	param := NewParameter[B]("weight", weight.Clone())
	if freeze {
		param.Freeze()
	}
	return &Embedding[B]{
		Weight:   param,
		NumEmbed: shape[0],
		EmbedDim: shape[1],
	}, nil
}

// Forward looks up a row for every index. Panics when an index falls
// outside [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return tensor.Embedding(e.Weight.Tensor(), indices)
}

// Frozen reports whether the table is excluded from updates.
func (e *Embedding[B]) Frozen() bool {
	return !e.Weight.RequiresGrad()
}

// Parameters returns the weight.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}

// StateDict returns {"weight": table}.
func (e *Embedding[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{"weight": e.Weight.Tensor().Raw()}
}

// LoadStateDict copies the "weight" entry into the table.
func (e *Embedding[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadInto(e.Weight, state, "weight")
}
