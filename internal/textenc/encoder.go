// Package textenc encodes batches of token indices into sentence vectors with
// a recurrent network.
//
// An Encoder embeds the tokens with a (usually frozen) pre-trained table, runs
// a GRU over the sequence, and pools the result:
//
//	enc, err := textenc.New(vocab, wordEmb, textenc.DefaultRNNConfig(),
//	    textenc.OutputConfig{Type: "max"}, true, backend)
//	out, err := enc.Forward(indices) // indices: [batch, tokens] int32, 0 = padding
//	// out.Pooled [batch, 1, 2·512], out.Words [batch, tokens, 2·512], out.Mask [batch, tokens]
package textenc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

// Output is the result of a forward pass.
type Output[B tensor.Backend] struct {
	// Pooled is [batch, 1, D·H] for mean and max pooling and
	// [batch, 1, D·L·H] for final-state pooling.
	Pooled *tensor.Tensor[float32, B]
	// Words holds the last layer's output for every token, [batch, T, D·H].
	Words *tensor.Tensor[float32, B]
	// Mask is [batch, T] and true where the token index is padding.
	Mask *tensor.Tensor[bool, B]
}

// Encoder is the recurrent sentence encoder.
type Encoder[B tensor.Backend] struct {
	embedding *nn.Embedding[B]
	rnn       *nn.GRU[B]
	pooling   PoolKind
	pooler    Pooler[B]
	rnnCfg    RNNConfig
	numToken  int
	backend   B
}

// Option customises construction.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithRand draws the recurrent weights and dropout masks from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// New builds an encoder around a pre-trained [vocab, dim] embedding matrix.
//
// numToken is informational; the table size is taken from wordEmb. With
// freeze set the embedding table never receives updates.
//
// New fails with ErrEmptyEmbedding when wordEmb is nil or not 2-D, with
// ErrUnsupportedCell when rnnCfg.Type is not "gru", and with
// ErrUnsupportedPooling when outCfg.Type is not mean, max or default.
func New[B tensor.Backend](
	numToken int,
	wordEmb *tensor.Tensor[float32, B],
	rnnCfg RNNConfig,
	outCfg OutputConfig,
	freeze bool,
	backend B,
	opts ...Option,
) (*Encoder[B], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if wordEmb == nil || len(wordEmb.Shape()) != 2 {
		return nil, ErrEmptyEmbedding
	}
	if rnnCfg.Type != CellGRU {
		return nil, fmt.Errorf("%w %q (only %q is supported)", ErrUnsupportedCell, rnnCfg.Type, CellGRU)
	}
	pooling, err := ParsePoolKind(outCfg.Type)
	if err != nil {
		return nil, err
	}

	embedding, err := nn.NewEmbeddingFromPretrained(wordEmb, freeze)
	if err != nil {
		return nil, errors.Join(ErrEmptyEmbedding, err)
	}
	rnn, err := nn.NewGRU(rnnCfg.gru(embedding.EmbedDim), o.rng, backend)
	if err != nil {
		return nil, fmt.Errorf("textenc: %w", err)
	}

	return &Encoder[B]{
		embedding: embedding,
		rnn:       rnn,
		pooling:   pooling,
		pooler:    newPooler[B](pooling),
		rnnCfg:    rnnCfg,
		numToken:  numToken,
		backend:   backend,
	}, nil
}

// Forward encodes indices, an int32 [batch, T] tensor where 0 (by absolute
// value) marks padding. Mean and max pooling fail with ErrEmptySequence if a
// row has no real tokens.
func (e *Encoder[B]) Forward(indices *tensor.Tensor[int32, B]) (*Output[B], error) {
	if err := e.checkIndices(indices); err != nil {
		return nil, err
	}

	zero := tensor.Zeros[int32](tensor.Shape{1}, e.backend)
	mask := indices.Abs().Equal(zero)

	x := e.embedding.Forward(indices) // [batch, T, dim]
	if !e.rnnCfg.BatchFirst {
		x = x.Transpose(1, 0, 2)
	}
	words, hN := e.rnn.Forward(x)
	if !e.rnnCfg.BatchFirst {
		words = words.Transpose(1, 0, 2)
	}
	hidden := hN.Transpose(1, 0, 2) // [batch, L·D, H]

	pooled, err := e.pooler.Pool(words, hidden, mask)
	if err != nil {
		return nil, err
	}
	return &Output[B]{Pooled: pooled, Words: words, Mask: mask}, nil
}

func (e *Encoder[B]) checkIndices(indices *tensor.Tensor[int32, B]) error {
	if indices == nil || len(indices.Shape()) != 2 {
		var shape tensor.Shape
		if indices != nil {
			shape = indices.Shape()
		}
		return fmt.Errorf("%w: want [batch, tokens], got %v", ErrInvalidIndices, shape)
	}
	vocab := int32(e.embedding.NumEmbed) //nolint:gosec // table sizes fit in int32
	for i, idx := range indices.Data() {
		if idx < 0 || idx >= vocab {
			return fmt.Errorf("%w: index %d at position %d outside [0, %d)", ErrInvalidIndices, idx, i, vocab)
		}
	}
	return nil
}

// Pooling returns the pooling strategy chosen at construction.
func (e *Encoder[B]) Pooling() PoolKind {
	return e.pooling
}

// RNNConfig returns the recurrent layer settings.
func (e *Encoder[B]) RNNConfig() RNNConfig {
	return e.rnnCfg
}

// NumToken returns the vocabulary size given at construction.
func (e *Encoder[B]) NumToken() int {
	return e.numToken
}

// WordDim returns the embedding width.
func (e *Encoder[B]) WordDim() int {
	return e.embedding.EmbedDim
}

// OutputDim returns the width of the pooled vector.
func (e *Encoder[B]) OutputDim() int {
	w := e.rnnCfg.NumDirections() * e.rnnCfg.HiddenSize
	if e.pooling == PoolFinalState {
		w *= e.rnnCfg.NumLayers
	}
	return w
}

// Train toggles training mode of the recurrent layer (dropout between
// stacked layers). The embedding table has no mode.
func (e *Encoder[B]) Train(training bool) {
	e.rnn.Train(training)
}

// Training reports whether dropout is active.
func (e *Encoder[B]) Training() bool {
	return e.rnn.Training()
}

// Parameters returns the embedding table followed by the recurrent weights.
func (e *Encoder[B]) Parameters() []*nn.Parameter[B] {
	return append(e.embedding.Parameters(), e.rnn.Parameters()...)
}

const (
	embeddingPrefix = "embedding."
	rnnPrefix       = "lstm."
)

// StateDict returns all weights keyed as embedding.weight and
// lstm.<recurrent parameter>.
func (e *Encoder[B]) StateDict() map[string]*tensor.RawTensor {
	state := nn.WithPrefix(embeddingPrefix, e.embedding.StateDict())
	for k, v := range nn.WithPrefix(rnnPrefix, e.rnn.StateDict()) {
		state[k] = v
	}
	return state
}

// LoadStateDict restores weights saved by StateDict. Every key must be
// present with a matching shape.
func (e *Encoder[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if err := e.embedding.LoadStateDict(nn.Subset(embeddingPrefix, state)); err != nil {
		return fmt.Errorf("textenc: embedding: %w", err)
	}
	if err := e.rnn.LoadStateDict(nn.Subset(rnnPrefix, state)); err != nil {
		return fmt.Errorf("textenc: %w", err)
	}
	return nil
}
