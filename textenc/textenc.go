// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package textenc encodes padded batches of token indices into sentence
// vectors with an embedding table, a GRU and a pooling step.
//
//	enc, err := textenc.New(vocab, table, textenc.DefaultRNNConfig(),
//	    textenc.OutputConfig{Type: "max"}, true, cpu.New())
//	out, err := enc.Forward(ids) // ids: [batch, tokens] int32, 0 = padding
package textenc

import (
	"github.com/born-ml/lanenc/internal/tensor"
	"github.com/born-ml/lanenc/internal/textenc"
)

// Encoder is the recurrent sentence encoder.
type Encoder[B tensor.Backend] = textenc.Encoder[B]

// Output holds the pooled vectors, per-token vectors and padding mask.
type Output[B tensor.Backend] = textenc.Output[B]

// RNNConfig holds the recurrent layer settings.
type RNNConfig = textenc.RNNConfig

// OutputConfig selects the pooling strategy.
type OutputConfig = textenc.OutputConfig

// PoolKind is a pooling strategy.
type PoolKind = textenc.PoolKind

// Pooling strategies.
const (
	PoolMean       = textenc.PoolMean
	PoolMax        = textenc.PoolMax
	PoolFinalState = textenc.PoolFinalState
)

// Option customises New.
type Option = textenc.Option

// LanguageEncoder is the interface shared by registered encoders.
type LanguageEncoder[B tensor.Backend] = textenc.LanguageEncoder[B]

// Spec describes an encoder to build through a Registry.
type Spec[B tensor.Backend] = textenc.Spec[B]

// Builder constructs an encoder from a Spec.
type Builder[B tensor.Backend] = textenc.Builder[B]

// Registry maps encoder names to builders.
type Registry[B tensor.Backend] = textenc.Registry[B]

// Errors.
var (
	ErrEmptyEmbedding     = textenc.ErrEmptyEmbedding
	ErrUnsupportedCell    = textenc.ErrUnsupportedCell
	ErrUnsupportedPooling = textenc.ErrUnsupportedPooling
	ErrEmptySequence      = textenc.ErrEmptySequence
	ErrInvalidIndices     = textenc.ErrInvalidIndices
	ErrUnknownEncoder     = textenc.ErrUnknownEncoder
	ErrDuplicateEncoder   = textenc.ErrDuplicateEncoder
)

// DefaultRNNConfig is a single bidirectional GRU layer of 512 units.
func DefaultRNNConfig() RNNConfig {
	return textenc.DefaultRNNConfig()
}

// New builds an encoder around a pre-trained [vocab, dim] table.
func New[B tensor.Backend](
	numToken int,
	wordEmb *tensor.Tensor[float32, B],
	rnnCfg RNNConfig,
	outCfg OutputConfig,
	freeze bool,
	backend B,
	opts ...Option,
) (*Encoder[B], error) {
	return textenc.New(numToken, wordEmb, rnnCfg, outCfg, freeze, backend, opts...)
}

// WithRand is passed to New to seed weight initialisation and dropout.
var WithRand = textenc.WithRand

// DefaultRegistry returns a registry holding "rnn" and its alias "lstm".
func DefaultRegistry[B tensor.Backend]() *Registry[B] {
	return textenc.DefaultRegistry[B]()
}

// NewRegistry returns an empty registry.
func NewRegistry[B tensor.Backend]() *Registry[B] {
	return textenc.NewRegistry[B]()
}

// RegisterBuiltins installs the recurrent encoder under "rnn" and "lstm".
func RegisterBuiltins[B tensor.Backend](r *Registry[B]) error {
	return textenc.RegisterBuiltins(r)
}
