// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the building blocks of the encoder.
package nn

import (
	"math/rand"

	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

// Module is anything that owns parameters.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named weight tensor that can be frozen.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Embedding is a lookup table layer.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// GRU is a multi-layer, optionally bidirectional gated recurrent unit.
type GRU[B tensor.Backend] = nn.GRU[B]

// GRUConfig holds the GRU hyper-parameters.
type GRUConfig = nn.GRUConfig

// NewEmbeddingFromPretrained copies weight into a new table.
func NewEmbeddingFromPretrained[B tensor.Backend](weight *tensor.Tensor[float32, B], freeze bool) (*Embedding[B], error) {
	return nn.NewEmbeddingFromPretrained(weight, freeze)
}

// NewGRU builds a GRU with PyTorch's uniform initialisation.
func NewGRU[B tensor.Backend](cfg GRUConfig, rng *rand.Rand, backend B) (*GRU[B], error) {
	return nn.NewGRU(cfg, rng, backend)
}

// CountParameters returns the total and trainable parameter counts of m.
func CountParameters[B tensor.Backend](m Module[B]) (total, trainable int) {
	return nn.CountParameters(m)
}
