// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim updates encoder parameters from autodiff gradients. Frozen
// parameters, such as a frozen embedding table, are left untouched.
package optim

import (
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/optim"
	"github.com/born-ml/lanenc/internal/tensor"
)

// Optimizer applies gradient updates to a fixed set of parameters.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig holds the SGD settings.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	return optim.NewSGD(params, config, backend)
}
