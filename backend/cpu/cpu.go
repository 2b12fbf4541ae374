// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go backend.
package cpu

import (
	internalcpu "github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/tensor"
)

// Backend is the CPU backend.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// New returns a CPU backend that splits large kernels across cores.
func New() *Backend {
	return internalcpu.New()
}

// NewSequential returns a CPU backend that never starts goroutines.
func NewSequential() *Backend {
	return internalcpu.NewSequential()
}
