// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff wraps a backend so that operations are recorded on a tape
// and can be differentiated.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := enc.Forward(ids)
//	grads := autodiff.Backward(out.Pooled, backend)
package autodiff

import (
	"github.com/born-ml/lanenc/internal/autodiff"
	"github.com/born-ml/lanenc/internal/tensor"
)

// Backend is a recording backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// GradientTape is the operation log.
type GradientTape = autodiff.GradientTape

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// New wraps backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// Backward returns the gradient of sum(t) with respect to every tensor on the
// tape, keyed by RawTensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
