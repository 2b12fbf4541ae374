//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package webgpu

import (
	internalwebgpu "github.com/born-ml/lanenc/internal/backend/webgpu"
	"github.com/born-ml/lanenc/tensor"
)

// Backend is the WebGPU backend.
type Backend = internalwebgpu.Backend

var _ tensor.Backend = (*Backend)(nil)

// New acquires a GPU. Call Release when done.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
