// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public face of the generic tensor type the encoder is
// built on.
//
//	backend := cpu.New()
//	ids := tensor.MustFromSlice([]int32{1, 2, 0}, tensor.Shape{1, 3}, backend)
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package tensor

import (
	"math/rand"

	"github.com/born-ml/lanenc/internal/tensor"
)

// DType is the element type constraint.
type DType = tensor.DType

// Float constrains floating-point element types.
type Float = tensor.Float

// Numeric constrains element types with arithmetic.
type Numeric = tensor.Numeric

// DataType is the runtime element type tag.
type DataType = tensor.DataType

// Element types.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Bool    DataType = tensor.Bool
)

// Device says where an operation ran.
type Device = tensor.Device

// Devices.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape lists the dimensions of a tensor.
type Shape = tensor.Shape

// RawTensor is the untyped buffer behind every tensor.
type RawTensor = tensor.RawTensor

// Backend executes tensor operations.
type Backend = tensor.Backend

// Tensor is a typed tensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros returns a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, b)
}

// Ones returns a tensor filled with one.
func Ones[T Numeric, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T](shape, b)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice[T DType, B Backend](data []T, shape Shape, b B) *Tensor[T, B] {
	return tensor.MustFromSlice(data, shape, b)
}

// Randn draws every element from N(0, 1). A nil rng uses a fixed seed.
func Randn[T Float, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T](shape, rng, b)
}
