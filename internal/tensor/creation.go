package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
//	t := tensor.Zeros[float32](tensor.Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](MustRaw(shape, DataTypeOf[T](), b.Device()), b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones[T Numeric, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// MustFromSlice is FromSlice for literals in tests and examples.
func MustFromSlice[T DType, B Backend](data []T, shape Shape, b B) *Tensor[T, B] {
	t, err := FromSlice[T, B](data, shape, b)
	if err != nil {
		panic(err)
	}
	return t
}

// Randn fills a tensor with N(0, 1) samples drawn from rng using the
// Box-Muller transform. A nil rng uses the global source.
func Randn[T Float, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := 0; i < len(data); i += 2 {
		u1 := 1 - float64n(rng) // (0, 1], keeps the log finite
		u2 := float64n(rng)
		r := math.Sqrt(-2 * math.Log(u1))
		data[i] = T(r * math.Cos(2*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2*math.Pi*u2))
		}
	}
	return t
}

// Uniform fills a tensor with samples from U(low, high).
func Uniform[T Float, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(low + (high-low)*float64n(rng))
	}
	return t
}

// Bernoulli returns a tensor whose elements are scale with probability keep
// and zero otherwise. Used to build inverted-dropout masks.
func Bernoulli[T Float, B Backend](shape Shape, keep, scale float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		if float64n(rng) < keep {
			data[i] = T(scale)
		}
	}
	return t
}

func float64n(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64() //nolint:gosec // G404: sampling weights, not secrets
	}
	return rng.Float64()
}
