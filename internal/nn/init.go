package nn

import (
	"math/rand"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Uniform returns a float32 tensor with values drawn from U(-bound, bound).
// A nil rng uses the global source.
func Uniform[B tensor.Backend](shape tensor.Shape, bound float64, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return tensor.Uniform[float32](shape, -bound, bound, rng, backend)
}

// Normal returns a float32 tensor with N(0, 1) values.
func Normal[B tensor.Backend](shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, rng, backend)
}

// Zeros returns a zero-filled float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
