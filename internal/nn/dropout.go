package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Dropout zeroes elements with probability P while training and scales the
// survivors by 1/(1-P). In evaluation mode it is the identity.
type Dropout[B tensor.Backend] struct {
	P        float32
	training bool
	rng      *rand.Rand
}

// NewDropout creates a dropout layer in training mode. P must be in [0, 1).
func NewDropout[B tensor.Backend](p float32, rng *rand.Rand) (*Dropout[B], error) {
	if p < 0 || p >= 1 {
		return nil, fmt.Errorf("dropout: probability %v out of range [0, 1)", p)
	}
	return &Dropout[B]{P: p, training: true, rng: rng}, nil
}

// Forward applies inverted dropout when training.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.P == 0 {
		return input
	}
	keep := 1 - float64(d.P)
	mask := tensor.Bernoulli[float32](input.Shape(), keep, 1/keep, d.rng, input.Backend())
	return input.Mul(mask)
}

// Train switches between training and evaluation mode.
func (d *Dropout[B]) Train(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Parameters returns nil; dropout has no weights.
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
