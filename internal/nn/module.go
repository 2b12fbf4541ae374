// Package nn implements the neural network building blocks of the encoder:
// parameters, embedding tables, dropout and a multi-layer, optionally
// bidirectional gated recurrent unit.
package nn

import "github.com/born-ml/lanenc/internal/tensor"

// Module is anything that owns parameters.
type Module[B tensor.Backend] interface {
	// Parameters returns every parameter, frozen ones included.
	Parameters() []*Parameter[B]
}

// Layer is a Module mapping one float tensor to another.
type Layer[B tensor.Backend] interface {
	Module[B]
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// CountParameters returns the total number of scalar parameters in m and how
// many of them are trainable.
func CountParameters[B tensor.Backend](m Module[B]) (total, trainable int) {
	for _, p := range m.Parameters() {
		n := p.Tensor().NumElements()
		total += n
		if p.RequiresGrad() {
			trainable += n
		}
	}
	return total, trainable
}
