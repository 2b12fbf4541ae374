// Package optim implements parameter updates from autodiff gradients.
//
//	grads := autodiff.Backward(loss, backend)
//	opt.Step(grads)
//	opt.ZeroGrad()
//
// Frozen parameters (nn.Parameter.Freeze) are never modified.
package optim

import (
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

// Optimizer applies gradient updates to a fixed set of parameters.
type Optimizer interface {
	// Step updates every trainable parameter that has an entry in grads.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients stored on the parameters.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// gradientFor returns the gradient of a trainable parameter, or nil when the
// parameter is frozen or took no part in the computation.
func gradientFor[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil || !param.RequiresGrad() {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
