package nn

import "github.com/born-ml/lanenc/internal/tensor"

// Parameter is a named weight tensor. Frozen parameters keep their values:
// optimizers skip them even when a gradient was computed.
//
//	weight := nn.NewParameter("weight_ih_l0", w)
//	weight.Freeze()
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
	frozen bool
}

// NewParameter creates a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the last gradient set, or nil.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// Freeze stops updates to this parameter.
func (p *Parameter[B]) Freeze() {
	p.frozen = true
}

// Unfreeze allows updates again.
func (p *Parameter[B]) Unfreeze() {
	p.frozen = false
}

// RequiresGrad reports whether optimizers should update the parameter.
func (p *Parameter[B]) RequiresGrad() bool {
	return !p.frozen
}
