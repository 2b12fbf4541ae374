package optim

import (
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

// SGD is stochastic gradient descent with optional momentum:
//
//	velocity = momentum * velocity + grad
//	param    = param - lr * velocity
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]][]float32
	backend    B
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR       float32 // default 0.01
	Momentum float32 // [0, 1)
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float32),
		backend:    backend,
	}
}

// Step updates parameters in place. The update runs on the host buffers so it
// never lands on a recording tape.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := gradientFor(param, grads)
		if grad == nil {
			continue
		}
		param.SetGrad(tensor.New[float32, B](grad, s.backend))

		data := param.Tensor().Data()
		g := grad.AsFloat32()
		if s.momentum == 0 {
			for i := range data {
				data[i] -= s.lr * g[i]
			}
			continue
		}

		v, ok := s.velocities[param]
		if !ok {
			v = make([]float32, len(data))
			s.velocities[param] = v
		}
		for i := range data {
			v[i] = s.momentum*v[i] + g[i]
			data[i] -= s.lr * v[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR changes the learning rate.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}
