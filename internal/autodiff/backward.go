package autodiff

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward differentiates t, seeded with ones, through everything recorded
// on backend's tape. The result maps each reached RawTensor to its gradient.
//
//	grads := autodiff.Backward(loss, backend)
//	dw := grads[w.Raw()]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seed := tensor.MustRaw(t.Shape(), t.DType(), backend.Device())
	switch t.DType() {
	case tensor.Float32:
		fill(seed.AsFloat32(), 1)
	case tensor.Float64:
		fill(seed.AsFloat64(), 1)
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", t.DType()))
	}

	return tape.Backward(t.Raw(), seed, backend)
}

func fill[T tensor.Float](data []T, v T) {
	for i := range data {
		data[i] = v
	}
}
