package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/lanenc/internal/tensor"
)

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.activation("sigmoid", x, sigmoid)
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.activation("tanh", x, math.Tanh)
}

func (cpu *CPUBackend) activation(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		mapUnary(result, x, func(v float32) float32 { return float32(f(float64(v))) })
	case tensor.Float64:
		mapUnary(result, x, f)
	default:
		panic(fmt.Sprintf("%s: requires a float tensor, got %s", name, x.DType()))
	}
	return result
}

// sigmoid avoids overflow of exp for large negative inputs.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
