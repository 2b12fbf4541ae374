package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalar("mul_scalar", x, scalar, opMul)
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalar("add_scalar", x, scalar, opAdd)
}

func (cpu *CPUBackend) scalar(name string, x *tensor.RawTensor, s any, op binaryOp) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		mapScalar(result, x, scalarAs[float32](name, s), arith[float32](op))
	case tensor.Float64:
		mapScalar(result, x, scalarAs[float64](name, s), arith[float64](op))
	case tensor.Int32:
		mapScalar(result, x, scalarAs[int32](name, s), arith[int32](op))
	case tensor.Int64:
		mapScalar(result, x, scalarAs[int64](name, s), arith[int64](op))
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func mapScalar[T tensor.Numeric](out, x *tensor.RawTensor, s T, f func(a, b T) T) {
	o, in := tensor.Values[T](out), tensor.Values[T](x)
	for i := range o {
		o[i] = f(in[i], s)
	}
}

func scalarAs[T tensor.Numeric](name string, s any) T {
	switch v := s.(type) {
	case float32:
		return T(v)
	case float64:
		return T(v)
	case int:
		return T(v)
	case int32:
		return T(v)
	case int64:
		return T(v)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, s))
	}
}

// Abs returns |x| element-wise.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		mapUnary(result, x, abs[float32])
	case tensor.Float64:
		mapUnary(result, x, abs[float64])
	case tensor.Int32:
		mapUnary(result, x, abs[int32])
	case tensor.Int64:
		mapUnary(result, x, abs[int64])
	default:
		panic(fmt.Sprintf("abs: unsupported dtype %s", x.DType()))
	}
	return result
}

func abs[T tensor.Numeric](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func mapUnary[T tensor.DType](out, x *tensor.RawTensor, f func(T) T) {
	o, in := tensor.Values[T](out), tensor.Values[T](x)
	for i := range o {
		o[i] = f(in[i])
	}
}
