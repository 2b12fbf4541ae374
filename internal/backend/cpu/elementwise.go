package cpu

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
)

func arith[T tensor.Numeric](op binaryOp) func(x, y T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	default:
		panic("unknown binary op")
	}
}

func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, op binaryOp) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	result := tensor.MustRaw(outShape, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		applyBinary(result, a, b, needsBroadcast, arith[float32](op))
	case tensor.Float64:
		applyBinary(result, a, b, needsBroadcast, arith[float64](op))
	case tensor.Int32:
		applyBinary(result, a, b, needsBroadcast, arith[int32](op))
	case tensor.Int64:
		applyBinary(result, a, b, needsBroadcast, arith[int64](op))
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

// applyBinary writes f(a, b) into out, broadcasting operands to out's shape.
func applyBinary[T, R tensor.DType](out, a, b *tensor.RawTensor, broadcast bool, f func(x, y T) R) {
	o := tensor.Values[R](out)
	x := tensor.Values[T](a)
	y := tensor.Values[T](b)

	if !broadcast {
		for i := range o {
			o[i] = f(x[i], y[i])
		}
		return
	}

	outStrides := out.Strides()
	aStrides := broadcastStrides(a.Shape(), out.Shape())
	bStrides := broadcastStrides(b.Shape(), out.Shape())
	for i := range o {
		o[i] = f(x[flatIndex(i, outStrides, aStrides)], y[flatIndex(i, outStrides, bStrides)])
	}
}

// broadcastStrides returns strides of in aligned to out's rank, with zero
// stride on every broadcast dimension.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range in {
		if in[i] != 1 {
			strides[offset+i] = inStrides[i]
		}
	}
	return strides
}

// flatIndex maps a flat output index to the flat index of a broadcast input.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for d, s := range outStrides {
		idx += (outIdx / s) * inStrides[d]
		outIdx %= s
	}
	return idx
}

// Equal compares element-wise with broadcasting; the result is a bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("equal: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("equal: %v", err))
	}
	result := tensor.MustRaw(outShape, tensor.Bool, cpu.device)

	switch a.DType() {
	case tensor.Float32:
		applyBinary(result, a, b, needsBroadcast, eq[float32])
	case tensor.Float64:
		applyBinary(result, a, b, needsBroadcast, eq[float64])
	case tensor.Int32:
		applyBinary(result, a, b, needsBroadcast, eq[int32])
	case tensor.Int64:
		applyBinary(result, a, b, needsBroadcast, eq[int64])
	case tensor.Bool:
		applyBinary(result, a, b, needsBroadcast, eq[bool])
	}
	return result
}

func eq[T comparable](x, y T) bool { return x == y }
