package tensor

// Backend is the compute contract every backend implements. Kernels receive
// and return RawTensors; shape or dtype mismatches are programming errors and
// panic with a message naming the operation.
//
// Implementations:
//   - backend/cpu: pure Go
//   - backend/webgpu: WGSL compute shaders for the hot kernels (windows)
//   - autodiff: decorator that records a gradient tape around another backend
type Backend interface {
	// Element-wise binary operations with broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2D operands: (M, K) @ (K, N) → (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations.
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Activations.
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Abs and Equal are used for mask derivation and are never differentiated.
	Abs(x *RawTensor) *RawTensor
	Equal(a, b *RawTensor) *RawTensor // bool result

	// Reductions along one dimension.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Manipulation.
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Chunk(x *RawTensor, n, dim int) []*RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor

	// Indexing.
	Embedding(weight, indices *RawTensor) *RawTensor            // rows of weight, shape indices.Shape()+[dim]
	IndexSelect(x *RawTensor, dim int, index *RawTensor) *RawTensor // int32 index along dim

	// Metadata.
	Name() string
	Device() Device
}
