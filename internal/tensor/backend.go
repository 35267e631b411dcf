package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the numerical kernels; they know nothing about gradients.
//
// Implementations:
//   - CPU: pure Go, parallelised elementwise loops
type Backend interface {
	// Element-wise binary operations (NumPy broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	Pow(x *RawTensor, p float64) *RawTensor

	// Math operations (element-wise)
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor

	// Activation functions
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor
	Step(x *RawTensor) *RawTensor // 1 where x > 0, else 0

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor
	Transpose(x *RawTensor) *RawTensor

	// Shape operations
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape
	SumTo(x *RawTensor, shape Shape) *RawTensor  // inverse of Expand

	// Reduction operations
	Sum(x *RawTensor) *RawTensor // total sum (scalar result)

	// Metadata
	Name() string
	Device() Device
}
