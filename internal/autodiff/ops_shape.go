package autodiff

import "github.com/born-ml/gradbook/internal/tensor"

// matMulFn: output = A @ B.
//
// Backward pass:
//   - grad_A = grad @ Bᵀ
//   - grad_B = Aᵀ @ grad
type matMulFn struct {
	node
}

func (f *matMulFn) Backward(grad *Tensor) []*Tensor {
	a, b := f.saved[0], f.saved[1]
	return []*Tensor{grad.MatMul(b.T()), a.T().MatMul(grad)}
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	fn := &matMulFn{node: node{name: "MmBackward", inputs: []*Tensor{t, other}}}
	fn.save(t, other)
	return record(fn, t.backend.MatMul(t.data, other.data), t.backend)
}

// transposeFn: output = xᵀ, grad_x = gradᵀ.
type transposeFn struct {
	node
}

func (f *transposeFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.T()}
}

// T transposes a 2D tensor.
func (t *Tensor) T() *Tensor {
	fn := &transposeFn{node: node{name: "TBackward", inputs: []*Tensor{t}}}
	return record(fn, t.backend.Transpose(t.data), t.backend)
}

// reshapeFn: output = x viewed with a new shape, grad_x = grad reshaped back.
type reshapeFn struct {
	node
	inShape tensor.Shape
}

func (f *reshapeFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.Reshape(f.inShape)}
}

// Reshape returns a tensor with the same elements and a new shape.
func (t *Tensor) Reshape(shape tensor.Shape) *Tensor {
	fn := &reshapeFn{
		node:    node{name: "ReshapeBackward", inputs: []*Tensor{t}},
		inShape: t.Shape().Clone(),
	}
	return record(fn, t.backend.Reshape(t.data, shape), t.backend)
}

// sumFn: output = Σx (0-D), grad_x = grad expanded to x's shape.
type sumFn struct {
	node
	inShape tensor.Shape
}

func (f *sumFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.Expand(f.inShape)}
}

// Sum reduces all elements to a 0-D tensor.
func (t *Tensor) Sum() *Tensor {
	fn := &sumFn{
		node:    node{name: "SumBackward", inputs: []*Tensor{t}},
		inShape: t.Shape().Clone(),
	}
	return record(fn, t.backend.Sum(t.data), t.backend)
}

// Mean averages all elements into a 0-D tensor.
func (t *Tensor) Mean() *Tensor {
	return t.Sum().MulScalar(1 / float64(t.NumElements()))
}

// sumToFn: output = x summed down to shape, grad_x = grad expanded back.
type sumToFn struct {
	node
	inShape tensor.Shape
}

func (f *sumToFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.Expand(f.inShape)}
}

// SumTo sums over broadcast dimensions so the result has shape.
// It undoes broadcasting in the backward pass of binary operations.
// When the shapes already match, the tensor is returned unchanged.
func (t *Tensor) SumTo(shape tensor.Shape) *Tensor {
	if t.Shape().Equal(shape) {
		return t
	}
	fn := &sumToFn{
		node:    node{name: "SumToBackward", inputs: []*Tensor{t}},
		inShape: t.Shape().Clone(),
	}
	return record(fn, t.backend.SumTo(t.data, shape), t.backend)
}

// expandFn: output = x broadcast to shape, grad_x = SumTo(grad, x.shape).
type expandFn struct {
	node
	inShape tensor.Shape
}

func (f *expandFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.SumTo(f.inShape)}
}

// Expand broadcasts the tensor to shape.
// When the shapes already match, the tensor is returned unchanged.
func (t *Tensor) Expand(shape tensor.Shape) *Tensor {
	if t.Shape().Equal(shape) {
		return t
	}
	fn := &expandFn{
		node:    node{name: "ExpandBackward", inputs: []*Tensor{t}},
		inShape: t.Shape().Clone(),
	}
	return record(fn, t.backend.Expand(t.data, shape), t.backend)
}
