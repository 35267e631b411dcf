package autodiff

import "github.com/born-ml/gradbook/internal/tensor"

// addFn: output = a + b.
//
// Backward pass:
//   - grad_a = SumTo(grad, a.shape)
//   - grad_b = SumTo(grad, b.shape)
type addFn struct {
	node
	aShape, bShape tensor.Shape
}

func (f *addFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.SumTo(f.aShape), grad.SumTo(f.bShape)}
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor) Add(other *Tensor) *Tensor {
	fn := &addFn{
		node:   node{name: "AddBackward", inputs: []*Tensor{t, other}},
		aShape: t.Shape().Clone(),
		bShape: other.Shape().Clone(),
	}
	return record(fn, t.backend.Add(t.data, other.data), t.backend)
}

// subFn: output = a - b.
//
// Backward pass:
//   - grad_a = SumTo(grad, a.shape)
//   - grad_b = SumTo(-grad, b.shape)
type subFn struct {
	node
	aShape, bShape tensor.Shape
}

func (f *subFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.SumTo(f.aShape), grad.Neg().SumTo(f.bShape)}
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	fn := &subFn{
		node:   node{name: "SubBackward", inputs: []*Tensor{t, other}},
		aShape: t.Shape().Clone(),
		bShape: other.Shape().Clone(),
	}
	return record(fn, t.backend.Sub(t.data, other.data), t.backend)
}

// mulFn: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = SumTo(grad * b, a.shape)
//   - d(a*b)/db = a, so grad_b = SumTo(grad * a, b.shape)
type mulFn struct {
	node
}

func (f *mulFn) Backward(grad *Tensor) []*Tensor {
	a, b := f.saved[0], f.saved[1]
	return []*Tensor{
		grad.Mul(b).SumTo(a.Shape()),
		grad.Mul(a).SumTo(b.Shape()),
	}
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	fn := &mulFn{node: node{name: "MulBackward", inputs: []*Tensor{t, other}}}
	fn.save(t, other)
	return record(fn, t.backend.Mul(t.data, other.data), t.backend)
}

// divFn: output = a / b.
//
// Backward pass:
//   - grad_a = SumTo(grad / b, a.shape)
//   - grad_b = SumTo(-grad * a / b², b.shape)
type divFn struct {
	node
}

func (f *divFn) Backward(grad *Tensor) []*Tensor {
	a, b := f.saved[0], f.saved[1]
	gradA := grad.Div(b).SumTo(a.Shape())
	gradB := grad.Mul(a).Div(b.Mul(b)).Neg().SumTo(b.Shape())
	return []*Tensor{gradA, gradB}
}

// Div performs element-wise division with broadcasting.
func (t *Tensor) Div(other *Tensor) *Tensor {
	fn := &divFn{node: node{name: "DivBackward", inputs: []*Tensor{t, other}}}
	fn.save(t, other)
	return record(fn, t.backend.Div(t.data, other.data), t.backend)
}

// negFn: output = -x, grad_x = -grad.
type negFn struct {
	node
}

func (f *negFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.Neg()}
}

// Neg computes element-wise negation.
func (t *Tensor) Neg() *Tensor {
	fn := &negFn{node: node{name: "NegBackward", inputs: []*Tensor{t}}}
	return record(fn, t.backend.Neg(t.data), t.backend)
}

// addScalarFn: output = x + s, grad_x = grad.
type addScalarFn struct {
	node
}

func (f *addScalarFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad}
}

// AddScalar adds a constant to every element.
func (t *Tensor) AddScalar(s float64) *Tensor {
	fn := &addScalarFn{node: node{name: "AddBackward", inputs: []*Tensor{t}}}
	return record(fn, t.backend.AddScalar(t.data, s), t.backend)
}

// mulScalarFn: output = x * s, grad_x = grad * s.
type mulScalarFn struct {
	node
	s float64
}

func (f *mulScalarFn) Backward(grad *Tensor) []*Tensor {
	return []*Tensor{grad.MulScalar(f.s)}
}

// MulScalar multiplies every element by a constant.
func (t *Tensor) MulScalar(s float64) *Tensor {
	fn := &mulScalarFn{node: node{name: "MulBackward", inputs: []*Tensor{t}}, s: s}
	return record(fn, t.backend.MulScalar(t.data, s), t.backend)
}

// powFn: output = x^p for a constant exponent p.
//
// Backward pass:
//   - d(x^p)/dx = p * x^(p-1), so grad_x = grad * p * x^(p-1)
type powFn struct {
	node
	p float64
}

func (f *powFn) Backward(grad *Tensor) []*Tensor {
	x := f.saved[0]
	if f.p == 1 {
		return []*Tensor{grad}
	}
	return []*Tensor{grad.Mul(x.Pow(f.p - 1).MulScalar(f.p))}
}

// Pow raises every element to a constant power.
func (t *Tensor) Pow(p float64) *Tensor {
	fn := &powFn{node: node{name: "PowBackward", inputs: []*Tensor{t}}, p: p}
	fn.save(t)
	return record(fn, t.backend.Pow(t.data, p), t.backend)
}

// Square computes x².
func (t *Tensor) Square() *Tensor {
	return t.Pow(2)
}

// Sqrt computes √x.
func (t *Tensor) Sqrt() *Tensor {
	return t.Pow(0.5)
}
