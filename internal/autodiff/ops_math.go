package autodiff

// expFn: output = exp(x), grad_x = grad * exp(x).
// The output itself is saved so the backward pass reuses it.
type expFn struct {
	node
}

func (f *expFn) Backward(grad *Tensor) []*Tensor {
	out := f.saved[0]
	return []*Tensor{grad.Mul(out)}
}

// Exp computes element-wise exponential.
func (t *Tensor) Exp() *Tensor {
	fn := &expFn{node: node{name: "ExpBackward", inputs: []*Tensor{t}}}
	out := record(fn, t.backend.Exp(t.data), t.backend)
	fn.save(out)
	return out
}

// logFn: output = ln(x), grad_x = grad / x.
type logFn struct {
	node
}

func (f *logFn) Backward(grad *Tensor) []*Tensor {
	x := f.saved[0]
	return []*Tensor{grad.Div(x)}
}

// Log computes element-wise natural logarithm.
func (t *Tensor) Log() *Tensor {
	fn := &logFn{node: node{name: "LogBackward", inputs: []*Tensor{t}}}
	fn.save(t)
	return record(fn, t.backend.Log(t.data), t.backend)
}

// sinFn: output = sin(x), grad_x = grad * cos(x).
type sinFn struct {
	node
}

func (f *sinFn) Backward(grad *Tensor) []*Tensor {
	x := f.saved[0]
	return []*Tensor{grad.Mul(x.Cos())}
}

// Sin computes element-wise sine.
func (t *Tensor) Sin() *Tensor {
	fn := &sinFn{node: node{name: "SinBackward", inputs: []*Tensor{t}}}
	fn.save(t)
	return record(fn, t.backend.Sin(t.data), t.backend)
}

// cosFn: output = cos(x), grad_x = -grad * sin(x).
type cosFn struct {
	node
}

func (f *cosFn) Backward(grad *Tensor) []*Tensor {
	x := f.saved[0]
	return []*Tensor{grad.Mul(x.Sin()).Neg()}
}

// Cos computes element-wise cosine.
func (t *Tensor) Cos() *Tensor {
	fn := &cosFn{node: node{name: "CosBackward", inputs: []*Tensor{t}}}
	fn.save(t)
	return record(fn, t.backend.Cos(t.data), t.backend)
}

// tanhFn: output = tanh(x), grad_x = grad * (1 - tanh²(x)).
type tanhFn struct {
	node
}

func (f *tanhFn) Backward(grad *Tensor) []*Tensor {
	out := f.saved[0]
	return []*Tensor{grad.Mul(out.Square().Neg().AddScalar(1))}
}

// Tanh applies the hyperbolic tangent.
func (t *Tensor) Tanh() *Tensor {
	fn := &tanhFn{node: node{name: "TanhBackward", inputs: []*Tensor{t}}}
	out := record(fn, t.backend.Tanh(t.data), t.backend)
	fn.save(out)
	return out
}

// sigmoidFn: output = σ(x), grad_x = grad * σ(x) * (1 - σ(x)).
type sigmoidFn struct {
	node
}

func (f *sigmoidFn) Backward(grad *Tensor) []*Tensor {
	out := f.saved[0]
	return []*Tensor{grad.Mul(out).Mul(out.Neg().AddScalar(1))}
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)).
func (t *Tensor) Sigmoid() *Tensor {
	fn := &sigmoidFn{node: node{name: "SigmoidBackward", inputs: []*Tensor{t}}}
	out := record(fn, t.backend.Sigmoid(t.data), t.backend)
	fn.save(out)
	return out
}

// reluFn: output = max(0, x).
//
// Backward pass:
//   - grad_x = grad * 1[x > 0]; the mask is a constant, so every
//     higher derivative of ReLU is zero.
type reluFn struct {
	node
}

func (f *reluFn) Backward(grad *Tensor) []*Tensor {
	x := f.saved[0]
	mask := New(x.backend.Step(x.data), x.backend)
	return []*Tensor{grad.Mul(mask)}
}

// ReLU applies the rectified linear unit.
func (t *Tensor) ReLU() *Tensor {
	fn := &reluFn{node: node{name: "ReluBackward", inputs: []*Tensor{t}}}
	fn.save(t)
	return record(fn, t.backend.ReLU(t.data), t.backend)
}
