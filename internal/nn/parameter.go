package nn

import (
	"github.com/born-ml/gradbook/internal/autodiff"
)

// Parameter represents a trainable parameter in a neural network.
//
// The wrapped tensor is a leaf that requires gradients, so Backward
// accumulates into it directly.
//
// Example:
//
//	weight := nn.NewParameter("weight", w)
//	loss.Backward()
//	g := weight.Grad()
type Parameter struct {
	name   string           // Parameter name (e.g., "weight", "bias")
	tensor *autodiff.Tensor // Leaf tensor holding the values
}

// NewParameter marks t as requiring gradients and wraps it.
// The tensor is named after the parameter for graph rendering.
func NewParameter(name string, t *autodiff.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t.RequireGrad().SetName(name),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *autodiff.Tensor {
	return p.tensor
}

// Grad returns the accumulated gradient.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *autodiff.Tensor {
	return p.tensor.Grad()
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.tensor.ZeroGrad()
}
