package nn

import (
	"github.com/born-ml/gradbook/internal/autodiff"
)

// ReLU applies f(x) = max(0, x) element-wise.
type ReLU struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation.
func (r *ReLU) Forward(input *autodiff.Tensor) *autodiff.Tensor {
	return input.ReLU()
}

// Parameters returns nil; activations have no weights.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
type Sigmoid struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies Sigmoid activation.
func (s *Sigmoid) Forward(input *autodiff.Tensor) *autodiff.Tensor {
	return input.Sigmoid()
}

// Parameters returns nil.
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh applies the hyperbolic tangent element-wise.
type Tanh struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies Tanh activation.
func (t *Tanh) Forward(input *autodiff.Tensor) *autodiff.Tensor {
	return input.Tanh()
}

// Parameters returns nil.
func (t *Tanh) Parameters() []*Parameter {
	return nil
}
