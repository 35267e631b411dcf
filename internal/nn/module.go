// Package nn implements the small set of neural network building blocks
// the notebook trains with.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable tensors with gradient tracking
//   - Linear: Fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh
//   - MSELoss: Mean squared error
//   - Sequential: Container for stacking layers
//
// Every module is built from autodiff.Tensor operations, so gradients of
// any composition come from the engine without layer-specific backward code.
package nn

import (
	"github.com/born-ml/gradbook/internal/autodiff"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger models:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(1, 8, backend, rng),
//	    nn.NewTanh(),
//	    nn.NewLinear(8, 1, backend, rng),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *autodiff.Tensor) *autodiff.Tensor

	// Parameters returns all trainable parameters of this module.
	// Modules without weights return an empty slice.
	Parameters() []*Parameter
}

// ZeroGrad clears the gradients of every parameter of m.
func ZeroGrad(m Module) {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}
