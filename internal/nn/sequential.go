package nn

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/autodiff"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(1, 8, backend, rng),
//	    nn.NewTanh(),
//	    nn.NewLinear(8, 1, backend, rng),
//	)
//	output := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
//
// Parameters and their tensors are renamed with their module index
// ("0.weight"), which keeps state dict keys unique and graph renderings
// readable.
func NewSequential(modules ...Module) *Sequential {
	for i, module := range modules {
		for _, p := range module.Parameters() {
			p.name = fmt.Sprintf("%d.%s", i, p.name)
			p.tensor.SetName(p.name)
		}
	}
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *autodiff.Tensor) *autodiff.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns the parameters of all modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}
