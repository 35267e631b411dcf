// Package optim implements optimization algorithms for training the
// notebook's models.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients that Backward accumulated on each
// parameter and update the parameter storage in place.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    loss := mse.Forward(model.Forward(x), y)
//	    if err := loss.Backward(); err != nil {
//	        return err
//	    }
//	    optimizer.Step()
//	}
package optim

import (
	"github.com/born-ml/gradbook/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Parameters whose Grad is nil (not part of the last backward pass)
	// are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// gradData returns the gradient values of param, or nil if it has none.
func gradData(param *nn.Parameter) []float64 {
	if param == nil || param.Grad() == nil {
		return nil
	}
	return param.Grad().Data()
}

func zeroGrad(params []*nn.Parameter) {
	for _, param := range params {
		param.ZeroGrad()
	}
}
