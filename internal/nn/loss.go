package nn

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/autodiff"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss()
//	loss := mse.Forward(model.Forward(x), y)
//	loss.Backward()
type MSELoss struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the MSE loss as a 0-D tensor.
//
// Panics if predictions and targets have different shapes.
func (m *MSELoss) Forward(predictions, targets *autodiff.Tensor) *autodiff.Tensor {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}
	return predictions.Sub(targets).Square().Mean()
}
