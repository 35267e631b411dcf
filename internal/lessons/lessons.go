// Package lessons is the gradbook notebook: cells that build small
// expressions, differentiate them and print what the engine computed next
// to the value worked out by hand.
//
// Every cell checks its own numbers. A cell whose gradient disagrees with
// the analytic answer fails with ErrUnexpectedValue.
package lessons

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/gradbook/internal/notebook"
)

// Title is the notebook title.
const Title = "Reverse-mode autodiff, one cell at a time"

// ErrUnexpectedValue: a computed value disagrees with the expected one.
var ErrUnexpectedValue = errors.New("unexpected value")

// Cells returns the notebook cells in reading order.
func Cells() []notebook.Cell {
	return []notebook.Cell{
		{Name: "leaf_tensors", Title: "Leaf tensors and recorded operations", Run: leafTensors},
		{Name: "scalar_backward", Title: "Backward through a scalar polynomial", Run: scalarBackward},
		{Name: "chain_rule", Title: "The chain rule, checked by hand", Run: chainRule},
		{Name: "vector_jacobian", Title: "Non-scalar outputs and vector-Jacobian products", Run: vectorJacobian},
		{Name: "grad_accumulation", Title: "Gradients accumulate until zeroed", Run: gradAccumulation},
		{Name: "retain_graph", Title: "Walking a graph twice", Run: retainGraph},
		{Name: "no_grad_detach", Title: "Turning recording off: NoGrad and Detach", Run: noGradDetach},
		{Name: "retain_grad_hooks", Title: "Gradients of intermediate tensors and hooks", Run: retainGradHooks},
		{Name: "higher_order", Title: "Differentiating a derivative", Run: higherOrder},
		{Name: "derivative_plot", Title: "sin and its first two derivatives", Run: derivativePlot},
		{Name: "graph_viz", Title: "Looking at the recorded graph", Run: graphViz},
		{Name: "gradient_check", Title: "Checking gradients against finite differences", Run: gradientCheck},
		{Name: "linear_regression", Title: "Fitting a line with SGD", Run: linearRegression},
	}
}

// Notebook returns the full notebook.
func Notebook() (*notebook.Notebook, error) {
	return notebook.New(Title, Cells()...)
}

// expectClose compares got with want element-wise.
func expectClose(what string, got, want []float64, tol float64) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrUnexpectedValue, what, len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) || math.Abs(got[i]-want[i]) > tol {
			return fmt.Errorf("%w: %s[%d] = %g, want %g", ErrUnexpectedValue, what, i, got[i], want[i])
		}
	}
	return nil
}

// expectErr checks that err wraps target. The engine's error is printed
// since showing it is the point of the cell.
func expectErr(env *notebook.Env, err, target error) error {
	if !errors.Is(err, target) {
		return fmt.Errorf("%w: got error %v, want %v", ErrUnexpectedValue, err, target)
	}
	env.Printf("error (expected): %v\n", err)
	return nil
}
