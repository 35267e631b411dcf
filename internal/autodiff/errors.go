package autodiff

import (
	"errors"
	"fmt"
)

// Errors returned by Backward, Grad and CheckGradient.
var (
	// ErrNoGradient: the tensor neither requires grad nor has a grad_fn.
	ErrNoGradient = errors.New("tensor does not require grad and has no grad_fn")

	// ErrNonScalarOutput: a seed gradient is needed for multi-element outputs.
	ErrNonScalarOutput = errors.New("grad can be implicitly created only for single-element outputs")

	// ErrGraphReleased: the graph was freed by a previous backward pass.
	ErrGraphReleased = errors.New("trying to backward through the graph a second time; pass RetainGraph on the first call")

	// ErrUnusedInput: an input passed to Grad is not reachable from the outputs.
	ErrUnusedInput = errors.New("one of the differentiated tensors appears to not have been used in the graph")

	// ErrShapeMismatch: a seed gradient does not match its output's shape.
	ErrShapeMismatch = errors.New("gradient shape does not match tensor shape")

	// ErrGradientMismatch: analytic and numerical gradients disagree.
	ErrGradientMismatch = errors.New("analytic gradient does not match numerical gradient")
)

// GraphError adds context to an engine error.
type GraphError struct {
	Op     string // Function name, when the error concerns a graph node
	Tensor string // Tensor label, when known
	Err    error  // Base error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	switch {
	case e.Op != "" && e.Tensor != "":
		return fmt.Sprintf("%s (tensor %s): %v", e.Op, e.Tensor, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Tensor != "":
		return fmt.Sprintf("tensor %s: %v", e.Tensor, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the base error.
func (e *GraphError) Unwrap() error {
	return e.Err
}

func graphError(t *Tensor, err error) *GraphError {
	ge := &GraphError{Tensor: t.label(), Err: err}
	if t.gradFn != nil {
		ge.Op = t.gradFn.Name()
	}
	return ge
}

// label returns the tensor's name or, failing that, its id.
func (t *Tensor) label() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("#%d", t.id)
}
