// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides define-by-run reverse-mode automatic differentiation.
//
// Every operation on a Tensor that requires grad records a Function node
// pointing at its inputs. Backward walks that graph from a root in reverse
// topological order and accumulates gradients into leaf tensors.
//
// Example:
//
//	import (
//	    "github.com/born-ml/gradbook/autodiff"
//	    "github.com/born-ml/gradbook/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := autodiff.Scalar(3, backend).RequireGrad()
//	    y := x.Square().Add(x.MulScalar(2))  // y = x² + 2x
//
//	    _ = y.Backward()
//	    fmt.Println(x.Grad())  // tensor(8)
//	}
//
// Gradients of gradients are available by passing CreateGraph to Backward
// or Grad: the backward pass is itself recorded and can be differentiated.
package autodiff

import (
	"math/rand/v2"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/tensor"
)

// Tensor is a value in the computation graph.
type Tensor = autodiff.Tensor

// Function is a recorded backward node.
type Function = autodiff.Function

// Hook rewrites or observes the gradient of a tensor.
type Hook = autodiff.Hook

// Observer receives graph activity notifications.
type Observer = autodiff.Observer

// BackwardOptions configures Backward.
type BackwardOptions = autodiff.BackwardOptions

// GradOptions configures Grad.
type GradOptions = autodiff.GradOptions

// GraphError locates a failure inside the graph.
type GraphError = autodiff.GraphError

// GradCheckError describes a finite-difference mismatch.
type GradCheckError = autodiff.GradCheckError

// Errors returned by the engine.
var (
	ErrNoGradient       = autodiff.ErrNoGradient
	ErrNonScalarOutput  = autodiff.ErrNonScalarOutput
	ErrGraphReleased    = autodiff.ErrGraphReleased
	ErrUnusedInput      = autodiff.ErrUnusedInput
	ErrShapeMismatch    = autodiff.ErrShapeMismatch
	ErrGradientMismatch = autodiff.ErrGradientMismatch
)

// New wraps raw data computed by b as a leaf tensor.
func New(raw *tensor.RawTensor, b tensor.Backend) *Tensor {
	return autodiff.New(raw, b)
}

// FromSlice creates a leaf tensor from a copy of data.
func FromSlice(data []float64, shape tensor.Shape, b tensor.Backend) (*Tensor, error) {
	return autodiff.FromSlice(data, shape, b)
}

// Scalar creates a 0-dimensional leaf tensor.
func Scalar(v float64, b tensor.Backend) *Tensor {
	return autodiff.Scalar(v, b)
}

// Full creates a leaf tensor filled with value.
func Full(shape tensor.Shape, value float64, b tensor.Backend) *Tensor {
	return autodiff.Full(shape, value, b)
}

// Zeros creates a leaf tensor filled with zeros.
func Zeros(shape tensor.Shape, b tensor.Backend) *Tensor {
	return autodiff.Zeros(shape, b)
}

// Ones creates a leaf tensor filled with ones.
func Ones(shape tensor.Shape, b tensor.Backend) *Tensor {
	return autodiff.Ones(shape, b)
}

// Linspace creates n evenly spaced values over [start, end].
func Linspace(start, end float64, n int, b tensor.Backend) (*Tensor, error) {
	return autodiff.Linspace(start, end, n, b)
}

// Randn creates a leaf tensor of standard normal samples.
func Randn(shape tensor.Shape, rng *rand.Rand, b tensor.Backend) *Tensor {
	return autodiff.Randn(shape, rng, b)
}

// Backward runs a backward pass from root. See BackwardOptions.
func Backward(root *Tensor, opts BackwardOptions) error {
	return autodiff.Backward(root, opts)
}

// Grad returns the gradients of outputs with respect to inputs without
// accumulating them into Grad fields.
func Grad(outputs, inputs []*Tensor, opts GradOptions) ([]*Tensor, error) {
	return autodiff.Grad(outputs, inputs, opts)
}

// CheckGradient compares analytic gradients of f against central differences.
func CheckGradient(f func() *Tensor, inputs []*Tensor, eps, tol float64) (float64, error) {
	return autodiff.CheckGradient(f, inputs, eps, tol)
}

// NoGrad runs fn with graph recording disabled.
func NoGrad(fn func()) {
	autodiff.NoGrad(fn)
}

// EnableGrad runs fn with graph recording enabled.
func EnableGrad(fn func()) {
	autodiff.EnableGrad(fn)
}

// IsGradEnabled reports whether operations are currently recorded.
func IsGradEnabled() bool {
	return autodiff.IsGradEnabled()
}

// SetObserver installs a process-wide observer and returns the previous
// one. Passing nil removes it.
func SetObserver(o Observer) Observer {
	return autodiff.SetObserver(o)
}
