package autodiff

import (
	"fmt"
	"math"
)

// GradCheckError describes the first element whose analytic gradient
// disagrees with the finite-difference estimate.
type GradCheckError struct {
	Input     string  // Label of the input tensor
	Index     int     // Flat element index inside the input
	Analytic  float64 // Gradient from the engine
	Numerical float64 // Central-difference estimate
}

// Error implements the error interface.
func (e *GradCheckError) Error() string {
	return fmt.Sprintf("input %s[%d]: analytic %.6g vs numerical %.6g", e.Input, e.Index, e.Analytic, e.Numerical)
}

// Unwrap returns ErrGradientMismatch.
func (e *GradCheckError) Unwrap() error {
	return ErrGradientMismatch
}

// CheckGradient compares the gradients computed by the engine for the
// single-element function f against central finite differences
// (f(x+eps) - f(x-eps)) / 2eps, element by element.
//
// f must rebuild its graph from inputs on every call. Inputs are perturbed
// in place and restored before returning. An element fails when
// |analytic - numerical| > tol * (1 + |numerical|).
//
// Returns the largest absolute difference seen.
func CheckGradient(f func() *Tensor, inputs []*Tensor, eps, tol float64) (float64, error) {
	out := f()
	analytic, err := Grad([]*Tensor{out}, inputs, GradOptions{AllowUnused: true})
	if err != nil {
		return 0, err
	}

	eval := func() float64 {
		var v float64
		NoGrad(func() {
			v = f().Item()
		})
		return v
	}

	var maxErr float64
	for i, in := range inputs {
		data := in.Data()
		for j := range data {
			orig := data[j]
			data[j] = orig + eps
			plus := eval()
			data[j] = orig - eps
			minus := eval()
			data[j] = orig

			numerical := (plus - minus) / (2 * eps)
			var a float64
			if analytic[i] != nil {
				a = analytic[i].Data()[j]
			}

			diff := math.Abs(a - numerical)
			maxErr = max(maxErr, diff)
			if math.IsNaN(diff) || diff > tol*(1+math.Abs(numerical)) {
				return maxErr, &GradCheckError{
					Input:     in.label(),
					Index:     j,
					Analytic:  a,
					Numerical: numerical,
				}
			}
		}
	}
	return maxErr, nil
}
