package autodiff

import (
	"fmt"
	"time"
)

// BackwardOptions controls a Backward call.
type BackwardOptions struct {
	// Grad is the seed gradient dL/droot. It may be nil for single-element
	// roots, in which case ones are used. For other roots it turns the
	// pass into a vector-Jacobian product.
	Grad *Tensor

	// RetainGraph keeps the saved values so the graph can be walked again.
	RetainGraph bool

	// CreateGraph records the backward pass itself, so the resulting
	// gradients can be differentiated again. Implies RetainGraph.
	CreateGraph bool
}

// GradOptions controls a Grad call.
type GradOptions struct {
	// GradOutputs are seed gradients, one per output. Nil entries (or a
	// nil slice) default to ones for single-element outputs.
	GradOutputs []*Tensor

	// RetainGraph keeps the graph alive after the call.
	RetainGraph bool

	// CreateGraph records the backward pass for higher-order gradients.
	// Implies RetainGraph.
	CreateGraph bool

	// AllowUnused returns a nil gradient for inputs not reachable from the
	// outputs instead of failing with ErrUnusedInput.
	AllowUnused bool
}

// Backward computes gradients of t with default options. See Backward.
func (t *Tensor) Backward() error {
	return Backward(t, BackwardOptions{})
}

// Backward computes the gradient of root with respect to every leaf that
// requires grad and accumulates it into the leaf's Grad.
//
// Algorithm:
//  1. Order the graph reachable from root topologically
//  2. Seed root with opts.Grad (ones for single-element roots)
//  3. Visit tensors outputs-first; once a tensor's gradient is complete,
//     run its hooks, store it if it is a leaf (or retains grad) and push
//     it through its Function to the inputs
//  4. Sum gradients when a tensor feeds more than one consumer
//
// Gradients accumulate across calls; use ZeroGrad between iterations.
// Unless RetainGraph or CreateGraph is set, the walked Functions are
// released and a second pass over them fails with ErrGraphReleased.
func Backward(root *Tensor, opts BackwardOptions) error {
	seed, err := seedFor(root, opts.Grad)
	if err != nil {
		return err
	}

	_, err = run([]*Tensor{root}, []*Tensor{seed}, nil, opts.RetainGraph || opts.CreateGraph, opts.CreateGraph)
	return err
}

// Grad computes and returns the gradients of outputs with respect to
// inputs without touching any tensor's Grad field.
//
// With CreateGraph the returned gradients are themselves part of a graph
// and can be passed to Grad or Backward again (higher-order derivatives).
//
// Example:
//
//	y := x.Pow(3)
//	dy, _ := autodiff.Grad([]*Tensor{y}, []*Tensor{x}, GradOptions{CreateGraph: true})
//	d2y, _ := autodiff.Grad(dy, []*Tensor{x}, GradOptions{})
//	// dy = 3x², d2y = 6x
func Grad(outputs, inputs []*Tensor, opts GradOptions) ([]*Tensor, error) {
	if len(opts.GradOutputs) != 0 && len(opts.GradOutputs) != len(outputs) {
		return nil, fmt.Errorf("grad: got %d grad outputs for %d outputs", len(opts.GradOutputs), len(outputs))
	}

	seeds := make([]*Tensor, len(outputs))
	for i, out := range outputs {
		var g *Tensor
		if len(opts.GradOutputs) != 0 {
			g = opts.GradOutputs[i]
		}
		seed, err := seedFor(out, g)
		if err != nil {
			return nil, err
		}
		seeds[i] = seed
	}

	capture := make(map[*Tensor]bool, len(inputs))
	for _, in := range inputs {
		if !in.requiresGrad {
			return nil, graphError(in, ErrNoGradient)
		}
		capture[in] = true
	}

	grads, err := run(outputs, seeds, capture, opts.RetainGraph || opts.CreateGraph, opts.CreateGraph)
	if err != nil {
		return nil, err
	}

	result := make([]*Tensor, len(inputs))
	for i, in := range inputs {
		g := grads[in]
		if g == nil && !opts.AllowUnused {
			return nil, graphError(in, ErrUnusedInput)
		}
		result[i] = g
	}
	return result, nil
}

// seedFor validates root and returns the gradient the walk starts from.
func seedFor(root *Tensor, grad *Tensor) (*Tensor, error) {
	if !root.requiresGrad {
		return nil, graphError(root, ErrNoGradient)
	}
	if grad == nil {
		if root.NumElements() != 1 {
			return nil, graphError(root, ErrNonScalarOutput)
		}
		return Ones(root.Shape(), root.backend), nil
	}
	if !grad.Shape().Equal(root.Shape()) {
		return nil, graphError(root, fmt.Errorf("%w: got %v, want %v", ErrShapeMismatch, grad.Shape(), root.Shape()))
	}
	return grad, nil
}

// run is the engine shared by Backward and Grad. With capture == nil it
// accumulates into leaf Grad fields; otherwise it only reports gradients.
func run(roots, seeds []*Tensor, capture map[*Tensor]bool, retain, create bool) (map[*Tensor]*Tensor, error) {
	start := time.Now()
	order := topoSort(roots)

	for _, t := range order {
		if t.gradFn != nil && t.gradFn.Released() {
			return nil, graphError(t, ErrGraphReleased)
		}
	}

	// Backward computations are recorded only when building a graph of
	// the derivative.
	restore := setGradEnabled(create)
	defer restore()

	grads := make(map[*Tensor]*Tensor, len(order))
	for i, r := range roots {
		accumulate(grads, r, seeds[i])
	}

	for i := len(order) - 1; i >= 0; i-- {
		t := order[i]
		g, ok := grads[t]
		if !ok {
			continue
		}

		g = t.applyHooks(g)
		grads[t] = g

		if capture == nil && (t.IsLeaf() || t.retainGrad) {
			t.accumulateGrad(g, create)
		}

		fn := t.gradFn
		if fn == nil {
			continue
		}
		inputGrads := fn.Backward(g)
		for j, in := range fn.Inputs() {
			if j >= len(inputGrads) {
				break
			}
			if inputGrads[j] == nil || !in.requiresGrad {
				continue
			}
			accumulate(grads, in, inputGrads[j])
		}
	}

	if !retain {
		for _, t := range order {
			if t.gradFn != nil {
				t.gradFn.Release()
			}
		}
	}

	if o := currentObserver(); o != nil {
		o.BackwardCompleted(len(order), time.Since(start))
	}

	return grads, nil
}

// accumulate adds g to the running gradient of t.
func accumulate(grads map[*Tensor]*Tensor, t, g *Tensor) {
	if existing, ok := grads[t]; ok {
		grads[t] = existing.Add(g)
		return
	}
	grads[t] = g
}

// accumulateGrad adds g into t.grad. Outside CreateGraph the stored
// gradient is a detached copy so later in-place updates cannot alias it.
func (t *Tensor) accumulateGrad(g *Tensor, create bool) {
	if !create {
		g = New(g.data.Clone(), g.backend)
	}
	if t.grad == nil {
		t.grad = g
		return
	}
	t.grad = t.grad.Add(g)
}

// topoSort returns the tensors reachable from roots that require grad, in
// an order where every tensor comes after all of its inputs.
func topoSort(roots []*Tensor) []*Tensor {
	visited := make(map[*Tensor]bool)
	var order []*Tensor

	var visit func(t *Tensor)
	visit = func(t *Tensor) {
		if t == nil || visited[t] || !t.requiresGrad {
			return
		}
		visited[t] = true
		if t.gradFn != nil {
			for _, in := range t.gradFn.Inputs() {
				visit(in)
			}
		}
		order = append(order, t)
	}

	for _, r := range roots {
		visit(r)
	}
	return order
}
