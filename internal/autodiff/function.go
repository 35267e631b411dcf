package autodiff

import (
	"sync/atomic"
	"time"

	"github.com/born-ml/gradbook/internal/tensor"
)

// Function represents a differentiable operation recorded in the graph.
// Each Function keeps references to its input tensors and the values it
// needs for the backward pass.
type Function interface {
	// Name returns the display name, e.g. "MulBackward".
	Name() string

	// Inputs returns the input tensors, in argument order.
	Inputs() []*Tensor

	// Backward computes gradients for inputs given the output gradient.
	// Returns one entry per input; entries may be nil for inputs that
	// receive no gradient.
	//
	// Example for AddBackward:
	//   inputs: [a, b]
	//   grad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (reduced to each input's shape)
	Backward(grad *Tensor) []*Tensor

	// Release drops the values saved for backward. A released Function
	// can still be inspected but not differentiated through again.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

// node is the shared state embedded by every Function implementation.
type node struct {
	name     string
	inputs   []*Tensor
	saved    []*Tensor
	released bool
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Inputs() []*Tensor {
	return n.inputs
}

func (n *node) Release() {
	n.saved = nil
	n.released = true
}

func (n *node) Released() bool {
	return n.released
}

// save stores tensors needed by Backward.
func (n *node) save(ts ...*Tensor) {
	n.saved = append(n.saved, ts...)
}

// Observer receives notifications about graph activity. It lets callers
// plug metrics in without the engine depending on a metrics library.
type Observer interface {
	// NodeRecorded is called each time an operation is recorded.
	NodeRecorded(op string)
	// BackwardCompleted is called after each Backward or Grad walk.
	BackwardCompleted(nodes int, elapsed time.Duration)
}

type observerBox struct {
	o Observer
}

var observer atomic.Pointer[observerBox]

// SetObserver installs o as the process-wide observer and returns the one
// it replaced. Passing nil removes it.
func SetObserver(o Observer) Observer {
	var box *observerBox
	if o != nil {
		box = &observerBox{o: o}
	}
	if prev := observer.Swap(box); prev != nil {
		return prev.o
	}
	return nil
}

func currentObserver() Observer {
	if box := observer.Load(); box != nil {
		return box.o
	}
	return nil
}

// record wraps the forward result of fn as a Tensor. The result joins the
// graph only when grad mode is enabled and some input requires gradients;
// otherwise it is a plain leaf and fn is discarded.
func record(fn Function, out *tensor.RawTensor, b tensor.Backend) *Tensor {
	result := New(out, b)
	if !IsGradEnabled() {
		return result
	}
	for _, in := range fn.Inputs() {
		if in.requiresGrad {
			result.requiresGrad = true
			result.gradFn = fn
			if o := currentObserver(); o != nil {
				o.NodeRecorded(fn.Name())
			}
			break
		}
	}
	return result
}
