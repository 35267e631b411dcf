// Package autodiff implements reverse-mode automatic differentiation over a
// dynamically built (define-by-run) computation graph.
//
// Architecture:
//   - Tensor: a value plus gradient bookkeeping (grad accumulator,
//     requires-grad flag, back-reference to the producing Function)
//   - Function: one node per recorded operation; knows its inputs and how to
//     map an upstream gradient to input gradients (chain rule)
//   - Backward / Grad: walk the graph from the outputs in reverse
//     topological order, summing gradients over all paths
//
// The graph is rebuilt every time an expression is evaluated. Backward
// passes are themselves written with Tensor operations, so running them
// with CreateGraph records a graph of the derivative, which is what makes
// higher-order gradients possible.
//
// Usage:
//
//	backend := cpu.New()
//	x, _ := autodiff.FromSlice([]float64{2}, tensor.Shape{1}, backend)
//	x.RequireGrad()
//	y := x.Mul(x) // y = x²
//
//	_ = y.Backward()
//	fmt.Println(x.Grad()) // dy/dx = 2x = 4
package autodiff

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/born-ml/gradbook/internal/tensor"
)

var nextID atomic.Uint64

// Hook inspects or replaces the gradient flowing into a tensor.
// Returning nil keeps the gradient unchanged.
type Hook func(grad *Tensor) *Tensor

// Tensor is a node of the computation graph.
//
// Leaf tensors are created by the user (no gradFn). Non-leaf tensors are
// produced by operations and remember the Function that created them when
// at least one input requires gradients and grad mode is enabled.
type Tensor struct {
	id           uint64
	name         string
	data         *tensor.RawTensor
	backend      tensor.Backend
	grad         *Tensor
	requiresGrad bool
	gradFn       Function
	retainGrad   bool
	hooks        map[int]Hook
	nextHook     int
}

// New wraps a RawTensor as a leaf tensor that does not require gradients.
func New(raw *tensor.RawTensor, b tensor.Backend) *Tensor {
	return &Tensor{
		id:      nextID.Add(1),
		data:    raw,
		backend: b,
	}
}

// FromSlice creates a leaf tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape tensor.Shape, b tensor.Backend) (*Tensor, error) {
	raw, err := tensor.FromSlice(data, shape, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Scalar creates a 0-D leaf tensor.
func Scalar(v float64, b tensor.Backend) *Tensor {
	return New(tensor.Scalar(v, b.Device()), b)
}

// Full creates a leaf tensor filled with value.
func Full(shape tensor.Shape, value float64, b tensor.Backend) *Tensor {
	return New(tensor.Full(shape, value, b.Device()), b)
}

// Zeros creates a leaf tensor filled with zeros.
func Zeros(shape tensor.Shape, b tensor.Backend) *Tensor {
	return New(tensor.Zeros(shape, b.Device()), b)
}

// Ones creates a leaf tensor filled with ones.
func Ones(shape tensor.Shape, b tensor.Backend) *Tensor {
	return New(tensor.Ones(shape, b.Device()), b)
}

// Linspace creates a 1-D leaf tensor of n evenly spaced values in [start, end].
func Linspace(start, end float64, n int, b tensor.Backend) (*Tensor, error) {
	raw, err := tensor.Linspace(start, end, n, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Randn creates a leaf tensor of standard normal samples drawn from rng.
func Randn(shape tensor.Shape, rng *rand.Rand, b tensor.Backend) *Tensor {
	return New(tensor.Randn(shape, rng, b.Device()), b)
}

// ID returns a process-unique identifier for the tensor.
func (t *Tensor) ID() uint64 {
	return t.id
}

// Name returns the label set with SetName (empty by default).
func (t *Tensor) Name() string {
	return t.name
}

// SetName labels the tensor for printing and graph rendering.
// Returns the tensor itself for method chaining.
func (t *Tensor) SetName(name string) *Tensor {
	t.name = name
	return t
}

// Value returns the underlying RawTensor.
func (t *Tensor) Value() *tensor.RawTensor {
	return t.data
}

// Data returns the tensor's elements.
// WARNING: Modifications to the returned slice modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data.Data()
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.data.Shape()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.data.NumElements()
}

// Item returns the value of a single-element tensor.
func (t *Tensor) Item() float64 {
	return t.data.Item()
}

// Backend returns the computation backend.
func (t *Tensor) Backend() tensor.Backend {
	return t.backend
}

// Grad returns the accumulated gradient, or nil if none was computed.
//
// Leaves that require grad receive gradients from Backward. Non-leaf tensors
// only keep one after RetainGrad.
func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// ZeroGrad drops the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// RequiresGrad reports whether gradients are tracked for this tensor.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// RequireGrad marks a leaf tensor for gradient computation.
// Operations involving it are recorded while grad mode is enabled.
//
// Returns the tensor itself for method chaining.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// IsLeaf reports whether the tensor was created by the user rather than
// recorded as the output of an operation.
func (t *Tensor) IsLeaf() bool {
	return t.gradFn == nil
}

// GradFn returns the Function that produced this tensor, or nil for leaves.
func (t *Tensor) GradFn() Function {
	return t.gradFn
}

// RetainGrad asks Backward to store this non-leaf tensor's gradient in
// Grad. It has no effect on leaves, which always keep their gradient.
func (t *Tensor) RetainGrad() *Tensor {
	if !t.IsLeaf() {
		t.retainGrad = true
	}
	return t
}

// RetainsGrad reports whether a non-leaf tensor keeps its gradient.
func (t *Tensor) RetainsGrad() bool {
	return t.retainGrad
}

// RegisterHook installs a gradient hook that runs when this tensor's
// gradient has been fully accumulated during a backward pass, before it is
// stored or propagated further. The returned func removes the hook.
func (t *Tensor) RegisterHook(h Hook) (remove func()) {
	if t.hooks == nil {
		t.hooks = make(map[int]Hook)
	}
	key := t.nextHook
	t.nextHook++
	t.hooks[key] = h
	return func() {
		delete(t.hooks, key)
	}
}

// Detach returns a new leaf tensor that shares the same data but is cut
// off from the graph. Operations on it are not tracked.
func (t *Tensor) Detach() *Tensor {
	d := New(t.data, t.backend)
	d.name = t.name
	return d
}

// Clone returns a leaf copy of the tensor's values with no gradient state.
func (t *Tensor) Clone() *Tensor {
	return New(t.data.Clone(), t.backend)
}

// String formats the tensor the way an interactive session would show it,
// e.g. tensor([2 4], grad_fn=<MulBackward>).
func (t *Tensor) String() string {
	var sb strings.Builder
	sb.WriteString("tensor(")
	sb.WriteString(t.data.String())
	switch {
	case t.gradFn != nil:
		fmt.Fprintf(&sb, ", grad_fn=<%s>", t.gradFn.Name())
	case t.requiresGrad:
		sb.WriteString(", requires_grad=true")
	}
	sb.WriteString(")")
	return sb.String()
}

// applyHooks runs the registered hooks in registration order.
func (t *Tensor) applyHooks(g *Tensor) *Tensor {
	for key := 0; key < t.nextHook; key++ {
		h, ok := t.hooks[key]
		if !ok {
			continue
		}
		if replaced := h(g); replaced != nil {
			g = replaced
		}
	}
	return g
}
