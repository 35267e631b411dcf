// Package graphviz renders recorded autodiff graphs as Graphviz DOT.
//
// The layout follows the usual make_dot convention:
//   - leaf tensors are boxes, light blue when they require grad
//   - every recorded Function is an ellipse named after its backward op
//   - root outputs are green boxes fed by their Function
//   - edges point from inputs towards outputs
package graphviz

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"

	"github.com/born-ml/gradbook/internal/autodiff"
)

// Node fill colors.
const (
	ColorLeaf     = "lightblue"
	ColorConstant = "lightgrey"
	ColorOutput   = "darkolivegreen1"
	ColorRetained = "orange"
)

// Options controls rendering.
type Options struct {
	// RankDir is the Graphviz rankdir attribute ("TB", "LR", ...).
	// Empty means "TB".
	RankDir string

	// ShowValues appends tensor values to tensor labels. Values with more
	// than MaxValues elements are elided.
	ShowValues bool
	MaxValues  int

	// ShowConstants includes inputs that do not require grad.
	ShowConstants bool
}

// DefaultOptions returns the options used by Render.
func DefaultOptions() Options {
	return Options{
		RankDir:   "TB",
		MaxValues: 6,
	}
}

// Render returns the DOT source of the graph reachable from roots.
func Render(roots ...*autodiff.Tensor) string {
	return RenderWith(DefaultOptions(), roots...)
}

// RenderWith is Render with explicit options.
func RenderWith(opts Options, roots ...*autodiff.Tensor) string {
	return Build(opts, roots...).String()
}

// Build returns the graph reachable from roots as a dot.Graph, for callers
// that want to add their own attributes before writing it out.
func Build(opts Options, roots ...*autodiff.Tensor) *dot.Graph {
	if opts.RankDir == "" {
		opts.RankDir = "TB"
	}
	r := &renderer{
		opts:    opts,
		g:       dot.NewGraph(dot.Directed),
		tensors: make(map[*autodiff.Tensor]dot.Node),
		fns:     make(map[autodiff.Function]dot.Node),
	}
	r.g.Attr("rankdir", opts.RankDir)
	r.g.Attr("fontname", "monospace")

	for _, root := range roots {
		r.output(root)
	}
	return r.g
}

type renderer struct {
	opts    Options
	g       *dot.Graph
	tensors map[*autodiff.Tensor]dot.Node
	fns     map[autodiff.Function]dot.Node
}

// output draws a root tensor and everything it depends on.
func (r *renderer) output(t *autodiff.Tensor) {
	if _, ok := r.tensors[t]; ok {
		return
	}
	n := r.tensorNode(t, ColorOutput)
	if fn := t.GradFn(); fn != nil {
		r.g.Edge(r.function(fn), n)
	}
}

// source returns the node an edge from t into a consumer starts at: the
// tensor itself for leaves, otherwise the Function that produced it.
func (r *renderer) source(t *autodiff.Tensor) (dot.Node, bool) {
	fn := t.GradFn()
	if fn == nil {
		if !t.RequiresGrad() && !r.opts.ShowConstants {
			return dot.Node{}, false
		}
		if n, ok := r.tensors[t]; ok {
			return n, true
		}
		color := ColorLeaf
		if !t.RequiresGrad() {
			color = ColorConstant
		}
		return r.tensorNode(t, color), true
	}

	fnNode := r.function(fn)
	if t.RetainsGrad() {
		if n, ok := r.tensors[t]; ok {
			return n, true
		}
		n := r.tensorNode(t, ColorRetained)
		r.g.Edge(fnNode, n)
		return n, true
	}
	return fnNode, true
}

// function draws fn and, recursively, its inputs.
func (r *renderer) function(fn autodiff.Function) dot.Node {
	if n, ok := r.fns[fn]; ok {
		return n
	}
	n := r.g.Node(fmt.Sprintf("fn%d", len(r.fns)))
	n.Attr("label", fn.Name())
	n.Attr("shape", "ellipse")
	if fn.Released() {
		n.Attr("style", "dashed")
	}
	r.fns[fn] = n

	for _, in := range fn.Inputs() {
		if src, ok := r.source(in); ok {
			r.g.Edge(src, n)
		}
	}
	return n
}

func (r *renderer) tensorNode(t *autodiff.Tensor, color string) dot.Node {
	n := r.g.Node(fmt.Sprintf("t%d", t.ID()))
	n.Box()
	n.Attr("style", "filled")
	n.Attr("fillcolor", color)
	n.Attr("label", r.label(t))
	r.tensors[t] = n
	return n
}

func (r *renderer) label(t *autodiff.Tensor) string {
	var b strings.Builder
	if t.Name() != "" {
		b.WriteString(t.Name())
		b.WriteString(" ")
	}
	b.WriteString(t.Shape().String())
	if r.opts.ShowValues {
		b.WriteString("\n")
		if r.opts.MaxValues > 0 && t.NumElements() > r.opts.MaxValues {
			fmt.Fprintf(&b, "[%d values]", t.NumElements())
		} else {
			b.WriteString(t.Value().String())
		}
	}
	return b.String()
}
