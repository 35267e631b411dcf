package lessons

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/graphviz"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/tensor"
)

func retainGraph(_ context.Context, env *notebook.Env) error {
	x := autodiff.Scalar(2, env.Backend).RequireGrad().SetName("x")

	y := x.Exp().SetName("y")
	if err := y.Backward(); err != nil {
		return err
	}
	env.Show("first backward: x.grad", x.Grad())
	env.Printf("y.grad_fn released: %t\n", y.GradFn().Released())

	// The saved values are gone, so the same graph cannot be walked again.
	if err := expectErr(env, y.Backward(), autodiff.ErrGraphReleased); err != nil {
		return err
	}

	x.ZeroGrad()
	y = x.Exp().SetName("y")
	if err := autodiff.Backward(y, autodiff.BackwardOptions{RetainGraph: true}); err != nil {
		return err
	}
	if err := y.Backward(); err != nil {
		return err
	}
	env.Show("two passes with RetainGraph: x.grad", x.Grad())
	return expectClose("x.grad", x.Grad().Data(), []float64{2 * math.Exp(2)}, 1e-12)
}

func noGradDetach(_ context.Context, env *notebook.Env) error {
	x := autodiff.Scalar(3, env.Backend).RequireGrad().SetName("x")

	var y *autodiff.Tensor
	autodiff.NoGrad(func() {
		y = x.Square()
	})
	env.Show("inside NoGrad: y = x^2", y)
	if y.RequiresGrad() {
		return fmt.Errorf("%w: y was recorded under NoGrad", ErrUnexpectedValue)
	}

	// z = x · stop(x²): only the first factor is differentiated.
	h := x.Square()
	z := x.Mul(h.Detach())
	env.Show("z = x * detach(x^2)", z)
	if err := z.Backward(); err != nil {
		return err
	}
	env.Show("dz/dx (detached)", x.Grad())
	if err := expectClose("dz/dx detached", x.Grad().Data(), []float64{9}, 1e-12); err != nil {
		return err
	}

	x.ZeroGrad()
	if err := x.Mul(x.Square()).Backward(); err != nil {
		return err
	}
	env.Show("dz/dx (attached, 3x^2)", x.Grad())
	return expectClose("dz/dx attached", x.Grad().Data(), []float64{27}, 1e-12)
}

func retainGradHooks(_ context.Context, env *notebook.Env) error {
	x := autodiff.Scalar(2, env.Backend).RequireGrad().SetName("x")

	h := x.MulScalar(3).SetName("h")
	y := h.Square()
	if err := y.Backward(); err != nil {
		return err
	}
	env.Show("without RetainGrad: h.grad", h.Grad())

	x.ZeroGrad()
	h = x.MulScalar(3).SetName("h").RetainGrad()
	h.RegisterHook(func(g *autodiff.Tensor) *autodiff.Tensor {
		env.Printf("hook on h saw grad %g\n", g.Item())
		return nil
	})
	remove := h.RegisterHook(func(g *autodiff.Tensor) *autodiff.Tensor {
		env.Printf("hook on h halves the grad\n")
		return g.MulScalar(0.5)
	})
	y = h.Square()
	if err := y.Backward(); err != nil {
		return err
	}
	env.Show("with RetainGrad: h.grad", h.Grad())
	env.Show("x.grad (halved by hook)", x.Grad())

	// dy/dh = 2h = 12, halved to 6; dy/dx = 6 * 3
	if err := expectClose("h.grad", h.Grad().Data(), []float64{6}, 1e-12); err != nil {
		return err
	}
	if err := expectClose("x.grad", x.Grad().Data(), []float64{18}, 1e-12); err != nil {
		return err
	}
	remove()
	return nil
}

// graphViz draws a one-layer network's graph.
func graphViz(_ context.Context, env *notebook.Env) error {
	x, err := autodiff.FromSlice([]float64{0.5, -1, 2, 0}, tensor.Shape{2, 2}, env.Backend)
	if err != nil {
		return err
	}
	x.SetName("x")
	w := autodiff.Randn(tensor.Shape{2, 3}, env.Rand, env.Backend).RequireGrad().SetName("w")
	b := autodiff.Zeros(tensor.Shape{3}, env.Backend).RequireGrad().SetName("b")

	loss := x.MatMul(w).Add(b).Tanh().Mean().SetName("loss")
	env.Show("loss", loss)

	opts := graphviz.DefaultOptions()
	opts.RankDir = "LR"
	src, err := env.Graph("loss", opts, loss)
	if err != nil {
		return err
	}

	nodes := countFunctions(loss)
	env.Printf("recorded functions: %d, DOT size: %d bytes\n", nodes, len(src))
	if nodes != 5 {
		return fmt.Errorf("%w: %d recorded functions, want 5", ErrUnexpectedValue, nodes)
	}
	return nil
}

// countFunctions returns the number of distinct Functions behind t.
func countFunctions(t *autodiff.Tensor) int {
	seen := make(map[autodiff.Function]bool)
	var walk func(t *autodiff.Tensor)
	walk = func(t *autodiff.Tensor) {
		fn := t.GradFn()
		if fn == nil || seen[fn] {
			return
		}
		seen[fn] = true
		for _, in := range fn.Inputs() {
			walk(in)
		}
	}
	walk(t)
	return len(seen)
}
