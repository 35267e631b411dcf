package lessons

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/tensor"
)

func leafTensors(_ context.Context, env *notebook.Env) error {
	x, err := autodiff.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, env.Backend)
	if err != nil {
		return err
	}
	x.RequireGrad().SetName("x")
	c := autodiff.Full(tensor.Shape{3}, 2, env.Backend).SetName("c")

	env.Show("x", x)
	env.Show("c", c)
	env.Printf("x.is_leaf=%t x.requires_grad=%t\n", x.IsLeaf(), x.RequiresGrad())
	env.Printf("c.is_leaf=%t c.requires_grad=%t\n", c.IsLeaf(), c.RequiresGrad())

	y := x.Mul(c)
	env.Show("y = x * c", y)
	env.Printf("y.is_leaf=%t y.grad_fn=%s inputs=%d\n", y.IsLeaf(), y.GradFn().Name(), len(y.GradFn().Inputs()))

	// Nothing that only involves constants is recorded.
	k := c.Mul(c)
	env.Show("k = c * c", k)
	if k.GradFn() != nil || k.RequiresGrad() {
		return fmt.Errorf("%w: constant expression was recorded", ErrUnexpectedValue)
	}
	return expectClose("y", y.Data(), []float64{2, 4, 6}, 0)
}

// scalarBackward: y = x² + 2x + 1, dy/dx = 2x + 2.
func scalarBackward(_ context.Context, env *notebook.Env) error {
	x := autodiff.Scalar(3, env.Backend).RequireGrad().SetName("x")
	y := x.Square().Add(x.MulScalar(2)).AddScalar(1)

	env.Show("x", x)
	env.Show("y = x^2 + 2x + 1", y)
	if err := y.Backward(); err != nil {
		return err
	}
	env.Show("dy/dx", x.Grad())
	env.Printf("analytic 2x + 2 = %g\n", 2*x.Item()+2)

	return expectClose("dy/dx", x.Grad().Data(), []float64{8}, 1e-12)
}

// chainRule: z = sin(x·y) · exp(x).
func chainRule(_ context.Context, env *notebook.Env) error {
	const xv, yv = 0.5, -1.2
	x := autodiff.Scalar(xv, env.Backend).RequireGrad().SetName("x")
	y := autodiff.Scalar(yv, env.Backend).RequireGrad().SetName("y")

	u := x.Mul(y)
	z := u.Sin().Mul(x.Exp())
	env.Show("z = sin(x*y) * exp(x)", z)
	if err := z.Backward(); err != nil {
		return err
	}

	// ∂z/∂x = y·cos(xy)·eˣ + sin(xy)·eˣ, ∂z/∂y = x·cos(xy)·eˣ
	dx := (yv*math.Cos(xv*yv) + math.Sin(xv*yv)) * math.Exp(xv)
	dy := xv * math.Cos(xv*yv) * math.Exp(xv)

	env.Printf("dz/dx engine=% .12f analytic=% .12f\n", x.Grad().Item(), dx)
	env.Printf("dz/dy engine=% .12f analytic=% .12f\n", y.Grad().Item(), dy)

	if err := expectClose("dz/dx", x.Grad().Data(), []float64{dx}, 1e-12); err != nil {
		return err
	}
	return expectClose("dz/dy", y.Grad().Data(), []float64{dy}, 1e-12)
}

// vectorJacobian shows that a non-scalar root needs a seed v, and that the
// result is vᵀJ.
func vectorJacobian(_ context.Context, env *notebook.Env) error {
	x, err := autodiff.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, env.Backend)
	if err != nil {
		return err
	}
	x.RequireGrad().SetName("x")
	y := x.Square().MulScalar(0.5).SetName("y")
	env.Show("y = x^2 / 2", y)

	// Without a seed the engine refuses.
	if err := expectErr(env, y.Backward(), autodiff.ErrNonScalarOutput); err != nil {
		return err
	}

	v, err := autodiff.FromSlice([]float64{1, 0.1, 0.01}, tensor.Shape{3}, env.Backend)
	if err != nil {
		return err
	}
	env.Show("v", v)
	if err := autodiff.Backward(y, autodiff.BackwardOptions{Grad: v}); err != nil {
		return err
	}
	// J is diag(x), so vᵀJ = v * x
	env.Show("x.grad = v^T J", x.Grad())
	return expectClose("x.grad", x.Grad().Data(), []float64{1, 0.2, 0.03}, 1e-12)
}

func gradAccumulation(_ context.Context, env *notebook.Env) error {
	w := autodiff.Scalar(1.5, env.Backend).RequireGrad().SetName("w")

	for i := 1; i <= 3; i++ {
		loss := w.MulScalar(4)
		if err := loss.Backward(); err != nil {
			return err
		}
		env.Printf("after backward #%d: w.grad = %g\n", i, w.Grad().Item())
	}
	if err := expectClose("accumulated grad", w.Grad().Data(), []float64{12}, 1e-12); err != nil {
		return err
	}

	w.ZeroGrad()
	env.Show("after ZeroGrad: w.grad", w.Grad())

	if err := w.MulScalar(4).Backward(); err != nil {
		return err
	}
	env.Show("fresh backward: w.grad", w.Grad())
	return expectClose("fresh grad", w.Grad().Data(), []float64{4}, 1e-12)
}
