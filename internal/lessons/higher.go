package lessons

import (
	"context"
	"math"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/plot"
)

// higherOrder: y = x³ at x = 2 gives y' = 3x² = 12, y'' = 6x = 12, y''' = 6.
func higherOrder(_ context.Context, env *notebook.Env) error {
	x := autodiff.Scalar(2, env.Backend).RequireGrad().SetName("x")
	y := x.Pow(3)
	env.Show("y = x^3", y)

	want := []float64{12, 12, 6}
	f := y
	for order := 1; order <= 3; order++ {
		// The last derivative is not differentiated again, so it needs no graph.
		create := order < 3
		grads, err := autodiff.Grad([]*autodiff.Tensor{f}, []*autodiff.Tensor{x}, autodiff.GradOptions{CreateGraph: create})
		if err != nil {
			return err
		}
		f = grads[0]
		env.Printf("order %d: %s\n", order, f)
		if err := expectClose("derivative", f.Data(), want[order-1:order], 1e-12); err != nil {
			return err
		}
	}
	return nil
}

// derivativePlot computes sin', sin'' over a grid with Grad and plots them.
func derivativePlot(_ context.Context, env *notebook.Env) error {
	cfg := env.Config.Plot
	x, err := autodiff.Linspace(cfg.XMin, cfg.XMax, cfg.Points, env.Backend)
	if err != nil {
		return err
	}
	x.RequireGrad().SetName("x")

	y := x.Sin()
	ones := autodiff.Ones(x.Shape(), env.Backend)

	// Summing against ones turns the element-wise derivative into a VJP.
	d1, err := autodiff.Grad([]*autodiff.Tensor{y}, []*autodiff.Tensor{x},
		autodiff.GradOptions{GradOutputs: []*autodiff.Tensor{ones}, CreateGraph: true})
	if err != nil {
		return err
	}
	d2, err := autodiff.Grad([]*autodiff.Tensor{d1[0]}, []*autodiff.Tensor{x},
		autodiff.GradOptions{GradOutputs: []*autodiff.Tensor{ones}})
	if err != nil {
		return err
	}

	xs := x.Data()
	cosx := make([]float64, len(xs))
	negSin := make([]float64, len(xs))
	for i, v := range xs {
		cosx[i] = math.Cos(v)
		negSin[i] = -math.Sin(v)
	}
	if err := expectClose("sin'", d1[0].Data(), cosx, 1e-12); err != nil {
		return err
	}
	if err := expectClose("sin''", d2[0].Data(), negSin, 1e-12); err != nil {
		return err
	}

	p := plot.New(plot.FunctionCurves, "f(x) = sin(x), f', f''", "sin")
	for _, s := range []struct {
		name string
		ys   []float64
	}{
		{"f", y.Data()},
		{"f'", d1[0].Data()},
		{"f''", d2[0].Data()},
	} {
		if err := p.AddLine(s.name, xs, s.ys); err != nil {
			return err
		}
	}
	return env.Plot("sin", p)
}
