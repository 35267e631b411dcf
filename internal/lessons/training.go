package lessons

import (
	"bytes"
	"context"
	"fmt"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/nn"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/optim"
	"github.com/born-ml/gradbook/internal/plot"
	"github.com/born-ml/gradbook/internal/serialization"
	"github.com/born-ml/gradbook/internal/tensor"
)

// gradientCheck compares the engine against central differences on a
// small two-layer network.
func gradientCheck(_ context.Context, env *notebook.Env) error {
	cfg := env.Config.GradCheck
	x := autodiff.Randn(tensor.Shape{4, 3}, env.Rand, env.Backend).SetName("x")
	w1 := autodiff.Randn(tensor.Shape{3, 5}, env.Rand, env.Backend).RequireGrad().SetName("w1")
	b1 := autodiff.Randn(tensor.Shape{5}, env.Rand, env.Backend).RequireGrad().SetName("b1")
	w2 := autodiff.Randn(tensor.Shape{5, 1}, env.Rand, env.Backend).RequireGrad().SetName("w2")

	f := func() *autodiff.Tensor {
		h := x.MatMul(w1).Add(b1).Sigmoid()
		return h.MatMul(w2).Tanh().Square().Mean()
	}

	maxErr, err := autodiff.CheckGradient(f, []*autodiff.Tensor{w1, b1, w2}, cfg.Eps, cfg.Tol)
	if err != nil {
		return err
	}
	env.Printf("eps=%g tol=%g: all %d parameters agree, max |analytic - numerical| = %.3g\n",
		cfg.Eps, cfg.Tol, w1.NumElements()+b1.NumElements()+w2.NumElements(), maxErr)
	return nil
}

// linearRegression fits y = 3x + 2 plus noise with one Linear layer.
func linearRegression(ctx context.Context, env *notebook.Env) error {
	const trueW, trueB = 3.0, 2.0
	cfg := env.Config.Training

	xs := make([]float64, cfg.Samples)
	ys := make([]float64, cfg.Samples)
	for i := range xs {
		xs[i] = -1 + 2*float64(i)/float64(cfg.Samples-1)
		ys[i] = trueW*xs[i] + trueB + 0.05*env.Rand.NormFloat64()
	}
	x, err := autodiff.FromSlice(xs, tensor.Shape{cfg.Samples, 1}, env.Backend)
	if err != nil {
		return err
	}
	y, err := autodiff.FromSlice(ys, tensor.Shape{cfg.Samples, 1}, env.Backend)
	if err != nil {
		return err
	}

	model := nn.NewLinear(1, 1, env.Backend, env.Rand)
	mse := nn.NewMSELoss()
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})

	steps := make([]float64, 0, cfg.Epochs)
	losses := make([]float64, 0, cfg.Epochs)
	every := max(1, cfg.Epochs/5)
	for epoch := range cfg.Epochs {
		if err := ctx.Err(); err != nil {
			return err
		}
		optimizer.ZeroGrad()
		loss := mse.Forward(model.Forward(x), y)
		if err := loss.Backward(); err != nil {
			return err
		}
		optimizer.Step()

		steps = append(steps, float64(epoch))
		losses = append(losses, loss.Item())
		if epoch%every == 0 || epoch == cfg.Epochs-1 {
			env.Printf("epoch %4d  loss %.6f  w %.4f  b %.4f\n",
				epoch, loss.Item(), model.Weight().Tensor().Item(), model.Bias().Tensor().Item())
		}
	}
	env.Logger.Debug("training finished", "epochs", cfg.Epochs, "final_loss", losses[len(losses)-1])

	first, last := losses[0], losses[len(losses)-1]
	if !(last < first) {
		return fmt.Errorf("%w: loss did not decrease (%g -> %g)", ErrUnexpectedValue, first, last)
	}

	if err := checkpoint(env, model, serialization.CheckpointMeta{
		Epoch:     cfg.Epochs - 1,
		Loss:      last,
		Optimizer: "SGD",
		LR:        optimizer.GetLR(),
	}); err != nil {
		return err
	}

	p := plot.New(plot.TrainingCurves, "MSE loss", "linear")
	p.Config.XAxisLabel = "epoch"
	p.Config.YAxisLabel = "loss"
	if err := p.AddLine("loss", steps, losses); err != nil {
		return err
	}
	if err := env.Plot("loss", p); err != nil {
		return err
	}

	var fit []float64
	autodiff.NoGrad(func() {
		fit = model.Forward(x).Data()
	})
	p = plot.New(plot.RegressionScatter, "data and fitted line", "linear")
	if err := p.AddScatter("data", xs, ys); err != nil {
		return err
	}
	if err := p.AddLine("fit", xs, fit); err != nil {
		return err
	}
	return env.Plot("fit", p)
}

// checkpoint saves model, reloads it into a fresh layer and checks that the
// copy is identical.
func checkpoint(env *notebook.Env, model *nn.Linear, meta serialization.CheckpointMeta) error {
	var buf bytes.Buffer
	err := serialization.Write(&buf, nn.StateDict(model), serialization.Header{
		ModelType:  "Linear",
		Metadata:   map[string]string{"cell": env.Cell},
		Checkpoint: &meta,
	})
	if err != nil {
		return err
	}
	size := buf.Len()
	if err := env.Save("model.gbk", buf.Bytes()); err != nil {
		return err
	}

	ckpt, err := serialization.Read(&buf)
	if err != nil {
		return err
	}
	restored := nn.NewLinear(model.InFeatures(), model.OutFeatures(), env.Backend, env.Rand)
	if err := nn.LoadStateDict(restored, ckpt.Tensors); err != nil {
		return err
	}
	for i, p := range restored.Parameters() {
		if err := expectClose(p.Name(), p.Tensor().Data(), model.Parameters()[i].Tensor().Data(), 0); err != nil {
			return err
		}
	}
	env.Printf("checkpoint: %d tensors, %d bytes, restored exactly\n", len(ckpt.Tensors), size)
	return nil
}
