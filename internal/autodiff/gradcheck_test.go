package autodiff_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/backend/cpu"
	"github.com/born-ml/gradbook/internal/tensor"
)

const (
	checkEps = 1e-6
	checkTol = 1e-5
)

// TestCheckGradient runs the finite-difference check over every op.
func TestCheckGradient(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewPCG(1, 2))

	randn := func(shape ...int) *autodiff.Tensor {
		return autodiff.Randn(shape, rng, backend).RequireGrad()
	}
	positive := func(shape ...int) *autodiff.Tensor {
		x := autodiff.Randn(shape, rng, backend)
		for i, v := range x.Data() {
			x.Data()[i] = 0.5 + v*v
		}
		return x.RequireGrad()
	}

	tests := []struct {
		name   string
		inputs []*autodiff.Tensor
		f      func(in []*autodiff.Tensor) *autodiff.Tensor
	}{
		{
			name:   "add_broadcast",
			inputs: []*autodiff.Tensor{randn(2, 3), randn(3)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Add(in[1]).Square().Sum()
			},
		},
		{
			name:   "sub_mul",
			inputs: []*autodiff.Tensor{randn(3), randn(3)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Sub(in[1]).Mul(in[0]).Sum()
			},
		},
		{
			name:   "div",
			inputs: []*autodiff.Tensor{randn(2, 2), positive(2, 1)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Div(in[1]).Sum()
			},
		},
		{
			name:   "log_sqrt",
			inputs: []*autodiff.Tensor{positive(4)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Log().Add(in[0].Sqrt()).Sum()
			},
		},
		{
			name:   "exp_sin_cos",
			inputs: []*autodiff.Tensor{randn(4)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Sin().Mul(in[0].Cos()).Add(in[0].MulScalar(0.1).Exp()).Sum()
			},
		},
		{
			name:   "tanh_sigmoid",
			inputs: []*autodiff.Tensor{randn(5)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Tanh().Add(in[0].Sigmoid()).Mean()
			},
		},
		{
			name:   "matmul_transpose",
			inputs: []*autodiff.Tensor{randn(2, 3), randn(2, 3)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].MatMul(in[1].T()).Tanh().Sum()
			},
		},
		{
			name:   "reshape_expand",
			inputs: []*autodiff.Tensor{randn(6), randn(1, 3)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Reshape(tensor.Shape{2, 3}).Mul(in[1].Expand(tensor.Shape{2, 3})).Sum()
			},
		},
		{
			name:   "neg_pow_scalar",
			inputs: []*autodiff.Tensor{positive(3)},
			f: func(in []*autodiff.Tensor) *autodiff.Tensor {
				return in[0].Pow(1.5).Neg().AddScalar(2).Sum()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxErr, err := autodiff.CheckGradient(func() *autodiff.Tensor {
				return tt.f(tt.inputs)
			}, tt.inputs, checkEps, checkTol)
			require.NoError(t, err)
			assert.Less(t, maxErr, checkTol)
			for _, in := range tt.inputs {
				assert.Nil(t, in.Grad(), "gradient check must not accumulate into Grad")
			}
		})
	}
}

// TestCheckGradient_Mismatch uses a hook to corrupt the analytic gradient.
func TestCheckGradient_Mismatch(t *testing.T) {
	x := leaf(t, []float64{1, 2}, tensor.Shape{2}).SetName("x")

	f := func() *autodiff.Tensor {
		h := x.Square()
		h.RegisterHook(func(g *autodiff.Tensor) *autodiff.Tensor {
			return g.MulScalar(2)
		})
		return h.Sum()
	}

	_, err := autodiff.CheckGradient(f, []*autodiff.Tensor{x}, checkEps, checkTol)
	require.ErrorIs(t, err, autodiff.ErrGradientMismatch)

	var gcErr *autodiff.GradCheckError
	require.True(t, errors.As(err, &gcErr))
	assert.Equal(t, "x", gcErr.Input)
	assert.Equal(t, 0, gcErr.Index)
	assert.InDelta(t, 4, gcErr.Analytic, 1e-9)
	assert.InDelta(t, 2, gcErr.Numerical, 1e-4)
}

func TestCheckGradient_RestoresInputs(t *testing.T) {
	x := leaf(t, []float64{0.25, -1}, tensor.Shape{2})

	_, err := autodiff.CheckGradient(func() *autodiff.Tensor {
		return x.Exp().Sum()
	}, []*autodiff.Tensor{x}, checkEps, checkTol)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -1}, x.Data())
}
