package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/parallel"
	"github.com/born-ml/gradbook/internal/tensor"
)

var _ tensor.Backend = (*CPUBackend)(nil)

func raw(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, shape, tensor.CPU)
	require.NoError(t, err)
	return r
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := raw(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})

	assert.Equal(t, []float64{6, 8, 10, 12}, backend.Add(a, b).Data())
	assert.Equal(t, []float64{-4, -4, -4, -4}, backend.Sub(a, b).Data())
	assert.Equal(t, []float64{5, 12, 21, 32}, backend.Mul(a, b).Data())
	assert.InDeltaSlice(t, []float64{0.2, 2.0 / 6, 3.0 / 7, 0.5}, backend.Div(a, b).Data(), 1e-12)
}

func TestCPUBackend_AddBroadcast(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	row := raw(t, []float64{10, 20, 30}, tensor.Shape{3})
	col := raw(t, []float64{100, 200}, tensor.Shape{2, 1})

	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, backend.Add(a, row).Data())
	assert.Equal(t, []float64{101, 102, 103, 204, 205, 206}, backend.Add(a, col).Data())

	s := tensor.Scalar(2, tensor.CPU)
	out := backend.Mul(s, a)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, out.Data())
}

func TestCPUBackend_BinaryIncompatible(t *testing.T) {
	backend := New()
	a := tensor.Zeros(tensor.Shape{2, 3}, tensor.CPU)
	b := tensor.Zeros(tensor.Shape{2, 4}, tensor.CPU)
	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestCPUBackend_Parallel(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})
	n := 1000
	a := tensor.Full(tensor.Shape{n}, 2, tensor.CPU)
	b := tensor.Full(tensor.Shape{n}, 3, tensor.CPU)

	for _, v := range backend.Mul(a, b).Data() {
		assert.Equal(t, 6.0, v)
	}
}

func TestCPUBackend_Unary(t *testing.T) {
	backend := New()
	x := raw(t, []float64{-1, 0, 2}, tensor.Shape{3})

	assert.Equal(t, []float64{1, 0, -2}, backend.Neg(x).Data())
	assert.Equal(t, []float64{0, 0, 2}, backend.ReLU(x).Data())
	assert.Equal(t, []float64{0, 0, 1}, backend.Step(x).Data())
	assert.Equal(t, []float64{1, 0, 4}, backend.Pow(x, 2).Data())
	assert.Equal(t, []float64{1, 2, 4}, backend.AddScalar(x, 2).Data())
	assert.Equal(t, []float64{-3, 0, 6}, backend.MulScalar(x, 3).Data())
	assert.InDeltaSlice(t, []float64{math.Exp(-1), 1, math.Exp(2)}, backend.Exp(x).Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Sin(-1), 0, math.Sin(2)}, backend.Sin(x).Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Cos(-1), 1, math.Cos(2)}, backend.Cos(x).Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Tanh(-1), 0, math.Tanh(2)}, backend.Tanh(x).Data(), 1e-12)
}

func TestCPUBackend_Sigmoid(t *testing.T) {
	backend := New()
	x := raw(t, []float64{-1000, 0, 1000}, tensor.Shape{3})

	out := backend.Sigmoid(x).Data()
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 0.5, out[1], 1e-12)
	assert.InDelta(t, 1, out[2], 1e-12)
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
	}
}

func TestCPUBackend_Log(t *testing.T) {
	backend := New()
	x := raw(t, []float64{1, math.E, 0}, tensor.Shape{3})

	out := backend.Log(x).Data()
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 1, out[1], 1e-12)
	assert.True(t, math.IsInf(out[2], -1))
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())
}

func TestCPUBackend_MatMulMismatch(t *testing.T) {
	backend := New()
	a := tensor.Zeros(tensor.Shape{2, 3}, tensor.CPU)
	assert.Panics(t, func() { backend.MatMul(a, a) })
	assert.Panics(t, func() { backend.MatMul(tensor.Zeros(tensor.Shape{3}, tensor.CPU), a) })
}

func TestRowConfig(t *testing.T) {
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 4096}

	assert.Equal(t, 4, rowConfig(cfg, 1024).MinChunkSize)
	assert.Equal(t, 1, rowConfig(cfg, 64*64).MinChunkSize)
	assert.Equal(t, 1, rowConfig(cfg, 1<<20).MinChunkSize)
	assert.Equal(t, 4096, rowConfig(cfg, 0).MinChunkSize)
	assert.True(t, rowConfig(cfg, 64).Enabled)
}

// TestCPUBackend_MatMulParallel checks that a row-parallel product matches
// the sequential one.
func TestCPUBackend_MatMulParallel(t *testing.T) {
	const m, k, n = 37, 64, 48
	aData := make([]float64, m*k)
	for i := range aData {
		aData[i] = float64(i%7) - 3
	}
	bData := make([]float64, k*n)
	for i := range bData {
		bData[i] = float64(i%5) * 0.5
	}
	a := raw(t, aData, tensor.Shape{m, k})
	b := raw(t, bData, tensor.Shape{k, n})

	seq := NewWithConfig(parallel.Config{Enabled: false}).MatMul(a, b)
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 4096}).MatMul(a, b)
	assert.Equal(t, seq.Data(), par.Data())
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose(a)
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Reshape(a, tensor.Shape{3, 2})
	out.Data()[0] = 100
	assert.Equal(t, 1.0, a.Data()[0], "Reshape must not alias its input")
	assert.Panics(t, func() { backend.Reshape(a, tensor.Shape{4}) })
}

func TestCPUBackend_ExpandSumTo(t *testing.T) {
	backend := New()
	row := raw(t, []float64{1, 2, 3}, tensor.Shape{1, 3})

	expanded := backend.Expand(row, tensor.Shape{2, 3})
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, expanded.Data())

	back := backend.SumTo(expanded, tensor.Shape{1, 3})
	assert.Equal(t, []float64{2, 4, 6}, back.Data())

	scalar := backend.SumTo(expanded, tensor.Shape{})
	assert.Equal(t, 12.0, scalar.Item())

	col := backend.SumTo(expanded, tensor.Shape{2, 1})
	assert.Equal(t, []float64{6, 6}, col.Data())

	assert.Panics(t, func() { backend.Expand(expanded, tensor.Shape{3, 3}) })
	assert.Panics(t, func() { backend.SumTo(expanded, tensor.Shape{2}) })
}

func TestCPUBackend_Sum(t *testing.T) {
	backend := New()
	a := raw(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})

	out := backend.Sum(a)
	assert.Empty(t, out.Shape())
	assert.Equal(t, 10.0, out.Item())
}
