package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// The caller owns rng so notebook runs are reproducible.
func Xavier(fanIn, fanOut int, shape tensor.Shape, backend tensor.Backend, rng *rand.Rand) *autodiff.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := autodiff.Zeros(shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // Weight initialization is not security-critical.
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return t
}
