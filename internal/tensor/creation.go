package tensor

import (
	"fmt"
	"math/rand/v2"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	copy(raw.data, data)
	return raw, nil
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(Shape{3, 4}, tensor.CPU)
func Zeros(shape Shape, device Device) *RawTensor {
	return MustNewRaw(shape, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, device Device) *RawTensor {
	return Full(shape, 1, device)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, 3.14, tensor.CPU)
func Full(shape Shape, value float64, device Device) *RawTensor {
	t := MustNewRaw(shape, device)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Scalar creates a 0-D tensor holding v.
func Scalar(v float64, device Device) *RawTensor {
	return Full(Shape{}, v, device)
}

// Linspace creates a 1-D tensor of n evenly spaced values over [start, end].
// n must be at least 2.
func Linspace(start, end float64, n int, device Device) (*RawTensor, error) {
	if n < 2 {
		return nil, fmt.Errorf("linspace needs at least 2 points, got %d", n)
	}
	t := MustNewRaw(Shape{n}, device)
	step := (end - start) / float64(n-1)
	for i := range t.data {
		t.data[i] = start + float64(i)*step
	}
	t.data[n-1] = end
	return t, nil
}

// Randn creates a tensor with values from a standard normal distribution.
// The caller owns the generator so runs can be reproduced from a seed.
func Randn(shape Shape, rng *rand.Rand, device Device) *RawTensor {
	t := MustNewRaw(shape, device)
	for i := range t.data {
		t.data[i] = rng.NormFloat64()
	}
	return t
}
