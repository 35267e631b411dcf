// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand/v2"

	"github.com/born-ml/gradbook/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} is a matrix with 2 rows and 3 columns; Shape{} is a scalar.
type Shape = tensor.Shape

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only supported device.
const CPU Device = tensor.CPU

// RawTensor is a contiguous row-major float64 buffer with a shape.
type RawTensor = tensor.RawTensor

// Backend computes tensor kernels. See backend/cpu for the implementation.
type Backend = tensor.Backend

// BroadcastShapes returns the NumPy broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, device Device) *RawTensor {
	return tensor.Zeros(shape, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, device Device) *RawTensor {
	return tensor.Ones(shape, device)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, device Device) *RawTensor {
	return tensor.Full(shape, value, device)
}

// Scalar creates a 0-dimensional tensor.
func Scalar(v float64, device Device) *RawTensor {
	return tensor.Scalar(v, device)
}

// Linspace creates n evenly spaced values over [start, end].
func Linspace(start, end float64, n int, device Device) (*RawTensor, error) {
	return tensor.Linspace(start, end, n, device)
}

// Randn creates a tensor of standard normal samples drawn from rng.
func Randn(shape Shape, rng *rand.Rand, device Device) *RawTensor {
	return tensor.Randn(shape, rng, device)
}
