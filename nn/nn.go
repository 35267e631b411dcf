// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/gradbook/autodiff"
	"github.com/born-ml/gradbook/internal/nn"
	"github.com/born-ml/gradbook/tensor"
)

// Module is the base interface for all neural network components.
type Module = nn.Module

// Parameter is a named trainable tensor.
type Parameter = nn.Parameter

// Linear is a fully connected layer: y = x @ Wᵀ + b.
type Linear = nn.Linear

// Sequential chains modules.
type Sequential = nn.Sequential

// ReLU activation.
type ReLU = nn.ReLU

// Sigmoid activation.
type Sigmoid = nn.Sigmoid

// Tanh activation.
type Tanh = nn.Tanh

// MSELoss is the mean squared error.
type MSELoss = nn.MSELoss

// NewParameter marks t as requiring grad and names it.
func NewParameter(name string, t *autodiff.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng)
}

// NewSequential chains modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU { return nn.NewReLU() }

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() *Sigmoid { return nn.NewSigmoid() }

// NewTanh creates a Tanh activation.
func NewTanh() *Tanh { return nn.NewTanh() }

// NewMSELoss creates a mean squared error loss.
func NewMSELoss() *MSELoss { return nn.NewMSELoss() }

// Xavier samples a uniform Xavier/Glorot-initialized tensor.
func Xavier(fanIn, fanOut int, shape tensor.Shape, backend tensor.Backend, rng *rand.Rand) *autodiff.Tensor {
	return nn.Xavier(fanIn, fanOut, shape, backend, rng)
}

// ZeroGrad clears the gradients of every parameter of m.
func ZeroGrad(m Module) {
	nn.ZeroGrad(m)
}

// StateDict returns m's parameter values keyed by name.
func StateDict(m Module) map[string]*tensor.RawTensor {
	return nn.StateDict(m)
}

// LoadStateDict copies values from state into m's parameters.
func LoadStateDict(m Module, state map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(m, state)
}
