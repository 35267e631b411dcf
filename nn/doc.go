// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks on top of autodiff.
//
// This package provides:
//   - Module interface and Sequential container
//   - Parameter: named trainable tensors
//   - Linear layer with Xavier initialization
//   - Activations: ReLU, Sigmoid, Tanh
//   - MSELoss
//
// Example:
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/born-ml/gradbook/backend/cpu"
//	    "github.com/born-ml/gradbook/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewPCG(1, 2))
//
//	    model := nn.NewSequential(
//	        nn.NewLinear(1, 8, backend, rng),
//	        nn.NewTanh(),
//	        nn.NewLinear(8, 1, backend, rng),
//	    )
//	    loss := nn.NewMSELoss().Forward(model.Forward(x), y)
//	}
package nn
