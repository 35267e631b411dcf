// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update nn parameters in place.
//
// Available optimizers:
//   - SGD with optional momentum
//   - Adam
//
// Example:
//
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//	for epoch := range epochs {
//	    opt.ZeroGrad()
//	    loss := criterion.Forward(model.Forward(x), y)
//	    _ = loss.Backward()
//	    opt.Step()
//	}
package optim
