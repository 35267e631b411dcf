// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - NumPy-compatible broadcasting
//   - Optional chunked parallel execution for large elementwise kernels
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/gradbook/autodiff"
//	    "github.com/born-ml/gradbook/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := autodiff.Scalar(3, backend).RequireGrad()
//	    _ = x.Square().Backward()
//	}
//
// Kernels panic on shape mismatches. The autodiff layer validates shapes
// before it calls into the backend.
package cpu
