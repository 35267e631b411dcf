// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the raw float64 tensors that gradbook computes on.
//
// # Overview
//
// A RawTensor is a contiguous row-major float64 buffer plus its Shape. It
// carries no gradient information; the autodiff package wraps it to build
// computation graphs. Kernels live behind the Backend interface.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/gradbook/backend/cpu"
//	    "github.com/born-ml/gradbook/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    a := tensor.Full(tensor.Shape{3, 1}, 2, tensor.CPU)  // (3, 1)
//	    b := tensor.Ones(tensor.Shape{3, 4}, tensor.CPU)     // (3, 4)
//	    c := backend.Add(a, b)                               // (3, 4)
//	}
//
// # Broadcasting
//
// Binary operations follow NumPy broadcasting rules. BroadcastShapes
// computes the result shape and reports whether broadcasting was needed.
package tensor
