// Package cpu implements the CPU backend: pure Go kernels over contiguous
// float64 buffers, with elementwise loops fanned out by internal/parallel.
package cpu

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/parallel"
	"github.com/born-ml/gradbook/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
// Division by zero follows IEEE 754 (±Inf or NaN).
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// binary applies f element-wise over the broadcast of a and b.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.MustNewRaw(outShape, cpu.device)
	dst, aData, bData := result.Data(), a.Data(), b.Data()

	if !needsBroadcast {
		// Fast path: same shape
		parallel.ForChunks(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(aData[i], bData[i])
			}
		}, cpu.par)
		return result
	}

	// Slow path: broadcasting required
	aShape, bShape := a.Shape(), b.Shape()
	aStrides, bStrides := a.Strides(), b.Strides()
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			ai := tensor.BroadcastIndex(i, outShape, aShape, aStrides)
			bi := tensor.BroadcastIndex(i, outShape, bShape, bStrides)
			dst[i] = f(aData[ai], bData[bi])
		}
	}, cpu.par)
	return result
}

// unary applies f element-wise, producing a tensor of x's shape.
func (cpu *CPUBackend) unary(x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), cpu.device)
	dst, src := result.Data(), x.Data()
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, cpu.par)
	return result
}
