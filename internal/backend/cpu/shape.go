package cpu

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/parallel"
	"github.com/born-ml/gradbook/internal/tensor"
)

// Reshape returns a copy of x with a new shape of equal element count.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := x.Clone().WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Expand broadcasts x to shape, materialising the repeated values.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	inShape := x.Shape()
	if !inShape.CanBroadcastTo(shape) {
		panic(fmt.Sprintf("expand: cannot broadcast %v to %v", inShape, shape))
	}

	result := tensor.MustNewRaw(shape, cpu.device)
	dst, src := result.Data(), x.Data()
	strides := x.Strides()
	parallel.ForChunks(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = src[tensor.BroadcastIndex(i, shape, inShape, strides)]
		}
	}, cpu.par)
	return result
}

// SumTo sums x over the broadcast dimensions so the result has shape.
// It is the adjoint of Expand: SumTo(Expand(x, s), x.Shape()) scales x by
// the number of repeats.
func (cpu *CPUBackend) SumTo(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if xShape.Equal(shape) {
		return x.Clone()
	}
	if !shape.CanBroadcastTo(xShape) {
		panic(fmt.Sprintf("sum_to: cannot reduce %v to %v", xShape, shape))
	}

	result := tensor.MustNewRaw(shape, cpu.device)
	dst, src := result.Data(), x.Data()
	strides := shape.ComputeStrides()
	for i, v := range src {
		dst[tensor.BroadcastIndex(i, xShape, shape, strides)] += v
	}
	return result
}

// Sum reduces all elements to a 0-D tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	var total float64
	for _, v := range x.Data() {
		total += v
	}
	return tensor.Scalar(total, cpu.device)
}
