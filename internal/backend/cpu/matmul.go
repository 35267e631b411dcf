package cpu

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/parallel"
	"github.com/born-ml/gradbook/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N). Rows of the result are
// computed in parallel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, cpu.device)
	dst, aData, bData := result.Data(), a.Data(), b.Data()

	parallel.For(m, func(i int) {
		row := dst[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := aData[i*k+p]
			if av == 0 {
				continue
			}
			bRow := bData[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * bRow[j]
			}
		}
	}, rowConfig(cpu.par, n*k))

	return result
}

// rowConfig rescales the element threshold of cfg for a loop whose
// iterations each touch work elements.
func rowConfig(cfg parallel.Config, work int) parallel.Config {
	if work > 0 {
		cfg.MinChunkSize = max(1, cfg.MinChunkSize/work)
	}
	return cfg
}

// Transpose swaps the two axes of a 2D tensor.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got shape %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result := tensor.MustNewRaw(tensor.Shape{cols, rows}, cpu.device)
	dst, src := result.Data(), x.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}
