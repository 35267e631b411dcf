package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/gradbook/internal/tensor"
)

// ValidateHeader checks tensor metadata against a data section of dataSize
// bytes: names, shapes, sizes and that regions neither overlap nor run past
// the end.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > maxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), maxTensorCount),
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := validateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "name appears twice"}
		}
		seen[t.Name] = true

		if t.DType != DTypeFloat64 {
			return &ValidationError{Type: "unsupported_dtype", Tensor: t.Name, Details: t.DType}
		}
		shape := tensor.Shape(t.Shape)
		if err := shape.Validate(); err != nil {
			return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: err.Error()}
		}
		elems, ok := boundedElements(shape, dataSize/bytesPerFloat64)
		if !ok {
			return &ValidationError{
				Type:    "shape_too_large",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v does not fit in %d bytes of data", shape, dataSize),
			}
		}
		if want := elems * bytesPerFloat64; t.Size != want {
			return &ValidationError{
				Type:    "size_mismatch",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v needs %d bytes, header says %d", shape, want, t.Size),
			}
		}
	}

	return validateOffsets(h.Tensors, dataSize)
}

func validateOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := slices.Clone(tensors)
	slices.SortFunc(sorted, func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}
		if t.Offset > dataSize-t.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// boundedElements returns the element count of shape, or false once the
// running product exceeds limit.
func boundedElements(shape tensor.Shape, limit int64) (int64, bool) {
	n := int64(1)
	for _, dim := range shape {
		if int64(dim) > limit/n {
			return 0, false
		}
		n *= int64(dim)
	}
	return n, n <= limit
}

func validateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	case len(name) > maxTensorNameLen:
		return &ValidationError{Type: "invalid_name", Tensor: name[:32], Details: "name too long"}
	case strings.ContainsAny(name, "\x00/\\"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains a path separator or NUL"}
	}
	return nil
}
