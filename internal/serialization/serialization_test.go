package serialization_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/serialization"
	"github.com/born-ml/gradbook/internal/tensor"
)

func testTensors(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	w, err := tensor.FromSlice([]float64{1.5, -2, 3.25, 0}, tensor.Shape{2, 2}, tensor.CPU)
	require.NoError(t, err)
	return map[string]*tensor.RawTensor{
		"weight": w,
		"bias":   tensor.Scalar(-0.125, tensor.CPU),
	}
}

func encode(t *testing.T, tensors map[string]*tensor.RawTensor, h serialization.Header) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, serialization.Write(&buf, tensors, h))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	data := encode(t, testTensors(t), serialization.Header{
		ModelType:  "Linear",
		CreatedAt:  created,
		Metadata:   map[string]string{"cell": "linear_regression"},
		Checkpoint: &serialization.CheckpointMeta{Epoch: 199, Loss: 0.0025, Optimizer: "SGD", LR: 0.1},
	})

	assert.Equal(t, serialization.MagicBytes, string(data[:4]))
	flags := binary.LittleEndian.Uint32(data[8:12])
	assert.Equal(t, serialization.FlagHasMetadata|serialization.FlagHasCheckpoint, flags)

	ckpt, err := serialization.Read(bytes.NewReader(data))
	require.NoError(t, err)

	h := ckpt.Header
	assert.Equal(t, serialization.FormatVersion, h.FormatVersion)
	assert.Equal(t, "Linear", h.ModelType)
	assert.True(t, created.Equal(h.CreatedAt))
	assert.Equal(t, "linear_regression", h.Metadata["cell"])
	require.NotNil(t, h.Checkpoint)
	assert.Equal(t, 199, h.Checkpoint.Epoch)

	require.Len(t, h.Tensors, 2)
	assert.Equal(t, "bias", h.Tensors[0].Name, "tensors are written in name order")

	require.Contains(t, ckpt.Tensors, "weight")
	assert.True(t, ckpt.Tensors["weight"].Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float64{1.5, -2, 3.25, 0}, ckpt.Tensors["weight"].Data())
	assert.Empty(t, ckpt.Tensors["bias"].Shape())
	assert.Equal(t, -0.125, ckpt.Tensors["bias"].Item())
}

func TestWrite_Deterministic(t *testing.T) {
	h := serialization.Header{CreatedAt: time.Unix(0, 0).UTC()}
	assert.Equal(t, encode(t, testTensors(t), h), encode(t, testTensors(t), h))
}

func TestWrite_DataAligned(t *testing.T) {
	data := encode(t, testTensors(t), serialization.Header{})
	headerSize := binary.LittleEndian.Uint64(data[16:24])
	dataSize := binary.LittleEndian.Uint64(data[24:32])

	assert.Equal(t, uint64(5*8), dataSize)
	assert.Zero(t, (len(data)-int(dataSize))%serialization.HeaderAlignment)
	assert.GreaterOrEqual(t, uint64(len(data)), serialization.FixedHeaderSize+headerSize+dataSize)
}

// craft assembles a file around an arbitrary header so that the checksum
// passes and only header validation stands between the bytes and the decoder.
func craft(t *testing.T, tensors []serialization.TensorMeta, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(serialization.Header{FormatVersion: serialization.FormatVersion, Tensors: tensors})
	require.NoError(t, err)

	fixed := make([]byte, serialization.FixedHeaderSize)
	copy(fixed, serialization.MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], serialization.FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	sum := sha256.Sum256(data)
	copy(fixed[serialization.ChecksumOffset:], sum[:])

	var buf bytes.Buffer
	buf.Write(fixed)
	buf.Write(headerJSON)
	for buf.Len()%serialization.HeaderAlignment != 0 {
		buf.WriteByte(0)
	}
	buf.Write(data)
	return buf.Bytes()
}

func TestRead_CraftedHeader(t *testing.T) {
	data := make([]byte, 8)

	t.Run("valid", func(t *testing.T) {
		file := craft(t, []serialization.TensorMeta{
			{Name: "w", DType: serialization.DTypeFloat64, Shape: []int{1}, Offset: 0, Size: 8},
		}, data)
		cp, err := serialization.Read(bytes.NewReader(file))
		require.NoError(t, err)
		assert.Contains(t, cp.Tensors, "w")
	})

	tests := []struct {
		name string
		meta serialization.TensorMeta
	}{
		{"offset_overflow", serialization.TensorMeta{
			Name: "w", DType: serialization.DTypeFloat64, Shape: []int{1},
			Offset: math.MaxInt64 - 4, Size: 8,
		}},
		{"element_overflow", serialization.TensorMeta{
			Name: "w", DType: serialization.DTypeFloat64, Shape: []int{1 << 31, 1 << 31, 4},
			Offset: 0, Size: 0,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := craft(t, []serialization.TensorMeta{tt.meta}, data)
			var err error
			require.NotPanics(t, func() {
				_, err = serialization.Read(bytes.NewReader(file))
			})
			assert.ErrorIs(t, err, serialization.ErrInvalidHeader)
		})
	}
}

func TestRead_Corruption(t *testing.T) {
	good := encode(t, testTensors(t), serialization.Header{})

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, serialization.ErrInvalidMagic},
		{"version", func(b []byte) []byte { b[4] = 9; return b }, serialization.ErrUnsupportedVersion},
		{"data", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }, serialization.ErrChecksumMismatch},
		{"checksum", func(b []byte) []byte { b[serialization.ChecksumOffset] ^= 0xff; return b }, serialization.ErrChecksumMismatch},
		{"header_size", func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[16:24], 1<<40)
			return b
		}, serialization.ErrHeaderTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(good))
			_, err := serialization.Read(bytes.NewReader(data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := serialization.Read(bytes.NewReader(good[:len(good)-3]))
		assert.Error(t, err)
	})
}

func TestValidateHeader(t *testing.T) {
	meta := func(name string, offset, size int64) serialization.TensorMeta {
		return serialization.TensorMeta{Name: name, DType: serialization.DTypeFloat64, Shape: []int{int(size / 8)}, Offset: offset, Size: size}
	}

	tests := []struct {
		name     string
		tensors  []serialization.TensorMeta
		dataSize int64
		errType  string
	}{
		{"ok", []serialization.TensorMeta{meta("a", 0, 16), meta("b", 16, 8)}, 24, ""},
		{"overlap", []serialization.TensorMeta{meta("a", 0, 16), meta("b", 8, 8)}, 24, "offset_overlap"},
		{"out_of_bounds", []serialization.TensorMeta{meta("a", 16, 16)}, 24, "out_of_bounds"},
		{"negative", []serialization.TensorMeta{meta("a", -8, 8)}, 24, "negative_offset"},
		{"duplicate", []serialization.TensorMeta{meta("a", 0, 8), meta("a", 8, 8)}, 24, "duplicate_name"},
		{"empty_name", []serialization.TensorMeta{meta("", 0, 8)}, 24, "invalid_name"},
		{"path_name", []serialization.TensorMeta{meta("../a", 0, 8)}, 24, "invalid_name"},
		{"dtype", []serialization.TensorMeta{{Name: "a", DType: "float32", Shape: []int{1}, Size: 4}}, 24, "unsupported_dtype"},
		{"size", []serialization.TensorMeta{{Name: "a", DType: serialization.DTypeFloat64, Shape: []int{2}, Size: 8}}, 24, "size_mismatch"},
		{"shape", []serialization.TensorMeta{{Name: "a", DType: serialization.DTypeFloat64, Shape: []int{0}, Size: 0}}, 24, "invalid_shape"},
		{"offset_overflow", []serialization.TensorMeta{{Name: "a", DType: serialization.DTypeFloat64, Shape: []int{1}, Offset: math.MaxInt64 - 4, Size: 8}}, 24, "out_of_bounds"},
		{"element_overflow", []serialization.TensorMeta{{Name: "a", DType: serialization.DTypeFloat64, Shape: []int{1 << 31, 1 << 31, 4}, Size: 0}}, 8, "shape_too_large"},
		{"shape_exceeds_data", []serialization.TensorMeta{{Name: "a", DType: serialization.DTypeFloat64, Shape: []int{4}, Size: 32}}, 24, "shape_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := serialization.ValidateHeader(&serialization.Header{Tensors: tt.tensors}, tt.dataSize)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			var verr *serialization.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.errType, verr.Type)
			assert.ErrorIs(t, err, serialization.ErrInvalidHeader)
		})
	}
}
