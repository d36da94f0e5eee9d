package tensorio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quantizedOutput builds a 4x3 UFixed8 output tensor holding known values.
func quantizedOutput(t *testing.T) *Tensor {
	t.Helper()
	quant := QuantParams{Scale: 0.1, Offset: 128}
	out, err := newTensor(&Descriptor{
		Name: "scores", Rank: 2, Dims: []uint32{4, 3}, Type: UFixed8, Quant: &quant,
	})
	require.NoError(t, err)
	native := out.Uint8s()
	for i := range native {
		native[i] = uint8(100 + i)
	}
	return out
}

func readFloats(t *testing.T, path string) []float32 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Zero(t, len(data)%4)
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func TestWriteOutputTensorsFloat(t *testing.T) {
	dir := t.TempDir()
	out := quantizedOutput(t)
	io := New()

	err := io.WriteOutputTensors(0, 0, "g", []*Tensor{out}, OutputFloatOnly, 1, dir, 4, 4)
	require.NoError(t, err)

	// One file per sample, no graph namespace for a single graph.
	for s := 0; s < 4; s++ {
		path := filepath.Join(dir, "Result_"+string(rune('0'+s)), "scores.raw")
		got := readFloats(t, path)
		require.Len(t, got, 3)
		for i, v := range got {
			native := float64(100 + s*3 + i)
			want := float32((native - 128) * 0.1)
			assert.InDelta(t, want, v, 1e-6, "sample %d element %d", s, i)
		}
	}
}

func TestWriteOutputTensorsPartialBatch(t *testing.T) {
	dir := t.TempDir()
	out := quantizedOutput(t)
	io := New()

	// Batch of 4 but only 2 input files were populated: write exactly 2.
	err := io.WriteOutputTensors(0, 0, "g", []*Tensor{out}, OutputFloatOnly, 1, dir, 2, 4)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "Result_0", "scores.raw"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "Result_1", "scores.raw"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "Result_2"))
	assert.True(t, os.IsNotExist(err), "padding samples must not be written")
}

func TestWriteOutputTensorsNativeAndNamespace(t *testing.T) {
	dir := t.TempDir()
	out := quantizedOutput(t)
	io := New()

	// Multiple graphs: outputs are namespaced by graph name.
	err := io.WriteOutputTensors(1, 10, "resnet", []*Tensor{out}, OutputFloatAndNative, 2, dir, 4, 4)
	require.NoError(t, err)

	// startIdx offsets the sample index in the directory name.
	floatPath := filepath.Join(dir, "resnet", "Result_10", "scores.raw")
	nativePath := filepath.Join(dir, "resnet", "Result_10", "scores_native.raw")

	_, err = os.Stat(floatPath)
	require.NoError(t, err)

	native, err := os.ReadFile(nativePath)
	require.NoError(t, err)
	assert.Equal(t, []byte{100, 101, 102}, native, "native file holds the raw byte image of sample 0")

	native, err = os.ReadFile(filepath.Join(dir, "resnet", "Result_13", "scores_native.raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte{109, 110, 111}, native)
}

func TestWriteOutputTensorsInvalidMode(t *testing.T) {
	out := quantizedOutput(t)
	io := New()
	err := io.WriteOutputTensors(0, 0, "g", []*Tensor{out}, OutputInvalid, 1, t.TempDir(), 4, 4)
	require.ErrorIs(t, err, ErrInvalidMode)
}
