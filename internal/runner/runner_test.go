package runner

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorio-ml/tensorio/engine"
	"github.com/tensorio-ml/tensorio/engine/enginetest"
	"github.com/tensorio-ml/tensorio/internal/blobs"
	"github.com/tensorio-ml/tensorio/tensorio"
)

// identityGraph declares one float32 input and one same-shaped output.
func identityGraph(batch, elems uint32) engine.GraphInfo {
	return engine.GraphInfo{
		Name: "identity",
		Inputs: []tensorio.Descriptor{
			{Name: "x", Rank: 2, Dims: []uint32{batch, elems}, Type: tensorio.Float32},
		},
		Outputs: []tensorio.Descriptor{
			{Name: "y", Rank: 2, Dims: []uint32{batch, elems}, Type: tensorio.Float32},
		},
	}
}

func writeFloatFile(t *testing.T, dir, name string, values []float32) string {
	t.Helper()
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readFloats(t *testing.T, path string) []float32 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func TestRunnerEndToEnd(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	// Three samples for a batch-2 tensor: the last batch is partial.
	files := []string{
		writeFloatFile(t, inputDir, "s0.raw", []float32{0, 1, 2}),
		writeFloatFile(t, inputDir, "s1.raw", []float32{10, 11, 12}),
		writeFloatFile(t, inputDir, "s2.raw", []float32{20, 21, 22}),
	}

	fake := &enginetest.Fake{GraphInfos: []engine.GraphInfo{identityGraph(2, 3)}}
	r, err := New(Config{
		Engine:     fake,
		InputLists: [][][]string{{files}},
		InputType:  tensorio.InputFloat,
		OutputType: tensorio.OutputFloatOnly,
		OutputDir:  outputDir,
	})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	// Two iterations: one full batch, one partial.
	assert.Equal(t, 2, fake.Executions)

	want := [][]float32{{0, 1, 2}, {10, 11, 12}, {20, 21, 22}}
	for s, w := range want {
		got := readFloats(t, filepath.Join(outputDir, "Result_"+string(rune('0'+s)), "y.raw"))
		assert.Equal(t, w, got, "sample %d", s)
	}
	// The partial batch writes one sample, not two.
	_, err = os.Stat(filepath.Join(outputDir, "Result_3"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunnerPublishesOutputs(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	storeDir := t.TempDir()

	files := []string{
		writeFloatFile(t, inputDir, "s0.raw", []float32{1, 2, 3}),
	}

	fake := &enginetest.Fake{GraphInfos: []engine.GraphInfo{identityGraph(1, 3)}}
	r, err := New(Config{
		Engine:     fake,
		InputLists: [][][]string{{files}},
		InputType:  tensorio.InputFloat,
		OutputType: tensorio.OutputFloatOnly,
		OutputDir:  outputDir,
		Publisher:  &blobs.DirBlobstore{Dir: storeDir},
	})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	entries, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "one result file published by content hash")
}

func TestRunnerRandomInputs(t *testing.T) {
	outputDir := t.TempDir()

	fake := &enginetest.Fake{GraphInfos: []engine.GraphInfo{identityGraph(2, 4)}}
	r, err := New(Config{
		Engine:        fake,
		InputType:     tensorio.InputFloat,
		OutputType:    tensorio.OutputNativeOnly,
		OutputDir:     outputDir,
		NumIterations: 3,
	})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 3, fake.Executions)
	// 3 iterations x batch 2 = 6 sample directories.
	for s := 0; s < 6; s++ {
		_, err := os.Stat(filepath.Join(outputDir, "Result_"+string(rune('0'+s)), "y_native.raw"))
		assert.NoError(t, err, "sample %d", s)
	}
}

func TestRunnerConfigValidation(t *testing.T) {
	fake := &enginetest.Fake{}

	_, err := New(Config{Engine: fake, InputType: tensorio.InputInvalid, OutputType: tensorio.OutputFloatOnly})
	require.Error(t, err)

	_, err = New(Config{Engine: fake, InputType: tensorio.InputFloat, OutputType: tensorio.OutputInvalid})
	require.Error(t, err)

	_, err = New(Config{Engine: fake, InputType: tensorio.InputFloat, OutputType: tensorio.OutputFloatOnly,
		InputLists: [][][]string{}, Loop: true})
	require.Error(t, err, "looping without an iteration bound never terminates")
}
