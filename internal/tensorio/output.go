package tensorio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// WriteOutputTensors converts and persists one batch of output tensors.
// Float modes dequantize via ConvertToFloat and write one file per sample;
// native modes write the raw native bytes per sample. Sample s lands in
// Result_<startIdx+s>/ under outputPath, namespaced by graph name when the
// run holds more than one graph.
//
// A partially filled last batch (numInputFilesPopulated < outputBatchSize)
// truncates to numInputFilesPopulated samples; padding samples are never
// written. Outputs are never looped or reused.
func (io *IOTensor) WriteOutputTensors(
	graphIdx int,
	startIdx int,
	graphName string,
	outputs []*Tensor,
	outputType OutputDataType,
	graphsCount int,
	outputPath string,
	numInputFilesPopulated int,
	outputBatchSize int,
) error {
	if outputType == OutputInvalid {
		return fmt.Errorf("graph %d: %w: %s", graphIdx, ErrInvalidMode, outputType)
	}

	base := outputPath
	if graphsCount > 1 {
		base = filepath.Join(outputPath, graphName)
	}

	numSamples := outputBatchSize
	if numInputFilesPopulated < numSamples {
		numSamples = numInputFilesPopulated
	}

	for _, t := range outputs {
		if err := writeOutputTensor(t, base, startIdx, numSamples, outputType); err != nil {
			return fmt.Errorf("graph %d: output tensor %s: %w", graphIdx, t.Name(), err)
		}
	}
	return nil
}

// writeOutputTensor writes the requested representations of one tensor,
// one file per sample.
func writeOutputTensor(t *Tensor, base string, startIdx, numSamples int, outputType OutputDataType) error {
	if err := t.checkLive(); err != nil {
		return err
	}

	batch := t.BatchSize()
	if numSamples > batch {
		numSamples = batch
	}
	sampleElems := t.NumElements() / batch
	sampleBytes := sampleElems * t.DataType().Size()

	var floats []float32
	if outputType.Float() {
		var err error
		floats, err = ConvertToFloat(t)
		if err != nil {
			return err
		}
	}

	for s := 0; s < numSamples; s++ {
		dir := filepath.Join(base, fmt.Sprintf("Result_%d", startIdx+s))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		if outputType.Float() {
			sample := floats[s*sampleElems : (s+1)*sampleElems]
			path := filepath.Join(dir, t.Name()+".raw")
			if err := os.WriteFile(path, floatsToBytes(sample), 0o644); err != nil {
				return fmt.Errorf("writing float output: %w", err)
			}
		}
		if outputType.Native() {
			sample := t.Data()[s*sampleBytes : (s+1)*sampleBytes]
			path := filepath.Join(dir, t.Name()+"_native.raw")
			if err := os.WriteFile(path, sample, 0o644); err != nil {
				return fmt.Errorf("writing native output: %w", err)
			}
		}
	}
	return nil
}

// floatsToBytes encodes float32 values as little-endian IEEE-754, row-major.
func floatsToBytes(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
