package tensorio

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// PopulateInputTensors fills one batch-worth of every input tensor from the
// per-slot file lists, starting at indexOffset into each list. One file holds
// exactly one sample; batch size is the tensor's leading-dimension extent.
//
// When the cursor would run past the end of a slot's list and loopBackToStart
// is true, it wraps to index 0 and continues; when false, the call stops
// early and reports the partial count with a nil error. The caller must
// distinguish that exhaustion signal, via the returned count, from true I/O
// failures, which are errors.
//
// inputNameToIndex, when non-nil, maps tensor names to slots in filePaths;
// a missing entry for any input tensor is an error. When nil, slot i feeds
// tensor i.
//
// Returns the new cursor position and the number of files consumed per slot.
// All slots must consume the same number of files.
func (io *IOTensor) PopulateInputTensors(
	graphIdx int,
	filePaths [][]string,
	indexOffset int,
	loopBackToStart bool,
	inputNameToIndex map[string]int,
	inputs []*Tensor,
	mode InputDataType,
) (int, int, error) {
	if mode == InputInvalid {
		return indexOffset, 0, fmt.Errorf("graph %d: %w: %s", graphIdx, ErrInvalidMode, mode)
	}
	if indexOffset < 0 {
		return indexOffset, 0, fmt.Errorf("graph %d: negative index offset %d", graphIdx, indexOffset)
	}

	newOffset := indexOffset
	numPopulated := 0
	for i, t := range inputs {
		slot := i
		if inputNameToIndex != nil {
			mapped, ok := inputNameToIndex[t.Name()]
			if !ok {
				return indexOffset, 0, fmt.Errorf("graph %d: no file list slot for input tensor %s", graphIdx, t.Name())
			}
			slot = mapped
		}
		if slot < 0 || slot >= len(filePaths) {
			return indexOffset, 0, fmt.Errorf("graph %d: input tensor %s mapped to slot %d, have %d slots",
				graphIdx, t.Name(), slot, len(filePaths))
		}

		off, n, err := populateInputTensor(filePaths[slot], indexOffset, loopBackToStart, t, mode)
		if err != nil {
			return indexOffset, 0, fmt.Errorf("graph %d: input tensor %s: %w", graphIdx, t.Name(), err)
		}
		if i > 0 && (off != newOffset || n != numPopulated) {
			return indexOffset, 0, fmt.Errorf("graph %d: input tensor %s consumed %d files, previous inputs consumed %d",
				graphIdx, t.Name(), n, numPopulated)
		}
		newOffset, numPopulated = off, n
	}

	io.numFilesPopulated += numPopulated
	return newOffset, numPopulated, nil
}

// populateInputTensor fills one tensor from its slot's file list.
func populateInputTensor(paths []string, offset int, loop bool, t *Tensor, mode InputDataType) (int, int, error) {
	if err := t.checkLive(); err != nil {
		return offset, 0, err
	}
	if len(paths) == 0 {
		return offset, 0, fmt.Errorf("%w: empty input file list", ErrShapeMismatch)
	}

	batch := t.BatchSize()
	sampleElems := t.NumElements() / batch

	consumed := 0
	for s := 0; s < batch; s++ {
		idx := offset + consumed
		if idx >= len(paths) {
			if !loop {
				break
			}
			idx %= len(paths)
		}

		if err := readSampleInto(paths[idx], t, s*sampleElems, sampleElems, mode); err != nil {
			return offset, 0, err
		}
		consumed++
	}

	newOffset := offset + consumed
	if loop {
		newOffset %= len(paths)
	}
	return newOffset, consumed, nil
}

// readSampleInto reads one sample file into the tensor at the given element
// offset. The file's byte length must exactly equal one sample.
func readSampleInto(path string, t *Tensor, elemOffset, sampleElems int, mode InputDataType) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	switch mode {
	case InputFloat:
		want := sampleElems * 4
		if len(data) != want {
			return fmt.Errorf("%w: file %s holds %d bytes, want %d (float sample)",
				ErrShapeMismatch, path, len(data), want)
		}
		return quantizeInto(t, elemOffset, bytesToFloats(data))
	case InputNative:
		want := sampleElems * t.DataType().Size()
		if len(data) != want {
			return fmt.Errorf("%w: file %s holds %d bytes, want %d (native sample)",
				ErrShapeMismatch, path, len(data), want)
		}
		copy(t.Data()[elemOffset*t.DataType().Size():], data)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
}

// PopulateFromBuffers fills input tensors from pre-loaded memory buffers,
// mapping buffer i to input slot i. No file I/O and no looping: each buffer
// must hold the tensor's full batch.
func (io *IOTensor) PopulateFromBuffers(buffers [][]byte, inputs []*Tensor, mode InputDataType) error {
	if mode == InputInvalid {
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	if len(buffers) != len(inputs) {
		return fmt.Errorf("%w: %d buffers for %d input tensors", ErrShapeMismatch, len(buffers), len(inputs))
	}

	for i, t := range inputs {
		if err := t.checkLive(); err != nil {
			return err
		}
		data := buffers[i]
		switch mode {
		case InputFloat:
			want := t.NumElements() * 4
			if len(data) != want {
				return fmt.Errorf("input tensor %s: %w: buffer holds %d bytes, want %d (float)",
					t.Name(), ErrShapeMismatch, len(data), want)
			}
			if err := quantizeInto(t, 0, bytesToFloats(data)); err != nil {
				return fmt.Errorf("input tensor %s: %w", t.Name(), err)
			}
		case InputNative:
			if len(data) != t.ByteSize() {
				return fmt.Errorf("input tensor %s: %w: buffer holds %d bytes, want %d (native)",
					t.Name(), ErrShapeMismatch, len(data), t.ByteSize())
			}
			copy(t.Data(), data)
		}
	}
	return nil
}

// PopulateRandom fills input tensors with uniform random floats in [-1, 1),
// quantized into each tensor's native encoding. Intended for benchmarking a
// graph without a dataset.
func (io *IOTensor) PopulateRandom(inputs []*Tensor) error {
	for _, t := range inputs {
		if err := t.checkLive(); err != nil {
			return err
		}
		floats, err := allocateBuffer[float32](t.NumElements())
		if err != nil {
			return fmt.Errorf("input tensor %s: %w", t.Name(), err)
		}
		for i := range floats {
			floats[i] = rand.Float32()*2 - 1
		}
		if err := quantizeInto(t, 0, floats); err != nil {
			return fmt.Errorf("input tensor %s: %w", t.Name(), err)
		}
	}
	return nil
}

// bytesToFloats decodes little-endian IEEE-754 single-precision values.
func bytesToFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
