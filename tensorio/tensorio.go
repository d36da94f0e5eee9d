// Copyright 2025 The TensorIO Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensorio provides the public API for marshalling tensor data in
// and out of an inference graph's native buffers.
//
// The package covers the full input/output lifecycle around a graph
// execution engine:
//   - IOTensor: per-graph buffer setup, population, and teardown
//   - Descriptor, GraphInfo: the read-only tensor contract engines supply
//   - ConvertToFloat / CopyFromFloatToNative: quantized <-> float conversion
//   - ParseInputDataType / ParseOutputDataType: configuration token mapping
//
// Example:
//
//	io := tensorio.New()
//	inputs, outputs, err := io.SetupInputAndOutputTensors(graph)
//	if err != nil {
//	    return err
//	}
//	defer io.TearDownInputAndOutputTensors(inputs, outputs)
//
//	offset, n, err := io.PopulateInputTensors(0, fileLists, 0, true, nil, inputs, tensorio.InputFloat)
package tensorio

import (
	"github.com/tensorio-ml/tensorio/internal/tensorio"
)

// DataType represents the element encoding a graph expects in tensor memory.
type DataType = tensorio.DataType

// Element type constants.
const (
	Float32  DataType = tensorio.Float32
	UFixed8  DataType = tensorio.UFixed8
	UFixed16 DataType = tensorio.UFixed16
	UFixed32 DataType = tensorio.UFixed32
	SFixed8  DataType = tensorio.SFixed8
	SFixed16 DataType = tensorio.SFixed16
	SFixed32 DataType = tensorio.SFixed32
	Uint8    DataType = tensorio.Uint8
	Int32    DataType = tensorio.Int32
)

// QuantParams holds the affine quantization parameters of a fixed-point
// tensor: float = (native - Offset) * Scale.
type QuantParams = tensorio.QuantParams

// Descriptor describes one graph tensor as supplied by the execution engine.
type Descriptor = tensorio.Descriptor

// GraphInfo is the external descriptor contract for one graph.
type GraphInfo = tensorio.GraphInfo

// Tensor is a native tensor handle backed by an exclusively owned buffer.
type Tensor = tensorio.Tensor

// IOTensor manages the native tensor buffers for one graph.
type IOTensor = tensorio.IOTensor

// InputDataType selects how input source bytes are interpreted.
type InputDataType = tensorio.InputDataType

// Input marshalling modes.
const (
	InputFloat   InputDataType = tensorio.InputFloat
	InputNative  InputDataType = tensorio.InputNative
	InputInvalid InputDataType = tensorio.InputInvalid
)

// OutputDataType selects which representations of output tensors are written.
type OutputDataType = tensorio.OutputDataType

// Output marshalling modes.
const (
	OutputFloatOnly      OutputDataType = tensorio.OutputFloatOnly
	OutputNativeOnly     OutputDataType = tensorio.OutputNativeOnly
	OutputFloatAndNative OutputDataType = tensorio.OutputFloatAndNative
	OutputInvalid        OutputDataType = tensorio.OutputInvalid
)

// Failure taxonomy sentinels; match with errors.Is.
var (
	ErrUnsupportedType    = tensorio.ErrUnsupportedType
	ErrMissingQuantParams = tensorio.ErrMissingQuantParams
	ErrShapeMismatch      = tensorio.ErrShapeMismatch
	ErrBufferReleased     = tensorio.ErrBufferReleased
	ErrInvalidMode        = tensorio.ErrInvalidMode
)

// New returns an IOTensor with its batch counters reset.
func New() *IOTensor {
	return tensorio.New()
}

// FillDims reduces a rank and a native dimension array to ordered extents.
func FillDims(rank uint32, dims []uint32) ([]int, error) {
	return tensorio.FillDims(rank, dims)
}

// ConvertToFloat dequantizes a tensor into a freshly allocated float buffer.
func ConvertToFloat(t *Tensor) ([]float32, error) {
	return tensorio.ConvertToFloat(t)
}

// CopyFromFloatToNative quantizes a float buffer into the tensor's native
// encoding.
func CopyFromFloatToNative(src []float32, t *Tensor) error {
	return tensorio.CopyFromFloatToNative(src, t)
}

// TensorSizes reports the byte size of each tensor's backing buffer.
func TensorSizes(tensors []*Tensor) []int {
	return tensorio.TensorSizes(tensors)
}

// ParseInputDataType maps a configuration token to an input mode.
func ParseInputDataType(s string) InputDataType {
	return tensorio.ParseInputDataType(s)
}

// ParseOutputDataType maps a configuration token to an output mode.
func ParseOutputDataType(s string) OutputDataType {
	return tensorio.ParseOutputDataType(s)
}
