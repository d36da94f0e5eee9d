// Copyright 2025 The TensorIO Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnxrt adapts ONNX Runtime as a graph execution engine.
//
// The adapter derives the graph's tensor descriptors from the model's
// input/output metadata and moves data between the marshalling layer's
// native buffers and ONNX Runtime values on every Execute call.
//
// The shared library location is taken from the ONNX_RUNTIME environment
// variable.
package onnxrt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/tensorio-ml/tensorio/engine"
	"github.com/tensorio-ml/tensorio/tensorio"
)

// Engine runs a single ONNX model as one graph.
type Engine struct {
	session *ort.DynamicAdvancedSession
	graph   engine.GraphInfo
}

var _ engine.Engine = (*Engine)(nil)

// New loads the model at modelPath and builds its descriptor contract from
// the model's input/output metadata.
//
// ONNX I/O metadata carries no affine quantization parameters, so descriptors
// expose the plain element types float32, int32 and uint8. Dynamic dimensions
// resolve to 1.
func New(modelPath string) (*Engine, error) {
	ort.SetSharedLibraryPath(os.Getenv("ONNX_RUNTIME"))
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initializing onnxruntime environment: %w", err)
	}

	inputInfo, outputInfo, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("reading model metadata: %w", err)
	}

	graph := engine.GraphInfo{Name: graphName(modelPath)}
	inputNames := make([]string, len(inputInfo))
	for i, info := range inputInfo {
		desc, err := toDescriptor(info)
		if err != nil {
			ort.DestroyEnvironment()
			return nil, fmt.Errorf("input %s: %w", info.Name, err)
		}
		graph.Inputs = append(graph.Inputs, desc)
		inputNames[i] = info.Name
	}
	outputNames := make([]string, len(outputInfo))
	for i, info := range outputInfo {
		desc, err := toDescriptor(info)
		if err != nil {
			ort.DestroyEnvironment()
			return nil, fmt.Errorf("output %s: %w", info.Name, err)
		}
		graph.Outputs = append(graph.Outputs, desc)
		outputNames[i] = info.Name
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Engine{session: session, graph: graph}, nil
}

// Graphs returns the single graph held by this engine.
func (e *Engine) Graphs() []engine.GraphInfo {
	return []engine.GraphInfo{e.graph}
}

// Execute wraps the populated input buffers as ONNX Runtime values, runs the
// session, and copies the results back into the native output buffers.
func (e *Engine) Execute(ctx context.Context, graphIdx int, inputs, outputs []*tensorio.Tensor) error {
	if graphIdx != 0 {
		return fmt.Errorf("engine holds one graph, got index %d", graphIdx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	inValues := make([]ort.Value, 0, len(inputs))
	outValues := make([]ort.Value, 0, len(outputs))
	destroyAll := func(values []ort.Value) {
		for _, v := range values {
			v.Destroy()
		}
	}
	defer func() {
		destroyAll(inValues)
		destroyAll(outValues)
	}()

	for _, t := range inputs {
		v, err := wrapTensor(t)
		if err != nil {
			return fmt.Errorf("input tensor %s: %w", t.Name(), err)
		}
		inValues = append(inValues, v)
	}
	for _, t := range outputs {
		v, err := emptyTensor(t)
		if err != nil {
			return fmt.Errorf("output tensor %s: %w", t.Name(), err)
		}
		outValues = append(outValues, v)
	}

	if err := e.session.Run(inValues, outValues); err != nil {
		return fmt.Errorf("running session: %w", err)
	}

	for i, t := range outputs {
		if err := copyBack(t, outValues[i]); err != nil {
			return fmt.Errorf("output tensor %s: %w", t.Name(), err)
		}
	}
	return nil
}

// Close destroys the session and the runtime environment.
func (e *Engine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return ort.DestroyEnvironment()
}

// toDescriptor maps ONNX I/O metadata to the marshalling descriptor contract.
func toDescriptor(info ort.InputOutputInfo) (tensorio.Descriptor, error) {
	var dt tensorio.DataType
	switch info.DataType {
	case ort.TensorElementDataTypeFloat:
		dt = tensorio.Float32
	case ort.TensorElementDataTypeInt32:
		dt = tensorio.Int32
	case ort.TensorElementDataTypeUint8:
		dt = tensorio.Uint8
	default:
		return tensorio.Descriptor{}, fmt.Errorf("unsupported onnx element type %v", info.DataType)
	}

	dims := make([]uint32, len(info.Dimensions))
	for i, d := range info.Dimensions {
		if d <= 0 {
			d = 1
		}
		dims[i] = uint32(d)
	}
	return tensorio.Descriptor{
		Name: info.Name,
		Rank: uint32(len(dims)),
		Dims: dims,
		Type: dt,
	}, nil
}

// wrapTensor builds an ONNX Runtime value over a native input buffer.
func wrapTensor(t *tensorio.Tensor) (ort.Value, error) {
	shape := ortShape(t.Dims())
	switch t.DataType() {
	case tensorio.Float32:
		return ort.NewTensor(shape, t.Float32s())
	case tensorio.Int32:
		return ort.NewTensor(shape, t.Int32s())
	case tensorio.Uint8:
		return ort.NewTensor(shape, t.Uint8s())
	default:
		return nil, fmt.Errorf("unsupported native type %s for onnx runtime", t.DataType())
	}
}

// emptyTensor allocates an ONNX Runtime value to receive one output.
func emptyTensor(t *tensorio.Tensor) (ort.Value, error) {
	shape := ortShape(t.Dims())
	switch t.DataType() {
	case tensorio.Float32:
		return ort.NewEmptyTensor[float32](shape)
	case tensorio.Int32:
		return ort.NewEmptyTensor[int32](shape)
	case tensorio.Uint8:
		return ort.NewEmptyTensor[uint8](shape)
	default:
		return nil, fmt.Errorf("unsupported native type %s for onnx runtime", t.DataType())
	}
}

// copyBack moves one ONNX Runtime output into the native buffer.
func copyBack(t *tensorio.Tensor, v ort.Value) error {
	switch t.DataType() {
	case tensorio.Float32:
		copy(t.Float32s(), v.(*ort.Tensor[float32]).GetData())
	case tensorio.Int32:
		copy(t.Int32s(), v.(*ort.Tensor[int32]).GetData())
	case tensorio.Uint8:
		copy(t.Uint8s(), v.(*ort.Tensor[uint8]).GetData())
	default:
		return fmt.Errorf("unsupported native type %s for onnx runtime", t.DataType())
	}
	return nil
}

func ortShape(dims []int) ort.Shape {
	out := make([]int64, len(dims))
	for i, d := range dims {
		out[i] = int64(d)
	}
	return ort.NewShape(out...)
}

func graphName(modelPath string) string {
	base := filepath.Base(modelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
