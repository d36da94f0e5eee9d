// Copyright 2025 The TensorIO Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package engine defines the contract between the tensor marshalling layer
// and a graph execution backend. The marshalling layer owns the native
// buffers; an Engine reads populated inputs and writes raw outputs into them.
package engine

import (
	"context"
	"io"

	"github.com/tensorio-ml/tensorio/tensorio"
)

// GraphInfo is the per-graph descriptor contract an engine supplies at setup
// time: the graph's name and its ordered input and output tensor descriptors.
type GraphInfo = tensorio.GraphInfo

// Engine executes a compiled inference graph against native tensor buffers.
//
// Execute reads the populated input buffers and must leave each output
// tensor's buffer holding the raw native result for the full batch. Inputs
// and outputs follow the descriptor order of the GraphInfo the engine
// reported.
type Engine interface {
	io.Closer

	// Graphs returns the descriptor contract for every graph the engine
	// holds. Descriptors are read-only for callers.
	Graphs() []GraphInfo

	// Execute runs one inference iteration for the graph at graphIdx.
	Execute(ctx context.Context, graphIdx int, inputs, outputs []*tensorio.Tensor) error
}
