// Copyright 2025 The TensorIO Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package enginetest provides an in-process fake engine for tests.
package enginetest

import (
	"context"
	"errors"
	"fmt"

	"github.com/tensorio-ml/tensorio/engine"
	"github.com/tensorio-ml/tensorio/tensorio"
)

// Fake is an engine whose execution is a byte copy from input buffers to
// output buffers, or a caller-supplied function.
type Fake struct {
	GraphInfos []engine.GraphInfo

	// ExecuteFn, when set, replaces the default copy behavior.
	ExecuteFn func(graphIdx int, inputs, outputs []*tensorio.Tensor) error

	Executions int
	Closed     bool
}

var _ engine.Engine = (*Fake)(nil)

// Graphs returns the configured descriptor contracts.
func (f *Fake) Graphs() []engine.GraphInfo {
	return f.GraphInfos
}

// Execute copies input bytes into the paired output buffer, truncating to
// the shorter of the two.
func (f *Fake) Execute(ctx context.Context, graphIdx int, inputs, outputs []*tensorio.Tensor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Closed {
		return errors.New("engine closed")
	}
	if graphIdx < 0 || graphIdx >= len(f.GraphInfos) {
		return fmt.Errorf("graph index %d out of range", graphIdx)
	}
	f.Executions++

	if f.ExecuteFn != nil {
		return f.ExecuteFn(graphIdx, inputs, outputs)
	}
	for i, out := range outputs {
		if i < len(inputs) {
			copy(out.Data(), inputs[i].Data())
		}
	}
	return nil
}

// Close marks the engine closed; later Execute calls fail.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
