// Package runner drives the per-graph inference loop: tensor setup, input
// population, engine execution, output writing, and one-time teardown.
package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tensorio-ml/tensorio/engine"
	"github.com/tensorio-ml/tensorio/internal/blobs"
	"github.com/tensorio-ml/tensorio/tensorio"
)

// Config describes one run across all graphs held by the engine.
type Config struct {
	Engine engine.Engine

	// InputLists holds, per graph and per input slot, the ordered file
	// paths supplying successive samples. When nil, inputs are populated
	// with random values instead (requires NumIterations > 0).
	InputLists [][][]string

	// NameMaps optionally maps input tensor names to slots, per graph.
	NameMaps []map[string]int

	InputType  tensorio.InputDataType
	OutputType tensorio.OutputDataType
	OutputDir  string

	// Loop wraps each slot's file list back to the start when exhausted.
	// A looping run must bound itself with NumIterations.
	Loop bool

	// NumIterations bounds the iterations per graph; 0 runs until the
	// input file lists are exhausted.
	NumIterations int

	// Publisher, when set, uploads every written result file keyed by its
	// content hash after the run.
	Publisher blobs.Blobstore
}

// Runner executes the configured run.
type Runner struct {
	cfg Config
	log zerolog.Logger
}

// New validates the configuration and returns a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Engine == nil {
		return nil, errors.New("no engine configured")
	}
	if cfg.InputType == tensorio.InputInvalid {
		return nil, fmt.Errorf("input data type: %w", tensorio.ErrInvalidMode)
	}
	if cfg.OutputType == tensorio.OutputInvalid {
		return nil, fmt.Errorf("output data type: %w", tensorio.ErrInvalidMode)
	}
	if cfg.Loop && cfg.NumIterations <= 0 {
		return nil, errors.New("looping over input files requires an iteration bound")
	}
	if cfg.InputLists == nil && cfg.NumIterations <= 0 {
		return nil, errors.New("random input population requires an iteration bound")
	}
	return &Runner{cfg: cfg, log: log.Logger}, nil
}

// Run executes every graph in sequence. Each graph owns an independent
// IOTensor instance; nothing is shared between graphs.
func (r *Runner) Run(ctx context.Context) error {
	graphs := r.cfg.Engine.Graphs()
	for graphIdx, graph := range graphs {
		if err := r.runGraph(ctx, graphIdx, graph, len(graphs)); err != nil {
			return fmt.Errorf("graph %s: %w", graph.Name, err)
		}
	}
	if r.cfg.Publisher != nil {
		if err := r.publishOutputs(ctx); err != nil {
			return fmt.Errorf("publishing outputs: %w", err)
		}
	}
	return nil
}

func (r *Runner) runGraph(ctx context.Context, graphIdx int, graph engine.GraphInfo, graphsCount int) error {
	io := tensorio.New()
	inputs, outputs, err := io.SetupInputAndOutputTensors(graph)
	if err != nil {
		return err
	}
	defer io.TearDownInputAndOutputTensors(inputs, outputs)

	r.log.Info().Str("graph", graph.Name).
		Ints("input_sizes", tensorio.TensorSizes(inputs)).
		Ints("output_sizes", tensorio.TensorSizes(outputs)).
		Int("batch_size", io.BatchSize()).
		Msg("tensors allocated")

	var inputList [][]string
	var nameMap map[string]int
	if r.cfg.InputLists != nil {
		if graphIdx >= len(r.cfg.InputLists) {
			return fmt.Errorf("no input file lists for graph index %d", graphIdx)
		}
		inputList = r.cfg.InputLists[graphIdx]
	}
	if r.cfg.NameMaps != nil && graphIdx < len(r.cfg.NameMaps) {
		nameMap = r.cfg.NameMaps[graphIdx]
	}

	offset := 0
	startIdx := 0
	for iter := 0; r.cfg.NumIterations <= 0 || iter < r.cfg.NumIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var populated int
		if inputList == nil {
			if err := io.PopulateRandom(inputs); err != nil {
				return err
			}
			populated = io.BatchSize()
		} else {
			newOffset, n, err := io.PopulateInputTensors(graphIdx, inputList, offset,
				r.cfg.Loop, nameMap, inputs, r.cfg.InputType)
			if err != nil {
				return err
			}
			if n == 0 {
				r.log.Info().Str("graph", graph.Name).Int("iterations", iter).
					Msg("input files exhausted")
				return nil
			}
			offset = newOffset
			populated = n
		}

		if err := r.cfg.Engine.Execute(ctx, graphIdx, inputs, outputs); err != nil {
			return fmt.Errorf("iteration %d: %w", iter, err)
		}

		if err := io.WriteOutputTensors(graphIdx, startIdx, graph.Name, outputs,
			r.cfg.OutputType, graphsCount, r.cfg.OutputDir, populated, io.BatchSize()); err != nil {
			return fmt.Errorf("iteration %d: %w", iter, err)
		}

		r.log.Debug().Str("graph", graph.Name).Int("iteration", iter).
			Int("samples", populated).Msg("iteration complete")
		startIdx += populated

		// A short batch means the listed inputs are used up.
		if inputList != nil && !r.cfg.Loop && populated < io.BatchSize() {
			return nil
		}
	}
	return nil
}

// publishOutputs uploads every result file under the output directory, keyed
// by its content hash.
func (r *Runner) publishOutputs(ctx context.Context) error {
	return filepath.WalkDir(r.cfg.OutputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".raw") {
			return nil
		}
		hash, err := hashFile(path)
		if err != nil {
			return err
		}
		if err := r.cfg.Publisher.Upload(ctx, path, blobs.BlobInfo{Hash: hash}); err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		r.log.Debug().Str("path", path).Str("hash", hash).Msg("result published")
		return nil
	})
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
