// Command tensorio runs a model's inference loop from the command line:
// input tensor files in, result files out.
//
// The input list file holds one line per input slot; each line is the
// ordered set of sample files feeding that slot. A line may start with
// "name:=" to bind the slot to a tensor name instead of its position.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/tensorio-ml/tensorio/engine/onnxrt"
	"github.com/tensorio-ml/tensorio/internal/blobs"
	"github.com/tensorio-ml/tensorio/internal/log"
	"github.com/tensorio-ml/tensorio/internal/runner"
	"github.com/tensorio-ml/tensorio/tensorio"
)

func main() {
	_ = godotenv.Load()
	log.Init()

	var (
		modelPath      = flag.String("model", "", "path to the ONNX model")
		inputList      = flag.String("input_list", "", "path to the input list file (omit to populate inputs with random values)")
		outputDir      = flag.String("output_dir", "output", "directory receiving result files")
		inputDataType  = flag.String("input_data_type", "float", "input interpretation: float or native")
		outputDataType = flag.String("output_data_type", "float_only", "output representation: float_only, native_only or float_and_native")
		numIterations  = flag.Int("num_iterations", 0, "iteration bound per graph (0 = until input exhaustion)")
		loop           = flag.Bool("loop", false, "wrap input file lists back to the start when exhausted")
		fetchBucket    = flag.String("fetch_bucket", "", "GCS bucket to fetch input payloads from; input list entries are object hashes")
		publishBucket  = flag.String("publish_bucket", "", "GCS bucket to publish result files to")
	)
	flag.Parse()

	if *modelPath == "" {
		zlog.Fatal().Msg("missing required -model flag")
	}

	ctx := context.Background()

	eng, err := onnxrt.New(*modelPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("loading model")
	}
	defer eng.Close()

	cfg := runner.Config{
		Engine:        eng,
		InputType:     tensorio.ParseInputDataType(*inputDataType),
		OutputType:    tensorio.ParseOutputDataType(*outputDataType),
		OutputDir:     *outputDir,
		Loop:          *loop,
		NumIterations: *numIterations,
	}

	if *inputList != "" {
		slots, nameMap, err := parseInputList(*inputList)
		if err != nil {
			zlog.Fatal().Err(err).Msg("reading input list")
		}
		if *fetchBucket != "" {
			store := &blobs.GCSBlobstore{Bucket: *fetchBucket}
			slots, err = fetchPayloads(ctx, store, slots, filepath.Join(*outputDir, ".cache"))
			if err != nil {
				zlog.Fatal().Err(err).Msg("fetching input payloads")
			}
		}
		cfg.InputLists = [][][]string{slots}
		if len(nameMap) > 0 {
			cfg.NameMaps = []map[string]int{nameMap}
		}
	}
	if *publishBucket != "" {
		cfg.Publisher = &blobs.GCSBlobstore{Bucket: *publishBucket}
	}

	r, err := runner.New(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := r.Run(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("run failed")
	}
	zlog.Info().Str("output_dir", *outputDir).Msg("run complete")
}

// parseInputList reads one line per input slot. Entries are whitespace
// separated; a leading "name:=" token binds the slot to a tensor name.
func parseInputList(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var slots [][]string
	nameMap := make(map[string]int)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if name, rest, ok := strings.Cut(fields[0], ":="); ok {
			nameMap[name] = len(slots)
			if rest != "" {
				fields[0] = rest
			} else {
				fields = fields[1:]
			}
		}
		slots = append(slots, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return slots, nameMap, nil
}

// fetchPayloads downloads hash-named entries into cacheDir and returns the
// rewritten per-slot file lists.
func fetchPayloads(ctx context.Context, store blobs.BlobReader, slots [][]string, cacheDir string) ([][]string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	out := make([][]string, len(slots))
	for i, slot := range slots {
		out[i] = make([]string, len(slot))
		for j, hash := range slot {
			dest := filepath.Join(cacheDir, hash+".raw")
			if _, err := os.Stat(dest); err != nil {
				if err := store.Download(ctx, blobs.BlobInfo{Hash: hash}, dest); err != nil {
					return nil, err
				}
			}
			out[i][j] = dest
		}
	}
	return out, nil
}
