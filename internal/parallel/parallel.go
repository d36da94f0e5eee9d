// Package parallel splits contiguous element ranges across worker goroutines.
// It backs the element-wise quantize/dequantize loops, where every element is
// independent and large tensors dominate the marshalling cost.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a range is split.
type Config struct {
	Workers int // Goroutines to spread the range over.
	// MinElems is the range length below which the split is skipped and the
	// work runs on the calling goroutine.
	MinElems int
}

// DefaultConfig sizes the split to the CPU count. The element floor keeps
// small tensors off the goroutine path, where spawn cost exceeds the loop.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinElems: 1 << 14,
	}
}

// Chunks invokes f over disjoint subranges [start, end) covering [0, n),
// one per worker, and waits for all of them. f must not grow or reslice
// the buffers it indexes.
func Chunks(n int, cfg Config, f func(start, end int)) {
	if cfg.Workers <= 1 || n < cfg.MinElems {
		f(0, n)
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
