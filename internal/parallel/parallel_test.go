package parallel

import (
	"sync/atomic"
	"testing"
)

func TestChunksCoversRange(t *testing.T) {
	cfg := Config{Workers: 4, MinElems: 1}
	n := 1003

	hits := make([]int32, n)
	Chunks(n, cfg, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("element %d visited %d times", i, h)
		}
	}
}

func TestChunksSmallRangeRunsInline(t *testing.T) {
	cfg := DefaultConfig()
	n := cfg.MinElems - 1

	calls := 0
	Chunks(n, cfg, func(start, end int) {
		calls++
		if start != 0 || end != n {
			t.Fatalf("inline call got [%d, %d), want [0, %d)", start, end, n)
		}
	})
	if calls != 1 {
		t.Fatalf("expected one inline call, got %d", calls)
	}
}

func TestChunksSingleWorker(t *testing.T) {
	cfg := Config{Workers: 1, MinElems: 1}

	var count int64
	Chunks(100, cfg, func(start, end int) {
		atomic.AddInt64(&count, int64(end-start))
	})
	if count != 100 {
		t.Fatalf("covered %d elements, want 100", count)
	}
}

func TestChunksZeroLength(t *testing.T) {
	Chunks(0, DefaultConfig(), func(start, end int) {
		if start != end {
			t.Fatalf("non-empty range [%d, %d) for zero elements", start, end)
		}
	})
}

func BenchmarkChunks(b *testing.B) {
	n := 1 << 20
	src := make([]float32, n)
	dst := make([]uint8, n)

	b.Run("parallel", func(b *testing.B) {
		cfg := DefaultConfig()
		for i := 0; i < b.N; i++ {
			Chunks(n, cfg, func(start, end int) {
				for j := start; j < end; j++ {
					dst[j] = uint8(src[j])
				}
			})
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfg := Config{Workers: 1}
		for i := 0; i < b.N; i++ {
			Chunks(n, cfg, func(start, end int) {
				for j := start; j < end; j++ {
					dst[j] = uint8(src[j])
				}
			})
		}
	})
}
