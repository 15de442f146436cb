// Package parallel provides chunked parallel iteration for engine kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // whether parallel execution is enabled
	NumWorkers   int  // number of worker goroutines
	MinChunkSize int  // minimum items per goroutine, amortizes spawn cost
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// For executes f(i) for i in [0, n), splitting the range across workers.
// Runs sequentially when parallelism is disabled or n is below the chunk
// threshold.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForRows splits an outer-by-inner iteration space over rows.
// Used by reductions and softmax where each row is independent.
func ForRows(rows, cols int, f func(row int), cfg Config) {
	if rows*cols < cfg.MinChunkSize {
		for r := 0; r < rows; r++ {
			f(r)
		}
		return
	}
	For(rows, f, Config{Enabled: cfg.Enabled, NumWorkers: cfg.NumWorkers, MinChunkSize: 1})
}
