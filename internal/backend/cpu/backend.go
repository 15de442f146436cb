// Package cpu implements the pure-Go compute engine, with BLAS-backed matrix
// products and chunked parallel kernels.
package cpu

import (
	"math/rand"
	"sync"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// Engine executes the tensor operation vocabulary on the host CPU.
type Engine struct {
	device tensor.Device
	par    parallel.Config

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a CPU engine with parallelism sized to the machine.
func New() *Engine {
	return &Engine{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// Name returns the engine's registry tag.
func (e *Engine) Name() string {
	return "cpu"
}

// Device returns the compute device.
func (e *Engine) Device() tensor.Device {
	return e.device
}

// Seed reseeds the engine's random source for reproducible draws.
func (e *Engine) Seed(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = rand.New(rand.NewSource(seed))
}

// Verify the full vocabulary is implemented.
var _ tensor.Backend = (*Engine)(nil)
