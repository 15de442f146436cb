//go:build windows

// Package webgpu implements a GPU compute engine over WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// The engine covers the float32 subset of the operation vocabulary that
// benefits from the GPU: element-wise arithmetic, activations, matrix
// multiplication, softmax and sum reductions. Everything else panics with a
// "not supported" message; callers fall back to the cpu engine for those.
package webgpu

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/axon-ml/axon/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Engine executes tensor operations on the GPU through WebGPU compute
// pipelines. Tensor data stays host-side; every operation uploads its
// operands, dispatches a compute pass and reads the result back.
type Engine struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Compiled shader and pipeline caches, keyed by shader name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfo

	pool *bufferPool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New initializes the WebGPU device and returns an engine ready for
// dispatch. Returns an error when no compatible adapter is present.
func New() (engine *Engine, err error) {
	// The native wgpu library panics when it cannot be loaded at all.
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	e := &Engine{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
	e.pool = newBufferPool(e.device)
	return e, nil
}

// IsAvailable reports whether a WebGPU adapter can be initialized on this
// system. It constructs and releases a throwaway engine.
func IsAvailable() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	e, err := New()
	if err != nil {
		return false
	}
	e.Release()
	return true
}

// AdapterName returns the GPU adapter description, or "unknown" when the
// adapter did not report one.
func (e *Engine) AdapterName() string {
	if e.adapterInfo == nil {
		return "unknown"
	}
	return e.adapterInfo.Description
}

// Release frees all GPU resources. The engine must not be used afterwards.
func (e *Engine) Release() {
	e.mu.Lock()
	for _, p := range e.pipelines {
		p.Release()
	}
	for _, s := range e.shaders {
		s.Release()
	}
	e.pipelines = nil
	e.shaders = nil
	e.mu.Unlock()

	e.pool.release()

	if e.device != nil {
		e.device.Release()
	}
	if e.adapter != nil {
		e.adapter.Release()
	}
	if e.instance != nil {
		e.instance.Release()
	}
}

// Name returns the registry tag of the engine.
func (e *Engine) Name() string { return "webgpu" }

// Device returns the device tensors produced by this engine live on.
func (e *Engine) Device() tensor.Device { return tensor.WebGPU }

// Seed reseeds the host-side random source used by RandomUniform and
// RandomNormal.
func (e *Engine) Seed(seed int64) {
	e.rngMu.Lock()
	e.rng = rand.New(rand.NewSource(seed))
	e.rngMu.Unlock()
}
