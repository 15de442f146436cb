//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// storageUsage is the usage every pooled buffer is created with, so a buffer
// can serve as operand, result and copy source interchangeably.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// maxPooledPerClass bounds how many idle buffers of one size class are kept.
const maxPooledPerClass = 8

// bufferPool recycles GPU storage buffers between dispatches. Buffers are
// grouped by their rounded-up power-of-two byte size, so a request is served
// by any idle buffer of the same class.
type bufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	free map[uint64][]*wgpu.Buffer
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{
		device: device,
		free:   make(map[uint64][]*wgpu.Buffer),
	}
}

// sizeClass rounds size up to the next power of two, with a floor of 256
// bytes to keep tiny tensors from fragmenting the pool.
func sizeClass(size uint64) uint64 {
	class := uint64(256)
	for class < size {
		class <<= 1
	}
	return class
}

// get returns a storage buffer of at least size bytes, reusing an idle
// buffer when one is available.
func (p *bufferPool) get(size uint64) *wgpu.Buffer {
	class := sizeClass(size)

	p.mu.Lock()
	if bufs := p.free[class]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		p.free[class] = bufs[:len(bufs)-1]
		p.mu.Unlock()
		return buf
	}
	p.mu.Unlock()

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: storageUsage,
		Size:  class,
	})
}

// put returns a buffer obtained from get back to the pool. size must be the
// value passed to get. Buffers beyond the per-class cap are released.
func (p *bufferPool) put(buf *wgpu.Buffer, size uint64) {
	class := sizeClass(size)

	p.mu.Lock()
	if len(p.free[class]) < maxPooledPerClass {
		p.free[class] = append(p.free[class], buf)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	buf.Release()
}

// release frees every pooled buffer.
func (p *bufferPool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for class, bufs := range p.free {
		for _, buf := range bufs {
			buf.Release()
		}
		delete(p.free, class)
	}
}
