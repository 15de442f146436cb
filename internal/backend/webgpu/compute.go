//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/axon-ml/axon/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// compileShader compiles WGSL source into a ShaderModule, caching by name.
func (e *Engine) compileShader(name, code string) *wgpu.ShaderModule {
	e.mu.RLock()
	if shader, ok := e.shaders[name]; ok {
		e.mu.RUnlock()
		return shader
	}
	e.mu.RUnlock()

	shader := e.device.CreateShaderModuleWGSL(code)

	e.mu.Lock()
	e.shaders[name] = shader
	e.mu.Unlock()
	return shader
}

// pipeline returns the cached compute pipeline for name, creating it from
// the shader on first use.
func (e *Engine) pipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	e.mu.RLock()
	if p, ok := e.pipelines[name]; ok {
		e.mu.RUnlock()
		return p
	}
	e.mu.RUnlock()

	p := e.device.CreateComputePipelineSimple(nil, shader, "main")

	e.mu.Lock()
	e.pipelines[name] = p
	e.mu.Unlock()
	return p
}

// uploadBuffer creates a storage buffer initialized with data.
func (e *Engine) uploadBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	buf := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buf.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buf.Unmap()
	return buf
}

// uniformBuffer creates a 16-byte aligned uniform buffer holding data.
func (e *Engine) uniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	aligned := (size + 15) &^ 15
	buf := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             aligned,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buf.GetMappedRange(0, aligned)), aligned)
	copy(mapped, data)
	buf.Unmap()
	return buf
}

// readBuffer copies size bytes from a storage buffer back to host memory
// through a mappable staging buffer.
func (e *Engine) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	e.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(e.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size)
	out := make([]byte, size)
	copy(out, mapped)
	staging.Unmap()
	return out, nil
}

// dispatch runs one compute pass. Bind group layout: the input byte slices
// occupy bindings 0..len(inputs)-1, the result buffer the next binding and
// the uniform params the last one. Returns the outSize result bytes.
func (e *Engine) dispatch(name, code string, inputs [][]byte, params []byte, outSize uint64, wgx, wgy, wgz uint32) ([]byte, error) {
	shader := e.compileShader(name, code)
	pipe := e.pipeline(name, shader)

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, in := range inputs {
		buf := e.uploadBuffer(in)
		defer buf.Release()
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, uint64(len(in))))
	}

	result := e.pool.get(outSize)
	defer e.pool.put(result, outSize)
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)), result, 0, outSize))

	uniform := e.uniformBuffer(params)
	defer uniform.Release()
	aligned := (uint64(len(params)) + 15) &^ 15
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)+1), uniform, 0, aligned))

	layout := pipe.GetBindGroupLayout(0)
	bindGroup := e.device.CreateBindGroupSimple(layout, entries)
	defer bindGroup.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipe)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(wgx, wgy, wgz)
	pass.End()
	e.queue.Submit(encoder.Finish(nil))

	return e.readBuffer(result, outSize)
}

// sizeParams packs one u32 element count into a 16-byte uniform block.
func sizeParams(n int) []byte {
	p := make([]byte, 16)
	binary.LittleEndian.PutUint32(p[0:4], uint32(n))
	return p
}

// groups1D returns the workgroup count covering n elements.
func groups1D(n int) uint32 {
	return uint32((n + workgroupSize - 1) / workgroupSize)
}

func groups2D(n int) uint32 {
	return uint32(math.Ceil(float64(n) / float64(tileSize)))
}

func requireFloat32(op string, ts ...*tensor.RawTensor) error {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			return fmt.Errorf("%s: only float32 is supported on gpu, got %s", op, t.DType())
		}
	}
	return nil
}

// runBinary executes a same-shape element-wise binary operation.
func (e *Engine) runBinary(a, b *tensor.RawTensor, name, code string) (*tensor.RawTensor, error) {
	if err := requireFloat32(name, a, b); err != nil {
		return nil, err
	}
	if !a.Shape().Equal(b.Shape()) {
		return nil, fmt.Errorf("%s: shape mismatch: %v vs %v (gpu engine does not broadcast)", name, a.Shape(), b.Shape())
	}

	n := a.NumElements()
	out, err := e.dispatch(name, code,
		[][]byte{a.Data(), b.Data()}, sizeParams(n),
		uint64(a.ByteSize()), groups1D(n), 1, 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(a.Shape(), out)
}

// runUnary executes an element-wise unary operation with an optional extra
// uniform payload appended after the element count.
func (e *Engine) runUnary(x *tensor.RawTensor, name, code string, extra ...float32) (*tensor.RawTensor, error) {
	if err := requireFloat32(name, x); err != nil {
		return nil, err
	}

	n := x.NumElements()
	params := sizeParams(n)
	for i, v := range extra {
		binary.LittleEndian.PutUint32(params[4+i*4:8+i*4], math.Float32bits(v))
	}
	out, err := e.dispatch(name, code,
		[][]byte{x.Data()}, params,
		uint64(x.ByteSize()), groups1D(n), 1, 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(x.Shape(), out)
}

// newResult wraps raw result bytes in a fresh tensor on the GPU device.
func (e *Engine) newResult(shape tensor.Shape, data []byte) (*tensor.RawTensor, error) {
	result, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}
