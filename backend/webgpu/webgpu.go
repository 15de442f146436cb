//go:build windows

// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU compute engine built on WebGPU. Importing
// it registers the "webgpu" tag with the engine registry.
//
// The engine accelerates the float32 subset of the operation vocabulary:
// element-wise arithmetic, activations, matrix multiplication, softmax and
// sum reductions. Operations outside that subset panic; use the cpu engine
// for full coverage.
//
// Example:
//
//	if webgpu.IsAvailable() {
//	    engine, _ = webgpu.New()
//	} else {
//	    engine = cpu.New()
//	}
package webgpu

import (
	"github.com/axon-ml/axon/backend"
	internalwebgpu "github.com/axon-ml/axon/internal/backend/webgpu"
	"github.com/axon-ml/axon/tensor"
)

// Engine executes tensor operations on the GPU through WebGPU compute
// pipelines.
type Engine = internalwebgpu.Engine

// Compile-time check that Engine implements tensor.Backend.
var _ tensor.Backend = (*Engine)(nil)

// New initializes the WebGPU device and returns an engine ready for use.
// Call Release when done to free GPU resources. Returns an error when no
// compatible GPU or native library is present.
func New() (tensor.Backend, error) {
	engine, err := internalwebgpu.New()
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// IsAvailable reports whether a WebGPU adapter can be initialized on this
// system. Useful for graceful fallback to the cpu engine.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

func init() {
	backend.Register("webgpu", New)
}
