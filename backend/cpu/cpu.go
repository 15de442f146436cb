// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go compute engine. Importing it registers
// the "cpu" tag with the engine registry.
package cpu

import (
	"github.com/axon-ml/axon/backend"
	internalcpu "github.com/axon-ml/axon/internal/backend/cpu"
	"github.com/axon-ml/axon/tensor"
)

// Engine executes the tensor operation vocabulary on the host CPU.
type Engine = internalcpu.Engine

// Compile-time check that Engine implements tensor.Backend.
var _ tensor.Backend = (*Engine)(nil)

// New creates a CPU engine.
//
// Example:
//
//	engine := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, engine)
func New() *Engine {
	return internalcpu.New()
}

func init() {
	backend.Register("cpu", func() (tensor.Backend, error) {
		return New(), nil
	})
}
