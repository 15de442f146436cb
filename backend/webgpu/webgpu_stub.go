//go:build !windows

// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package webgpu

import (
	"errors"

	"github.com/axon-ml/axon/backend"
	"github.com/axon-ml/axon/tensor"
)

// ErrUnavailable is returned by New on platforms without wgpu_native
// support.
var ErrUnavailable = errors.New("webgpu: engine unavailable on this platform")

// New always fails on this platform.
func New() (tensor.Backend, error) {
	return nil, ErrUnavailable
}

// IsAvailable reports whether the WebGPU engine can run here.
func IsAvailable() bool { return false }

func init() {
	backend.Register("webgpu", New)
}
