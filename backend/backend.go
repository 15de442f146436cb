// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend is the engine registry: compute engines register a named
// constructor in their init, callers construct them by tag.
//
// The default engine resolves in order: the AXON_BACKEND environment
// variable, the "backend" key of the configuration file, then "cpu".
package backend

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/axon-ml/axon/internal/config"
	"github.com/axon-ml/axon/tensor"
)

// Constructor builds one engine instance.
type Constructor func() (tensor.Backend, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register makes an engine constructable by name. Engine packages call this
// from init; registering the same name twice is a bug and panics.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("backend: engine %q registered twice", name))
	}
	registry[name] = ctor
}

// Names returns the registered engine tags, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the engine registered under name.
func New(name string) (tensor.Backend, error) {
	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend: unknown engine %q, registered engines: %s",
			name, strings.Join(Names(), ", "))
	}
	return ctor()
}

// Default constructs the configured engine: AXON_BACKEND when set, otherwise
// the configuration file's backend key, otherwise "cpu".
func Default() (tensor.Backend, error) {
	name := os.Getenv(config.EnvBackend)
	if name == "" {
		name = config.BackendName()
	}
	if name == "" {
		name = config.DefaultBackend
	}
	return New(name)
}
