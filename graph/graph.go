// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph is the public symbolic computation API: placeholders,
// variables and constants are combined into a deferred-execution graph,
// compiled into callable functions and differentiated symbolically.
//
// Example:
//
//	g := graph.New(cpu.New())
//	x := g.Placeholder(tensor.Shape{-1, 4}, tensor.Float32, "x")
//	w := g.Variable(weights, "w")
//	y := x.Dot(w).Softmax(-1)
//
//	f, err := g.Function([]*graph.Node{x}, []*graph.Node{y})
//	if err != nil {
//	    return err
//	}
//	out, err := f.Call([]*tensor.RawTensor{batch})
package graph

import (
	"github.com/axon-ml/axon/backend"
	"github.com/axon-ml/axon/internal/graph"
	"github.com/axon-ml/axon/tensor"

	// Register the default engine.
	_ "github.com/axon-ml/axon/backend/cpu"
)

// Graph owns a set of symbolic nodes bound to one compute engine.
type Graph = graph.Graph

// Node is one symbolic tensor value in a graph.
type Node = graph.Node

// Func is a compiled graph function mapping placeholder feeds to outputs.
type Func = graph.Func

// CallOption adjusts one Func.Call invocation.
type CallOption = graph.CallOption

// New creates an empty graph evaluated on the given engine.
func New(engine tensor.Backend) *Graph {
	return graph.New(engine)
}

// FromConfig creates a graph on the configured default engine: the
// AXON_BACKEND environment variable when set, otherwise the backend named
// in the configuration file, otherwise cpu.
func FromConfig() (*Graph, error) {
	engine, err := backend.Default()
	if err != nil {
		return nil, err
	}
	return graph.New(engine), nil
}

// WithTraining sets the learning phase for one call. Nodes built with
// InTrainPhase or Dropout follow it.
func WithTraining(training bool) CallOption {
	return graph.WithTraining(training)
}
