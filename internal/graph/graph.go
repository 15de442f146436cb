// Package graph builds deferred tensor computations: placeholders, variables
// and operations form a DAG that compiles into callable functions executed by
// a pluggable compute engine.
package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// Graph owns a set of nodes and the engine that will execute them.
//
// Building is not synchronized; construct a graph from one goroutine.
// Compiled Funcs may be called concurrently.
type Graph struct {
	engine tensor.Backend
	nodes  []*Node
	phase  *Node // lazily created learning-phase placeholder
}

// New creates an empty graph over the given engine.
func New(engine tensor.Backend) *Graph {
	return &Graph{engine: engine}
}

// Engine returns the compute engine the graph executes on.
func (g *Graph) Engine() tensor.Backend {
	return g.engine
}

// NumNodes returns the number of nodes built so far.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) add(n *Node) *Node {
	n.g = g
	n.id = len(g.nodes)
	if n.name == "" {
		n.name = fmt.Sprintf("%s_%d", n.kind, n.id)
	}
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) checkSame(a, b *Node, op string) {
	if a.g != b.g {
		panic(fmt.Sprintf("%s: nodes belong to different graphs", op))
	}
}

// Placeholder declares a symbolic input. Dimensions may be -1 for sizes bound
// when the compiled function is called.
func (g *Graph) Placeholder(shape tensor.Shape, dtype tensor.DataType, name string) *Node {
	for i, d := range shape {
		if d == 0 || d < -1 {
			panic(fmt.Sprintf("placeholder: dimension %d is %d, must be positive or -1", i, d))
		}
	}
	return g.add(&Node{kind: opPlaceholder, shape: shape.Clone(), dtype: dtype, name: name})
}

// Variable declares mutable graph state initialized with value.
func (g *Graph) Variable(value *tensor.RawTensor, name string) *Node {
	return g.add(&Node{
		kind:  opVariable,
		shape: value.Shape().Clone(),
		dtype: value.DType(),
		name:  name,
		value: value,
	})
}

// Constant embeds a fixed tensor in the graph.
func (g *Graph) Constant(value *tensor.RawTensor) *Node {
	return g.add(&Node{
		kind:  opConstant,
		shape: value.Shape().Clone(),
		dtype: value.DType(),
		value: value,
	})
}

// Scalar embeds a 0-D constant of the given dtype.
func (g *Graph) Scalar(v float64, dtype tensor.DataType) *Node {
	return g.Constant(tensor.ScalarRaw(v, dtype, g.engine.Device()))
}

// LearningPhase returns the graph's shared training-mode flag: a Bool scalar
// placeholder that compiled functions feed from their call options. It
// defaults to false (inference).
func (g *Graph) LearningPhase() *Node {
	if g.phase == nil {
		g.phase = g.add(&Node{
			kind:          opPlaceholder,
			shape:         tensor.Shape{},
			dtype:         tensor.Bool,
			name:          "learning_phase",
			learningPhase: true,
		})
	}
	return g.phase
}

// RandomUniform adds a source drawing U[0, 1) samples each evaluation.
func (g *Graph) RandomUniform(shape tensor.Shape, dtype tensor.DataType) *Node {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("random_uniform: %v", err))
	}
	return g.add(&Node{kind: opRandomUniform, shape: shape.Clone(), dtype: dtype,
		attrs: attrs{shape: shape.Clone()}})
}

// RandomNormal adds a source drawing N(0, 1) samples each evaluation.
func (g *Graph) RandomNormal(shape tensor.Shape, dtype tensor.DataType) *Node {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("random_normal: %v", err))
	}
	return g.add(&Node{kind: opRandomNormal, shape: shape.Clone(), dtype: dtype,
		attrs: attrs{shape: shape.Clone()}})
}
