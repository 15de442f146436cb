package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// Func is a compiled callable: a topologically ordered slice of the nodes
// reachable from its outputs, bound to placeholder inputs at call time.
type Func struct {
	g       *Graph
	inputs  []*Node
	outputs []*Node
	order   []*Node
}

// Function compiles outputs into a callable taking the given placeholder
// inputs. Every placeholder reachable from the outputs must appear in inputs,
// except the learning-phase flag, which call options feed.
func (g *Graph) Function(inputs, outputs []*Node) (*Func, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("graph: function needs at least one output")
	}

	feedable := make(map[*Node]bool, len(inputs))
	for _, in := range inputs {
		if in.g != g {
			return nil, fmt.Errorf("graph: input %q belongs to another graph", in.name)
		}
		if in.kind != opPlaceholder {
			return nil, fmt.Errorf("graph: input %q is a %s, only placeholders are feedable", in.name, in.kind)
		}
		if feedable[in] {
			return nil, fmt.Errorf("graph: duplicate input %q", in.name)
		}
		feedable[in] = true
	}

	order, err := topoSort(outputs)
	if err != nil {
		return nil, err
	}

	for _, n := range order {
		if n.kind == opPlaceholder && !n.learningPhase && !feedable[n] {
			return nil, fmt.Errorf("graph: placeholder %q is reachable from the outputs but not listed as an input", n.name)
		}
	}

	return &Func{g: g, inputs: inputs, outputs: outputs, order: order}, nil
}

// topoSort orders the ancestor set of outputs parents-first.
func topoSort(outputs []*Node) ([]*Node, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[*Node]int{}
	var order []*Node

	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("graph: cycle through node %q", n.name)
		}
		state[n] = visiting
		for _, in := range n.inputs {
			if err := visit(in); err != nil {
				return err
			}
		}
		state[n] = done
		order = append(order, n)
		return nil
	}

	for _, out := range outputs {
		if out.g != outputs[0].g {
			return nil, fmt.Errorf("graph: outputs belong to different graphs")
		}
		if err := visit(out); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// callState carries per-call options.
type callState struct {
	training bool
}

// CallOption adjusts one invocation of a compiled function.
type CallOption func(*callState)

// WithTraining feeds the graph's learning-phase flag for this call.
func WithTraining(training bool) CallOption {
	return func(s *callState) { s.training = training }
}

// Call binds feeds to the function's placeholders, evaluates the graph on the
// engine, and returns one tensor per output.
func (f *Func) Call(feeds []*tensor.RawTensor, opts ...CallOption) ([]*tensor.RawTensor, error) {
	if len(feeds) != len(f.inputs) {
		return nil, fmt.Errorf("graph: function takes %d inputs, got %d feeds", len(f.inputs), len(feeds))
	}

	var state callState
	for _, opt := range opts {
		opt(&state)
	}

	// Pin every tensor flowing through the call, feeds included, so the
	// engines' in-place fast paths cannot mutate feeds, variables, or shared
	// intermediates.
	var unpin []func()
	defer func() {
		for _, f := range unpin {
			f()
		}
	}()

	values := make(map[*Node]*tensor.RawTensor, len(f.order))
	for i, in := range f.inputs {
		if err := checkFeed(in, feeds[i]); err != nil {
			return nil, err
		}
		unpin = append(unpin, feeds[i].ForceNonUnique())
		values[in] = feeds[i]
	}

	for _, n := range f.order {
		if values[n] != nil {
			continue
		}
		v, err := f.g.eval(n, values, &state)
		if err != nil {
			return nil, err
		}
		unpin = append(unpin, v.ForceNonUnique())
		values[n] = v
	}

	outs := make([]*tensor.RawTensor, len(f.outputs))
	for i, out := range f.outputs {
		outs[i] = values[out]
	}
	return outs, nil
}

// checkFeed validates a fed tensor against its placeholder: dtype must match,
// known dimensions must agree, -1 dimensions bind to whatever arrives.
func checkFeed(ph *Node, v *tensor.RawTensor) error {
	if v == nil {
		return fmt.Errorf("graph: nil feed for placeholder %q", ph.name)
	}
	if v.DType() != ph.dtype {
		return fmt.Errorf("graph: placeholder %q expects %s, got %s", ph.name, ph.dtype, v.DType())
	}
	if len(v.Shape()) != len(ph.shape) {
		return fmt.Errorf("graph: placeholder %q expects rank %d, got shape %v", ph.name, len(ph.shape), v.Shape())
	}
	for i, d := range ph.shape {
		if d != -1 && v.Shape()[i] != d {
			return fmt.Errorf("graph: placeholder %q expects shape %v, got %v", ph.name, ph.shape, v.Shape())
		}
	}
	return nil
}

// Eval evaluates a single node that depends on no unbound placeholders.
func (g *Graph) Eval(n *Node) (*tensor.RawTensor, error) {
	f, err := g.Function(nil, []*Node{n})
	if err != nil {
		return nil, err
	}
	outs, err := f.Call(nil)
	if err != nil {
		return nil, err
	}
	return outs[0], nil
}
