package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/config"
)

// Square builds x * x.
func (n *Node) Square() *Node {
	return n.Mul(n)
}

// Mean reduces the whole tensor to its scalar average.
// Requires a fully-defined shape.
func (n *Node) Mean() *Node {
	if !staticShape(n.shape) {
		panic("mean: requires a fully-defined shape")
	}
	return n.Sum().DivScalar(float64(n.shape.NumElements()))
}

// Var builds the variance along dim: E[x^2] - E[x]^2.
func (n *Node) Var(dim int, keepDim bool) *Node {
	return n.Square().MeanDim(dim, keepDim).Sub(n.MeanDim(dim, keepDim).Square())
}

// Std builds the standard deviation along dim. The configured fuzz epsilon
// keeps the square root away from zero.
func (n *Node) Std(dim int, keepDim bool) *Node {
	return n.Var(dim, keepDim).AddScalar(config.Epsilon()).Sqrt()
}

// InTrainPhase selects x while training and alt at inference, driven by the
// graph's learning-phase flag.
func (g *Graph) InTrainPhase(x, alt *Node) *Node {
	return g.Switch(g.LearningPhase(), x, alt)
}

// Dropout zeroes a rate fraction of x and rescales the survivors by
// 1/(1-rate) while training; at inference it is the identity.
// Requires a fully-defined shape for the noise source.
func (n *Node) Dropout(rate float64) *Node {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate %v outside [0, 1)", rate))
	}
	if rate == 0 {
		return n
	}
	if !n.dtype.IsFloat() {
		panic(fmt.Sprintf("dropout: requires float node, got %s", n.dtype))
	}
	if !staticShape(n.shape) {
		panic("dropout: requires a fully-defined shape")
	}

	g := n.g
	noise := g.RandomUniform(n.shape, n.dtype)
	keep := noise.GreaterEqual(g.Scalar(rate, n.dtype)).Cast(n.dtype)
	dropped := n.Mul(keep).DivScalar(1 - rate)

	return g.InTrainPhase(dropped, n)
}
