package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// Gradients builds symbolic derivative nodes of loss with respect to params
// by reverse traversal of the ancestor DAG. The result holds one node per
// param, in order; params the loss does not depend on get zero tensors.
//
// Gradient construction needs static shapes along the differentiated path so
// broadcast reductions can be resolved at build time.
func (g *Graph) Gradients(loss *Node, params []*Node) ([]*Node, error) {
	if loss.g != g {
		return nil, fmt.Errorf("graph: loss belongs to another graph")
	}
	if !staticShape(loss.shape) {
		return nil, fmt.Errorf("graph: gradients need a fully-defined loss shape, got %v", loss.shape)
	}
	for _, p := range params {
		if p.g != g {
			return nil, fmt.Errorf("graph: param %q belongs to another graph", p.name)
		}
	}

	order, err := topoSort([]*Node{loss})
	if err != nil {
		return nil, err
	}

	// needsGrad marks nodes some param flows into; gradient only propagates
	// along marked edges, so non-differentiable branches (masks, comparisons)
	// stay inert instead of failing the build.
	isParam := make(map[*Node]bool, len(params))
	for _, p := range params {
		isParam[p] = true
	}
	needs := make(map[*Node]bool, len(order))
	for _, n := range order {
		marked := isParam[n]
		if n.kind != opStopGradient {
			for _, in := range n.inputs {
				marked = marked || needs[in]
			}
		}
		needs[n] = marked
	}

	grads := map[*Node]*Node{loss: g.onesLike(loss)}

	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		grad := grads[n]
		if grad == nil || len(n.inputs) == 0 || n.kind == opStopGradient {
			continue
		}

		anyNeeds := false
		for _, in := range n.inputs {
			anyNeeds = anyNeeds || needs[in]
		}
		if !anyNeeds {
			continue
		}

		contribs, err := g.backprop(n, grad, needs)
		if err != nil {
			return nil, err
		}
		for j, c := range contribs {
			if c == nil {
				continue
			}
			in := n.inputs[j]
			if prev := grads[in]; prev != nil {
				grads[in] = prev.Add(c)
			} else {
				grads[in] = c
			}
		}
	}

	outs := make([]*Node, len(params))
	for i, p := range params {
		if gr := grads[p]; gr != nil {
			outs[i] = gr
			continue
		}
		if !staticShape(p.shape) {
			return nil, fmt.Errorf("graph: param %q does not influence the loss and has no static shape for a zero gradient", p.name)
		}
		outs[i] = g.zerosLike(p)
	}
	return outs, nil
}

func (g *Graph) onesLike(n *Node) *Node {
	if len(n.shape) == 0 {
		return g.Scalar(1, n.dtype)
	}
	return g.Scalar(1, n.dtype).Expand(n.shape)
}

func (g *Graph) zerosLike(n *Node) *Node {
	return g.Constant(tensor.MustNewRaw(n.shape, n.dtype, g.engine.Device()))
}

// reduceToShape sums a gradient over the axes the forward op broadcast, so it
// matches the operand's shape again.
func reduceToShape(gr *Node, target tensor.Shape) *Node {
	if gr.shape.Equal(target) {
		return gr
	}
	for len(gr.shape) > len(target) {
		gr = gr.SumDim(0, false)
	}
	for i := range target {
		if target[i] == 1 && gr.shape[i] != 1 {
			gr = gr.SumDim(i, true)
		}
	}
	if !gr.shape.Equal(target) {
		gr = gr.Reshape(target)
	}
	return gr
}

// backprop returns per-input gradient contributions for one node, nil where
// an input needs none.
func (g *Graph) backprop(n, grad *Node, needs map[*Node]bool) ([]*Node, error) {
	out := make([]*Node, len(n.inputs))
	requireStatic := func(which *Node) error {
		if !staticShape(which.shape) {
			return fmt.Errorf("graph: gradient of %s needs static shapes, %q has %v", n.kind, which.name, which.shape)
		}
		return nil
	}

	// set reduces the raw contribution onto the input's shape and stores it.
	set := func(i int, contrib *Node) error {
		in := n.inputs[i]
		if !needs[in] {
			return nil
		}
		if err := requireStatic(in); err != nil {
			return err
		}
		out[i] = reduceToShape(contrib, in.shape)
		return nil
	}

	var err error
	switch n.kind {
	case opAdd:
		err = firstErr(set(0, grad), set(1, grad))
	case opSub:
		err = firstErr(set(0, grad), set(1, grad.Neg()))
	case opMul:
		err = firstErr(set(0, grad.Mul(n.inputs[1])), set(1, grad.Mul(n.inputs[0])))
	case opDiv:
		a, b := n.inputs[0], n.inputs[1]
		err = firstErr(
			set(0, grad.Div(b)),
			set(1, grad.Mul(a).Neg().Div(b.Square())),
		)
	case opPow:
		a, b := n.inputs[0], n.inputs[1]
		err = firstErr(
			set(0, grad.Mul(b).Mul(a.Pow(b.SubScalar(1)))),
			set(1, grad.Mul(n).Mul(a.Log())),
		)
	case opMaximum:
		a, b := n.inputs[0], n.inputs[1]
		err = firstErr(
			set(0, grad.Mul(a.GreaterEqual(b).Cast(n.dtype))),
			set(1, grad.Mul(a.Lower(b).Cast(n.dtype))),
		)
	case opMinimum:
		a, b := n.inputs[0], n.inputs[1]
		err = firstErr(
			set(0, grad.Mul(a.LowerEqual(b).Cast(n.dtype))),
			set(1, grad.Mul(a.Greater(b).Cast(n.dtype))),
		)

	case opAddScalar:
		err = set(0, grad)
	case opSubScalar:
		err = set(0, grad)
	case opMulScalar:
		err = set(0, grad.MulScalar(n.attrs.scalar))
	case opDivScalar:
		err = set(0, grad.DivScalar(n.attrs.scalar))
	case opPowScalar:
		x := n.inputs[0]
		err = set(0, grad.MulScalar(n.attrs.scalar).Mul(x.PowScalar(n.attrs.scalar-1)))

	case opNeg:
		err = set(0, grad.Neg())
	case opExp:
		err = set(0, grad.Mul(n))
	case opLog:
		err = set(0, grad.Div(n.inputs[0]))
	case opSqrt:
		err = set(0, grad.DivScalar(2).Div(n))
	case opAbs:
		err = set(0, grad.Mul(n.inputs[0].Sign()))
	case opClip:
		x := n.inputs[0]
		mask := x.GreaterEqual(g.Scalar(n.attrs.lo, x.dtype)).
			And(x.LowerEqual(g.Scalar(n.attrs.hi, x.dtype))).
			Cast(n.dtype)
		err = set(0, grad.Mul(mask))

	case opReLU:
		x := n.inputs[0]
		err = set(0, grad.Mul(x.Greater(g.Scalar(0, x.dtype)).Cast(n.dtype)))
	case opSigmoid:
		err = set(0, grad.Mul(n).Mul(n.Neg().AddScalar(1)))
	case opTanh:
		err = set(0, grad.Mul(n.Square().Neg().AddScalar(1)))
	case opSoftmax:
		dim := n.attrs.dim
		err = set(0, grad.Sub(grad.Mul(n).SumDim(dim, true)).Mul(n))

	case opDot:
		a, b := n.inputs[0], n.inputs[1]
		err = firstErr(
			set(0, grad.Dot(b.Transpose())),
			set(1, a.Transpose().Dot(grad)),
		)
	case opBatchDot:
		a, b := n.inputs[0], n.inputs[1]
		perm := swapLastTwo(len(a.shape))
		err = firstErr(
			set(0, grad.BatchDot(b.Transpose(perm...))),
			set(1, a.Transpose(perm...).BatchDot(grad)),
		)

	case opTranspose:
		inverse := make([]int, len(n.attrs.axes))
		for i, ax := range n.attrs.axes {
			inverse[ax] = i
		}
		err = set(0, grad.Transpose(inverse...))

	case opReshape, opSqueeze, opExpandDims:
		x := n.inputs[0]
		if err = requireStatic(x); err == nil {
			err = set(0, grad.Reshape(x.shape))
		}
	case opExpand:
		err = set(0, grad)

	case opSum:
		x := n.inputs[0]
		if err = requireStatic(x); err == nil {
			err = set(0, grad.Expand(x.shape))
		}
	case opSumDim, opMeanDim:
		x := n.inputs[0]
		if err = requireStatic(x); err != nil {
			break
		}
		gr := grad
		if !n.attrs.keepDim {
			gr = gr.ExpandDims(n.attrs.dim)
		}
		gr = gr.Expand(x.shape)
		if n.kind == opMeanDim {
			gr = gr.DivScalar(float64(x.shape[n.attrs.dim]))
		}
		err = set(0, gr)

	case opCast:
		x := n.inputs[0]
		if !n.dtype.IsFloat() || !x.dtype.IsFloat() {
			return nil, fmt.Errorf("graph: cast %s -> %s is not differentiable", x.dtype, n.dtype)
		}
		err = set(0, grad.Cast(x.dtype))

	case opWhere, opSwitch:
		cond := n.inputs[0]
		zero := g.Scalar(0, n.dtype)
		err = firstErr(
			set(1, g.Where(cond, grad, zero)),
			set(2, g.Where(cond, zero, grad)),
		)

	default:
		return nil, fmt.Errorf("graph: %s is not differentiable", n.kind)
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}

func swapLastTwo(rank int) []int {
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	perm[rank-2], perm[rank-1] = perm[rank-1], perm[rank-2]
	return perm
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
