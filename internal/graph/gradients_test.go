package graph

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

// evalGrads compiles and runs the gradient nodes of loss w.r.t. params.
func evalGrads(t *testing.T, g *Graph, loss *Node, params []*Node) []*tensor.RawTensor {
	t.Helper()
	grads, err := g.Gradients(loss, params)
	if err != nil {
		t.Fatalf("Gradients failed: %v", err)
	}
	f, err := g.Function(nil, grads)
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}
	outs, err := f.Call(nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	return outs
}

func TestGradientSquare(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{3}, []float32{1, 2, 3}), "x")

	// d/dx sum(x^2) = 2x
	outs := evalGrads(t, g, x.Square().Sum(), []*Node{x})
	checkF32(t, outs[0], tensor.Shape{3}, []float32{2, 4, 6})
}

func TestGradientPowScalar(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2}, []float32{2, 3}), "x")

	// d/dx sum(x^3) = 3x^2
	outs := evalGrads(t, g, x.PowScalar(3).Sum(), []*Node{x})
	checkF32(t, outs[0], tensor.Shape{2}, []float32{12, 27})
}

func TestGradientMulChain(t *testing.T) {
	g := newTestGraph()
	a := g.Variable(rawF32(t, tensor.Shape{2}, []float32{2, 3}), "a")
	b := g.Variable(rawF32(t, tensor.Shape{2}, []float32{5, 7}), "b")

	outs := evalGrads(t, g, a.Mul(b).Sum(), []*Node{a, b})
	checkF32(t, outs[0], tensor.Shape{2}, []float32{5, 7})
	checkF32(t, outs[1], tensor.Shape{2}, []float32{2, 3})
}

func TestGradientDiv(t *testing.T) {
	g := newTestGraph()
	a := g.Variable(rawF32(t, tensor.Shape{2}, []float32{6, 8}), "a")
	b := g.Variable(rawF32(t, tensor.Shape{2}, []float32{2, 4}), "b")

	// d/da (a/b) = 1/b, d/db (a/b) = -a/b^2
	outs := evalGrads(t, g, a.Div(b).Sum(), []*Node{a, b})
	checkF32(t, outs[0], tensor.Shape{2}, []float32{0.5, 0.25})
	checkF32(t, outs[1], tensor.Shape{2}, []float32{-1.5, -0.5})
}

func TestGradientDot(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}), "x")
	w := g.Variable(rawF32(t, tensor.Shape{3, 2}, []float32{1, 0, 0, 1, 1, 1}), "w")

	outs := evalGrads(t, g, x.Dot(w).Sum(), []*Node{x, w})

	// dL/dx = ones(2,2) @ w^T: each row is the row sums of w.
	checkF32(t, outs[0], tensor.Shape{2, 3}, []float32{1, 1, 2, 1, 1, 2})
	// dL/dw = x^T @ ones(2,2): each column is the column sums of x.
	checkF32(t, outs[1], tensor.Shape{3, 2}, []float32{5, 5, 7, 7, 9, 9})
}

func TestGradientBroadcastReducesToParam(t *testing.T) {
	g := newTestGraph()
	x := g.Constant(rawF32(t, tensor.Shape{4, 3}, make([]float32, 12)))
	bias := g.Variable(rawF32(t, tensor.Shape{3}, []float32{0, 0, 0}), "bias")

	// The bias broadcasts over 4 rows, so its gradient accumulates 4 ones.
	outs := evalGrads(t, g, x.Add(bias).Sum(), []*Node{bias})
	checkF32(t, outs[0], tensor.Shape{3}, []float32{4, 4, 4})
}

func TestGradientActivations(t *testing.T) {
	g := newTestGraph()

	t.Run("relu", func(t *testing.T) {
		x := g.Variable(rawF32(t, tensor.Shape{3}, []float32{-1, 0, 2}), "x")
		outs := evalGrads(t, g, x.ReLU().Sum(), []*Node{x})
		checkF32(t, outs[0], tensor.Shape{3}, []float32{0, 0, 1})
	})

	t.Run("sigmoid", func(t *testing.T) {
		x := g.Variable(rawF32(t, tensor.Shape{1}, []float32{0}), "x")
		// sigmoid'(0) = 0.25
		outs := evalGrads(t, g, x.Sigmoid().Sum(), []*Node{x})
		checkF32(t, outs[0], tensor.Shape{1}, []float32{0.25})
	})

	t.Run("tanh", func(t *testing.T) {
		x := g.Variable(rawF32(t, tensor.Shape{1}, []float32{0}), "x")
		// tanh'(0) = 1
		outs := evalGrads(t, g, x.Tanh().Sum(), []*Node{x})
		checkF32(t, outs[0], tensor.Shape{1}, []float32{1})
	})

	t.Run("exp", func(t *testing.T) {
		x := g.Variable(rawF32(t, tensor.Shape{1}, []float32{0}), "x")
		outs := evalGrads(t, g, x.Exp().Sum(), []*Node{x})
		checkF32(t, outs[0], tensor.Shape{1}, []float32{1})
	})
}

func TestGradientSoftmaxSumIsZero(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{1, 3}, []float32{1, 2, 3}), "x")

	// Softmax outputs sum to 1 regardless of x, so d(sum)/dx = 0.
	outs := evalGrads(t, g, x.Softmax(1).Sum(), []*Node{x})
	checkF32(t, outs[0], tensor.Shape{1, 3}, []float32{0, 0, 0})
}

func TestGradientMeanDim(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2, 4}, make([]float32, 8)), "x")

	outs := evalGrads(t, g, x.MeanDim(1, false).Sum(), []*Node{x})
	want := []float32{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}
	checkF32(t, outs[0], tensor.Shape{2, 4}, want)
}

func TestGradientStopGradient(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2}, []float32{1, 2}), "x")

	// y = x * stop(x): only the direct factor contributes, so dy/dx = x.
	loss := x.Mul(x.StopGradient()).Sum()
	outs := evalGrads(t, g, loss, []*Node{x})
	checkF32(t, outs[0], tensor.Shape{2}, []float32{1, 2})
}

func TestGradientUnusedParamIsZero(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2}, []float32{1, 2}), "x")
	unused := g.Variable(rawF32(t, tensor.Shape{3}, []float32{1, 1, 1}), "unused")

	outs := evalGrads(t, g, x.Sum(), []*Node{x, unused})
	checkF32(t, outs[0], tensor.Shape{2}, []float32{1, 1})
	checkF32(t, outs[1], tensor.Shape{3}, []float32{0, 0, 0})
}

func TestGradientThroughWhere(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{3}, []float32{1, 2, 3}), "x")
	zero := g.Scalar(0, tensor.Float32)
	cond := g.Constant(func() *tensor.RawTensor {
		r := tensor.MustNewRaw(tensor.Shape{3}, tensor.Bool, tensor.CPU)
		copy(r.AsBool(), []bool{true, false, true})
		return r
	}())

	outs := evalGrads(t, g, g.Where(cond, x, zero).Sum(), []*Node{x})
	checkF32(t, outs[0], tensor.Shape{3}, []float32{1, 0, 1})
}

func TestGradientNonDifferentiable(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}), "x")

	loss := x.Argmax(1).Cast(tensor.Float32).Sum()
	if _, err := g.Gradients(loss, []*Node{x}); err == nil {
		t.Error("Gradients through argmax should fail")
	}
}

func TestGradientMaskedBranchStaysInert(t *testing.T) {
	g := newTestGraph()
	x := g.Variable(rawF32(t, tensor.Shape{3}, []float32{-1, 0.5, 2}), "x")

	// The comparison mask is not differentiated, only the multiply is.
	mask := x.Greater(g.Scalar(0, tensor.Float32)).Cast(tensor.Float32).StopGradient()
	outs := evalGrads(t, g, x.Mul(mask).Sum(), []*Node{x})
	checkF32(t, outs[0], tensor.Shape{3}, []float32{0, 1, 1})
}

func TestGradientLossFromAnotherGraphFails(t *testing.T) {
	g := newTestGraph()
	other := newTestGraph()
	x := other.Variable(rawF32(t, tensor.Shape{1}, []float32{1}), "x")

	if _, err := g.Gradients(x.Sum(), []*Node{x}); err == nil {
		t.Error("Gradients should reject a loss from another graph")
	}
}
