package graph

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestFunctionCall(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2, 2}, tensor.Float32, "x")
	y := x.MulScalar(2).AddScalar(1)

	f, err := g.Function([]*Node{x}, []*Node{y})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	outs, err := f.Call([]*tensor.RawTensor{rawF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, outs[0], tensor.Shape{2, 2}, []float32{3, 5, 7, 9})
}

func TestFunctionMultipleOutputs(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{3}, tensor.Float32, "x")

	f, err := g.Function([]*Node{x}, []*Node{x.Neg(), x.AddScalar(10)})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	outs, err := f.Call([]*tensor.RawTensor{rawF32(t, tensor.Shape{3}, []float32{1, 2, 3})})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, outs[0], tensor.Shape{3}, []float32{-1, -2, -3})
	checkF32(t, outs[1], tensor.Shape{3}, []float32{11, 12, 13})
}

func TestFunctionValidation(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2}, tensor.Float32, "x")
	y := x.Neg()

	if _, err := g.Function([]*Node{x}, nil); err == nil {
		t.Error("Function should require at least one output")
	}
	if _, err := g.Function([]*Node{y}, []*Node{y}); err == nil {
		t.Error("Function should reject a non-placeholder input")
	}
	if _, err := g.Function([]*Node{x, x}, []*Node{y}); err == nil {
		t.Error("Function should reject duplicate inputs")
	}
	if _, err := g.Function(nil, []*Node{y}); err == nil {
		t.Error("Function should reject a reachable unfed placeholder")
	}
}

func TestCallFeedValidation(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2, 3}, tensor.Float32, "x")
	f, err := g.Function([]*Node{x}, []*Node{x.Neg()})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	if _, err := f.Call(nil); err == nil {
		t.Error("Call should reject a missing feed")
	}
	if _, err := f.Call([]*tensor.RawTensor{rawF32(t, tensor.Shape{3, 2}, make([]float32, 6))}); err == nil {
		t.Error("Call should reject a shape mismatch")
	}
	i32 := tensor.MustNewRaw(tensor.Shape{2, 3}, tensor.Int32, tensor.CPU)
	if _, err := f.Call([]*tensor.RawTensor{i32}); err == nil {
		t.Error("Call should reject a dtype mismatch")
	}
}

func TestCallBindsUnknownDims(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{-1, 2}, tensor.Float32, "x")
	f, err := g.Function([]*Node{x}, []*Node{x.MulScalar(3)})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	// The same compiled function accepts different batch sizes.
	for _, batch := range []int{1, 4} {
		feed := rawF32(t, tensor.Shape{batch, 2}, make([]float32, batch*2))
		outs, err := f.Call([]*tensor.RawTensor{feed})
		if err != nil {
			t.Fatalf("Call with batch %d failed: %v", batch, err)
		}
		if !outs[0].Shape().Equal(tensor.Shape{batch, 2}) {
			t.Errorf("output shape = %v, want [%d 2]", outs[0].Shape(), batch)
		}
	}

	wrong := rawF32(t, tensor.Shape{4, 3}, make([]float32, 12))
	if _, err := f.Call([]*tensor.RawTensor{wrong}); err == nil {
		t.Error("Call should still reject mismatched known dimensions")
	}
}

func TestCallDoesNotMutateFeeds(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2}, tensor.Float32, "x")
	c := g.Constant(rawF32(t, tensor.Shape{2}, []float32{10, 20}))

	// A tensor-tensor op is the hazard here: the engine may reuse a unique
	// left operand's buffer, so a freshly built feed must be pinned.
	f, err := g.Function([]*Node{x}, []*Node{x.Add(c)})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	feed := rawF32(t, tensor.Shape{2}, []float32{1, 2})
	outs, err := f.Call([]*tensor.RawTensor{feed})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, outs[0], tensor.Shape{2}, []float32{11, 22})
	checkF32(t, feed, tensor.Shape{2}, []float32{1, 2})

	// Scalar ops must leave feeds alone too.
	f, err = g.Function([]*Node{x}, []*Node{x.AddScalar(1)})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}
	if _, err := f.Call([]*tensor.RawTensor{feed}); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, feed, tensor.Shape{2}, []float32{1, 2})
}

func TestEval(t *testing.T) {
	g := newTestGraph()
	a := g.Constant(rawF32(t, tensor.Shape{2}, []float32{1, 2}))
	b := g.Constant(rawF32(t, tensor.Shape{2}, []float32{10, 20}))

	out, err := g.Eval(a.Add(b))
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, out, tensor.Shape{2}, []float32{11, 22})
}

func TestEvalUnfedPlaceholderFails(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2}, tensor.Float32, "x")
	if _, err := g.Eval(x.Neg()); err == nil {
		t.Error("Eval should fail when a placeholder is reachable")
	}
}

func TestEvalEnginePanicBecomesError(t *testing.T) {
	g := newTestGraph()
	x := g.Constant(tensor.MustNewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU))
	// Exp rejects integer tensors at execution time.
	if _, err := g.Eval(x.Exp()); err == nil {
		t.Error("an engine panic during Eval should surface as an error")
	}
}

func TestSwitchScalarCondition(t *testing.T) {
	g := newTestGraph()
	a := g.Constant(rawF32(t, tensor.Shape{2}, []float32{1, 2}))
	b := g.Constant(rawF32(t, tensor.Shape{2}, []float32{-1, -2}))

	yes := g.Switch(g.Scalar(1, tensor.Bool), a, b)
	out, err := g.Eval(yes)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, out, tensor.Shape{2}, []float32{1, 2})

	no := g.Switch(g.Scalar(0, tensor.Bool), a, b)
	out, err = g.Eval(no)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, out, tensor.Shape{2}, []float32{-1, -2})
}

func TestInTrainPhase(t *testing.T) {
	g := newTestGraph()
	train := g.Constant(rawF32(t, tensor.Shape{2}, []float32{1, 1}))
	infer := g.Constant(rawF32(t, tensor.Shape{2}, []float32{0, 0}))
	out := g.InTrainPhase(train, infer)

	f, err := g.Function(nil, []*Node{out})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	got, err := f.Call(nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, got[0], tensor.Shape{2}, []float32{0, 0})

	got, err = f.Call(nil, WithTraining(true))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, got[0], tensor.Shape{2}, []float32{1, 1})
}

func TestDropout(t *testing.T) {
	g := newTestGraph()
	g.Engine().Seed(1)

	x := g.Placeholder(tensor.Shape{1, 1000}, tensor.Float32, "x")
	y := x.Dropout(0.5)

	f, err := g.Function([]*Node{x}, []*Node{y})
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}

	data := make([]float32, 1000)
	for i := range data {
		data[i] = 1
	}
	feed := rawF32(t, tensor.Shape{1, 1000}, data)

	// Inference: identity.
	outs, err := f.Call([]*tensor.RawTensor{feed})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	checkF32(t, outs[0], tensor.Shape{1, 1000}, data)

	// Training: every element is either dropped or rescaled by 1/(1-rate).
	outs, err = f.Call([]*tensor.RawTensor{feed}, WithTraining(true))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	dropped := 0
	for i, v := range outs[0].AsFloat32() {
		switch {
		case v == 0:
			dropped++
		case v > 2-epsilon && v < 2+epsilon:
		default:
			t.Fatalf("element %d = %f, want 0 or 2", i, v)
		}
	}
	if dropped < 300 || dropped > 700 {
		t.Errorf("dropped %d of 1000 at rate 0.5", dropped)
	}
}

func TestDropoutZeroRateIsIdentity(t *testing.T) {
	g := newTestGraph()
	x := g.Placeholder(tensor.Shape{2}, tensor.Float32, "x")
	if x.Dropout(0) != x {
		t.Error("Dropout(0) should return the node unchanged")
	}
}

func TestCompositeOps(t *testing.T) {
	g := newTestGraph()
	x := g.Constant(rawF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4}))

	sq, err := g.Eval(x.Square())
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, sq, tensor.Shape{2, 2}, []float32{1, 4, 9, 16})

	mean, err := g.Eval(x.Mean())
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, mean, tensor.Shape{}, []float32{2.5})

	// Var along dim 1: E[x^2] - E[x]^2 = 0.25 per row here.
	v, err := g.Eval(x.Var(1, false))
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	checkF32(t, v, tensor.Shape{2}, []float32{0.25, 0.25})
}
