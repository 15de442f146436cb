package cpu

import (
	"math"
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestReLU(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{5}, []float32{-2, -0.5, 0, 0.5, 2})
	wantF32(t, e.ReLU(x), tensor.Shape{5}, []float32{0, 0, 0, 0.5, 2})
}

func TestSigmoid(t *testing.T) {
	e := New()
	input := []float32{-2, 0, 2}
	x := newF32(t, tensor.Shape{3}, input)

	want := make([]float32, len(input))
	for i, v := range input {
		want[i] = float32(1 / (1 + math.Exp(-float64(v))))
	}
	wantF32(t, e.Sigmoid(x), tensor.Shape{3}, want)
}

func TestSoftmaxLastDim(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 1, 1, 1})

	got := e.Softmax(x, -1)
	out := got.AsFloat32()

	// Each row sums to one.
	for r := 0; r < 2; r++ {
		sum := out[r*3] + out[r*3+1] + out[r*3+2]
		if math.Abs(float64(sum)-1) > epsilon {
			t.Errorf("row %d sums to %f, expected 1", r, sum)
		}
	}

	// The uniform row is exactly 1/3 each.
	for i := 3; i < 6; i++ {
		if math.Abs(float64(out[i])-1.0/3.0) > epsilon {
			t.Errorf("uniform row element %d: got %f, expected 1/3", i, out[i])
		}
	}

	// Monotone row keeps its ordering.
	if !(out[0] < out[1] && out[1] < out[2]) {
		t.Errorf("softmax did not preserve ordering: %v", out[:3])
	}
}

func TestSoftmaxDim0(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{2, 2}, []float32{1, 5, 3, 5})

	got := e.Softmax(x, 0)
	out := got.AsFloat32()

	// Columns sum to one.
	for c := 0; c < 2; c++ {
		sum := out[c] + out[2+c]
		if math.Abs(float64(sum)-1) > epsilon {
			t.Errorf("column %d sums to %f, expected 1", c, sum)
		}
	}
	// Equal logits split evenly.
	if math.Abs(float64(out[1])-0.5) > epsilon {
		t.Errorf("equal logits: got %f, expected 0.5", out[1])
	}
}

func TestSoftmaxLargeValuesStable(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{1, 3}, []float32{1000, 1001, 1002})

	out := e.Softmax(x, 1).AsFloat32()
	sum := out[0] + out[1] + out[2]
	if math.IsNaN(float64(sum)) || math.Abs(float64(sum)-1) > epsilon {
		t.Errorf("softmax of large values is unstable: %v", out)
	}
}

func TestSoftmaxIntPanics(t *testing.T) {
	e := New()
	x := newI32(t, tensor.Shape{2}, []int32{1, 2})
	wantPanic(t, "softmax int32", func() { e.Softmax(x, -1) })
}
