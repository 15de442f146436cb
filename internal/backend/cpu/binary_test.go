package cpu

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestAdd(t *testing.T) {
	e := New()

	tests := []struct {
		name           string
		aShape, bShape tensor.Shape
		a, b           []float32
		outShape       tensor.Shape
		want           []float32
	}{
		{
			name:   "same shape",
			aShape: tensor.Shape{2, 2}, a: []float32{1, 2, 3, 4},
			bShape: tensor.Shape{2, 2}, b: []float32{10, 20, 30, 40},
			outShape: tensor.Shape{2, 2}, want: []float32{11, 22, 33, 44},
		},
		{
			name:   "broadcast row",
			aShape: tensor.Shape{2, 3}, a: []float32{1, 2, 3, 4, 5, 6},
			bShape: tensor.Shape{3}, b: []float32{10, 20, 30},
			outShape: tensor.Shape{2, 3}, want: []float32{11, 22, 33, 14, 25, 36},
		},
		{
			name:   "broadcast column",
			aShape: tensor.Shape{2, 3}, a: []float32{1, 2, 3, 4, 5, 6},
			bShape: tensor.Shape{2, 1}, b: []float32{100, 200},
			outShape: tensor.Shape{2, 3}, want: []float32{101, 102, 103, 204, 205, 206},
		},
		{
			name:   "broadcast scalar",
			aShape: tensor.Shape{3}, a: []float32{1, 2, 3},
			bShape: tensor.Shape{}, b: []float32{5},
			outShape: tensor.Shape{3}, want: []float32{6, 7, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newF32(t, tt.aShape, tt.a)
			b := newF32(t, tt.bShape, tt.b)
			wantF32(t, e.Add(a, b), tt.outShape, tt.want)
		})
	}
}

func TestSubMulDiv(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{4}, []float32{8, 6, 4, 2})
	b := newF32(t, tensor.Shape{4}, []float32{2, 3, 4, 8})

	wantF32(t, e.Sub(a.Clone(), b), tensor.Shape{4}, []float32{6, 3, 0, -6})
	wantF32(t, e.Mul(a.Clone(), b), tensor.Shape{4}, []float32{16, 18, 16, 16})
	wantF32(t, e.Div(a.Clone(), b), tensor.Shape{4}, []float32{4, 2, 1, 0.25})
}

func TestAddInt32(t *testing.T) {
	e := New()
	a := newI32(t, tensor.Shape{3}, []int32{1, 2, 3})
	b := newI32(t, tensor.Shape{3}, []int32{10, 20, 30})

	got := e.Add(a, b)
	if got.DType() != tensor.Int32 {
		t.Fatalf("Expected dtype int32, got %s", got.DType())
	}
	out := got.AsInt32()
	for i, w := range []int32{11, 22, 33} {
		if out[i] != w {
			t.Errorf("element %d: got %d, expected %d", i, out[i], w)
		}
	}
}

func TestPow(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{3}, []float32{2, 3, 4})
	b := newF32(t, tensor.Shape{3}, []float32{2, 2, 0.5})
	wantF32(t, e.Pow(a, b), tensor.Shape{3}, []float32{4, 9, 2})
}

func TestPowIntPanics(t *testing.T) {
	e := New()
	a := newI32(t, tensor.Shape{2}, []int32{2, 3})
	b := newI32(t, tensor.Shape{2}, []int32{2, 2})
	wantPanic(t, "pow int32", func() { e.Pow(a, b) })
}

func TestMaximumMinimum(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{4}, []float32{1, 5, -2, 0})
	b := newF32(t, tensor.Shape{4}, []float32{3, 4, -7, 0})

	wantF32(t, e.Maximum(a.Clone(), b), tensor.Shape{4}, []float32{3, 5, -2, 0})
	wantF32(t, e.Minimum(a.Clone(), b), tensor.Shape{4}, []float32{1, 4, -7, 0})
}

func TestBinaryDTypeMismatchPanics(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{2}, []float32{1, 2})
	b := newI32(t, tensor.Shape{2}, []int32{1, 2})
	wantPanic(t, "add dtype mismatch", func() { e.Add(a, b) })
}

func TestBinaryShapeMismatchPanics(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{2, 3}, make([]float32, 6))
	b := newF32(t, tensor.Shape{2, 4}, make([]float32, 8))
	wantPanic(t, "add shape mismatch", func() { e.Add(a, b) })
}

func TestAddDoesNotMutateSharedBuffer(t *testing.T) {
	e := New()
	a := newF32(t, tensor.Shape{3}, []float32{1, 2, 3})
	b := newF32(t, tensor.Shape{3}, []float32{10, 10, 10})

	alias := a.Clone() // shares the buffer, so a is no longer unique
	_ = e.Add(a, b)

	for i, w := range []float32{1, 2, 3} {
		if alias.AsFloat32()[i] != w {
			t.Errorf("shared buffer mutated at %d: got %f, expected %f", i, alias.AsFloat32()[i], w)
		}
	}
}

func TestScalarOps(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		op   func(*tensor.RawTensor, float64) *tensor.RawTensor
		s    float64
		want []float32
	}{
		{"add", e.AddScalar, 10, []float32{11, 12, 13, 14}},
		{"sub", e.SubScalar, 1, []float32{0, 1, 2, 3}},
		{"mul", e.MulScalar, 2, []float32{2, 4, 6, 8}},
		{"div", e.DivScalar, 4, []float32{0.25, 0.5, 0.75, 1}},
		{"pow", e.PowScalar, 2, []float32{1, 4, 9, 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newF32(t, tensor.Shape{4}, []float32{1, 2, 3, 4})
			wantF32(t, tt.op(x, tt.s), tensor.Shape{4}, tt.want)
		})
	}
}
