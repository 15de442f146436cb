package cpu

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestGather(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{2, 3}, []float32{10, 20, 30, 40, 50, 60})

	// Pick columns per row along dim 1.
	index := newI32(t, tensor.Shape{2, 2}, []int32{0, 2, 1, 1})
	wantF32(t, e.Gather(x, 1, index), tensor.Shape{2, 2}, []float32{10, 30, 50, 50})

	// Pick rows per column along dim 0.
	index0 := newI32(t, tensor.Shape{1, 3}, []int32{1, 0, 1})
	wantF32(t, e.Gather(x, 0, index0), tensor.Shape{1, 3}, []float32{40, 20, 60})
}

func TestGatherOutOfRangePanics(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{2, 2}, make([]float32, 4))
	index := newI32(t, tensor.Shape{2, 1}, []int32{0, 5})
	wantPanic(t, "gather index out of range", func() { e.Gather(x, 1, index) })
}

func TestGatherRankMismatchPanics(t *testing.T) {
	e := New()
	x := newF32(t, tensor.Shape{2, 2}, make([]float32, 4))
	index := newI32(t, tensor.Shape{2}, []int32{0, 1})
	wantPanic(t, "gather rank mismatch", func() { e.Gather(x, 1, index) })
}

func TestWhere(t *testing.T) {
	e := New()
	cond := newBool(t, tensor.Shape{4}, []bool{true, false, true, false})
	x := newF32(t, tensor.Shape{4}, []float32{1, 2, 3, 4})
	y := newF32(t, tensor.Shape{4}, []float32{-1, -2, -3, -4})

	wantF32(t, e.Where(cond, x, y), tensor.Shape{4}, []float32{1, -2, 3, -4})
}

func TestWhereBroadcast(t *testing.T) {
	e := New()
	cond := newBool(t, tensor.Shape{2, 1}, []bool{true, false})
	x := newF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	y := newF32(t, tensor.Shape{}, []float32{0})

	wantF32(t, e.Where(cond, x, y), tensor.Shape{2, 3}, []float32{1, 2, 3, 0, 0, 0})
}

func TestWhereNonBoolCondPanics(t *testing.T) {
	e := New()
	cond := newF32(t, tensor.Shape{2}, []float32{1, 0})
	x := newF32(t, tensor.Shape{2}, []float32{1, 2})
	wantPanic(t, "where float cond", func() { e.Where(cond, x, x) })
}

func TestOneHot(t *testing.T) {
	e := New()
	indices := newI32(t, tensor.Shape{3}, []int32{0, 2, 1})

	got := e.OneHot(indices, 3, tensor.Float32)
	wantF32(t, got, tensor.Shape{3, 3}, []float32{
		1, 0, 0,
		0, 0, 1,
		0, 1, 0,
	})
}

func TestOneHotOutOfRangeIsZeroRow(t *testing.T) {
	e := New()
	indices := newI32(t, tensor.Shape{2}, []int32{5, -1})

	got := e.OneHot(indices, 3, tensor.Float32)
	wantF32(t, got, tensor.Shape{2, 3}, []float32{0, 0, 0, 0, 0, 0})
}

func TestOneHotInt64Output(t *testing.T) {
	e := New()
	indices := newI32(t, tensor.Shape{2}, []int32{1, 0})

	got := e.OneHot(indices, 2, tensor.Int64)
	if got.DType() != tensor.Int64 {
		t.Fatalf("Expected dtype int64, got %s", got.DType())
	}
	out := got.AsInt64()
	for i, w := range []int64{0, 1, 1, 0} {
		if out[i] != w {
			t.Errorf("element %d: got %d, expected %d", i, out[i], w)
		}
	}
}

func TestCast(t *testing.T) {
	e := New()

	t.Run("float32 to int32 truncates", func(t *testing.T) {
		x := newF32(t, tensor.Shape{4}, []float32{1.9, -1.9, 0.2, 3})
		got := e.Cast(x, tensor.Int32)
		out := got.AsInt32()
		for i, w := range []int32{1, -1, 0, 3} {
			if out[i] != w {
				t.Errorf("element %d: got %d, expected %d", i, out[i], w)
			}
		}
	})

	t.Run("bool to float32", func(t *testing.T) {
		x := newBool(t, tensor.Shape{3}, []bool{true, false, true})
		wantF32(t, e.Cast(x, tensor.Float32), tensor.Shape{3}, []float32{1, 0, 1})
	})

	t.Run("float32 to bool", func(t *testing.T) {
		x := newF32(t, tensor.Shape{3}, []float32{0, 2, -1})
		got := e.Cast(x, tensor.Bool)
		out := got.AsBool()
		for i, w := range []bool{false, true, true} {
			if out[i] != w {
				t.Errorf("element %d: got %v, expected %v", i, out[i], w)
			}
		}
	})

	t.Run("float32 through float16 and back", func(t *testing.T) {
		x := newF32(t, tensor.Shape{3}, []float32{1, -2.5, 0.25})
		half := e.Cast(x, tensor.Float16)
		if half.DType() != tensor.Float16 {
			t.Fatalf("Expected dtype float16, got %s", half.DType())
		}
		wantF32(t, e.Cast(half, tensor.Float32), tensor.Shape{3}, []float32{1, -2.5, 0.25})
	})

	t.Run("same dtype is identity", func(t *testing.T) {
		x := newF32(t, tensor.Shape{2}, []float32{1, 2})
		if e.Cast(x, tensor.Float32) != x {
			t.Error("Cast to same dtype should return the input")
		}
	})
}
