package cpu

import (
	"testing"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestRandomUniformRange(t *testing.T) {
	e := New()
	x := e.RandomUniform(tensor.Shape{1000}, tensor.Float32)

	for i, v := range x.AsFloat32() {
		if v < 0 || v >= 1 {
			t.Fatalf("element %d: %f outside [0, 1)", i, v)
		}
	}
}

func TestSeedReproducible(t *testing.T) {
	a := New()
	b := New()
	a.Seed(42)
	b.Seed(42)

	xa := a.RandomNormal(tensor.Shape{64}, tensor.Float32).AsFloat32()
	xb := b.RandomNormal(tensor.Shape{64}, tensor.Float32).AsFloat32()
	for i := range xa {
		if xa[i] != xb[i] {
			t.Fatalf("element %d differs after equal seeds: %f vs %f", i, xa[i], xb[i])
		}
	}

	a.Seed(7)
	xc := a.RandomNormal(tensor.Shape{64}, tensor.Float32).AsFloat32()
	same := true
	for i := range xa {
		if xa[i] != xc[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical draws")
	}
}

func TestRandomIntDTypePanics(t *testing.T) {
	e := New()
	wantPanic(t, "random_uniform int32", func() { e.RandomUniform(tensor.Shape{4}, tensor.Int32) })
	wantPanic(t, "random_normal bool", func() { e.RandomNormal(tensor.Shape{4}, tensor.Bool) })
}
