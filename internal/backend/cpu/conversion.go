package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

var oneHalf = float16.Fromfloat32(1)

// Cast converts the tensor to a different data type. Values travel through
// float64; bool maps to 0/1 on the way out and `!= 0` on the way in.
func (e *Engine) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x
	}

	out := tensor.MustNewRaw(x.Shape(), dtype, e.device)
	get := getterFor(x)
	set := setterFor(out)

	parallel.For(x.NumElements(), func(i int) {
		set(i, get(i))
	}, e.par)

	return out
}

func getterFor(t *tensor.RawTensor) func(i int) float64 {
	switch t.DType() {
	case tensor.Float32:
		s := t.AsFloat32()
		return func(i int) float64 { return float64(s[i]) }
	case tensor.Float64:
		s := t.AsFloat64()
		return func(i int) float64 { return s[i] }
	case tensor.Float16:
		s := t.AsFloat16()
		return func(i int) float64 { return float64(s[i].Float32()) }
	case tensor.Int32:
		s := t.AsInt32()
		return func(i int) float64 { return float64(s[i]) }
	case tensor.Int64:
		s := t.AsInt64()
		return func(i int) float64 { return float64(s[i]) }
	case tensor.Uint8:
		s := t.AsUint8()
		return func(i int) float64 { return float64(s[i]) }
	case tensor.Bool:
		s := t.AsBool()
		return func(i int) float64 {
			if s[i] {
				return 1
			}
			return 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", t.DType()))
	}
}

func setterFor(t *tensor.RawTensor) func(i int, v float64) {
	switch t.DType() {
	case tensor.Float32:
		s := t.AsFloat32()
		return func(i int, v float64) { s[i] = float32(v) }
	case tensor.Float64:
		s := t.AsFloat64()
		return func(i int, v float64) { s[i] = v }
	case tensor.Float16:
		s := t.AsFloat16()
		return func(i int, v float64) { s[i] = float16.Fromfloat32(float32(v)) }
	case tensor.Int32:
		s := t.AsInt32()
		return func(i int, v float64) { s[i] = int32(v) }
	case tensor.Int64:
		s := t.AsInt64()
		return func(i int, v float64) { s[i] = int64(v) }
	case tensor.Uint8:
		s := t.AsUint8()
		return func(i int, v float64) { s[i] = uint8(v) }
	case tensor.Bool:
		s := t.AsBool()
		return func(i int, v float64) { s[i] = v != 0 }
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", t.DType()))
	}
}
