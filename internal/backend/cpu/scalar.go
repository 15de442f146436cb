package cpu

import (
	"fmt"
	"math"

	"github.com/axon-ml/axon/internal/tensor"
)

// AddScalar adds s to every element.
func (e *Engine) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.scalar(x, s, "add_scalar", func(v, s float64) float64 { return v + s })
}

// SubScalar subtracts s from every element.
func (e *Engine) SubScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.scalar(x, s, "sub_scalar", func(v, s float64) float64 { return v - s })
}

// MulScalar multiplies every element by s.
func (e *Engine) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.scalar(x, s, "mul_scalar", func(v, s float64) float64 { return v * s })
}

// DivScalar divides every element by s.
func (e *Engine) DivScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.scalar(x, s, "div_scalar", func(v, s float64) float64 { return v / s })
}

// PowScalar raises every element to the power s.
func (e *Engine) PowScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.scalar(x, s, "pow_scalar", math.Pow)
}

// scalar applies f(v, s) element-wise. The scalar travels as float64 and is
// converted once per dtype; integer results truncate toward zero.
func (e *Engine) scalar(x *tensor.RawTensor, s float64, name string, f func(v, s float64) float64) *tensor.RawTensor {
	out := tensor.MustNewRaw(x.Shape(), x.DType(), e.device)

	switch x.DType() {
	case tensor.Float32:
		mapUnary(out.AsFloat32(), x.AsFloat32(), func(v float32) float32 { return float32(f(float64(v), s)) }, e.par)
	case tensor.Float64:
		mapUnary(out.AsFloat64(), x.AsFloat64(), func(v float64) float64 { return f(v, s) }, e.par)
	case tensor.Int32:
		mapUnary(out.AsInt32(), x.AsInt32(), func(v int32) int32 { return int32(f(float64(v), s)) }, e.par)
	case tensor.Int64:
		mapUnary(out.AsInt64(), x.AsInt64(), func(v int64) int64 { return int64(f(float64(v), s)) }, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return out
}
