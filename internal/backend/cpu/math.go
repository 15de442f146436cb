package cpu

import (
	"fmt"
	"math"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// Neg negates every element.
func (e *Engine) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "neg", func(v float64) float64 { return -v }, true)
}

// Exp computes e^x element-wise.
func (e *Engine) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "exp", math.Exp, false)
}

// Log computes the natural logarithm element-wise.
func (e *Engine) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "log", math.Log, false)
}

// Sqrt computes the square root element-wise.
func (e *Engine) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "sqrt", math.Sqrt, false)
}

// Abs computes the absolute value element-wise.
func (e *Engine) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "abs", math.Abs, true)
}

// Sign maps every element to -1, 0 or +1.
func (e *Engine) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "sign", func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	}, true)
}

// Round rounds half away from zero, element-wise. Float tensors only.
func (e *Engine) Round(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "round", math.Round, false)
}

// Clip limits every element to [lo, hi].
func (e *Engine) Clip(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	if lo > hi {
		panic(fmt.Sprintf("clip: lo %v > hi %v", lo, hi))
	}
	return e.unary(x, "clip", func(v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	}, true)
}

// unary applies f element-wise. The kernel is written once against float64;
// float32 round-trips through it, integer dtypes are admitted only when ints
// makes sense for the operation.
func (e *Engine) unary(x *tensor.RawTensor, name string, f func(float64) float64, ints bool) *tensor.RawTensor {
	out := tensor.MustNewRaw(x.Shape(), x.DType(), e.device)

	switch x.DType() {
	case tensor.Float32:
		mapUnary(out.AsFloat32(), x.AsFloat32(), func(v float32) float32 { return float32(f(float64(v))) }, e.par)
	case tensor.Float64:
		mapUnary(out.AsFloat64(), x.AsFloat64(), f, e.par)
	case tensor.Int32:
		if !ints {
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
		}
		mapUnary(out.AsInt32(), x.AsInt32(), func(v int32) int32 { return int32(f(float64(v))) }, e.par)
	case tensor.Int64:
		if !ints {
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
		}
		mapUnary(out.AsInt64(), x.AsInt64(), func(v int64) int64 { return int64(f(float64(v))) }, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return out
}

// mapUnary runs dst[i] = f(xs[i]) in chunked parallel.
func mapUnary[T any](dst, xs []T, f func(T) T, cfg parallel.Config) {
	parallel.For(len(dst), func(i int) {
		dst[i] = f(xs[i])
	}, cfg)
}
