package cpu

import (
	"fmt"
	"math"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// binKernels bundles the per-dtype kernels for one binary operation.
// A nil field means the dtype is unsupported for that operation.
type binKernels struct {
	name string
	f32  func(x, y float32) float32
	f64  func(x, y float64) float64
	i32  func(x, y int32) int32
	i64  func(x, y int64) int64
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (e *Engine) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "add",
		f32:  func(x, y float32) float32 { return x + y },
		f64:  func(x, y float64) float64 { return x + y },
		i32:  func(x, y int32) int32 { return x + y },
		i64:  func(x, y int64) int64 { return x + y },
	})
}

// Sub performs element-wise subtraction with broadcasting.
func (e *Engine) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "sub",
		f32:  func(x, y float32) float32 { return x - y },
		f64:  func(x, y float64) float64 { return x - y },
		i32:  func(x, y int32) int32 { return x - y },
		i64:  func(x, y int64) int64 { return x - y },
	})
}

// Mul performs element-wise multiplication with broadcasting.
func (e *Engine) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "mul",
		f32:  func(x, y float32) float32 { return x * y },
		f64:  func(x, y float64) float64 { return x * y },
		i32:  func(x, y int32) int32 { return x * y },
		i64:  func(x, y int64) int64 { return x * y },
	})
}

// Div performs element-wise division with broadcasting.
func (e *Engine) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "div",
		f32:  func(x, y float32) float32 { return x / y },
		f64:  func(x, y float64) float64 { return x / y },
		i32:  func(x, y int32) int32 { return x / y },
		i64:  func(x, y int64) int64 { return x / y },
	})
}

// Pow raises a to the power b element-wise. Float tensors only.
func (e *Engine) Pow(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "pow",
		f32:  func(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) },
		f64:  math.Pow,
	})
}

// Maximum takes the element-wise maximum with broadcasting.
func (e *Engine) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "maximum",
		f32:  func(x, y float32) float32 { return max(x, y) },
		f64:  func(x, y float64) float64 { return max(x, y) },
		i32:  func(x, y int32) int32 { return max(x, y) },
		i64:  func(x, y int64) int64 { return max(x, y) },
	})
}

// Minimum takes the element-wise minimum with broadcasting.
func (e *Engine) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.binary(a, b, binKernels{
		name: "minimum",
		f32:  func(x, y float32) float32 { return min(x, y) },
		f64:  func(x, y float64) float64 { return min(x, y) },
		i32:  func(x, y int32) int32 { return min(x, y) },
		i64:  func(x, y int64) int64 { return min(x, y) },
	})
}

// binary dispatches one binary operation: dtype check, broadcast resolution,
// in-place fast path when the left operand holds the only buffer reference.
func (e *Engine) binary(a, b *tensor.RawTensor, k binKernels) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", k.name, a.DType(), b.DType()))
	}

	outShape, stretched, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", k.name, err))
	}

	// In-place when a already has the result's layout and owns its buffer.
	if !stretched && a.Shape().Equal(outShape) && a.IsUnique() {
		switch a.DType() {
		case tensor.Float32:
			if k.f32 != nil {
				mapBinary(a.AsFloat32(), a.AsFloat32(), b.AsFloat32(), k.f32, e.par)
				return a
			}
		case tensor.Float64:
			if k.f64 != nil {
				mapBinary(a.AsFloat64(), a.AsFloat64(), b.AsFloat64(), k.f64, e.par)
				return a
			}
		case tensor.Int32:
			if k.i32 != nil {
				mapBinary(a.AsInt32(), a.AsInt32(), b.AsInt32(), k.i32, e.par)
				return a
			}
		case tensor.Int64:
			if k.i64 != nil {
				mapBinary(a.AsInt64(), a.AsInt64(), b.AsInt64(), k.i64, e.par)
				return a
			}
		}
	}

	out := tensor.MustNewRaw(outShape, a.DType(), e.device)

	switch a.DType() {
	case tensor.Float32:
		if k.f32 == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.DType()))
		}
		applyBinary(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, stretched, k.f32, e.par)
	case tensor.Float64:
		if k.f64 == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.DType()))
		}
		applyBinary(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, stretched, k.f64, e.par)
	case tensor.Int32:
		if k.i32 == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.DType()))
		}
		applyBinary(out.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, stretched, k.i32, e.par)
	case tensor.Int64:
		if k.i64 == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.DType()))
		}
		applyBinary(out.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, stretched, k.i64, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.DType()))
	}

	return out
}

// applyBinary runs dst[i] = f(xs, ys) over the broadcast iteration space.
func applyBinary[T any](dst, xs, ys []T, xShape, yShape, outShape tensor.Shape, stretched bool, f func(T, T) T, cfg parallel.Config) {
	if !stretched {
		mapBinary(dst, xs, ys, f, cfg)
		return
	}

	outStrides := outShape.ComputeStrides()
	xStrides := broadcastStrides(xShape, outShape)
	yStrides := broadcastStrides(yShape, outShape)

	parallel.For(len(dst), func(i int) {
		dst[i] = f(xs[sourceIndex(i, outStrides, xStrides)], ys[sourceIndex(i, outStrides, yStrides)])
	}, cfg)
}

// mapBinary is the flat same-layout kernel.
func mapBinary[T any](dst, xs, ys []T, f func(T, T) T, cfg parallel.Config) {
	parallel.For(len(dst), func(i int) {
		dst[i] = f(xs[i], ys[i])
	}, cfg)
}
