package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// Sum reduces the whole tensor to a scalar.
func (e *Engine) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.MustNewRaw(tensor.Shape{}, x.DType(), e.device)

	switch x.DType() {
	case tensor.Float32:
		out.AsFloat32()[0] = sumAll(x.AsFloat32())
	case tensor.Float64:
		out.AsFloat64()[0] = sumAll(x.AsFloat64())
	case tensor.Int32:
		out.AsInt32()[0] = sumAll(x.AsInt32())
	case tensor.Int64:
		out.AsInt64()[0] = sumAll(x.AsInt64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return out
}

func sumAll[T int32 | int64 | float32 | float64](xs []T) T {
	var acc T
	for _, v := range xs {
		acc += v
	}
	return acc
}

// SumDim sums along dim.
func (e *Engine) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return e.reduce(x, dim, keepDim, "sum_dim", reduceSum)
}

// MeanDim averages along dim. Float tensors only.
func (e *Engine) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	if !x.DType().IsFloat() {
		panic(fmt.Sprintf("mean_dim: unsupported dtype %s", x.DType()))
	}
	return e.reduce(x, dim, keepDim, "mean_dim", reduceMean)
}

// MaxDim takes the maximum along dim.
func (e *Engine) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return e.reduce(x, dim, keepDim, "max_dim", reduceMax)
}

// MinDim takes the minimum along dim.
func (e *Engine) MinDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return e.reduce(x, dim, keepDim, "min_dim", reduceMin)
}

// ProdDim multiplies along dim.
func (e *Engine) ProdDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return e.reduce(x, dim, keepDim, "prod_dim", reduceProd)
}

// Argmax returns Int64 indices of the maxima along dim. The reduced axis is
// removed from the result shape.
func (e *Engine) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return e.argReduce(x, dim, "argmax", true)
}

// Argmin returns Int64 indices of the minima along dim.
func (e *Engine) Argmin(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return e.argReduce(x, dim, "argmin", false)
}

type reduceKind int

const (
	reduceSum reduceKind = iota
	reduceMean
	reduceMax
	reduceMin
	reduceProd
)

// reducedShape drops or pins dim to 1. Reducing a 1-D tensor without keepDim
// yields a scalar.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

func (e *Engine) reduce(x *tensor.RawTensor, dim int, keepDim bool, name string, kind reduceKind) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	out := tensor.MustNewRaw(reducedShape(x.Shape(), d, keepDim), x.DType(), e.device)
	n, inner := laneGeometry(x.Shape(), d)

	switch x.DType() {
	case tensor.Float32:
		reduceLanes(out.AsFloat32(), x.AsFloat32(), n, inner, kind, e.par)
	case tensor.Float64:
		reduceLanes(out.AsFloat64(), x.AsFloat64(), n, inner, kind, e.par)
	case tensor.Int32:
		reduceLanes(out.AsInt32(), x.AsInt32(), n, inner, kind, e.par)
	case tensor.Int64:
		reduceLanes(out.AsInt64(), x.AsInt64(), n, inner, kind, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return out
}

// laneGeometry splits a shape at dim into (reduced length, inner stride).
func laneGeometry(shape tensor.Shape, dim int) (n, inner int) {
	n = shape[dim]
	inner = 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return n, inner
}

// reduceLanes folds every lane crossing the reduced axis into one element.
// Lane l covers src[o*n*inner + k*inner + in] for k in [0, n), where
// o = l / inner and in = l % inner.
func reduceLanes[T int32 | int64 | float32 | float64](dst, src []T, n, inner int, kind reduceKind, cfg parallel.Config) {
	parallel.ForRows(len(dst), n, func(lane int) {
		o := lane / inner
		in := lane % inner
		base := o*n*inner + in

		acc := src[base]
		for k := 1; k < n; k++ {
			v := src[base+k*inner]
			switch kind {
			case reduceSum, reduceMean:
				acc += v
			case reduceMax:
				acc = max(acc, v)
			case reduceMin:
				acc = min(acc, v)
			case reduceProd:
				acc *= v
			}
		}
		if kind == reduceMean {
			acc /= T(n)
		}
		dst[lane] = acc
	}, cfg)
}

func (e *Engine) argReduce(x *tensor.RawTensor, dim int, name string, wantMax bool) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	out := tensor.MustNewRaw(reducedShape(x.Shape(), d, false), tensor.Int64, e.device)
	n, inner := laneGeometry(x.Shape(), d)

	switch x.DType() {
	case tensor.Float32:
		argLanes(out.AsInt64(), x.AsFloat32(), n, inner, wantMax, e.par)
	case tensor.Float64:
		argLanes(out.AsInt64(), x.AsFloat64(), n, inner, wantMax, e.par)
	case tensor.Int32:
		argLanes(out.AsInt64(), x.AsInt32(), n, inner, wantMax, e.par)
	case tensor.Int64:
		argLanes(out.AsInt64(), x.AsInt64(), n, inner, wantMax, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return out
}

func argLanes[T int32 | int64 | float32 | float64](dst []int64, src []T, n, inner int, wantMax bool, cfg parallel.Config) {
	parallel.ForRows(len(dst), n, func(lane int) {
		o := lane / inner
		in := lane % inner
		base := o*n*inner + in

		best := src[base]
		bestIdx := int64(0)
		for k := 1; k < n; k++ {
			v := src[base+k*inner]
			if (wantMax && v > best) || (!wantMax && v < best) {
				best = v
				bestIdx = int64(k)
			}
		}
		dst[lane] = bestIdx
	}, cfg)
}
