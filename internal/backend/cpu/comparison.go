package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// Greater returns a Bool tensor of a > b, with broadcasting.
func (e *Engine) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "greater", cmpGT)
}

// GreaterEqual returns a Bool tensor of a >= b, with broadcasting.
func (e *Engine) GreaterEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "greater_equal", cmpGE)
}

// Lower returns a Bool tensor of a < b, with broadcasting.
func (e *Engine) Lower(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "lower", cmpLT)
}

// LowerEqual returns a Bool tensor of a <= b, with broadcasting.
func (e *Engine) LowerEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "lower_equal", cmpLE)
}

// Equal returns a Bool tensor of a == b, with broadcasting.
func (e *Engine) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "equal", cmpEQ)
}

// NotEqual returns a Bool tensor of a != b, with broadcasting.
func (e *Engine) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.compare(a, b, "not_equal", cmpNE)
}

type cmpKind int

const (
	cmpGT cmpKind = iota
	cmpGE
	cmpLT
	cmpLE
	cmpEQ
	cmpNE
)

func (e *Engine) compare(a, b *tensor.RawTensor, name string, kind cmpKind) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	out := tensor.MustNewRaw(outShape, tensor.Bool, e.device)

	switch a.DType() {
	case tensor.Float32:
		applyCompare(out.AsBool(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, kind, e.par)
	case tensor.Float64:
		applyCompare(out.AsBool(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, kind, e.par)
	case tensor.Int32:
		applyCompare(out.AsBool(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, kind, e.par)
	case tensor.Int64:
		applyCompare(out.AsBool(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, kind, e.par)
	case tensor.Uint8:
		applyCompare(out.AsBool(), a.AsUint8(), b.AsUint8(), a.Shape(), b.Shape(), outShape, kind, e.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return out
}

func applyCompare[T int32 | int64 | float32 | float64 | uint8](dst []bool, xs, ys []T, xShape, yShape, outShape tensor.Shape, kind cmpKind, cfg parallel.Config) {
	cmp := func(x, y T) bool {
		switch kind {
		case cmpGT:
			return x > y
		case cmpGE:
			return x >= y
		case cmpLT:
			return x < y
		case cmpLE:
			return x <= y
		case cmpEQ:
			return x == y
		default:
			return x != y
		}
	}

	outStrides := outShape.ComputeStrides()
	xStrides := broadcastStrides(xShape, outShape)
	yStrides := broadcastStrides(yShape, outShape)

	parallel.For(len(dst), func(i int) {
		dst[i] = cmp(xs[sourceIndex(i, outStrides, xStrides)], ys[sourceIndex(i, outStrides, yStrides)])
	}, cfg)
}
