package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// And computes the element-wise logical AND of two Bool tensors.
func (e *Engine) And(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.logical(a, b, "and", func(x, y bool) bool { return x && y })
}

// Or computes the element-wise logical OR of two Bool tensors.
func (e *Engine) Or(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.logical(a, b, "or", func(x, y bool) bool { return x || y })
}

// Not computes the element-wise logical NOT of a Bool tensor.
func (e *Engine) Not(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Bool {
		panic(fmt.Sprintf("not: requires bool tensor, got %s", x.DType()))
	}
	out := tensor.MustNewRaw(x.Shape(), tensor.Bool, e.device)
	mapUnary(out.AsBool(), x.AsBool(), func(v bool) bool { return !v }, e.par)
	return out
}

func (e *Engine) logical(a, b *tensor.RawTensor, name string, f func(x, y bool) bool) *tensor.RawTensor {
	if a.DType() != tensor.Bool || b.DType() != tensor.Bool {
		panic(fmt.Sprintf("%s: requires bool tensors, got %s and %s", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	out := tensor.MustNewRaw(outShape, tensor.Bool, e.device)
	outStrides := outShape.ComputeStrides()
	xStrides := broadcastStrides(a.Shape(), outShape)
	yStrides := broadcastStrides(b.Shape(), outShape)

	dst, xs, ys := out.AsBool(), a.AsBool(), b.AsBool()
	parallel.For(len(dst), func(i int) {
		dst[i] = f(xs[sourceIndex(i, outStrides, xStrides)], ys[sourceIndex(i, outStrides, yStrides)])
	}, e.par)

	return out
}
