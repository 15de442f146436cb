package cpu

import (
	"fmt"
	"math"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// ReLU computes max(x, 0) element-wise.
func (e *Engine) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "relu", func(v float64) float64 { return math.Max(v, 0) }, true)
}

// Sigmoid computes 1/(1+e^-x) element-wise.
func (e *Engine) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "sigmoid", func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) }, false)
}

// Tanh computes the hyperbolic tangent element-wise.
func (e *Engine) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return e.unary(x, "tanh", math.Tanh, false)
}

// Softmax normalizes along dim so the slice sums to 1.
// Inputs are shifted by the slice maximum before exponentiation, which keeps
// the exponentials bounded.
func (e *Engine) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}

	out := tensor.MustNewRaw(x.Shape(), x.DType(), e.device)

	switch x.DType() {
	case tensor.Float32:
		softmaxDim(out.AsFloat32(), x.AsFloat32(), x.Shape(), d, e.par)
	case tensor.Float64:
		softmaxDim(out.AsFloat64(), x.AsFloat64(), x.Shape(), d, e.par)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}

	return out
}

// softmaxDim iterates every (outer, inner) lane crossing dim and normalizes it.
func softmaxDim[T float32 | float64](dst, src []T, shape tensor.Shape, dim int, cfg parallel.Config) {
	n := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := len(src) / (n * inner)

	parallel.ForRows(outer*inner, n, func(lane int) {
		o := lane / inner
		in := lane % inner
		base := o*n*inner + in

		maxV := src[base]
		for k := 1; k < n; k++ {
			if v := src[base+k*inner]; v > maxV {
				maxV = v
			}
		}

		var sum T
		for k := 0; k < n; k++ {
			ev := T(math.Exp(float64(src[base+k*inner] - maxV)))
			dst[base+k*inner] = ev
			sum += ev
		}

		for k := 0; k < n; k++ {
			dst[base+k*inner] /= sum
		}
	}, cfg)
}
