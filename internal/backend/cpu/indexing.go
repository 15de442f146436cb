package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// indexAt reads an index tensor element as int, accepting Int32 or Int64.
func indexAt(index *tensor.RawTensor, i int) int {
	switch index.DType() {
	case tensor.Int32:
		return int(index.AsInt32()[i])
	case tensor.Int64:
		return int(index.AsInt64()[i])
	default:
		panic(fmt.Sprintf("index tensor must be int32 or int64, got %s", index.DType()))
	}
}

// Gather selects elements along dim: out[..., j, ...] = x[..., index[..., j, ...], ...].
// The index tensor must have x's rank; its shape replaces x's along dim.
func (e *Engine) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("gather: %v", err))
	}
	if len(index.Shape()) != len(x.Shape()) {
		panic(fmt.Sprintf("gather: index rank %d != input rank %d", len(index.Shape()), len(x.Shape())))
	}
	for i := range x.Shape() {
		if i != d && index.Shape()[i] > x.Shape()[i] {
			panic(fmt.Sprintf("gather: index shape %v exceeds input shape %v at axis %d", index.Shape(), x.Shape(), i))
		}
	}

	out := tensor.MustNewRaw(index.Shape(), x.DType(), e.device)
	outStrides := index.Shape().ComputeStrides()
	srcStrides := x.Shape().ComputeStrides()
	dimSize := x.Shape()[d]

	moveElements(out, x, func(i int) int {
		// Walk output coordinates, swapping the dim coordinate for the
		// index tensor's value at this position.
		rem := i
		flat := 0
		for ax := range outStrides {
			coord := rem / outStrides[ax]
			rem %= outStrides[ax]
			if ax == d {
				coord = indexAt(index, i)
				if coord < 0 || coord >= dimSize {
					panic(fmt.Sprintf("gather: index %d out of range for axis %d (size %d)", coord, d, dimSize))
				}
			}
			flat += coord * srcStrides[ax]
		}
		return flat
	}, e.par)

	return out
}

// Where selects x where condition holds and y elsewhere. All three operands
// broadcast to a common shape; x and y must share a dtype.
func (e *Engine) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: dtype mismatch: %s vs %s", x.DType(), y.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, _, err = tensor.BroadcastShapes(outShape, condition.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	out := tensor.MustNewRaw(outShape, x.DType(), e.device)

	outStrides := outShape.ComputeStrides()
	cStrides := broadcastStrides(condition.Shape(), outShape)
	xStrides := broadcastStrides(x.Shape(), outShape)
	yStrides := broadcastStrides(y.Shape(), outShape)

	es := x.DType().Size()
	cond := condition.AsBool()
	dst, xs, ys := out.Data(), x.Data(), y.Data()

	parallel.For(out.NumElements(), func(i int) {
		var j int
		if cond[sourceIndex(i, outStrides, cStrides)] {
			j = sourceIndex(i, outStrides, xStrides) * es
			copy(dst[i*es:(i+1)*es], xs[j:j+es])
		} else {
			j = sourceIndex(i, outStrides, yStrides) * es
			copy(dst[i*es:(i+1)*es], ys[j:j+es])
		}
	}, e.par)

	return out
}

// OneHot encodes integer indices as one-hot vectors along a new trailing axis
// of size depth. Out-of-range indices produce all-zero rows.
func (e *Engine) OneHot(indices *tensor.RawTensor, depth int, dtype tensor.DataType) *tensor.RawTensor {
	if depth <= 0 {
		panic(fmt.Sprintf("one_hot: depth must be positive, got %d", depth))
	}

	outShape := append(indices.Shape().Clone(), depth)
	out := tensor.MustNewRaw(outShape, dtype, e.device)

	n := indices.NumElements()
	for i := 0; i < n; i++ {
		idx := indexAt(indices, i)
		if idx < 0 || idx >= depth {
			continue
		}
		setOne(out, i*depth+idx)
	}

	return out
}

// setOne writes the value 1 at a flat element position.
func setOne(t *tensor.RawTensor, i int) {
	switch t.DType() {
	case tensor.Float32:
		t.AsFloat32()[i] = 1
	case tensor.Float64:
		t.AsFloat64()[i] = 1
	case tensor.Float16:
		t.AsFloat16()[i] = oneHalf
	case tensor.Int32:
		t.AsInt32()[i] = 1
	case tensor.Int64:
		t.AsInt64()[i] = 1
	case tensor.Uint8:
		t.AsUint8()[i] = 1
	case tensor.Bool:
		t.AsBool()[i] = true
	default:
		panic(fmt.Sprintf("one_hot: unsupported dtype %s", t.DType()))
	}
}
