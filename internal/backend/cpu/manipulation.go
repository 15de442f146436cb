package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/parallel"
	"github.com/axon-ml/axon/internal/tensor"
)

// moveElements copies src elements into dst by index mapping. Pure data
// movement works on raw bytes, so every dtype is covered by one kernel.
func moveElements(dst, src *tensor.RawTensor, srcIndex func(i int) int, cfg parallel.Config) {
	es := dst.DType().Size()
	d, s := dst.Data(), src.Data()
	parallel.For(dst.NumElements(), func(i int) {
		j := srcIndex(i) * es
		copy(d[i*es:(i+1)*es], s[j:j+es])
	}, cfg)
}

// Reshape returns a tensor with the same elements in a new shape.
func (e *Engine) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if x.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v into %v", x.Shape(), newShape))
	}

	out := tensor.MustNewRaw(newShape, x.DType(), e.device)
	copy(out.Data(), x.Data()[:x.ByteSize()])
	return out
}

// Transpose permutes axes. With no axes given, the order is reversed.
func (e *Engine) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: %d axes for rank-%d tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: axis %d out of range for rank %d", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
		newShape[i] = shape[ax]
	}

	out := tensor.MustNewRaw(newShape, x.DType(), e.device)

	// Source stride of output axis i is the original stride of axes[i].
	srcStrides := shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = srcStrides[ax]
	}
	outStrides := newShape.ComputeStrides()

	moveElements(out, x, func(i int) int {
		return sourceIndex(i, outStrides, permStrides)
	}, e.par)

	return out
}

// Cat concatenates tensors along dim. All inputs must share dtype and every
// other dimension.
func (e *Engine) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors given")
	}

	first := tensors[0]
	d, err := first.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	total := 0
	for _, t := range tensors {
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch: %s vs %s", t.DType(), first.DType()))
		}
		if len(t.Shape()) != len(first.Shape()) {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", t.Shape(), first.Shape()))
		}
		for i := range t.Shape() {
			if i != d && t.Shape()[i] != first.Shape()[i] {
				panic(fmt.Sprintf("cat: shape mismatch at axis %d: %v vs %v", i, t.Shape(), first.Shape()))
			}
		}
		total += t.Shape()[d]
	}

	outShape := first.Shape().Clone()
	outShape[d] = total
	out := tensor.MustNewRaw(outShape, first.DType(), e.device)

	// Copy row blocks: each input contributes a contiguous block of
	// dimAt*inner elements per outer slice.
	es := first.DType().Size()
	inner := 1
	for i := d + 1; i < len(outShape); i++ {
		inner *= outShape[i]
	}
	outer := outShape.NumElements() / (total * inner)

	dst := out.Data()
	offsetRows := 0
	for _, t := range tensors {
		rows := t.Shape()[d]
		src := t.Data()
		for o := 0; o < outer; o++ {
			srcStart := o * rows * inner * es
			dstStart := (o*total + offsetRows) * inner * es
			copy(dst[dstStart:dstStart+rows*inner*es], src[srcStart:srcStart+rows*inner*es])
		}
		offsetRows += rows
	}

	return out
}

// Squeeze removes a dimension of size 1.
func (e *Engine) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	if x.Shape()[d] != 1 {
		panic(fmt.Sprintf("squeeze: axis %d has size %d, not 1", d, x.Shape()[d]))
	}

	newShape := make(tensor.Shape, 0, len(x.Shape())-1)
	for i, s := range x.Shape() {
		if i != d {
			newShape = append(newShape, s)
		}
	}
	return e.Reshape(x, newShape)
}

// Unsqueeze inserts a dimension of size 1 at dim.
func (e *Engine) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	rank := len(x.Shape())
	if dim < 0 {
		dim += rank + 1
	}
	if dim < 0 || dim > rank {
		panic(fmt.Sprintf("unsqueeze: axis %d out of range for rank %d", dim, rank))
	}

	newShape := make(tensor.Shape, 0, rank+1)
	newShape = append(newShape, x.Shape()[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, x.Shape()[dim:]...)
	return e.Reshape(x, newShape)
}

// Expand broadcasts x to the target shape, materializing the repeats.
func (e *Engine) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", x.Shape(), shape))
	}

	out := tensor.MustNewRaw(shape, x.DType(), e.device)
	outStrides := shape.ComputeStrides()
	srcStrides := broadcastStrides(x.Shape(), shape)

	moveElements(out, x, func(i int) int {
		return sourceIndex(i, outStrides, srcStrides)
	}, e.par)

	return out
}
