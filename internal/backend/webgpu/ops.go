//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/axon-ml/axon/internal/tensor"
)

// Compile-time check that Engine implements the full vocabulary.
var _ tensor.Backend = (*Engine)(nil)

func unsupported(op string) string {
	return "webgpu: " + op + " is not supported on gpu, use the cpu engine"
}

// Element-wise binary operations. The GPU engine requires operands of equal
// shape; broadcasting stays a cpu engine feature.

func (e *Engine) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "add", binaryShaderWGSL("a[idx] + b[idx]"))
}

func (e *Engine) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "sub", binaryShaderWGSL("a[idx] - b[idx]"))
}

func (e *Engine) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "mul", binaryShaderWGSL("a[idx] * b[idx]"))
}

func (e *Engine) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "div", binaryShaderWGSL("a[idx] / b[idx]"))
}

func (e *Engine) Pow(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "pow", binaryShaderWGSL("pow(a[idx], b[idx])"))
}

func (e *Engine) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "maximum", binaryShaderWGSL("max(a[idx], b[idx])"))
}

func (e *Engine) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustBinary(a, b, "minimum", binaryShaderWGSL("min(a[idx], b[idx])"))
}

func (e *Engine) mustBinary(a, b *tensor.RawTensor, name, code string) *tensor.RawTensor {
	r, err := e.runBinary(a, b, name, code)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

// Scalar operations.

func (e *Engine) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.mustScalar(x, s, "add_scalar", scalarShaderWGSL("x + params.scalar"))
}

func (e *Engine) SubScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.mustScalar(x, s, "sub_scalar", scalarShaderWGSL("x - params.scalar"))
}

func (e *Engine) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.mustScalar(x, s, "mul_scalar", scalarShaderWGSL("x * params.scalar"))
}

func (e *Engine) DivScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.mustScalar(x, s, "div_scalar", scalarShaderWGSL("x / params.scalar"))
}

func (e *Engine) PowScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return e.mustScalar(x, s, "pow_scalar", scalarShaderWGSL("pow(x, params.scalar)"))
}

func (e *Engine) mustScalar(x *tensor.RawTensor, s float64, name, code string) *tensor.RawTensor {
	r, err := e.runUnary(x, name, code, float32(s))
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

// Math operations.

func (e *Engine) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "neg", unaryShaderWGSL("-x"))
}

func (e *Engine) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "exp", unaryShaderWGSL("exp(x)"))
}

func (e *Engine) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "log", unaryShaderWGSL("log(x)"))
}

func (e *Engine) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "sqrt", unaryShaderWGSL("sqrt(x)"))
}

func (e *Engine) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "abs", unaryShaderWGSL("abs(x)"))
}

func (e *Engine) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "sign", unaryShaderWGSL("sign(x)"))
}

func (e *Engine) Round(x *tensor.RawTensor) *tensor.RawTensor {
	// WGSL round() rounds half to even; round half away from zero instead.
	return e.mustUnary(x, "round", unaryShaderWGSL("sign(x) * floor(abs(x) + 0.5)"))
}

func (e *Engine) Clip(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	r, err := e.runUnary(x, "clip", clipShader, float32(lo), float32(hi))
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) mustUnary(x *tensor.RawTensor, name, code string) *tensor.RawTensor {
	r, err := e.runUnary(x, name, code)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

// Activation functions.

func (e *Engine) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "relu", unaryShaderWGSL("max(x, 0.0)"))
}

func (e *Engine) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "sigmoid", unaryShaderWGSL("1.0 / (1.0 + exp(-x))"))
}

func (e *Engine) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return e.mustUnary(x, "tanh", unaryShaderWGSL("tanh(x)"))
}

// Softmax normalizes lanes of the trailing dimension. The GPU kernel walks
// contiguous lanes, so only the last axis is supported.
func (e *Engine) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	r, err := e.runSoftmax(x, dim)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runSoftmax(x *tensor.RawTensor, dim int) (*tensor.RawTensor, error) {
	if err := requireFloat32("softmax", x); err != nil {
		return nil, err
	}
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	if d != len(x.Shape())-1 {
		return nil, fmt.Errorf("softmax: gpu engine supports the last dimension only, got dim %d of %v", dim, x.Shape())
	}

	laneSize := x.Shape()[d]
	lanes := x.NumElements() / laneSize
	params := lanesParams(lanes, laneSize)

	out, err := e.dispatch("softmax", softmaxShader,
		[][]byte{x.Data()}, params,
		uint64(x.ByteSize()), groups1D(lanes), 1, 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(x.Shape(), out)
}

// Matrix operations.

func (e *Engine) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	r, err := e.runMatMul(a, b)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runMatMul(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := requireFloat32("matmul", a, b); err != nil {
		return nil, err
	}
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, fmt.Errorf("matmul: requires 2D tensors, got %v and %v", a.Shape(), b.Shape())
	}
	m, k, n := a.Shape()[0], a.Shape()[1], b.Shape()[1]
	if b.Shape()[0] != k {
		return nil, fmt.Errorf("matmul: shape mismatch: %v @ %v", a.Shape(), b.Shape())
	}

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(m))
	binary.LittleEndian.PutUint32(params[4:8], uint32(k))
	binary.LittleEndian.PutUint32(params[8:12], uint32(n))

	out, err := e.dispatch("matmul", matmulShader,
		[][]byte{a.Data(), b.Data()}, params,
		uint64(m*n*4), groups2D(n), groups2D(m), 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(tensor.Shape{m, n}, out)
}

// BatchMatMul multiplies stacks of matrices. 4D inputs are treated as a
// flat batch of their two leading dimensions.
func (e *Engine) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	r, err := e.runBatchMatMul(a, b)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runBatchMatMul(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := requireFloat32("batchmatmul", a, b); err != nil {
		return nil, err
	}
	sa, sb := a.Shape(), b.Shape()
	if len(sa) != len(sb) || (len(sa) != 3 && len(sa) != 4) {
		return nil, fmt.Errorf("batchmatmul: requires matching 3D or 4D tensors, got %v and %v", sa, sb)
	}

	batch := sa[0]
	outShape := tensor.Shape{sa[0], sa[1], sb[2]}
	m, k, n := sa[1], sa[2], sb[2]
	if len(sa) == 4 {
		if sa[1] != sb[1] {
			return nil, fmt.Errorf("batchmatmul: batch mismatch: %v vs %v", sa, sb)
		}
		batch = sa[0] * sa[1]
		m, k, n = sa[2], sa[3], sb[3]
		outShape = tensor.Shape{sa[0], sa[1], m, n}
	}
	if sa[0] != sb[0] || sb[len(sb)-2] != k {
		return nil, fmt.Errorf("batchmatmul: shape mismatch: %v @ %v", sa, sb)
	}

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(batch))
	binary.LittleEndian.PutUint32(params[4:8], uint32(m))
	binary.LittleEndian.PutUint32(params[8:12], uint32(k))
	binary.LittleEndian.PutUint32(params[12:16], uint32(n))

	out, err := e.dispatch("batchmatmul", batchMatMulShader,
		[][]byte{a.Data(), b.Data()}, params,
		uint64(batch*m*n*4),
		uint32((n+7)/8), uint32((m+7)/8), uint32(batch))
	if err != nil {
		return nil, err
	}
	return e.newResult(outShape, out)
}

// Comparison operations run as float kernels producing 0.0/1.0 and are
// narrowed to a bool tensor on readback.

func (e *Engine) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "greater", "select(0.0, 1.0, a[idx] > b[idx])")
}

func (e *Engine) GreaterEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "greater_equal", "select(0.0, 1.0, a[idx] >= b[idx])")
}

func (e *Engine) Lower(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "lower", "select(0.0, 1.0, a[idx] < b[idx])")
}

func (e *Engine) LowerEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "lower_equal", "select(0.0, 1.0, a[idx] <= b[idx])")
}

func (e *Engine) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "equal", "select(0.0, 1.0, a[idx] == b[idx])")
}

func (e *Engine) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return e.mustCompare(a, b, "not_equal", "select(0.0, 1.0, a[idx] != b[idx])")
}

func (e *Engine) mustCompare(a, b *tensor.RawTensor, name, expr string) *tensor.RawTensor {
	f, err := e.runBinary(a, b, name, binaryShaderWGSL(expr))
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	mask := tensor.MustNewRaw(f.Shape(), tensor.Bool, tensor.WebGPU)
	src := f.AsFloat32()
	dst := mask.AsBool()
	for i, v := range src {
		dst[i] = v != 0
	}
	return mask
}

// Boolean operations work on bool tensors, which have no float32 layout.

func (e *Engine) And(_, _ *tensor.RawTensor) *tensor.RawTensor {
	panic(unsupported("And"))
}

func (e *Engine) Or(_, _ *tensor.RawTensor) *tensor.RawTensor {
	panic(unsupported("Or"))
}

func (e *Engine) Not(_ *tensor.RawTensor) *tensor.RawTensor {
	panic(unsupported("Not"))
}

// Reduction operations.

// Sum reduces the whole tensor to a scalar: one tree-reduction pass leaves
// a partial sum per workgroup, the partials are folded on the host.
func (e *Engine) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	r, err := e.runSum(x)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runSum(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := requireFloat32("sum", x); err != nil {
		return nil, err
	}

	n := x.NumElements()
	groups := groups1D(n)
	out, err := e.dispatch("sum_reduce", sumReduceShader,
		[][]byte{x.Data()}, sizeParams(n),
		uint64(groups)*4, groups, 1, 1)
	if err != nil {
		return nil, err
	}

	var total float64
	for i := uint32(0); i < groups; i++ {
		total += float64(math.Float32frombits(binary.LittleEndian.Uint32(out[i*4 : i*4+4])))
	}
	return tensor.ScalarRaw(total, tensor.Float32, tensor.WebGPU), nil
}

// SumDim reduces lanes of the trailing dimension. Like Softmax, the GPU
// kernel only walks contiguous lanes.
func (e *Engine) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	r, err := e.runSumDim(x, dim, keepDim)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runSumDim(x *tensor.RawTensor, dim int, keepDim bool) (*tensor.RawTensor, error) {
	if err := requireFloat32("sumdim", x); err != nil {
		return nil, err
	}
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		return nil, fmt.Errorf("sumdim: %w", err)
	}
	if d != len(x.Shape())-1 {
		return nil, fmt.Errorf("sumdim: gpu engine supports the last dimension only, got dim %d of %v", dim, x.Shape())
	}

	laneSize := x.Shape()[d]
	lanes := x.NumElements() / laneSize

	out, err := e.dispatch("sum_lanes", sumLanesShader,
		[][]byte{x.Data()}, lanesParams(lanes, laneSize),
		uint64(lanes)*4, groups1D(lanes), 1, 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(reducedShape(x.Shape(), d, keepDim), out)
}

func (e *Engine) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic("webgpu: meandim: " + err.Error())
	}
	sum := e.SumDim(x, dim, keepDim)
	return e.DivScalar(sum, float64(x.Shape()[d]))
}

func (e *Engine) MaxDim(_ *tensor.RawTensor, _ int, _ bool) *tensor.RawTensor {
	panic(unsupported("MaxDim"))
}

func (e *Engine) MinDim(_ *tensor.RawTensor, _ int, _ bool) *tensor.RawTensor {
	panic(unsupported("MinDim"))
}

func (e *Engine) ProdDim(_ *tensor.RawTensor, _ int, _ bool) *tensor.RawTensor {
	panic(unsupported("ProdDim"))
}

func (e *Engine) Argmax(_ *tensor.RawTensor, _ int) *tensor.RawTensor {
	panic(unsupported("Argmax"))
}

func (e *Engine) Argmin(_ *tensor.RawTensor, _ int) *tensor.RawTensor {
	panic(unsupported("Argmin"))
}

// Shape operations that only relabel dimensions run host-side.

func (e *Engine) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic("webgpu: reshape: " + err.Error())
	}
	if newShape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("webgpu: reshape: cannot reshape %v into %v", x.Shape(), newShape))
	}
	result := tensor.MustNewRaw(newShape, x.DType(), tensor.WebGPU)
	copy(result.Data(), x.Data())
	return result
}

func (e *Engine) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	r, err := e.runTranspose(x, axes)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return r
}

func (e *Engine) runTranspose(x *tensor.RawTensor, axes []int) (*tensor.RawTensor, error) {
	if err := requireFloat32("transpose", x); err != nil {
		return nil, err
	}
	if len(x.Shape()) != 2 {
		return nil, fmt.Errorf("transpose: gpu engine supports 2D tensors only, got %v", x.Shape())
	}
	if len(axes) != 0 && !(len(axes) == 2 && axes[0] == 1 && axes[1] == 0) {
		return nil, fmt.Errorf("transpose: unsupported axes %v for 2D tensor", axes)
	}

	rows, cols := x.Shape()[0], x.Shape()[1]
	out, err := e.dispatch("transpose", transposeShader,
		[][]byte{x.Data()}, lanesParams(rows, cols),
		uint64(x.ByteSize()), groups2D(cols), groups2D(rows), 1)
	if err != nil {
		return nil, err
	}
	return e.newResult(tensor.Shape{cols, rows}, out)
}

func (e *Engine) Cat(_ []*tensor.RawTensor, _ int) *tensor.RawTensor {
	panic(unsupported("Cat"))
}

func (e *Engine) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	d, err := x.Shape().NormalizeDim(dim)
	if err != nil {
		panic("webgpu: squeeze: " + err.Error())
	}
	if x.Shape()[d] != 1 {
		panic(fmt.Sprintf("webgpu: squeeze: dimension %d of %v is not 1", dim, x.Shape()))
	}
	newShape := append(tensor.Shape{}, x.Shape()[:d]...)
	newShape = append(newShape, x.Shape()[d+1:]...)
	return e.Reshape(x, newShape)
}

func (e *Engine) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if dim < 0 {
		dim += len(x.Shape()) + 1
	}
	if dim < 0 || dim > len(x.Shape()) {
		panic(fmt.Sprintf("webgpu: unsqueeze: dimension %d out of range for %v", dim, x.Shape()))
	}
	newShape := append(tensor.Shape{}, x.Shape()[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, x.Shape()[dim:]...)
	return e.Reshape(x, newShape)
}

func (e *Engine) Expand(_ *tensor.RawTensor, _ tensor.Shape) *tensor.RawTensor {
	panic(unsupported("Expand"))
}

// Indexing operations.

func (e *Engine) Gather(_ *tensor.RawTensor, _ int, _ *tensor.RawTensor) *tensor.RawTensor {
	panic(unsupported("Gather"))
}

func (e *Engine) Where(_, _, _ *tensor.RawTensor) *tensor.RawTensor {
	panic(unsupported("Where"))
}

func (e *Engine) OneHot(_ *tensor.RawTensor, _ int, _ tensor.DataType) *tensor.RawTensor {
	panic(unsupported("OneHot"))
}

// Random sources draw host-side; the GPU has no portable stateful RNG.

func (e *Engine) RandomUniform(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return e.randomFill(shape, dtype, "randomuniform", func() float64 { return e.rng.Float64() })
}

func (e *Engine) RandomNormal(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	return e.randomFill(shape, dtype, "randomnormal", func() float64 { return e.rng.NormFloat64() })
}

func (e *Engine) randomFill(shape tensor.Shape, dtype tensor.DataType, op string, draw func() float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(shape, dtype, tensor.WebGPU)
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	switch dtype {
	case tensor.Float32:
		for i, xs := 0, result.AsFloat32(); i < len(xs); i++ {
			xs[i] = float32(draw())
		}
	case tensor.Float64:
		for i, xs := 0, result.AsFloat64(); i < len(xs); i++ {
			xs[i] = draw()
		}
	default:
		panic(fmt.Sprintf("webgpu: %s: unsupported dtype %s", op, dtype))
	}
	return result
}

func (e *Engine) Cast(_ *tensor.RawTensor, _ tensor.DataType) *tensor.RawTensor {
	panic(unsupported("Cast"))
}

// lanesParams packs a (lanes, lane_size) uniform block.
func lanesParams(lanes, laneSize int) []byte {
	p := make([]byte, 16)
	binary.LittleEndian.PutUint32(p[0:4], uint32(lanes))
	binary.LittleEndian.PutUint32(p[4:8], uint32(laneSize))
	return p
}

// reducedShape drops or keeps the reduced dimension of shape.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, s := range shape {
		if i == dim {
			if keepDim {
				out = append(out, 1)
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
