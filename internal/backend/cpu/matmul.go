package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/axon-ml/axon/internal/tensor"
)

// MatMul multiplies two 2-D tensors: [M, K] @ [K, N] -> [M, N].
// Float tensors go through gonum's BLAS GEMM.
func (e *Engine) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: requires 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	out := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), e.device)

	gemm(out, a, b, m, k, n, 0, 0, 0)
	return out
}

// BatchMatMul multiplies stacks of matrices.
// 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
// 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
func (e *Engine) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != len(bShape) || (len(aShape) != 3 && len(aShape) != 4) {
		panic(fmt.Sprintf("batchmatmul: requires matching 3D or 4D tensors, got %v and %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("batchmatmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	nd := len(aShape)
	batch := 1
	for i := 0; i < nd-2; i++ {
		if aShape[i] != bShape[i] {
			panic(fmt.Sprintf("batchmatmul: batch dimensions mismatch: %v vs %v", aShape, bShape))
		}
		batch *= aShape[i]
	}

	m, k, n := aShape[nd-2], aShape[nd-1], bShape[nd-1]
	if k != bShape[nd-2] {
		panic(fmt.Sprintf("batchmatmul: inner dimensions mismatch: %v @ %v", aShape, bShape))
	}

	outShape := aShape.Clone()
	outShape[nd-1] = n
	out := tensor.MustNewRaw(outShape, a.DType(), e.device)

	for i := 0; i < batch; i++ {
		gemm(out, a, b, m, k, n, i*m*k, i*k*n, i*m*n)
	}
	return out
}

// gemm runs C = A @ B on one matrix slice of each operand, addressed by
// element offsets into the flat buffers.
func gemm(c, a, b *tensor.RawTensor, m, k, n, aOff, bOff, cOff int) {
	switch a.DType() {
	case tensor.Float32:
		blas32.Implementation().Sgemm(blas.NoTrans, blas.NoTrans,
			m, n, k,
			1, a.AsFloat32()[aOff:aOff+m*k], k,
			b.AsFloat32()[bOff:bOff+k*n], n,
			0, c.AsFloat32()[cOff:cOff+m*n], n)
	case tensor.Float64:
		blas64.Implementation().Dgemm(blas.NoTrans, blas.NoTrans,
			m, n, k,
			1, a.AsFloat64()[aOff:aOff+m*k], k,
			b.AsFloat64()[bOff:bOff+k*n], n,
			0, c.AsFloat64()[cOff:cOff+m*n], n)
	case tensor.Int32:
		gemmNaive(c.AsInt32()[cOff:], a.AsInt32()[aOff:], b.AsInt32()[bOff:], m, k, n)
	case tensor.Int64:
		gemmNaive(c.AsInt64()[cOff:], a.AsInt64()[aOff:], b.AsInt64()[bOff:], m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
}

// gemmNaive covers the integer dtypes BLAS does not.
func gemmNaive[T int32 | int64](c, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var acc T
			for p := 0; p < k; p++ {
				acc += a[i*k+p] * b[p*n+j]
			}
			c[i*n+j] = acc
		}
	}
}
