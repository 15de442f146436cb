package cpu

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// RandomUniform draws from U[0, 1) into a fresh tensor.
func (e *Engine) RandomUniform(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out := tensor.MustNewRaw(shape, dtype, e.device)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch dtype {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = e.rng.Float32()
		}
	case tensor.Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = e.rng.Float64()
		}
	default:
		panic(fmt.Sprintf("random_uniform: unsupported dtype %s", dtype))
	}

	return out
}

// RandomNormal draws from N(0, 1) into a fresh tensor.
func (e *Engine) RandomNormal(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out := tensor.MustNewRaw(shape, dtype, e.device)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch dtype {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = float32(e.rng.NormFloat64())
		}
	case tensor.Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = e.rng.NormFloat64()
		}
	default:
		panic(fmt.Sprintf("random_normal: unsupported dtype %s", dtype))
	}

	return out
}
