package cpu

import "github.com/axon-ml/axon/internal/tensor"

// broadcastStrides maps inShape onto outShape: axes that are padded or of
// size 1 get stride 0 so the same element repeats along them.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// sourceIndex converts a flat output index into a flat source index using
// broadcast-adjusted source strides.
func sourceIndex(outIdx int, outStrides, srcStrides []int) int {
	flat := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flat += coord * srcStrides[i]
	}
	return flat
}
