package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-ml/axon/internal/tensor"
)

func TestPadSequencesPre(t *testing.T) {
	out, err := PadSequences([][]int32{{1, 2, 3}, {4}}, 4, "", "", 0)
	require.NoError(t, err)

	assert.True(t, out.Shape().Equal(tensor.Shape{2, 4}))
	assert.Equal(t, tensor.Int32, out.DType())
	assert.Equal(t, []int32{0, 1, 2, 3, 0, 0, 0, 4}, out.AsInt32())
}

func TestPadSequencesPost(t *testing.T) {
	out, err := PadSequences([][]int32{{1, 2, 3}, {4}}, 4, Post, Post, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 0, 4, 0, 0, 0}, out.AsInt32())
}

func TestPadSequencesTruncate(t *testing.T) {
	seqs := [][]int32{{1, 2, 3, 4, 5}}

	// Pre-truncation keeps the tail.
	out, err := PadSequences(seqs, 3, Pre, Pre, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4, 5}, out.AsInt32())

	// Post-truncation keeps the head.
	out, err = PadSequences(seqs, 3, Pre, Post, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, out.AsInt32())
}

func TestPadSequencesLongestByDefault(t *testing.T) {
	out, err := PadSequences([][]int32{{1}, {2, 3}, {4, 5, 6}}, 0, "", "", 0)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 3}))
	assert.Equal(t, []int32{0, 0, 1, 0, 2, 3, 4, 5, 6}, out.AsInt32())
}

func TestPadSequencesFillValue(t *testing.T) {
	out, err := PadSequences([][]int32{{7}}, 3, "", "", -1)
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, -1, 7}, out.AsInt32())
}

func TestPadSequencesInvalidSide(t *testing.T) {
	_, err := PadSequences([][]int32{{1}}, 2, "middle", "", 0)
	assert.Error(t, err)
	_, err = PadSequences([][]int32{{1}}, 2, "", "middle", 0)
	assert.Error(t, err)
}

func TestHashingTrickRange(t *testing.T) {
	const n = 100
	ids := OneHotHash("the quick brown fox jumps over the lazy dog", n)
	require.Len(t, ids, 9)
	for _, id := range ids {
		assert.GreaterOrEqual(t, id, int32(1))
		assert.Less(t, id, int32(n))
	}
}

func TestHashingTrickDeterministic(t *testing.T) {
	a := OneHotHash("same words same ids", 1000)
	b := OneHotHash("same words same ids", 1000)
	assert.Equal(t, a, b)

	// Identical words collide with themselves.
	assert.Equal(t, a[0], a[2])
}

func TestNewBPEUnknownEncoding(t *testing.T) {
	_, err := NewBPE("not-a-real-encoding")
	assert.Error(t, err)
}

func TestBPESizesKnownEncodingsOnly(t *testing.T) {
	known := &BPE{name: encodingP50kBase}
	assert.Equal(t, 50257, known.VocabSize())
	assert.Equal(t, int32(50256), known.EOSToken())

	// An encoding we cannot size reports 0, never a made-up count.
	other := &BPE{name: "o200k_base"}
	assert.Equal(t, 0, other.VocabSize())
	assert.Equal(t, int32(-1), other.EOSToken())
}
