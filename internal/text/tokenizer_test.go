package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextToWords(t *testing.T) {
	words := TextToWords("Hello, World! How's it going?", DefaultFilters, true, " ")
	assert.Equal(t, []string{"hello", "world", "how's", "it", "going"}, words)
}

func TestTextToWordsNoLower(t *testing.T) {
	words := TextToWords("Foo BAR", DefaultFilters, false, " ")
	assert.Equal(t, []string{"Foo", "BAR"}, words)
}

func TestTextToWordsCustomSplit(t *testing.T) {
	words := TextToWords("a|b||c", "", false, "|")
	assert.Equal(t, []string{"a", "b", "c"}, words)
}

func TestTokenizerFit(t *testing.T) {
	tok := NewTokenizer()
	tok.Fit([]string{
		"the cat sat on the mat",
		"the dog sat",
	})

	assert.Equal(t, 2, tok.DocumentCount())
	assert.Equal(t, 3, tok.WordCounts()["the"])
	assert.Equal(t, 2, tok.WordCounts()["sat"])
	assert.Equal(t, 1, tok.WordCounts()["dog"])

	// Indices are frequency-ranked, ties broken by first appearance.
	idx := tok.WordIndex()
	assert.Equal(t, 1, idx["the"])
	assert.Equal(t, 2, idx["sat"])
	assert.Equal(t, 3, idx["cat"])
	assert.Equal(t, 4, idx["on"])
	assert.Equal(t, 5, idx["mat"])
	assert.Equal(t, 6, idx["dog"])
}

func TestTokenizerFitAccumulates(t *testing.T) {
	tok := NewTokenizer()
	tok.Fit([]string{"a b"})
	tok.Fit([]string{"b b"})

	assert.Equal(t, 2, tok.DocumentCount())
	assert.Equal(t, 3, tok.WordCounts()["b"])
	assert.Equal(t, 1, tok.WordIndex()["b"])
}

func TestTextsToSequences(t *testing.T) {
	tok := NewTokenizer()
	tok.Fit([]string{"the cat sat on the mat"})

	seqs, err := tok.TextsToSequences([]string{"the mat", "a cat"})
	require.NoError(t, err)

	// "a" is unknown and dropped without an OOV token.
	assert.Equal(t, [][]int32{{1, 5}, {2}}, seqs)
}

func TestTextsToSequencesUnfitted(t *testing.T) {
	tok := NewTokenizer()
	_, err := tok.TextsToSequences([]string{"hello"})
	assert.Error(t, err)
}

func TestTokenizerOOVToken(t *testing.T) {
	tok := NewTokenizer(WithOOVToken("<unk>"))
	tok.Fit([]string{"the cat sat"})

	// The OOV token always takes index 1; real words start at 2.
	assert.Equal(t, 1, tok.WordIndex()["<unk>"])
	assert.Equal(t, 2, tok.WordIndex()["the"])

	seqs, err := tok.TextsToSequences([]string{"the dog sat"})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{2, 1, 4}}, seqs)
}

func TestTokenizerNumWordsCap(t *testing.T) {
	tok := NewTokenizer(WithNumWords(3))
	tok.Fit([]string{"the the the cat cat sat"})

	// Only indices below NumWords survive: "the"=1, "cat"=2; "sat"=3 is cut.
	seqs, err := tok.TextsToSequences([]string{"the cat sat"})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 2}}, seqs)
}

func TestTokenizerOptions(t *testing.T) {
	tok := NewTokenizer(
		WithFilters(""),
		WithLower(false),
		WithSplit("-"),
	)
	tok.Fit([]string{"Foo-Bar!"})

	// Ties rank by first appearance.
	assert.Equal(t, 1, tok.WordIndex()["Foo"])
	assert.Equal(t, 2, tok.WordIndex()["Bar!"])
}

func TestSequencesToTexts(t *testing.T) {
	tok := NewTokenizer()
	tok.Fit([]string{"the cat sat on the mat"})

	texts, err := tok.SequencesToTexts([][]int32{{1, 5}, {3, 99}})
	require.NoError(t, err)
	assert.Equal(t, []string{"the mat", "sat"}, texts)
}

func TestSequencesToTextsWithOOV(t *testing.T) {
	tok := NewTokenizer(WithOOVToken("<unk>"))
	tok.Fit([]string{"the cat"})

	texts, err := tok.SequencesToTexts([][]int32{{2, 99}})
	require.NoError(t, err)
	assert.Equal(t, []string{"the <unk>"}, texts)
}

func TestRoundtrip(t *testing.T) {
	tok := NewTokenizer()
	tok.Fit([]string{"deep learning with go"})

	seqs, err := tok.TextsToSequences([]string{"deep learning with go"})
	require.NoError(t, err)
	texts, err := tok.SequencesToTexts(seqs)
	require.NoError(t, err)
	assert.Equal(t, []string{"deep learning with go"}, texts)
}
