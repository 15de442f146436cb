// Package text implements text preprocessing: word-level tokenization,
// hashing-based one-hot encoding, byte-pair encoding and sequence padding.
package text

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultFilters is the punctuation stripped from texts before splitting.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Tokenizer builds a word vocabulary from a corpus and converts texts to
// integer sequences. Word indices start at 1; 0 is reserved for padding.
type Tokenizer struct {
	// NumWords caps the vocabulary to the NumWords-1 most frequent words
	// when positive. Less frequent words are dropped from sequences.
	NumWords int
	// Filters lists characters removed before splitting.
	Filters string
	// Lower converts texts to lower case before splitting.
	Lower bool
	// Split is the word separator.
	Split string
	// OOVToken, when non-empty, replaces out-of-vocabulary words instead
	// of dropping them. It is assigned index 1 during Fit.
	OOVToken string

	wordCounts map[string]int
	firstSeen  map[string]int
	wordIndex  map[string]int
	indexWord  map[int]string
	docCount   int
	seen       int
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithNumWords caps the vocabulary size used by TextsToSequences.
func WithNumWords(n int) TokenizerOption {
	return func(t *Tokenizer) { t.NumWords = n }
}

// WithFilters overrides the stripped character set.
func WithFilters(filters string) TokenizerOption {
	return func(t *Tokenizer) { t.Filters = filters }
}

// WithLower controls lower-casing.
func WithLower(lower bool) TokenizerOption {
	return func(t *Tokenizer) { t.Lower = lower }
}

// WithSplit overrides the word separator.
func WithSplit(split string) TokenizerOption {
	return func(t *Tokenizer) { t.Split = split }
}

// WithOOVToken sets the out-of-vocabulary replacement token.
func WithOOVToken(token string) TokenizerOption {
	return func(t *Tokenizer) { t.OOVToken = token }
}

// NewTokenizer creates a word-level tokenizer with the default filters,
// lower-casing and space splitting.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		Filters:    DefaultFilters,
		Lower:      true,
		Split:      " ",
		wordCounts: make(map[string]int),
		firstSeen:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TextToWords normalizes one text into its word sequence: filter characters
// are replaced by the separator, the text is optionally lower-cased and
// split, empty tokens are dropped.
func TextToWords(text, filters string, lower bool, split string) []string {
	if lower {
		text = strings.ToLower(text)
	}
	if filters != "" {
		replacer := make([]string, 0, len(filters)*2)
		for _, c := range filters {
			replacer = append(replacer, string(c), split)
		}
		text = strings.NewReplacer(replacer...).Replace(text)
	}
	parts := strings.Split(text, split)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

func (t *Tokenizer) words(text string) []string {
	return TextToWords(text, t.Filters, t.Lower, t.Split)
}

// Fit accumulates word statistics from texts and rebuilds the vocabulary.
// Words are ranked by frequency, ties broken by order of first appearance.
// May be called repeatedly; later calls extend the counts.
func (t *Tokenizer) Fit(texts []string) {
	for _, text := range texts {
		t.docCount++
		for _, w := range t.words(text) {
			if _, ok := t.wordCounts[w]; !ok {
				t.firstSeen[w] = t.seen
				t.seen++
			}
			t.wordCounts[w]++
		}
	}
	t.rebuildIndex()
}

func (t *Tokenizer) rebuildIndex() {
	words := make([]string, 0, len(t.wordCounts))
	for w := range t.wordCounts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		ci, cj := t.wordCounts[words[i]], t.wordCounts[words[j]]
		if ci != cj {
			return ci > cj
		}
		return t.firstSeen[words[i]] < t.firstSeen[words[j]]
	})

	t.wordIndex = make(map[string]int, len(words)+1)
	t.indexWord = make(map[int]string, len(words)+1)
	next := 1
	if t.OOVToken != "" {
		t.wordIndex[t.OOVToken] = next
		t.indexWord[next] = t.OOVToken
		next++
	}
	for _, w := range words {
		if w == t.OOVToken {
			continue
		}
		t.wordIndex[w] = next
		t.indexWord[next] = w
		next++
	}
}

// WordIndex returns the word-to-index mapping built by Fit. The returned
// map is shared; callers must not mutate it.
func (t *Tokenizer) WordIndex() map[string]int {
	return t.wordIndex
}

// WordCounts returns the accumulated word frequencies.
func (t *Tokenizer) WordCounts() map[string]int {
	return t.wordCounts
}

// DocumentCount returns how many texts Fit has seen.
func (t *Tokenizer) DocumentCount() int {
	return t.docCount
}

// TextsToSequences converts texts into index sequences. Words outside the
// NumWords cap or missing from the vocabulary map to the OOV index when an
// OOV token is set and are dropped otherwise.
func (t *Tokenizer) TextsToSequences(texts []string) ([][]int32, error) {
	if t.wordIndex == nil {
		return nil, fmt.Errorf("text: tokenizer is not fitted, call Fit first")
	}
	oov := 0
	if t.OOVToken != "" {
		oov = t.wordIndex[t.OOVToken]
	}

	sequences := make([][]int32, len(texts))
	for i, text := range texts {
		words := t.words(text)
		seq := make([]int32, 0, len(words))
		for _, w := range words {
			idx, known := t.wordIndex[w]
			if known && (t.NumWords <= 0 || idx < t.NumWords) {
				seq = append(seq, int32(idx))
			} else if oov > 0 {
				seq = append(seq, int32(oov))
			}
		}
		sequences[i] = seq
	}
	return sequences, nil
}

// SequencesToTexts maps index sequences back to space-joined texts. Unknown
// indices map to the OOV token when set and are dropped otherwise.
func (t *Tokenizer) SequencesToTexts(sequences [][]int32) ([]string, error) {
	if t.indexWord == nil {
		return nil, fmt.Errorf("text: tokenizer is not fitted, call Fit first")
	}

	texts := make([]string, len(sequences))
	for i, seq := range sequences {
		words := make([]string, 0, len(seq))
		for _, idx := range seq {
			w, known := t.indexWord[int(idx)]
			if known && (t.NumWords <= 0 || int(idx) < t.NumWords) {
				words = append(words, w)
			} else if t.OOVToken != "" {
				words = append(words, t.OOVToken)
			}
		}
		texts[i] = strings.Join(words, " ")
	}
	return texts, nil
}
