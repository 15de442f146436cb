package text

import "hash/fnv"

// HashingTrick maps each word of text to an index in [1, n) using a hash
// function, trading collisions for a vocabulary-free encoding. Words share
// the normalization of Tokenizer.
func HashingTrick(text string, n int, filters string, lower bool, split string) []int32 {
	words := TextToWords(text, filters, lower, split)
	out := make([]int32, len(words))
	for i, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		out[i] = int32(h.Sum64()%uint64(n-1)) + 1
	}
	return out
}

// OneHotHash is HashingTrick with the default normalization.
func OneHotHash(text string, n int) []int32 {
	return HashingTrick(text, n, DefaultFilters, true, " ")
}
