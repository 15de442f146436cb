package text

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding used by GPT-4 class models.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase and encodingR50kBase cover the GPT-3 family.
	encodingP50kBase = "p50k_base"
	encodingR50kBase = "r50k_base"
)

// BPE is a byte-pair encoder backed by pkoukk/tiktoken-go. Unlike the word
// Tokenizer it needs no fitting; the vocabulary ships with the encoding.
type BPE struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewBPE loads a named tiktoken encoding, for example "cl100k_base".
func NewBPE(encodingName string) (*BPE, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("text: failed to load encoding %q: %w", encodingName, err)
	}
	return &BPE{encoding: encoding, name: encodingName}, nil
}

// NewBPEForModel loads the encoding a model was trained with, for example
// "gpt-4".
func NewBPEForModel(modelName string) (*BPE, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("text: failed to load encoding for model %q: %w", modelName, err)
	}
	return &BPE{encoding: encoding, name: modelName}, nil
}

// Encode converts text to token IDs.
func (b *BPE) Encode(text string) []int32 {
	tokens := b.encoding.Encode(text, nil, nil)
	out := make([]int32, len(tokens))
	for i, tok := range tokens {
		out[i] = int32(tok)
	}
	return out
}

// Decode converts token IDs back to text.
func (b *BPE) Decode(tokens []int32) string {
	ints := make([]int, len(tokens))
	for i, tok := range tokens {
		ints[i] = int(tok)
	}
	return b.encoding.Decode(ints)
}

// VocabSize returns the vocabulary size of the encoding, or 0 when the
// encoding is not one of the named ones (tiktoken does not expose the size).
func (b *BPE) VocabSize() int {
	switch b.name {
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 0
	}
}

// EOSToken returns the <|endoftext|> token ID, or -1 when the encoding does
// not define one.
func (b *BPE) EOSToken() int32 {
	switch b.name {
	case encodingCL100kBase:
		return 100257
	case encodingP50kBase, encodingR50kBase:
		return 50256
	default:
		return -1
	}
}

// Name returns the encoding or model name the encoder was created with.
func (b *BPE) Name() string {
	return b.name
}
