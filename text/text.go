// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package text provides text preprocessing: a word-level tokenizer, a
// hashing one-hot encoder, a byte-pair encoder and sequence padding.
//
// Example:
//
//	tok := text.NewTokenizer(text.WithNumWords(1000), text.WithOOVToken("<unk>"))
//	tok.Fit([]string{"the quick brown fox", "the lazy dog"})
//	seqs, _ := tok.TextsToSequences([]string{"the quick dog"})
//	batch, _ := text.PadSequences(seqs, 8, text.Pre, text.Pre, 0)
package text

import (
	"github.com/axon-ml/axon/internal/text"
	"github.com/axon-ml/axon/tensor"
)

// Tokenizer builds a word vocabulary from a corpus and converts texts to
// integer sequences.
type Tokenizer = text.Tokenizer

// TokenizerOption configures a Tokenizer.
type TokenizerOption = text.TokenizerOption

// BPE is a byte-pair encoder backed by tiktoken encodings.
type BPE = text.BPE

// DefaultFilters is the punctuation stripped from texts before splitting.
const DefaultFilters = text.DefaultFilters

// Padding and truncation sides accepted by PadSequences.
const (
	Pre  = text.Pre
	Post = text.Post
)

// NewTokenizer creates a word-level tokenizer.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	return text.NewTokenizer(opts...)
}

// WithNumWords caps the vocabulary size used by TextsToSequences.
func WithNumWords(n int) TokenizerOption { return text.WithNumWords(n) }

// WithFilters overrides the stripped character set.
func WithFilters(filters string) TokenizerOption { return text.WithFilters(filters) }

// WithLower controls lower-casing.
func WithLower(lower bool) TokenizerOption { return text.WithLower(lower) }

// WithSplit overrides the word separator.
func WithSplit(split string) TokenizerOption { return text.WithSplit(split) }

// WithOOVToken sets the out-of-vocabulary replacement token.
func WithOOVToken(token string) TokenizerOption { return text.WithOOVToken(token) }

// NewBPE loads a named tiktoken encoding, for example "cl100k_base".
func NewBPE(encodingName string) (*BPE, error) { return text.NewBPE(encodingName) }

// NewBPEForModel loads the encoding a model was trained with.
func NewBPEForModel(modelName string) (*BPE, error) { return text.NewBPEForModel(modelName) }

// OneHotHash maps each word of a text to an index in [1, n) by hashing.
func OneHotHash(s string, n int) []int32 { return text.OneHotHash(s, n) }

// HashingTrick is OneHotHash with explicit normalization settings.
func HashingTrick(s string, n int, filters string, lower bool, split string) []int32 {
	return text.HashingTrick(s, n, filters, lower, split)
}

// PadSequences packs variable-length sequences into a dense [batch, maxLen]
// Int32 tensor.
func PadSequences(sequences [][]int32, maxLen int, padding, truncating string, value int32) (*tensor.RawTensor, error) {
	return text.PadSequences(sequences, maxLen, padding, truncating, value)
}
