package text

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// Truncation and padding sides for PadSequences.
const (
	Pre  = "pre"
	Post = "post"
)

// PadSequences packs variable-length sequences into a dense [batch, maxLen]
// Int32 tensor. maxLen <= 0 uses the longest sequence. padding and
// truncating choose which side is padded respectively cut; both default to
// Pre when empty, matching the convention that recent tokens matter most.
func PadSequences(sequences [][]int32, maxLen int, padding, truncating string, value int32) (*tensor.RawTensor, error) {
	if padding == "" {
		padding = Pre
	}
	if truncating == "" {
		truncating = Pre
	}
	if padding != Pre && padding != Post {
		return nil, fmt.Errorf("text: padding must be %q or %q, got %q", Pre, Post, padding)
	}
	if truncating != Pre && truncating != Post {
		return nil, fmt.Errorf("text: truncating must be %q or %q, got %q", Pre, Post, truncating)
	}

	if maxLen <= 0 {
		for _, seq := range sequences {
			if len(seq) > maxLen {
				maxLen = len(seq)
			}
		}
	}

	out, err := tensor.NewRaw(tensor.Shape{len(sequences), maxLen}, tensor.Int32, tensor.CPU)
	if err != nil {
		return nil, err
	}
	data := out.AsInt32()
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}

	for i, seq := range sequences {
		if len(seq) > maxLen {
			if truncating == Pre {
				seq = seq[len(seq)-maxLen:]
			} else {
				seq = seq[:maxLen]
			}
		}
		row := data[i*maxLen : (i+1)*maxLen]
		if padding == Pre {
			copy(row[maxLen-len(seq):], seq)
		} else {
			copy(row, seq)
		}
	}
	return out, nil
}
