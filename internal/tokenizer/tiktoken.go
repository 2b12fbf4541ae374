package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Known encodings and their BPE vocabulary sizes.
var tiktokenVocab = map[string]int{
	"cl100k_base": 100256,
	"p50k_base":   50257,
	"r50k_base":   50257,
	"o200k_base":  199998,
}

// TikToken wraps the pkoukk/tiktoken-go BPE encoders. Every BPE id is shifted
// up by one so that index 0 stays free for padding.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	vocab    int
}

// NewTikToken loads the named encoding, e.g. "cl100k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	vocab, ok := tiktokenVocab[encodingName]
	if !ok {
		return nil, fmt.Errorf("tokenizer: unknown tiktoken encoding %q", encodingName)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName, vocab: vocab}, nil
}

// Encode implements Tokenizer. Special tokens are encoded as plain text.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = int32(tok) + 1 //nolint:gosec // G115: BPE ids fit in int32.
	}
	return ids, nil
}

// Decode reverses Encode. Padding is skipped.
func (t *TikToken) Decode(ids []int32) string {
	tokens := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == PadIndex {
			continue
		}
		tokens = append(tokens, int(id)-1)
	}
	return t.encoding.Decode(tokens)
}

// VocabSize implements Tokenizer: the BPE vocabulary plus the padding row.
func (t *TikToken) VocabSize() int { return t.vocab + 1 }

// PadToken implements Tokenizer.
func (t *TikToken) PadToken() int32 { return PadIndex }

// UnkToken implements Tokenizer. Byte-level BPE has no unknown token.
func (t *TikToken) UnkToken() int32 { return -1 }

// Name returns the encoding name.
func (t *TikToken) Name() string { return t.name }
