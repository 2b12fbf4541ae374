package tokenizer

import (
	"strings"
	"unicode"

	"github.com/born-ml/lanenc/internal/wordvec"
)

// Word splits lower-cased text on whitespace and punctuation and looks each
// word up in a vocabulary. Words without a row map to the unknown index.
type Word struct {
	vocab *wordvec.Vocabulary
}

// NewWord returns a word tokenizer over vocab.
func NewWord(vocab *wordvec.Vocabulary) *Word {
	return &Word{vocab: vocab}
}

// Split returns the normalised words of text.
func Split(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		// Keep intra-word apostrophes and hyphens ("man's", "t-shirt").
		if r == '\'' || r == '-' {
			return false
		}
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// Encode implements Tokenizer.
func (w *Word) Encode(text string) ([]int32, error) {
	words := Split(text)
	ids := make([]int32, len(words))
	for i, word := range words {
		ids[i] = w.vocab.Lookup(word)
	}
	return ids, nil
}

// Decode joins the words for ids with single spaces, skipping padding.
func (w *Word) Decode(ids []int32) string {
	words := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == PadIndex {
			continue
		}
		words = append(words, w.vocab.Word(id))
	}
	return strings.Join(words, " ")
}

// VocabSize implements Tokenizer.
func (w *Word) VocabSize() int { return w.vocab.Len() }

// PadToken implements Tokenizer.
func (w *Word) PadToken() int32 { return wordvec.PadIndex }

// UnkToken implements Tokenizer.
func (w *Word) UnkToken() int32 { return wordvec.UnkIndex }
