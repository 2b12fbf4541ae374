// Package tokenizer turns referring expressions into token indices for the
// encoder. Index 0 is always padding, so every tokenizer here emits ids >= 1.
package tokenizer

// Tokenizer converts text to embedding-table indices.
type Tokenizer interface {
	// Encode converts text to indices. It never emits the padding index.
	Encode(text string) ([]int32, error)

	// VocabSize returns the number of indices, padding included. The
	// embedding table needs at least this many rows.
	VocabSize() int

	// PadToken returns the padding index.
	PadToken() int32

	// UnkToken returns the index used for unknown input, or -1 when the
	// tokenizer has none.
	UnkToken() int32
}

// PadIndex is the index every tokenizer reserves for padding.
const PadIndex int32 = 0
