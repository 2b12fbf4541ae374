package tokenizer

// Batch is a padded [Size, Width] block of indices in row-major order.
type Batch struct {
	Data  []int32
	Size  int
	Width int
}

// Row returns row i of the batch. The slice aliases Data.
func (b Batch) Row(i int) []int32 {
	return b.Data[i*b.Width : (i+1)*b.Width]
}

// Lengths returns the number of non-padding indices in each row.
func (b Batch) Lengths() []int {
	lengths := make([]int, b.Size)
	for i := range lengths {
		for _, id := range b.Row(i) {
			if id != PadIndex {
				lengths[i]++
			}
		}
	}
	return lengths
}

// PadBatch right-pads seqs with PadIndex to the longest sequence. With
// maxTokens > 0 longer sequences are truncated to maxTokens. Empty sequences
// become all-padding rows; the width is at least one.
func PadBatch(seqs [][]int32, maxTokens int) Batch {
	width := 1
	for _, s := range seqs {
		width = max(width, len(s))
	}
	if maxTokens > 0 {
		width = min(width, maxTokens)
	}

	b := Batch{Data: make([]int32, len(seqs)*width), Size: len(seqs), Width: width}
	for i, s := range seqs {
		copy(b.Row(i), s)
	}
	return b
}

// EncodeBatch tokenizes every text and pads the result.
func EncodeBatch(tok Tokenizer, texts []string, maxTokens int) (Batch, error) {
	seqs := make([][]int32, len(texts))
	for i, text := range texts {
		ids, err := tok.Encode(text)
		if err != nil {
			return Batch{}, err
		}
		seqs[i] = ids
	}
	return PadBatch(seqs, maxTokens), nil
}
