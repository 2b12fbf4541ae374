// Package wordvec holds pre-trained word-vector tables and the vocabularies
// that index them. Row 0 of every table is the padding vector and row 1 the
// unknown-word vector.
package wordvec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reserved indices.
const (
	PadIndex = 0
	UnkIndex = 1
)

// Reserved tokens, written as the first two lines of a vocabulary file.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"
)

// ErrDuplicateWord is returned when a vocabulary lists a word twice.
var ErrDuplicateWord = errors.New("wordvec: duplicate word")

// Vocabulary maps words to table rows.
type Vocabulary struct {
	words []string
	index map[string]int32
}

// NewVocabulary returns a vocabulary holding the reserved tokens followed by
// words in order.
func NewVocabulary(words []string) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]int32, len(words)+2)}
	for _, w := range append([]string{PadToken, UnkToken}, words...) {
		if err := v.add(w); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Vocabulary) add(word string) error {
	if _, ok := v.index[word]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateWord, word)
	}
	v.index[word] = int32(len(v.words)) //nolint:gosec // vocabularies stay far below 2^31
	v.words = append(v.words, word)
	return nil
}

// ReadVocabulary reads one word per line. The file must start with the
// reserved tokens, as written by WriteTo.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		words = append(words, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("wordvec: read vocabulary: %w", err)
	}
	if len(words) < 2 || words[PadIndex] != PadToken || words[UnkIndex] != UnkToken {
		return nil, fmt.Errorf("wordvec: vocabulary must start with %s and %s", PadToken, UnkToken)
	}
	return NewVocabulary(words[2:])
}

// LoadVocabulary reads the vocabulary file at path.
func LoadVocabulary(path string) (*Vocabulary, error) {
	//nolint:gosec // G304: vocabulary path comes from the user.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordvec: %w", err)
	}
	defer f.Close()
	return ReadVocabulary(f)
}

// WriteTo writes one word per line, reserved tokens first.
func (v *Vocabulary) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, word := range v.words {
		m, err := bw.WriteString(word + "\n")
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Save writes the vocabulary to path.
func (v *Vocabulary) Save(path string) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: output path comes from the user.
	if err != nil {
		return fmt.Errorf("wordvec: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = v.WriteTo(f)
	return err
}

// Lookup returns the row for word, or UnkIndex.
func (v *Vocabulary) Lookup(word string) int32 {
	if i, ok := v.index[word]; ok {
		return i
	}
	return UnkIndex
}

// Contains reports whether word has its own row.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}

// Word returns the word at index i, or UnkToken when out of range.
func (v *Vocabulary) Word(i int32) string {
	if i < 0 || int(i) >= len(v.words) {
		return UnkToken
	}
	return v.words[i]
}

// Len returns the number of rows, reserved tokens included.
func (v *Vocabulary) Len() int {
	return len(v.words)
}
