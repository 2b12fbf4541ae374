package wordvec

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/born-ml/lanenc/internal/loader"
	"github.com/born-ml/lanenc/internal/tensor"
)

// DefaultTensorName is the tensor a table is saved under.
const DefaultTensorName = "word_emb"

// Table is a dense [Rows, Dim] float32 matrix in row-major order.
type Table struct {
	Rows int
	Dim  int
	Data []float32
}

// Row returns the vector for index i. The slice aliases the table.
func (t *Table) Row(i int) []float32 {
	return t.Data[i*t.Dim : (i+1)*t.Dim]
}

// Tensor copies the table into a [Rows, Dim] tensor.
func Tensor[B tensor.Backend](t *Table, backend B) (*tensor.Tensor[float32, B], error) {
	data := append([]float32(nil), t.Data...)
	return tensor.FromSlice(data, tensor.Shape{t.Rows, t.Dim}, backend)
}

// Random returns a table drawn from N(0, 1) with a zero padding row.
func Random(rows, dim int, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible init, not security
	t := &Table{Rows: rows, Dim: dim, Data: make([]float32, rows*dim)}
	for i := dim; i < len(t.Data); i++ {
		t.Data[i] = float32(rng.NormFloat64())
	}
	return t
}

// ParseGloVe reads GloVe text ("word v1 v2 ... vd" per line). The returned
// table has a zero padding row and a unknown-word row holding the mean of all
// vectors, followed by one row per word in file order. Every line must have
// the same number of values. Later duplicates of a word are skipped.
func ParseGloVe(r io.Reader) (*Table, *Vocabulary, error) {
	vocab, err := NewVocabulary(nil)
	if err != nil {
		return nil, nil, err
	}
	var data []float32
	dim := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		word, values := fields[0], fields[1:]
		if len(values) == 0 {
			return nil, nil, fmt.Errorf("wordvec: line %d: no values for %q", line, word)
		}
		if dim == 0 {
			dim = len(values)
			data = make([]float32, 2*dim, 2*dim*1024)
		}
		if len(values) != dim {
			return nil, nil, fmt.Errorf("wordvec: line %d: %d values, want %d", line, len(values), dim)
		}
		if vocab.Contains(word) {
			continue
		}

		for _, s := range values {
			f, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("wordvec: line %d: %w", line, err)
			}
			data = append(data, float32(f))
		}
		if err := vocab.add(word); err != nil {
			return nil, nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("wordvec: read glove: %w", err)
	}
	if dim == 0 {
		return nil, nil, fmt.Errorf("wordvec: no vectors found")
	}

	t := &Table{Rows: vocab.Len(), Dim: dim, Data: data}
	unk := t.Row(UnkIndex)
	words := t.Rows - 2
	for i := 2; i < t.Rows; i++ {
		for j, v := range t.Row(i) {
			unk[j] += v / float32(words)
		}
	}
	return t, vocab, nil
}

// LoadTable reads the 2-D float32 tensor called name from a SafeTensors file.
func LoadTable(path, name string) (*Table, error) {
	r, err := loader.OpenSafeTensors(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raw, err := r.LoadTensor(name, tensor.CPU)
	if err != nil {
		return nil, err
	}
	shape := raw.Shape()
	if len(shape) != 2 || raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("wordvec: %s: want a 2-D float32 table, got %v %v", name, raw.DType(), shape)
	}
	return &Table{Rows: shape[0], Dim: shape[1], Data: raw.AsFloat32()}, nil
}

// Save writes the table to a SafeTensors file under name.
func (t *Table) Save(path, name string) error {
	raw, err := tensor.NewRaw(tensor.Shape{t.Rows, t.Dim}, tensor.Float32, tensor.CPU)
	if err != nil {
		return fmt.Errorf("wordvec: %w", err)
	}
	copy(raw.AsFloat32(), t.Data)
	return loader.WriteSafeTensors(path, map[string]*tensor.RawTensor{name: raw},
		map[string]string{"rows": strconv.Itoa(t.Rows), "dim": strconv.Itoa(t.Dim)})
}
