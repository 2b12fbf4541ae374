package wordvec_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/tensor"
	"github.com/born-ml/lanenc/internal/wordvec"
)

const glove = `the 1 2 3
man 3 2 1

left 0.5 0.5 0.5
the 9 9 9
`

func TestParseGloVe(t *testing.T) {
	table, vocab, err := wordvec.ParseGloVe(strings.NewReader(glove))
	require.NoError(t, err)

	assert.Equal(t, 5, table.Rows)
	assert.Equal(t, 3, table.Dim)
	assert.Equal(t, 5, vocab.Len())
	assert.Equal(t, []float32{0, 0, 0}, table.Row(wordvec.PadIndex))
	assert.InDeltaSlice(t, []float32{1.5, 1.5, 1.5}, table.Row(wordvec.UnkIndex), 1e-6)

	assert.EqualValues(t, 2, vocab.Lookup("the"))
	assert.Equal(t, []float32{1, 2, 3}, table.Row(2), "first occurrence wins")
	assert.EqualValues(t, 4, vocab.Lookup("left"))
	assert.EqualValues(t, wordvec.UnkIndex, vocab.Lookup("right"))
	assert.Equal(t, "man", vocab.Word(3))
	assert.Equal(t, wordvec.UnkToken, vocab.Word(99))
}

func TestParseGloVe_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"ragged":    "a 1 2\nb 1\n",
		"no values": "a\n",
		"not float": "a 1 x\n",
		"empty":     "\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := wordvec.ParseGloVe(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestVocabularyRoundTrip(t *testing.T) {
	vocab, err := wordvec.NewVocabulary([]string{"red", "ball"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = vocab.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "<pad>\n<unk>\nred\nball\n", buf.String())

	back, err := wordvec.ReadVocabulary(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 3, back.Lookup("ball"))

	_, err = wordvec.ReadVocabulary(strings.NewReader("red\nball\n"))
	assert.Error(t, err, "missing reserved tokens")

	_, err = wordvec.NewVocabulary([]string{"a", "a"})
	assert.ErrorIs(t, err, wordvec.ErrDuplicateWord)
}

func TestTableSaveLoad(t *testing.T) {
	dir := t.TempDir()
	table := wordvec.Random(6, 4, 3)
	assert.Equal(t, make([]float32, 4), table.Row(wordvec.PadIndex))

	path := filepath.Join(dir, "emb.safetensors")
	require.NoError(t, table.Save(path, wordvec.DefaultTensorName))

	back, err := wordvec.LoadTable(path, wordvec.DefaultTensorName)
	require.NoError(t, err)
	assert.Equal(t, table, back)

	_, err = wordvec.LoadTable(path, "other")
	assert.Error(t, err)

	emb, err := wordvec.Tensor(back, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{6, 4}, emb.Shape())
	emb.Data()[0] = 42
	assert.Zero(t, back.Data[0], "tensor owns a copy")
}

func TestRandomIsSeeded(t *testing.T) {
	assert.Equal(t, wordvec.Random(3, 2, 9), wordvec.Random(3, 2, 9))
	assert.NotEqual(t, wordvec.Random(3, 2, 9), wordvec.Random(3, 2, 10))
}
