package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lanenc/internal/loader"
	"github.com/born-ml/lanenc/internal/wordvec"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	doc := `encoder:
  lstm_cfg: {hidden_size: 6, num_layers: 1, bidirectional: true}
  output_cfg: {type: mean}
embedding:
  dim: 4
` + extra
	path := filepath.Join(dir, "lanenc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersionAndListEncoders(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)

	out, err = run(t, "list-encoders")
	require.NoError(t, err)
	assert.Equal(t, "lstm\nrnn\n", out)
}

func TestEncodeJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	db := filepath.Join(dir, "enc.db")

	out, err := run(t, "encode", "--config", cfg, "--json", "--store", db,
		"the man on the left", "red ball")
	require.NoError(t, err)

	var results []encoded
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Len(t, results[0].Pooled, 12)
	assert.Len(t, results[0].Tokens, 5)
	assert.Equal(t, []bool{false, false, true, true, true}, results[1].Padding)

	out, err = run(t, "history", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"red ball"`)
	assert.Contains(t, out, "rnn/mean")
}

func TestEncodeWithSavedWeights(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	weights := filepath.Join(dir, "enc.safetensors")

	// A vocabulary-less config sizes the table to the input, so the weight
	// file is written for the same expression it is later loaded for.
	out, err := run(t, "inspect", "--config", cfg, "--save-weights", weights)
	require.NoError(t, err)
	assert.Contains(t, out, "weight_ih_l0_reverse")
	assert.Contains(t, out, "frozen")

	r, err := loader.OpenSafeTensors(weights)
	require.NoError(t, err)
	assert.Contains(t, r.TensorNames(), "lstm.weight_hh_l0")
	require.NoError(t, r.Close())

	_, err = run(t, "encode", "--config", cfg, "--weights", weights, "anything")
	assert.Error(t, err, "embedding table sizes differ")
}

func TestConvertGloVeThenEncode(t *testing.T) {
	dir := t.TempDir()
	glove := filepath.Join(dir, "glove.txt")
	require.NoError(t, os.WriteFile(glove, []byte("man 1 0 0 1\nleft 0 1 1 0\nball 1 1 1 1\n"), 0o600))
	table := filepath.Join(dir, "emb.safetensors")
	vocab := filepath.Join(dir, "vocab.txt")

	out, err := run(t, "convert-glove", "--input", glove, "--output", table, "--vocab", vocab)
	require.NoError(t, err)
	assert.Contains(t, out, "5 x 4")

	v, err := wordvec.LoadVocabulary(vocab)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v.Lookup("left"))

	cfg := writeConfig(t, dir, "  path: "+table+"\n  vocab: "+vocab+"\n")
	out, err = run(t, "encode", "--config", cfg, "--show", "2", "man left", "unknown ball")
	require.NoError(t, err)
	assert.Contains(t, out, "tokens:  [2 3]")
	assert.Contains(t, out, "tokens:  [1 4]")
	assert.Equal(t, 2, strings.Count(out, "dim 12"))
}

func TestErrors(t *testing.T) {
	_, err := run(t, "encode")
	assert.Error(t, err, "expressions are required")

	_, err = run(t, "encode", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "x")
	assert.Error(t, err)

	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	require.NoError(t, os.WriteFile(cfg, []byte("encoder:\n  output_cfg: {type: sum}\n"), 0o600))
	_, err = run(t, "inspect", "--config", cfg)
	assert.ErrorContains(t, err, "sum")

	_, err = run(t, "history")
	assert.Error(t, err)
}
