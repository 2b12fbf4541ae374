package textenc_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lanenc/internal/autodiff"
	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/optim"
	"github.com/born-ml/lanenc/internal/tensor"
	"github.com/born-ml/lanenc/internal/textenc"
)

func wordTable(rows, dim int, seed int64) *tensor.Tensor[float32, *cpu.CPUBackend] {
	return tensor.Randn[float32](tensor.Shape{rows, dim}, rand.New(rand.NewSource(seed)), cpu.New())
}

func indices(t *testing.T, rows [][]int32) *tensor.Tensor[int32, *cpu.CPUBackend] {
	t.Helper()
	var flat []int32
	for _, r := range rows {
		flat = append(flat, r...)
	}
	idx, err := tensor.FromSlice(flat, tensor.Shape{len(rows), len(rows[0])}, cpu.New())
	require.NoError(t, err)
	return idx
}

func rnnConfig(hidden, layers int, bidirectional bool) textenc.RNNConfig {
	cfg := textenc.DefaultRNNConfig()
	cfg.HiddenSize = hidden
	cfg.NumLayers = layers
	cfg.Bidirectional = bidirectional
	return cfg
}

func newEncoder(t *testing.T, cfg textenc.RNNConfig, pooling string) *textenc.Encoder[*cpu.CPUBackend] {
	t.Helper()
	enc, err := textenc.New(10, wordTable(10, 4, 1), cfg, textenc.OutputConfig{Type: pooling}, true,
		cpu.New(), textenc.WithRand(rand.New(rand.NewSource(2))))
	require.NoError(t, err)
	return enc
}

var padded = [][]int32{{1, 2, 3, 0}, {1, 2, 0, 0}}

func TestEncoder_MaxPoolingShapes(t *testing.T) {
	enc := newEncoder(t, rnnConfig(8, 1, false), "max")

	out, err := enc.Forward(indices(t, padded))
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 1, 8}, out.Pooled.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 8}, out.Words.Shape())
	assert.Equal(t, tensor.Shape{2, 4}, out.Mask.Shape())
	assert.Equal(t, []bool{false, false, false, true, false, false, true, true}, out.Mask.Data())
	assert.Equal(t, 8, enc.OutputDim())
}

func TestEncoder_FinalStatePoolingShape(t *testing.T) {
	enc := newEncoder(t, rnnConfig(8, 2, true), "default")

	out, err := enc.Forward(indices(t, padded))
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 1, 32}, out.Pooled.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 16}, out.Words.Shape())
	assert.Equal(t, 32, enc.OutputDim())
}

func TestEncoder_PoolingValues(t *testing.T) {
	for _, pooling := range []string{"mean", "max"} {
		t.Run(pooling, func(t *testing.T) {
			enc := newEncoder(t, rnnConfig(6, 1, true), pooling)
			out, err := enc.Forward(indices(t, padded))
			require.NoError(t, err)

			width := 12
			valid := []int{3, 2}
			for b, n := range valid {
				for j := 0; j < width; j++ {
					want := out.Words.At(b, 0, j)
					for s := 1; s < n; s++ {
						v := out.Words.At(b, s, j)
						if pooling == "mean" {
							want += v
						} else {
							want = float32(math.Max(float64(want), float64(v)))
						}
					}
					if pooling == "mean" {
						want /= float32(n)
					}
					assert.InDelta(t, want, out.Pooled.At(b, 0, j), 1e-5, "row %d column %d", b, j)
				}
			}
		})
	}
}

func TestEncoder_FinalStateMatchesLastOutput(t *testing.T) {
	// For one forward layer the final state is the output at the last step,
	// padding included.
	enc := newEncoder(t, rnnConfig(5, 1, false), "default")
	out, err := enc.Forward(indices(t, padded))
	require.NoError(t, err)

	for b := 0; b < 2; b++ {
		for j := 0; j < 5; j++ {
			assert.InDelta(t, out.Words.At(b, 3, j), out.Pooled.At(b, 0, j), 1e-6)
		}
	}
}

func TestEncoder_Idempotent(t *testing.T) {
	cfg := rnnConfig(8, 2, true)
	cfg.Dropout = 0.5
	enc := newEncoder(t, cfg, "mean")
	enc.Train(false)

	idx := indices(t, padded)
	first, err := enc.Forward(idx)
	require.NoError(t, err)
	second, err := enc.Forward(idx)
	require.NoError(t, err)

	assert.Equal(t, first.Pooled.Data(), second.Pooled.Data())
	assert.Equal(t, first.Words.Data(), second.Words.Data())
	assert.Equal(t, first.Mask.Data(), second.Mask.Data())
}

func TestEncoder_AllPaddingRow(t *testing.T) {
	idx := [][]int32{{1, 2, 0}, {0, 0, 0}}

	for _, pooling := range []string{"mean", "max"} {
		enc := newEncoder(t, rnnConfig(4, 1, false), pooling)
		_, err := enc.Forward(indices(t, idx))
		require.ErrorIs(t, err, textenc.ErrEmptySequence, pooling)
		assert.Contains(t, err.Error(), "batch row 1")
	}

	// Final-state pooling does not look at the mask.
	enc := newEncoder(t, rnnConfig(4, 1, false), "default")
	out, err := enc.Forward(indices(t, idx))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1, 4}, out.Pooled.Shape())
}

func TestEncoder_TimeMajorLayoutGivesSameResult(t *testing.T) {
	batchFirst := rnnConfig(6, 2, true)
	timeMajor := batchFirst
	timeMajor.BatchFirst = false

	a, err := newEncoder(t, batchFirst, "max").Forward(indices(t, padded))
	require.NoError(t, err)
	b, err := newEncoder(t, timeMajor, "max").Forward(indices(t, padded))
	require.NoError(t, err)

	assert.Equal(t, a.Words.Shape(), b.Words.Shape())
	assert.InDeltaSlice(t, a.Words.Data(), b.Words.Data(), 1e-6)
	assert.InDeltaSlice(t, a.Pooled.Data(), b.Pooled.Data(), 1e-6)
}

func TestEncoder_ConstructionErrors(t *testing.T) {
	backend := cpu.New()
	vector := tensor.Zeros[float32](tensor.Shape{4}, backend)
	table := wordTable(5, 3, 1)

	tests := []struct {
		name    string
		emb     *tensor.Tensor[float32, *cpu.CPUBackend]
		rnn     textenc.RNNConfig
		pooling string
		want    error
	}{
		{"nil embedding", nil, rnnConfig(4, 1, true), "max", textenc.ErrEmptyEmbedding},
		{"vector embedding", vector, rnnConfig(4, 1, true), "max", textenc.ErrEmptyEmbedding},
		{"lstm cell", table, textenc.RNNConfig{Type: "lstm", NumLayers: 1, HiddenSize: 4}, "max", textenc.ErrUnsupportedCell},
		{"sum pooling", table, rnnConfig(4, 1, true), "sum", textenc.ErrUnsupportedPooling},
		{"upper-case pooling", table, rnnConfig(4, 1, true), "MAX", textenc.ErrUnsupportedPooling},
		{"embedding checked before cell", nil, textenc.RNNConfig{Type: "lstm"}, "sum", textenc.ErrEmptyEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := textenc.New(5, tt.emb, tt.rnn, textenc.OutputConfig{Type: tt.pooling}, true, backend)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := textenc.New(5, table, rnnConfig(0, 1, true), textenc.DefaultOutputConfig(), true, backend)
	assert.Error(t, err, "zero hidden size")
}

func TestEncoder_InvalidIndices(t *testing.T) {
	enc := newEncoder(t, rnnConfig(4, 1, false), "max")

	_, err := enc.Forward(indices(t, [][]int32{{1, 10}}))
	assert.ErrorIs(t, err, textenc.ErrInvalidIndices)

	_, err = enc.Forward(indices(t, [][]int32{{-3, 1}}))
	assert.ErrorIs(t, err, textenc.ErrInvalidIndices)

	flat := tensor.MustFromSlice([]int32{1, 2}, tensor.Shape{2}, cpu.New())
	_, err = enc.Forward(flat)
	assert.ErrorIs(t, err, textenc.ErrInvalidIndices)
}

func TestEncoder_StateDictRoundTrip(t *testing.T) {
	cfg := rnnConfig(4, 1, true)
	src := newEncoder(t, cfg, "default")
	state := src.StateDict()

	require.Len(t, state, 9)
	assert.Contains(t, state, "embedding.weight")
	assert.Contains(t, state, "lstm.weight_ih_l0")
	assert.Contains(t, state, "lstm.bias_hh_l0_reverse")

	dst, err := textenc.New(10, wordTable(10, 4, 99), cfg, textenc.OutputConfig{Type: "default"}, true,
		cpu.New(), textenc.WithRand(rand.New(rand.NewSource(99))))
	require.NoError(t, err)
	require.NoError(t, dst.LoadStateDict(state))

	idx := indices(t, padded)
	want, err := src.Forward(idx)
	require.NoError(t, err)
	got, err := dst.Forward(idx)
	require.NoError(t, err)
	assert.Equal(t, want.Pooled.Data(), got.Pooled.Data())

	delete(state, "lstm.weight_hh_l0")
	assert.Error(t, dst.LoadStateDict(state))
}

func TestEncoder_FrozenEmbeddingSurvivesTraining(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(5))
	table := tensor.Randn[float32](tensor.Shape{6, 3}, rng, backend)

	enc, err := textenc.New(6, table, rnnConfig(4, 1, true), textenc.OutputConfig{Type: "mean"}, true,
		backend, textenc.WithRand(rng))
	require.NoError(t, err)

	params := enc.Parameters()
	before := make([][]float32, len(params))
	for i, p := range params {
		before[i] = append([]float32(nil), p.Tensor().Data()...)
	}

	idx := tensor.MustFromSlice([]int32{1, 2, 3, 4, 5, 0}, tensor.Shape{2, 3}, backend)
	backend.Tape().StartRecording()
	out, err := enc.Forward(idx)
	require.NoError(t, err)
	grads := autodiff.Backward(out.Pooled, backend)
	backend.Tape().StopRecording()

	opt := optim.NewSGD(params, optim.SGDConfig{LR: 0.5}, backend)
	opt.Step(grads)

	assert.Equal(t, before[0], params[0].Tensor().Data(), "embedding table changed")
	assert.Equal(t, before[0], table.Data(), "caller's matrix changed")
	for i := 1; i < len(params); i++ {
		assert.NotEqual(t, before[i], params[i].Tensor().Data(), "%s did not move", params[i].Name())
	}
}

func TestEncoder_TrainableEmbedding(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(5))
	table := tensor.Randn[float32](tensor.Shape{6, 3}, rng, backend)

	enc, err := textenc.New(6, table, rnnConfig(4, 1, false), textenc.OutputConfig{Type: "max"}, false,
		backend, textenc.WithRand(rng))
	require.NoError(t, err)

	emb := enc.Parameters()[0]
	before := append([]float32(nil), emb.Tensor().Data()...)

	backend.Tape().StartRecording()
	out, err := enc.Forward(tensor.MustFromSlice([]int32{1, 2, 0}, tensor.Shape{1, 3}, backend))
	require.NoError(t, err)
	grads := autodiff.Backward(out.Pooled, backend)
	backend.Tape().StopRecording()

	optim.NewSGD(enc.Parameters(), optim.SGDConfig{LR: 0.5}, backend).Step(grads)

	after := emb.Tensor().Data()
	assert.NotEqual(t, before[3:9], after[3:9], "rows 1 and 2 should move")
	assert.Equal(t, before[12:], after[12:], "unused rows stay put")
}
