package textenc_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/textenc"
)

func TestRegistry_Builtins(t *testing.T) {
	reg := textenc.DefaultRegistry[*cpu.CPUBackend]()
	assert.Equal(t, []string{"lstm", "rnn"}, reg.Names())

	for _, name := range []string{"rnn", "lstm", "RNN"} {
		enc, err := reg.Build(textenc.Spec[*cpu.CPUBackend]{
			Type:            name,
			NumToken:        10,
			WordEmbedding:   wordTable(10, 4, 1),
			RNN:             rnnConfig(3, 1, true),
			Output:          textenc.OutputConfig{Type: "mean"},
			FreezeEmbedding: true,
			Rand:            rand.New(rand.NewSource(1)),
		}, cpu.New())
		require.NoError(t, err, name)
		assert.Equal(t, 6, enc.OutputDim())

		out, err := enc.Forward(indices(t, padded))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1, 6}, []int(out.Pooled.Shape()))
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := textenc.NewRegistry[*cpu.CPUBackend]()
	require.NoError(t, textenc.RegisterBuiltins(reg))

	_, err := reg.Build(textenc.Spec[*cpu.CPUBackend]{Type: "transformer"}, cpu.New())
	assert.ErrorIs(t, err, textenc.ErrUnknownEncoder)

	assert.ErrorIs(t, textenc.RegisterBuiltins(reg), textenc.ErrDuplicateEncoder)
	assert.Error(t, reg.Register("", nil))

	// Builder errors pass through unchanged.
	_, err = reg.Build(textenc.Spec[*cpu.CPUBackend]{Type: "rnn", RNN: rnnConfig(3, 1, true)}, cpu.New())
	assert.ErrorIs(t, err, textenc.ErrEmptyEmbedding)
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	reg := textenc.NewRegistry[*cpu.CPUBackend]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			_ = reg.Register(name, func(textenc.Spec[*cpu.CPUBackend], *cpu.CPUBackend) (textenc.LanguageEncoder[*cpu.CPUBackend], error) {
				return nil, nil
			})
			_ = reg.Names()
		}(i)
	}
	wg.Wait()
	assert.Len(t, reg.Names(), 8)
}

func TestParsePoolKind(t *testing.T) {
	for _, kind := range []textenc.PoolKind{textenc.PoolMean, textenc.PoolMax, textenc.PoolFinalState} {
		got, err := textenc.ParsePoolKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}
	_, err := textenc.ParsePoolKind("")
	assert.ErrorIs(t, err, textenc.ErrUnsupportedPooling)
}
