package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/config"
	"github.com/born-ml/lanenc/internal/loader"
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
	"github.com/born-ml/lanenc/internal/textenc"
	"github.com/born-ml/lanenc/internal/tokenizer"
	"github.com/born-ml/lanenc/internal/wordvec"
)

// encoded is the result for one expression.
type encoded struct {
	Expression string    `json:"expression"`
	Tokens     []int32   `json:"tokens"`
	Padding    []bool    `json:"padding"`
	Pooled     []float32 `json:"pooled"`
}

// session hides the backend type parameter from the commands.
type session interface {
	Encode(texts []string) ([]encoded, error)
	Describe(w io.Writer)
	LoadWeights(path string) error
	SaveWeights(path string) error
	Label() string
	Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		logf("no config file, using defaults")
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	logf("loading config %s", cfgFile)
	return config.Load(cfgFile)
}

// openSession builds the tokenizer, word table and encoder that cfg describes
// on the configured backend. corpus seeds the vocabulary when no vocabulary
// file is configured.
func openSession(cfg *config.Config, corpus []string) (session, error) {
	switch cfg.Backend {
	case config.BackendWebGPU:
		return openGPUSession(cfg, corpus)
	default:
		s, err := newSession(cfg, corpus, cpu.New(), func() {})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

type encoderSession[B tensor.Backend] struct {
	cfg     *config.Config
	backend B
	tok     tokenizer.Tokenizer
	enc     textenc.LanguageEncoder[B]
	release func()
}

func newSession[B tensor.Backend](cfg *config.Config, corpus []string, backend B, release func()) (*encoderSession[B], error) {
	tok, err := newTokenizer(cfg, corpus)
	if err != nil {
		return nil, err
	}
	table, err := wordTable(cfg, tok)
	if err != nil {
		return nil, err
	}
	emb, err := wordvec.Tensor(table, backend)
	if err != nil {
		return nil, err
	}

	numToken := cfg.Encoder.NumToken
	if numToken == 0 {
		numToken = table.Rows
	}
	enc, err := textenc.DefaultRegistry[B]().Build(textenc.Spec[B]{
		Type:            cfg.Encoder.Type,
		NumToken:        numToken,
		WordEmbedding:   emb,
		RNN:             cfg.Encoder.RNN,
		Output:          cfg.Encoder.Output,
		FreezeEmbedding: cfg.Encoder.FreezeEmb,
		Rand:            rand.New(rand.NewSource(cfg.Embedding.Seed)), //nolint:gosec // reproducible init
	}, backend)
	if err != nil {
		return nil, err
	}
	enc.Train(false)
	logf("built %s encoder on %s: table %dx%d, output dim %d",
		cfg.Encoder.Type, backend.Name(), table.Rows, table.Dim, enc.OutputDim())

	return &encoderSession[B]{cfg: cfg, backend: backend, tok: tok, enc: enc, release: release}, nil
}

func newTokenizer(cfg *config.Config, corpus []string) (tokenizer.Tokenizer, error) {
	if cfg.Tokenizer.Kind == config.TokenizerTikToken {
		logf("loading tiktoken encoding %s", cfg.Tokenizer.Encoding)
		return tokenizer.NewTikToken(cfg.Tokenizer.Encoding)
	}

	if cfg.Embedding.Vocab != "" {
		logf("loading vocabulary %s", cfg.Embedding.Vocab)
		vocab, err := wordvec.LoadVocabulary(cfg.Embedding.Vocab)
		if err != nil {
			return nil, err
		}
		return tokenizer.NewWord(vocab), nil
	}

	// Without a vocabulary file every word of the input gets its own row.
	var words []string
	seen := map[string]bool{wordvec.PadToken: true, wordvec.UnkToken: true}
	for _, text := range corpus {
		for _, w := range tokenizer.Split(text) {
			if !seen[w] {
				seen[w] = true
				words = append(words, w)
			}
		}
	}
	vocab, err := wordvec.NewVocabulary(words)
	if err != nil {
		return nil, err
	}
	logf("no vocabulary file, using %d words from the input", len(words))
	return tokenizer.NewWord(vocab), nil
}

func wordTable(cfg *config.Config, tok tokenizer.Tokenizer) (*wordvec.Table, error) {
	if cfg.Embedding.Path == "" {
		logf("random %dx%d word table (seed %d)", tok.VocabSize(), cfg.Embedding.Dim, cfg.Embedding.Seed)
		return wordvec.Random(tok.VocabSize(), cfg.Embedding.Dim, cfg.Embedding.Seed), nil
	}

	logf("loading word table %s[%s]", cfg.Embedding.Path, cfg.Embedding.Tensor)
	table, err := wordvec.LoadTable(cfg.Embedding.Path, cfg.Embedding.Tensor)
	if err != nil {
		return nil, err
	}
	if table.Rows < tok.VocabSize() {
		return nil, fmt.Errorf("word table has %d rows, tokenizer needs %d", table.Rows, tok.VocabSize())
	}
	return table, nil
}

func (s *encoderSession[B]) Label() string {
	return s.cfg.Encoder.Type + "/" + s.cfg.Encoder.Output.Type
}

func (s *encoderSession[B]) Encode(texts []string) ([]encoded, error) {
	batch, err := tokenizer.EncodeBatch(s.tok, texts, s.cfg.Tokenizer.MaxTokens)
	if err != nil {
		return nil, err
	}
	logf("encoding batch %dx%d", batch.Size, batch.Width)

	idx, err := tensor.FromSlice(batch.Data, tensor.Shape{batch.Size, batch.Width}, s.backend)
	if err != nil {
		return nil, err
	}
	out, err := s.enc.Forward(idx)
	if err != nil {
		return nil, err
	}

	width := s.enc.OutputDim()
	pooled := out.Pooled.Data()
	mask := out.Mask.Data()
	res := make([]encoded, len(texts))
	for i, text := range texts {
		res[i] = encoded{
			Expression: text,
			Tokens:     append([]int32(nil), batch.Row(i)...),
			Padding:    append([]bool(nil), mask[i*batch.Width:(i+1)*batch.Width]...),
			Pooled:     append([]float32(nil), pooled[i*width:(i+1)*width]...),
		}
	}
	return res, nil
}

func (s *encoderSession[B]) Describe(w io.Writer) {
	cfg := s.cfg.Encoder
	fmt.Fprintf(w, "encoder:    %s (%s cell, %d layer(s), hidden %d, bidirectional %v, batch_first %v)\n",
		cfg.Type, cfg.RNN.Type, cfg.RNN.NumLayers, cfg.RNN.HiddenSize, cfg.RNN.Bidirectional, cfg.RNN.BatchFirst)
	fmt.Fprintf(w, "pooling:    %s -> [batch, 1, %d]\n", cfg.Output.Type, s.enc.OutputDim())
	fmt.Fprintf(w, "backend:    %s\n", s.backend.Name())
	fmt.Fprintf(w, "tokenizer:  %s (vocab %d)\n", s.cfg.Tokenizer.Kind, s.tok.VocabSize())

	for _, p := range s.enc.Parameters() {
		state := "trainable"
		if !p.RequiresGrad() {
			state = "frozen"
		}
		fmt.Fprintf(w, "  %-22s %-14v %s\n", p.Name(), p.Tensor().Shape(), state)
	}
	total, trainable := nn.CountParameters[B](s.enc)
	fmt.Fprintf(w, "parameters: %d total, %d trainable\n", total, trainable)
}

func (s *encoderSession[B]) stateLoader() (nn.StateLoader, error) {
	sl, ok := s.enc.(nn.StateLoader)
	if !ok {
		return nil, fmt.Errorf("encoder %q does not support weight files", s.cfg.Encoder.Type)
	}
	return sl, nil
}

func (s *encoderSession[B]) LoadWeights(path string) error {
	sl, err := s.stateLoader()
	if err != nil {
		return err
	}
	r, err := loader.OpenSafeTensors(path)
	if err != nil {
		return err
	}
	defer r.Close()
	state, err := r.LoadAll(s.backend.Device())
	if err != nil {
		return err
	}
	logf("loaded %d tensors from %s", len(state), path)
	return sl.LoadStateDict(state)
}

func (s *encoderSession[B]) SaveWeights(path string) error {
	sl, err := s.stateLoader()
	if err != nil {
		return err
	}
	return loader.WriteSafeTensors(path, sl.StateDict(), map[string]string{
		"encoder": s.Label(),
		"version": version,
	})
}

func (s *encoderSession[B]) Close() {
	s.release()
}
