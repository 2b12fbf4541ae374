// Package config loads the YAML file describing an encoder, its word vectors,
// the tokenizer feeding it and where encodings are stored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/lanenc/internal/textenc"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Backend names.
const (
	BackendCPU    = "cpu"
	BackendWebGPU = "webgpu"
)

// Tokenizer kinds.
const (
	TokenizerWord     = "word"
	TokenizerTikToken = "tiktoken"
)

// Config is the root document.
type Config struct {
	Backend   string          `yaml:"backend"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Store     StoreConfig     `yaml:"store"`
}

// EncoderConfig selects a registered encoder and its options.
type EncoderConfig struct {
	Type      string               `yaml:"type"`
	NumToken  int                  `yaml:"num_token"`
	FreezeEmb bool                 `yaml:"freeze_emb"`
	RNN       textenc.RNNConfig    `yaml:"lstm_cfg"`
	Output    textenc.OutputConfig `yaml:"output_cfg"`
}

// EmbeddingConfig locates the pre-trained word vectors. An empty Path gives
// a random table of Dim columns, sized to the tokenizer vocabulary.
type EmbeddingConfig struct {
	Path   string `yaml:"path"`
	Tensor string `yaml:"tensor"`
	Vocab  string `yaml:"vocab"`
	Dim    int    `yaml:"dim"`
	Seed   int64  `yaml:"seed"`
}

// TokenizerConfig chooses how expressions become indices.
type TokenizerConfig struct {
	Kind      string `yaml:"kind"`
	Encoding  string `yaml:"encoding"`
	MaxTokens int    `yaml:"max_tokens"`
}

// StoreConfig points at the SQLite database. Empty disables persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Backend: BackendCPU,
		Encoder: EncoderConfig{
			Type:      "rnn",
			FreezeEmb: true,
			RNN:       textenc.DefaultRNNConfig(),
			Output:    textenc.DefaultOutputConfig(),
		},
		Embedding: EmbeddingConfig{
			Tensor: "word_emb",
			Dim:    300,
			Seed:   1,
		},
		Tokenizer: TokenizerConfig{
			Kind:      TokenizerWord,
			Encoding:  "cl100k_base",
			MaxTokens: 15,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the encoder constructor would otherwise reject late.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Backend == BackendCPU || c.Backend == BackendWebGPU, "backend %q (want cpu or webgpu)", c.Backend)
	check(c.Encoder.Type != "", "encoder.type is empty")
	check(c.Encoder.NumToken >= 0, "encoder.num_token %d is negative", c.Encoder.NumToken)

	rnn := c.Encoder.RNN
	check(rnn.HiddenSize > 0, "encoder.lstm_cfg.hidden_size must be positive, got %d", rnn.HiddenSize)
	check(rnn.NumLayers > 0, "encoder.lstm_cfg.num_layers must be positive, got %d", rnn.NumLayers)
	check(rnn.Dropout >= 0 && rnn.Dropout < 1, "encoder.lstm_cfg.dropout %v outside [0, 1)", rnn.Dropout)
	if _, err := textenc.ParsePoolKind(c.Encoder.Output.Type); err != nil {
		errs = append(errs, fmt.Errorf("%w: encoder.output_cfg: %w", ErrInvalid, err))
	}

	if c.Embedding.Path == "" {
		check(c.Embedding.Dim > 0, "embedding.dim must be positive for a random table, got %d", c.Embedding.Dim)
	} else {
		check(c.Embedding.Tensor != "", "embedding.tensor is empty")
	}

	switch c.Tokenizer.Kind {
	case TokenizerWord:
		check(c.Embedding.Vocab != "" || c.Embedding.Path == "",
			"tokenizer word needs embedding.vocab alongside embedding.path")
	case TokenizerTikToken:
		check(c.Tokenizer.Encoding != "", "tokenizer.encoding is empty")
	default:
		check(false, "tokenizer.kind %q (want word or tiktoken)", c.Tokenizer.Kind)
	}
	check(c.Tokenizer.MaxTokens >= 0, "tokenizer.max_tokens %d is negative", c.Tokenizer.MaxTokens)

	return errors.Join(errs...)
}
