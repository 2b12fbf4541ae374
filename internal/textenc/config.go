package textenc

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/nn"
)

// CellGRU is the only supported recurrent cell kind.
const CellGRU = "gru"

// RNNConfig holds the recurrent layer settings. Field names mirror the
// configuration files the encoder is usually built from.
type RNNConfig struct {
	Type          string  `yaml:"type"`
	NumLayers     int     `yaml:"num_layers"`
	Dropout       float32 `yaml:"dropout"`
	HiddenSize    int     `yaml:"hidden_size"`
	Bias          bool    `yaml:"bias"`
	Bidirectional bool    `yaml:"bidirectional"`
	BatchFirst    bool    `yaml:"batch_first"`
}

// DefaultRNNConfig returns a single bidirectional GRU layer of 512 units.
func DefaultRNNConfig() RNNConfig {
	return RNNConfig{
		Type:          CellGRU,
		NumLayers:     1,
		Dropout:       0,
		HiddenSize:    512,
		Bias:          true,
		Bidirectional: true,
		BatchFirst:    true,
	}
}

// NumDirections is 2 for bidirectional layers, 1 otherwise.
func (c RNNConfig) NumDirections() int {
	if c.Bidirectional {
		return 2
	}
	return 1
}

func (c RNNConfig) gru(inputSize int) nn.GRUConfig {
	return nn.GRUConfig{
		InputSize:     inputSize,
		HiddenSize:    c.HiddenSize,
		NumLayers:     c.NumLayers,
		Bias:          c.Bias,
		Bidirectional: c.Bidirectional,
		BatchFirst:    c.BatchFirst,
		Dropout:       c.Dropout,
	}
}

// OutputConfig selects the pooling strategy by name.
type OutputConfig struct {
	Type string `yaml:"type"`
}

// DefaultOutputConfig selects max pooling.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{Type: PoolMax.String()}
}

// PoolKind is the closed set of pooling strategies.
type PoolKind int

const (
	// PoolMean averages per-token outputs over non-padded positions.
	PoolMean PoolKind = iota
	// PoolMax takes the element-wise maximum over non-padded positions.
	PoolMax
	// PoolFinalState concatenates the final hidden state of every layer and
	// direction. Its configuration name is "default".
	PoolFinalState
)

func (k PoolKind) String() string {
	switch k {
	case PoolMean:
		return "mean"
	case PoolMax:
		return "max"
	case PoolFinalState:
		return "default"
	default:
		return fmt.Sprintf("PoolKind(%d)", int(k))
	}
}

// ParsePoolKind maps a configuration name to a PoolKind.
func ParsePoolKind(name string) (PoolKind, error) {
	switch name {
	case "mean":
		return PoolMean, nil
	case "max":
		return PoolMax, nil
	case "default":
		return PoolFinalState, nil
	default:
		return 0, fmt.Errorf("%w %q (want mean, max or default)", ErrUnsupportedPooling, name)
	}
}
