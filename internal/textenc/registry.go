package textenc

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

// LanguageEncoder is the contract shared by every registered encoder.
type LanguageEncoder[B tensor.Backend] interface {
	nn.Module[B]
	Forward(indices *tensor.Tensor[int32, B]) (*Output[B], error)
	Train(training bool)
	OutputDim() int
}

// Spec carries everything a Builder needs.
type Spec[B tensor.Backend] struct {
	Type            string
	NumToken        int
	WordEmbedding   *tensor.Tensor[float32, B]
	RNN             RNNConfig
	Output          OutputConfig
	FreezeEmbedding bool
	Rand            *rand.Rand
}

// Builder constructs an encoder from a Spec.
type Builder[B tensor.Backend] func(spec Spec[B], backend B) (LanguageEncoder[B], error)

// Registry maps encoder type names to builders. Names are case-insensitive.
// A Registry is safe for concurrent use.
type Registry[B tensor.Backend] struct {
	mu       sync.RWMutex
	builders map[string]Builder[B]
}

// NewRegistry returns an empty registry.
func NewRegistry[B tensor.Backend]() *Registry[B] {
	return &Registry[B]{builders: make(map[string]Builder[B])}
}

// Register adds a builder under name. Registering a name twice is an error.
func (r *Registry[B]) Register(name string, build Builder[B]) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || build == nil {
		return fmt.Errorf("textenc: register %q: empty name or nil builder", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builders[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEncoder, key)
	}
	r.builders[key] = build
	return nil
}

// Build constructs the encoder named by spec.Type.
func (r *Registry[B]) Build(spec Spec[B], backend B) (LanguageEncoder[B], error) {
	key := strings.ToLower(strings.TrimSpace(spec.Type))

	r.mu.RLock()
	build, ok := r.builders[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownEncoder, spec.Type, strings.Join(r.Names(), ", "))
	}
	return build(spec, backend)
}

// Names returns the registered names in sorted order.
func (r *Registry[B]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for k := range r.builders {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins adds the recurrent encoder under "rnn" and its historical
// alias "lstm".
func RegisterBuiltins[B tensor.Backend](r *Registry[B]) error {
	for _, name := range []string{"rnn", "lstm"} {
		if err := r.Register(name, buildRecurrent[B]); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a registry holding the built-in encoders.
func DefaultRegistry[B tensor.Backend]() *Registry[B] {
	r := NewRegistry[B]()
	if err := RegisterBuiltins(r); err != nil {
		panic(err) // fresh registry cannot hold duplicates
	}
	return r
}

func buildRecurrent[B tensor.Backend](spec Spec[B], backend B) (LanguageEncoder[B], error) {
	var opts []Option
	if spec.Rand != nil {
		opts = append(opts, WithRand(spec.Rand))
	}
	return New(spec.NumToken, spec.WordEmbedding, spec.RNN, spec.Output, spec.FreezeEmbedding, backend, opts...)
}
