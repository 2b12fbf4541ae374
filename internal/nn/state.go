package nn

import (
	"fmt"

	"github.com/born-ml/lanenc/internal/tensor"
)

// StateLoader is a module whose weights can be exported and restored by name.
type StateLoader interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(state map[string]*tensor.RawTensor) error
}

// loadInto copies state[key] into p after checking shape and dtype.
func loadInto[B tensor.Backend](p *Parameter[B], state map[string]*tensor.RawTensor, key string) error {
	raw, ok := state[key]
	if !ok {
		return fmt.Errorf("missing %s in state dict", key)
	}
	want := p.Tensor().Shape()
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", key, want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", key, raw.DType())
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}

// WithPrefix returns a copy of state with prefix prepended to every key.
func WithPrefix(prefix string, state map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, len(state))
	for k, v := range state {
		out[prefix+k] = v
	}
	return out
}

// Subset returns the entries of state whose key starts with prefix, with the
// prefix removed.
func Subset(prefix string, state map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for k, v := range state {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out
}
