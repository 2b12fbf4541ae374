package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/lanenc/internal/tensor"
)

// GRUConfig describes a stack of gated recurrent layers.
type GRUConfig struct {
	InputSize     int
	HiddenSize    int
	NumLayers     int
	Bias          bool
	Bidirectional bool
	// BatchFirst selects (batch, time, feature) layout for inputs and
	// outputs; otherwise (time, batch, feature).
	BatchFirst bool
	// Dropout is applied to the outputs of every layer except the last,
	// in training mode only.
	Dropout float32
}

// NumDirections is 2 for bidirectional layers, 1 otherwise.
func (c GRUConfig) NumDirections() int {
	if c.Bidirectional {
		return 2
	}
	return 1
}

// Validate checks sizes and the dropout probability.
func (c GRUConfig) Validate() error {
	var errs []error
	if c.InputSize <= 0 {
		errs = append(errs, fmt.Errorf("input size must be positive, got %d", c.InputSize))
	}
	if c.HiddenSize <= 0 {
		errs = append(errs, fmt.Errorf("hidden size must be positive, got %d", c.HiddenSize))
	}
	if c.NumLayers <= 0 {
		errs = append(errs, fmt.Errorf("number of layers must be positive, got %d", c.NumLayers))
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		errs = append(errs, fmt.Errorf("dropout %v out of range [0, 1)", c.Dropout))
	}
	return errors.Join(errs...)
}

// gruCell holds the weights of one layer in one direction. Gate rows are
// stacked in reset, update, candidate order.
type gruCell[B tensor.Backend] struct {
	weightIH *Parameter[B] // [3H, in]
	weightHH *Parameter[B] // [3H, H]
	biasIH   *Parameter[B] // [3H] or nil
	biasHH   *Parameter[B] // [3H] or nil
	hidden   int
}

// GRU is a multi-layer gated recurrent unit:
//
//	r  = σ(W_ir x + b_ir + W_hr h + b_hr)
//	z  = σ(W_iz x + b_iz + W_hz h + b_hz)
//	n  = tanh(W_in x + b_in + r ⊙ (W_hn h + b_hn))
//	h' = (1 - z) ⊙ n + z ⊙ h
//
// with h₀ = 0. Parameter names follow the usual weight_ih_l{k}[_reverse]
// convention so state dicts interoperate with other frameworks.
type GRU[B tensor.Backend] struct {
	cfg     GRUConfig
	cells   [][]*gruCell[B] // [layer][direction]
	dropout *Dropout[B]
	backend B
}

// NewGRU creates a GRU with every weight and bias drawn from U(-k, k),
// k = 1/√HiddenSize. A nil rng uses the global source.
func NewGRU[B tensor.Backend](cfg GRUConfig, rng *rand.Rand, backend B) (*GRU[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gru: %w", err)
	}
	dropout, err := NewDropout[B](cfg.Dropout, rng)
	if err != nil {
		return nil, fmt.Errorf("gru: %w", err)
	}

	h := cfg.HiddenSize
	bound := 1 / math.Sqrt(float64(h))
	dirs := cfg.NumDirections()

	cells := make([][]*gruCell[B], cfg.NumLayers)
	for layer := range cells {
		in := cfg.InputSize
		if layer > 0 {
			in = h * dirs
		}
		cells[layer] = make([]*gruCell[B], dirs)
		for d := range cells[layer] {
			suffix := fmt.Sprintf("_l%d", layer)
			if d == 1 {
				suffix += "_reverse"
			}
			c := &gruCell[B]{
				weightIH: NewParameter[B]("weight_ih"+suffix, Uniform(tensor.Shape{3 * h, in}, bound, rng, backend)),
				weightHH: NewParameter[B]("weight_hh"+suffix, Uniform(tensor.Shape{3 * h, h}, bound, rng, backend)),
				hidden:   h,
			}
			if cfg.Bias {
				c.biasIH = NewParameter[B]("bias_ih"+suffix, Uniform(tensor.Shape{3 * h}, bound, rng, backend))
				c.biasHH = NewParameter[B]("bias_hh"+suffix, Uniform(tensor.Shape{3 * h}, bound, rng, backend))
			}
			cells[layer][d] = c
		}
	}

	return &GRU[B]{cfg: cfg, cells: cells, dropout: dropout, backend: backend}, nil
}

// Config returns the layer configuration.
func (g *GRU[B]) Config() GRUConfig {
	return g.cfg
}

// Forward runs the stack over input and returns the last layer's outputs for
// every time step and the final hidden state of every layer and direction.
//
//	input:  [batch, T, in]       (BatchFirst) or [T, batch, in]
//	output: [batch, T, D·H]      (BatchFirst) or [T, batch, D·H]
//	hN:     [L·D, batch, H]      ordered layer-major, forward before reverse
func (g *GRU[B]) Forward(input *tensor.Tensor[float32, B]) (output, hN *tensor.Tensor[float32, B]) {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != g.cfg.InputSize {
		panic(fmt.Sprintf("gru: expected 3D input with feature size %d, got %v", g.cfg.InputSize, shape))
	}

	x := input
	if !g.cfg.BatchFirst {
		x = x.Transpose(1, 0, 2)
	}

	finals := make([]*tensor.Tensor[float32, B], 0, len(g.cells)*g.cfg.NumDirections())
	for layer, dirs := range g.cells {
		outs := make([]*tensor.Tensor[float32, B], len(dirs))
		for d, cell := range dirs {
			var last *tensor.Tensor[float32, B]
			outs[d], last = cell.run(x, d == 1, g.backend)
			finals = append(finals, last.Unsqueeze(0))
		}
		x = outs[0]
		if len(outs) > 1 {
			x = tensor.Cat(outs, 2)
		}
		if layer < len(g.cells)-1 {
			x = g.dropout.Forward(x)
		}
	}

	if !g.cfg.BatchFirst {
		x = x.Transpose(1, 0, 2)
	}
	return x, tensor.Cat(finals, 0)
}

// run scans x [batch, T, in] forwards or backwards and returns the hidden
// state at every step [batch, T, H] (in input order) and the last one.
func (c *gruCell[B]) run(x *tensor.Tensor[float32, B], reverse bool, backend B) (out, last *tensor.Tensor[float32, B]) {
	shape := x.Shape()
	batch, steps, in := shape[0], shape[1], shape[2]
	h3 := 3 * c.hidden

	// Input projections for all steps in one product.
	gi := x.Reshape(batch*steps, in).MatMul(c.weightIH.Tensor().T())
	if c.biasIH != nil {
		gi = gi.Add(c.biasIH.Tensor())
	}
	perStep := gi.Reshape(batch, steps, h3).Chunk(steps, 1)

	whT := c.weightHH.Tensor().T()
	h := Zeros(tensor.Shape{batch, c.hidden}, backend)
	outs := make([]*tensor.Tensor[float32, B], steps)

	for s := 0; s < steps; s++ {
		t := s
		if reverse {
			t = steps - 1 - s
		}
		xg := perStep[t].Squeeze(1).Chunk(3, 1)
		gh := h.MatMul(whT)
		if c.biasHH != nil {
			gh = gh.Add(c.biasHH.Tensor())
		}
		hg := gh.Chunk(3, 1)

		r := xg[0].Add(hg[0]).Sigmoid()
		z := xg[1].Add(hg[1]).Sigmoid()
		n := xg[2].Add(r.Mul(hg[2])).Tanh()
		h = n.Add(z.Mul(h.Sub(n)))
		outs[t] = h.Unsqueeze(1)
	}

	return tensor.Cat(outs, 1), h
}

func (c *gruCell[B]) parameters() []*Parameter[B] {
	params := []*Parameter[B]{c.weightIH, c.weightHH}
	if c.biasIH != nil {
		params = append(params, c.biasIH, c.biasHH)
	}
	return params
}

// Parameters returns all weights, layer by layer.
func (g *GRU[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, dirs := range g.cells {
		for _, c := range dirs {
			params = append(params, c.parameters()...)
		}
	}
	return params
}

// Train switches dropout between training and evaluation mode.
func (g *GRU[B]) Train(training bool) {
	g.dropout.Train(training)
}

// Training reports whether the layer is in training mode.
func (g *GRU[B]) Training() bool {
	return g.dropout.Training()
}

// StateDict returns every parameter keyed by name.
func (g *GRU[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for _, p := range g.Parameters() {
		state[p.Name()] = p.Tensor().Raw()
	}
	return state
}

// LoadStateDict copies matching entries into the parameters. Every parameter
// must be present with the right shape.
func (g *GRU[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for _, p := range g.Parameters() {
		if err := loadInto(p, state, p.Name()); err != nil {
			return fmt.Errorf("gru: %w", err)
		}
	}
	return nil
}
