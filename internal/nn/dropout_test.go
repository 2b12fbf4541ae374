package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/tensor"
)

func TestDropout(t *testing.T) {
	backend := cpu.New()
	x := tensor.Full[float32](tensor.Shape{1000}, 2, backend)

	d, err := nn.NewDropout[*cpu.CPUBackend](0.5, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	if !d.Training() {
		t.Fatal("dropout should start in training mode")
	}

	out := d.Forward(x).Data()
	zeros := 0
	for _, v := range out {
		switch v {
		case 0:
			zeros++
		case 4:
		default:
			t.Fatalf("unexpected value %v, want 0 or 4", v)
		}
	}
	if zeros < 400 || zeros > 600 {
		t.Errorf("%d of 1000 zeroed, want about half", zeros)
	}

	d.Train(false)
	if got := d.Forward(x); got != x {
		t.Error("evaluation mode should return the input unchanged")
	}
}

func TestDropoutInvalidProbability(t *testing.T) {
	for _, p := range []float32{-0.1, 1, 1.5} {
		if _, err := nn.NewDropout[*cpu.CPUBackend](p, nil); err == nil {
			t.Errorf("p=%v: expected error", p)
		}
	}
}
