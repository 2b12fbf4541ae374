package optim_test

import (
	"testing"

	"github.com/born-ml/lanenc/internal/autodiff"
	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/nn"
	"github.com/born-ml/lanenc/internal/optim"
	"github.com/born-ml/lanenc/internal/tensor"
)

func TestSGDStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	w := nn.NewParameter("w", tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend))
	frozen := nn.NewParameter("frozen", tensor.MustFromSlice([]float32{3, 4}, tensor.Shape{2}, backend))
	frozen.Freeze()

	backend.Tape().StartRecording()
	// d/dw sum(w*w + frozen*frozen) = 2w
	y := w.Tensor().Mul(w.Tensor()).Add(frozen.Tensor().Mul(frozen.Tensor()))
	grads := autodiff.Backward(y, backend)
	backend.Tape().StopRecording()

	opt := optim.NewSGD([]*nn.Parameter[*autodiff.AutodiffBackend[*cpu.CPUBackend]]{w, frozen}, optim.SGDConfig{LR: 0.5}, backend)
	opt.Step(grads)

	if got := w.Tensor().Data(); got[0] != 0 || got[1] != 0 {
		t.Errorf("w after step = %v, want [0 0]", got)
	}
	if got := frozen.Tensor().Data(); got[0] != 3 || got[1] != 4 {
		t.Errorf("frozen parameter changed to %v", got)
	}
	if w.Grad() == nil {
		t.Error("Step should record the gradient on the parameter")
	}

	opt.ZeroGrad()
	if w.Grad() != nil {
		t.Error("ZeroGrad should clear gradients")
	}
	if opt.GetLR() != 0.5 {
		t.Errorf("GetLR = %v", opt.GetLR())
	}
}

func TestSGDMomentum(t *testing.T) {
	backend := cpu.New()
	w := nn.NewParameter("w", tensor.MustFromSlice([]float32{0}, tensor.Shape{1}, backend))
	grad := tensor.MustRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	grad.AsFloat32()[0] = 1
	grads := map[*tensor.RawTensor]*tensor.RawTensor{w.Tensor().Raw(): grad}

	opt := optim.NewSGD([]*nn.Parameter[*cpu.CPUBackend]{w}, optim.SGDConfig{LR: 1, Momentum: 0.5}, backend)
	opt.Step(grads) // v = 1,   w = -1
	opt.Step(grads) // v = 1.5, w = -2.5
	if got := w.Tensor().Data()[0]; got != -2.5 {
		t.Errorf("w = %v, want -2.5", got)
	}
}
