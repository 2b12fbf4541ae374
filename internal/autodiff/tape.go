package autodiff

import (
	"github.com/born-ml/lanenc/internal/autodiff/ops"
	"github.com/born-ml/lanenc/internal/tensor"
)

// GradientTape records operations during the forward pass and replays them
// in reverse to compute gradients.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates an empty, stopped tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{operations: make([]ops.Operation, 0, 64)}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording reports whether operations are being recorded.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends op while recording; otherwise it is dropped.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear removes all recorded operations. The recording state is kept.
func (t *GradientTape) Clear() {
	clear(t.operations)
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward seeds output with outputGrad and walks the tape in reverse,
// accumulating gradients for tensors used more than once. Operations that
// received no gradient are skipped. Recording is suspended meanwhile.
func (t *GradientTape) Backward(output, outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: outputGrad}

	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		inputGrads := t.inputGrads(op, grads, backend)
		if inputGrads == nil {
			continue
		}
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}

func (t *GradientTape) inputGrads(op ops.Operation, grads map[*tensor.RawTensor]*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	multi, ok := op.(ops.MultiOutputOperation)
	if !ok {
		g, has := grads[op.Output()]
		if !has {
			return nil
		}
		return op.Backward(g, backend)
	}

	outputs := multi.Outputs()
	outputGrads := make([]*tensor.RawTensor, len(outputs))
	received := false
	for j, out := range outputs {
		if g, has := grads[out]; has {
			outputGrads[j] = g
			received = true
		}
	}
	if !received {
		return nil
	}
	for j, out := range outputs {
		if outputGrads[j] == nil {
			outputGrads[j] = tensor.MustRaw(out.Shape(), out.DType(), backend.Device())
		}
	}
	return multi.BackwardMulti(outputGrads, backend)
}
