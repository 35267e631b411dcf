package nn

import (
	"fmt"

	"github.com/born-ml/gradbook/internal/tensor"
)

// StateDict returns the current values of m's parameters keyed by name.
// The tensors share storage with the parameters.
func StateDict(m Module) map[string]*tensor.RawTensor {
	params := m.Parameters()
	state := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		state[p.Name()] = p.Tensor().Value()
	}
	return state
}

// LoadStateDict copies values from state into m's parameters in place.
// Every parameter must be present with a matching shape; extra entries are
// rejected.
func LoadStateDict(m Module, state map[string]*tensor.RawTensor) error {
	params := m.Parameters()
	if len(state) != len(params) {
		return fmt.Errorf("state has %d tensors, model has %d parameters", len(state), len(params))
	}
	for _, p := range params {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("missing parameter %s", p.Name())
		}
		dst := p.Tensor()
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("parameter %s: shape %v does not match %v", p.Name(), src.Shape(), dst.Shape())
		}
		copy(dst.Data(), src.Data())
	}
	return nil
}
