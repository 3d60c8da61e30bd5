// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pobpc

import (
	"errors"

	"github.com/qrollup/node/qzkp"
)

// qzkpErrorTolerance bounds both the syndrome check (amplitude magnitude
// must not exceed 1+tolerance) and the post-recovery fidelity floor (spec
// §4.5: "Error correction (optional)").
const qzkpErrorTolerance = 1e-6

// ErrRecoveryFailed is returned when a flagged syndrome cannot be
// recovered to within qzkpErrorTolerance of the original state.
var ErrRecoveryFailed = errors.New("pobpc: quantum error recovery failed")

// ApplyErrorCorrection runs a syndrome check over state: if any amplitude
// magnitude exceeds 1+tolerance, it applies the recovery gate (here,
// renormalization — the only correction a linear amplitude vector admits
// without a concrete error model) and re-verifies fidelity against the
// original state. Returns the (possibly corrected) state and a non-nil
// errorData blob recording that recovery ran, or ErrRecoveryFailed if
// recovery did not restore sufficient fidelity.
func ApplyErrorCorrection(state *qzkp.QState, tolerance float64) (*qzkp.QState, []byte, error) {
	flagged := false
	for _, a := range state.Amplitudes() {
		m := real(a)*real(a) + imag(a)*imag(a)
		if m > (1+tolerance)*(1+tolerance) {
			flagged = true
			break
		}
	}
	if !flagged {
		return state, nil, nil
	}

	recovered := state.Clone()
	recovered.Renormalize()

	if recovered.Fidelity(state) < 1-tolerance {
		return nil, nil, ErrRecoveryFailed
	}
	return recovered, []byte("syndrome-recovered"), nil
}
