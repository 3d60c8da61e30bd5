// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pobpc

import "github.com/qrollup/node/qzkp"

// QuantumSecurity combines a batch's entanglement and coherence scores
// with the verifier-side fidelity from QZKP verification (spec §4.5:
// "quantum_security = 0.3*entanglement + 0.3*coherence +
// 0.4*verifier_fidelity").
func QuantumSecurity(state *qzkp.QState, verifierFidelity float64) float64 {
	return 0.3*state.EntanglementScore() + 0.3*state.CoherenceScore() + 0.4*verifierFidelity
}

// ConsensusConfidence computes spec §4.5's confidence score:
// 0.6*quantum_security + 0.4*mean(reliability_of_signers). signerIDs are
// the witness IDs whose signatures verified in VerifyBatchProof.
func ConsensusConfidence(state *qzkp.QState, verifierFidelity float64, registry *Registry, signerIDs []string) float64 {
	qs := QuantumSecurity(state, verifierFidelity)

	if len(signerIDs) == 0 {
		return 0.6 * qs
	}
	var sum float64
	for _, id := range signerIDs {
		if w, ok := registry.Get(id); ok {
			sum += w.Reliability
		}
	}
	meanReliability := sum / float64(len(signerIDs))

	return 0.6*qs + 0.4*meanReliability
}

// ConfidenceFromOutcome computes ConsensusConfidence directly from a
// VerifyBatchProof result.
func ConfidenceFromOutcome(outcome VerificationOutcome, registry *Registry) float64 {
	return ConsensusConfidence(outcome.ConsensusState, outcome.Fidelity, registry, outcome.VerifiedWitnessIDs)
}
