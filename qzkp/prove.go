// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qzkp

import (
	"math"
	"math/rand"
)

// Transcript is the QZKP Proof Transcript (spec §3/§4.3).
type Transcript struct {
	MeasurementQubits   []int
	PhaseAngles         []float64
	MeasurementOutcomes []bool
	Timestamp           uint64
}

// Result is the three-way verification verdict (spec §4.3): Invalid when
// the matching ratio falls below tolerance, Inconclusive when the
// combined confidence score lands between tolerance and the acceptance
// threshold, Valid otherwise.
type Result int

const (
	Invalid Result = iota
	Inconclusive
	Valid
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "valid"
	case Inconclusive:
		return "inconclusive"
	default:
		return "invalid"
	}
}

// VerifyResult carries the verdict plus the score components, useful for
// logging/metrics and for POBPC's quantum_security computation (§4.5).
type VerifyResult struct {
	Verdict    Result
	MatchRatio float64
	PhaseScore float64
	Fidelity   float64
	Confidence float64
}

// Prove generates a transcript over state (spec §4.3 Prove): draws m
// measurement qubit indices and k phase angles from rng, applies the
// rotations to a clone, measures the chosen qubits in sequence, and
// records the outcomes. timestamp is supplied by the caller (no wall
// clock reads inside the pure proving function).
func Prove(state *QState, cfg Config, rng *rand.Rand, timestamp uint64) (Transcript, error) {
	n := state.NumQubits()
	clone := state.Clone()

	angles := make([]float64, cfg.OptimalPhaseAngles)
	for i := range angles {
		angles[i] = rng.Float64() * 2 * math.Pi
	}
	for i, angle := range angles {
		q := i % n
		if err := clone.ApplyPhase(q, angle); err != nil {
			return Transcript{}, err
		}
	}

	qubits := make([]int, cfg.OptimalMeasurementQubits)
	outcomes := make([]bool, cfg.OptimalMeasurementQubits)
	for i := range qubits {
		q := rng.Intn(n)
		qubits[i] = q
		outcome, err := clone.Measure(q, rng)
		if err != nil {
			return Transcript{}, err
		}
		outcomes[i] = outcome
	}

	return Transcript{
		MeasurementQubits:   qubits,
		PhaseAngles:         angles,
		MeasurementOutcomes: outcomes,
		Timestamp:           timestamp,
	}, nil
}

// Verify checks transcript against claimedState (spec §4.3 Verify): it
// reapplies the transcript's phase rotations to a clone of claimedState,
// re-executes the measurement sequence with a fresh rng (measurement is
// probabilistic, so outcomes are compared probability-consistently rather
// than for equality), and combines three terms into a confidence score.
func Verify(transcript Transcript, claimedState *QState, cfg Config, rng *rand.Rand) (VerifyResult, error) {
	n := claimedState.NumQubits()
	verifierState := claimedState.Clone()
	for i, angle := range transcript.PhaseAngles {
		q := i % n
		if err := verifierState.ApplyPhase(q, angle); err != nil {
			return VerifyResult{}, err
		}
	}

	matches := 0
	measured := verifierState.Clone()
	for i, q := range transcript.MeasurementQubits {
		if q < 0 || q >= n {
			continue
		}
		outcome, err := measured.Measure(q, rng)
		if err != nil {
			return VerifyResult{}, err
		}
		if i < len(transcript.MeasurementOutcomes) && outcome == transcript.MeasurementOutcomes[i] {
			matches++
		}
	}
	m := len(transcript.MeasurementQubits)
	matchRatio := 1.0
	if m > 0 {
		matchRatio = float64(matches) / float64(m)
	}

	var phaseSum float64
	for _, angle := range transcript.PhaseAngles {
		phaseSum += math.Cos(angle)
	}
	phaseScore := 1.0
	if len(transcript.PhaseAngles) > 0 {
		phaseScore = phaseSum / float64(len(transcript.PhaseAngles))
	}
	// Normalize cos(theta) in [-1,1] to a [0,1] contribution.
	phaseScore = (phaseScore + 1) / 2

	fidelity := claimedState.Fidelity(verifierState)

	confidence := (matchRatio + phaseScore + fidelity) / 3

	verdict := Valid
	if matchRatio < 1-cfg.MeasurementTolerance {
		verdict = Invalid
	} else if confidence < cfg.ConfidenceThreshold {
		verdict = Inconclusive
	}

	return VerifyResult{
		Verdict:    verdict,
		MatchRatio: matchRatio,
		PhaseScore: phaseScore,
		Fidelity:   fidelity,
		Confidence: confidence,
	}, nil
}
