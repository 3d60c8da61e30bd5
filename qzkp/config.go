// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qzkp

import "fmt"

// Config parameterizes Prove/Verify (spec §4.3). Defaults mirror the C++
// origin's QZKPGenerator: measurement tolerance 0.1 (10%), confidence
// threshold 0.95.
type Config struct {
	// OptimalMeasurementQubits is m, the number of measurement qubit
	// indices drawn (with replacement) per proof.
	OptimalMeasurementQubits int
	// OptimalPhaseAngles is k, the number of phase rotations applied
	// before measurement.
	OptimalPhaseAngles int
	// MeasurementTolerance is the maximum allowed fraction of mismatched
	// measurement outcomes before a proof is Invalid.
	MeasurementTolerance float64
	// ConfidenceThreshold is the minimum combined confidence score
	// required to accept a proof as Valid.
	ConfidenceThreshold float64
}

// DefaultConfig returns the spec-default QZKP parameters.
func DefaultConfig() Config {
	return Config{
		OptimalMeasurementQubits: 16,
		OptimalPhaseAngles:       8,
		MeasurementTolerance:     0.10,
		ConfidenceThreshold:      0.95,
	}
}

// Valid reports whether c's fields are internally consistent.
func (c Config) Valid() error {
	if c.OptimalMeasurementQubits <= 0 {
		return fmt.Errorf("qzkp: optimal_measurement_qubits must be positive")
	}
	if c.OptimalPhaseAngles <= 0 {
		return fmt.Errorf("qzkp: optimal_phase_angles must be positive")
	}
	if c.MeasurementTolerance < 0 || c.MeasurementTolerance > 1 {
		return fmt.Errorf("qzkp: measurement_tolerance must be in [0,1]")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("qzkp: confidence_threshold must be in [0,1]")
	}
	return nil
}
