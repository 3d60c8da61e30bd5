// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qzkp

import "math"

// EncodeBytes builds the amplitude-per-byte commitment used by the
// rollup batch proof (spec §4.4 step 6) and the POBPC consensus and
// witness states: dimension is the next power-of-two qubit count
// covering len(data) amplitudes, amplitude_i = data[i]/255 for i <
// len(data) and 0 beyond, then normalized.
func EncodeBytes(data []byte) (*QState, error) {
	n := MinQubits
	for (1 << uint(n)) < len(data) && n < MaxQubits {
		n++
	}
	amps := make([]complex128, 1<<uint(n))
	for i, b := range data {
		amps[i] = complex(float64(b)/255, 0)
	}
	return NewFromAmplitudes(amps)
}

// DifferenceState returns the QState encoding of the element-wise
// difference between two equal-length byte sequences, used by the
// fraud-proof state-diff commitment (spec §4.7: "encode the state
// difference as a QState"). Each difference is mapped to (a-b)/255 + 0.5,
// a value in [-0.5, 1.5], before L2-normalization; negative values remain
// negative real amplitudes.
func DifferenceState(a, b []byte) (*QState, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	diffs := make([]float64, n)
	var get = func(buf []byte, i int) float64 {
		if i < len(buf) {
			return float64(buf[i])
		}
		return 0
	}
	for i := 0; i < n; i++ {
		diffs[i] = (get(a, i)-get(b, i))/255 + 0.5
	}

	qubits := MinQubits
	for (1 << uint(qubits)) < n && qubits < MaxQubits {
		qubits++
	}
	amps := make([]complex128, 1<<uint(qubits))
	for i, d := range diffs {
		amps[i] = complex(d, 0)
	}
	return NewFromAmplitudes(amps)
}

// DifferenceNorm computes the L2 norm of the raw (pre-normalization)
// difference vector between a and b, used by fraud-proof detection (spec
// §4.7 step iii): "non-trivial norm" indicates the submitter's claimed
// post-state differs from a correct replay.
func DifferenceNorm(a, b []byte) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}
