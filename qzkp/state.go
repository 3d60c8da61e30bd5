// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qzkp implements the Amplitude Vector (QState, C1) and the QZKP
// Prover/Verifier (C2): a commitment-and-measurement proof system over
// finite-dimensional complex vectors. Naming here ("quantum", "phase",
// "entanglement") is purely algebraic vocabulary for a linear-algebra
// commitment scheme, the same convention the teacher's photon/wave/nova
// consensus-family packages use for ordinary polling algorithms — no
// quantum hardware is simulated (spec Non-goal iii).
package qzkp

import (
	"encoding/binary"
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
)

// MinQubits and MaxQubits bound the amplitude-vector dimension, carried
// from the C++ origin's QZKPGenerator (MIN_QUBITS=8, MAX_QUBITS=1024).
const (
	MinQubits = 8
	MaxQubits = 1024
)

// NormTolerance is the maximum allowed deviation of a QState's L2 norm
// from 1 before an operation is considered to have broken normalization
// (spec §3: "all operations preserve normalization up to numerical
// tolerance < 1e-10").
const NormTolerance = 1e-10

var (
	// ErrQubitCountOutOfRange is returned when n is outside [MinQubits,
	// MaxQubits].
	ErrQubitCountOutOfRange = errors.New("qzkp: qubit count out of range")
	// ErrQubitIndexOutOfRange is returned when a qubit index is >= NumQubits.
	ErrQubitIndexOutOfRange = errors.New("qzkp: qubit index out of range")
	// ErrNotNormalized is returned when a QState's norm has drifted beyond
	// NormTolerance.
	ErrNotNormalized = errors.New("qzkp: state is not normalized")
)

// QState is a normalized complex amplitude vector of dimension 2^n (spec
// §3). Gate and measurement methods mutate the receiver in place; callers
// that need to keep the original take a copy with Clone first, as Prove
// and Verify do.
type QState struct {
	numQubits  int
	amplitudes []complex128
}

// NewZeroState returns |0...0> for n qubits.
func NewZeroState(n int) (*QState, error) {
	if n < MinQubits || n > MaxQubits {
		return nil, ErrQubitCountOutOfRange
	}
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &QState{numQubits: n, amplitudes: amps}, nil
}

// NewFromAmplitudes builds a QState from a caller-provided amplitude
// slice (length must be a power of two within range) and normalizes it.
func NewFromAmplitudes(amps []complex128) (*QState, error) {
	n := bitLen(len(amps))
	if 1<<uint(n) != len(amps) || n < MinQubits || n > MaxQubits {
		return nil, ErrQubitCountOutOfRange
	}
	s := &QState{numQubits: n, amplitudes: append([]complex128(nil), amps...)}
	s.normalize()
	return s, nil
}

func bitLen(v int) int {
	n := 0
	for (1 << uint(n)) < v {
		n++
	}
	return n
}

// NumQubits returns n, where the state has dimension 2^n.
func (s *QState) NumQubits() int { return s.numQubits }

// Dim returns 2^n, the amplitude-vector length.
func (s *QState) Dim() int { return len(s.amplitudes) }

// Amplitudes returns a copy of the underlying amplitude vector.
func (s *QState) Amplitudes() []complex128 {
	return append([]complex128(nil), s.amplitudes...)
}

// Clone returns an independent deep copy.
func (s *QState) Clone() *QState {
	return &QState{numQubits: s.numQubits, amplitudes: append([]complex128(nil), s.amplitudes...)}
}

// Norm returns the L2 norm of the amplitude vector.
func (s *QState) Norm() float64 {
	var sum float64
	for _, a := range s.amplitudes {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// CheckNormalized reports ErrNotNormalized if the state has drifted
// outside NormTolerance of unit norm.
func (s *QState) CheckNormalized() error {
	if math.Abs(s.Norm()-1) > NormTolerance {
		return ErrNotNormalized
	}
	return nil
}

// Renormalize rescales the amplitude vector back to unit L2 norm, used by
// error-correction recovery (spec §4.5) when a syndrome check flags drift.
func (s *QState) Renormalize() {
	s.normalize()
}

func (s *QState) normalize() {
	n := s.Norm()
	if n == 0 {
		return
	}
	for i := range s.amplitudes {
		s.amplitudes[i] /= complex(n, 0)
	}
}

// ApplyPhase multiplies every amplitude of a basis state with bit q=1 by
// e^{i*angle} (spec §4.3).
func (s *QState) ApplyPhase(q int, angle float64) error {
	if q < 0 || q >= s.numQubits {
		return ErrQubitIndexOutOfRange
	}
	factor := cmplx.Exp(complex(0, angle))
	mask := 1 << uint(q)
	for i := range s.amplitudes {
		if i&mask != 0 {
			s.amplitudes[i] *= factor
		}
	}
	return nil
}

// ApplyHadamard applies the single-qubit Hadamard transform to qubit q.
func (s *QState) ApplyHadamard(q int) error {
	h := [2][2]complex128{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	return s.ApplyGate(h, q)
}

// ApplyGate applies an arbitrary single-qubit 2x2 complex gate to qubit q.
func (s *QState) ApplyGate(gate [2][2]complex128, q int) error {
	if q < 0 || q >= s.numQubits {
		return ErrQubitIndexOutOfRange
	}
	mask := 1 << uint(q)
	for i := 0; i < len(s.amplitudes); i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := s.amplitudes[i], s.amplitudes[j]
		s.amplitudes[i] = gate[0][0]*a0 + gate[0][1]*a1
		s.amplitudes[j] = gate[1][0]*a0 + gate[1][1]*a1
	}
	return nil
}

// ApplyPauliX flips qubit q (the quantum NOT gate), used by the
// emergency-exit encoding (C10) to inject classical bits into |0...0>
// before entangling them.
func (s *QState) ApplyPauliX(q int) error {
	x := [2][2]complex128{
		{0, 1},
		{1, 0},
	}
	return s.ApplyGate(x, q)
}

// ApplyCNOT applies a controlled-NOT with control qubit c and target
// qubit t: swaps amplitudes of basis states differing only in bit t,
// restricted to the subspace where bit c is 1.
func (s *QState) ApplyCNOT(c, t int) error {
	if c < 0 || c >= s.numQubits || t < 0 || t >= s.numQubits || c == t {
		return ErrQubitIndexOutOfRange
	}
	cMask := 1 << uint(c)
	tMask := 1 << uint(t)
	for i := 0; i < len(s.amplitudes); i++ {
		if i&cMask == 0 || i&tMask != 0 {
			continue
		}
		j := i | tMask
		s.amplitudes[i], s.amplitudes[j] = s.amplitudes[j], s.amplitudes[i]
	}
	return nil
}

// Measure samples a Bernoulli outcome for qubit q with p = sum of
// |amplitude|^2 over basis states with bit q=1, collapses the state to
// the observed branch, and renormalizes (spec §4.3). rng must be supplied
// by the caller for reproducibility.
func (s *QState) Measure(q int, rng *rand.Rand) (bool, error) {
	if q < 0 || q >= s.numQubits {
		return false, ErrQubitIndexOutOfRange
	}
	mask := 1 << uint(q)
	var p1 float64
	for i, a := range s.amplitudes {
		if i&mask != 0 {
			p1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	outcome := rng.Float64() < p1

	for i := range s.amplitudes {
		bitSet := i&mask != 0
		if bitSet != outcome {
			s.amplitudes[i] = 0
		}
	}
	s.normalize()
	return outcome, nil
}

// CoherenceScore returns a normalized measure of off-diagonal density-matrix
// mass, sum_{i!=j} |a_i||a_j| / (dim-1), clamped to [0,1]. Since the
// density-matrix entry rho_ij = a_i * conj(a_j) has |rho_ij| = |a_i||a_j|,
// the full sum collapses to (sum|a_i|)^2 - sum|a_i|^2 without materializing
// the dim x dim matrix (spec §4.5's quantum_security term; the consensus
// QState's dimension scales with batch size, so an O(dim^2) matrix is not
// an option here).
func (s *QState) CoherenceScore() float64 {
	dim := len(s.amplitudes)
	if dim < 2 {
		return 0
	}
	var sumAbs, sumAbs2 float64
	for _, a := range s.amplitudes {
		m := cmplx.Abs(a)
		sumAbs += m
		sumAbs2 += m * m
	}
	raw := sumAbs*sumAbs - sumAbs2
	score := raw / float64(dim-1)
	return clamp01(score)
}

// EntanglementScore returns 1 minus the inverse participation ratio
// (sum|a_i|^4), a standard delocalization proxy: 0 for a basis state (no
// superposition), approaching 1 as amplitude mass spreads evenly across
// the full dimension. Used as the "entanglement" term of spec §4.5's
// quantum_security score.
func (s *QState) EntanglementScore() float64 {
	var ipr float64
	for _, a := range s.amplitudes {
		p := real(a)*real(a) + imag(a)*imag(a)
		ipr += p * p
	}
	return clamp01(1 - ipr)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DigestBytes byte-dumps the amplitude vector as IEEE-754 little-endian
// real,imag pairs (16 bytes per amplitude), the canonical commitment used
// for a state_root (spec §4.8) or as key material derived from a
// consensus QState (spec §4.5).
func (s *QState) DigestBytes() []byte {
	out := make([]byte, 0, 16*len(s.amplitudes))
	var buf [8]byte
	for _, a := range s.amplitudes {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(real(a)))
		out = append(out, buf[:]...)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(imag(a)))
		out = append(out, buf[:]...)
	}
	return out
}

// Fidelity returns |<s|other>|^2, the squared magnitude of the inner
// product between two same-dimension states (spec §4.3 verification
// step).
func (s *QState) Fidelity(other *QState) float64 {
	if len(s.amplitudes) != len(other.amplitudes) {
		return 0
	}
	var inner complex128
	for i := range s.amplitudes {
		inner += cmplx.Conj(s.amplitudes[i]) * other.amplitudes[i]
	}
	mag := cmplx.Abs(inner)
	return mag * mag
}
