// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge defines the L1 Bridge interface (C12): submitting state
// commitments and fraud proofs to an L1 contract, and observing deposit/
// withdrawal events from it. The core depends only on this interface
// (spec §1 lists the L1 RPC client as an external collaborator); bridge
// also ships an in-memory implementation that enforces the same
// commitment-verification rule a real contract would, so the rest of the
// node and its tests can exercise the full submit/verify path without a
// live L1 node.
package bridge

import (
	"errors"
	"sync"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/internal/hashid"
)

// Errors returned by L1Bridge implementations.
var (
	ErrInvalidCommitment = errors.New("bridge: aggregated proof does not match BLAKE3(state_root || batch_hash)")
	ErrEmergencyMode      = errors.New("bridge: contract is in emergency shutdown")
)

// Commitment is the state commitment submitted to the L1 contract for a
// single batch (spec §6).
type Commitment struct {
	StateRoot       hashid.ID
	BatchHash       hashid.ID
	BatchSize       uint64
	AggregatedProof []byte
}

// DepositEvent is an L1-to-L2 deposit observed on the bridge contract.
type DepositEvent struct {
	L1Address account.Address
	L2Address account.Address
	Amount    uint64
	Timestamp uint64
}

// WithdrawalEvent is an L2-to-L1 withdrawal requested against a committed
// state root.
type WithdrawalEvent struct {
	L2Address account.Address
	L1Address account.Address
	Amount    uint64
	Timestamp uint64
}

// L1Bridge is the node's view of the L1 anchoring contract (C12).
type L1Bridge interface {
	// SubmitCommitment anchors a batch's state commitment on L1. The
	// contract verifier accepts it iff c.AggregatedProof's prefix equals
	// BLAKE3(state_root || batch_hash).
	SubmitCommitment(c Commitment) error

	// GetPendingDeposits returns deposits observed on L1 not yet credited
	// on L2.
	GetPendingDeposits() ([]DepositEvent, error)

	// ProcessWithdrawal settles a withdrawal request against a committed
	// state root.
	ProcessWithdrawal(w WithdrawalEvent) error

	// SubmitFraudProof submits a serialized InvalidTransitionProof plus the
	// correct state snapshot to contest a prior commitment.
	SubmitFraudProof(invalidProof []byte, correctStateSnapshot []byte) error

	// TriggerEmergencyShutdown halts further commitments, putting the
	// contract (and, transitively, the node) into emergency mode.
	TriggerEmergencyShutdown() error

	// IsEmergencyMode reports whether the contract is currently halted.
	IsEmergencyMode() bool
}

// VerifyCommitment implements the contract-side acceptance rule from
// spec §6: aggregated_proof's prefix must equal BLAKE3(state_root ||
// batch_hash). Shared by every L1Bridge implementation so the rule is
// defined exactly once.
func VerifyCommitment(c Commitment) bool {
	expected := hashid.Sum(hashid.Bytes(c.StateRoot), hashid.Bytes(c.BatchHash))
	expectedBytes := hashid.Bytes(expected)
	if len(c.AggregatedProof) < len(expectedBytes) {
		return false
	}
	return equalPrefix(c.AggregatedProof, expectedBytes)
}

func equalPrefix(proof, expected []byte) bool {
	for i, b := range expected {
		if proof[i] != b {
			return false
		}
	}
	return true
}

// Memory is an in-memory L1Bridge used by tests and local development. It
// enforces VerifyCommitment exactly as a deployed contract would, tracks
// emergency-shutdown state, and queues the deposit events a test harness
// injects via InjectDeposit.
type Memory struct {
	mu          sync.Mutex
	commitments []Commitment
	deposits    []DepositEvent
	fraudProofs [][]byte
	emergency   bool
}

// NewMemory returns an empty in-memory bridge.
func NewMemory() *Memory {
	return &Memory{}
}

// SubmitCommitment implements L1Bridge.
func (m *Memory) SubmitCommitment(c Commitment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emergency {
		return ErrEmergencyMode
	}
	if !VerifyCommitment(c) {
		return ErrInvalidCommitment
	}
	m.commitments = append(m.commitments, c)
	return nil
}

// GetPendingDeposits implements L1Bridge, draining the queued deposits.
func (m *Memory) GetPendingDeposits() ([]DepositEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.deposits
	m.deposits = nil
	return out, nil
}

// ProcessWithdrawal implements L1Bridge; the in-memory bridge accepts any
// withdrawal unless it is in emergency mode, without checking it against
// the commitments it has recorded.
func (m *Memory) ProcessWithdrawal(w WithdrawalEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emergency {
		return ErrEmergencyMode
	}
	return nil
}

// SubmitFraudProof implements L1Bridge, recording the proof and correct
// snapshot and triggering emergency shutdown, matching a real contract's
// response to a successful fraud challenge.
func (m *Memory) SubmitFraudProof(invalidProof []byte, correctStateSnapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fraudProofs = append(m.fraudProofs, append(invalidProof, correctStateSnapshot...))
	m.emergency = true
	return nil
}

// TriggerEmergencyShutdown implements L1Bridge.
func (m *Memory) TriggerEmergencyShutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergency = true
	return nil
}

// IsEmergencyMode implements L1Bridge.
func (m *Memory) IsEmergencyMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emergency
}

// InjectDeposit queues a deposit event for the next GetPendingDeposits
// call, letting tests simulate L1 activity without a live chain.
func (m *Memory) InjectDeposit(d DepositEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deposits = append(m.deposits, d)
}

// Commitments returns every commitment accepted so far, for test
// assertions.
func (m *Memory) Commitments() []Commitment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Commitment(nil), m.commitments...)
}

var _ L1Bridge = (*Memory)(nil)
