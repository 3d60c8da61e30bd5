// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fraud implements the Fraud Proof (C9): detects whether a
// submitter's claimed post-state diverges from an honest replay of the
// same transactions against the agreed pre-state, backed by a QZKP
// commitment over the state difference.
package fraud

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/internal/hashid"
	"github.com/qrollup/node/qzkp"
)

// FraudDetectionNormThreshold is the L2-norm bound above which a
// recomputed difference is considered non-trivial (spec §4.7 step iii;
// the open-question resolution documented in DESIGN.md), comfortably
// above the QState normalization tolerance of 1e-10.
const FraudDetectionNormThreshold = 1e-6

var (
	ErrRootMismatch      = errors.New("fraud: provided roots do not match embedded state snapshots")
	ErrTransactionReplay = errors.New("fraud: failed to replay transactions on pre_state clone")
)

// InvalidTransitionProof is the output of Generate (spec §4.7:
// "{pre_root, post_root, transactions, state_proof, validity_proof}").
// PreState and PostState are full snapshots rather than bare roots so
// Verify can independently recompute everything without trusting the
// submitter's root claims in isolation.
type InvalidTransitionProof struct {
	PreState      *account.Store
	PostState     *account.Store
	PreRoot       hashid.ID
	PostRoot      hashid.ID
	Transactions  []*account.Transaction
	StateProof    *qzkp.QState
	ValidityProof qzkp.Transcript
}

// Generate re-executes transactions against a clone of preState, encodes
// the difference between that honest replay and postState (the
// submitter's claim) as a QState, and proves it with QZKP (spec §4.7
// Generate).
func Generate(preState, postState *account.Store, txs []*account.Transaction, cfg qzkp.Config, rng *rand.Rand, timestamp uint64) (*InvalidTransitionProof, error) {
	replay := preState.Clone()
	if err := replay.ApplyTransactions(txs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionReplay, err)
	}

	correct := encodeAccountState(replay)
	claimed := encodeAccountState(postState)

	diffState, err := qzkp.DifferenceState(correct, claimed)
	if err != nil {
		return nil, err
	}
	transcript, err := qzkp.Prove(diffState, cfg, rng, timestamp)
	if err != nil {
		return nil, err
	}

	return &InvalidTransitionProof{
		PreState:      preState,
		PostState:     postState,
		PreRoot:       preState.GetStateRoot(),
		PostRoot:      postState.GetStateRoot(),
		Transactions:  txs,
		StateProof:    diffState,
		ValidityProof: transcript,
	}, nil
}

// Verify implements spec §4.7 Verify: checks the embedded roots still
// match their snapshots, replays transactions independently, and accepts
// as fraud detected iff the recomputed difference has non-trivial norm
// and the QZKP over that difference verifies.
func Verify(proof *InvalidTransitionProof, cfg qzkp.Config, verifyRng *rand.Rand) (bool, error) {
	if proof.PreRoot != proof.PreState.GetStateRoot() || proof.PostRoot != proof.PostState.GetStateRoot() {
		return false, ErrRootMismatch
	}

	replay := proof.PreState.Clone()
	if err := replay.ApplyTransactions(proof.Transactions); err != nil {
		return false, fmt.Errorf("%w: %w", ErrTransactionReplay, err)
	}

	correct := encodeAccountState(replay)
	claimed := encodeAccountState(proof.PostState)

	norm := qzkp.DifferenceNorm(correct, claimed)
	fraudDetected := norm > FraudDetectionNormThreshold

	diffState, err := qzkp.DifferenceState(correct, claimed)
	if err != nil {
		return false, err
	}
	result, err := qzkp.Verify(proof.ValidityProof, diffState, cfg, verifyRng)
	if err != nil {
		return false, err
	}
	if result.Verdict != qzkp.Valid {
		return false, nil
	}

	return fraudDetected, nil
}

// encodeAccountState builds a canonical byte stream of every known
// address's (balance, nonce), interleaved, in address-sorted order
// (spec §4.7: "per-address differences of balance and nonce
// interleaved").
func encodeAccountState(store *account.Store) []byte {
	addrs := store.Addresses()
	out := make([]byte, 0, len(addrs)*16)
	var buf [8]byte
	for _, a := range addrs {
		acc, _ := store.GetAccount(a)
		binary.LittleEndian.PutUint64(buf[:], acc.Balance)
		out = append(out, buf[:]...)
		binary.LittleEndian.PutUint64(buf[:], acc.Nonce)
		out = append(out, buf[:]...)
	}
	return out
}
