// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rollup

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/internal/hashid"
	"github.com/qrollup/node/qzkp"
)

// ErrInvalidTransaction wraps any error returned by apply_transaction
// during generate_transition_proof (spec §4.4 step 3).
var ErrInvalidTransaction = errors.New("rollup: invalid transaction in batch")

// StateTransitionProof binds a batch's pre/post state roots, its
// transactions root (batch_hash), and a QZKP commitment over the batch
// (spec §3).
type StateTransitionProof struct {
	PreStateRoot     hashid.ID
	PostStateRoot    hashid.ID
	TransactionsRoot hashid.ID
	ZKProof          qzkp.Transcript
	BatchNumber      uint64
	Timestamp        uint64
}

// GenerateTransitionProof implements spec §4.4's generate_transition_proof:
// snapshots the pre-state root, applies every transaction to a clone of
// state, encodes the batch into a QState, and proves it with QZKP. state
// itself is left untouched; callers apply the batch to their live store
// separately once the proof is accepted.
func GenerateTransitionProof(batch *Batch, state *account.Store, cfg qzkp.Config, rng *rand.Rand, timestamp uint64) (*StateTransitionProof, error) {
	preRoot := state.GetStateRoot()

	clone := state.Clone()
	if err := clone.ApplyTransactions(batch.Transactions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	postRoot := clone.CommitState()

	qstate, err := encodeBatch(batch)
	if err != nil {
		return nil, err
	}
	proof, err := qzkp.Prove(qstate, cfg, rng, timestamp)
	if err != nil {
		return nil, err
	}

	return &StateTransitionProof{
		PreStateRoot:     preRoot,
		PostStateRoot:    postRoot,
		TransactionsRoot: batch.BatchHash,
		ZKProof:          proof,
		BatchNumber:      batch.BatchNumber,
		Timestamp:        timestamp,
	}, nil
}

// VerifyTransition implements spec §4.4's verify_transition: reapplies
// txs to a clone of pre and accepts iff the resulting root equals post's
// claimed root. The QZKP field is verified separately via VerifyProof,
// since it requires the original batch to reconstruct the committed
// QState.
func VerifyTransition(pre *account.Store, postRoot hashid.ID, txs []*account.Transaction) (bool, error) {
	clone := pre.Clone()
	if err := clone.ApplyTransactions(txs); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return clone.CommitState() == postRoot, nil
}

// VerifyProof verifies a StateTransitionProof's QZKP field against the
// QState re-derived from batch (spec §4.4: "The QZKP field is
// additionally verified via C2").
func VerifyProof(proof *StateTransitionProof, batch *Batch, cfg qzkp.Config, rng *rand.Rand) (qzkp.VerifyResult, error) {
	qstate, err := encodeBatch(batch)
	if err != nil {
		return qzkp.VerifyResult{}, err
	}
	return qzkp.Verify(proof.ZKProof, qstate, cfg, rng)
}

// encodeBatch concatenates the serialized transactions and encodes the
// result with qzkp.EncodeBytes: amplitude i is byte i / 255, the dimension
// is the smallest power of two covering all bytes (at least 2^MinQubits),
// and the vector is normalized. Transactions are packed back to back; they
// are not placed at fixed 256-amplitude offsets.
func encodeBatch(batch *Batch) (*qzkp.QState, error) {
	var data []byte
	for _, tx := range batch.Transactions {
		data = append(data, tx.Serialize()...)
	}
	return qzkp.EncodeBytes(data)
}

