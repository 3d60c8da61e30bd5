// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rollup implements the Rollup State Transition (C6): batch
// ordering and hashing, and generation/verification of
// StateTransitionProof objects binding pre-state, post-state,
// transactions, and a QZKP commitment.
package rollup

import (
	"bytes"
	"errors"
	"sort"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/internal/hashid"
)

// MinBatchSize and MaxBatchSize bound a valid batch (spec §4.4 step 1).
const (
	MinBatchSize = 1
	MaxBatchSize = 1000
)

var (
	ErrBatchEmpty      = errors.New("rollup: batch is empty")
	ErrBatchTooLarge   = errors.New("rollup: batch exceeds maximum size")
	ErrMisorderedBatch = errors.New("rollup: batch is not ordered by (sender nonce asc, tx hash tiebreak)")
)

// Batch is an ordered sequence of transactions committed together (spec
// §3). Ordering MUST be nonce-ascending per sender, ties broken by
// transaction hash.
type Batch struct {
	BatchNumber  uint64
	Transactions []*account.Transaction
	BatchHash    hashid.ID
	Timestamp    uint64
}

// ValidateOrder checks that txs satisfies the batch ordering invariant:
// for transactions from the same sender, nonce must be ascending; ties
// (rare, but possible with permissive duplicate-nonce submission ahead of
// validation) are broken by ascending transaction hash.
func ValidateOrder(txs []*account.Transaction) error {
	lastNonce := make(map[account.Address]uint64)
	lastHash := make(map[account.Address]hashid.ID)
	seen := make(map[account.Address]bool)

	for _, tx := range txs {
		h := tx.Hash()
		if seen[tx.Sender] {
			prevNonce := lastNonce[tx.Sender]
			if tx.Nonce < prevNonce {
				return ErrMisorderedBatch
			}
			if tx.Nonce == prevNonce && bytes.Compare(hashid.Bytes(h), hashid.Bytes(lastHash[tx.Sender])) < 0 {
				return ErrMisorderedBatch
			}
		}
		lastNonce[tx.Sender] = tx.Nonce
		lastHash[tx.Sender] = h
		seen[tx.Sender] = true
	}
	return nil
}

// SortForBatch returns txs reordered to satisfy the batch ordering
// invariant (nonce ascending per sender; ties broken by transaction
// hash), used when assembling a batch from an unordered intake queue.
func SortForBatch(txs []*account.Transaction) []*account.Transaction {
	out := append([]*account.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Sender != b.Sender {
			return a.Sender.Less(b.Sender)
		}
		if a.Nonce != b.Nonce {
			return a.Nonce < b.Nonce
		}
		ha, hb := a.Hash(), b.Hash()
		return bytes.Compare(hashid.Bytes(ha), hashid.Bytes(hb)) < 0
	})
	return out
}

// NewBatch validates size and ordering, computes batch_hash, and returns
// the assembled Batch.
func NewBatch(batchNumber uint64, txs []*account.Transaction, timestamp uint64) (*Batch, error) {
	if len(txs) < MinBatchSize {
		return nil, ErrBatchEmpty
	}
	if len(txs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	if err := ValidateOrder(txs); err != nil {
		return nil, err
	}

	parts := make([][]byte, len(txs))
	for i, tx := range txs {
		parts[i] = tx.Serialize()
	}

	return &Batch{
		BatchNumber:  batchNumber,
		Transactions: txs,
		BatchHash:    hashid.Sum(parts...),
		Timestamp:    timestamp,
	}, nil
}
