// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batchproc

import "github.com/qrollup/node/account"

// Conflicts reports whether a and b touch any common address in
// {sender, recipient} (spec §4.6 dependency rule).
func Conflicts(a, b *account.Transaction) bool {
	return a.Sender == b.Sender || a.Sender == b.Recipient ||
		a.Recipient == b.Sender || a.Recipient == b.Recipient
}

// Partition greedily groups seq into an ordered sequence of sub-batches
// such that no two transactions within a sub-batch conflict (spec §4.6
// partition). Sub-batch order is stable relative to seq; within a
// sub-batch transaction order is also stable, since callers apply
// sub-batches serially but may execute a sub-batch's transactions in
// parallel once their addresses are known disjoint.
func Partition(seq []*account.Transaction) [][]*account.Transaction {
	var subBatches [][]*account.Transaction

	for _, tx := range seq {
		placed := false
		for i := range subBatches {
			if !conflictsWithAny(tx, subBatches[i]) {
				subBatches[i] = append(subBatches[i], tx)
				placed = true
				break
			}
		}
		if !placed {
			subBatches = append(subBatches, []*account.Transaction{tx})
		}
	}
	return subBatches
}

func conflictsWithAny(tx *account.Transaction, batch []*account.Transaction) bool {
	for _, other := range batch {
		if Conflicts(tx, other) {
			return true
		}
	}
	return false
}
