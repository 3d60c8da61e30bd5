// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store defines the Persistent Store interface (C11): durable
// lookup of transactions, blocks, and proofs by hash or number. The core
// depends only on this interface (spec §1 lists on-disk storage engine
// choice as an external collaborator); store/pebblestore provides the
// concrete implementation.
package store

import "errors"

// ErrNotFound is returned by Get* when no value is stored for the key.
var ErrNotFound = errors.New("store: not found")

// Persistent is the durable store every committed batch, transaction, and
// proof passes through. Implementations must give atomic single-key
// writes, crash-safe durability once Sync returns, and deterministic
// iteration by block number (spec §6).
type Persistent interface {
	// PutTx stores a transaction's canonical serialization under its hash.
	PutTx(hash [32]byte, serializedTx []byte) error
	// GetTx returns the serialized transaction for hash, or ErrNotFound.
	GetTx(hash [32]byte) ([]byte, error)

	// PutBlock stores a serialized block under its batch number.
	PutBlock(number uint64, serializedBlock []byte) error
	// GetBlock returns the serialized block at number, or ErrNotFound.
	GetBlock(number uint64) ([]byte, error)

	// PutProof stores a serialized StateTransitionProof/BatchProof under
	// its batch number.
	PutProof(number uint64, serializedProof []byte) error
	// GetProof returns the serialized proof at number, or ErrNotFound.
	GetProof(number uint64) ([]byte, error)

	// IterateBlocks calls fn for every stored block in ascending order of
	// batch number, stopping early if fn returns false.
	IterateBlocks(fn func(number uint64, serializedBlock []byte) bool) error

	// Sync flushes all buffered writes to durable storage. Operations are
	// crash-safe only after Sync returns nil.
	Sync() error

	// Close releases the underlying storage handle.
	Close() error
}
