// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pebblestore implements store.Persistent (C11) on top of
// CockroachDB's Pebble, an LSM key-value engine. This is the same storage
// family the teacher's luxfi/database indirectly pulls in; here it is
// depended on directly since this package's entire job is durable
// key-value storage.
package pebblestore

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/qrollup/node/store"
)

// Key namespaces, one byte prefix per logical table so a single Pebble
// instance backs all three (spec §6 persistent store operations).
const (
	prefixTx    byte = 't'
	prefixBlock byte = 'b'
	prefixProof byte = 'p'
)

// Store is a Pebble-backed store.Persistent.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if absent) a Pebble database rooted at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenMem opens an in-memory Pebble database, used by tests that want
// store.Persistent semantics without touching disk.
func OpenMem() (*Store, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func txKey(hash [32]byte) []byte {
	k := make([]byte, 0, 33)
	k = append(k, prefixTx)
	k = append(k, hash[:]...)
	return k
}

func numberKey(prefix byte, number uint64) []byte {
	k := make([]byte, 9)
	k[0] = prefix
	binary.BigEndian.PutUint64(k[1:], number)
	return k
}

func (s *Store) put(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *Store) get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), v...)
	if cerr := closer.Close(); cerr != nil {
		return nil, cerr
	}
	return out, nil
}

// PutTx implements store.Persistent.
func (s *Store) PutTx(hash [32]byte, serializedTx []byte) error {
	return s.put(txKey(hash), serializedTx)
}

// GetTx implements store.Persistent.
func (s *Store) GetTx(hash [32]byte) ([]byte, error) {
	return s.get(txKey(hash))
}

// PutBlock implements store.Persistent.
func (s *Store) PutBlock(number uint64, serializedBlock []byte) error {
	return s.put(numberKey(prefixBlock, number), serializedBlock)
}

// GetBlock implements store.Persistent.
func (s *Store) GetBlock(number uint64) ([]byte, error) {
	return s.get(numberKey(prefixBlock, number))
}

// PutProof implements store.Persistent.
func (s *Store) PutProof(number uint64, serializedProof []byte) error {
	return s.put(numberKey(prefixProof, number), serializedProof)
}

// GetProof implements store.Persistent.
func (s *Store) GetProof(number uint64) ([]byte, error) {
	return s.get(numberKey(prefixProof, number))
}

// IterateBlocks implements store.Persistent. Big-endian number keys sort
// lexicographically in the same order as the numbers themselves, so a
// plain prefix-bounded forward iterator gives deterministic ascending
// order with no secondary index.
func (s *Store) IterateBlocks(fn func(number uint64, serializedBlock []byte) bool) error {
	lower := []byte{prefixBlock}
	upper := []byte{prefixBlock + 1}
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != 9 {
			continue
		}
		number := binary.BigEndian.Uint64(key[1:])
		value := append([]byte(nil), iter.Value()...)
		if !fn(number, value) {
			break
		}
	}
	return iter.Error()
}

// Sync implements store.Persistent. Every write already uses pebble.Sync,
// so this only commits an empty batch with pebble.Sync, for callers that
// want an explicit durability checkpoint; it does not flush the memtable.
func (s *Store) Sync() error {
	b := s.db.NewBatch()
	defer b.Close()
	return b.Commit(pebble.Sync)
}

// Close implements store.Persistent.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Persistent = (*Store)(nil)
