// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package account implements the Account State Store (C4): addressed
// accounts with balance, nonce, code and storage, snapshot/rollback
// semantics, and a deterministic state-root digest.
package account

import (
	"encoding/hex"
	"sort"

	"github.com/qrollup/node/internal/hashid"
)

// AddressLength is the byte width of an Address, per spec §3.
const AddressLength = 20

// Address is a 20-byte account identifier. Equality and ordering are
// lexicographic over the raw bytes.
type Address [AddressLength]byte

// String returns the lowercase-hex display form of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Less reports whether a sorts before b, used to produce the canonical
// address ordering the state root depends on.
func (a Address) Less(b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// BytesToAddress left-truncates or left-pads (with zeros) b into an Address, matching
// the teacher-adjacent convention (`types.BytesToAddress`) seen across the
// EVM reference examples.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// StorageKey and StorageValue are arbitrary byte strings; EVM opcode access
// fixes them at 32 bytes (see evm package), but the store itself imposes no
// length constraint (spec §3).
type StorageKey = string
type StorageValue = []byte

// Account is an addressable record holding balance, nonce, code, and
// storage. Nonce is monotonically non-decreasing; code is immutable once
// set; storage keys/values are arbitrary byte strings.
type Account struct {
	Address Address
	Balance uint64
	Nonce   uint64
	Code    []byte
	Storage map[StorageKey]StorageValue
}

// clone returns a deep copy of the account, used by snapshot/rollback and
// by Store.Clone for simulation (fraud proofs, parallel batch workers).
func (a *Account) clone() *Account {
	cp := &Account{
		Address: a.Address,
		Balance: a.Balance,
		Nonce:   a.Nonce,
	}
	if a.Code != nil {
		cp.Code = append([]byte(nil), a.Code...)
	}
	if a.Storage != nil {
		cp.Storage = make(map[StorageKey]StorageValue, len(a.Storage))
		for k, v := range a.Storage {
			cp.Storage[k] = append([]byte(nil), v...)
		}
	}
	return cp
}

// encode produces the canonical serialization from spec §6:
//
//	u32 addr_len || addr || u64 balance || u64 nonce || u32 code_len || code
//	  || u32 storage_count || (u32 key_len || key || u32 value_len || value)*
//
// Storage entries are emitted in ascending key order so the encoding (and
// therefore any hash derived from it) is deterministic.
func (a *Account) encode() []byte {
	b := hashid.NewBuilder()
	b.PutBytes(a.Address[:])
	b.PutUint64(a.Balance)
	b.PutUint64(a.Nonce)
	b.PutBytes(a.Code)

	keys := make([]string, 0, len(a.Storage))
	for k := range a.Storage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.PutUint32(uint32(len(keys)))
	for _, k := range keys {
		b.PutBytes([]byte(k))
		b.PutBytes(a.Storage[k])
	}
	return b.Bytes()
}

// History is a bounded ring buffer of applied transaction hashes for an
// account, capacity fixed at 1000 per spec §4.1.
type History struct {
	entries  []hashid.ID
	capacity int
	next     int
	full     bool
}

// HistoryCapacity is the fixed ring-buffer capacity per spec §4.1.
const HistoryCapacity = 1000

func newHistory() *History {
	return &History{entries: make([]hashid.ID, HistoryCapacity), capacity: HistoryCapacity}
}

func (h *History) push(id hashid.ID) {
	h.entries[h.next] = id
	h.next = (h.next + 1) % h.capacity
	if h.next == 0 {
		h.full = true
	}
}

// Entries returns the recorded transaction hashes, oldest first.
func (h *History) Entries() []hashid.ID {
	if !h.full {
		return append([]hashid.ID(nil), h.entries[:h.next]...)
	}
	out := make([]hashid.ID, 0, h.capacity)
	out = append(out, h.entries[h.next:]...)
	out = append(out, h.entries[:h.next]...)
	return out
}
