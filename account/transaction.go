// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	"github.com/qrollup/node/internal/hashid"
)

// Transaction is a single L2 transfer/call, per spec §3. Canonical
// serialization is a length-prefixed concatenation of fields in this
// order; the hash is the BLAKE3 digest of that serialization excluding
// Signature.
type Transaction struct {
	Sender    Address
	Recipient Address
	Amount    uint64
	Nonce     uint64
	GasPrice  uint64
	GasLimit  uint64
	Data      []byte
	Signature []byte
}

// encodeUnsigned returns the canonical encoding of every field except
// Signature — this is what gets hashed and what the signature covers.
func (t *Transaction) encodeUnsigned() []byte {
	b := hashid.NewBuilder()
	b.PutBytes(t.Sender[:])
	b.PutBytes(t.Recipient[:])
	b.PutUint64(t.Amount)
	b.PutUint64(t.Nonce)
	b.PutUint64(t.GasPrice)
	b.PutUint64(t.GasLimit)
	b.PutBytes(t.Data)
	return b.Bytes()
}

// Hash returns the 32-byte BLAKE3 digest of the transaction's canonical
// encoding, excluding Signature.
func (t *Transaction) Hash() hashid.ID {
	return hashid.Sum(t.encodeUnsigned())
}

// Serialize returns the full canonical wire encoding, including the
// length-prefixed Signature, per spec §6.
func (t *Transaction) Serialize() []byte {
	b := hashid.NewBuilder()
	b.PutRaw(t.encodeUnsigned())
	b.PutBytes(t.Signature)
	return b.Bytes()
}

// Verifier abstracts the signature scheme (C3) that Transaction
// validation needs, kept minimal to avoid an import cycle between
// account and signature.
type Verifier interface {
	Verify(publicKey, message, signature []byte) bool
}
