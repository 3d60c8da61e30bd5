// Package hashid provides the canonical 32-byte digest used across the
// node: BLAKE3 over a length-prefixed byte encoding, surfaced as an
// ids.ID so every component (state roots, batch hashes, transaction
// hashes, QZKP transcript digests) shares one identifier type.
package hashid

import (
	"encoding/binary"

	"github.com/luxfi/ids"
	"github.com/zeebo/blake3"
)

// ID is the 32-byte canonical identifier used throughout the node.
type ID = ids.ID

// Empty is the zero-valued ID, returned when a digest has no input.
var Empty ID

// Bytes returns id's raw 32 bytes as a slice. ID is a type alias for
// ids.ID (an array type), so this is the one place that needs to know
// its underlying representation.
func Bytes(id ID) []byte {
	return id[:]
}

// Sum computes the BLAKE3-256 digest of the concatenation of parts.
func Sum(parts ...[]byte) ID {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out ID
	copy(out[:], h.Sum(nil))
	return out
}

// SumKeyed computes a keyed BLAKE3-256 digest of the concatenation of
// parts. key must be exactly 32 bytes; callers derive it from domain state
// (e.g. a consensus QState's byte-dump) rather than a fixed secret.
func SumKeyed(key []byte, parts ...[]byte) (ID, error) {
	h, err := blake3.NewKeyed(key)
	if err != nil {
		return Empty, err
	}
	for _, p := range parts {
		h.Write(p)
	}
	var out ID
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Builder accumulates length-prefixed byte vectors before hashing, matching
// the canonical wire encoding in spec §6 ("byte vectors are prefixed with a
// u32 length").
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// PutUint64 appends a little-endian fixed-width u64.
func (b *Builder) PutUint64(v uint64) *Builder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// PutUint32 appends a little-endian fixed-width u32.
func (b *Builder) PutUint32(v uint32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// PutBytes appends a u32-length-prefixed byte vector.
func (b *Builder) PutBytes(v []byte) *Builder {
	b.PutUint32(uint32(len(v)))
	b.buf = append(b.buf, v...)
	return b
}

// PutRaw appends bytes with no length prefix, for fields (like a
// transaction's trailing signature) that are explicitly excluded from a
// hash or placed outside the length-prefixed convention.
func (b *Builder) PutRaw(v []byte) *Builder {
	b.buf = append(b.buf, v...)
	return b
}

// Bytes returns the accumulated canonical encoding.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Sum hashes the accumulated encoding with BLAKE3-256.
func (b *Builder) Sum() ID {
	return Sum(b.buf)
}
