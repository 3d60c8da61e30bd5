// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package signature

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
)

// numMessageBits is the width of the BLAKE3 message digest this scheme
// signs one-time-signature-style, one secret preimage pair per bit.
const numMessageBits = 128

// LatticeScheme is a lattice-parameterized post-quantum-style scheme
// (spec §2 C3: "pluggable; lattice-style parameters N∈{512,1024}"),
// shaped after the teacher's ringtail.KeyGen/Precompute/QuickSign/
// Aggregate/Verify pipeline (ringtail/ringtail.go, ringtail/keys.go). The
// teacher's own ringtail package forwards to an external lattice library
// this module cannot fetch; LatticeScheme instead implements a
// hash-based one-time signature (Lamport-style) with the same call
// shape, so it is a drop-in AggregatableScheme without an unfetchable
// dependency. N controls the preimage width and therefore the key size,
// standing in for a lattice dimension.
//
// As with any one-time signature, a given secret key signs at most one
// message safely; nothing in this package prevents a key from being
// reused.
type LatticeScheme struct {
	level SecurityLevel
}

// NewLatticeScheme returns a LatticeScheme parameterized by N.
func NewLatticeScheme(level SecurityLevel) *LatticeScheme {
	if level != SecurityN512 && level != SecurityN1024 {
		level = SecurityN1024
	}
	return &LatticeScheme{level: level}
}

func (s *LatticeScheme) Name() string {
	return fmt.Sprintf("lattice-n%d", int(s.level))
}

// preimageSize scales with N: a higher dimension carries a proportionally
// wider secret preimage, mirroring ringtail.RTKeySize/RTPubKeySize.
func (s *LatticeScheme) preimageSize() int {
	return int(s.level) / 8
}

// GenerateKeyPair draws numMessageBits*2 random preimages (expanded
// deterministically from seed when provided) and publishes their BLAKE3
// digests as the public key.
func (s *LatticeScheme) GenerateKeyPair(seed []byte) (KeyPair, error) {
	preimageSize := s.preimageSize()
	sk := make([]byte, numMessageBits*2*preimageSize)
	if len(seed) == 0 {
		if _, err := rand.Read(sk); err != nil {
			return KeyPair{}, fmt.Errorf("signature: generate lattice key: %w", err)
		}
	} else {
		expandKDF(seed, s.level, sk)
	}

	pub := make([]byte, numMessageBits*2*32)
	for i := 0; i < numMessageBits*2; i++ {
		pre := sk[i*preimageSize : (i+1)*preimageSize]
		digest := blake3.Sum256(pre)
		copy(pub[i*32:(i+1)*32], digest[:])
	}
	return KeyPair{PublicKey: pub, SecretKey: sk}, nil
}

// Sign reveals, for each bit of BLAKE3_128(message), the secret preimage
// corresponding to that bit's value.
func (s *LatticeScheme) Sign(secretKey, message []byte) ([]byte, error) {
	preimageSize := s.preimageSize()
	if len(secretKey) != numMessageBits*2*preimageSize {
		return nil, ErrInvalidKeySize
	}
	digest := messageDigest(message)

	sig := make([]byte, numMessageBits*preimageSize)
	for i := 0; i < numMessageBits; i++ {
		bit := bitAt(digest, i)
		idx := 2*i + bit
		copy(sig[i*preimageSize:(i+1)*preimageSize], secretKey[idx*preimageSize:(idx+1)*preimageSize])
	}
	return sig, nil
}

// Verify recomputes BLAKE3_128(message), hashes each revealed preimage in
// signature, and checks it against the public digest selected by that
// bit's value.
func (s *LatticeScheme) Verify(publicKey, message, signature []byte) bool {
	preimageSize := s.preimageSize()
	if len(publicKey) != numMessageBits*2*32 || len(signature) != numMessageBits*preimageSize {
		return false
	}
	digest := messageDigest(message)

	for i := 0; i < numMessageBits; i++ {
		bit := bitAt(digest, i)
		idx := 2*i + bit
		pre := signature[i*preimageSize : (i+1)*preimageSize]
		got := blake3.Sum256(pre)
		want := publicKey[idx*32 : (idx+1)*32]
		if !bytesEqual(got[:], want) {
			return false
		}
	}
	return true
}

// Aggregate concatenates one-time signatures with a u32 length prefix
// each; a hash-based one-time signature has no algebraic combination
// step, so the "aggregate" here is the bundle quasar's multi-signer
// certificate uses before threshold counting, not a folded signature.
func (s *LatticeScheme) Aggregate(signatures [][]byte) ([]byte, error) {
	if len(signatures) == 0 {
		return nil, fmt.Errorf("signature: aggregate: no signatures")
	}
	var out []byte
	for _, sig := range signatures {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(sig)))
		out = append(out, lenBuf[:]...)
		out = append(out, sig...)
	}
	return out, nil
}

// VerifyAggregate unpacks the bundle Aggregate produced and verifies each
// signature against its corresponding public key, in order.
func (s *LatticeScheme) VerifyAggregate(publicKeys [][]byte, message, aggregate []byte) bool {
	offset := 0
	for _, pk := range publicKeys {
		if offset+4 > len(aggregate) {
			return false
		}
		sigLen := int(binary.LittleEndian.Uint32(aggregate[offset : offset+4]))
		offset += 4
		if offset+sigLen > len(aggregate) {
			return false
		}
		sig := aggregate[offset : offset+sigLen]
		offset += sigLen
		if !s.Verify(pk, message, sig) {
			return false
		}
	}
	return offset == len(aggregate)
}

func messageDigest(message []byte) [16]byte {
	full := blake3.Sum256(message)
	var digest [16]byte
	copy(digest[:], full[:16])
	return digest
}

func bitAt(digest [16]byte, i int) int {
	return int((digest[i/8] >> (uint(i) % 8)) & 1)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// expandKDF deterministically expands seed into out, domain-separated by
// level, using BLAKE3 in counter mode as an XOF substitute.
func expandKDF(seed []byte, level SecurityLevel, out []byte) {
	var levelTag [2]byte
	binary.LittleEndian.PutUint16(levelTag[:], uint16(level))
	for offset, counter := 0, uint32(0); offset < len(out); counter++ {
		var counterBytes [4]byte
		binary.LittleEndian.PutUint32(counterBytes[:], counter)
		h := blake3.New()
		h.Write(levelTag[:])
		h.Write(seed)
		h.Write(counterBytes[:])
		block := h.Sum(nil)
		n := copy(out[offset:], block)
		offset += n
	}
}
