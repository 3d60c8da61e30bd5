// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package signature

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/crypto/bls"
	"golang.org/x/crypto/blake2b"
)

// BLSScheme is a genuine pairing-based AggregatableScheme, grounded on the
// teacher's protocol/quasar.Hybrid, which combines per-validator BLS
// signatures into one via bls.AggregateSignatures/AggregatePublicKeys
// (protocol/quasar/hybrid.go) rather than concatenating them. POBPC (C7)
// uses it the same way: witness signatures over a batch_hash fold into one
// compact certificate instead of n independent votes.
//
// A key pair's portable representation is its 32-byte seed, not the
// bls.SecretKey itself (the teacher's engine/pq.CertificateGenerator does
// the same, deriving blsSecretKey from a 32-byte seed via
// bls.SecretKeyFromSeed rather than persisting the key object).
type BLSScheme struct{}

var _ AggregatableScheme = (*BLSScheme)(nil)

// NewBLSScheme returns the default pairing-based signature scheme.
func NewBLSScheme() *BLSScheme { return &BLSScheme{} }

func (BLSScheme) Name() string { return "bls" }

// GenerateKeyPair derives a BLS key pair from a 32-byte seed, stretching a
// non-empty arbitrary-length seed with BLAKE2b first (same convention as
// Ed25519Scheme) and drawing from crypto/rand when seed is empty.
func (BLSScheme) GenerateKeyPair(seed []byte) (KeyPair, error) {
	var seed32 [32]byte
	if len(seed) == 0 {
		if _, err := rand.Read(seed32[:]); err != nil {
			return KeyPair{}, fmt.Errorf("signature: generate bls key: %w", err)
		}
	} else {
		seed32 = blake2b.Sum256(seed)
	}

	sk, err := bls.SecretKeyFromSeed(seed32[:])
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: derive bls secret key: %w", err)
	}
	pub := bls.PublicKeyToCompressedBytes(sk.PublicKey())
	return KeyPair{PublicKey: pub, SecretKey: append([]byte(nil), seed32[:]...)}, nil
}

func (BLSScheme) Sign(secretKey, message []byte) ([]byte, error) {
	if len(secretKey) != 32 {
		return nil, ErrInvalidKeySize
	}
	sk, err := bls.SecretKeyFromSeed(secretKey)
	if err != nil {
		return nil, fmt.Errorf("signature: derive bls secret key: %w", err)
	}
	sig, err := sk.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("signature: bls sign: %w", err)
	}
	return bls.SignatureToBytes(sig), nil
}

func (BLSScheme) Verify(publicKey, message, signature []byte) bool {
	pk, err := bls.PublicKeyFromCompressedBytes(publicKey)
	if err != nil {
		return false
	}
	sig, err := bls.SignatureFromBytes(signature)
	if err != nil {
		return false
	}
	return bls.Verify(pk, sig, message)
}

// Aggregate combines signatures, all produced over the same message, into
// a single BLS aggregate signature (mirrors Hybrid.AggregateSignatures'
// BLS half).
func (BLSScheme) Aggregate(signatures [][]byte) ([]byte, error) {
	if len(signatures) == 0 {
		return nil, fmt.Errorf("signature: aggregate: no signatures")
	}
	sigs := make([]*bls.Signature, 0, len(signatures))
	for _, raw := range signatures {
		sig, err := bls.SignatureFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("signature: aggregate: %w", err)
		}
		sigs = append(sigs, sig)
	}
	agg, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return nil, fmt.Errorf("signature: bls aggregate: %w", err)
	}
	return bls.SignatureToBytes(agg), nil
}

// VerifyAggregate verifies a BLS aggregate signature against the
// aggregated public key of publicKeys (mirrors
// Hybrid.VerifyAggregatedSignature's BLS half).
func (BLSScheme) VerifyAggregate(publicKeys [][]byte, message, aggregate []byte) bool {
	if len(publicKeys) == 0 {
		return false
	}
	pks := make([]*bls.PublicKey, 0, len(publicKeys))
	for _, raw := range publicKeys {
		pk, err := bls.PublicKeyFromCompressedBytes(raw)
		if err != nil {
			return false
		}
		pks = append(pks, pk)
	}
	aggPK, err := bls.AggregatePublicKeys(pks)
	if err != nil {
		return false
	}
	aggSig, err := bls.SignatureFromBytes(aggregate)
	if err != nil {
		return false
	}
	return bls.Verify(aggPK, aggSig, message)
}
