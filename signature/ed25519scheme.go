// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package signature

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrInvalidKeySize is returned when a key or seed has the wrong length for
// the scheme.
var ErrInvalidKeySize = errors.New("signature: invalid key size")

// Ed25519Scheme is the classical signature scheme used for account
// transaction authentication (C3's default, non-post-quantum tier).
// Grounded on golang.org/x/crypto, which the teacher depends on for its
// own hashing (blake2b) alongside stdlib ed25519.
type Ed25519Scheme struct{}

// NewEd25519Scheme returns the default classical signature scheme.
func NewEd25519Scheme() *Ed25519Scheme {
	return &Ed25519Scheme{}
}

func (Ed25519Scheme) Name() string { return "ed25519" }

// GenerateKeyPair derives an Ed25519 key pair. A non-empty seed is stretched
// to the 32-byte seed size with BLAKE2b so callers can pass arbitrary-length
// deterministic test seeds; an empty seed draws from crypto/rand.
func (Ed25519Scheme) GenerateKeyPair(seed []byte) (KeyPair, error) {
	if len(seed) == 0 {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return KeyPair{}, fmt.Errorf("signature: generate ed25519 key: %w", err)
		}
		return KeyPair{PublicKey: pub, SecretKey: priv}, nil
	}

	digest := blake2b.Sum256(seed)
	priv := ed25519.NewKeyFromSeed(digest[:])
	pub := priv.Public().(ed25519.PublicKey)
	return KeyPair{PublicKey: pub, SecretKey: priv}, nil
}

func (Ed25519Scheme) Sign(secretKey, message []byte) ([]byte, error) {
	if len(secretKey) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	return ed25519.Sign(ed25519.PrivateKey(secretKey), message), nil
}

func (Ed25519Scheme) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
