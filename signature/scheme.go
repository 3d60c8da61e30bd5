// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package signature abstracts the signature scheme (C3) behind a capability
// interface, the same cut-point the teacher keeps between its `crypto/bls`
// and `crypto/pq` (Ringtail) packages: consensus and account validation
// code depend on Scheme, never on a concrete algorithm, so alternative
// signature strengths can be swapped in without touching callers.
package signature

// SecurityLevel selects a lattice-style parameter set for schemes that
// support more than one security tier (spec §2 C3: "lattice-style
// parameters N∈{512,1024}").
type SecurityLevel int

const (
	// SecurityN512 is the lower lattice dimension, faster but a lower
	// post-quantum security margin.
	SecurityN512 SecurityLevel = 512
	// SecurityN1024 is the higher lattice dimension.
	SecurityN1024 SecurityLevel = 1024
)

// KeyPair holds a generated public/secret key pair.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// Scheme is the capability-set interface every signature algorithm this
// node uses must satisfy: keypair generation, signing, and verification.
// account.Verifier is satisfied structurally by any Scheme.
type Scheme interface {
	// GenerateKeyPair derives a new key pair, deterministically from seed
	// when seed is non-empty (test reproducibility), or from a fresh
	// random source when seed is empty.
	GenerateKeyPair(seed []byte) (KeyPair, error)

	// Sign produces a signature over message under secretKey.
	Sign(secretKey, message []byte) ([]byte, error)

	// Verify reports whether signature is valid for message under
	// publicKey.
	Verify(publicKey, message, signature []byte) bool

	// Name identifies the concrete scheme, for logging/metrics labels.
	Name() string
}

// AggregatableScheme is satisfied by schemes that support combining many
// signatures over the same message into one (POBPC witness threshold
// aggregation, C7) — mirrors the teacher's `quasar.Engine` dual
// BLS+Ringtail aggregation.
type AggregatableScheme interface {
	Scheme

	// Aggregate combines signatures (all over the same message) into one
	// aggregate signature.
	Aggregate(signatures [][]byte) ([]byte, error)

	// VerifyAggregate verifies an aggregate signature against the set of
	// public keys whose signatures were combined.
	VerifyAggregate(publicKeys [][]byte, message, aggregate []byte) bool
}
