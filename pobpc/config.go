// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pobpc implements the POBPC Consensus Core (C7): a witness
// registry selected by reliability, deterministic batch hashing with a
// content-mixing binding step, QZKP-backed batch proofs, threshold
// signature collection, and consensus confidence scoring.
package pobpc

import (
	"errors"
	"time"
)

// Config mirrors the C++ origin's POBPC::BatchConfig defaults
// (include/consensus/POBPC.hpp).
type Config struct {
	MaxTransactions       int
	BatchInterval         time.Duration
	WitnessCount          int
	ConsensusThreshold    float64
	UseQuantumProofs      bool
	QuantumCircuitDepth   int
	EnableErrorCorrection bool
}

// DefaultConfig returns the origin's BatchConfig defaults: 100 max
// transactions, 1s batch interval, 7 witnesses, 2/3 majority threshold,
// quantum proofs and error correction enabled, circuit depth 20.
func DefaultConfig() Config {
	return Config{
		MaxTransactions:       100,
		BatchInterval:         time.Second,
		WitnessCount:          7,
		ConsensusThreshold:    0.67,
		UseQuantumProofs:      true,
		QuantumCircuitDepth:   20,
		EnableErrorCorrection: true,
	}
}

var (
	ErrInvalidMaxTransactions    = errors.New("pobpc: max transactions must be positive")
	ErrInvalidWitnessCount       = errors.New("pobpc: witness count must be positive")
	ErrInvalidConsensusThreshold = errors.New("pobpc: consensus threshold must be in (0,1]")
)

// Valid checks the configuration's bounds.
func (c Config) Valid() error {
	if c.MaxTransactions <= 0 {
		return ErrInvalidMaxTransactions
	}
	if c.WitnessCount <= 0 {
		return ErrInvalidWitnessCount
	}
	if c.ConsensusThreshold <= 0 || c.ConsensusThreshold > 1 {
		return ErrInvalidConsensusThreshold
	}
	return nil
}
