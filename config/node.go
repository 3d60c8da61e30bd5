// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for NodeConfig.Valid, matching the teacher's
// fmt.Errorf("%w: ...")-wrapped-sentinel convention in types.go/Valid().
var (
	ErrInvalidWorkerThreads   = errors.New("invalid num_worker_threads")
	ErrInvalidBatchSize       = errors.New("invalid batch_size")
	ErrInvalidWitnessCount    = errors.New("invalid witness_count")
	ErrInvalidThreshold       = errors.New("invalid consensus_threshold")
	ErrInvalidCircuitDepth    = errors.New("invalid quantum_circuit_depth")
	ErrInvalidQZKPParam       = errors.New("invalid QZKP proving/verification parameter")
	ErrInvalidQueueSize       = errors.New("invalid queue size")
	ErrInvalidPingInterval    = errors.New("invalid ping_interval")
	ErrInvalidConnTimeout     = errors.New("invalid connection_timeout")
	ErrMissingDataDir         = errors.New("missing data_dir")
)

// NodeConfig enumerates every configuration field spec §6 names, with the
// effect each has on the component that reads it (see field comments).
// This mirrors the teacher's Parameters struct shape (json/yaml tags plus
// a Valid() error method) but carries the qrollup node's own fields
// instead of snowball-sampling parameters.
type NodeConfig struct {
	// NumWorkerThreads sizes the Parallel Batch Processor's worker pool (C8).
	NumWorkerThreads int `json:"numWorkerThreads" yaml:"numWorkerThreads"`

	// BatchSize upper-bounds transactions per batch in both the rollup
	// state transition (C6) and POBPC consensus (C7).
	BatchSize int `json:"batchSize" yaml:"batchSize"`

	// WitnessCount (W) is the number of witnesses POBPC selects per batch.
	WitnessCount int `json:"witnessCount" yaml:"witnessCount"`
	// ConsensusThreshold (tau) is the fraction of W signatures required
	// to reach consensus.
	ConsensusThreshold float64 `json:"consensusThreshold" yaml:"consensusThreshold"`

	// QuantumCircuitDepth bounds the POBPC QZKP circuit's simulated depth.
	QuantumCircuitDepth int `json:"quantumCircuitDepth" yaml:"quantumCircuitDepth"`
	// UseQuantumProofs toggles whether POBPC attaches a QZKP transcript to
	// each batch proof.
	UseQuantumProofs bool `json:"useQuantumProofs" yaml:"useQuantumProofs"`
	// EnableErrorCorrection toggles the POBPC syndrome-check/recovery path.
	EnableErrorCorrection bool `json:"enableErrorCorrection" yaml:"enableErrorCorrection"`

	// OptimalPhaseAngles is the QZKP prover's declared rotation count (k).
	OptimalPhaseAngles int `json:"optimalPhaseAngles" yaml:"optimalPhaseAngles"`
	// OptimalMeasurementQubits is the QZKP prover's measurement-qubit
	// draw count (m).
	OptimalMeasurementQubits int `json:"optimalMeasurementQubits" yaml:"optimalMeasurementQubits"`

	// ConfidenceThreshold is the QZKP verifier's minimum accept score.
	ConfidenceThreshold float64 `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	// MeasurementTolerance is the QZKP verifier's matching-ratio slack.
	MeasurementTolerance float64 `json:"measurementTolerance" yaml:"measurementTolerance"`
	// FidelityThreshold gates the QZKP verifier's fidelity term.
	FidelityThreshold float64 `json:"fidelityThreshold" yaml:"fidelityThreshold"`

	// MaxQueueSize bounds the batch processor's submission queue (C8);
	// submissions beyond this are rejected with BackpressureRejected.
	MaxQueueSize int `json:"maxQueueSize" yaml:"maxQueueSize"`
	// MaxBatchSize bounds the batch processor's per-batch transaction count.
	MaxBatchSize int `json:"maxBatchSize" yaml:"maxBatchSize"`

	// PingInterval is how often the P2P transport (C13) sends PING to
	// each connected peer.
	PingInterval time.Duration `json:"pingInterval" yaml:"pingInterval"`
	// ConnectionTimeout disconnects a peer after this long without
	// activity.
	ConnectionTimeout time.Duration `json:"connectionTimeout" yaml:"connectionTimeout"`

	// DataDir is the persistent storage root (C11).
	DataDir string `json:"dataDir" yaml:"dataDir"`
}

// DefaultNodeConfig returns the origin's documented defaults (spec
// SPEC_FULL.md "OPEN QUESTION DECISIONS" / original_source POBPC.hpp and
// QZKPGenerator.hpp): 4 worker threads, 100-tx batches, 7 witnesses at a
// 2/3 threshold, circuit depth 20 with quantum proofs and error
// correction enabled, confidence threshold 0.95, measurement tolerance
// 0.10, a 1000-entry queue, a 10s ping interval and 30s connection
// timeout.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		NumWorkerThreads:         4,
		BatchSize:                100,
		WitnessCount:             7,
		ConsensusThreshold:       0.67,
		QuantumCircuitDepth:      20,
		UseQuantumProofs:         true,
		EnableErrorCorrection:    true,
		OptimalPhaseAngles:       4,
		OptimalMeasurementQubits: 8,
		ConfidenceThreshold:      0.95,
		MeasurementTolerance:     0.10,
		FidelityThreshold:        0.95,
		MaxQueueSize:             1000,
		MaxBatchSize:             100,
		PingInterval:             10 * time.Second,
		ConnectionTimeout:        30 * time.Second,
		DataDir:                  "./data",
	}
}

// Valid returns an error if c's fields violate spec-derived invariants.
func (c NodeConfig) Valid() error {
	switch {
	case c.NumWorkerThreads <= 0:
		return fmt.Errorf("%w: numWorkerThreads = %d, must be > 0", ErrInvalidWorkerThreads, c.NumWorkerThreads)
	case c.BatchSize <= 0 || c.BatchSize > 1000:
		return fmt.Errorf("%w: batchSize = %d, must be in [1, 1000]", ErrInvalidBatchSize, c.BatchSize)
	case c.WitnessCount <= 0:
		return fmt.Errorf("%w: witnessCount = %d, must be > 0", ErrInvalidWitnessCount, c.WitnessCount)
	case c.ConsensusThreshold <= 0 || c.ConsensusThreshold > 1:
		return fmt.Errorf("%w: consensusThreshold = %v, must be in (0, 1]", ErrInvalidThreshold, c.ConsensusThreshold)
	case c.QuantumCircuitDepth <= 0:
		return fmt.Errorf("%w: quantumCircuitDepth = %d, must be > 0", ErrInvalidCircuitDepth, c.QuantumCircuitDepth)
	case c.OptimalPhaseAngles < 0:
		return fmt.Errorf("%w: optimalPhaseAngles = %d, must be >= 0", ErrInvalidQZKPParam, c.OptimalPhaseAngles)
	case c.OptimalMeasurementQubits <= 0:
		return fmt.Errorf("%w: optimalMeasurementQubits = %d, must be > 0", ErrInvalidQZKPParam, c.OptimalMeasurementQubits)
	case c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidenceThreshold = %v, must be in (0, 1]", ErrInvalidQZKPParam, c.ConfidenceThreshold)
	case c.MeasurementTolerance < 0 || c.MeasurementTolerance > 1:
		return fmt.Errorf("%w: measurementTolerance = %v, must be in [0, 1]", ErrInvalidQZKPParam, c.MeasurementTolerance)
	case c.FidelityThreshold <= 0 || c.FidelityThreshold > 1:
		return fmt.Errorf("%w: fidelityThreshold = %v, must be in (0, 1]", ErrInvalidQZKPParam, c.FidelityThreshold)
	case c.MaxQueueSize <= 0:
		return fmt.Errorf("%w: maxQueueSize = %d, must be > 0", ErrInvalidQueueSize, c.MaxQueueSize)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: maxBatchSize = %d, must be > 0", ErrInvalidQueueSize, c.MaxBatchSize)
	case c.PingInterval <= 0:
		return fmt.Errorf("%w: pingInterval = %s, must be > 0", ErrInvalidPingInterval, c.PingInterval)
	case c.ConnectionTimeout <= c.PingInterval:
		return fmt.Errorf("%w: connectionTimeout = %s must exceed pingInterval = %s", ErrInvalidConnTimeout, c.ConnectionTimeout, c.PingInterval)
	case c.DataDir == "":
		return ErrMissingDataDir
	}
	return nil
}
