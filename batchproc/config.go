// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package batchproc implements the Parallel Batch Processor (C8):
// conflict-free sub-batch partitioning, a bounded submission queue, a
// per-contract-address mutex that serializes contract calls (waiters are
// not ordered), and an EVM executor
// pool shared across workers.
package batchproc

import "errors"

// Config mirrors the original_source ParallelProcessorConfig defaults.
type Config struct {
	NumWorkerThreads              int
	MaxQueueSize                  int
	EnableContractParallelization bool
	MaxParallelContracts          int
	MaxBatchSize                  int
}

// DefaultConfig returns the origin's defaults: 4 worker threads, a queue
// of 1000, contract parallelization enabled with up to 4 concurrent
// contracts, and a 100-transaction batch cap.
func DefaultConfig() Config {
	return Config{
		NumWorkerThreads:              4,
		MaxQueueSize:                  1000,
		EnableContractParallelization: true,
		MaxParallelContracts:          4,
		MaxBatchSize:                  100,
	}
}

var (
	ErrInvalidWorkerCount = errors.New("batchproc: worker count must be positive")
	ErrInvalidQueueSize   = errors.New("batchproc: max queue size must be positive")
	ErrInvalidBatchSize   = errors.New("batchproc: max batch size must be positive")
	ErrInvalidContractFan = errors.New("batchproc: max parallel contracts must be positive")
)

// Valid checks the configuration's bounds.
func (c Config) Valid() error {
	if c.NumWorkerThreads <= 0 {
		return ErrInvalidWorkerCount
	}
	if c.MaxQueueSize <= 0 {
		return ErrInvalidQueueSize
	}
	if c.MaxBatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.EnableContractParallelization && c.MaxParallelContracts <= 0 {
		return ErrInvalidContractFan
	}
	return nil
}
