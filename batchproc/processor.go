// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batchproc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/evm"
	"github.com/qrollup/node/internal/telemetry"
)

// ErrBackpressureRejected is returned by SubmitTransaction when the
// bounded queue is already at cfg.MaxQueueSize (spec §4.6).
var ErrBackpressureRejected = errors.New("batchproc: submission queue full")

// ErrContractCallFailed wraps an unsuccessful EVM execution during batch
// application.
var ErrContractCallFailed = errors.New("batchproc: contract call failed")

// Processor implements the Parallel Batch Processor (C8): a bounded
// submission queue, conflict-free sub-batch partitioning, an EVM
// executor pool, and per-contract-address serialization through one mutex
// per address (calls waiting on the same contract run one at a time, in no
// guaranteed order).
type Processor struct {
	cfg   Config
	store *account.Store
	pool  *ExecutorPool

	mu    sync.Mutex
	queue []*account.Transaction

	contractMu    sync.Mutex
	contractLocks map[account.Address]*sync.Mutex
	contractSem   *semaphore.Weighted

	metricsMu sync.Mutex
	metrics   *telemetry.BatchProcMetrics
}

// NewProcessor builds a Processor with cfg.NumWorkerThreads executors in
// its pool, all bound to store.
func NewProcessor(cfg Config, store *account.Store) *Processor {
	fan := cfg.MaxParallelContracts
	if fan <= 0 {
		fan = 1
	}
	return &Processor{
		cfg:           cfg,
		store:         store,
		pool:          NewExecutorPool(cfg.NumWorkerThreads, store),
		contractLocks: make(map[account.Address]*sync.Mutex),
		contractSem:   semaphore.NewWeighted(int64(fan)),
	}
}

// SetMetrics attaches m so the queue depth, backpressure rejections,
// dispatched sub-batches, and worker utilization are recorded. Passing
// nil disables recording.
func (p *Processor) SetMetrics(m *telemetry.BatchProcMetrics) {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	p.metrics = m
}

func (p *Processor) metricsSnapshot() *telemetry.BatchProcMetrics {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	return p.metrics
}

// SubmitTransaction pushes tx onto the bounded submission queue,
// returning ErrBackpressureRejected if it is already full (spec §4.6
// submit_transaction).
func (p *Processor) SubmitTransaction(tx *account.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) >= p.cfg.MaxQueueSize {
		if m := p.metricsSnapshot(); m != nil {
			m.BackpressureDropped.Inc()
		}
		return ErrBackpressureRejected
	}
	p.queue = append(p.queue, tx)
	if m := p.metricsSnapshot(); m != nil {
		m.QueueDepth.Set(float64(len(p.queue)))
	}
	return nil
}

// QueueLen reports how many transactions are queued.
func (p *Processor) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// DrainQueue removes and returns up to cfg.MaxBatchSize queued
// transactions in FIFO order.
func (p *Processor) DrainQueue() []*account.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.queue)
	if n > p.cfg.MaxBatchSize {
		n = p.cfg.MaxBatchSize
	}
	drained := p.queue[:n:n]
	p.queue = p.queue[n:]
	return drained
}

// SubmitBatch partitions batch into conflict-free sub-batches (spec §4.6
// partition), dispatches them serially in order, and applies each
// sub-batch's transactions across the worker pool. Returns true iff
// every transaction in every sub-batch applied successfully.
func (p *Processor) SubmitBatch(ctx context.Context, batch []*account.Transaction) (bool, error) {
	subBatches := Partition(batch)

	m := p.metricsSnapshot()
	for _, sub := range subBatches {
		if err := p.applySubBatch(ctx, sub); err != nil {
			return false, err
		}
		if m != nil {
			m.SubBatchesDispatched.Inc()
		}
	}
	return true, nil
}

func (p *Processor) applySubBatch(ctx context.Context, sub []*account.Transaction) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.NumWorkerThreads)

	if m := p.metricsSnapshot(); m != nil {
		busy := float64(len(sub))
		if poolCap := float64(p.cfg.NumWorkerThreads); busy > poolCap {
			busy = poolCap
		}
		m.WorkerUtilization.Set(busy / float64(p.cfg.NumWorkerThreads))
		defer m.WorkerUtilization.Set(0)
	}

	for _, tx := range sub {
		tx := tx
		g.Go(func() error {
			return p.applyOne(gctx, tx)
		})
	}
	return g.Wait()
}

// applyOne applies a single transaction. Every transaction, plain
// transfer or contract call, first goes through the account store's own
// apply path (spec §4.1 apply_transaction): that is where signature
// verification, the nonce check/increment, and the amount+gas debit/
// credit live, and it is the sole place they happen. Transactions
// carrying call data are then additionally routed to an EVM executor
// borrowed from the pool, serialized per contract address and bounded
// by cfg.MaxParallelContracts distinct concurrent contracts.
func (p *Processor) applyOne(ctx context.Context, tx *account.Transaction) error {
	if err := p.store.ApplyTransaction(tx); err != nil {
		return err
	}

	if !p.cfg.EnableContractParallelization || len(tx.Data) == 0 {
		return nil
	}

	if err := p.contractSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.contractSem.Release(1)

	lock := p.contractLock(tx.Recipient)
	lock.Lock()
	defer lock.Unlock()

	in := p.pool.Borrow()
	defer p.pool.Return(in)

	code, _ := p.store.GetCode(tx.Recipient)
	execCtx := evm.ExecutionContext{
		Address:   tx.Recipient,
		Caller:    tx.Sender,
		CallValue: tx.Amount,
		GasPrice:  tx.GasPrice,
	}
	result := in.Execute(execCtx, code, tx.Data, tx.GasLimit)
	if !result.Success {
		return fmt.Errorf("%w: %v", ErrContractCallFailed, result.Error)
	}
	return nil
}

func (p *Processor) contractLock(addr account.Address) *sync.Mutex {
	p.contractMu.Lock()
	defer p.contractMu.Unlock()
	lock, ok := p.contractLocks[addr]
	if !ok {
		lock = &sync.Mutex{}
		p.contractLocks[addr] = lock
	}
	return lock
}
