// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batchproc

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/evm"
	"github.com/qrollup/node/internal/telemetry"
)

type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(publicKey, message, signature []byte) bool { return true }

type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(publicKey, message, signature []byte) bool { return false }

func addr(b byte) account.Address {
	var a account.Address
	a[account.AddressLength-1] = b
	return a
}

func newFundedStore() *account.Store {
	s := account.New(acceptAllVerifier{}, nil)
	for i := byte(1); i <= 6; i++ {
		s.CreateAccount(addr(i), 1000, nil)
	}
	return s
}

func TestConflictsSharesAnyOfSenderRecipient(t *testing.T) {
	a := &account.Transaction{Sender: addr(1), Recipient: addr(2)}
	b := &account.Transaction{Sender: addr(2), Recipient: addr(3)}
	c := &account.Transaction{Sender: addr(4), Recipient: addr(5)}

	require.True(t, Conflicts(a, b))
	require.False(t, Conflicts(a, c))
}

func TestPartitionGroupsDisjointTransactionsTogether(t *testing.T) {
	txs := []*account.Transaction{
		{Sender: addr(1), Recipient: addr(2), Nonce: 1},
		{Sender: addr(3), Recipient: addr(4), Nonce: 1},
		{Sender: addr(2), Recipient: addr(5), Nonce: 1},
	}
	subBatches := Partition(txs)
	require.Len(t, subBatches, 2)
	require.Len(t, subBatches[0], 2)
	require.Len(t, subBatches[1], 1)
}

func TestSubmitTransactionRejectsWhenQueueFull(t *testing.T) {
	cfg := Config{NumWorkerThreads: 1, MaxQueueSize: 1, MaxBatchSize: 1}
	p := NewProcessor(cfg, newFundedStore())

	require.NoError(t, p.SubmitTransaction(&account.Transaction{Sender: addr(1), Recipient: addr(2), Nonce: 1}))
	err := p.SubmitTransaction(&account.Transaction{Sender: addr(3), Recipient: addr(4), Nonce: 1})
	require.ErrorIs(t, err, ErrBackpressureRejected)
}

func TestDrainQueueRespectsMaxBatchSize(t *testing.T) {
	cfg := Config{NumWorkerThreads: 1, MaxQueueSize: 10, MaxBatchSize: 2}
	p := NewProcessor(cfg, newFundedStore())
	for i := byte(1); i <= 3; i++ {
		require.NoError(t, p.SubmitTransaction(&account.Transaction{Sender: addr(i), Recipient: addr(i + 10), Nonce: 1}))
	}
	drained := p.DrainQueue()
	require.Len(t, drained, 2)
	require.Equal(t, 1, p.QueueLen())
}

func TestSubmitBatchAppliesAllTransfers(t *testing.T) {
	store := newFundedStore()
	cfg := DefaultConfig()
	p := NewProcessor(cfg, store)

	batch := []*account.Transaction{
		{Sender: addr(1), Recipient: addr(2), Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000},
		{Sender: addr(3), Recipient: addr(4), Amount: 50, Nonce: 1, GasPrice: 1, GasLimit: 21000},
	}
	ok, err := p.SubmitBatch(context.Background(), batch)
	require.NoError(t, err)
	require.True(t, ok)

	acc2, _ := store.GetAccount(addr(2))
	require.Equal(t, uint64(1100), acc2.Balance)
	acc4, _ := store.GetAccount(addr(4))
	require.Equal(t, uint64(1050), acc4.Balance)
}

func TestSubmitBatchRoutesCallDataThroughEVMExecutor(t *testing.T) {
	store := newFundedStore()
	cfg := DefaultConfig()
	p := NewProcessor(cfg, store)

	// STOP is always a successful, zero-effort execution.
	require.NoError(t, store.SetCode(addr(2), []byte{byte(evm.STOP)}))

	batch := []*account.Transaction{
		{Sender: addr(1), Recipient: addr(2), Amount: 10, Nonce: 1, GasPrice: 1, GasLimit: 21000, Data: []byte{0x01}},
	}
	ok, err := p.SubmitBatch(context.Background(), batch)
	require.NoError(t, err)
	require.True(t, ok)

	sender, _ := store.GetAccount(addr(1))
	require.Equal(t, uint64(1), sender.Nonce)
	startBalance := uint64(1000)
	require.Equal(t, startBalance-10-account.GasCostEstimate, sender.Balance)

	recipient, _ := store.GetAccount(addr(2))
	require.Equal(t, uint64(1010), recipient.Balance)
}

func TestSubmitBatchRejectsContractCallWithBadSignature(t *testing.T) {
	store := account.New(rejectAllVerifier{}, nil)
	for i := byte(1); i <= 2; i++ {
		store.CreateAccount(addr(i), 1000, nil)
	}
	require.NoError(t, store.SetCode(addr(2), []byte{byte(evm.STOP)}))

	p := NewProcessor(DefaultConfig(), store)
	batch := []*account.Transaction{
		{Sender: addr(1), Recipient: addr(2), Nonce: 1, GasPrice: 1, GasLimit: 21000, Data: []byte{0x01}},
	}
	ok, err := p.SubmitBatch(context.Background(), batch)
	require.ErrorIs(t, err, account.ErrInvalidSignature)
	require.False(t, ok)
}

func TestSubmitBatchRejectsReplayedContractCall(t *testing.T) {
	store := newFundedStore()
	require.NoError(t, store.SetCode(addr(2), []byte{byte(evm.STOP)}))

	p := NewProcessor(DefaultConfig(), store)
	tx := &account.Transaction{Sender: addr(1), Recipient: addr(2), Nonce: 1, GasPrice: 1, GasLimit: 21000, Data: []byte{0x01}}

	ok, err := p.SubmitBatch(context.Background(), []*account.Transaction{tx})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = p.SubmitBatch(context.Background(), []*account.Transaction{tx})
	require.ErrorIs(t, err, account.ErrInvalidNonce)
	require.False(t, ok)
}

func TestProcessorRecordsQueueAndBackpressureMetrics(t *testing.T) {
	store := newFundedStore()
	cfg := DefaultConfig()
	cfg.MaxQueueSize = 1
	p := NewProcessor(cfg, store)
	m := telemetry.NewBatchProcMetrics(telemetry.NewRegistry(nil))
	p.SetMetrics(m)

	require.NoError(t, p.SubmitTransaction(&account.Transaction{Sender: addr(1), Recipient: addr(2), Nonce: 1}))
	require.Equal(t, float64(1), testutil.ToFloat64(m.QueueDepth))

	require.ErrorIs(t, p.SubmitTransaction(&account.Transaction{Sender: addr(3), Recipient: addr(4), Nonce: 1}), ErrBackpressureRejected)
	require.Equal(t, float64(1), testutil.ToFloat64(m.BackpressureDropped))
}

func TestProcessorRecordsSubBatchDispatchMetric(t *testing.T) {
	store := newFundedStore()
	p := NewProcessor(DefaultConfig(), store)
	m := telemetry.NewBatchProcMetrics(telemetry.NewRegistry(nil))
	p.SetMetrics(m)

	require.NoError(t, p.SubmitTransaction(&account.Transaction{Sender: addr(1), Recipient: addr(2), Nonce: 1}))
	batch := p.DrainQueue()
	ok, err := p.SubmitBatch(context.Background(), batch)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, float64(1), testutil.ToFloat64(m.SubBatchesDispatched))
}
