// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// acceptAllVerifier treats every signature as valid, isolating store tests
// from the signature package (account must not import it).
type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(publicKey, message, signature []byte) bool { return true }

func addr(b byte) Address {
	var a Address
	a[AddressLength-1] = b
	return a
}

func TestApplyTransactionSingleTransfer(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, []byte("alice-pk"))
	s.CreateAccount(bob, 0, []byte("bob-pk"))

	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, s.ApplyTransaction(tx))

	a, ok := s.GetAccount(alice)
	require.True(t, ok)
	startBalance := uint64(1000)
	require.Equal(t, startBalance-100-GasCostEstimate, a.Balance)
	require.Equal(t, uint64(1), a.Nonce)

	b, ok := s.GetAccount(bob)
	require.True(t, ok)
	require.Equal(t, uint64(100), b.Balance)

	hist := s.History(alice)
	require.Len(t, hist, 1)
	require.Equal(t, tx.Hash(), hist[0])
}

func TestApplyTransactionRejectsBadNonce(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 10, Nonce: 2, GasPrice: 1, GasLimit: 21000}
	require.ErrorIs(t, s.ApplyTransaction(tx), ErrInvalidNonce)
}

func TestApplyTransactionRejectsInsufficientBalance(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 50, nil)
	s.CreateAccount(bob, 0, nil)

	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.ErrorIs(t, s.ApplyTransaction(tx), ErrInsufficientBalance)
}

func TestApplyTransactionsAllOrNothing(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	rootBefore := s.GetStateRoot()
	aliceBefore, _ := s.GetAccount(alice)
	bobBefore, _ := s.GetAccount(bob)

	txs := []*Transaction{
		{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000},
		// Wrong nonce: this one must fail and roll back the first.
		{Sender: alice, Recipient: bob, Amount: 50, Nonce: 3, GasPrice: 1, GasLimit: 21000},
	}

	err := s.ApplyTransactions(txs)
	require.ErrorIs(t, err, ErrInvalidNonce)

	aliceAfter, _ := s.GetAccount(alice)
	bobAfter, _ := s.GetAccount(bob)
	require.Equal(t, aliceBefore, aliceAfter)
	require.Equal(t, bobBefore, bobAfter)
	require.Equal(t, rootBefore, s.GetStateRoot())
	require.Empty(t, s.History(alice))
}

func TestApplyTransactionsCommitsWhenAllValid(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	txs := []*Transaction{
		{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000},
		{Sender: alice, Recipient: bob, Amount: 50, Nonce: 2, GasPrice: 1, GasLimit: 21000},
	}
	require.NoError(t, s.ApplyTransactions(txs))

	bobAfter, _ := s.GetAccount(bob)
	require.Equal(t, uint64(150), bobAfter.Balance)
	require.Len(t, s.History(alice), 2)
}

func TestStateRootDeterministicAcrossEquivalentStores(t *testing.T) {
	build := func() *Store {
		s := New(acceptAllVerifier{}, nil)
		s.CreateAccount(addr(2), 500, nil)
		s.CreateAccount(addr(1), 1000, nil)
		return s
	}
	a := build()
	b := build()
	require.Equal(t, a.GetStateRoot(), b.GetStateRoot())

	// Order of CreateAccount calls must not affect the root.
	c := New(acceptAllVerifier{}, nil)
	c.CreateAccount(addr(1), 1000, nil)
	c.CreateAccount(addr(2), 500, nil)
	require.Equal(t, a.GetStateRoot(), c.GetStateRoot())
}

func TestStateRootChangesOnCommit(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	rootBeforeCommit := s.GetStateRoot()
	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, s.ApplyTransaction(tx))

	newRoot := s.CommitState()
	require.NotEqual(t, rootBeforeCommit, newRoot)
	require.Equal(t, newRoot, s.GetStateRoot())
}

func TestRollbackStateRestoresLastCommit(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)
	rootBeforeCommit := s.GetStateRoot()
	s.CommitState()
	aliceCommitted, _ := s.GetAccount(alice)

	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, s.ApplyTransaction(tx))
	require.NotEqual(t, aliceCommitted.Balance, mustAccount(t, s, alice).Balance)

	s.RollbackState()
	require.Equal(t, rootBeforeCommit, s.GetStateRoot())
	require.Equal(t, aliceCommitted, mustAccount(t, s, alice))

	// A second rollback must be safe and idempotent: the durable baseline
	// must not have been corrupted by aliasing into the live state on the
	// first rollback.
	s.RollbackState()
	require.Equal(t, aliceCommitted, mustAccount(t, s, alice))
}

func TestRollbackDoesNotAliasCommittedSnapshot(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)
	s.CommitState()

	tx1 := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, s.ApplyTransaction(tx1))
	s.RollbackState()

	// Mutate live state again after the rollback; the committed baseline
	// used by a subsequent rollback must reflect the original commit, not
	// whatever the live maps happen to reference.
	tx2 := &Transaction{Sender: alice, Recipient: bob, Amount: 200, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, s.ApplyTransaction(tx2))
	s.RollbackState()

	a := mustAccount(t, s, alice)
	require.Equal(t, uint64(1000), a.Balance)
	require.Equal(t, uint64(0), a.Nonce)
}

func TestNonceMonotonicallyIncreases(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	for i := uint64(1); i <= 5; i++ {
		tx := &Transaction{Sender: alice, Recipient: bob, Amount: 1, Nonce: i, GasPrice: 0, GasLimit: 21000}
		require.NoError(t, s.ApplyTransaction(tx))
		a := mustAccount(t, s, alice)
		require.Equal(t, i, a.Nonce)
	}

	// Replaying an already-used nonce must fail, never regress.
	replay := &Transaction{Sender: alice, Recipient: bob, Amount: 1, Nonce: 3, GasPrice: 0, GasLimit: 21000}
	require.ErrorIs(t, s.ApplyTransaction(replay), ErrInvalidNonce)
}

func TestTransactionHashStableAndExcludesSignature(t *testing.T) {
	tx := &Transaction{Sender: addr(1), Recipient: addr(2), Amount: 10, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	h1 := tx.Hash()
	h2 := tx.Hash()
	require.Equal(t, h1, h2)

	tx.Signature = []byte("some-signature")
	require.Equal(t, h1, tx.Hash())

	other := &Transaction{Sender: addr(1), Recipient: addr(2), Amount: 11, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NotEqual(t, h1, other.Hash())
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	alice, bob := addr(1), addr(2)
	s.CreateAccount(alice, 1000, nil)
	s.CreateAccount(bob, 0, nil)

	clone := s.Clone()
	tx := &Transaction{Sender: alice, Recipient: bob, Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000}
	require.NoError(t, clone.ApplyTransaction(tx))

	original, _ := s.GetAccount(alice)
	require.Equal(t, uint64(1000), original.Balance)
}

func TestSetCodeImmutableOnceSet(t *testing.T) {
	s := New(acceptAllVerifier{}, nil)
	contract := addr(9)
	s.CreateAccount(contract, 0, nil)

	require.NoError(t, s.SetCode(contract, []byte{0x60, 0x00}))
	require.ErrorIs(t, s.SetCode(contract, []byte{0x60, 0x01}), ErrCodeImmutable)

	code, ok := s.GetCode(contract)
	require.True(t, ok)
	require.Equal(t, []byte{0x60, 0x00}, code)
}

func mustAccount(t *testing.T, s *Store, a Address) Account {
	t.Helper()
	acc, ok := s.GetAccount(a)
	require.True(t, ok)
	return acc
}
