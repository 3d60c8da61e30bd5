// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fraud

import (
	"math/rand"
	"testing"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/qzkp"
	"github.com/stretchr/testify/require"
)

type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(publicKey, message, signature []byte) bool { return true }

func addr(b byte) account.Address {
	var a account.Address
	a[account.AddressLength-1] = b
	return a
}

func newFundedStore() *account.Store {
	s := account.New(acceptAllVerifier{}, nil)
	s.CreateAccount(addr(1), 1000, nil)
	s.CreateAccount(addr(2), 1000, nil)
	return s
}

func honestTxs() []*account.Transaction {
	return []*account.Transaction{
		{Sender: addr(1), Recipient: addr(2), Amount: 100, Nonce: 1, GasPrice: 1, GasLimit: 21000},
	}
}

func TestGenerateAndVerifyHonestTransitionFindsNoFraud(t *testing.T) {
	pre := newFundedStore()
	post := pre.Clone()
	txs := honestTxs()
	require.NoError(t, post.ApplyTransactions(txs))

	cfg := qzkp.DefaultConfig()
	proof, err := Generate(pre, post, txs, cfg, rand.New(rand.NewSource(1)), 1000)
	require.NoError(t, err)

	fraudDetected, err := Verify(proof, cfg, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	require.False(t, fraudDetected)
}

func TestGenerateAndVerifyTamperedPostStateDetectsFraud(t *testing.T) {
	pre := newFundedStore()
	post := pre.Clone()
	txs := honestTxs()
	require.NoError(t, post.ApplyTransactions(txs))

	tampered, _ := post.GetAccount(addr(2))
	tampered.Balance += 5000
	post.CreateAccount(addr(2), tampered.Balance, nil)

	cfg := qzkp.DefaultConfig()
	proof, err := Generate(pre, post, txs, cfg, rand.New(rand.NewSource(3)), 1000)
	require.NoError(t, err)

	fraudDetected, err := Verify(proof, cfg, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	require.True(t, fraudDetected)
}

func TestVerifyRejectsRootMismatch(t *testing.T) {
	pre := newFundedStore()
	post := pre.Clone()
	txs := honestTxs()
	require.NoError(t, post.ApplyTransactions(txs))

	cfg := qzkp.DefaultConfig()
	proof, err := Generate(pre, post, txs, cfg, rand.New(rand.NewSource(5)), 1000)
	require.NoError(t, err)

	proof.PostRoot[0] ^= 0xFF
	_, err = Verify(proof, cfg, rand.New(rand.NewSource(6)))
	require.ErrorIs(t, err, ErrRootMismatch)
}

func TestEncodeAccountStateIsOrderIndependentOfInsertion(t *testing.T) {
	a := account.New(acceptAllVerifier{}, nil)
	a.CreateAccount(addr(2), 20, nil)
	a.CreateAccount(addr(1), 10, nil)

	b := account.New(acceptAllVerifier{}, nil)
	b.CreateAccount(addr(1), 10, nil)
	b.CreateAccount(addr(2), 20, nil)

	require.Equal(t, encodeAccountState(a), encodeAccountState(b))
}
