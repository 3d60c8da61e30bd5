// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/signature"
)

type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(publicKey, message, signature []byte) bool { return true }

func addr(b byte) account.Address {
	var a account.Address
	a[account.AddressLength-1] = b
	return a
}

func newStoreWithAccount(t *testing.T, a account.Address, balance uint64) *account.Store {
	t.Helper()
	s := account.New(acceptAllVerifier{}, nil)
	s.CreateAccount(a, balance, nil)
	return s
}

func TestGenerateThenVerifySucceeds(t *testing.T) {
	a := addr(1)
	store := newStoreWithAccount(t, a, 1000)

	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)

	proof, err := Generate(store, a, scheme, kp.SecretKey, 100)
	require.NoError(t, err)
	require.Equal(t, a, proof.Address)

	require.NoError(t, Verify(store, proof, scheme, kp.PublicKey, 200))
}

func TestGenerateRejectsUnknownAccount(t *testing.T) {
	store := account.New(acceptAllVerifier{}, nil)
	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)

	_, err = Generate(store, addr(9), scheme, kp.SecretKey, 100)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyRejectsFutureTimestamp(t *testing.T) {
	a := addr(1)
	store := newStoreWithAccount(t, a, 1000)
	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)

	proof, err := Generate(store, a, scheme, kp.SecretKey, 500)
	require.NoError(t, err)

	require.ErrorIs(t, Verify(store, proof, scheme, kp.PublicKey, 100), ErrTimestampInFuture)
}

func TestVerifyRejectsStaleStateRootAfterBalanceChanges(t *testing.T) {
	a := addr(1)
	b := addr(2)
	store := newStoreWithAccount(t, a, 1000)
	store.CreateAccount(b, 0, nil)

	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)

	proof, err := Generate(store, a, scheme, kp.SecretKey, 100)
	require.NoError(t, err)

	require.NoError(t, store.ApplyTransaction(&account.Transaction{
		Sender: a, Recipient: b, Amount: 100, Nonce: 1,
	}))

	require.ErrorIs(t, Verify(store, proof, scheme, kp.PublicKey, 200), ErrInvalidStateRoot)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	a := addr(1)
	store := newStoreWithAccount(t, a, 1000)
	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)
	other, err := scheme.GenerateKeyPair([]byte("a-completely-different-seed-xxxx"))
	require.NoError(t, err)

	proof, err := Generate(store, a, scheme, kp.SecretKey, 100)
	require.NoError(t, err)

	require.ErrorIs(t, Verify(store, proof, scheme, other.PublicKey, 200), ErrInvalidSignature)
}

func TestProcessZeroesBalanceAndBumpsNonce(t *testing.T) {
	a := addr(1)
	store := newStoreWithAccount(t, a, 1000)
	scheme := signature.NewEd25519Scheme()
	kp, err := scheme.GenerateKeyPair([]byte("exit-test-seed-material-32-bytes"))
	require.NoError(t, err)

	proof, err := Generate(store, a, scheme, kp.SecretKey, 100)
	require.NoError(t, err)
	require.NoError(t, Verify(store, proof, scheme, kp.PublicKey, 200))
	require.NoError(t, Process(store, proof))

	acc, ok := store.GetAccount(a)
	require.True(t, ok)
	require.Equal(t, uint64(0), acc.Balance)
	require.Equal(t, uint64(1), acc.Nonce)
}

func TestNowUnixIsPositive(t *testing.T) {
	require.Greater(t, NowUnix(), uint64(0))
}
