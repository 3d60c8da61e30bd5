// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebblestore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrollup/node/store"
)

func TestPutGetTx(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	var hash [32]byte
	hash[0] = 0xAB
	require.NoError(t, s.PutTx(hash, []byte("serialized-tx")))

	got, err := s.GetTx(hash)
	require.NoError(t, err)
	require.Equal(t, []byte("serialized-tx"), got)
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetBlock(42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestIterateBlocksAscending(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	for _, n := range []uint64{5, 1, 3} {
		require.NoError(t, s.PutBlock(n, []byte{byte(n)}))
	}

	var seen []uint64
	require.NoError(t, s.IterateBlocks(func(number uint64, _ []byte) bool {
		seen = append(seen, number)
		return true
	}))
	require.Equal(t, []uint64{1, 3, 5}, seen)
}

func TestIterateBlocksStopsEarly(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	for _, n := range []uint64{1, 2, 3} {
		require.NoError(t, s.PutBlock(n, []byte{byte(n)}))
	}

	var seen []uint64
	require.NoError(t, s.IterateBlocks(func(number uint64, _ []byte) bool {
		seen = append(seen, number)
		return number < 2
	}))
	require.Equal(t, []uint64{1, 2}, seen)
}

func TestProofRoundTrip(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.PutProof(7, []byte("proof-bytes")))
	got, err := s.GetProof(7)
	require.NoError(t, err)
	require.Equal(t, []byte("proof-bytes"), got)
}

func TestSync(t *testing.T) {
	s, err := OpenMem()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.PutBlock(1, []byte("x")))
	require.NoError(t, s.Sync())
}

var _ store.Persistent = (*Store)(nil)
