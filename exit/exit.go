// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exit implements Emergency Exit (C10): a per-account exit proof
// tied to a committed state root, letting an account holder withdraw
// even if the rest of the system stalls.
package exit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/qzkp"
	"github.com/qrollup/node/signature"
)

// exitQubits is the width of the state encoding: 64 bits of balance plus
// 64 bits of nonce, one qubit per bit (spec §4.8).
const exitQubits = 128

var (
	ErrAccountNotFound   = errors.New("exit: account not found")
	ErrTimestampInFuture = errors.New("exit: proof timestamp is in the future")
	ErrInvalidStateRoot  = errors.New("exit: recomputed state root does not match proof")
	ErrInvalidSignature  = errors.New("exit: signature does not verify")
)

// Proof is the output of Generate: a signed commitment that address held
// (balance, nonce) at the time of signing.
type Proof struct {
	Address   account.Address
	Timestamp uint64
	StateRoot []byte
	Signature []byte
}

// encodeAccountQState builds the 128-qubit state described in spec §4.8:
// start from |0...0>, inject each bit of balance then nonce via a
// conditional Pauli-X, Hadamard every qubit, then CNOT-entangle adjacent
// pairs, and finally renormalize.
func encodeAccountQState(balance, nonce uint64) (*qzkp.QState, error) {
	state, err := qzkp.NewZeroState(exitQubits)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 64; i++ {
		if balance&(1<<uint(i)) != 0 {
			if err := state.ApplyPauliX(i); err != nil {
				return nil, err
			}
		}
	}
	for i := 0; i < 64; i++ {
		if nonce&(1<<uint(i)) != 0 {
			if err := state.ApplyPauliX(64 + i); err != nil {
				return nil, err
			}
		}
	}

	for q := 0; q < exitQubits; q++ {
		if err := state.ApplyHadamard(q); err != nil {
			return nil, err
		}
	}
	for q := 0; q+1 < exitQubits; q += 2 {
		if err := state.ApplyCNOT(q, q+1); err != nil {
			return nil, err
		}
	}

	state.Renormalize()
	return state, nil
}

// exitMessage builds the signed payload: address || timestamp || state_root.
func exitMessage(addr account.Address, timestamp uint64, stateRoot []byte) []byte {
	msg := make([]byte, 0, account.AddressLength+8+len(stateRoot))
	msg = append(msg, addr[:]...)
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], timestamp)
	msg = append(msg, ts[:]...)
	msg = append(msg, stateRoot...)
	return msg
}

// Generate builds a signed exit proof for addr against store's current
// balance/nonce (spec §4.8 generate_proof).
func Generate(store *account.Store, addr account.Address, scheme signature.Scheme, secretKey []byte, timestamp uint64) (*Proof, error) {
	acc, ok := store.GetAccount(addr)
	if !ok {
		return nil, ErrAccountNotFound
	}

	state, err := encodeAccountQState(acc.Balance, acc.Nonce)
	if err != nil {
		return nil, err
	}
	stateRoot := state.DigestBytes()

	sig, err := scheme.Sign(secretKey, exitMessage(addr, timestamp, stateRoot))
	if err != nil {
		return nil, err
	}

	return &Proof{
		Address:   addr,
		Timestamp: timestamp,
		StateRoot: stateRoot,
		Signature: sig,
	}, nil
}

// Verify implements spec §4.8 verify_proof: the timestamp must not be in
// the future, the account must exist, the recomputed QState digest must
// match the proof's state_root, and the signature must verify over the
// same message.
func Verify(store *account.Store, proof *Proof, scheme signature.Scheme, publicKey []byte, now uint64) error {
	if proof.Timestamp > now {
		return ErrTimestampInFuture
	}

	acc, ok := store.GetAccount(proof.Address)
	if !ok {
		return ErrAccountNotFound
	}

	state, err := encodeAccountQState(acc.Balance, acc.Nonce)
	if err != nil {
		return err
	}
	stateRoot := state.DigestBytes()
	if !bytes.Equal(stateRoot, proof.StateRoot) {
		return ErrInvalidStateRoot
	}

	msg := exitMessage(proof.Address, proof.Timestamp, proof.StateRoot)
	if !scheme.Verify(publicKey, msg, proof.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// Process implements spec §4.8 process_exit: on a proof that has already
// verified, zero the account's balance and increment its nonce atomically
// via the account store.
func Process(store *account.Store, proof *Proof) error {
	return store.ProcessExit(proof.Address)
}

// NowUnix is the clock Generate/Verify callers use to stamp and bound
// proof timestamps; exposed so the P2P/bridge layers can share one
// source of truth for "now" instead of each calling time.Now directly.
func NowUnix() uint64 {
	return uint64(time.Now().Unix())
}
