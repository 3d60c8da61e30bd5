// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package evm

import "github.com/qrollup/node/account"

// StateReader is the account-store surface the interpreter needs for the
// context and storage opcode groups. account.Store satisfies it directly;
// keeping it as an interface here (rather than importing *account.Store
// everywhere) lets tests substitute an in-memory fake.
type StateReader interface {
	GetStorage(addr account.Address, key account.StorageKey) (account.StorageValue, bool)
	SetStorage(addr account.Address, key account.StorageKey, value account.StorageValue)
	GetCode(addr account.Address) ([]byte, bool)
	GetAccount(addr account.Address) (account.Account, bool)
}

// ExecutionContext carries every environmental value an opcode may read
// (spec §4.2 context group: ADDRESS/BALANCE/CALLER/CALLVALUE/TIMESTAMP/
// NUMBER/CHAINID). Every field is supplied by the caller up front so
// execution never reaches for global or wall-clock state, preserving the
// determinism property (spec §8 property 9).
type ExecutionContext struct {
	Address     account.Address
	Caller      account.Address
	CallValue   uint64
	GasPrice    uint64
	Timestamp   uint64
	BlockNumber uint64
	ChainID     uint64
}
