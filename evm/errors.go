// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package evm

import "errors"

// Execution errors (spec §4.2, §7). A non-nil error from Execute always
// means the contract's state mutations must be discarded by the caller;
// the executor itself never partially commits storage writes on failure.
var (
	ErrOutOfGas          = errors.New("evm: out of gas")
	ErrInvalidOpcode     = errors.New("evm: invalid opcode")
	ErrStackUnderflow    = errors.New("evm: stack underflow")
	ErrStackOverflow     = errors.New("evm: stack overflow")
	ErrBadJump           = errors.New("evm: jump destination is not JUMPDEST")
	ErrMemoryOutOfBounds = errors.New("evm: memory access out of bounds")
)
