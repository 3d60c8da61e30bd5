// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import "errors"

// Transaction-level errors (spec §7), returned from apply_transaction and
// apply_transactions.
var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidNonce        = errors.New("invalid nonce")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSenderNotFound      = errors.New("sender account not found")
	ErrCodeImmutable       = errors.New("account code is already set")
)
