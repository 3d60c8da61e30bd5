// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batchproc

import "github.com/qrollup/node/evm"

// ExecutorPool is a fixed-size pool of EVM interpreters shared across
// worker goroutines (spec §4.6: "Each worker borrows an executor from a
// pool, returns it after use"). All interpreters in the pool read/write
// the same underlying account.Store, which already serializes storage
// access under its own lock (spec §5) — the pool exists to bound
// goroutine-local interpreter allocation, not to partition state.
type ExecutorPool struct {
	slots chan *evm.Interpreter
}

// NewExecutorPool builds a pool of size interpreters, all bound to
// state.
func NewExecutorPool(size int, state evm.StateReader) *ExecutorPool {
	p := &ExecutorPool{slots: make(chan *evm.Interpreter, size)}
	for i := 0; i < size; i++ {
		p.slots <- evm.NewInterpreter(state)
	}
	return p
}

// Borrow blocks until an interpreter is available.
func (p *ExecutorPool) Borrow() *evm.Interpreter {
	return <-p.slots
}

// Return returns in to the pool.
func (p *ExecutorPool) Return(in *evm.Interpreter) {
	p.slots <- in
}
