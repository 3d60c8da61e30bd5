// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package evm

import "github.com/holiman/uint256"

// maxStackDepth bounds the operand stack (spec §4.2), matching the EVM's
// own 1024-element limit.
const maxStackDepth = 1024

// stack is a 256-bit-word operand stack, grounded on the same
// github.com/holiman/uint256 word type the go-ethereum-family examples use
// for EVM arithmetic (avoids math/big's heap allocation per operation).
type stack struct {
	data []uint256.Int
}

func newStack() *stack {
	return &stack{data: make([]uint256.Int, 0, 16)}
}

func (s *stack) push(v *uint256.Int) error {
	if len(s.data) >= maxStackDepth {
		return ErrStackOverflow
	}
	s.data = append(s.data, *v)
	return nil
}

func (s *stack) pop() (uint256.Int, error) {
	if len(s.data) == 0 {
		return uint256.Int{}, ErrStackUnderflow
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

func (s *stack) peek(depth int) (*uint256.Int, error) {
	if depth >= len(s.data) {
		return nil, ErrStackUnderflow
	}
	return &s.data[len(s.data)-1-depth], nil
}

// dup pushes a copy of the n-th (1-indexed) item from the top.
func (s *stack) dup(n int) error {
	v, err := s.peek(n - 1)
	if err != nil {
		return err
	}
	cp := *v
	return s.push(&cp)
}

// swap exchanges the top item with the n-th (1-indexed) item below it.
func (s *stack) swap(n int) error {
	if n >= len(s.data) {
		return ErrStackUnderflow
	}
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
	return nil
}

func (s *stack) len() int {
	return len(s.data)
}
