// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package evm implements the EVM-like opcode interpreter (C5): a
// stack/memory/storage machine over an explicitly enumerated opcode
// subset with deterministic gas accounting, grounded on the go-ethereum-
// family interpreters in the retrieved examples but deliberately smaller
// (spec Non-goal: "a well-defined opcode subset with deterministic gas",
// not full EVM parity).
package evm

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/qrollup/node/account"
	"github.com/zeebo/blake3"
)

// ExecutionResult is the outcome of execute_contract (spec §4.2).
type ExecutionResult struct {
	Success    bool
	ReturnData []byte
	GasUsed    uint64
	Error      error
}

// Log is a LOG0..LOG4 emission. Execute collects logs while the call runs
// but does not return them: ExecutionResult has no field that carries them.
type Log struct {
	Address account.Address
	Topics  []uint256.Int
	Data    []byte
}

// Interpreter executes one contract call at a time; it is not reentrant
// and not safe for concurrent use, mirroring the teacher-adjacent
// ZVM/EVM convention that one interpreter value serves one call.
type Interpreter struct {
	state StateReader
}

// NewInterpreter returns an Interpreter reading/writing through state.
func NewInterpreter(state StateReader) *Interpreter {
	return &Interpreter{state: state}
}

// Execute runs code against input with gasLimit, per spec §4.2:
// execute_contract(address, code, input, gas_limit) -> {success,
// return_data, gas_used, error?}.
func (in *Interpreter) Execute(ctx ExecutionContext, code, input []byte, gasLimit uint64) ExecutionResult {
	jumpdests := collectJumpdests(code)

	st := newStack()
	mem := newMemory()
	var logs []Log

	var gasUsed uint64
	pc := 0

	charge := func(cost uint64) error {
		if gasUsed+cost > gasLimit {
			return ErrOutOfGas
		}
		gasUsed += cost
		return nil
	}

	fail := func(err error) ExecutionResult {
		return ExecutionResult{Success: false, GasUsed: gasUsed, Error: err}
	}

	// SSTORE writes stay in pending until the call ends successfully, so a
	// failed or reverted call leaves contract storage untouched.
	pending := make(map[account.StorageKey]account.StorageValue)
	succeed := func(ret []byte) ExecutionResult {
		for k, v := range pending {
			in.state.SetStorage(ctx.Address, k, v)
		}
		return ExecutionResult{Success: true, ReturnData: ret, GasUsed: gasUsed}
	}

	for pc < len(code) {
		op := OpCode(code[pc])

		cost, known := gasCost[op]
		if !known {
			return fail(fmt.Errorf("%w: 0x%02x", ErrInvalidOpcode, op))
		}
		if err := charge(cost); err != nil {
			return fail(err)
		}

		switch {
		case op == STOP:
			return succeed(nil)

		case op == ADD, op == MUL, op == SUB, op == DIV, op == SDIV, op == MOD, op == SMOD, op == EXP:
			b, err := st.pop()
			if err != nil {
				return fail(err)
			}
			a, err := st.pop()
			if err != nil {
				return fail(err)
			}
			res := binaryOp(op, &a, &b)
			if err := st.push(&res); err != nil {
				return fail(err)
			}

		case op == ADDMOD || op == MULMOD:
			c, err := st.pop()
			if err != nil {
				return fail(err)
			}
			b, err := st.pop()
			if err != nil {
				return fail(err)
			}
			a, err := st.pop()
			if err != nil {
				return fail(err)
			}
			var res uint256.Int
			if op == ADDMOD {
				res.AddMod(&a, &b, &c)
			} else {
				res.MulMod(&a, &b, &c)
			}
			if err := st.push(&res); err != nil {
				return fail(err)
			}

		case op == LT, op == GT, op == EQ, op == AND, op == OR, op == XOR, op == BYTE:
			b, err := st.pop()
			if err != nil {
				return fail(err)
			}
			a, err := st.pop()
			if err != nil {
				return fail(err)
			}
			res := comparisonOp(op, &a, &b)
			if err := st.push(&res); err != nil {
				return fail(err)
			}

		case op == ISZERO, op == NOT:
			a, err := st.pop()
			if err != nil {
				return fail(err)
			}
			var res uint256.Int
			if op == ISZERO {
				if a.IsZero() {
					res.SetOne()
				}
			} else {
				res.Not(&a)
			}
			if err := st.push(&res); err != nil {
				return fail(err)
			}

		case op == SHA3:
			offset, size, err := popOffsetSize(st)
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, size)
			if err != nil {
				return fail(err)
			}
			words := (size + 31) / 32
			if err := charge(expCost + 6*words); err != nil {
				return fail(err)
			}
			data, err := mem.get(offset, size)
			if err != nil {
				return fail(err)
			}
			digest := blake3.Sum256(data)
			res := new(uint256.Int).SetBytes(digest[:])
			if err := st.push(res); err != nil {
				return fail(err)
			}

		case op == ADDRESS:
			if err := pushAddress(st, ctx.Address); err != nil {
				return fail(err)
			}
		case op == CALLER:
			if err := pushAddress(st, ctx.Caller); err != nil {
				return fail(err)
			}
		case op == BALANCE:
			a, err := st.pop()
			if err != nil {
				return fail(err)
			}
			addr := account.BytesToAddress(a.Bytes())
			var bal uint64
			if acc, ok := in.state.GetAccount(addr); ok {
				bal = acc.Balance
			}
			res := uint256.NewInt(bal)
			if err := st.push(res); err != nil {
				return fail(err)
			}
		case op == CALLVALUE:
			if err := st.push(uint256.NewInt(ctx.CallValue)); err != nil {
				return fail(err)
			}
		case op == TIMESTAMP:
			if err := st.push(uint256.NewInt(ctx.Timestamp)); err != nil {
				return fail(err)
			}
		case op == NUMBER:
			if err := st.push(uint256.NewInt(ctx.BlockNumber)); err != nil {
				return fail(err)
			}
		case op == CHAINID:
			if err := st.push(uint256.NewInt(ctx.ChainID)); err != nil {
				return fail(err)
			}

		case op == MLOAD:
			offset, err := popUint64(st)
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, 32)
			if err != nil {
				return fail(err)
			}
			if err := charge(expCost); err != nil {
				return fail(err)
			}
			data, err := mem.get(offset, 32)
			if err != nil {
				return fail(err)
			}
			res := new(uint256.Int).SetBytes(data)
			if err := st.push(res); err != nil {
				return fail(err)
			}

		case op == MSTORE:
			offset, err := popUint64(st)
			if err != nil {
				return fail(err)
			}
			v, err := st.pop()
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, 32)
			if err != nil {
				return fail(err)
			}
			if err := charge(expCost); err != nil {
				return fail(err)
			}
			if err := mem.set(offset, wordBytes(&v)); err != nil {
				return fail(err)
			}

		case op == MSTORE8:
			offset, err := popUint64(st)
			if err != nil {
				return fail(err)
			}
			v, err := st.pop()
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, 1)
			if err != nil {
				return fail(err)
			}
			if err := charge(expCost); err != nil {
				return fail(err)
			}
			if err := mem.setByte(offset, byte(v.Uint64())); err != nil {
				return fail(err)
			}

		case op == SLOAD:
			k, err := st.pop()
			if err != nil {
				return fail(err)
			}
			key := storageKeyFromWord(&k)
			v, ok := pending[key]
			if !ok {
				v, _ = in.state.GetStorage(ctx.Address, key)
			}
			res := new(uint256.Int).SetBytes(v)
			if err := st.push(res); err != nil {
				return fail(err)
			}

		case op == SSTORE:
			k, err := st.pop()
			if err != nil {
				return fail(err)
			}
			v, err := st.pop()
			if err != nil {
				return fail(err)
			}
			key := storageKeyFromWord(&k)
			pending[key] = wordBytes(&v)

		case op == JUMP:
			dest, err := popUint64(st)
			if err != nil {
				return fail(err)
			}
			if !jumpdests[int(dest)] {
				return fail(ErrBadJump)
			}
			pc = int(dest)
			continue

		case op == JUMPI:
			dest, err := popUint64(st)
			if err != nil {
				return fail(err)
			}
			cond, err := st.pop()
			if err != nil {
				return fail(err)
			}
			if !cond.IsZero() {
				if !jumpdests[int(dest)] {
					return fail(ErrBadJump)
				}
				pc = int(dest)
				continue
			}

		case op == JUMPDEST:
			// no-op marker, gas already charged above.

		case op == PUSH0:
			if err := st.push(uint256.NewInt(0)); err != nil {
				return fail(err)
			}

		case op.isPush():
			n := op.pushSize()
			end := pc + 1 + n
			var raw []byte
			if end > len(code) {
				raw = append(append([]byte(nil), code[pc+1:]...), make([]byte, end-len(code))...)
			} else {
				raw = code[pc+1 : end]
			}
			res := new(uint256.Int).SetBytes(raw)
			if err := st.push(res); err != nil {
				return fail(err)
			}
			pc += n

		case op.isDup():
			if err := st.dup(op.dupN()); err != nil {
				return fail(err)
			}

		case op.isSwap():
			if err := st.swap(op.swapN()); err != nil {
				return fail(err)
			}

		case op.isLog():
			offset, size, err := popOffsetSize(st)
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, size)
			if err != nil {
				return fail(err)
			}
			if err := charge(expCost); err != nil {
				return fail(err)
			}
			topics := make([]uint256.Int, op.logTopics())
			for i := range topics {
				v, err := st.pop()
				if err != nil {
					return fail(err)
				}
				topics[i] = v
			}
			data, err := mem.get(offset, size)
			if err != nil {
				return fail(err)
			}
			logs = append(logs, Log{Address: ctx.Address, Topics: topics, Data: data})

		case op == RETURN, op == REVERT:
			offset, size, err := popOffsetSize(st)
			if err != nil {
				return fail(err)
			}
			expCost, err := mem.expansionCost(offset, size)
			if err != nil {
				return fail(err)
			}
			if err := charge(expCost); err != nil {
				return fail(err)
			}
			data, err := mem.get(offset, size)
			if err != nil {
				return fail(err)
			}
			if op == RETURN {
				return succeed(data)
			}
			return ExecutionResult{ReturnData: data, GasUsed: gasUsed}

		case op == SELFDESTRUCT:
			addr, err := st.pop()
			if err != nil {
				return fail(err)
			}
			_ = account.BytesToAddress(addr.Bytes())
			return succeed(nil)

		case op == CREATE, op == CREATE2, op == CALL, op == CALLCODE, op == DELEGATECALL, op == STATICCALL:
			// Sub-call/contract-creation semantics are out of scope for
			// this single-contract executor (no nested call frames); the
			// opcode is priced and consumes its stack arguments so gas
			// accounting stays deterministic, then yields an empty
			// success result in place of recursive execution.
			nargs := callArgCount(op)
			for i := 0; i < nargs; i++ {
				if _, err := st.pop(); err != nil {
					return fail(err)
				}
			}
			if err := st.push(uint256.NewInt(0)); err != nil {
				return fail(err)
			}

		default:
			return fail(fmt.Errorf("%w: 0x%02x", ErrInvalidOpcode, op))
		}

		pc++
	}

	return succeed(nil)
}

func callArgCount(op OpCode) int {
	switch op {
	case CREATE:
		return 3
	case CREATE2:
		return 4
	case CALL, CALLCODE:
		return 7
	case DELEGATECALL, STATICCALL:
		return 6
	default:
		return 0
	}
}

func collectJumpdests(code []byte) map[int]bool {
	dests := make(map[int]bool)
	for i := 0; i < len(code); i++ {
		op := OpCode(code[i])
		if op == JUMPDEST {
			dests[i] = true
		}
		if op.isPush() {
			i += op.pushSize()
		}
	}
	return dests
}

func popUint64(s *stack) (uint64, error) {
	v, err := s.pop()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func popOffsetSize(s *stack) (uint64, uint64, error) {
	offset, err := popUint64(s)
	if err != nil {
		return 0, 0, err
	}
	size, err := popUint64(s)
	if err != nil {
		return 0, 0, err
	}
	return offset, size, nil
}

func pushAddress(s *stack, addr account.Address) error {
	v := new(uint256.Int).SetBytes(addr[:])
	return s.push(v)
}

func storageKeyFromWord(w *uint256.Int) account.StorageKey {
	return account.StorageKey(wordBytes(w))
}

// wordBytes returns v's big-endian 32-byte representation.
func wordBytes(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func binaryOp(op OpCode, a, b *uint256.Int) uint256.Int {
	var res uint256.Int
	switch op {
	case ADD:
		res.Add(a, b)
	case MUL:
		res.Mul(a, b)
	case SUB:
		res.Sub(a, b)
	case DIV:
		if b.IsZero() {
			return res
		}
		res.Div(a, b)
	case SDIV:
		if b.IsZero() {
			return res
		}
		res.SDiv(a, b)
	case MOD:
		if b.IsZero() {
			return res
		}
		res.Mod(a, b)
	case SMOD:
		if b.IsZero() {
			return res
		}
		res.SMod(a, b)
	case EXP:
		res.Exp(a, b)
	}
	return res
}

func comparisonOp(op OpCode, a, b *uint256.Int) uint256.Int {
	var res uint256.Int
	switch op {
	case LT:
		if a.Lt(b) {
			res.SetOne()
		}
	case GT:
		if a.Gt(b) {
			res.SetOne()
		}
	case EQ:
		if a.Eq(b) {
			res.SetOne()
		}
	case AND:
		res.And(a, b)
	case OR:
		res.Or(a, b)
	case XOR:
		res.Xor(a, b)
	case BYTE:
		res = *byteAt(a, b)
	}
	return res
}

func byteAt(index, value *uint256.Int) *uint256.Int {
	var res uint256.Int
	if index.Uint64() >= 32 {
		return &res
	}
	buf := wordBytes(value)
	res.SetUint64(uint64(buf[index.Uint64()]))
	return &res
}
