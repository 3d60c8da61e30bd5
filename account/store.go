// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	"sort"
	"sync"

	"github.com/qrollup/node/internal/hashid"
	"github.com/luxfi/log"
)

// GasCostEstimate is the flat gas-use estimate the store charges against a
// sender's balance in addition to the transfer amount, matching spec §3's
// `balance >= amount + gas_price * gas_used_estimate` validity rule. Every
// transaction, plain transfer or contract call, is charged
// GasPrice * GasCostEstimate; gas metered by the EVM executor (C5) is not
// debited from balances.
const GasCostEstimate = 1

// Store is the Account State Store (C4): the single owner of every
// Account, guarded by one reader-writer lock (spec §4.1, §5). Readers
// (GetAccount, GetStateRoot, Clone) may run concurrently; writers
// (ApplyTransaction(s), CommitState, RollbackState) are serialized and
// each holds the lock for the whole call, giving apply_transactions its
// required all-or-nothing semantics.
type Store struct {
	mu           sync.RWMutex
	accounts     map[Address]*Account
	history      map[Address]*History
	publicKeys   map[Address][]byte
	currentRoot  hashid.ID
	previousRoot hashid.ID
	committed    storeSnapshot
	verifier     Verifier
	log          log.Logger
}

// New returns an empty Store. verifier supplies the signature scheme used
// to validate transaction signatures (C3); a nil verifier accepts every
// signature, useful in tests that don't exercise authentication.
func New(verifier Verifier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	s := &Store{
		accounts:   make(map[Address]*Account),
		history:    make(map[Address]*History),
		publicKeys: make(map[Address][]byte),
		verifier:   verifier,
		log:        logger,
	}
	s.currentRoot = s.computeRootLocked()
	s.previousRoot = s.currentRoot
	s.committed = s.snapshotLocked()
	return s
}

// CreateAccount seeds an account with an initial balance and registers the
// public key used to authenticate transactions it sends. It is a setup
// operation (genesis/deposit), not part of the transaction-application
// path, so it bypasses nonce/signature checks.
func (s *Store) CreateAccount(addr Address, balance uint64, publicKey []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[addr] = &Account{Address: addr, Balance: balance, Storage: make(map[StorageKey]StorageValue)}
	s.publicKeys[addr] = append([]byte(nil), publicKey...)
	s.history[addr] = newHistory()
}

// GetAccount returns a read-only snapshot of the account at addr.
func (s *Store) GetAccount(addr Address) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[addr]
	if !ok {
		return Account{}, false
	}
	return *a.clone(), true
}

// GetStateRoot returns the current 32-byte state root.
func (s *Store) GetStateRoot() hashid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoot
}

// GetStorage reads a single storage slot for addr.
func (s *Store) GetStorage(addr Address, key StorageKey) (StorageValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[addr]
	if !ok {
		return nil, false
	}
	v, ok := a.Storage[key]
	return v, ok
}

// SetStorage writes a single storage slot for addr, creating the account's
// storage map if necessary. Used by the EVM executor (C5) for SSTORE.
func (s *Store) SetStorage(addr Address, key StorageKey, value StorageValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[addr]
	if !ok {
		return
	}
	if a.Storage == nil {
		a.Storage = make(map[StorageKey]StorageValue)
	}
	a.Storage[key] = append([]byte(nil), value...)
}

// GetCode returns the contract code deployed at addr, if any.
func (s *Store) GetCode(addr Address) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[addr]
	if !ok || a.Code == nil {
		return nil, false
	}
	return append([]byte(nil), a.Code...), true
}

// SetCode deploys code at addr. Code is immutable once set (spec §3).
func (s *Store) SetCode(addr Address, code []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[addr]
	if !ok {
		return ErrSenderNotFound
	}
	if len(a.Code) > 0 {
		return ErrCodeImmutable
	}
	a.Code = append([]byte(nil), code...)
	return nil
}

// ApplyTransaction atomically validates and applies tx: verifies the
// signature, checks nonce and balance, debits sender, credits recipient,
// increments the sender's nonce, and appends to the sender's bounded
// history ring buffer. On any validation failure the store is left
// unchanged and the corresponding error is returned.
func (s *Store) ApplyTransaction(tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(tx)
}

// ApplyTransactions applies txs in order with all-or-nothing semantics: on
// the first failure the store is rolled back to its pre-call state (spec
// §4.1, §8 property 2). It operates on a scratch snapshot so no partial
// mutation is ever observable by readers holding the lock.
func (s *Store) ApplyTransactions(txs []*Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshotLocked()
	for _, tx := range txs {
		if err := s.applyLocked(tx); err != nil {
			s.restoreLocked(snapshot)
			return err
		}
	}
	return nil
}

// applyLocked performs the validation+mutation for a single transaction.
// Caller must hold s.mu for writing.
func (s *Store) applyLocked(tx *Transaction) error {
	sender, ok := s.accounts[tx.Sender]
	if !ok {
		return ErrSenderNotFound
	}

	if s.verifier != nil {
		pk, ok := s.publicKeys[tx.Sender]
		if !ok || !s.verifier.Verify(pk, hashid.Bytes(tx.Hash()), tx.Signature) {
			return ErrInvalidSignature
		}
	}

	if tx.Nonce != sender.Nonce+1 {
		return ErrInvalidNonce
	}

	gasCost := tx.GasPrice * GasCostEstimate
	if sender.Balance < tx.Amount+gasCost {
		return ErrInsufficientBalance
	}

	recipient, ok := s.accounts[tx.Recipient]
	if !ok {
		recipient = &Account{Address: tx.Recipient, Storage: make(map[StorageKey]StorageValue)}
		s.accounts[tx.Recipient] = recipient
		s.history[tx.Recipient] = newHistory()
	}

	sender.Balance -= tx.Amount + gasCost
	sender.Nonce++
	recipient.Balance += tx.Amount

	h, ok := s.history[tx.Sender]
	if !ok {
		h = newHistory()
		s.history[tx.Sender] = h
	}
	h.push(tx.Hash())

	return nil
}

// storeSnapshot is a scratch copy of every mutable field ApplyTransactions
// may touch, restored verbatim on failure.
type storeSnapshot struct {
	accounts map[Address]*Account
	history  map[Address]*History
}

func (s *Store) snapshotLocked() storeSnapshot {
	accounts := make(map[Address]*Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v.clone()
	}
	history := make(map[Address]*History, len(s.history))
	for k, v := range s.history {
		cp := *v
		cp.entries = append([]hashid.ID(nil), v.entries...)
		history[k] = &cp
	}
	return storeSnapshot{accounts: accounts, history: history}
}

func (s *Store) restoreLocked(snap storeSnapshot) {
	s.accounts = snap.accounts
	s.history = snap.history
}

// cloneSnapshot deep-copies snap so the original can be reused as a
// durable baseline (s.committed) without aliasing mutable Account/History
// pointers into whatever the caller does next.
func cloneSnapshot(snap storeSnapshot) storeSnapshot {
	accounts := make(map[Address]*Account, len(snap.accounts))
	for k, v := range snap.accounts {
		accounts[k] = v.clone()
	}
	history := make(map[Address]*History, len(snap.history))
	for k, v := range snap.history {
		cp := *v
		cp.entries = append([]hashid.ID(nil), v.entries...)
		history[k] = &cp
	}
	return storeSnapshot{accounts: accounts, history: history}
}

// CommitState copies the current root into previous and recomputes the
// current root from the live account set.
func (s *Store) CommitState() hashid.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousRoot = s.currentRoot
	s.currentRoot = s.computeRootLocked()
	s.committed = s.snapshotLocked()
	return s.currentRoot
}

// RollbackState restores current_state_root from previous_state_root and
// discards every account mutation made since the last CommitState,
// reverting the account map to the snapshot taken at that commit.
func (s *Store) RollbackState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(cloneSnapshot(s.committed))
	s.currentRoot = s.previousRoot
}

// computeRootLocked is the deterministic state-root digest (spec §3):
// accounts sorted by address, each canonically serialized, hashed in
// order with BLAKE3 into a single 32-byte root.
func (s *Store) computeRootLocked() hashid.ID {
	addrs := make([]Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	parts := make([][]byte, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, s.accounts[a].encode())
	}
	return hashid.Sum(parts...)
}

// Clone produces an independent deep copy for simulation, used by the
// fraud-proof path (C9) and the parallel batch processor's per-shard
// execution (C8).
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := &Store{
		accounts:     make(map[Address]*Account, len(s.accounts)),
		history:      make(map[Address]*History, len(s.history)),
		publicKeys:   make(map[Address][]byte, len(s.publicKeys)),
		currentRoot:  s.currentRoot,
		previousRoot: s.previousRoot,
		verifier:     s.verifier,
		log:          s.log,
	}
	for k, v := range s.accounts {
		cp.accounts[k] = v.clone()
	}
	for k, v := range s.history {
		h := *v
		h.entries = append([]hashid.ID(nil), v.entries...)
		cp.history[k] = &h
	}
	for k, v := range s.publicKeys {
		cp.publicKeys[k] = append([]byte(nil), v...)
	}
	return cp
}

// ProcessExit zeroes addr's balance and increments its nonce atomically,
// used by the emergency-exit path (C10) once an exit proof has verified.
// It is not idempotent: a second call against an already-exited
// (zero-balance) account leaves the balance at zero and advances the nonce
// again, matching the ordinary apply_transaction nonce-increment convention.
func (s *Store) ProcessExit(addr Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[addr]
	if !ok {
		return ErrSenderNotFound
	}
	a.Balance = 0
	a.Nonce++
	return nil
}

// Addresses returns every known account address, sorted.
func (s *Store) Addresses() []Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addrs := make([]Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	return addrs
}

// History returns the recorded transaction-hash history for addr.
func (s *Store) History(addr Address) []hashid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.history[addr]
	if !ok {
		return nil
	}
	return h.Entries()
}
