// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pobpc

import (
	"errors"
	"sort"
	"sync"

	"github.com/qrollup/node/qzkp"
)

// MinReliabilityThreshold excludes a witness from selection once its
// reliability score drops below this bound, carried from the C++ origin's
// POBPC::MIN_RELIABILITY_THRESHOLD.
const MinReliabilityThreshold = 0.5

var ErrWitnessAlreadyRegistered = errors.New("pobpc: witness already registered")
var ErrWitnessNotFound = errors.New("pobpc: witness not found")

// Witness is a registered batch-proof co-signer (spec §4.5
// WitnessInfo). A Witness carries a QState derived from its public key
// bytes; the consensus computation does not read it.
type Witness struct {
	ID          string
	PublicKey   []byte
	Reliability float64
	Successes   uint64
	Total       uint64
	State       *qzkp.QState
}

// Registry tracks registered witnesses under a single lock (spec §5:
// "witness registry under a single lock; witness reliability counters are
// atomic" — a single mutex gives the same serialization guarantee without
// requiring lock-free atomics on a composite struct).
type Registry struct {
	mu        sync.RWMutex
	witnesses map[string]*Witness
}

// NewRegistry returns an empty witness registry.
func NewRegistry() *Registry {
	return &Registry{witnesses: make(map[string]*Witness)}
}

// Register stores a new witness with initial reliability 1.0 and a QState
// derived from its public key bytes (spec §4.5: "register_witness(id,
// public_key) stores {id, pk, reliability=1.0, QState derived from pk
// bytes}").
func (r *Registry) Register(id string, publicKey []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.witnesses[id]; ok {
		return ErrWitnessAlreadyRegistered
	}
	state, err := qzkp.EncodeBytes(publicKey)
	if err != nil {
		return err
	}
	r.witnesses[id] = &Witness{
		ID:          id,
		PublicKey:   append([]byte(nil), publicKey...),
		Reliability: 1.0,
		State:       state,
	}
	return nil
}

// Get returns a copy of the witness registered under id.
func (r *Registry) Get(id string) (Witness, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.witnesses[id]
	if !ok {
		return Witness{}, false
	}
	return *w, true
}

// Select returns the top-w witnesses by reliability score, ties broken by
// lexicographic id, excluding any witness below MinReliabilityThreshold
// (spec §4.5 select_witnesses).
func (r *Registry) Select(w int) []Witness {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eligible := make([]Witness, 0, len(r.witnesses))
	for _, witness := range r.witnesses {
		if witness.Reliability >= MinReliabilityThreshold {
			eligible = append(eligible, *witness)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Reliability != eligible[j].Reliability {
			return eligible[i].Reliability > eligible[j].Reliability
		}
		return eligible[i].ID < eligible[j].ID
	})
	if w < len(eligible) {
		eligible = eligible[:w]
	}
	return eligible
}

// RecordVote updates a witness's reliability score after a vote
// verification: total += 1, successes += verified ? 1 : 0, reliability =
// successes/total (spec §4.5 "Reliability update").
func (r *Registry) RecordVote(id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.witnesses[id]
	if !ok {
		return ErrWitnessNotFound
	}
	w.Total++
	if verified {
		w.Successes++
	}
	w.Reliability = float64(w.Successes) / float64(w.Total)
	return nil
}
