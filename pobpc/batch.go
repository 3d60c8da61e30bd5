// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pobpc

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/qrollup/node/internal/hashid"
	"github.com/qrollup/node/internal/telemetry"
	"github.com/qrollup/node/qzkp"
	"github.com/qrollup/node/signature"
)

var (
	ErrEmptyBatch          = errors.New("pobpc: no pending transactions")
	ErrProofAlreadySigned  = errors.New("pobpc: witness already signed this proof")
	ErrWitnessNotSelected  = errors.New("pobpc: witness was not selected for this proof")
	ErrMalformedBatchProof = errors.New("pobpc: malformed batch proof")
	ErrTransactionMismatch = errors.New("pobpc: transaction set does not match proof's transaction count")
)

// contentMixBlockSize is the block width used by the content-mixing
// binding step (spec §4.5 step 2b).
const contentMixBlockSize = 32

// ContentMix XORs every 32-byte-aligned block i>0 of data against the
// corresponding original (unmixed) block i-1; block 0 is left untouched.
// This is a deterministic binding step run identically by prover and
// verifier, not a security boundary.
func ContentMix(data []byte) []byte {
	out := append([]byte(nil), data...)
	for start := contentMixBlockSize; start < len(out); start += contentMixBlockSize {
		end := start + contentMixBlockSize
		if end > len(out) {
			end = len(out)
		}
		prevStart := start - contentMixBlockSize
		for i := start; i < end; i++ {
			out[i] ^= data[prevStart+(i-start)]
		}
	}
	return out
}

// QuantumProof bundles the QZKP commitment material for a batch proof
// (spec §4.5 step 2d).
type QuantumProof struct {
	InitialState      *qzkp.QState
	CircuitOperations int
	Measurements      []bool
	ErrorData         []byte
}

// BatchProof is a POBPC witness-signed batch proof (spec §3 BatchProof).
type BatchProof struct {
	Timestamp         uint64
	TransactionCount  int
	BatchHash         hashid.ID
	WitnessIDs        []string
	WitnessSignatures [][]byte

	// AggregateSignature folds WitnessSignatures into one compact
	// certificate via scheme.(signature.AggregatableScheme).Aggregate, set
	// by AggregateWitnessSignatures once signing is complete. Left nil for
	// schemes that don't support aggregation.
	AggregateSignature []byte

	Quantum      QuantumProof
	ZKTranscript qzkp.Transcript
}

// Engine drains a pending-transaction queue into batch proofs. The queue
// is guarded by a single mutex (spec §5: POBPC confines QState mutation
// in consensus context to a single writer; a mutex-guarded slice gives
// the same serialization as the origin's lock-free MPSC queue without
// requiring unsafe lock-free primitives).
type Engine struct {
	cfg      Config
	registry *Registry
	metrics  *telemetry.ConsensusMetrics

	mu      sync.Mutex
	pending [][]byte
}

// NewEngine returns an Engine bound to registry. Metrics are left unset;
// call SetMetrics to have the engine record observations under a
// telemetry.Registry.
func NewEngine(cfg Config, registry *Registry) *Engine {
	return &Engine{cfg: cfg, registry: registry}
}

// SetMetrics attaches m so subsequent GenerateBatchProof/VerifyBatchProof
// calls record their outcome. Passing nil disables recording.
func (e *Engine) SetMetrics(m *telemetry.ConsensusMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
}

// AddTransaction enqueues tx, returning false if the pending queue is
// already at cfg.MaxTransactions (spec §4.5 addTransaction).
func (e *Engine) AddTransaction(tx []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) >= e.cfg.MaxTransactions {
		return false
	}
	e.pending = append(e.pending, append([]byte(nil), tx...))
	return true
}

// Pending returns the number of queued transactions.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// GenerateBatchProof drains up to cfg.MaxTransactions transactions in
// FIFO order, runs the content-mixing pass, builds the consensus QState
// and QZKP transcript, derives batch_hash as an XOR-fold of per-tx keyed
// digests, and selects witnesses (spec §4.5 step 2). Signatures are not
// yet attached; callers obtain them via SignBatchProof per selected
// witness. Returns the proof and the drained transactions, since verify
// needs the original (unmixed) transaction set out of band.
func (e *Engine) GenerateBatchProof(qzkpCfg qzkp.Config, rng *rand.Rand, timestamp uint64) (*BatchProof, [][]byte, error) {
	e.mu.Lock()
	txs := e.pending
	e.pending = nil
	m := e.metrics
	e.mu.Unlock()

	if len(txs) == 0 {
		return nil, nil, ErrEmptyBatch
	}

	start := time.Now()
	proof, err := buildBatchProof(e.cfg, qzkpCfg, txs, rng, timestamp)
	if err != nil {
		return nil, nil, err
	}

	selected := e.registry.Select(e.cfg.WitnessCount)
	proof.WitnessIDs = make([]string, len(selected))
	for i, w := range selected {
		proof.WitnessIDs[i] = w.ID
	}

	if m != nil {
		m.BatchesProcessed.Inc()
		m.TransactionsProcessed.Add(float64(len(txs)))
		m.BatchDuration.Observe(time.Since(start).Seconds())
	}

	return proof, txs, nil
}

// VerifyBatchProof is an Engine-bound convenience wrapper around the
// package-level VerifyBatchProof that records the outcome under the
// engine's metrics, so callers that already hold an *Engine don't need to
// thread telemetry through separately.
func (e *Engine) VerifyBatchProof(proof *BatchProof, txs [][]byte, scheme signature.Scheme, qzkpCfg qzkp.Config, verifyRng *rand.Rand) (VerificationOutcome, error) {
	start := time.Now()
	outcome, err := VerifyBatchProof(proof, txs, e.registry, scheme, qzkpCfg, verifyRng, e.cfg)

	e.mu.Lock()
	m := e.metrics
	e.mu.Unlock()
	if m != nil {
		m.VerificationDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			if len(proof.WitnessIDs) > 0 {
				m.WitnessParticipation.Set(float64(len(outcome.VerifiedWitnessIDs)) / float64(len(proof.WitnessIDs)))
			}
			if outcome.ConsensusState != nil {
				m.QuantumSecurityScore.Set(outcome.ConsensusState.EntanglementScore()*0.5 + outcome.ConsensusState.CoherenceScore()*0.5)
			}
			if !outcome.Accepted {
				m.ConsensusFailures.Inc()
			}
		}
	}
	return outcome, err
}

func buildBatchProof(cfg Config, qzkpCfg qzkp.Config, txs [][]byte, rng *rand.Rand, timestamp uint64) (*BatchProof, error) {
	var rawData []byte
	for _, tx := range txs {
		rawData = append(rawData, tx...)
	}
	mixed := ContentMix(rawData)

	consensusState, err := qzkp.EncodeBytes(mixed)
	if err != nil {
		return nil, err
	}

	batchHash, err := deriveBatchHash(consensusState, txs)
	if err != nil {
		return nil, err
	}

	transcript, err := qzkp.Prove(consensusState, qzkpCfg, rng, timestamp)
	if err != nil {
		return nil, err
	}

	quantum := QuantumProof{
		InitialState:      consensusState,
		CircuitOperations: cfg.QuantumCircuitDepth,
		Measurements:      append([]bool(nil), transcript.MeasurementOutcomes...),
	}
	if cfg.EnableErrorCorrection {
		corrected, errData, ecErr := ApplyErrorCorrection(consensusState, qzkpErrorTolerance)
		if ecErr != nil {
			return nil, ecErr
		}
		quantum.InitialState = corrected
		quantum.ErrorData = errData
	}

	return &BatchProof{
		Timestamp:        timestamp,
		TransactionCount: len(txs),
		BatchHash:        batchHash,
		Quantum:          quantum,
		ZKTranscript:     transcript,
	}, nil
}

// deriveBatchHash computes the per-tx keyed digest (keyed by the
// consensus QState's byte-dump, truncated/padded to 32 bytes) and
// XOR-folds them into a single batch_hash (spec §4.5 step 2c).
func deriveBatchHash(consensusState *qzkp.QState, txs [][]byte) (hashid.ID, error) {
	key := make([]byte, 32)
	copy(key, consensusState.DigestBytes())

	var acc hashid.ID
	for _, tx := range txs {
		digest, err := hashid.SumKeyed(key, tx)
		if err != nil {
			return hashid.Empty, err
		}
		db := hashid.Bytes(digest)
		for i := range acc {
			acc[i] ^= db[i]
		}
	}
	return acc, nil
}

// SignBatchProof has witnessID sign proof.BatchHash under scheme and
// attaches the signature (spec §4.5 step 2e). witnessID must be one of
// the witnesses GenerateBatchProof selected.
func SignBatchProof(proof *BatchProof, witnessID string, scheme signature.Scheme, secretKey []byte) error {
	selected := false
	for _, id := range proof.WitnessIDs {
		if id == witnessID {
			selected = true
			break
		}
	}
	if !selected {
		return ErrWitnessNotSelected
	}
	for _, id := range signedIDs(proof) {
		if id == witnessID {
			return ErrProofAlreadySigned
		}
	}

	sig, err := scheme.Sign(secretKey, hashid.Bytes(proof.BatchHash))
	if err != nil {
		return err
	}
	proof.WitnessSignatures = append(proof.WitnessSignatures, sig)
	return nil
}

func signedIDs(proof *BatchProof) []string {
	return proof.WitnessIDs[:len(proof.WitnessSignatures)]
}

// AggregateWitnessSignatures folds every signature currently attached to
// proof into proof.AggregateSignature via scheme's AggregatableScheme
// capability (spec §4.5's witness threshold signing maps onto the
// teacher's BLS dual-certificate aggregation, protocol/quasar.Hybrid). A
// no-op for schemes that don't implement AggregatableScheme, so callers
// can always call it after the signing round closes.
func AggregateWitnessSignatures(proof *BatchProof, scheme signature.Scheme) error {
	agg, ok := scheme.(signature.AggregatableScheme)
	if !ok {
		return nil
	}
	combined, err := agg.Aggregate(proof.WitnessSignatures)
	if err != nil {
		return err
	}
	proof.AggregateSignature = combined
	return nil
}

// VerificationOutcome reports the detail behind a VerifyBatchProof call,
// enough to feed ConsensusConfidence without re-running verification.
type VerificationOutcome struct {
	Accepted           bool
	VerifiedWitnessIDs []string
	Fidelity           float64
	ConsensusState     *qzkp.QState
}

// VerifyBatchProof implements spec §4.5 verify_batch_proof: structural
// validity, batch-hash re-derivation (including the content-mixing
// pass), QZKP verification against the recorded initial state, and a
// signature-count threshold check. Each signer's vote updates its
// witness reliability in registry.
func VerifyBatchProof(proof *BatchProof, txs [][]byte, registry *Registry, scheme signature.Scheme, qzkpCfg qzkp.Config, verifyRng *rand.Rand, cfg Config) (VerificationOutcome, error) {
	if proof.TransactionCount != len(txs) || proof.Timestamp == 0 || proof.TransactionCount == 0 {
		return VerificationOutcome{}, ErrMalformedBatchProof
	}
	if len(proof.WitnessSignatures) > len(proof.WitnessIDs) {
		return VerificationOutcome{}, ErrMalformedBatchProof
	}

	var rawData []byte
	for _, tx := range txs {
		rawData = append(rawData, tx...)
	}
	mixed := ContentMix(rawData)
	consensusState, err := qzkp.EncodeBytes(mixed)
	if err != nil {
		return VerificationOutcome{}, err
	}
	recomputedHash, err := deriveBatchHash(consensusState, txs)
	if err != nil {
		return VerificationOutcome{}, err
	}
	if recomputedHash != proof.BatchHash {
		return VerificationOutcome{ConsensusState: consensusState}, nil
	}

	verifyResult, err := qzkp.Verify(proof.ZKTranscript, proof.Quantum.InitialState, qzkpCfg, verifyRng)
	if err != nil {
		return VerificationOutcome{}, err
	}
	if verifyResult.Verdict != qzkp.Valid {
		return VerificationOutcome{ConsensusState: consensusState, Fidelity: verifyResult.Fidelity}, nil
	}

	var verifiedIDs []string
	for i, sig := range proof.WitnessSignatures {
		witnessID := proof.WitnessIDs[i]
		w, ok := registry.Get(witnessID)
		if !ok {
			continue
		}
		verified := scheme.Verify(w.PublicKey, hashid.Bytes(proof.BatchHash), sig)
		_ = registry.RecordVote(witnessID, verified)
		if verified {
			verifiedIDs = append(verifiedIDs, witnessID)
		}
	}

	if agg, ok := scheme.(signature.AggregatableScheme); ok && len(proof.AggregateSignature) > 0 {
		signerIDs := signedIDs(proof)
		pubKeys := make([][]byte, 0, len(signerIDs))
		for _, id := range signerIDs {
			w, ok := registry.Get(id)
			if !ok {
				continue
			}
			pubKeys = append(pubKeys, w.PublicKey)
		}
		if len(pubKeys) != len(signerIDs) || !agg.VerifyAggregate(pubKeys, hashid.Bytes(proof.BatchHash), proof.AggregateSignature) {
			return VerificationOutcome{
				VerifiedWitnessIDs: verifiedIDs,
				Fidelity:           verifyResult.Fidelity,
				ConsensusState:     consensusState,
			}, nil
		}
	}

	required := int(math.Ceil(float64(cfg.WitnessCount) * cfg.ConsensusThreshold))
	return VerificationOutcome{
		Accepted:           len(verifiedIDs) >= required,
		VerifiedWitnessIDs: verifiedIDs,
		Fidelity:           verifyResult.Fidelity,
		ConsensusState:     consensusState,
	}, nil
}

// HasReachedConsensus returns the same acceptance decision as
// VerifyBatchProof (spec §4.5: "hasReachedConsensus returns
// verify_batch_proof result").
func HasReachedConsensus(proof *BatchProof, txs [][]byte, registry *Registry, scheme signature.Scheme, qzkpCfg qzkp.Config, verifyRng *rand.Rand, cfg Config) (bool, error) {
	outcome, err := VerifyBatchProof(proof, txs, registry, scheme, qzkpCfg, verifyRng, cfg)
	if err != nil {
		return false, err
	}
	return outcome.Accepted, nil
}
