// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pobpc

import (
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/qrollup/node/internal/telemetry"
	"github.com/qrollup/node/qzkp"
	"github.com/qrollup/node/signature"
)

func newWitness(t *testing.T, registry *Registry, scheme signature.Scheme, id string) signature.KeyPair {
	t.Helper()
	kp, err := scheme.GenerateKeyPair([]byte(id))
	require.NoError(t, err)
	require.NoError(t, registry.Register(id, kp.PublicKey))
	return kp
}

func TestContentMixLeavesFirstBlockUntouched(t *testing.T) {
	data := make([]byte, 96)
	for i := range data {
		data[i] = byte(i)
	}
	mixed := ContentMix(data)
	require.Equal(t, data[:32], mixed[:32])
	require.NotEqual(t, data[32:64], mixed[32:64])
}

func TestContentMixDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, twice over")
	require.Equal(t, ContentMix(data), ContentMix(data))
}

func TestRegistrySelectExcludesLowReliabilityAndBreaksTiesByID(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("b", []byte("witness-b-key")))
	require.NoError(t, registry.Register("a", []byte("witness-a-key")))
	require.NoError(t, registry.Register("c", []byte("witness-c-key")))

	require.NoError(t, registry.RecordVote("c", false))
	require.NoError(t, registry.RecordVote("c", false))

	selected := registry.Select(2)
	require.Len(t, selected, 2)
	require.Equal(t, "a", selected[0].ID)
	require.Equal(t, "b", selected[1].ID)
}

func TestRegistryReliabilityUpdatesAsSuccessesOverTotal(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("w1", []byte("witness-key")))

	require.NoError(t, registry.RecordVote("w1", true))
	require.NoError(t, registry.RecordVote("w1", true))
	require.NoError(t, registry.RecordVote("w1", false))

	w, ok := registry.Get("w1")
	require.True(t, ok)
	require.InDelta(t, 2.0/3.0, w.Reliability, 1e-9)
}

func TestGenerateAndVerifyBatchProofReachesConsensus(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewEd25519Scheme()

	cfg := DefaultConfig()
	cfg.WitnessCount = 3
	cfg.ConsensusThreshold = 0.67

	keys := map[string]signature.KeyPair{
		"w1": newWitness(t, registry, scheme, "w1"),
		"w2": newWitness(t, registry, scheme, "w2"),
		"w3": newWitness(t, registry, scheme, "w3"),
	}

	engine := NewEngine(cfg, registry)
	require.True(t, engine.AddTransaction([]byte("transaction-one-payload")))
	require.True(t, engine.AddTransaction([]byte("transaction-two-payload")))

	qzkpCfg := qzkp.DefaultConfig()
	qzkpCfg.OptimalMeasurementQubits = 8
	qzkpCfg.OptimalPhaseAngles = 4

	proveRng := rand.New(rand.NewSource(1))
	proof, txs, err := engine.GenerateBatchProof(qzkpCfg, proveRng, 1000)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Len(t, proof.WitnessIDs, 3)

	for _, id := range proof.WitnessIDs {
		require.NoError(t, SignBatchProof(proof, id, scheme, keys[id].SecretKey))
	}
	require.Len(t, proof.WitnessSignatures, 3)

	verifyRng := rand.New(rand.NewSource(2))
	outcome, err := VerifyBatchProof(proof, txs, registry, scheme, qzkpCfg, verifyRng, cfg)
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
	require.Len(t, outcome.VerifiedWitnessIDs, 3)

	confidence := ConfidenceFromOutcome(outcome, registry)
	require.GreaterOrEqual(t, confidence, 0.0)
	require.LessOrEqual(t, confidence, 1.0)
}

func TestVerifyBatchProofRejectsTamperedTransactionSet(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewEd25519Scheme()

	cfg := DefaultConfig()
	cfg.WitnessCount = 1

	kp := newWitness(t, registry, scheme, "w1")

	engine := NewEngine(cfg, registry)
	require.True(t, engine.AddTransaction([]byte("original-transaction")))

	qzkpCfg := qzkp.DefaultConfig()
	proveRng := rand.New(rand.NewSource(3))
	proof, _, err := engine.GenerateBatchProof(qzkpCfg, proveRng, 42)
	require.NoError(t, err)
	require.NoError(t, SignBatchProof(proof, "w1", scheme, kp.SecretKey))

	verifyRng := rand.New(rand.NewSource(4))
	outcome, err := VerifyBatchProof(proof, [][]byte{[]byte("tampered-transaction")}, registry, scheme, qzkpCfg, verifyRng, cfg)
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
}

func TestGenerateAndVerifyBatchProofWithBLSAggregateSignature(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewBLSScheme()

	cfg := DefaultConfig()
	cfg.WitnessCount = 3
	cfg.ConsensusThreshold = 0.67

	keys := map[string]signature.KeyPair{
		"w1": newWitness(t, registry, scheme, "w1"),
		"w2": newWitness(t, registry, scheme, "w2"),
		"w3": newWitness(t, registry, scheme, "w3"),
	}

	engine := NewEngine(cfg, registry)
	require.True(t, engine.AddTransaction([]byte("aggregate-me")))

	qzkpCfg := qzkp.DefaultConfig()
	proof, txs, err := engine.GenerateBatchProof(qzkpCfg, rand.New(rand.NewSource(11)), 2000)
	require.NoError(t, err)

	for _, id := range proof.WitnessIDs {
		require.NoError(t, SignBatchProof(proof, id, scheme, keys[id].SecretKey))
	}
	require.NoError(t, AggregateWitnessSignatures(proof, scheme))
	require.NotEmpty(t, proof.AggregateSignature)

	outcome, err := VerifyBatchProof(proof, txs, registry, scheme, qzkpCfg, rand.New(rand.NewSource(12)), cfg)
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
}

func TestVerifyBatchProofRejectsTamperedAggregateSignature(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewBLSScheme()

	cfg := DefaultConfig()
	cfg.WitnessCount = 2
	cfg.ConsensusThreshold = 1.0

	keys := map[string]signature.KeyPair{
		"w1": newWitness(t, registry, scheme, "w1"),
		"w2": newWitness(t, registry, scheme, "w2"),
	}

	engine := NewEngine(cfg, registry)
	require.True(t, engine.AddTransaction([]byte("tamper-me")))

	qzkpCfg := qzkp.DefaultConfig()
	proof, txs, err := engine.GenerateBatchProof(qzkpCfg, rand.New(rand.NewSource(13)), 3000)
	require.NoError(t, err)

	for _, id := range proof.WitnessIDs {
		require.NoError(t, SignBatchProof(proof, id, scheme, keys[id].SecretKey))
	}
	require.NoError(t, AggregateWitnessSignatures(proof, scheme))

	proof.AggregateSignature[0] ^= 0xFF

	outcome, err := VerifyBatchProof(proof, txs, registry, scheme, qzkpCfg, rand.New(rand.NewSource(14)), cfg)
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
}

func TestSignBatchProofRejectsUnselectedWitness(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewEd25519Scheme()
	cfg := DefaultConfig()
	cfg.WitnessCount = 1
	newWitness(t, registry, scheme, "w1")

	engine := NewEngine(cfg, registry)
	engine.AddTransaction([]byte("tx"))
	qzkpCfg := qzkp.DefaultConfig()
	proof, _, err := engine.GenerateBatchProof(qzkpCfg, rand.New(rand.NewSource(5)), 1)
	require.NoError(t, err)

	err = SignBatchProof(proof, "not-selected", scheme, []byte("irrelevant"))
	require.ErrorIs(t, err, ErrWitnessNotSelected)
}

func TestApplyErrorCorrectionNoOpWhenWithinTolerance(t *testing.T) {
	s, err := qzkp.NewZeroState(8)
	require.NoError(t, err)
	corrected, errData, err := ApplyErrorCorrection(s, qzkpErrorTolerance)
	require.NoError(t, err)
	require.Nil(t, errData)
	require.Same(t, s, corrected)
}

func TestQuantumSecurityBounded(t *testing.T) {
	s, err := qzkp.NewZeroState(8)
	require.NoError(t, err)
	require.NoError(t, s.ApplyHadamard(0))
	require.NoError(t, s.ApplyHadamard(1))
	qs := QuantumSecurity(s, 1.0)
	require.GreaterOrEqual(t, qs, 0.0)
	require.LessOrEqual(t, qs, 1.0)
}

func TestEngineRecordsMetricsOnGenerateAndVerify(t *testing.T) {
	registry := NewRegistry()
	scheme := signature.NewEd25519Scheme()
	cfg := DefaultConfig()
	cfg.WitnessCount = 1
	cfg.ConsensusThreshold = 1.0
	kp := newWitness(t, registry, scheme, "w1")

	engine := NewEngine(cfg, registry)
	m := telemetry.NewConsensusMetrics(telemetry.NewRegistry(nil))
	engine.SetMetrics(m)

	engine.AddTransaction([]byte("tx"))
	qzkpCfg := qzkp.DefaultConfig()
	proof, txs, err := engine.GenerateBatchProof(qzkpCfg, rand.New(rand.NewSource(9)), 1)
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(m.BatchesProcessed))

	require.NoError(t, SignBatchProof(proof, "w1", scheme, kp.SecretKey))
	outcome, err := engine.VerifyBatchProof(proof, txs, scheme, qzkpCfg, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
	require.Equal(t, float64(1), testutil.ToFloat64(m.WitnessParticipation))
}
