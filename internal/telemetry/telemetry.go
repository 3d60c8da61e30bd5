// Package telemetry wires prometheus collectors for the node's components,
// adapted from the teacher's metrics package: a thin Registry wrapper plus
// a handful of named constructors so each component registers its own
// metrics at construction time instead of reaching for globals.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry wraps a prometheus.Registerer for the node's components.
type Registry struct {
	reg prometheus.Registerer
}

// NewRegistry wraps reg, or a fresh prometheus.NewRegistry() if reg is nil.
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Registry{reg: reg}
}

// Counter registers and returns a named counter.
func (r *Registry) Counter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	_ = r.reg.Register(c)
	return c
}

// Gauge registers and returns a named gauge.
func (r *Registry) Gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	_ = r.reg.Register(g)
	return g
}

// Histogram registers and returns a named histogram.
func (r *Registry) Histogram(name, help string, buckets []float64) prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
	_ = r.reg.Register(h)
	return h
}

// ConsensusMetrics mirrors the original source's POBPC ConsensusMetrics
// (avg batch time, witness participation, quantum security score) as
// prometheus collectors instead of raw atomics.
type ConsensusMetrics struct {
	BatchesProcessed       prometheus.Counter
	TransactionsProcessed  prometheus.Counter
	BatchDuration          prometheus.Histogram
	VerificationDuration   prometheus.Histogram
	WitnessParticipation   prometheus.Gauge
	QuantumSecurityScore   prometheus.Gauge
	ConsensusFailures      prometheus.Counter
}

// NewConsensusMetrics registers the POBPC metric set under reg.
func NewConsensusMetrics(reg *Registry) *ConsensusMetrics {
	return &ConsensusMetrics{
		BatchesProcessed:      reg.Counter("pobpc_batches_processed_total", "total batches processed"),
		TransactionsProcessed: reg.Counter("pobpc_transactions_processed_total", "total transactions processed"),
		BatchDuration:         reg.Histogram("pobpc_batch_duration_seconds", "batch proof generation duration", prometheus.DefBuckets),
		VerificationDuration:  reg.Histogram("pobpc_verification_duration_seconds", "batch proof verification duration", prometheus.DefBuckets),
		WitnessParticipation:  reg.Gauge("pobpc_witness_participation_rate", "fraction of witnesses that voted successfully"),
		QuantumSecurityScore:  reg.Gauge("pobpc_quantum_security_score", "combined QZKP security score of the last batch"),
		ConsensusFailures:     reg.Counter("pobpc_consensus_failures_total", "total batches that failed to reach consensus"),
	}
}

// BatchProcMetrics instruments the parallel batch processor (C8).
type BatchProcMetrics struct {
	QueueDepth          prometheus.Gauge
	BackpressureDropped prometheus.Counter
	SubBatchesDispatched prometheus.Counter
	WorkerUtilization   prometheus.Gauge
}

// NewBatchProcMetrics registers the batch-processor metric set under reg.
func NewBatchProcMetrics(reg *Registry) *BatchProcMetrics {
	return &BatchProcMetrics{
		QueueDepth:           reg.Gauge("batchproc_queue_depth", "current depth of the pending transaction queue"),
		BackpressureDropped:  reg.Counter("batchproc_backpressure_dropped_total", "submissions rejected due to a full queue"),
		SubBatchesDispatched: reg.Counter("batchproc_subbatches_dispatched_total", "dependency-partitioned sub-batches dispatched"),
		WorkerUtilization:    reg.Gauge("batchproc_worker_utilization", "fraction of worker pool currently busy"),
	}
}

// P2PMetrics instruments the peer transport (C13).
type P2PMetrics struct {
	PeersConnected prometheus.Gauge
	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	PeersTimedOut  prometheus.Counter
}

// NewP2PMetrics registers the P2P metric set under reg.
func NewP2PMetrics(reg *Registry) *P2PMetrics {
	return &P2PMetrics{
		PeersConnected: reg.Gauge("p2p_peers_connected", "currently connected peers"),
		FramesSent:     reg.Counter("p2p_frames_sent_total", "frames sent to peers"),
		FramesReceived: reg.Counter("p2p_frames_received_total", "frames received from peers"),
		PeersTimedOut:  reg.Counter("p2p_peers_timed_out_total", "peers disconnected for exceeding connection_timeout"),
	}
}
