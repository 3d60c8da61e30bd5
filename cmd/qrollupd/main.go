// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command qrollupd is the node's thin composition-root binary: it wires
// the account store, EVM executor pool, POBPC consensus core, parallel
// batch processor, persistent store, L1 bridge,
// and P2P transport together and runs the node. The command-line surface
// itself is intentionally minimal (stdlib flag, not a CLI framework):
// spec §1 lists "the CLI/command framework" as out of THE CORE's scope,
// so this binary is the pluggable shell around it, not a generalized
// tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qrollup/node/account"
	"github.com/qrollup/node/batchproc"
	"github.com/qrollup/node/bridge"
	"github.com/qrollup/node/config"
	"github.com/qrollup/node/internal/telemetry"
	"github.com/qrollup/node/p2p"
	"github.com/qrollup/node/pobpc"
	"github.com/qrollup/node/signature"
	"github.com/qrollup/node/store/pebblestore"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML node configuration file (defaults used when empty)")
	dataDir := flag.String("data-dir", "", "persistent storage root (overrides the config file)")
	listenAddr := flag.String("listen", "127.0.0.1:30303", "P2P listen address")
	flag.Parse()

	cfg := config.DefaultNodeConfig()
	if *configPath != "" {
		loaded, err := config.LoadNodeConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qrollupd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := cfg.Valid(); err != nil {
		fmt.Fprintf(os.Stderr, "qrollupd: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewNoOpLogger()
	node, err := newNode(cfg, *listenAddr, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qrollupd: %v\n", err)
		os.Exit(1)
	}
	defer node.Close()

	logger.Info("qrollupd started", "listen", *listenAddr, "dataDir", cfg.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("qrollupd shutting down")
}

// node bundles every long-lived component the command owns.
type node struct {
	cfg       config.NodeConfig
	accounts  *account.Store
	processor *batchproc.Processor
	witnesses *pobpc.Registry
	consensus *pobpc.Engine
	persist   *pebblestore.Store
	l1        bridge.L1Bridge
	transport *p2p.UDPTransport
}

func newNode(cfg config.NodeConfig, listenAddr string, logger log.Logger) (*node, error) {
	reg := telemetry.NewRegistry(prometheus.DefaultRegisterer)

	scheme := signature.NewEd25519Scheme()
	accounts := account.New(scheme, logger)

	persist, err := pebblestore.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open persistent store: %w", err)
	}

	witnesses := pobpc.NewRegistry()
	pobpcCfg := pobpc.Config{
		MaxTransactions:       cfg.BatchSize,
		BatchInterval:         time.Second,
		WitnessCount:          cfg.WitnessCount,
		ConsensusThreshold:    cfg.ConsensusThreshold,
		UseQuantumProofs:      cfg.UseQuantumProofs,
		QuantumCircuitDepth:   cfg.QuantumCircuitDepth,
		EnableErrorCorrection: cfg.EnableErrorCorrection,
	}
	consensus := pobpc.NewEngine(pobpcCfg, witnesses)
	consensus.SetMetrics(telemetry.NewConsensusMetrics(reg))

	batchprocCfg := batchproc.Config{
		NumWorkerThreads:              cfg.NumWorkerThreads,
		MaxQueueSize:                  cfg.MaxQueueSize,
		EnableContractParallelization: true,
		MaxParallelContracts:          4,
		MaxBatchSize:                  cfg.MaxBatchSize,
	}
	processor := batchproc.NewProcessor(batchprocCfg, accounts)
	processor.SetMetrics(telemetry.NewBatchProcMetrics(reg))

	transport, err := p2p.Listen(listenAddr, p2p.Config{
		PingInterval:      cfg.PingInterval,
		ConnectionTimeout: cfg.ConnectionTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("listen p2p: %w", err)
	}
	transport.SetMetrics(telemetry.NewP2PMetrics(reg))

	return &node{
		cfg:       cfg,
		accounts:  accounts,
		processor: processor,
		witnesses: witnesses,
		consensus: consensus,
		persist:   persist,
		l1:        bridge.NewMemory(),
		transport: transport,
	}, nil
}

func (n *node) Close() {
	n.transport.Close()
	n.persist.Close()
}
