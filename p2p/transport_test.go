// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package p2p

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/qrollup/node/internal/telemetry"
)

func TestTransportHandshakeAndUnicast(t *testing.T) {
	a, err := Listen("127.0.0.1:0", Config{PingInterval: time.Hour, ConnectionTimeout: time.Hour}, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Listen("127.0.0.1:0", Config{PingInterval: time.Hour, ConnectionTimeout: time.Hour}, nil)
	require.NoError(t, err)
	defer b.Close()

	var mu sync.Mutex
	var received []Envelope
	b.RegisterHandler(func(peer string, env Envelope) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, env)
	})

	bAddr := b.conn.LocalAddr().String()
	aAddr := a.conn.LocalAddr().String()

	require.NoError(t, a.Connect(bAddr))
	require.NoError(t, b.Connect(aAddr))

	require.Eventually(t, func() bool {
		return len(a.Peers()) == 1 && len(b.Peers()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Unicast(bAddr, Envelope{Type: 42, Data: []byte("ping payload")}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Equal(t, MessageType(42), received[0].Type)
	require.Equal(t, []byte("ping payload"), received[0].Data)
	mu.Unlock()
}

func TestTransportUnicastToUnknownPeerFails(t *testing.T) {
	a, err := Listen("127.0.0.1:0", DefaultConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	err = a.Unicast("127.0.0.1:9", Envelope{Type: 1})
	require.ErrorIs(t, err, ErrPeerUnavailable)
}

func TestTransportRecordsFrameMetrics(t *testing.T) {
	a, err := Listen("127.0.0.1:0", Config{PingInterval: time.Hour, ConnectionTimeout: time.Hour}, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Listen("127.0.0.1:0", Config{PingInterval: time.Hour, ConnectionTimeout: time.Hour}, nil)
	require.NoError(t, err)
	defer b.Close()

	ma := telemetry.NewP2PMetrics(telemetry.NewRegistry(nil))
	mb := telemetry.NewP2PMetrics(telemetry.NewRegistry(nil))
	a.SetMetrics(ma)
	b.SetMetrics(mb)

	bAddr := b.conn.LocalAddr().String()
	aAddr := a.conn.LocalAddr().String()
	require.NoError(t, a.Connect(bAddr))
	require.NoError(t, b.Connect(aAddr))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(ma.PeersConnected) == 1 && testutil.ToFloat64(mb.PeersConnected) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Unicast(bAddr, Envelope{Type: 1, Data: []byte("x")}))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(mb.FramesReceived) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	require.GreaterOrEqual(t, testutil.ToFloat64(ma.FramesSent), float64(1))
}
