// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package p2p

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/qrollup/node/internal/telemetry"
)

// ErrPeerUnavailable is returned when Unicast targets a peer that is not
// currently connected.
var ErrPeerUnavailable = errors.New("p2p: peer unavailable")

// Handler is invoked once per received, decoded Envelope. Handlers run on
// the transport's single receive loop; a handler that blocks delays
// delivery to every other peer, matching the teacher's sequential-consumer
// message-bus convention (spec §9 "coroutine-like handler callbacks"
// replaced with a plain channel consumer).
type Handler func(peer string, env Envelope)

// Transport is the P2P Transport interface (C13): broadcast/unicast of
// framed, typed messages to peers, with version handshake and PING/PONG
// liveness tracking. Delivery is unreliable: callers must tolerate loss,
// duplication, and reordering (spec §6).
type Transport interface {
	// Broadcast sends env to every connected peer.
	Broadcast(env Envelope) error
	// Unicast sends env to a single named peer.
	Unicast(peer string, env Envelope) error
	// RegisterHandler installs the callback invoked for every received
	// envelope.
	RegisterHandler(h Handler)
	// Peers returns the addresses of currently connected (handshake
	// completed, not yet timed out) peers.
	Peers() []string
	// Connect dials addr and performs the version handshake.
	Connect(addr string) error
	// Close shuts down the transport and releases its socket.
	Close() error
}

// peerState tracks one remote endpoint's handshake and liveness state.
type peerState struct {
	addr        *net.UDPAddr
	established bool
	lastActive  time.Time
}

// Config controls liveness behavior (spec §6 "ping_interval",
// "connection_timeout").
type Config struct {
	PingInterval      time.Duration
	ConnectionTimeout time.Duration
}

// DefaultConfig returns a 10s ping interval with a 30s connection timeout.
func DefaultConfig() Config {
	return Config{PingInterval: 10 * time.Second, ConnectionTimeout: 30 * time.Second}
}

// UDPTransport is a Transport implementation over a UDP socket. UDP's
// connectionless, unordered, duplicating delivery model already matches
// spec §6's "unreliable datagram per message" requirement directly,
// rather than needing to simulate loss/reordering over a reliable stream.
type UDPTransport struct {
	cfg  Config
	log  log.Logger
	conn *net.UDPConn

	mu      sync.Mutex
	peers   map[string]*peerState
	handler Handler
	metrics *telemetry.P2PMetrics

	closeOnce sync.Once
	closed    chan struct{}
}

// SetMetrics attaches m so frame counts, connected-peer count, and
// timeout events are recorded. Passing nil disables recording.
func (t *UDPTransport) SetMetrics(m *telemetry.P2PMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = m
}

// Listen opens a UDP socket on localAddr (e.g. "0.0.0.0:30303") and starts
// the receive and keep-alive loops.
func Listen(localAddr string, cfg Config, logger log.Logger) (*UDPTransport, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	udpAddr, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	t := &UDPTransport{
		cfg:    cfg,
		log:    logger,
		conn:   conn,
		peers:  make(map[string]*peerState),
		closed: make(chan struct{}),
	}
	go t.receiveLoop()
	go t.keepAliveLoop()
	return t, nil
}

// RegisterHandler implements Transport.
func (t *UDPTransport) RegisterHandler(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Connect implements Transport: sends our 2-byte version to addr and marks
// the peer pending until its own version is observed on the receive loop.
func (t *UDPTransport) Connect(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.peers[addr] = &peerState{addr: udpAddr, lastActive: time.Now()}
	t.mu.Unlock()

	frame, err := EncodeFrame(ProtocolVersion[:])
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDP(frame, udpAddr)
	return err
}

// Broadcast implements Transport.
func (t *UDPTransport) Broadcast(env Envelope) error {
	frame, err := EncodeFrame(env.Encode())
	if err != nil {
		return err
	}
	t.mu.Lock()
	targets := make([]*net.UDPAddr, 0, len(t.peers))
	for _, p := range t.peers {
		if p.established {
			targets = append(targets, p.addr)
		}
	}
	t.mu.Unlock()

	var firstErr error
	for _, addr := range targets {
		if _, err := t.conn.WriteToUDP(frame, addr); err != nil && firstErr == nil {
			firstErr = err
		} else if err == nil {
			t.countFrameSent()
		}
	}
	return firstErr
}

func (t *UDPTransport) countFrameSent() {
	t.mu.Lock()
	m := t.metrics
	t.mu.Unlock()
	if m != nil {
		m.FramesSent.Inc()
	}
}

// Unicast implements Transport.
func (t *UDPTransport) Unicast(peer string, env Envelope) error {
	t.mu.Lock()
	p, ok := t.peers[peer]
	t.mu.Unlock()
	if !ok || !p.established {
		return ErrPeerUnavailable
	}
	frame, err := EncodeFrame(env.Encode())
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDP(frame, p.addr)
	if err == nil {
		t.countFrameSent()
	}
	return err
}

// Peers implements Transport.
func (t *UDPTransport) Peers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.peers))
	for addr, p := range t.peers {
		if p.established {
			out = append(out, addr)
		}
	}
	return out
}

// Close implements Transport.
func (t *UDPTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return t.conn.Close()
}

func (t *UDPTransport) receiveLoop() {
	buf := make([]byte, frameHeaderSize+MaxPayloadSize)
	for {
		n, remote, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.closed:
				return
			default:
				t.log.Warn("p2p: read error", "error", err)
				continue
			}
		}
		t.handleDatagram(remote, append([]byte(nil), buf[:n]...))
	}
}

func (t *UDPTransport) handleDatagram(remote *net.UDPAddr, datagram []byte) {
	payload, err := DecodeFrame(datagram)
	if err != nil {
		t.log.Warn("p2p: dropped malformed frame", "error", err)
		return
	}

	key := remote.String()
	t.mu.Lock()
	p, ok := t.peers[key]
	if !ok {
		p = &peerState{addr: remote}
		t.peers[key] = p
	}
	p.lastActive = time.Now()
	m := t.metrics
	t.mu.Unlock()
	if m != nil {
		m.FramesReceived.Inc()
	}

	switch {
	case len(payload) == 2 && [2]byte{payload[0], payload[1]} == ProtocolVersion:
		t.mu.Lock()
		p.established = true
		connected := t.countEstablishedLocked()
		t.mu.Unlock()
		if m != nil {
			m.PeersConnected.Set(float64(connected))
		}
		return
	case IsPing(payload):
		pong, _ := EncodeFrame(pongPayload[:])
		_, _ = t.conn.WriteToUDP(pong, remote)
		return
	case IsPong(payload):
		return
	}

	env, err := DecodeEnvelope(payload)
	if err != nil {
		t.log.Warn("p2p: dropped malformed envelope", "error", err)
		return
	}
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h != nil {
		h(key, env)
	}
}

func (t *UDPTransport) keepAliveLoop() {
	interval := t.cfg.PingInterval
	if interval <= 0 {
		interval = DefaultConfig().PingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.closed:
			return
		case <-ticker.C:
			t.pingAndReap()
		}
	}
}

func (t *UDPTransport) pingAndReap() {
	timeout := t.cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectionTimeout
	}
	now := time.Now()

	t.mu.Lock()
	var alive []*net.UDPAddr
	var timedOut int
	for addr, p := range t.peers {
		if now.Sub(p.lastActive) > timeout {
			delete(t.peers, addr)
			timedOut++
			continue
		}
		if p.established {
			alive = append(alive, p.addr)
		}
	}
	connected := t.countEstablishedLocked()
	m := t.metrics
	t.mu.Unlock()

	if m != nil {
		if timedOut > 0 {
			m.PeersTimedOut.Add(float64(timedOut))
		}
		m.PeersConnected.Set(float64(connected))
	}

	ping := PingFrame()
	for _, addr := range alive {
		_, _ = t.conn.WriteToUDP(ping, addr)
	}
}

// countEstablishedLocked counts handshake-complete peers. Callers must
// hold t.mu.
func (t *UDPTransport) countEstablishedLocked() int {
	n := 0
	for _, p := range t.peers {
		if p.established {
			n++
		}
	}
	return n
}

var _ Transport = (*UDPTransport)(nil)
