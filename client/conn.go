package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Connection states
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ErrNotConnected is returned by Send while no live connection exists.
var ErrNotConnected = errors.New("realtime: not connected")

// StatusListener is notified on every connected/disconnected transition.
type StatusListener func(connected bool)

// ConnManager owns the transport connection and its lifecycle:
// disconnected -> connecting -> connected, back to connecting on an
// unexpected drop (with capped exponential backoff), and a terminal closed
// state reachable only through Close. A fresh Connect after Close re-enters
// at connecting.
type ConnManager struct {
	transport Transport
	endpoint  string
	token     string
	minDelay  time.Duration
	maxDelay  time.Duration
	log       zerolog.Logger

	// onMessage receives every inbound frame; onReconnect fires on each
	// connected transition so the registry can flush its subscriptions.
	onMessage   func([]byte)
	onReconnect func()

	mu         sync.Mutex
	state      ConnState
	conn       TransportConn
	listeners  []StatusListener
	generation int // invalidates run loops from previous Connect calls

	// writeMu serializes Send; the reconnect flush and UI-driven subscribe
	// calls can write concurrently, and the transport allows one writer.
	writeMu sync.Mutex
}

// NewConnManager creates a manager in the disconnected state.
func NewConnManager(transport Transport, endpoint, token string, minDelay, maxDelay time.Duration, log zerolog.Logger) *ConnManager {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = 30 * time.Second
	}
	return &ConnManager{
		transport: transport,
		endpoint:  endpoint,
		token:     token,
		minDelay:  minDelay,
		maxDelay:  maxDelay,
		log:       log,
		state:     StateDisconnected,
	}
}

// OnMessage sets the inbound frame callback. Must be called before Connect.
func (m *ConnManager) OnMessage(fn func([]byte)) {
	m.onMessage = fn
}

// OnReconnect sets the hook fired on every connected transition.
func (m *ConnManager) OnReconnect(fn func()) {
	m.onReconnect = fn
}

// OnStatus registers a listener for connected/disconnected transitions.
func (m *ConnManager) OnStatus(fn StatusListener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// IsConnected reports whether a live connection exists.
func (m *ConnManager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State returns the current connection state.
func (m *ConnManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect starts the connect/read/retry loop. Idempotent: calling while
// connecting or connected is a no-op. Cancelling ctx stops dialing and
// retrying; an established connection is released through Close.
func (m *ConnManager) Connect(ctx context.Context) {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	go m.run(ctx, gen)
}

// run dials, reads until the connection drops, then retries with backoff.
// It exits when the manager is closed or superseded by a newer Connect.
func (m *ConnManager) run(ctx context.Context, gen int) {
	delay := m.minDelay

	for {
		if !m.stillCurrent(gen) {
			return
		}

		conn, err := m.transport.Dial(ctx, m.endpoint, m.token)
		if err != nil {
			m.log.Warn().Err(err).Dur("retryIn", delay).Msg("realtime dial failed")
			if !m.sleep(ctx, delay) || !m.stillCurrent(gen) {
				return
			}
			delay = m.nextDelay(delay)
			continue
		}

		m.mu.Lock()
		if m.state == StateClosed || m.generation != gen {
			m.mu.Unlock()
			conn.Close()
			return
		}
		m.conn = conn
		m.state = StateConnected
		listeners := append([]StatusListener(nil), m.listeners...)
		m.mu.Unlock()

		m.log.Info().Str("endpoint", m.endpoint).Msg("realtime connected")
		for _, fn := range listeners {
			fn(true)
		}
		if m.onReconnect != nil {
			m.onReconnect()
		}
		delay = m.minDelay

		m.readLoop(conn, gen)

		m.mu.Lock()
		closed := m.state == StateClosed || m.generation != gen
		if !closed {
			m.state = StateConnecting
			m.conn = nil
		}
		listeners = append([]StatusListener(nil), m.listeners...)
		m.mu.Unlock()

		for _, fn := range listeners {
			fn(false)
		}
		if closed {
			return
		}

		m.log.Warn().Dur("retryIn", delay).Msg("realtime connection dropped")
		if !m.sleep(ctx, delay) || !m.stillCurrent(gen) {
			return
		}
		delay = m.nextDelay(delay)
	}
}

// readLoop pumps frames into onMessage until the connection errors out.
// Frames that arrive after Close are discarded.
func (m *ConnManager) readLoop(conn TransportConn, gen int) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !m.stillCurrent(gen) {
			return
		}
		if m.onMessage != nil {
			m.onMessage(data)
		}
	}
}

// Send writes v as JSON on the live connection. Writes are serialized; the
// state mutex is not held across the write so a slow socket never blocks
// state transitions.
func (m *ConnManager) Send(v interface{}) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// Close tears the connection down for good. Idempotent; no frames are
// dispatched afterwards.
func (m *ConnManager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = StateClosed
	m.generation++
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	m.log.Info().Msg("realtime connection closed")
}

func (m *ConnManager) stillCurrent(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation == gen && m.state != StateClosed
}

// sleep waits d between attempts; returns false if ctx ends first.
func (m *ConnManager) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *ConnManager) nextDelay(current time.Duration) time.Duration {
	next := current * 2
	if next > m.maxDelay {
		next = m.maxDelay
	}
	return next
}
