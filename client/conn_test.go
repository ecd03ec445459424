package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory TransportConn driven by the test. It flags
// overlapping WriteJSON calls, which a real WebSocket connection forbids.
type fakeConn struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	inFlight   int32
	overlapped int32

	mu     sync.Mutex
	writes []interface{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case msg := <-c.in:
		return msg, nil
	case <-c.closed:
		return nil, errors.New("connection closed")
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&c.inFlight, 1) > 1 {
		atomic.StoreInt32(&c.overlapped, 1)
	}
	defer atomic.AddInt32(&c.inFlight, -1)

	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	c.writes = append(c.writes, v)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) sawOverlappingWrites() bool {
	return atomic.LoadInt32(&c.overlapped) == 1
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) subscribedChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, w := range c.writes {
		if msg, ok := w.(subscribeMessage); ok && msg.Action == actionSubscribe {
			out = append(out, msg.Channel)
		}
	}
	return out
}

// fakeTransport hands out fakeConns and records every dial.
type fakeTransport struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (t *fakeTransport) Dial(ctx context.Context, endpoint, token string) (TransportConn, error) {
	conn := newFakeConn()
	t.mu.Lock()
	t.conns = append(t.conns, conn)
	t.mu.Unlock()
	return conn, nil
}

func (t *fakeTransport) dialCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

func (t *fakeTransport) conn(i int) *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[i]
}

func newTestClient(transport Transport) *Client {
	return New(Options{
		Endpoint:     "ws://test/ws",
		Transport:    transport,
		ReconnectMin: time.Millisecond,
		ReconnectMax: 5 * time.Millisecond,
	})
}

func TestReconnectResubscribes(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)
	defer rt.Close()

	// subscribed while disconnected; must be remembered
	rt.Subscribe("admin")

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return len(transport.conn(0).subscribedChannels()) > 0
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"admin"}, transport.conn(0).subscribedChannels())

	// drop the connection; the client must reconnect and re-subscribe on its
	// own, without another Subscribe call
	transport.conn(0).Close()

	require.Eventually(t, func() bool {
		return transport.dialCount() >= 2 && len(transport.conn(1).subscribedChannels()) > 0
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"admin"}, transport.conn(1).subscribedChannels())
	assert.Equal(t, []string{"admin"}, rt.Channels())
}

func TestConcurrentSubscribeWritesSerialized(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)
	defer rt.Close()

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rt.Subscribe(fmt.Sprintf("room-%d", i))
		}(i)
	}
	// drop the connection mid-burst so the reconnect flush writes while
	// subscribe calls are still in flight
	transport.conn(0).Close()
	wg.Wait()

	require.Eventually(t, func() bool {
		return transport.dialCount() >= 2 && len(transport.conn(1).subscribedChannels()) > 0
	}, time.Second, time.Millisecond)
	assert.Len(t, rt.Channels(), 32)

	for i := 0; i < transport.dialCount(); i++ {
		assert.False(t, transport.conn(i).sawOverlappingWrites(),
			"conn %d saw overlapping writes", i)
	}
}

func TestConnectIdempotent(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)
	defer rt.Close()

	ctx := context.Background()
	rt.Connect(ctx)
	rt.Connect(ctx)
	rt.Connect(ctx)

	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, transport.dialCount())
}

func TestCloseStopsDispatch(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)

	conn := transport.conn(0)
	conn.in <- []byte(`{"id": "n1", "type": "system_alert"}`)
	require.Eventually(t, func() bool { return rt.UnreadCount() == 1 }, time.Second, time.Millisecond)

	rt.Close()
	rt.Close() // idempotent

	assert.False(t, rt.IsConnected())
	// no reconnect after explicit close
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, transport.dialCount())
	assert.Equal(t, 1, rt.UnreadCount())
}

func TestStatusListeners(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)
	defer rt.Close()

	var mu sync.Mutex
	var transitions []bool
	rt.OnStatus(func(connected bool) {
		mu.Lock()
		transitions = append(transitions, connected)
		mu.Unlock()
	})

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)

	transport.conn(0).Close()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(transitions) >= 3 // connected, disconnected, connected again
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, transitions[0])
	assert.False(t, transitions[1])
	assert.True(t, transitions[2])
}

func TestConnectAfterCloseReenters(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)
	rt.Close()
	assert.False(t, rt.IsConnected())

	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)
	assert.Equal(t, 2, transport.dialCount())
	rt.Close()
}

func TestEndToEndMessageFlow(t *testing.T) {
	transport := &fakeTransport{}
	rt := newTestClient(transport)
	defer rt.Close()

	refreshed := make(chan Event, 1)
	rt.On("maintenance_update", func(ev Event) { refreshed <- ev })

	rt.Subscribe("maintenance")
	rt.Connect(context.Background())
	require.Eventually(t, rt.IsConnected, time.Second, time.Millisecond)

	transport.conn(0).in <- []byte(`{
		"id": "m1",
		"type": "maintenance_update",
		"action": "created",
		"details": {"room_number": "310", "description": "AC leaking"},
		"severity": "warning",
		"channel": "maintenance",
		"timestamp": "2024-03-05T09:00:00Z"
	}`)

	select {
	case ev := <-refreshed:
		assert.Equal(t, "m1", ev.Record.ID)
	case <-time.After(time.Second):
		t.Fatal("no event emitted")
	}

	require.Equal(t, 1, rt.UnreadCount())
	assert.True(t, rt.MarkRead("m1"))
	assert.Equal(t, 0, rt.UnreadCount())
	assert.False(t, rt.MarkRead("m1"))
}
