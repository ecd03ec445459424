// Package client is the realtime notification client for the StayLine hotel
// dashboards. One Client is created per authenticated session and shared by
// every consumer; it owns the push connection, the channel subscriptions and
// the bounded notification store.
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Client. Zero values get sensible defaults.
type Options struct {
	// Endpoint is the gateway push URL, e.g. "wss://host/ws".
	Endpoint string
	// Token is attached as a bearer credential when dialing.
	Token string
	// Bound caps the store; DefaultBound when zero.
	Bound int
	// Channels to subscribe on construction.
	Channels []string
	// Transport overrides the WebSocket transport, mainly for tests.
	Transport Transport
	// Logger for diagnostics; silent when nil.
	Logger *zerolog.Logger
	// ReconnectMin/ReconnectMax bound the backoff between reconnect attempts.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Client ties the connection manager, subscription registry, store and
// dispatcher together behind one injectable object. It replaces the module
// level singleton of the original dashboards; the single-instance-per-session
// rule is now the caller's, enforced by construction.
type Client struct {
	conn     *ConnManager
	registry *Registry
	store    *Store
	emitter  *Emitter
	disp     *Dispatcher
}

// New builds a Client. Call Connect to go live.
func New(opts Options) *Client {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	transport := opts.Transport
	if transport == nil {
		transport = &WebSocketTransport{}
	}

	c := &Client{
		store:   NewStore(opts.Bound),
		emitter: NewEmitter(),
	}
	c.disp = NewDispatcher(c.store, c.emitter, log)
	c.conn = NewConnManager(transport, opts.Endpoint, opts.Token, opts.ReconnectMin, opts.ReconnectMax, log)
	c.registry = NewRegistry(c.conn.Send, log)

	c.conn.OnMessage(c.disp.OnMessage)
	c.conn.OnReconnect(c.registry.Flush)

	for _, ch := range opts.Channels {
		c.registry.Subscribe(ch)
	}
	return c
}

// Connect opens the push connection; reconnects run automatically until
// Close. Idempotent while connecting or connected.
func (c *Client) Connect(ctx context.Context) {
	c.conn.Connect(ctx)
}

// Close releases the push connection. Idempotent; no events are dispatched
// afterwards.
func (c *Client) Close() {
	c.conn.Close()
}

// IsConnected reports the live connection status.
func (c *Client) IsConnected() bool { return c.conn.IsConnected() }

// OnStatus registers a listener for connected/disconnected transitions so
// status indicators stay in sync without polling.
func (c *Client) OnStatus(fn StatusListener) { c.conn.OnStatus(fn) }

// Subscribe starts listening on channel. Survives reconnects.
func (c *Client) Subscribe(channel string) { c.registry.Subscribe(channel) }

// Unsubscribe stops listening on channel.
func (c *Client) Unsubscribe(channel string) { c.registry.Unsubscribe(channel) }

// Channels returns the active subscription set.
func (c *Client) Channels() []string { return c.registry.Channels() }

// Notifications returns a snapshot of stored records matching filter.
func (c *Client) Notifications(filter Filter) []Record { return c.store.Query(filter) }

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount() int { return c.store.UnreadCount() }

// MarkRead marks a single notification read.
func (c *Client) MarkRead(id string) bool { return c.store.MarkRead(id) }

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead() int { return c.store.MarkAllRead() }

// ClearAll empties the notification store.
func (c *Client) ClearAll() { c.store.Clear() }

// On registers a handler for notifications of eventType (EventAny for all).
// Handlers are refresh triggers for dashboards, not a data source.
func (c *Client) On(eventType string, h Handler) Subscription { return c.emitter.On(eventType, h) }

// Off removes a handler registered with On.
func (c *Client) Off(sub Subscription) { c.emitter.Off(sub) }
