package client

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Control actions understood by the gateway's push endpoint.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

type subscribeMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Registry tracks the set of channels this client wants events for.
// Membership is a set; channels subscribed while disconnected are remembered
// and flushed on the next connected transition.
type Registry struct {
	mu       sync.Mutex
	channels map[string]struct{}
	send     func(v interface{}) error
	log      zerolog.Logger
}

// NewRegistry creates a registry that issues subscribe requests through send.
func NewRegistry(send func(v interface{}) error, log zerolog.Logger) *Registry {
	return &Registry{
		channels: make(map[string]struct{}),
		send:     send,
		log:      log,
	}
}

// Subscribe adds channel to the set (idempotent) and, when connected, tells
// the gateway immediately. While disconnected the channel is only remembered;
// Flush picks it up on reconnect.
func (r *Registry) Subscribe(channel string) {
	if channel == "" {
		return
	}
	r.mu.Lock()
	r.channels[channel] = struct{}{}
	r.mu.Unlock()

	if err := r.send(subscribeMessage{Action: actionSubscribe, Channel: channel}); err != nil && err != ErrNotConnected {
		r.log.Warn().Err(err).Str("channel", channel).Msg("subscribe request failed")
	}
}

// Unsubscribe removes channel from the set and tells the gateway if connected.
func (r *Registry) Unsubscribe(channel string) {
	r.mu.Lock()
	delete(r.channels, channel)
	r.mu.Unlock()

	if err := r.send(subscribeMessage{Action: actionUnsubscribe, Channel: channel}); err != nil && err != ErrNotConnected {
		r.log.Warn().Err(err).Str("channel", channel).Msg("unsubscribe request failed")
	}
}

// Channels returns the current membership, sorted for stable display.
func (r *Registry) Channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.channels))
	for ch := range r.channels {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// Flush re-subscribes every registered channel. The connection manager calls
// this on each connected transition so subscriptions survive reconnects.
func (r *Registry) Flush() {
	for _, ch := range r.Channels() {
		if err := r.send(subscribeMessage{Action: actionSubscribe, Channel: ch}); err != nil {
			r.log.Warn().Err(err).Str("channel", ch).Msg("re-subscribe failed")
		}
	}
}
