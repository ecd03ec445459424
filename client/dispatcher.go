package client

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stayline/stayline_realtime/models"
)

// wireMessage is the raw shape of a push frame. Timestamp stays raw because
// the gateway and older hotel services disagree on the format (RFC3339 string
// vs epoch number).
type wireMessage struct {
	Control   string                 `json:"control,omitempty"`
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Action    string                 `json:"action"`
	Severity  string                 `json:"severity"`
	Channel   string                 `json:"channel"`
	Timestamp json.RawMessage        `json:"timestamp"`
	Details   map[string]interface{} `json:"details"`
	Read      bool                   `json:"read"`
}

// Dispatcher is the validation boundary between the transport and the store.
// Malformed frames are dropped and logged; they never reach the store and
// never panic. Accepted records go to the store and then out through the
// emitter.
type Dispatcher struct {
	store   *Store
	emitter *Emitter
	log     zerolog.Logger
}

// NewDispatcher wires a dispatcher to its store and emitter.
func NewDispatcher(store *Store, emitter *Emitter, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: store, emitter: emitter, log: log}
}

// OnMessage handles one raw frame from the transport.
func (d *Dispatcher) OnMessage(raw []byte) {
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.log.Warn().Err(err).Msg("dropping undecodable push frame")
		return
	}

	// Transport-level control frames (welcome, subscribe acks, pong) are not
	// notifications.
	if msg.Control != "" {
		d.log.Debug().Str("control", msg.Control).Msg("control frame")
		return
	}

	if msg.Type == "" {
		d.log.Warn().Str("id", msg.ID).Msg("dropping push frame without type")
		return
	}

	rec := Record{
		ID:        msg.ID,
		Type:      msg.Type,
		Action:    msg.Action,
		Severity:  normalizeSeverity(msg.Severity),
		Channel:   msg.Channel,
		Timestamp: parseTimestamp(msg.Timestamp),
		Read:      msg.Read,
		Details:   decodeDetails(msg.Type, msg.Details),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if !d.store.Insert(rec) {
		d.log.Debug().Str("id", rec.ID).Msg("duplicate notification ignored")
		return
	}

	d.emitter.Emit(Event{Type: rec.Type, Record: rec})
}

func normalizeSeverity(s string) string {
	if models.ValidSeverity(s) {
		return s
	}
	return models.SeverityInfo
}

// parseTimestamp accepts RFC3339 strings and epoch seconds or milliseconds.
// Anything else falls back to the arrival time.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Now()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Now()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n > 1e12 { // epoch milliseconds
			return time.UnixMilli(int64(n))
		}
		return time.Unix(int64(n), 0)
	}

	return time.Now()
}
