package client

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// Transport abstracts the push connection so the realtime client can run over
// WebSocket today and SSE or long-poll later without touching the connection
// state machine. Implementations must return an error from Dial rather than
// blocking forever.
type Transport interface {
	Dial(ctx context.Context, endpoint, token string) (TransportConn, error)
}

// TransportConn is a single live push connection.
type TransportConn interface {
	// ReadMessage blocks until the next frame arrives or the connection dies.
	ReadMessage() ([]byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// WebSocketTransport dials the gateway with gorilla/websocket, attaching the
// session token as a bearer credential.
type WebSocketTransport struct {
	Dialer *websocket.Dialer
}

func (t *WebSocketTransport) Dial(ctx context.Context, endpoint, token string) (TransportConn, error) {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v interface{}) error {
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
