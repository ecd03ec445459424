package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayline/stayline_realtime/middleware"
	"github.com/stayline/stayline_realtime/models"
)

func startTestGateway(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	os.Setenv("JWT_SECRET", "hub-test-secret")

	hub := NewHub(nil)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub)
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialTestGateway(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	token, _, err := middleware.GenerateJWT("staff-1", "reception@stayline.test", models.RoleReception)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestSubscribeAndReceive(t *testing.T) {
	hub, srv := startTestGateway(t)
	conn := dialTestGateway(t, srv)

	welcome := readFrame(t, conn)
	assert.Equal(t, "connected", welcome["control"])

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "channel": "reception"}))
	ack := readFrame(t, conn)
	assert.Equal(t, "subscribed", ack["control"])
	assert.Equal(t, "reception", ack["channel"])

	hub.Publish(models.Notification{
		ID:        "n1",
		Type:      models.NotificationTypeBooking,
		Action:    "created",
		Channel:   models.ChannelReception,
		Severity:  models.SeverityInfo,
		Timestamp: time.Now().UTC(),
	})

	frame := readFrame(t, conn)
	assert.Equal(t, "n1", frame["id"])
	assert.Equal(t, "booking_update", frame["type"])
}

func TestChannelIsolation(t *testing.T) {
	hub, srv := startTestGateway(t)
	conn := dialTestGateway(t, srv)

	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "channel": "housekeeping"}))
	readFrame(t, conn) // ack

	// published on a channel this client did not subscribe to
	hub.Publish(models.Notification{
		ID:      "n1",
		Type:    models.NotificationTypeBilling,
		Channel: models.ChannelAdmin,
	})
	// then one it did
	hub.Publish(models.Notification{
		ID:      "n2",
		Type:    models.NotificationTypeHousekeeping,
		Channel: models.ChannelHousekeeping,
	})

	frame := readFrame(t, conn)
	assert.Equal(t, "n2", frame["id"], "admin-channel event must not reach a housekeeping subscriber")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub, srv := startTestGateway(t)
	conn := dialTestGateway(t, srv)

	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "channel": "admin"}))
	readFrame(t, conn) // ack
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "unsubscribe", "channel": "admin"}))
	ack := readFrame(t, conn)
	assert.Equal(t, "unsubscribed", ack["control"])

	hub.Publish(models.Notification{ID: "n1", Type: models.NotificationTypeSystemAlert, Channel: models.ChannelAdmin})

	// a ping keeps the read loop honest; pong must be the next frame, not n1
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "pong", frame["control"])
}

func TestConcurrentPingDuringBroadcast(t *testing.T) {
	hub, srv := startTestGateway(t)
	conn := dialTestGateway(t, srv)

	readFrame(t, conn) // welcome
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "channel": "reception"}))
	readFrame(t, conn) // ack

	// the hub loop and the handler's read loop now write the same connection
	// at the same time; pong acks and notifications must interleave cleanly
	const rounds = 100
	go func() {
		for i := 0; i < rounds; i++ {
			hub.Publish(models.Notification{
				ID:      fmt.Sprintf("n%d", i),
				Type:    models.NotificationTypeBooking,
				Channel: models.ChannelReception,
			})
		}
	}()
	go func() {
		for i := 0; i < rounds; i++ {
			conn.WriteJSON(map[string]string{"action": "ping"})
		}
	}()

	pongs, delivered := 0, 0
	for pongs < rounds || delivered < rounds {
		frame := readFrame(t, conn)
		if frame["control"] == "pong" {
			pongs++
		} else {
			delivered++
		}
	}
	assert.Equal(t, rounds, pongs)
	assert.Equal(t, rounds, delivered)
}

func TestRejectsBadToken(t *testing.T) {
	_, srv := startTestGateway(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=not-a-token"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}
