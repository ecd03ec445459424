package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stayline/stayline_realtime/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// controlMessage is what clients send over the socket: channel subscriptions
// and keepalive pings.
type controlMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// HandleWebSocket upgrades the connection, authenticates the bearer token and
// runs the client's control-message loop until disconnect.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	token := bearerToken(c)
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		StaffID:  claims.UserID,
		Role:     claims.Role,
		Conn:     conn,
		channels: make(map[string]bool),
	}

	hub.register <- client

	client.write(controlFrame{
		Control: "connected",
		Message: "Realtime connection established",
	})

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var msg controlMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				log.Printf("Dropping malformed control message from %s: %v", client.StaffID, err)
				continue
			}

			switch msg.Action {
			case "subscribe":
				hub.Subscribe(client, msg.Channel)
				client.write(controlFrame{Control: "subscribed", Channel: msg.Channel})
			case "unsubscribe":
				hub.Unsubscribe(client, msg.Channel)
				client.write(controlFrame{Control: "unsubscribed", Channel: msg.Channel})
			case "ping":
				client.write(controlFrame{Control: "pong"})
			default:
				log.Printf("Unknown control action %q from %s", msg.Action, client.StaffID)
			}
		}
	}()

	return nil
}

// bearerToken pulls the session token from the Authorization header or, for
// browser WebSocket clients that cannot set headers, the token query param.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.QueryParam("token")
}
