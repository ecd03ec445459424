package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/stayline/stayline_realtime/models"
)

const redisEventChannel = "stayline:notifications"

// Client represents a connected dashboard session
type Client struct {
	StaffID  string
	Role     string
	Conn     *websocket.Conn
	channels map[string]bool

	// writeMu serializes writes; gorilla allows only one concurrent writer,
	// and both the hub loop and the client's read loop send frames.
	writeMu sync.Mutex
}

// write sends one frame on the connection, serialized across goroutines.
func (c *Client) write(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// controlFrame is sent for transport-level traffic (welcome, acks, pong) so
// clients can tell it apart from notification records.
type controlFrame struct {
	Control string `json:"control"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// Hub maintains the set of active clients and fans notifications out to the
// channels they subscribed to. With Redis configured, events published on one
// gateway instance reach clients on every instance.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Notification
	redis      *redis.Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance. redisClient may be nil; the hub then
// delivers locally only.
func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Notification, 64),
		redis:      redisClient,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()
		case notification := <-h.broadcast:
			h.deliver(notification)
		}
	}
}

// deliver writes the notification to every client subscribed to its channel.
// Write failures drop the client.
func (h *Hub) deliver(notification models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.channels[notification.Channel] {
			continue
		}
		if err := client.write(notification); err != nil {
			log.Printf("WebSocket write to %s failed: %v", client.StaffID, err)
			client.Conn.Close()
			delete(h.clients, client)
		}
	}
}

// Subscribe adds a channel to the client's subscription set
func (h *Hub) Subscribe(client *Client, channel string) {
	if channel == "" {
		return
	}
	h.mu.Lock()
	client.channels[channel] = true
	h.mu.Unlock()
}

// Unsubscribe removes a channel from the client's subscription set
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	delete(client.channels, channel)
	h.mu.Unlock()
}

// Publish fans a notification out. With Redis available it goes through the
// pub/sub bridge so every gateway instance delivers it; otherwise it is
// broadcast locally.
func (h *Hub) Publish(notification models.Notification) {
	if h.redis != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			log.Printf("Error marshaling notification %s: %v", notification.ID, err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisEventChannel, payload).Err(); err != nil {
			log.Printf("Redis publish failed, delivering locally: %v", err)
			h.broadcast <- notification
		}
		return
	}
	h.broadcast <- notification
}

// RunRedisBridge subscribes to the Redis event channel and feeds received
// notifications into the local broadcast loop. Call in a goroutine after
// NewHub when Redis is configured.
func (h *Hub) RunRedisBridge(ctx context.Context) {
	if h.redis == nil {
		return
	}

	pubsub := h.redis.Subscribe(ctx, redisEventChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var notification models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				log.Printf("Dropping malformed notification from Redis: %v", err)
				continue
			}
			h.broadcast <- notification
		}
	}
}

// ClientCount returns the number of connected clients, for the health check.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
