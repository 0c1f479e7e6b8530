package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans notifications out to connected clients. One user may hold
// several connections (multi-device); redis carries deliveries across
// instances so a user connected elsewhere still receives the push.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.evict(client)
		}
	}
}

// evict removes the client under the write lock and closes its Send
// channel exactly once. A client that was already removed is a no-op,
// so the unregister path and a send-site eviction never double close.
func (h *Hub) evict(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
			}
			close(client.Send)
			return
		}
	}
}

// push attempts a non-blocking delivery. A full buffer means the client
// stopped reading; it is evicted rather than allowed to stall the hub.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.evict(client)
	}
}

func (h *Hub) snapshotAll() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var all []*Client
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	return all
}

func (h *Hub) snapshotUser(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*Client(nil), h.clients[userID]...)
}

// Broadcast pushes a notification to every connected client.
func (h *Hub) Broadcast(notification entity.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	for _, client := range h.snapshotAll() {
		h.push(client, data)
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user_id": "*",
			"message":        data,
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

// Send pushes a notification to one user's connections.
func (h *Hub) Send(userID uuid.UUID, notification entity.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	for _, client := range h.snapshotUser(userID) {
		h.push(client, data)
	}

	// Always publish so connections on other instances are covered too.
	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        data,
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			for _, client := range h.snapshotAll() {
				h.push(client, payload.Message)
			}
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		for _, client := range h.snapshotUser(uid) {
			h.push(client, payload.Message)
		}
	}
}
