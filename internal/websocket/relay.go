package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"last20-backend/internal/pkg/logger"
	"last20-backend/pkg/signaling"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRelay shuttles signaling envelopes between the two participants
// of a live help session. It never interprets SDP or ICE payloads; it only
// validates addressing and forwards. Redis covers the case where the two
// participants are connected to different instances.
type SessionRelay struct {
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewSessionRelay(rdb *redis.Client, log logger.ILogger) *SessionRelay {
	return &SessionRelay{
		rooms:  make(map[uuid.UUID]map[uuid.UUID]*Client),
		rdb:    rdb,
		logger: log,
	}
}

// Run starts the cross-instance subscriber. Local joins and routing need
// no pump loop of their own.
func (r *SessionRelay) Run() {
	if r.rdb != nil {
		go r.subscribeToRedis()
	}
}

// Serve joins an authorized participant's connection to the session room
// and blocks until the peer disconnects. The caller must have verified
// that userID participates in the session.
func (r *SessionRelay) Serve(conn *websocket.Conn, sessionID, userID uuid.UUID) {
	client := &Client{Conn: conn, UserID: userID, Send: make(chan []byte, 256)}
	client.OnMessage = func(data []byte) {
		r.route(sessionID, userID, data)
	}

	r.mu.Lock()
	room, ok := r.rooms[sessionID]
	if !ok {
		room = make(map[uuid.UUID]*Client)
		r.rooms[sessionID] = room
	}
	// A reconnect replaces the previous connection for the same user.
	if prev, ok := room[userID]; ok {
		close(prev.Send)
	}
	room[userID] = client
	r.mu.Unlock()

	r.logger.Info("SessionRelay", "Participant joined", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
	})

	go client.writePump()
	client.readPump(func() {
		r.leave(sessionID, userID, client)
	})
}

func (r *SessionRelay) leave(sessionID, userID uuid.UUID, client *Client) {
	r.mu.Lock()
	if room, ok := r.rooms[sessionID]; ok {
		if current, ok := room[userID]; ok && current == client {
			delete(room, userID)
			close(client.Send)
		}
		if len(room) == 0 {
			delete(r.rooms, sessionID)
		}
	}
	r.mu.Unlock()
}

// route validates an inbound envelope and forwards it to its addressee.
// The session and sender ids are stamped server-side so a client cannot
// spoof either.
func (r *SessionRelay) route(sessionID, fromUserID uuid.UUID, data []byte) {
	var env signaling.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn("SessionRelay", "Dropping malformed envelope", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	switch env.Type {
	case signaling.MessageOffer, signaling.MessageAnswer, signaling.MessageCandidate:
	default:
		return
	}

	env.SessionID = sessionID
	env.FromUserID = fromUserID
	r.Deliver(env)
}

// Deliver forwards an envelope to its recipient, locally when connected
// here and through redis otherwise.
func (r *SessionRelay) Deliver(env signaling.Envelope) {
	data, _ := json.Marshal(env)

	delivered := r.deliverLocal(env.SessionID, env.ToUserID, data)

	if r.rdb != nil && !delivered {
		payload, _ := json.Marshal(map[string]interface{}{
			"session_id": env.SessionID.String(),
			"to_user_id": env.ToUserID.String(),
			"message":    json.RawMessage(data),
		})
		r.rdb.Publish(context.Background(), "signal_events", payload)
	}
}

func (r *SessionRelay) deliverLocal(sessionID, toUserID uuid.UUID, data []byte) bool {
	r.mu.RLock()
	room, ok := r.rooms[sessionID]
	var target *Client
	if ok {
		target = room[toUserID]
	}
	r.mu.RUnlock()

	if target == nil {
		return false
	}

	select {
	case target.Send <- data:
		return true
	default:
		// Slow consumer. Drop the connection rather than block the room.
		r.mu.Lock()
		if current, ok := r.rooms[sessionID][toUserID]; ok && current == target {
			delete(r.rooms[sessionID], toUserID)
			close(target.Send)
		}
		r.mu.Unlock()
		return false
	}
}

func (r *SessionRelay) subscribeToRedis() {
	ctx := context.Background()
	pubsub := r.rdb.Subscribe(ctx, "signal_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			SessionID string          `json:"session_id"`
			ToUserID  string          `json:"to_user_id"`
			Message   json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("redis signal parse error: %v", err)
			continue
		}

		sessionID, err := uuid.Parse(payload.SessionID)
		if err != nil {
			continue
		}
		toUserID, err := uuid.Parse(payload.ToUserID)
		if err != nil {
			continue
		}

		r.deliverLocal(sessionID, toUserID, payload.Message)
	}
}
