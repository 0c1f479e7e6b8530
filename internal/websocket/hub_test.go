package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"last20-backend/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestClient(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 8)}
	hub.register <- client

	// Wait for the hub goroutine to pick up this connection.
	deadline := time.After(time.Second)
	for {
		registered := false
		hub.mu.RLock()
		for _, c := range hub.clients[userID] {
			if c == client {
				registered = true
			}
		}
		hub.mu.RUnlock()
		if registered {
			return client
		}
		select {
		case <-deadline:
			t.Fatal("client was not registered in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHubSendReachesAllUserConnections(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	otherID := uuid.New()

	first := registerTestClient(t, hub, userID)
	second := registerTestClient(t, hub, userID)
	bystander := registerTestClient(t, hub, otherID)

	hub.Send(userID, entity.Notification{
		Id:      uuid.New(),
		UserId:  userID,
		Type:    entity.NotificationTypeExpertMatched,
		Title:   "Experts matched",
		Message: "3 experts matched your request",
	})

	for _, c := range []*Client{first, second} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string              `json:"type"`
				Data entity.Notification `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, entity.NotificationTypeExpertMatched, msg.Data.Type)
		case <-time.After(time.Second):
			t.Fatal("expected delivery to every connection of the user")
		}
	}

	assert.Empty(t, bystander.Send, "other users must not receive the push")
}

func TestHubEvictsSlowConsumerOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	healthy := registerTestClient(t, hub, userID)
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}
	hub.register <- slow

	deadline := time.After(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients[userID])
		hub.mu.RUnlock()
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("second connection was not registered in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	notification := entity.Notification{
		Id:      uuid.New(),
		UserId:  userID,
		Type:    entity.NotificationTypeSessionPaid,
		Title:   "Payment confirmed",
		Message: "Your help session is scheduled",
	}

	// Nobody reads slow.Send, so the hub must drop that connection and
	// still deliver to the healthy one without closing anything twice.
	hub.Send(userID, notification)

	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("expected delivery to the healthy connection")
	}

	select {
	case _, open := <-slow.Send:
		assert.False(t, open, "evicted client channel must be closed")
	case <-time.After(time.Second):
		t.Fatal("expected the slow client channel to be closed")
	}

	hub.mu.RLock()
	remaining := append([]*Client(nil), hub.clients[userID]...)
	hub.mu.RUnlock()
	require.Len(t, remaining, 1)
	assert.Same(t, healthy, remaining[0])

	// The read pump reports the closed connection afterwards; this must
	// be a no-op for the already evicted client.
	hub.unregister <- slow
	hub.Send(userID, notification)
	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after evicting a slow consumer")
	}
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	a := registerTestClient(t, hub, uuid.New())
	b := registerTestClient(t, hub, uuid.New())

	hub.Broadcast(entity.Notification{
		Id:      uuid.New(),
		Title:   "Maintenance window",
		Message: "Last20 will be briefly unavailable tonight",
	})

	for _, c := range []*Client{a, b} {
		select {
		case <-c.Send:
		case <-time.After(time.Second):
			t.Fatal("expected broadcast delivery")
		}
	}
}
