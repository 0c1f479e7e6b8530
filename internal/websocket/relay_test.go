package websocket

import (
	"encoding/json"
	"testing"

	"last20-backend/pkg/signaling"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func joinTestClient(r *SessionRelay, sessionID, userID uuid.UUID) *Client {
	client := &Client{UserID: userID, Send: make(chan []byte, 8)}
	if r.rooms[sessionID] == nil {
		r.rooms[sessionID] = make(map[uuid.UUID]*Client)
	}
	r.rooms[sessionID][userID] = client
	return client
}

func TestRelayRoutesToAddressee(t *testing.T) {
	relay := NewSessionRelay(nil, nopLogger{})

	sessionID := uuid.New()
	caller := uuid.New()
	callee := uuid.New()

	joinTestClient(relay, sessionID, caller)
	calleeClient := joinTestClient(relay, sessionID, callee)

	env := signaling.Envelope{
		// Spoofed addressing: the relay must stamp these server-side.
		SessionID:  uuid.New(),
		FromUserID: uuid.New(),
		ToUserID:   callee,
		Type:       signaling.MessageOffer,
		Offer:      &signaling.SessionDescription{Type: "offer", SDP: "v=0"},
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	relay.route(sessionID, caller, data)

	select {
	case raw := <-calleeClient.Send:
		var got signaling.Envelope
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, sessionID, got.SessionID)
		assert.Equal(t, caller, got.FromUserID)
		assert.Equal(t, callee, got.ToUserID)
		assert.Equal(t, signaling.MessageOffer, got.Type)
		require.NotNil(t, got.Offer)
		assert.Equal(t, "v=0", got.Offer.SDP)
	default:
		t.Fatal("expected envelope delivered to callee")
	}
}

func TestRelayDropsMalformedAndUnknown(t *testing.T) {
	relay := NewSessionRelay(nil, nopLogger{})

	sessionID := uuid.New()
	caller := uuid.New()
	callee := uuid.New()
	calleeClient := joinTestClient(relay, sessionID, callee)

	relay.route(sessionID, caller, []byte("{not json"))

	env := signaling.Envelope{ToUserID: callee, Type: signaling.MessageType("hangup")}
	data, _ := json.Marshal(env)
	relay.route(sessionID, caller, data)

	assert.Empty(t, calleeClient.Send)
}

func TestRelayIgnoresRecipientNotInRoom(t *testing.T) {
	relay := NewSessionRelay(nil, nopLogger{})

	sessionID := uuid.New()
	caller := uuid.New()

	callerClient := joinTestClient(relay, sessionID, caller)

	env := signaling.Envelope{
		ToUserID:  uuid.New(),
		Type:      signaling.MessageCandidate,
		Candidate: &signaling.ICECandidate{Candidate: "candidate:1"},
	}
	data, _ := json.Marshal(env)
	relay.route(sessionID, caller, data)

	// Nothing echoes back to the sender.
	assert.Empty(t, callerClient.Send)
}

func TestRelayEvictsSlowConsumer(t *testing.T) {
	relay := NewSessionRelay(nil, nopLogger{})

	sessionID := uuid.New()
	caller := uuid.New()
	callee := uuid.New()

	calleeClient := &Client{UserID: callee, Send: make(chan []byte)} // unbuffered, never read
	relay.rooms[sessionID] = map[uuid.UUID]*Client{callee: calleeClient}

	env := signaling.Envelope{ToUserID: callee, Type: signaling.MessageAnswer,
		Answer: &signaling.SessionDescription{Type: "answer", SDP: "v=0"}}
	data, _ := json.Marshal(env)
	relay.route(sessionID, caller, data)

	_, stillThere := relay.rooms[sessionID][callee]
	assert.False(t, stillThere, "slow consumer should be evicted from the room")
}

func TestRelayLeaveRemovesOnlyCurrentConnection(t *testing.T) {
	relay := NewSessionRelay(nil, nopLogger{})

	sessionID := uuid.New()
	userID := uuid.New()

	stale := &Client{UserID: userID, Send: make(chan []byte, 1)}
	current := joinTestClient(relay, sessionID, userID)

	// A leave from a connection that was already replaced is a no-op.
	relay.leave(sessionID, userID, stale)
	assert.Equal(t, current, relay.rooms[sessionID][userID])

	relay.leave(sessionID, userID, current)
	assert.Empty(t, relay.rooms)
}
