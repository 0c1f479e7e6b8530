package signaling

import (
	"context"

	"github.com/google/uuid"
)

// MessageType discriminates the three envelope payloads relayed between the
// two participants of a session.
type MessageType string

const (
	MessageOffer     MessageType = "offer"
	MessageAnswer    MessageType = "answer"
	MessageCandidate MessageType = "ice-candidate"
)

// Envelope is one signaling message on the session's relay channel. The
// relay interleaves messages from both senders arbitrarily but delivers
// each sender's messages in order; SessionID plus the participant ids give
// recipients enough addressing to drop messages that aren't theirs.
type Envelope struct {
	SessionID  uuid.UUID           `json:"session_id"`
	FromUserID uuid.UUID           `json:"from_user_id"`
	ToUserID   uuid.UUID           `json:"to_user_id"`
	Type       MessageType         `json:"type"`
	Offer      *SessionDescription `json:"offer,omitempty"`
	Answer     *SessionDescription `json:"answer,omitempty"`
	Candidate  *ICECandidate       `json:"candidate,omitempty"`
}

// SignalChannel is the outbound half of the session's message relay. The
// transport behind it (websocket hub in production, an in-process pair in
// tests) must be reliable and ordered per sender; nothing more is assumed.
type SignalChannel interface {
	Publish(ctx context.Context, env Envelope) error
}
