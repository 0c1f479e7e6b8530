package signaling

import "context"

// SessionDescription is an SDP payload exchanged during negotiation.
type SessionDescription struct {
	Type string `json:"type"` // "offer" or "answer"
	SDP  string `json:"sdp"`
}

// ICECandidate mirrors the browser's RTCIceCandidateInit shape so payloads
// pass through the relay without translation.
type ICECandidate struct {
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

// ConnectionState is the peer connection's transport-level state as
// reported by the underlying WebRTC implementation.
type ConnectionState string

const (
	ConnectionNew          ConnectionState = "new"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionFailed       ConnectionState = "failed"
	ConnectionClosed       ConnectionState = "closed"
)

// PeerConnection is the capability interface over the native WebRTC peer
// connection. The coordinator's state machine only ever talks to this
// interface, so it can be driven by a fake in tests and by the pion-backed
// adapter in a real client.
//
// The callback registrations replace the browser's on('event') style with
// single handlers set once by the coordinator before negotiation starts.
type PeerConnection interface {
	CreateOffer(ctx context.Context) (SessionDescription, error)
	CreateAnswer(ctx context.Context) (SessionDescription, error)
	SetLocalDescription(ctx context.Context, desc SessionDescription) error
	SetRemoteDescription(ctx context.Context, desc SessionDescription) error
	AddICECandidate(candidate ICECandidate) error
	AddTrack(track MediaTrack) error

	// Stats polls the connection for the quality snapshot surfaced while
	// connected. Implementations return whatever subset they can measure.
	Stats(ctx context.Context) (ConnectionStats, error)

	OnICECandidate(handler func(ICECandidate))
	OnICEGatheringComplete(handler func())
	OnConnectionStateChange(handler func(ConnectionState))
	OnRemoteTrack(handler func(MediaStream))

	Close() error
}

// PeerConnectionFactory creates a fresh peer connection for each call
// attempt. Restart relies on this to reinitialize from idle.
type PeerConnectionFactory func() (PeerConnection, error)

// MediaStream is a bundle of media tracks (typically one screen track).
type MediaStream interface {
	ID() string
	Tracks() []MediaTrack
}

// MediaTrack is a single audio/video track. OnEnded fires when the track
// stops outside our control, e.g. the user hits the browser's native "stop
// sharing" chrome; the coordinator treats that as an explicit stop.
type MediaTrack interface {
	ID() string
	Kind() string // "video" or "audio"
	Stop()
	OnEnded(handler func())
}

// ScreenCapturer acquires the local screen-capture stream. Acquisition
// suspends pending the user's permission grant; a cancelled or denied grant
// surfaces as a *CaptureError, never as a hang.
type ScreenCapturer interface {
	Capture(ctx context.Context) (MediaStream, error)
}
