// Package pionrtc implements the signaling capability interfaces on top of
// pion/webrtc, for Go clients and integration tests that need a real ICE
// stack instead of a browser.
package pionrtc

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"last20-backend/pkg/signaling"
)

// NewFactory returns a PeerConnectionFactory producing pion-backed peer
// connections configured with the given ICE server URLs (STUN/TURN).
func NewFactory(iceServerURLs []string) signaling.PeerConnectionFactory {
	return func() (signaling.PeerConnection, error) {
		config := webrtc.Configuration{}
		if len(iceServerURLs) > 0 {
			config.ICEServers = []webrtc.ICEServer{{URLs: iceServerURLs}}
		}
		pc, err := webrtc.NewPeerConnection(config)
		if err != nil {
			return nil, err
		}
		return &peerConnection{pc: pc}, nil
	}
}

type peerConnection struct {
	pc *webrtc.PeerConnection
}

func (p *peerConnection) CreateOffer(ctx context.Context) (signaling.SessionDescription, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return signaling.SessionDescription{}, err
	}
	return signaling.SessionDescription{Type: offer.Type.String(), SDP: offer.SDP}, nil
}

func (p *peerConnection) CreateAnswer(ctx context.Context) (signaling.SessionDescription, error) {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return signaling.SessionDescription{}, err
	}
	return signaling.SessionDescription{Type: answer.Type.String(), SDP: answer.SDP}, nil
}

func (p *peerConnection) SetLocalDescription(ctx context.Context, desc signaling.SessionDescription) error {
	return p.pc.SetLocalDescription(toPionDescription(desc))
}

func (p *peerConnection) SetRemoteDescription(ctx context.Context, desc signaling.SessionDescription) error {
	return p.pc.SetRemoteDescription(toPionDescription(desc))
}

func (p *peerConnection) AddICECandidate(candidate signaling.ICECandidate) error {
	return p.pc.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     candidate.Candidate,
		SDPMid:        candidate.SDPMid,
		SDPMLineIndex: candidate.SDPMLineIndex,
	})
}

func (p *peerConnection) AddTrack(track signaling.MediaTrack) error {
	local, ok := track.(*LocalTrack)
	if !ok {
		return webrtc.ErrUnsupportedCodec
	}
	_, err := p.pc.AddTrack(local.track)
	return err
}

// Stats maps the pion stats report onto the coordinator's snapshot:
// round-trip time from the remote-inbound report, packet loss and frame
// rate from the inbound report.
func (p *peerConnection) Stats(ctx context.Context) (signaling.ConnectionStats, error) {
	report := p.pc.GetStats()

	var stats signaling.ConnectionStats
	for _, entry := range report {
		switch s := entry.(type) {
		case webrtc.RemoteInboundRTPStreamStats:
			stats.RoundTripTime = time.Duration(s.RoundTripTime * float64(time.Second))
		case webrtc.InboundRTPStreamStats:
			stats.PacketsLost += int64(s.PacketsLost)
			if s.FramesPerSecond > 0 {
				stats.FramesPerSecond = s.FramesPerSecond
			}
		}
	}
	return stats, nil
}

func (p *peerConnection) OnICECandidate(handler func(signaling.ICECandidate)) {
	p.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			// pion signals end-of-candidates with nil.
			return
		}
		init := candidate.ToJSON()
		handler(signaling.ICECandidate{
			Candidate:     init.Candidate,
			SDPMid:        init.SDPMid,
			SDPMLineIndex: init.SDPMLineIndex,
		})
	})
}

func (p *peerConnection) OnICEGatheringComplete(handler func()) {
	p.pc.OnICEGatheringStateChange(func(state webrtc.ICEGatheringState) {
		if state == webrtc.ICEGatheringStateComplete {
			handler()
		}
	})
}

func (p *peerConnection) OnConnectionStateChange(handler func(signaling.ConnectionState)) {
	p.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		handler(signaling.ConnectionState(state.String()))
	})
}

func (p *peerConnection) OnRemoteTrack(handler func(signaling.MediaStream)) {
	p.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		handler(&remoteStream{id: track.StreamID(), tracks: []signaling.MediaTrack{&remoteTrack{track: track}}})
	})
}

func (p *peerConnection) Close() error {
	return p.pc.Close()
}

func toPionDescription(desc signaling.SessionDescription) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(desc.Type), SDP: desc.SDP}
}

// LocalTrack adapts a pion local track (typically a TrackLocalStaticSample
// fed by a screen grabber) to the MediaTrack interface.
type LocalTrack struct {
	track webrtc.TrackLocal

	mu      sync.Mutex
	onEnded func()
	stopped bool
}

func NewLocalTrack(track webrtc.TrackLocal) *LocalTrack {
	return &LocalTrack{track: track}
}

func (t *LocalTrack) ID() string   { return t.track.ID() }
func (t *LocalTrack) Kind() string { return t.track.Kind().String() }

// Stop marks the track ended. The producing side is expected to stop
// writing samples once it observes the OnEnded callback.
func (t *LocalTrack) Stop() {
	t.mu.Lock()
	ended := t.onEnded
	already := t.stopped
	t.stopped = true
	t.mu.Unlock()
	if !already && ended != nil {
		ended()
	}
}

func (t *LocalTrack) OnEnded(handler func()) {
	t.mu.Lock()
	t.onEnded = handler
	t.mu.Unlock()
}

type remoteTrack struct {
	track *webrtc.TrackRemote
}

func (t *remoteTrack) ID() string            { return t.track.ID() }
func (t *remoteTrack) Kind() string          { return t.track.Kind().String() }
func (t *remoteTrack) Stop()                 {}
func (t *remoteTrack) OnEnded(handler func()) {}

type remoteStream struct {
	id     string
	tracks []signaling.MediaTrack
}

func (s *remoteStream) ID() string                     { return s.id }
func (s *remoteStream) Tracks() []signaling.MediaTrack { return s.tracks }

// StaticCapturer satisfies ScreenCapturer with a pre-built set of local
// tracks. Go clients construct their screen tracks up front (pion has no
// OS capture layer); an empty capturer reports the no-source failure the
// UI already knows how to present.
type StaticCapturer struct {
	tracks []signaling.MediaTrack
}

func NewStaticCapturer(tracks ...webrtc.TrackLocal) *StaticCapturer {
	wrapped := make([]signaling.MediaTrack, 0, len(tracks))
	for _, t := range tracks {
		wrapped = append(wrapped, NewLocalTrack(t))
	}
	return &StaticCapturer{tracks: wrapped}
}

func (c *StaticCapturer) Capture(ctx context.Context) (signaling.MediaStream, error) {
	if len(c.tracks) == 0 {
		return nil, &signaling.CaptureError{Reason: signaling.CaptureNoSource}
	}
	select {
	case <-ctx.Done():
		return nil, &signaling.CaptureError{Reason: signaling.CaptureCancelled, Err: ctx.Err()}
	default:
	}
	return &remoteStream{id: "local-screen", tracks: c.tracks}, nil
}
