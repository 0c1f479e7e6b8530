// Package signaling drives the WebRTC offer/answer/ICE negotiation for one
// live help session. Each participant runs its own Coordinator; the two
// instances never share state and talk only through the session's relay
// channel.
package signaling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionState is the coordinator's lifecycle state.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateConnecting SessionState = "connecting"
	StateConnected  SessionState = "connected"
	StateFailed     SessionState = "failed"
	StateClosed     SessionState = "closed"
)

// Observer receives the coordinator's asynchronous outputs. All callbacks
// are optional. OnStateChange is delivered on its own goroutine; the other
// callbacks fire after the coordinator has released its internal lock.
// Either way a callback may safely call back into the coordinator.
type Observer struct {
	OnStateChange  func(state SessionState)
	OnRemoteStream func(stream MediaStream)
	OnStats        func(stats ConnectionStats)

	// OnError delivers failures that occur after the triggering call has
	// already returned (transport failures, rejected renegotiations).
	OnError func(err error)
}

// Config bounds the coordinator's waits and paces stats sampling. Zero
// values fall back to the defaults below.
type Config struct {
	StatsInterval  time.Duration
	GatherTimeout  time.Duration
	ConnectTimeout time.Duration
}

const (
	defaultStatsInterval  = 2 * time.Second
	defaultGatherTimeout  = 15 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

// WithDefaults resolves zero fields to the package defaults.
func (c Config) WithDefaults() Config {
	if c.StatsInterval <= 0 {
		c.StatsInterval = defaultStatsInterval
	}
	if c.GatherTimeout <= 0 {
		c.GatherTimeout = defaultGatherTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}

// Coordinator is the per-call-attempt signaling state machine. It owns the
// peer connection handle, the local/remote streams and the queue of ICE
// candidates that arrived before the remote description was set.
//
// All entry points serialize on one mutex, mirroring the single dispatch
// queue of the event-driven model the session logic assumes: no two
// mutations of session state ever interleave.
type Coordinator struct {
	sessionID    uuid.UUID
	localUserID  uuid.UUID
	remoteUserID uuid.UUID

	newPeerConnection PeerConnectionFactory
	capturer          ScreenCapturer
	channel           SignalChannel
	observer          Observer
	cfg               Config
	logger            *zap.Logger

	mu            sync.Mutex
	state         SessionState
	pc            PeerConnection
	localStream   MediaStream
	remoteStream  MediaStream
	pending       []ICECandidate
	remoteDescSet bool

	connected chan struct{}
	gathered  chan struct{}
	stopStats chan struct{}

	lastStats ConnectionStats
	haveStats bool
}

// NewCoordinator builds a coordinator in the idle state for one session
// between the local participant and the remote one.
func NewCoordinator(
	sessionID, localUserID, remoteUserID uuid.UUID,
	factory PeerConnectionFactory,
	capturer ScreenCapturer,
	channel SignalChannel,
	observer Observer,
	cfg Config,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		sessionID:         sessionID,
		localUserID:       localUserID,
		remoteUserID:      remoteUserID,
		newPeerConnection: factory,
		capturer:          capturer,
		channel:           channel,
		observer:          observer,
		cfg:               cfg.WithDefaults(),
		logger:            logger,
		state:             StateIdle,
		connected:         make(chan struct{}),
		gathered:          make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RemoteStream returns the remote media stream, or nil until the first
// remote track arrives.
func (c *Coordinator) RemoteStream() MediaStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remoteStream
}

// LastStats returns the most recent quality sample, if any was taken.
func (c *Coordinator) LastStats() (ConnectionStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStats, c.haveStats
}

// StartSharing runs the caller path: acquire the screen stream, create the
// peer connection, attach the track(s) and send the offer to the remote
// participant. Capture and negotiation failures are returned directly so
// the UI can react; a failed attempt leaves the coordinator back in idle
// for a retry.
func (c *Coordinator) StartSharing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed, StateFailed:
		return ErrSessionClosed
	case StateConnecting, StateConnected:
		return ErrAlreadySharing
	}

	stream, err := c.capturer.Capture(ctx)
	if err != nil {
		c.logger.Warn("screen capture failed", zap.String("session", c.sessionID.String()), zap.Error(err))
		return err
	}
	c.localStream = stream

	if err := c.ensurePeerConnectionLocked(); err != nil {
		c.releaseLocalStreamLocked()
		return err
	}

	for _, track := range stream.Tracks() {
		if err := c.pc.AddTrack(track); err != nil {
			c.abortAttemptLocked()
			return &NegotiationError{Op: "add-track", Err: err}
		}
		// The user stopping the share via the native UI ends the track;
		// that is an explicit stop, not a failure.
		track.OnEnded(func() { c.StopSharing() })
	}

	offer, err := c.pc.CreateOffer(ctx)
	if err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "create-offer", Err: err}
	}
	if err := c.pc.SetLocalDescription(ctx, offer); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "set-local-description", Err: err}
	}

	if err := c.channel.Publish(ctx, Envelope{
		SessionID:  c.sessionID,
		FromUserID: c.localUserID,
		ToUserID:   c.remoteUserID,
		Type:       MessageOffer,
		Offer:      &offer,
	}); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "publish-offer", Err: err}
	}

	c.setStateLocked(StateConnecting)
	return nil
}

// HandleOffer runs the callee path for an offer addressed to this session:
// create the peer connection if none exists, apply the offer as the remote
// description, flush any queued candidates and answer the sender. Exactly
// one answer is emitted per offer handled.
func (c *Coordinator) HandleOffer(ctx context.Context, fromUserID uuid.UUID, offer SessionDescription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed || c.state == StateFailed {
		return ErrSessionClosed
	}

	if err := c.ensurePeerConnectionLocked(); err != nil {
		return err
	}

	if err := c.pc.SetRemoteDescription(ctx, offer); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "set-remote-description", Err: err}
	}
	c.remoteDescSet = true
	c.flushCandidatesLocked()

	answer, err := c.pc.CreateAnswer(ctx)
	if err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "create-answer", Err: err}
	}
	if err := c.pc.SetLocalDescription(ctx, answer); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "set-local-description", Err: err}
	}

	if err := c.channel.Publish(ctx, Envelope{
		SessionID:  c.sessionID,
		FromUserID: c.localUserID,
		ToUserID:   fromUserID,
		Type:       MessageAnswer,
		Answer:     &answer,
	}); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "publish-answer", Err: err}
	}

	c.setStateLocked(StateConnecting)
	return nil
}

// HandleAnswer applies the remote answer on the caller side and flushes the
// candidate queue.
func (c *Coordinator) HandleAnswer(ctx context.Context, fromUserID uuid.UUID, answer SessionDescription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed || c.state == StateFailed {
		return ErrSessionClosed
	}
	if c.pc == nil {
		return &NegotiationError{Op: "apply-answer", Err: ErrSessionClosed}
	}

	if err := c.pc.SetRemoteDescription(ctx, answer); err != nil {
		c.abortAttemptLocked()
		return &NegotiationError{Op: "set-remote-description", Err: err}
	}
	c.remoteDescSet = true
	c.flushCandidatesLocked()
	return nil
}

// HandleCandidate applies a remote ICE candidate, or queues it when the
// remote description is not set yet. Candidates the implementation rejects
// are dropped per-candidate, since a connection can still succeed on the
// remaining candidate paths, so this never returns an error for them.
func (c *Coordinator) HandleCandidate(ctx context.Context, fromUserID uuid.UUID, candidate ICECandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed || c.state == StateFailed {
		return nil
	}

	if !c.remoteDescSet {
		c.pending = append(c.pending, candidate)
		return nil
	}
	if err := c.pc.AddICECandidate(candidate); err != nil {
		c.logger.Debug("dropping rejected ICE candidate",
			zap.String("session", c.sessionID.String()), zap.Error(err))
	}
	return nil
}

// StopSharing is the explicit hang-up. Safe from any state and idempotent:
// it releases the local tracks, closes the peer connection, clears the
// candidate queue and transitions to closed before returning.
func (c *Coordinator) StopSharing() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.teardownLocked()
	c.setStateLocked(StateClosed)
}

// Restart tears the session down and reinitializes it from idle, replacing
// the old "reload the page" recovery path. Intended after a transport
// failure; the caller then invokes StartSharing (or waits for a fresh
// offer) to begin a new attempt.
func (c *Coordinator) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.connected = make(chan struct{})
	c.gathered = make(chan struct{})
	c.lastStats = ConnectionStats{}
	c.haveStats = false
	c.setStateLocked(StateIdle)
	return nil
}

// WaitConnected blocks until the transport reports connected, bounded by
// Config.ConnectTimeout. Returns ErrWaitTimeout rather than hanging.
func (c *Coordinator) WaitConnected(ctx context.Context) error {
	c.mu.Lock()
	ch := c.connected
	timeout := c.cfg.ConnectTimeout
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}

// WaitICEGathered blocks until local ICE gathering completes, bounded by
// Config.GatherTimeout.
func (c *Coordinator) WaitICEGathered(ctx context.Context) error {
	c.mu.Lock()
	ch := c.gathered
	timeout := c.cfg.GatherTimeout
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}

// ensurePeerConnectionLocked creates the peer connection on first use and
// wires the native event handlers into the state machine.
func (c *Coordinator) ensurePeerConnectionLocked() error {
	if c.pc != nil {
		return nil
	}
	pc, err := c.newPeerConnection()
	if err != nil {
		return &NegotiationError{Op: "create-peer-connection", Err: err}
	}
	c.pc = pc

	gathered := c.gathered
	pc.OnICECandidate(c.onLocalCandidate)
	pc.OnICEGatheringComplete(func() {
		select {
		case <-gathered:
		default:
			close(gathered)
		}
	})
	pc.OnConnectionStateChange(c.onConnectionState)
	pc.OnRemoteTrack(c.onRemoteTrack)
	return nil
}

// onLocalCandidate transmits each locally discovered candidate to the
// remote participant immediately.
func (c *Coordinator) onLocalCandidate(candidate ICECandidate) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	env := Envelope{
		SessionID:  c.sessionID,
		FromUserID: c.localUserID,
		ToUserID:   c.remoteUserID,
		Type:       MessageCandidate,
		Candidate:  &candidate,
	}
	c.mu.Unlock()

	if err := c.channel.Publish(context.Background(), env); err != nil {
		c.logger.Warn("failed to relay local ICE candidate",
			zap.String("session", c.sessionID.String()), zap.Error(err))
	}
}

func (c *Coordinator) onConnectionState(state ConnectionState) {
	c.mu.Lock()

	switch state {
	case ConnectionConnected:
		if c.state != StateConnecting {
			c.mu.Unlock()
			return
		}
		c.setStateLocked(StateConnected)
		select {
		case <-c.connected:
		default:
			close(c.connected)
		}
		stop := make(chan struct{})
		c.stopStats = stop
		pc := c.pc
		interval := c.cfg.StatsInterval
		c.mu.Unlock()
		go c.sampleStats(pc, interval, stop)

	case ConnectionFailed:
		if c.state != StateConnecting && c.state != StateConnected {
			c.mu.Unlock()
			return
		}
		c.stopStatsLocked()
		c.setStateLocked(StateFailed)
		c.mu.Unlock()
		if c.observer.OnError != nil {
			c.observer.OnError(&TransportFailure{ConnectionState: string(state)})
		}

	default:
		c.mu.Unlock()
	}
}

func (c *Coordinator) onRemoteTrack(stream MediaStream) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	c.remoteStream = stream
	c.mu.Unlock()

	if c.observer.OnRemoteStream != nil {
		c.observer.OnRemoteStream(stream)
	}
}

// flushCandidatesLocked applies the queued candidates in arrival order.
// Individual rejections are logged and dropped, never escalated.
func (c *Coordinator) flushCandidatesLocked() {
	for _, candidate := range c.pending {
		if err := c.pc.AddICECandidate(candidate); err != nil {
			c.logger.Debug("dropping queued ICE candidate",
				zap.String("session", c.sessionID.String()), zap.Error(err))
		}
	}
	c.pending = nil
}

// sampleStats polls connection quality on a fixed interval while connected.
func (c *Coordinator) sampleStats(pc PeerConnection, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			stats, err := pc.Stats(ctx)
			cancel()
			if err != nil {
				c.logger.Debug("stats poll failed", zap.Error(err))
				continue
			}
			stats.SampledAt = time.Now()

			c.mu.Lock()
			if c.state != StateConnected {
				c.mu.Unlock()
				return
			}
			c.lastStats = stats
			c.haveStats = true
			c.mu.Unlock()

			if c.observer.OnStats != nil {
				c.observer.OnStats(stats)
			}
		}
	}
}

func (c *Coordinator) stopStatsLocked() {
	if c.stopStats != nil {
		close(c.stopStats)
		c.stopStats = nil
	}
}

// abortAttemptLocked unwinds a half-built attempt back to idle so the
// caller can retry from scratch.
func (c *Coordinator) abortAttemptLocked() {
	c.teardownLocked()
	c.setStateLocked(StateIdle)
}

// teardownLocked releases every local resource: tracks, peer connection,
// the candidate queue and the stats sampler.
func (c *Coordinator) teardownLocked() {
	c.stopStatsLocked()
	c.releaseLocalStreamLocked()
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			c.logger.Debug("closing peer connection", zap.Error(err))
		}
		c.pc = nil
	}
	c.remoteStream = nil
	c.pending = nil
	c.remoteDescSet = false
}

func (c *Coordinator) releaseLocalStreamLocked() {
	if c.localStream == nil {
		return
	}
	for _, track := range c.localStream.Tracks() {
		track.Stop()
	}
	c.localStream = nil
}

// setStateLocked records the transition. The observer is notified on a
// fresh goroutine so that a callback re-entering the coordinator (e.g.
// calling Restart on failure) cannot deadlock on the held mutex.
func (c *Coordinator) setStateLocked(state SessionState) {
	if c.state == state {
		return
	}
	c.logger.Info("signaling state change",
		zap.String("session", c.sessionID.String()),
		zap.String("from", string(c.state)),
		zap.String("to", string(state)))
	c.state = state
	if c.observer.OnStateChange != nil {
		go c.observer.OnStateChange(state)
	}
}
