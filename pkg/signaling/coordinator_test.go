package signaling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sessionID = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	aliceID   = uuid.MustParse("22222222-0000-0000-0000-000000000002")
	bobID     = uuid.MustParse("33333333-0000-0000-0000-000000000003")
)

// fakePeerConnection implements PeerConnection in memory and records every
// interaction so tests can assert on ordering.
type fakePeerConnection struct {
	mu sync.Mutex

	localDesc  *SessionDescription
	remoteDesc *SessionDescription
	applied    []ICECandidate
	tracks     []MediaTrack
	closed     bool

	createOfferErr  error
	rejectCandidate func(ICECandidate) error
	statsResult     ConnectionStats

	onICECandidate func(ICECandidate)
	onGatherDone   func()
	onConnState    func(ConnectionState)
	onRemoteTrack  func(MediaStream)
}

func (f *fakePeerConnection) CreateOffer(ctx context.Context) (SessionDescription, error) {
	if f.createOfferErr != nil {
		return SessionDescription{}, f.createOfferErr
	}
	return SessionDescription{Type: "offer", SDP: "v=0 fake-offer"}, nil
}

func (f *fakePeerConnection) CreateAnswer(ctx context.Context) (SessionDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteDesc == nil {
		return SessionDescription{}, errors.New("no remote description")
	}
	return SessionDescription{Type: "answer", SDP: "v=0 fake-answer"}, nil
}

func (f *fakePeerConnection) SetLocalDescription(ctx context.Context, desc SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.localDesc = &desc
	return nil
}

func (f *fakePeerConnection) SetRemoteDescription(ctx context.Context, desc SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteDesc = &desc
	return nil
}

func (f *fakePeerConnection) AddICECandidate(candidate ICECandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteDesc == nil {
		return errors.New("candidate before remote description")
	}
	if f.rejectCandidate != nil {
		if err := f.rejectCandidate(candidate); err != nil {
			return err
		}
	}
	f.applied = append(f.applied, candidate)
	return nil
}

func (f *fakePeerConnection) AddTrack(track MediaTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, track)
	return nil
}

func (f *fakePeerConnection) Stats(ctx context.Context) (ConnectionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsResult, nil
}

func (f *fakePeerConnection) OnICECandidate(h func(ICECandidate))        { f.onICECandidate = h }
func (f *fakePeerConnection) OnICEGatheringComplete(h func())            { f.onGatherDone = h }
func (f *fakePeerConnection) OnConnectionStateChange(h func(ConnectionState)) { f.onConnState = h }
func (f *fakePeerConnection) OnRemoteTrack(h func(MediaStream))          { f.onRemoteTrack = h }

func (f *fakePeerConnection) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePeerConnection) appliedCandidates() []ICECandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ICECandidate, len(f.applied))
	copy(out, f.applied)
	return out
}

type fakeTrack struct {
	mu      sync.Mutex
	id      string
	stopped bool
	onEnded func()
}

func (t *fakeTrack) ID() string   { return t.id }
func (t *fakeTrack) Kind() string { return "video" }
func (t *fakeTrack) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}
func (t *fakeTrack) OnEnded(h func()) {
	t.mu.Lock()
	t.onEnded = h
	t.mu.Unlock()
}
func (t *fakeTrack) fireEnded() {
	t.mu.Lock()
	h := t.onEnded
	t.mu.Unlock()
	if h != nil {
		h()
	}
}
func (t *fakeTrack) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeStream struct {
	tracks []MediaTrack
}

func (s *fakeStream) ID() string           { return "screen" }
func (s *fakeStream) Tracks() []MediaTrack { return s.tracks }

type fakeCapturer struct {
	stream MediaStream
	err    error
}

func (c *fakeCapturer) Capture(ctx context.Context) (MediaStream, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

type fakeChannel struct {
	mu        sync.Mutex
	envelopes []Envelope
	err       error
}

func (c *fakeChannel) Publish(ctx context.Context, env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.envelopes = append(c.envelopes, env)
	return nil
}

func (c *fakeChannel) sent() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.envelopes))
	copy(out, c.envelopes)
	return out
}

func (c *fakeChannel) byType(mt MessageType) []Envelope {
	var out []Envelope
	for _, env := range c.sent() {
		if env.Type == mt {
			out = append(out, env)
		}
	}
	return out
}

type harness struct {
	pc       *fakePeerConnection
	track    *fakeTrack
	capturer *fakeCapturer
	channel  *fakeChannel
	coord    *Coordinator
}

func newHarness(t *testing.T, observer Observer, cfg Config) *harness {
	t.Helper()
	pc := &fakePeerConnection{}
	track := &fakeTrack{id: "screen-track"}
	h := &harness{
		pc:       pc,
		track:    track,
		capturer: &fakeCapturer{stream: &fakeStream{tracks: []MediaTrack{track}}},
		channel:  &fakeChannel{},
	}
	h.coord = NewCoordinator(
		sessionID, aliceID, bobID,
		func() (PeerConnection, error) { return pc, nil },
		h.capturer, h.channel, observer, cfg, nil,
	)
	return h
}

func waitForState(t *testing.T, c *Coordinator, want SessionState) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", c.State(), want)
}

func candidate(n int) ICECandidate {
	return ICECandidate{Candidate: fmt.Sprintf("candidate:%d 1 udp 2122260223 10.0.0.%d 50000 typ host", n, n)}
}

func TestStartSharingEmitsOffer(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})

	require.NoError(t, h.coord.StartSharing(context.Background()))

	assert.Equal(t, StateConnecting, h.coord.State())
	offers := h.channel.byType(MessageOffer)
	require.Len(t, offers, 1)
	assert.Equal(t, aliceID, offers[0].FromUserID)
	assert.Equal(t, bobID, offers[0].ToUserID)
	assert.Equal(t, "offer", offers[0].Offer.Type)
	require.NotNil(t, h.pc.localDesc)
	assert.Len(t, h.pc.tracks, 1)
}

func TestIncomingOfferProducesExactlyOneAnswer(t *testing.T) {
	// The concrete scenario: an offer arrives with no prior peer
	// connection. The coordinator must create one, move to connecting and
	// answer the sender exactly once.
	h := newHarness(t, Observer{}, Config{})

	offer := SessionDescription{Type: "offer", SDP: "v=0 remote-offer"}
	require.NoError(t, h.coord.HandleOffer(context.Background(), bobID, offer))

	assert.Equal(t, StateConnecting, h.coord.State())
	answers := h.channel.byType(MessageAnswer)
	require.Len(t, answers, 1)
	assert.Equal(t, bobID, answers[0].ToUserID)
	require.NotNil(t, h.pc.remoteDesc)
	assert.Equal(t, "v=0 remote-offer", h.pc.remoteDesc.SDP)
}

func TestCandidatesQueuedUntilRemoteDescriptionThenFlushedInOrder(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	ctx := context.Background()

	// The relay can deliver candidates before the offer is processed into
	// a remote description; they must be held and applied later in
	// arrival order, none lost.
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.coord.HandleCandidate(ctx, bobID, candidate(i)))
	}
	assert.Empty(t, h.pc.appliedCandidates())

	require.NoError(t, h.coord.HandleOffer(ctx, bobID, SessionDescription{Type: "offer", SDP: "v=0"}))

	applied := h.pc.appliedCandidates()
	require.Len(t, applied, 5)
	for i, c := range applied {
		assert.Equal(t, candidate(i+1).Candidate, c.Candidate)
	}

	// After the remote description is set, candidates apply immediately.
	require.NoError(t, h.coord.HandleCandidate(ctx, bobID, candidate(6)))
	assert.Len(t, h.pc.appliedCandidates(), 6)
}

func TestRejectedCandidateIsDroppedSilently(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	ctx := context.Background()

	h.pc.rejectCandidate = func(c ICECandidate) error {
		if c.Candidate == candidate(2).Candidate {
			return errors.New("malformed candidate")
		}
		return nil
	}

	for i := 1; i <= 3; i++ {
		require.NoError(t, h.coord.HandleCandidate(ctx, bobID, candidate(i)))
	}
	require.NoError(t, h.coord.HandleOffer(ctx, bobID, SessionDescription{Type: "offer", SDP: "v=0"}))

	applied := h.pc.appliedCandidates()
	require.Len(t, applied, 2)
	assert.Equal(t, candidate(1).Candidate, applied[0].Candidate)
	assert.Equal(t, candidate(3).Candidate, applied[1].Candidate)
}

func TestStopSharingIsIdempotent(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	require.NoError(t, h.coord.StartSharing(context.Background()))

	h.coord.StopSharing()
	assert.Equal(t, StateClosed, h.coord.State())
	assert.True(t, h.track.isStopped())
	assert.True(t, h.pc.closed)

	// Second close is a no-op and must not panic or change state.
	h.coord.StopSharing()
	assert.Equal(t, StateClosed, h.coord.State())
}

func TestLocalTrackEndingClosesSession(t *testing.T) {
	// The user hitting the browser's native "stop sharing" ends the track:
	// an explicit stop, never a failure.
	h := newHarness(t, Observer{}, Config{})
	require.NoError(t, h.coord.StartSharing(context.Background()))

	h.track.fireEnded()

	waitForState(t, h.coord, StateClosed)
	assert.True(t, h.pc.closed)
}

func TestTransportFailureReportedViaObserver(t *testing.T) {
	errCh := make(chan error, 1)
	h := newHarness(t, Observer{OnError: func(err error) { errCh <- err }}, Config{})
	require.NoError(t, h.coord.StartSharing(context.Background()))

	h.pc.onConnState(ConnectionFailed)

	waitForState(t, h.coord, StateFailed)
	select {
	case err := <-errCh:
		var failure *TransportFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, "failed", failure.ConnectionState)
	case <-time.After(time.Second):
		t.Fatal("observer never received the transport failure")
	}
}

func TestConnectedStateStartsAndStopsStatsSampling(t *testing.T) {
	statsCh := make(chan ConnectionStats, 16)
	h := newHarness(t, Observer{OnStats: func(s ConnectionStats) { statsCh <- s }},
		Config{StatsInterval: 10 * time.Millisecond})
	h.pc.statsResult = ConnectionStats{RoundTripTime: 42 * time.Millisecond, PacketsLost: 3, FramesPerSecond: 30}

	require.NoError(t, h.coord.StartSharing(context.Background()))
	h.pc.onConnState(ConnectionConnected)
	waitForState(t, h.coord, StateConnected)

	require.NoError(t, h.coord.WaitConnected(context.Background()))

	select {
	case s := <-statsCh:
		assert.Equal(t, 42*time.Millisecond, s.RoundTripTime)
		assert.EqualValues(t, 3, s.PacketsLost)
	case <-time.After(time.Second):
		t.Fatal("no stats sample delivered while connected")
	}

	snapshot, ok := h.coord.LastStats()
	require.True(t, ok)
	assert.EqualValues(t, 30, snapshot.FramesPerSecond)

	h.coord.StopSharing()
	// Sampling stops once the state leaves connected: drain, then confirm
	// silence.
	for len(statsCh) > 0 {
		<-statsCh
	}
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, statsCh)
}

func TestRestartReturnsToIdleAndAllowsNewAttempt(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	require.NoError(t, h.coord.StartSharing(context.Background()))
	h.pc.onConnState(ConnectionFailed)
	waitForState(t, h.coord, StateFailed)

	require.NoError(t, h.coord.Restart(context.Background()))
	waitForState(t, h.coord, StateIdle)

	require.NoError(t, h.coord.StartSharing(context.Background()))
	assert.Equal(t, StateConnecting, h.coord.State())
	assert.Len(t, h.channel.byType(MessageOffer), 2)
}

func TestWaitConnectedTimesOut(t *testing.T) {
	h := newHarness(t, Observer{}, Config{ConnectTimeout: 20 * time.Millisecond})
	require.NoError(t, h.coord.StartSharing(context.Background()))

	err := h.coord.WaitConnected(context.Background())
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestCaptureFailurePropagatesWithReason(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	h.capturer.err = &CaptureError{Reason: CapturePermissionDenied}

	err := h.coord.StartSharing(context.Background())

	var capErr *CaptureError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, CapturePermissionDenied, capErr.Reason)
	// A capture failure leaves the coordinator retryable, not dead.
	assert.Equal(t, StateIdle, h.coord.State())
}

func TestLocalCandidatesRelayedToRemote(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	require.NoError(t, h.coord.StartSharing(context.Background()))

	h.pc.onICECandidate(candidate(9))

	relayed := h.channel.byType(MessageCandidate)
	require.Len(t, relayed, 1)
	assert.Equal(t, bobID, relayed[0].ToUserID)
	assert.Equal(t, candidate(9).Candidate, relayed[0].Candidate.Candidate)
}

func TestOperationsAfterCloseReturnSessionClosed(t *testing.T) {
	h := newHarness(t, Observer{}, Config{})
	h.coord.StopSharing()

	assert.ErrorIs(t, h.coord.StartSharing(context.Background()), ErrSessionClosed)
	assert.ErrorIs(t, h.coord.HandleOffer(context.Background(), bobID, SessionDescription{Type: "offer"}), ErrSessionClosed)
	// Late candidates for a dead session are ignored, not errors.
	assert.NoError(t, h.coord.HandleCandidate(context.Background(), bobID, candidate(1)))
}
