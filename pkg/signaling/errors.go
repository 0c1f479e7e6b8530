package signaling

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by operations invoked after the session
	// reached a terminal state.
	ErrSessionClosed = errors.New("signaling session closed")

	// ErrAlreadySharing is returned by StartSharing when a call attempt is
	// already in flight on this coordinator.
	ErrAlreadySharing = errors.New("call attempt already in progress")

	// ErrWaitTimeout is returned by the bounded wait helpers.
	ErrWaitTimeout = errors.New("timed out waiting for signaling milestone")
)

// CaptureReason identifies why acquiring the screen-capture stream failed.
// Each reason maps to a distinct user-facing message.
type CaptureReason string

const (
	CapturePermissionDenied CaptureReason = "permission_denied"
	CaptureNoSource         CaptureReason = "no_source"
	CaptureSourceUnreadable CaptureReason = "source_unreadable"
	CaptureCancelled        CaptureReason = "cancelled"
)

// CaptureError reports a failed screen-capture acquisition. Recoverable by
// retrying StartSharing.
type CaptureError struct {
	Reason CaptureReason
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("screen capture failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("screen capture failed (%s)", e.Reason)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Message returns the human-readable reason shown to the user.
func (e *CaptureError) Message() string {
	switch e.Reason {
	case CapturePermissionDenied:
		return "Screen sharing permission was denied. Allow screen sharing and try again."
	case CaptureNoSource:
		return "No screen or window is available to share."
	case CaptureSourceUnreadable:
		return "The shared screen became unreadable. Try sharing again."
	case CaptureCancelled:
		return "Screen sharing was cancelled."
	default:
		return "Screen sharing failed."
	}
}

// NegotiationError reports a failed SDP offer/answer creation or
// application. Recoverable by restarting the whole call attempt from idle.
type NegotiationError struct {
	Op  string // "create-offer", "set-remote-description", ...
	Err error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("negotiation failed during %s: %v", e.Op, e.Err)
}

func (e *NegotiationError) Unwrap() error { return e.Err }

// TransportFailure reports the peer connection reaching a failed state. It
// is delivered through the state observer, never as a return value, because
// it can occur at any time after the triggering call returned. Recoverable
// by a full Restart of the coordinator.
type TransportFailure struct {
	ConnectionState string
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("peer connection failed (state %s)", e.ConnectionState)
}
