package signaling

import "time"

// ConnectionStats is one quality sample polled from the peer connection
// while the session is connected, surfaced to the UI for display.
type ConnectionStats struct {
	RoundTripTime   time.Duration `json:"round_trip_time"`
	PacketsLost     int64         `json:"packets_lost"`
	FramesPerSecond float64       `json:"frames_per_second"`
	SampledAt       time.Time     `json:"sampled_at"`
}
