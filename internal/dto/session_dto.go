package dto

import (
	"time"

	"github.com/google/uuid"
)

type BookSessionRequest struct {
	RequestId uuid.UUID `json:"request_id" validate:"required"`
	ExpertId  uuid.UUID `json:"expert_id" validate:"required"`
}

// SignalingSettings carries the server-configured bounds a client should
// apply to its peer coordinator for the live call.
type SignalingSettings struct {
	StatsIntervalMs  int64 `json:"stats_interval_ms"`
	GatherTimeoutMs  int64 `json:"gather_timeout_ms"`
	ConnectTimeoutMs int64 `json:"connect_timeout_ms"`
}

type StartSessionResponse struct {
	Session   HelpSessionResponse `json:"session"`
	Signaling SignalingSettings   `json:"signaling"`
}

type HelpSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	RequestId uuid.UUID  `json:"request_id"`
	UserId    uuid.UUID  `json:"user_id"`
	ExpertId  uuid.UUID  `json:"expert_id"`
	Status    string     `json:"status"`
	Price     float64    `json:"price"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
