package entity

import (
	"time"

	"github.com/google/uuid"
)

type HelpSessionStatus string

const (
	// Booked but payment not settled yet.
	HelpSessionStatusPendingPayment HelpSessionStatus = "pending_payment"
	// Paid, waiting for both participants to join.
	HelpSessionStatusScheduled HelpSessionStatus = "scheduled"
	HelpSessionStatusActive    HelpSessionStatus = "active"
	HelpSessionStatusCompleted HelpSessionStatus = "completed"
	HelpSessionStatusCancelled HelpSessionStatus = "cancelled"
)

// HelpSession is one booked call between the requesting user and an expert.
// Its id doubles as the signaling relay channel key while the call is live.
type HelpSession struct {
	Id        uuid.UUID
	RequestId uuid.UUID
	UserId    uuid.UUID
	ExpertId  uuid.UUID // expert profile id
	Status    HelpSessionStatus
	Price     float64
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
