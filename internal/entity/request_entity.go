package entity

import (
	"time"

	"github.com/google/uuid"
)

type HelpRequestStatus string

const (
	HelpRequestStatusOpen      HelpRequestStatus = "open"
	HelpRequestStatusMatched   HelpRequestStatus = "matched"
	HelpRequestStatusBooked    HelpRequestStatus = "booked"
	HelpRequestStatusCompleted HelpRequestStatus = "completed"
	HelpRequestStatusCancelled HelpRequestStatus = "cancelled"
)

// HelpRequest is a user's ask for a short paid help session. Tags may be
// supplied explicitly; otherwise the matcher derives them from the title
// and description.
type HelpRequest struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Description string
	Tags        []string
	Status      HelpRequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
