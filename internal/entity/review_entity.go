package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is left by the requesting user after a completed session. One
// review per session; the expert's aggregate rating is recomputed from it.
type Review struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	UserId    uuid.UUID
	ExpertId  uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
