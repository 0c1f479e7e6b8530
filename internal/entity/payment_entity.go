package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSettled  PaymentStatus = "settled"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment records one checkout for a help session. Its id is used as the
// payment provider's order id, so the webhook can find it again.
type Payment struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	UserId    uuid.UUID
	Amount    float64
	Currency  string
	Status    PaymentStatus
	SnapToken *string
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
