package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExpertProfile is the marketplace-facing profile of a vetted expert. The
// Rating/RatingCount/TotalSessions aggregates are maintained by the review
// service and feed the matcher as candidate inputs.
type ExpertProfile struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Headline    string
	Bio         string
	Skills      []string // lowercased skill tags
	SessionRate float64  // price per 20-minute session, USD
	Available   bool

	Rating        float64 // running average, 0-5
	RatingCount   int
	TotalSessions int

	// PayoutAccountId is the payment provider's sub-account reference;
	// PayoutEnabled flips once the provider confirms onboarding.
	PayoutAccountId *string
	PayoutEnabled   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
