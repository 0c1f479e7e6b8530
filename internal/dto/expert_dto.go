package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateExpertProfileRequest struct {
	Headline    string   `json:"headline" validate:"required,min=10,max=255"`
	Bio         string   `json:"bio" validate:"max=4000"`
	Skills      []string `json:"skills" validate:"required,min=1,max=20,dive,min=1,max=50"`
	SessionRate float64  `json:"session_rate" validate:"required,gt=0"`
}

type UpdateExpertProfileRequest struct {
	Headline    *string   `json:"headline" validate:"omitempty,min=10,max=255"`
	Bio         *string   `json:"bio" validate:"omitempty,max=4000"`
	Skills      *[]string `json:"skills" validate:"omitempty,min=1,max=20,dive,min=1,max=50"`
	SessionRate *float64  `json:"session_rate" validate:"omitempty,gt=0"`
	Available   *bool     `json:"available"`
}

type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

type ExpertProfileResponse struct {
	Id            uuid.UUID `json:"id"`
	UserId        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name,omitempty"`
	Headline      string    `json:"headline"`
	Bio           string    `json:"bio,omitempty"`
	Skills        []string  `json:"skills"`
	SessionRate   float64   `json:"session_rate"`
	Available     bool      `json:"available"`
	Rating        float64   `json:"rating"`
	RatingCount   int       `json:"rating_count"`
	TotalSessions int       `json:"total_sessions"`
	PayoutEnabled bool      `json:"payout_enabled"`
	CreatedAt     time.Time `json:"created_at"`
}
