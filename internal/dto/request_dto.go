package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateHelpRequestRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=255"`
	Description string   `json:"description" validate:"max=4000"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// PublishMatchRequestMessage rides the in-process bus from request creation
// to the match dispatch consumer.
type PublishMatchRequestMessage struct {
	RequestId uuid.UUID `json:"request_id"`
}

type HelpRequestResponse struct {
	Id          uuid.UUID `json:"id"`
	UserId      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
