package dto

import (
	"github.com/google/uuid"
)

// MatchRequest carries either a persisted help request id or an ad-hoc tag
// list. Exactly one source must be present.
type MatchRequest struct {
	RequestId *uuid.UUID `json:"request_id"`
	Tags      []string   `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`

	MinMatchScore        *float64 `json:"min_match_score" validate:"omitempty,gte=0,lte=1"`
	MaxResults           *int     `json:"max_results" validate:"omitempty,gte=1,lte=50"`
	RequirePayoutAccount *bool    `json:"require_payout_account"`
}

type MatchResultResponse struct {
	Expert      ExpertProfileResponse `json:"expert"`
	Score       float64               `json:"score"`
	MatchedTags []string              `json:"matched_tags"`
}

type MatchResponse struct {
	RequestTags []string              `json:"request_tags"`
	Results     []MatchResultResponse `json:"results"`
}
