package contract

import (
	"context"

	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type ExpertRepository interface {
	Create(ctx context.Context, profile *entity.ExpertProfile) error
	Update(ctx context.Context, profile *entity.ExpertProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertProfile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertProfile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateAggregates rewrites the review-derived counters in one statement
	// so concurrent reviews cannot interleave partial updates.
	UpdateAggregates(ctx context.Context, id uuid.UUID, rating float64, ratingCount int) error
	IncrementTotalSessions(ctx context.Context, id uuid.UUID) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}
