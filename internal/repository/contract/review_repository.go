package contract

import (
	"context"

	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Review, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Review, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
