package contract

import (
	"context"

	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type RequestRepository interface {
	Create(ctx context.Context, request *entity.HelpRequest) error
	Update(ctx context.Context, request *entity.HelpRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HelpRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HelpRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
