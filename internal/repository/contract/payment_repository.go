package contract

import (
	"context"
	"time"

	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error
}
