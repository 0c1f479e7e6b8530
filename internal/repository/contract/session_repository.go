package contract

import (
	"context"
	"time"

	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.HelpSession) error
	Update(ctx context.Context, session *entity.HelpSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.HelpSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HelpSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error
}
