package unitofwork

import (
	"context"

	"last20-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ExpertRepository() contract.ExpertRepository
	RequestRepository() contract.RequestRepository
	SessionRepository() contract.SessionRepository
	PaymentRepository() contract.PaymentRepository
	ReviewRepository() contract.ReviewRepository
	NotificationRepository() contract.NotificationRepository
}
