package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/pkg/events"
	pktNats "last20-backend/pkg/nats"

	"github.com/google/uuid"
)

var (
	ErrSessionNotCompleted = errors.New("session is not completed yet")
	ErrAlreadyReviewed     = errors.New("session has already been reviewed")
	ErrNotSessionRequester = errors.New("only the requesting user can review a session")
)

type IReviewService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListByExpert(ctx context.Context, expertId uuid.UUID, limit, offset int) ([]*dto.ReviewResponse, error)
}

type reviewService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewReviewService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IReviewService {
	return &reviewService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func reviewToResponse(r *entity.Review) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		Id:        r.Id,
		SessionId: r.SessionId,
		UserId:    r.UserId,
		ExpertId:  r.ExpertId,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func (s *reviewService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserId != userId {
		return nil, ErrNotSessionRequester
	}
	if session.Status != entity.HelpSessionStatusCompleted {
		return nil, ErrSessionNotCompleted
	}

	existing, err := uow.ReviewRepository().FindOne(ctx, specification.BySessionID{SessionID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	profile, err := uow.ExpertRepository().FindOne(ctx, specification.ByID{ID: session.ExpertId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrExpertProfileNotFound
	}

	review := &entity.Review{
		Id:        uuid.New(),
		SessionId: session.Id,
		UserId:    userId,
		ExpertId:  profile.Id,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// review row and aggregate update commit together or not at all
	newCount := profile.RatingCount + 1
	newRating := (profile.Rating*float64(profile.RatingCount) + float64(req.Rating)) / float64(newCount)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ReviewRepository().Create(ctx, review); err != nil {
		return nil, err
	}

	if err := uow.ExpertRepository().UpdateAggregates(ctx, profile.Id, newRating, newCount); err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		Id:      uuid.New(),
		UserId:  profile.UserId,
		Type:    entity.NotificationTypeReviewReceived,
		Title:   fmt.Sprintf("You received a %d-star review", req.Rating),
		Message: req.Comment,
		Metadata: map[string]any{
			"session_id": session.Id.String(),
			"review_id":  review.Id.String(),
			"rating":     req.Rating,
		},
		CreatedAt: time.Now(),
	}
	if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		event := events.BaseEvent{
			Type: events.TypeReviewReceived,
			Data: map[string]interface{}{
				"review_id":       review.Id.String(),
				"session_id":      session.Id.String(),
				"rating":          req.Rating,
				"notify_user_ids": []string{profile.UserId.String()},
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish REVIEW_RECEIVED event: %v\n", err)
		}
	}

	return reviewToResponse(review), nil
}

func (s *reviewService) ListByExpert(ctx context.Context, expertId uuid.UUID, limit, offset int) ([]*dto.ReviewResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	reviews, err := uow.ReviewRepository().FindAll(ctx,
		specification.ByExpertID{ExpertID: expertId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = reviewToResponse(r)
	}
	return out, nil
}
