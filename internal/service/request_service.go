package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/pkg/matching"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const TopicRequestCreated = "request.created"

var ErrRequestNotOpen = errors.New("help request is no longer open")

type IRequestService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateHelpRequestRequest) (*dto.HelpRequestResponse, error)
	Get(ctx context.Context, userId, requestId uuid.UUID) (*dto.HelpRequestResponse, error)
	ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.HelpRequestResponse, error)
	Cancel(ctx context.Context, userId, requestId uuid.UUID) error
}

type requestService struct {
	uowFactory unitofwork.RepositoryFactory
	pubSub     *gochannel.GoChannel
	logger     logger.ILogger
}

func NewRequestService(uowFactory unitofwork.RepositoryFactory, pubSub *gochannel.GoChannel, log logger.ILogger) IRequestService {
	return &requestService{
		uowFactory: uowFactory,
		pubSub:     pubSub,
		logger:     log,
	}
}

func requestToResponse(r *entity.HelpRequest) *dto.HelpRequestResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.HelpRequestResponse{
		Id:          r.Id,
		UserId:      r.UserId,
		Title:       r.Title,
		Description: r.Description,
		Tags:        tags,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

func (s *requestService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateHelpRequestRequest) (*dto.HelpRequestResponse, error) {
	request := &entity.HelpRequest{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.HelpRequestStatusOpen,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// tags are resolved at creation so the stored request is self-contained
	request.Tags = matching.ExtractTags(matching.HelpRequest{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.RequestRepository().Create(ctx, request); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishMatchRequestMessage{RequestId: request.Id})
	if err == nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if pubErr := s.pubSub.Publish(TopicRequestCreated, msg); pubErr != nil {
			s.logger.Warn("request_service", "failed to publish request.created", map[string]interface{}{
				"request_id": request.Id,
				"error":      pubErr.Error(),
			})
		}
	}

	return requestToResponse(request), nil
}

func (s *requestService) Get(ctx context.Context, userId, requestId uuid.UUID) (*dto.HelpRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: requestId})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.UserId != userId {
		return nil, ErrNotRequestOwner
	}
	return requestToResponse(request), nil
}

func (s *requestService) ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.HelpRequestResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	requests, err := uow.RequestRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.HelpRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = requestToResponse(r)
	}
	return out, nil
}

func (s *requestService) Cancel(ctx context.Context, userId, requestId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: requestId})
	if err != nil {
		return err
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if request.UserId != userId {
		return ErrNotRequestOwner
	}
	if request.Status != entity.HelpRequestStatusOpen && request.Status != entity.HelpRequestStatusMatched {
		return ErrRequestNotOpen
	}
	return uow.RequestRepository().UpdateStatus(ctx, requestId, string(entity.HelpRequestStatusCancelled))
}
