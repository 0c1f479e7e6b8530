package service

import (
	"context"
	"errors"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/pkg/matching"

	"github.com/google/uuid"
)

var (
	ErrMatchInputMissing = errors.New("either request_id or tags must be provided")
	ErrRequestNotFound   = errors.New("help request not found")
	ErrNotRequestOwner   = errors.New("help request belongs to another user")
)

type IMatchService interface {
	Match(ctx context.Context, userId uuid.UUID, req *dto.MatchRequest) (*dto.MatchResponse, error)
}

type matchService struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   matching.Options
	logger     logger.ILogger
}

func NewMatchService(uowFactory unitofwork.RepositoryFactory, defaults matching.Options, log logger.ILogger) IMatchService {
	return &matchService{
		uowFactory: uowFactory,
		defaults:   defaults,
		logger:     log,
	}
}

func (s *matchService) Match(ctx context.Context, userId uuid.UUID, req *dto.MatchRequest) (*dto.MatchResponse, error) {
	if req.RequestId == nil && len(req.Tags) == 0 {
		return nil, ErrMatchInputMissing
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	var helpReq matching.HelpRequest
	if req.RequestId != nil {
		stored, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: *req.RequestId})
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrRequestNotFound
		}
		if stored.UserId != userId {
			return nil, ErrNotRequestOwner
		}
		helpReq = matching.HelpRequest{
			Title:       stored.Title,
			Description: stored.Description,
			Tags:        stored.Tags,
		}
	} else {
		helpReq = matching.HelpRequest{Tags: req.Tags}
	}

	profiles, err := uow.ExpertRepository().FindAll(ctx, specification.AvailableOnly{})
	if err != nil {
		return nil, err
	}

	candidates := make([]matching.ExpertCandidate, len(profiles))
	byID := make(map[uuid.UUID]*entity.ExpertProfile, len(profiles))
	for i, p := range profiles {
		candidates[i] = matching.ExpertCandidate{
			ID:               p.Id,
			Tags:             p.Skills,
			Available:        p.Available,
			Rating:           p.Rating,
			HasPayoutAccount: p.PayoutEnabled,
			TotalSessions:    p.TotalSessions,
		}
		byID[p.Id] = p
	}

	// Request overrides win over the configured defaults.
	opts := s.defaults
	if req.MinMatchScore != nil {
		opts.MinMatchScore = *req.MinMatchScore
	}
	if req.MaxResults != nil {
		opts.MaxResults = *req.MaxResults
	}
	if req.RequirePayoutAccount != nil {
		opts.RequirePayoutAccount = *req.RequirePayoutAccount
	}

	tags := matching.ExtractTags(helpReq)
	results := matching.MatchExpertsByTags(candidates, tags, opts)

	s.logger.Info("match_service", "matched experts for request", map[string]interface{}{
		"user_id":    userId,
		"tags":       tags,
		"candidates": len(candidates),
		"results":    len(results),
	})

	out := &dto.MatchResponse{
		RequestTags: tags,
		Results:     make([]dto.MatchResultResponse, len(results)),
	}
	for i, r := range results {
		p := byID[r.ExpertID]
		out.Results[i] = dto.MatchResultResponse{
			Expert:      *expertToResponse(p),
			Score:       r.Score,
			MatchedTags: r.MatchedTags,
		}
	}
	return out, nil
}
