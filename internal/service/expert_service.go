package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var (
	ErrExpertProfileExists   = errors.New("expert profile already exists")
	ErrExpertProfileNotFound = errors.New("expert profile not found")
)

type IExpertService interface {
	CreateProfile(ctx context.Context, userId uuid.UUID, req *dto.CreateExpertProfileRequest) (*dto.ExpertProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateExpertProfileRequest) (*dto.ExpertProfileResponse, error)
	GetProfile(ctx context.Context, profileId uuid.UUID) (*dto.ExpertProfileResponse, error)
	GetProfileByUser(ctx context.Context, userId uuid.UUID) (*dto.ExpertProfileResponse, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]*dto.ExpertProfileResponse, error)
	SetAvailability(ctx context.Context, userId uuid.UUID, available bool) error
}

type expertService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewExpertService(uowFactory unitofwork.RepositoryFactory) IExpertService {
	return &expertService{
		uowFactory: uowFactory,
	}
}

func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func expertToResponse(p *entity.ExpertProfile) *dto.ExpertProfileResponse {
	return &dto.ExpertProfileResponse{
		Id:            p.Id,
		UserId:        p.UserId,
		Headline:      p.Headline,
		Bio:           p.Bio,
		Skills:        p.Skills,
		SessionRate:   p.SessionRate,
		Available:     p.Available,
		Rating:        p.Rating,
		RatingCount:   p.RatingCount,
		TotalSessions: p.TotalSessions,
		PayoutEnabled: p.PayoutEnabled,
		CreatedAt:     p.CreatedAt,
	}
}

func (s *expertService) CreateProfile(ctx context.Context, userId uuid.UUID, req *dto.CreateExpertProfileRequest) (*dto.ExpertProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ExpertRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrExpertProfileExists
	}

	profile := &entity.ExpertProfile{
		Id:          uuid.New(),
		UserId:      userId,
		Headline:    req.Headline,
		Bio:         req.Bio,
		Skills:      normalizeSkills(req.Skills),
		SessionRate: req.SessionRate,
		Available:   false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// profile creation also promotes the account role
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ExpertRepository().Create(ctx, profile); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().UpdateRole(ctx, userId, string(entity.UserRoleExpert)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return expertToResponse(profile), nil
}

func (s *expertService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateExpertProfileRequest) (*dto.ExpertProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ExpertRepository()

	profile, err := repo.FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrExpertProfileNotFound
	}

	if req.Headline != nil {
		profile.Headline = *req.Headline
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Skills != nil {
		profile.Skills = normalizeSkills(*req.Skills)
	}
	if req.SessionRate != nil {
		profile.SessionRate = *req.SessionRate
	}
	if req.Available != nil {
		profile.Available = *req.Available
	}
	profile.UpdatedAt = time.Now()

	if err := repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return expertToResponse(profile), nil
}

func (s *expertService) GetProfile(ctx context.Context, profileId uuid.UUID) (*dto.ExpertProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ExpertRepository().FindOne(ctx, specification.ByID{ID: profileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrExpertProfileNotFound
	}
	return expertToResponse(profile), nil
}

func (s *expertService) GetProfileByUser(ctx context.Context, userId uuid.UUID) (*dto.ExpertProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ExpertRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrExpertProfileNotFound
	}
	return expertToResponse(profile), nil
}

func (s *expertService) ListAvailable(ctx context.Context, limit, offset int) ([]*dto.ExpertProfileResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.ExpertRepository().FindAll(ctx,
		specification.AvailableOnly{},
		specification.OrderBy{Field: "rating", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ExpertProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = expertToResponse(p)
	}
	return out, nil
}

func (s *expertService) SetAvailability(ctx context.Context, userId uuid.UUID, available bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ExpertRepository()
	profile, err := repo.FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrExpertProfileNotFound
	}
	return repo.SetAvailability(ctx, profile.Id, available)
}
