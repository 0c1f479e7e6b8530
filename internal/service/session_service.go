package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/repository/memory"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/pkg/events"
	pktNats "last20-backend/pkg/nats"
	"last20-backend/pkg/signaling"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound       = errors.New("help session not found")
	ErrNotSessionParticipant = errors.New("not a participant of this session")
	ErrSessionWrongStatus    = errors.New("session is not in the required status")
	ErrExpertUnavailable     = errors.New("expert is not accepting sessions")
)

type ISessionService interface {
	Book(ctx context.Context, userId uuid.UUID, req *dto.BookSessionRequest) (*dto.HelpSessionResponse, error)
	Get(ctx context.Context, userId, sessionId uuid.UUID) (*dto.HelpSessionResponse, error)
	ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.HelpSessionResponse, error)
	Start(ctx context.Context, userId, sessionId uuid.UUID) (*dto.StartSessionResponse, error)
	End(ctx context.Context, userId, sessionId uuid.UUID) (*dto.HelpSessionResponse, error)
	Cancel(ctx context.Context, userId, sessionId uuid.UUID) error

	// Participants resolves the two user ids allowed on the session's
	// signaling relay.
	Participants(ctx context.Context, sessionId uuid.UUID) (userId, expertUserId uuid.UUID, err error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	callRegistry   *memory.CallRegistry
	rtcConfig      signaling.Config
	eventPublisher *pktNats.Publisher
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, callRegistry *memory.CallRegistry, rtcConfig signaling.Config, eventPublisher *pktNats.Publisher) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		callRegistry:   callRegistry,
		rtcConfig:      rtcConfig.WithDefaults(),
		eventPublisher: eventPublisher,
	}
}

func sessionToResponse(s *entity.HelpSession) *dto.HelpSessionResponse {
	return &dto.HelpSessionResponse{
		Id:        s.Id,
		RequestId: s.RequestId,
		UserId:    s.UserId,
		ExpertId:  s.ExpertId,
		Status:    string(s.Status),
		Price:     s.Price,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
	}
}

// loadWithExpert returns the session plus the expert profile backing it.
func (s *sessionService) loadWithExpert(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*entity.HelpSession, *entity.ExpertProfile, error) {
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	profile, err := uow.ExpertRepository().FindOne(ctx, specification.ByID{ID: session.ExpertId})
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, fmt.Errorf("expert profile missing for session %s", sessionId)
	}
	return session, profile, nil
}

func isParticipant(userId uuid.UUID, session *entity.HelpSession, profile *entity.ExpertProfile) bool {
	return userId == session.UserId || userId == profile.UserId
}

func (s *sessionService) Book(ctx context.Context, userId uuid.UUID, req *dto.BookSessionRequest) (*dto.HelpSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: req.RequestId})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.UserId != userId {
		return nil, ErrNotRequestOwner
	}
	if request.Status != entity.HelpRequestStatusOpen && request.Status != entity.HelpRequestStatusMatched {
		return nil, ErrRequestNotOpen
	}

	profile, err := uow.ExpertRepository().FindOne(ctx, specification.ByID{ID: req.ExpertId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrExpertProfileNotFound
	}
	if !profile.Available {
		return nil, ErrExpertUnavailable
	}

	session := &entity.HelpSession{
		Id:        uuid.New(),
		RequestId: request.Id,
		UserId:    userId,
		ExpertId:  profile.Id,
		Status:    entity.HelpSessionStatusPendingPayment,
		Price:     profile.SessionRate,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.RequestRepository().UpdateStatus(ctx, request.Id, string(entity.HelpRequestStatusBooked)); err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		Id:      uuid.New(),
		UserId:  profile.UserId,
		Type:    entity.NotificationTypeSessionBooked,
		Title:   "A session was booked with you",
		Message: request.Title,
		Metadata: map[string]any{
			"session_id": session.Id.String(),
			"request_id": request.Id.String(),
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
			Type: events.TypeSessionBooked,
			Data: map[string]interface{}{
				"session_id":      session.Id.String(),
				"request_id":      request.Id.String(),
				"user_id":         userId.String(),
				"notify_user_ids": []string{profile.UserId.String()},
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish SESSION_BOOKED event: %v\n", err)
		}
	}

	return sessionToResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, userId, sessionId uuid.UUID) (*dto.HelpSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, profile, err := s.loadWithExpert(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}
	if !isParticipant(userId, session, profile) {
		return nil, ErrNotSessionParticipant
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.HelpSessionResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	// sessions where the caller is the expert
	profile, err := uow.ExpertRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if profile != nil {
		expertSessions, err := uow.SessionRepository().FindAll(ctx,
			specification.ByExpertID{ExpertID: profile.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: limit, Offset: offset},
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, expertSessions...)
	}

	out := make([]*dto.HelpSessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionToResponse(sess)
	}
	return out, nil
}

func (s *sessionService) Start(ctx context.Context, userId, sessionId uuid.UUID) (*dto.StartSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, profile, err := s.loadWithExpert(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}
	if !isParticipant(userId, session, profile) {
		return nil, ErrNotSessionParticipant
	}
	if session.Status != entity.HelpSessionStatusScheduled {
		return nil, ErrSessionWrongStatus
	}

	now := time.Now()
	if err := uow.SessionRepository().MarkStarted(ctx, sessionId, now); err != nil {
		return nil, err
	}
	session.Status = entity.HelpSessionStatusActive
	session.StartedAt = &now

	s.callRegistry.Save(&memory.LiveCall{
		SessionID:    sessionId,
		UserID:       session.UserId,
		ExpertUserID: profile.UserId,
		StartedAt:    now,
	})

	return &dto.StartSessionResponse{
		Session:   *sessionToResponse(session),
		Signaling: s.signalingSettings(),
	}, nil
}

func (s *sessionService) signalingSettings() dto.SignalingSettings {
	return dto.SignalingSettings{
		StatsIntervalMs:  s.rtcConfig.StatsInterval.Milliseconds(),
		GatherTimeoutMs:  s.rtcConfig.GatherTimeout.Milliseconds(),
		ConnectTimeoutMs: s.rtcConfig.ConnectTimeout.Milliseconds(),
	}
}

func (s *sessionService) End(ctx context.Context, userId, sessionId uuid.UUID) (*dto.HelpSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, profile, err := s.loadWithExpert(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}
	if !isParticipant(userId, session, profile) {
		return nil, ErrNotSessionParticipant
	}
	if session.Status != entity.HelpSessionStatusActive {
		return nil, ErrSessionWrongStatus
	}

	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().MarkEnded(ctx, sessionId, now); err != nil {
		return nil, err
	}
	if err := uow.RequestRepository().UpdateStatus(ctx, session.RequestId, string(entity.HelpRequestStatusCompleted)); err != nil {
		return nil, err
	}
	if err := uow.ExpertRepository().IncrementTotalSessions(ctx, profile.Id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	session.Status = entity.HelpSessionStatusCompleted
	session.EndedAt = &now

	s.callRegistry.Delete(sessionId)

	return sessionToResponse(session), nil
}

func (s *sessionService) Cancel(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, profile, err := s.loadWithExpert(ctx, uow, sessionId)
	if err != nil {
		return err
	}
	if !isParticipant(userId, session, profile) {
		return ErrNotSessionParticipant
	}
	if session.Status != entity.HelpSessionStatusPendingPayment && session.Status != entity.HelpSessionStatusScheduled {
		return ErrSessionWrongStatus
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().UpdateStatus(ctx, sessionId, string(entity.HelpSessionStatusCancelled)); err != nil {
		return err
	}
	// reopen the request so the user can book someone else
	if err := uow.RequestRepository().UpdateStatus(ctx, session.RequestId, string(entity.HelpRequestStatusMatched)); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		other := profile.UserId
		if userId == profile.UserId {
			other = session.UserId
		}
		event := events.BaseEvent{
			Type: events.TypeSessionCancelled,
			Data: map[string]interface{}{
				"session_id":      session.Id.String(),
				"user_id":         session.UserId.String(),
				"cancelled_by":    userId.String(),
				"notify_user_ids": []string{other.String()},
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish SESSION_CANCELLED event: %v\n", err)
		}
	}

	return nil
}

func (s *sessionService) Participants(ctx context.Context, sessionId uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	if call, ok := s.callRegistry.Get(sessionId); ok {
		return call.UserID, call.ExpertUserID, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, profile, err := s.loadWithExpert(ctx, uow, sessionId)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return session.UserId, profile.UserId, nil
}
