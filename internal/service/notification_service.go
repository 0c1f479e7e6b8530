package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/repository/contract"
	"last20-backend/pkg/events"
	pktNats "last20-backend/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification entity.Notification)
	Broadcast(notification entity.Notification)
}

// NotificationService bridges the durable event stream to the websocket hub.
// Services persist their own notification rows inside their transactions;
// this consumer only handles the real-time push leg, so a slow or offline
// socket never blocks a commit.
type NotificationService struct {
	repo       contract.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo contract.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

var pushTitles = map[string]string{
	events.TypeExpertMatched:    "New help request matches your skills",
	events.TypeSessionBooked:    "A session was booked with you",
	events.TypeSessionPaid:      "Session payment confirmed",
	events.TypeSessionCancelled: "A session was cancelled",
	events.TypeReviewReceived:   "You received a new review",
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subject arrives as "events.<TYPE>"
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	title, ok := pushTitles[typeCode]
	if !ok {
		return nil
	}

	payload := event.Payload()
	recipients := recipientIDs(payload)
	if len(recipients) == 0 {
		s.logger.Warn("NotificationService", fmt.Sprintf("No recipients in payload for event %s", typeCode), nil)
		return nil
	}

	for _, userID := range recipients {
		notif := entity.Notification{
			Id:        uuid.New(),
			UserId:    userID,
			Type:      entity.NotificationType(strings.ToLower(typeCode)),
			Title:     title,
			Metadata:  payload,
			CreatedAt: time.Now(),
		}
		s.delivery.Send(userID, notif)
	}

	return nil
}

func recipientIDs(payload map[string]interface{}) []uuid.UUID {
	raw, ok := payload["notify_user_ids"]
	if !ok {
		return nil
	}

	var out []uuid.UUID
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			if id, err := uuid.Parse(s); err == nil {
				out = append(out, id)
			}
		}
	case []interface{}:
		// JSON round-trips string slices into []interface{}
		for _, item := range v {
			if s, ok := item.(string); ok {
				if id, err := uuid.Parse(s); err == nil {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// GetNotifications fetches stored notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
