package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/pkg/events"
	"last20-backend/pkg/matching"
	pktNats "last20-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IDispatchService consumes freshly created help requests off the in-process
// bus, runs the matcher over available experts and fans the result out as an
// EXPERT_MATCHED event plus stored notifications.
type IDispatchService interface {
	Consume(ctx context.Context) error
}

type dispatchService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	matchOptions   matching.Options
	eventPublisher *pktNats.Publisher
}

func NewDispatchService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	matchOptions matching.Options,
	eventPublisher *pktNats.Publisher,
) IDispatchService {
	return &dispatchService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		matchOptions:   matchOptions,
		eventPublisher: eventPublisher,
	}
}

func (ds *dispatchService) Consume(ctx context.Context) error {
	messages, err := ds.pubSub.Subscribe(ctx, ds.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ds.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ds *dispatchService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishMatchRequestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal match request message: %v", err)
		msg.Ack() // malformed, retrying cannot help
		return
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: payload.RequestId})
	if err != nil {
		log.Printf("[ERROR] Failed to load request %s: %v", payload.RequestId, err)
		msg.Nack()
		return
	}
	if request == nil {
		log.Printf("[WARN] Request not found, skipping dispatch: %s", payload.RequestId)
		msg.Ack()
		return
	}
	if request.Status != entity.HelpRequestStatusOpen {
		msg.Ack()
		return
	}

	profiles, err := uow.ExpertRepository().FindAll(ctx, specification.AvailableOnly{})
	if err != nil {
		log.Printf("[ERROR] Failed to load experts for request %s: %v", payload.RequestId, err)
		msg.Nack()
		return
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

	results := matching.MatchExpertsByTags(candidates, request.Tags, ds.matchOptions)
	if len(results) == 0 {
		log.Printf("[INFO] No experts matched for request %s", payload.RequestId)
		msg.Ack()
		return
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.RequestRepository().UpdateStatus(ctx, request.Id, string(entity.HelpRequestStatusMatched)); err != nil {
		log.Printf("[ERROR] Failed to mark request matched: %v", err)
		msg.Nack()
		return
	}

	// notify each matched expert
	for _, r := range results {
		profile := byID[r.ExpertID]
		notification := &entity.Notification{
			Id:      uuid.New(),
			UserId:  profile.UserId,
			Type:    entity.NotificationTypeExpertMatched,
			Title:   "New help request matches your skills",
			Message: request.Title,
			Metadata: map[string]any{
				"request_id":   request.Id.String(),
				"score":        r.Score,
				"matched_tags": r.MatchedTags,
			},
			CreatedAt: time.Now(),
		}
		if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
			log.Printf("[ERROR] Failed to store notification for expert %s: %v", r.ExpertID, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit dispatch transaction: %v", err)
		msg.Nack()
		return
	}

	if ds.eventPublisher != nil {
		expertIds := make([]string, len(results))
		notifyIds := make([]string, len(results))
		for i, r := range results {
			expertIds[i] = r.ExpertID.String()
			notifyIds[i] = byID[r.ExpertID].UserId.String()
		}
		event := events.BaseEvent{
			Type: events.TypeExpertMatched,
			Data: map[string]interface{}{
				"request_id":      request.Id.String(),
				"user_id":         request.UserId.String(),
				"expert_ids":      expertIds,
				"notify_user_ids": notifyIds,
			},
			OccurredAt: time.Now(),
		}
		if err := ds.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish EXPERT_MATCHED event: %v", err)
		}
	}

	log.Printf("[INFO] Request %s matched %d experts", request.Id, len(results))
	msg.Ack()
}
