package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"time"

	"last20-backend/internal/dto"
	"last20-backend/internal/entity"
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/pkg/mailer"
	"last20-backend/internal/repository/specification"
	"last20-backend/internal/repository/unitofwork"

	"last20-backend/pkg/events"
	pktNats "last20-backend/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrSessionAlreadyPaid  = errors.New("session is already paid")
	ErrInvalidWebhookToken = errors.New("invalid signature")
)

type IPaymentService interface {
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
	logger         logger.ILogger
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, emailService mailer.IEmailService, log logger.ILogger) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		logger:         log,
	}
}

func (s *paymentService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserId != userId {
		return nil, ErrNotSessionParticipant
	}
	if session.Status != entity.HelpSessionStatusPendingPayment {
		return nil, ErrSessionAlreadyPaid
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	payment := &entity.Payment{
		Id:        uuid.New(),
		SessionId: session.Id,
		UserId:    userId,
		Amount:    session.Price,
		Currency:  "USD",
		Status:    entity.PaymentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, err
	}

	// external call stays outside any DB transaction
	var sClient snap.Client
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(serverKey, env)

	frontendURL := os.Getenv("FRONTEND_URL")
	finishRedirectURL := fmt.Sprintf("%s/sessions/%s?payment=success", frontendURL, session.Id)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  payment.Id.String(),
			GrossAmt: int64(session.Price),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    session.Id.String(),
				Price: int64(session.Price),
				Qty:   1,
				Name:  "20-minute help session",
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	snapToken := snapResp.Token
	payment.SnapToken = &snapToken
	if err := uow.PaymentRepository().Update(ctx, payment); err != nil {
		s.logger.Warn("payment_service", "failed to persist snap token", map[string]interface{}{
			"payment_id": payment.Id,
			"error":      err.Error(),
		})
	}

	return &dto.CheckoutResponse{
		PaymentId:       payment.Id,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		return fmt.Errorf("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))

	if req.SignatureKey != expectedSignature {
		s.logger.Warn("payment_service", "webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ErrInvalidWebhookToken
	}

	paymentId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return fmt.Errorf("invalid order id format")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: payment.SessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	var newPaymentStatus entity.PaymentStatus
	switch req.TransactionStatus {
	case "capture", "settlement":
		newPaymentStatus = entity.PaymentStatusSettled
	case "deny", "cancel":
		newPaymentStatus = entity.PaymentStatusFailed
	case "expire":
		newPaymentStatus = entity.PaymentStatusExpired
	case "pending":
		return nil
	default:
		s.logger.Warn("payment_service", "unknown transaction status", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	// webhooks retry, re-delivery must be a no-op
	if payment.Status == newPaymentStatus {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if newPaymentStatus == entity.PaymentStatusSettled {
		if err := uow.PaymentRepository().MarkPaid(ctx, payment.Id, time.Now()); err != nil {
			return err
		}
		if err := uow.SessionRepository().UpdateStatus(ctx, session.Id, string(entity.HelpSessionStatusScheduled)); err != nil {
			return err
		}

		notification := &entity.Notification{
			Id:      uuid.New(),
			UserId:  session.UserId,
			Type:    entity.NotificationTypeSessionPaid,
			Title:   "Payment confirmed",
			Message: "Your help session is scheduled. Join when you're ready.",
			Metadata: map[string]any{
				"session_id": session.Id.String(),
				"payment_id": payment.Id.String(),
			},
			CreatedAt: time.Now(),
		}
		if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
			return err
		}
	} else {
		if err := uow.PaymentRepository().UpdateStatus(ctx, payment.Id, string(newPaymentStatus)); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if newPaymentStatus == entity.PaymentStatusSettled && s.eventPublisher != nil {
		profile, _ := uow.ExpertRepository().FindOne(ctx, specification.ByID{ID: session.ExpertId})
		notifyIds := []string{session.UserId.String()}
		if profile != nil {
			notifyIds = append(notifyIds, profile.UserId.String())
		}
		event := events.BaseEvent{
			Type: events.TypeSessionPaid,
			Data: map[string]interface{}{
				"session_id":      session.Id.String(),
				"payment_id":      payment.Id.String(),
				"user_id":         session.UserId.String(),
				"amount":          payment.Amount,
				"notify_user_ids": notifyIds,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("payment_service", "failed to publish SESSION_PAID event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if newPaymentStatus == entity.PaymentStatusSettled && s.emailService != nil {
		// receipt must never fail the webhook, Midtrans would retry forever
		go s.sendReceipt(session, payment)
	}

	s.logger.Info("payment_service", "webhook processed", map[string]interface{}{
		"payment_id": payment.Id,
		"status":     string(newPaymentStatus),
	})
	return nil
}

func (s *paymentService) sendReceipt(session *entity.HelpSession, payment *entity.Payment) {
	ctx := context.Background()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.UserId})
	if err != nil || user == nil {
		s.logger.Warn("payment_service", "could not load payer for receipt email", map[string]interface{}{
			"user_id": session.UserId,
		})
		return
	}

	title := "Help session"
	if request, rerr := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: session.RequestId}); rerr == nil && request != nil {
		title = request.Title
	}

	if err := s.emailService.SendReceipt(user.Email, title, payment.Amount, payment.Id.String()); err != nil {
		s.logger.Warn("payment_service", "failed to send receipt email", map[string]interface{}{
			"payment_id": payment.Id,
			"error":      err.Error(),
		})
	}
}
