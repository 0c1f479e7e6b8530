package bootstrap

import (
	"context"
	"log"

	"last20-backend/internal/config"
	"last20-backend/internal/controller"
	"last20-backend/internal/handler"
	"last20-backend/internal/pkg/logger"
	"last20-backend/internal/pkg/mailer"
	"last20-backend/internal/repository/implementation"
	"last20-backend/internal/repository/memory"
	"last20-backend/internal/repository/unitofwork"
	"last20-backend/internal/service"
	"last20-backend/internal/websocket"

	pktNats "last20-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	OAuthController        controller.IOAuthController
	UserController         controller.IUserController
	ExpertController       controller.IExpertController
	RequestController      controller.IRequestController
	MatchController        controller.IMatchController
	SessionController      controller.ISessionController
	PaymentController      controller.IPaymentController
	ReviewController       controller.IReviewController
	NotificationController controller.INotificationController

	// Background services (exposed for main.go to run)
	DispatchService service.IDispatchService

	// WebSockets
	WsHandler    *handler.WsHandler
	WebSocketHub *websocket.Hub
	SessionRelay *websocket.SessionRelay
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub and signaling relay
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	sessionRelay := websocket.NewSessionRelay(rdb, wsLogger)
	sessionRelay.Run()

	// Live call registry
	callRegistry := memory.NewCallRegistry()

	// 3. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory)
	userService := service.NewUserService(uowFactory)
	expertService := service.NewExpertService(uowFactory)
	matchService := service.NewMatchService(uowFactory, cfg.Matching.Options(), sysLogger)
	requestService := service.NewRequestService(uowFactory, pubSub, sysLogger)
	dispatchService := service.NewDispatchService(pubSub, service.TopicRequestCreated, uowFactory, cfg.Matching.Options(), natsPub)
	sessionService := service.NewSessionService(uowFactory, callRegistry, cfg.Signaling.Coordinator(), natsPub)
	paymentService := service.NewPaymentService(uowFactory, natsPub, emailService, sysLogger)
	reviewService := service.NewReviewService(uowFactory, natsPub)

	// 3.5 Notification push worker
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	// WebSocket handler
	wsHandler := handler.NewWsHandler(wsHub, sessionRelay, sessionService, wsLogger)

	// 4. Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		OAuthController:        controller.NewOAuthController(oauthService),
		UserController:         controller.NewUserController(userService),
		ExpertController:       controller.NewExpertController(expertService, reviewService),
		RequestController:      controller.NewRequestController(requestService),
		MatchController:        controller.NewMatchController(matchService),
		SessionController:      controller.NewSessionController(sessionService),
		PaymentController:      controller.NewPaymentController(paymentService),
		ReviewController:       controller.NewReviewController(reviewService),
		NotificationController: controller.NewNotificationController(notifService),

		DispatchService: dispatchService,

		WsHandler:    wsHandler,
		WebSocketHub: wsHub,
		SessionRelay: sessionRelay,
	}
}
