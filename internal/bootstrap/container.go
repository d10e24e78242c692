package bootstrap

import (
	"context"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/controller"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/mailer"
	"simpliparts-be/internal/repository/memory"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/internal/service"
	"simpliparts-be/internal/websocket"
	"simpliparts-be/pkg/authbus"
	"simpliparts-be/pkg/events"
	pktNats "simpliparts-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	ShopController    controller.IShopController
	BillingController controller.IBillingController
	PublicController  controller.IPublicController
	AppController     controller.IAppController

	// Background workers, started by Start
	NotificationService *service.NotificationService
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	appSessions *memory.AppSessionRepository
	authBus     *authbus.Bus
	natsPub     *pktNats.Publisher
	natsSub     *pktNats.Subscriber
	rdb         *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	// NATS
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis, websocket fanout is local only", map[string]interface{}{"error": err.Error()})
		rdb.Close()
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// Auth change stream and the server-hosted shells that listen to it
	authBus := authbus.New(watermill.NewStdLogger(false, false))
	appSessions := memory.NewAppSessionRepository()

	// 3. Services
	authService := service.NewAuthService(uowFactory, emailService, eventPublisher, authBus, cfg.Auth.JwtSecret, cfg.Billing.FreeCredits, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, cfg, eventPublisher, sysLogger)
	shopService := service.NewShopService(uowFactory)

	snapClient := service.NewSnapClient(cfg.Billing.MidtransServerKey, cfg.Billing.MidtransIsProduction)
	billingService := service.NewBillingService(uowFactory, snapClient, eventPublisher, cfg, sysLogger)

	feedbackService := service.NewFeedbackService(uowFactory, eventPublisher, sysLogger)
	contactService := service.NewContactService(emailService, cfg.SMTP.SupportInbox)
	waitlistService := service.NewWaitlistService(uowFactory, eventPublisher, sysLogger)
	siteService := service.NewSiteService(cfg.Site, cfg.Auth.JwtSecret)

	appSessionService := service.NewAppSessionService(appSessions, authBus, authService, shopService, billingService, wsHub, sysLogger)

	var notifService *service.NotificationService
	if natsSub != nil {
		notifService = service.NewNotificationService(uowFactory, natsSub, emailService, sysLogger)
	}

	// 4. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		OAuthController:   controller.NewOAuthController(oauthService, cfg.App.ClientURL, sysLogger),
		ShopController:    controller.NewShopController(shopService, cfg.Auth.JwtSecret),
		BillingController: controller.NewBillingController(billingService, cfg.Auth.JwtSecret, sysLogger),
		PublicController:  controller.NewPublicController(feedbackService, contactService, waitlistService, siteService, cfg.Auth.JwtSecret),
		AppController:     controller.NewAppController(appSessionService, siteService, wsHub, wsLogger),

		NotificationService: notifService,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,

		appSessions: appSessions,
		authBus:     authBus,
		natsPub:     natsPub,
		natsSub:     natsSub,
		rdb:         rdb,
	}
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)
	if c.NotificationService != nil {
		go c.NotificationService.Start(ctx)
	}
}

// Close disposes every live app session before tearing down the buses.
func (c *Container) Close() {
	c.appSessions.Close()
	if err := c.authBus.Close(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Auth bus close failed", map[string]interface{}{"error": err.Error()})
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
}
