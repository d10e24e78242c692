package service

import (
	"context"
	"fmt"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/pkg/mailer"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/events"
	pktNats "simpliparts-be/pkg/nats"

	"github.com/google/uuid"
)

const notificationDurable = "notif-service-worker"

// EventSource is satisfied by the NATS subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type notificationTemplate struct {
	subject string
	body    string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeSubscriptionActivated: {
		subject: "Your SimpliParts Pro subscription is active",
		body:    "Thanks for upgrading %s. Audits are now unlimited.",
	},
	events.TypePaymentFailed: {
		subject: "Payment for SimpliParts Pro did not go through",
		body:    "We could not process the payment for %s. Open Shop Settings to try again.",
	},
	events.TypeUsageDenied: {
		subject: "You have used all of your free audits",
		body:    "%s has no free audits left. Upgrade to Pro to keep auditing repair orders.",
	},
}

// NotificationService emails a shop's notification list when billing events
// arrive on the bus.
type NotificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	subscriber   EventSource
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub EventSource, emailService mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory:   uowFactory,
		subscriber:   sub,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) {
	err := s.subscriber.Subscribe(ctx, pktNats.SubjectPattern, notificationDurable, s.HandleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to "+pktNats.SubjectPattern, nil)
}

// HandleEvent returns an error only for failures worth a redelivery.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	tmpl, ok := notificationTemplates[event.EventType()]
	if !ok {
		return nil
	}

	shopIdStr, _ := event.Payload()["shop_id"].(string)
	shopId, err := uuid.Parse(shopIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s has no usable shop_id", event.EventType()), nil)
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByID{ID: shopId})
	if err != nil {
		return err
	}
	if shop == nil || len(shop.NotificationEmails) == 0 {
		return nil
	}

	if err := s.emailService.SendNotification(shop.NotificationEmails, tmpl.subject, fmt.Sprintf(tmpl.body, shop.Name)); err != nil {
		s.logger.Error("NotificationService", "Failed to send notification email", map[string]interface{}{"shop_id": shopIdStr, "error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification emailed", map[string]interface{}{"type": event.EventType(), "recipients": len(shop.NotificationEmails)})
	return nil
}
