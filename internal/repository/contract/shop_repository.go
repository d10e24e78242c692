package contract

import (
	"context"
	"time"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *entity.Shop) error
	Update(ctx context.Context, shop *entity.Shop) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateNotificationEmails(ctx context.Context, id uuid.UUID, emails []string) error
	UpdateSubscription(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus, periodEnd *time.Time) error
	SetBillingCustomer(ctx context.Context, id uuid.UUID, customerId string) error

	// ConsumeFreeCredit decrements the credit balance only if it is positive.
	// ok is false when nothing was left to consume.
	ConsumeFreeCredit(ctx context.Context, id uuid.UUID) (remaining int, ok bool, err error)
}

type IntegrationRepository interface {
	Upsert(ctx context.Context, integration *entity.ShopIntegration) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ShopIntegration, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ShopIntegration, error)
	Delete(ctx context.Context, shopId uuid.UUID, provider entity.IntegrationProvider) (bool, error)
}
