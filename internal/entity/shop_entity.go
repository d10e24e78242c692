package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusFree     SubscriptionStatus = "free"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

const MaxNotificationEmails = 5

type Shop struct {
	Id                           uuid.UUID
	Name                         string
	SubscriptionStatus           SubscriptionStatus
	FreeCreditsRemaining         int
	SubscriptionCurrentPeriodEnd *time.Time
	BillingCustomerId            *string
	NotificationEmails           []string
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

func (s *Shop) HasActiveSubscription() bool {
	return s.SubscriptionStatus == SubscriptionStatusActive
}

type IntegrationProvider string

const (
	IntegrationProviderPartsTech IntegrationProvider = "partstech"
	IntegrationProviderTekmetric IntegrationProvider = "tekmetric"
)

func (p IntegrationProvider) Valid() bool {
	return p == IntegrationProviderPartsTech || p == IntegrationProviderTekmetric
}

type ShopIntegration struct {
	Id        uuid.UUID
	ShopId    uuid.UUID
	Provider  IntegrationProvider
	ApiKey    string
	StoreId   *string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
