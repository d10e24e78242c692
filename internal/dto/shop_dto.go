package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShopInfoResponse struct {
	Id                           uuid.UUID  `json:"id"`
	Name                         string     `json:"name"`
	SubscriptionStatus           string     `json:"subscription_status"`
	FreeCreditsRemaining         int        `json:"free_credits_remaining"`
	SubscriptionCurrentPeriodEnd *time.Time `json:"subscription_current_period_end"`
	BillingCustomerId            *string    `json:"billing_customer_id"`
	NotificationEmails           []string   `json:"notification_emails"`
}

type UpdateShopRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateNotificationEmailsRequest struct {
	Emails []string `json:"emails" validate:"max=5,dive,required,email"`
}

type UpsertIntegrationRequest struct {
	ApiKey  string `json:"api_key" validate:"required"`
	StoreId string `json:"store_id"`
}

type IntegrationResponse struct {
	Provider  string    `json:"provider"`
	ApiKey    string    `json:"api_key"`
	StoreId   *string   `json:"store_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
