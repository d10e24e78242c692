package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Shop struct {
	Id                           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                         string    `gorm:"type:varchar(255);not null"`
	SubscriptionStatus           string    `gorm:"type:varchar(50);not null;default:'free'"`
	FreeCreditsRemaining         int       `gorm:"not null;default:0"`
	SubscriptionCurrentPeriodEnd *time.Time
	BillingCustomerId            *string                     `gorm:"type:varchar(255)"`
	NotificationEmails           datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt                    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt                    time.Time                   `gorm:"autoUpdateTime"`
}

func (Shop) TableName() string {
	return "shops"
}

type ShopIntegration struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shop_provider"`
	Provider  string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_shop_provider"`
	ApiKey    string    `gorm:"type:text;not null"`
	StoreId   *string   `gorm:"type:varchar(255)"`
	Status    string    `gorm:"type:varchar(50);not null;default:'active'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ShopIntegration) TableName() string {
	return "shop_integrations"
}
