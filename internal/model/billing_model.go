package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BillingTransaction struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderId     string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	Amount      int64             `gorm:"not null"`
	Status      string            `gorm:"type:varchar(50);not null;default:'pending'"`
	RedirectURL string            `gorm:"type:text"`
	PaymentType string            `gorm:"type:varchar(50)"`
	Raw         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

func (BillingTransaction) TableName() string {
	return "billing_transactions"
}
