package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// BillingTransaction is one checkout attempt for the Pro plan.
type BillingTransaction struct {
	Id          uuid.UUID
	ShopId      uuid.UUID
	OrderId     string
	Amount      int64
	Status      PaymentStatus
	RedirectURL string
	PaymentType string
	Raw         map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
