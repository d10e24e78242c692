package contract

import (
	"context"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/repository/specification"
)

type BillingRepository interface {
	CreateTransaction(ctx context.Context, tx *entity.BillingTransaction) error
	FindTransaction(ctx context.Context, specs ...specification.Specification) (*entity.BillingTransaction, error)
	UpdateTransactionStatus(ctx context.Context, orderId string, status entity.PaymentStatus, paymentType string, raw map[string]interface{}) error
}
