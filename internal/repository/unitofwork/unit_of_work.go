package unitofwork

import (
	"context"

	"simpliparts-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ShopRepository() contract.ShopRepository
	IntegrationRepository() contract.IntegrationRepository
	FeedbackRepository() contract.FeedbackRepository
	WaitlistRepository() contract.WaitlistRepository
	BillingRepository() contract.BillingRepository
}
