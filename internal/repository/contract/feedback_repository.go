package contract

import (
	"context"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/repository/specification"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error)
}

type WaitlistRepository interface {
	// Create returns the raw driver error so callers can detect duplicates.
	Create(ctx context.Context, entry *entity.WaitlistEntry) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
