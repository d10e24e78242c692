package contract

import (
	"context"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error

	// Profile links the user to a shop.
	CreateProfile(ctx context.Context, profile *entity.Profile) error
	FindProfile(ctx context.Context, userId uuid.UUID) (*entity.Profile, error)

	CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error
	FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error

	CreateResetCode(ctx context.Context, code *entity.ResetCode) error
	FindResetCode(ctx context.Context, specs ...specification.Specification) (*entity.ResetCode, error)
	MarkResetCodeUsed(ctx context.Context, id uuid.UUID) error

	FindUserProvider(ctx context.Context, specs ...specification.Specification) (*entity.UserProvider, error)
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
