package implementation

import (
	"context"
	"errors"
	"time"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/mapper"
	"simpliparts-be/internal/model"
	"simpliparts-be/internal/repository/contract"
	"simpliparts-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ShopRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ShopMapper
}

func NewShopRepository(db *gorm.DB) contract.ShopRepository {
	return &ShopRepositoryImpl{
		db:     db,
		mapper: mapper.NewShopMapper(),
	}
}

func (r *ShopRepositoryImpl) Create(ctx context.Context, shop *entity.Shop) error {
	m := r.mapper.ToModel(shop)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*shop = *r.mapper.ToEntity(m)
	return nil
}

func (r *ShopRepositoryImpl) Update(ctx context.Context, shop *entity.Shop) error {
	m := r.mapper.ToModel(shop)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*shop = *r.mapper.ToEntity(m)
	return nil
}

func (r *ShopRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Shop, error) {
	var m model.Shop
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ShopRepositoryImpl) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("name", name).Error
}

func (r *ShopRepositoryImpl) UpdateNotificationEmails(ctx context.Context, id uuid.UUID, emails []string) error {
	value := datatypes.JSONSlice[string]{}
	value = append(value, emails...)
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("notification_emails", value).Error
}

func (r *ShopRepositoryImpl) UpdateSubscription(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus, periodEnd *time.Time) error {
	updates := map[string]interface{}{
		"subscription_status": string(status),
	}
	if periodEnd != nil {
		updates["subscription_current_period_end"] = *periodEnd
	}
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ShopRepositoryImpl) SetBillingCustomer(ctx context.Context, id uuid.UUID, customerId string) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("id = ? AND billing_customer_id IS NULL", id).
		Update("billing_customer_id", customerId).Error
}

func (r *ShopRepositoryImpl) ConsumeFreeCredit(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var rows []struct {
		FreeCreditsRemaining int
	}
	err := r.db.WithContext(ctx).Raw(`
		UPDATE shops
		SET free_credits_remaining = free_credits_remaining - 1, updated_at = ?
		WHERE id = ? AND free_credits_remaining > 0
		RETURNING free_credits_remaining
	`, time.Now(), id).Scan(&rows).Error
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].FreeCreditsRemaining, true, nil
}
