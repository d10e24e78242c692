package implementation

import (
	"context"
	"errors"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/mapper"
	"simpliparts-be/internal/model"
	"simpliparts-be/internal/repository/contract"
	"simpliparts-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BillingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewBillingRepository(db *gorm.DB) contract.BillingRepository {
	return &BillingRepositoryImpl{db: db, mapper: mapper.NewBillingMapper()}
}

func (r *BillingRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.BillingTransaction) error {
	m := r.mapper.ToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.ToEntity(m)
	return nil
}

func (r *BillingRepositoryImpl) FindTransaction(ctx context.Context, specs ...specification.Specification) (*entity.BillingTransaction, error) {
	var m model.BillingTransaction
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BillingRepositoryImpl) UpdateTransactionStatus(ctx context.Context, orderId string, status entity.PaymentStatus, paymentType string, raw map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.BillingTransaction{}).
		Where("order_id = ?", orderId).
		Updates(map[string]interface{}{
			"status":       string(status),
			"payment_type": paymentType,
			"raw":          datatypes.JSONMap(raw),
		}).Error
}
