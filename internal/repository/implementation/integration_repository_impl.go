package implementation

import (
	"context"
	"errors"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/mapper"
	"simpliparts-be/internal/model"
	"simpliparts-be/internal/repository/contract"
	"simpliparts-be/internal/repository/scope"
	"simpliparts-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IntegrationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ShopMapper
}

func NewIntegrationRepository(db *gorm.DB) contract.IntegrationRepository {
	return &IntegrationRepositoryImpl{
		db:     db,
		mapper: mapper.NewShopMapper(),
	}
}

// Upsert creates the integration or replaces the key/store of the existing
// one for the same shop and provider.
func (r *IntegrationRepositoryImpl) Upsert(ctx context.Context, integration *entity.ShopIntegration) error {
	m := r.mapper.IntegrationToModel(integration)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "store_id", "status", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*integration = *r.mapper.IntegrationToEntity(m)
	return nil
}

func (r *IntegrationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ShopIntegration, error) {
	var m model.ShopIntegration
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.IntegrationToEntity(&m), nil
}

func (r *IntegrationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ShopIntegration, error) {
	var models []*model.ShopIntegration
	if err := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByProvider), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.IntegrationsToEntities(models), nil
}

func (r *IntegrationRepositoryImpl) Delete(ctx context.Context, shopId uuid.UUID, provider entity.IntegrationProvider) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("shop_id = ? AND provider = ?", shopId, string(provider)).
		Delete(&model.ShopIntegration{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
