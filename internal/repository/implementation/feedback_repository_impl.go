package implementation

import (
	"context"
	"strings"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/mapper"
	"simpliparts-be/internal/model"
	"simpliparts-be/internal/repository/contract"
	"simpliparts-be/internal/repository/scope"
	"simpliparts-be/internal/repository/specification"

	"gorm.io/gorm"
)

type FeedbackRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db, mapper: mapper.NewFeedbackMapper()}
}

func (r *FeedbackRepositoryImpl) Create(ctx context.Context, feedback *entity.Feedback) error {
	m := r.mapper.ToModel(feedback)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*feedback = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeedbackRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	var models []*model.Feedback
	if err := applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type WaitlistRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewWaitlistRepository(db *gorm.DB) contract.WaitlistRepository {
	return &WaitlistRepositoryImpl{db: db, mapper: mapper.NewFeedbackMapper()}
}

func (r *WaitlistRepositoryImpl) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))
	m := r.mapper.WaitlistToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.WaitlistToEntity(m)
	return nil
}

func (r *WaitlistRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.WaitlistEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
