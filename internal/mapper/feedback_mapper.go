package mapper

import (
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/model"

	"gorm.io/datatypes"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(f *model.Feedback) *entity.Feedback {
	if f == nil {
		return nil
	}
	return &entity.Feedback{
		Id:          f.Id,
		ShopId:      f.ShopId,
		UserId:      f.UserId,
		Type:        entity.FeedbackType(f.Type),
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Metadata:    map[string]interface{}(f.Metadata),
		CreatedAt:   f.CreatedAt,
	}
}

func (m *FeedbackMapper) ToModel(f *entity.Feedback) *model.Feedback {
	if f == nil {
		return nil
	}
	return &model.Feedback{
		Id:          f.Id,
		ShopId:      f.ShopId,
		UserId:      f.UserId,
		Type:        string(f.Type),
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Metadata:    datatypes.JSONMap(f.Metadata),
		CreatedAt:   f.CreatedAt,
	}
}

func (m *FeedbackMapper) ToEntities(items []*model.Feedback) []*entity.Feedback {
	out := make([]*entity.Feedback, len(items))
	for i, item := range items {
		out[i] = m.ToEntity(item)
	}
	return out
}

func (m *FeedbackMapper) WaitlistToModel(w *entity.WaitlistEntry) *model.WaitlistEntry {
	if w == nil {
		return nil
	}
	return &model.WaitlistEntry{Id: w.Id, Email: w.Email, Source: w.Source, CreatedAt: w.CreatedAt}
}

func (m *FeedbackMapper) WaitlistToEntity(w *model.WaitlistEntry) *entity.WaitlistEntry {
	if w == nil {
		return nil
	}
	return &entity.WaitlistEntry{Id: w.Id, Email: w.Email, Source: w.Source, CreatedAt: w.CreatedAt}
}
