package mapper

import (
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/model"

	"gorm.io/datatypes"
)

type ShopMapper struct{}

func NewShopMapper() *ShopMapper {
	return &ShopMapper{}
}

func (m *ShopMapper) ToEntity(s *model.Shop) *entity.Shop {
	if s == nil {
		return nil
	}
	emails := make([]string, len(s.NotificationEmails))
	copy(emails, s.NotificationEmails)
	return &entity.Shop{
		Id:                           s.Id,
		Name:                         s.Name,
		SubscriptionStatus:           entity.SubscriptionStatus(s.SubscriptionStatus),
		FreeCreditsRemaining:         s.FreeCreditsRemaining,
		SubscriptionCurrentPeriodEnd: s.SubscriptionCurrentPeriodEnd,
		BillingCustomerId:            s.BillingCustomerId,
		NotificationEmails:           emails,
		CreatedAt:                    s.CreatedAt,
		UpdatedAt:                    s.UpdatedAt,
	}
}

func (m *ShopMapper) ToModel(s *entity.Shop) *model.Shop {
	if s == nil {
		return nil
	}
	emails := datatypes.JSONSlice[string]{}
	emails = append(emails, s.NotificationEmails...)
	return &model.Shop{
		Id:                           s.Id,
		Name:                         s.Name,
		SubscriptionStatus:           string(s.SubscriptionStatus),
		FreeCreditsRemaining:         s.FreeCreditsRemaining,
		SubscriptionCurrentPeriodEnd: s.SubscriptionCurrentPeriodEnd,
		BillingCustomerId:            s.BillingCustomerId,
		NotificationEmails:           emails,
		CreatedAt:                    s.CreatedAt,
		UpdatedAt:                    s.UpdatedAt,
	}
}

func (m *ShopMapper) IntegrationToEntity(i *model.ShopIntegration) *entity.ShopIntegration {
	if i == nil {
		return nil
	}
	return &entity.ShopIntegration{
		Id:        i.Id,
		ShopId:    i.ShopId,
		Provider:  entity.IntegrationProvider(i.Provider),
		ApiKey:    i.ApiKey,
		StoreId:   i.StoreId,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (m *ShopMapper) IntegrationToModel(i *entity.ShopIntegration) *model.ShopIntegration {
	if i == nil {
		return nil
	}
	return &model.ShopIntegration{
		Id:        i.Id,
		ShopId:    i.ShopId,
		Provider:  string(i.Provider),
		ApiKey:    i.ApiKey,
		StoreId:   i.StoreId,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func (m *ShopMapper) IntegrationsToEntities(items []*model.ShopIntegration) []*entity.ShopIntegration {
	out := make([]*entity.ShopIntegration, len(items))
	for i, item := range items {
		out[i] = m.IntegrationToEntity(item)
	}
	return out
}
