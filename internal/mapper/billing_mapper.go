package mapper

import (
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/model"

	"gorm.io/datatypes"
)

type BillingMapper struct{}

func NewBillingMapper() *BillingMapper {
	return &BillingMapper{}
}

func (m *BillingMapper) ToEntity(t *model.BillingTransaction) *entity.BillingTransaction {
	if t == nil {
		return nil
	}
	return &entity.BillingTransaction{
		Id:          t.Id,
		ShopId:      t.ShopId,
		OrderId:     t.OrderId,
		Amount:      t.Amount,
		Status:      entity.PaymentStatus(t.Status),
		RedirectURL: t.RedirectURL,
		PaymentType: t.PaymentType,
		Raw:         map[string]interface{}(t.Raw),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *BillingMapper) ToModel(t *entity.BillingTransaction) *model.BillingTransaction {
	if t == nil {
		return nil
	}
	return &model.BillingTransaction{
		Id:          t.Id,
		ShopId:      t.ShopId,
		OrderId:     t.OrderId,
		Amount:      t.Amount,
		Status:      string(t.Status),
		RedirectURL: t.RedirectURL,
		PaymentType: t.PaymentType,
		Raw:         datatypes.JSONMap(t.Raw),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
