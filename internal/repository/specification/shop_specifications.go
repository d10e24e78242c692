package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByShopID struct {
	ShopID uuid.UUID
}

func (s ByShopID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("shop_id = ?", s.ShopID)
}

type ByOrderID struct {
	OrderID string
}

func (s ByOrderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_id = ?", s.OrderID)
}

type ByPaymentStatus struct {
	Status string
}

func (s ByPaymentStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
