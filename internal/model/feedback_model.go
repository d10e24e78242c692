package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Feedback struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type        string            `gorm:"type:varchar(50);not null"`
	Title       string            `gorm:"type:varchar(255);not null"`
	Description string            `gorm:"type:text;not null"`
	Status      string            `gorm:"type:varchar(50);not null;default:'open'"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string {
	return "feedback"
}

type WaitlistEntry struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Source    string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_interest"
}
