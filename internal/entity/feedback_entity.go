package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackTypeBug       FeedbackType = "bug"
	FeedbackTypeFeature   FeedbackType = "feature"
	FeedbackTypeAnalytics FeedbackType = "analytics"
	FeedbackTypeQuestion  FeedbackType = "question"
	FeedbackTypeOther     FeedbackType = "other"
)

type Feedback struct {
	Id          uuid.UUID
	ShopId      uuid.UUID
	UserId      uuid.UUID
	Type        FeedbackType
	Title       string
	Description string
	Status      string
	Metadata    map[string]interface{}
	CreatedAt   time.Time
}

type WaitlistEntry struct {
	Id        uuid.UUID
	Email     string
	Source    string
	CreatedAt time.Time
}
