package service

import (
	"context"
	"strings"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.FeedbackRequest, meta dto.ClientMeta) (*dto.FeedbackResponse, error)
}

type feedbackService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewFeedbackService(uowFactory unitofwork.RepositoryFactory, eventPublisher events.Publisher, log logger.ILogger) IFeedbackService {
	return &feedbackService{uowFactory: uowFactory, eventPublisher: eventPublisher, logger: log}
}

func (s *feedbackService) Submit(ctx context.Context, userId uuid.UUID, req *dto.FeedbackRequest, meta dto.ClientMeta) (*dto.FeedbackResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, ErrEmptyFeedback
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	feedback := &entity.Feedback{
		Id:          uuid.New(),
		ShopId:      shop.Id,
		UserId:      userId,
		Type:        entity.FeedbackType(req.Type),
		Title:       title,
		Description: description,
		Status:      "new",
		Metadata: map[string]interface{}{
			"user_agent": meta.UserAgent,
		},
		CreatedAt: time.Now(),
	}
	if err := uow.FeedbackRepository().Create(ctx, feedback); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeFeedbackSubmitted, map[string]interface{}{
		"feedback_id": feedback.Id.String(),
		"shop_id":     shop.Id.String(),
		"type":        req.Type,
		"title":       title,
	})
	return &dto.FeedbackResponse{Id: feedback.Id.String()}, nil
}
