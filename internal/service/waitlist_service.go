package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type IWaitlistService interface {
	Join(ctx context.Context, req *dto.WaitlistRequest) (*dto.WaitlistResponse, error)
}

type waitlistService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewWaitlistService(uowFactory unitofwork.RepositoryFactory, eventPublisher events.Publisher, log logger.ILogger) IWaitlistService {
	return &waitlistService{uowFactory: uowFactory, eventPublisher: eventPublisher, logger: log}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Join treats an existing entry as success.
func (s *waitlistService) Join(ctx context.Context, req *dto.WaitlistRequest) (*dto.WaitlistResponse, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "maintenance_gate"
	}
	entry := &entity.WaitlistEntry{
		Id:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Source:    source,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.WaitlistRepository().Create(ctx, entry); err != nil {
		if isUniqueViolation(err) {
			return &dto.WaitlistResponse{AlreadyListed: true}, nil
		}
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeWaitlistJoined, map[string]interface{}{"source": source})
	return &dto.WaitlistResponse{AlreadyListed: false}, nil
}
