package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/formrules"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IShopService interface {
	GetShopInfo(ctx context.Context, userId uuid.UUID) (*dto.ShopInfoResponse, error)
	UpdateName(ctx context.Context, userId uuid.UUID, req *dto.UpdateShopRequest) (*dto.ShopInfoResponse, error)
	UpdateNotificationEmails(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotificationEmailsRequest) (*dto.ShopInfoResponse, error)
	ListIntegrations(ctx context.Context, userId uuid.UUID) ([]dto.IntegrationResponse, error)
	UpsertIntegration(ctx context.Context, userId uuid.UUID, provider string, req *dto.UpsertIntegrationRequest) (*dto.IntegrationResponse, error)
	DeleteIntegration(ctx context.Context, userId uuid.UUID, provider string) error
}

type shopService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewShopService(uowFactory unitofwork.RepositoryFactory) IShopService {
	return &shopService{uowFactory: uowFactory}
}

// findShopForUser follows the profile link from user to shop.
func findShopForUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Shop, error) {
	profile, err := uow.UserRepository().FindProfile(ctx, userId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrShopNotFound
	}
	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByID{ID: profile.ShopId})
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

func toShopInfo(shop *entity.Shop) *dto.ShopInfoResponse {
	emails := shop.NotificationEmails
	if emails == nil {
		emails = []string{}
	}
	return &dto.ShopInfoResponse{
		Id:                           shop.Id,
		Name:                         shop.Name,
		SubscriptionStatus:           string(shop.SubscriptionStatus),
		FreeCreditsRemaining:         shop.FreeCreditsRemaining,
		SubscriptionCurrentPeriodEnd: shop.SubscriptionCurrentPeriodEnd,
		BillingCustomerId:            shop.BillingCustomerId,
		NotificationEmails:           emails,
	}
}

func (s *shopService) GetShopInfo(ctx context.Context, userId uuid.UUID) (*dto.ShopInfoResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	return toShopInfo(shop), nil
}

func (s *shopService) UpdateName(ctx context.Context, userId uuid.UUID, req *dto.UpdateShopRequest) (*dto.ShopInfoResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidShopName
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.ShopRepository().UpdateName(ctx, shop.Id, name); err != nil {
		return nil, err
	}
	shop.Name = name
	return toShopInfo(shop), nil
}

func (s *shopService) UpdateNotificationEmails(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotificationEmailsRequest) (*dto.ShopInfoResponse, error) {
	emails := formrules.NormalizeEmails(req.Emails)
	if len(emails) > entity.MaxNotificationEmails {
		return nil, ErrTooManyEmails
	}
	for _, e := range emails {
		if formrules.EmailProblem(e) != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, e)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.ShopRepository().UpdateNotificationEmails(ctx, shop.Id, emails); err != nil {
		return nil, err
	}
	shop.NotificationEmails = emails
	return toShopInfo(shop), nil
}

// maskApiKey keeps only the last four characters visible.
func maskApiKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", len(key)-4) + key[len(key)-4:]
}

func toIntegrationResponse(i *entity.ShopIntegration) dto.IntegrationResponse {
	return dto.IntegrationResponse{
		Provider:  string(i.Provider),
		ApiKey:    maskApiKey(i.ApiKey),
		StoreId:   i.StoreId,
		Status:    i.Status,
		UpdatedAt: i.UpdatedAt,
	}
}

func (s *shopService) ListIntegrations(ctx context.Context, userId uuid.UUID) ([]dto.IntegrationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	items, err := uow.IntegrationRepository().FindAll(ctx, specification.ByShopID{ShopID: shop.Id})
	if err != nil {
		return nil, err
	}
	res := make([]dto.IntegrationResponse, 0, len(items))
	for _, i := range items {
		res = append(res, toIntegrationResponse(i))
	}
	return res, nil
}

func (s *shopService) UpsertIntegration(ctx context.Context, userId uuid.UUID, provider string, req *dto.UpsertIntegrationRequest) (*dto.IntegrationResponse, error) {
	p := entity.IntegrationProvider(strings.ToLower(provider))
	if !p.Valid() {
		return nil, ErrInvalidIntegration
	}
	apiKey := strings.TrimSpace(req.ApiKey)
	if apiKey == "" {
		return nil, ErrApiKeyRequired
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	var storeId *string
	if v := strings.TrimSpace(req.StoreId); v != "" {
		storeId = &v
	}
	now := time.Now()
	integration := &entity.ShopIntegration{
		Id:        uuid.New(),
		ShopId:    shop.Id,
		Provider:  p,
		ApiKey:    apiKey,
		StoreId:   storeId,
		Status:    "connected",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.IntegrationRepository().Upsert(ctx, integration); err != nil {
		return nil, err
	}

	res := toIntegrationResponse(integration)
	return &res, nil
}

func (s *shopService) DeleteIntegration(ctx context.Context, userId uuid.UUID, provider string) error {
	p := entity.IntegrationProvider(strings.ToLower(provider))
	if !p.Valid() {
		return ErrInvalidIntegration
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return err
	}

	deleted, err := uow.IntegrationRepository().Delete(ctx, shop.Id, p)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrIntegrationNotFound
	}
	return nil
}
