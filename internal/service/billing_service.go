package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/specification"
	"simpliparts-be/internal/repository/unitofwork"
	"simpliparts-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

const (
	ReasonActiveSubscription = "active_subscription"
	ReasonFreeCredit         = "free_credit"

	subscriptionPeriod = 30 * 24 * time.Hour
)

// SnapClient is the part of the Midtrans Snap client checkout uses.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

func NewSnapClient(serverKey string, isProduction bool) SnapClient {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}
	var sClient snap.Client
	sClient.New(serverKey, env)
	return &sClient
}

type IBillingService interface {
	StartCheckout(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error)
	OpenBillingPortal(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error)
	// GuardUsage returns ErrUsageDenied together with a populated response
	// when the shop has nothing left to spend.
	GuardUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageGuardResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type billingService struct {
	uowFactory     unitofwork.RepositoryFactory
	snapClient     SnapClient
	eventPublisher events.Publisher
	cfg            config.BillingConfig
	clientURL      string
	logger         logger.ILogger
}

func NewBillingService(
	uowFactory unitofwork.RepositoryFactory,
	snapClient SnapClient,
	eventPublisher events.Publisher,
	cfg *config.Config,
	log logger.ILogger,
) IBillingService {
	return &billingService{
		uowFactory:     uowFactory,
		snapClient:     snapClient,
		eventPublisher: eventPublisher,
		cfg:            cfg.Billing,
		clientURL:      cfg.App.ClientURL,
		logger:         log,
	}
}

func (s *billingService) StartCheckout(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	orderId := "SP-" + uuid.NewString()
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: s.cfg.ProPlanPrice,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/shop-settings?payment=success", s.clientURL),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FirstName,
			LName: user.LastName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    "pro",
				Price: s.cfg.ProPlanPrice,
				Qty:   1,
				Name:  s.cfg.ProPlanName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := s.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		s.logger.Error("BILLING", "Midtrans rejected checkout", map[string]interface{}{"order_id": orderId, "error": midErr.GetMessage()})
		return nil, fmt.Errorf("%w: %s", ErrPaymentProvider, midErr.GetMessage())
	}

	now := time.Now()
	err = uow.BillingRepository().CreateTransaction(ctx, &entity.BillingTransaction{
		Id:          uuid.New(),
		ShopId:      shop.Id,
		OrderId:     orderId,
		Amount:      s.cfg.ProPlanPrice,
		Status:      entity.PaymentStatusPending,
		RedirectURL: snapResp.RedirectURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	return &dto.URLResponse{URL: snapResp.RedirectURL}, nil
}

func (s *billingService) OpenBillingPortal(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if shop.BillingCustomerId == nil || *shop.BillingCustomerId == "" {
		return nil, ErrNoBillingCustomer
	}

	portal, err := url.Parse(s.cfg.PortalURL)
	if err != nil {
		return nil, fmt.Errorf("invalid billing portal url: %w", err)
	}
	q := portal.Query()
	q.Set("customer", *shop.BillingCustomerId)
	q.Set("shop", shop.Id.String())
	portal.RawQuery = q.Encode()

	return &dto.URLResponse{URL: portal.String()}, nil
}

func (s *billingService) GuardUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageGuardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := findShopForUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	if shop.HasActiveSubscription() {
		return &dto.UsageGuardResponse{
			Allowed: true,
			Reason:  ReasonActiveSubscription,
			Status:  string(shop.SubscriptionStatus),
		}, nil
	}

	remaining, ok, err := uow.ShopRepository().ConsumeFreeCredit(ctx, shop.Id)
	if err != nil {
		return nil, err
	}
	if !ok {
		zero := 0
		publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUsageDenied, map[string]interface{}{
			"shop_id": shop.Id.String(),
			"user_id": userId.String(),
			"status":  string(shop.SubscriptionStatus),
		})
		return &dto.UsageGuardResponse{
			Allowed:          false,
			RemainingCredits: &zero,
			Status:           string(shop.SubscriptionStatus),
		}, ErrUsageDenied
	}

	return &dto.UsageGuardResponse{
		Allowed:          true,
		Reason:           ReasonFreeCredit,
		RemainingCredits: &remaining,
		Status:           string(shop.SubscriptionStatus),
	}, nil
}

// midtransSignature is SHA512(order_id + status_code + gross_amount + server_key).
func midtransSignature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (s *billingService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.cfg.MidtransServerKey == "" {
		return fmt.Errorf("server configuration error")
	}

	expected := midtransSignature(req.OrderId, req.StatusCode, req.GrossAmount, s.cfg.MidtransServerKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.SignatureKey)) != 1 {
		s.logger.Warn("BILLING", "Webhook signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return ErrInvalidSignature
	}

	var (
		newPayment     entity.PaymentStatus
		activatedUntil *time.Time
	)
	switch req.TransactionStatus {
	case "capture", "settlement":
		end := time.Now().Add(subscriptionPeriod)
		newPayment, activatedUntil = entity.PaymentStatusPaid, &end
	case "deny", "cancel", "expire":
		newPayment = entity.PaymentStatusFailed
	default:
		s.logger.Info("BILLING", "Webhook status needs no action", map[string]interface{}{"order_id": req.OrderId, "status": req.TransactionStatus})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	txn, err := uow.BillingRepository().FindTransaction(ctx, specification.ByOrderID{OrderID: req.OrderId})
	if err != nil {
		return err
	}
	if txn == nil {
		return ErrOrderNotFound
	}
	if txn.Status == newPayment {
		return nil
	}

	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByID{ID: txn.ShopId})
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}

	newStatus := entity.SubscriptionStatusActive
	eventType := events.TypeSubscriptionActivated
	if newPayment == entity.PaymentStatusFailed {
		newStatus, err = s.statusAfterFailure(ctx, uow, shop, txn)
		if err != nil {
			return err
		}
		eventType = events.TypePaymentFailed
	}

	raw := map[string]interface{}{
		"transaction_status": req.TransactionStatus,
		"fraud_status":       req.FraudStatus,
		"status_code":        req.StatusCode,
		"gross_amount":       req.GrossAmount,
	}
	if err := uow.BillingRepository().UpdateTransactionStatus(ctx, req.OrderId, newPayment, req.PaymentType, raw); err != nil {
		return err
	}

	changed := newStatus != shop.SubscriptionStatus || activatedUntil != nil
	if changed {
		periodEnd := shop.SubscriptionCurrentPeriodEnd
		if activatedUntil != nil {
			periodEnd = activatedUntil
		}
		if err := uow.ShopRepository().UpdateSubscription(ctx, shop.Id, newStatus, periodEnd); err != nil {
			return err
		}
	}
	if newStatus == entity.SubscriptionStatusActive && activatedUntil != nil && shop.BillingCustomerId == nil {
		if err := uow.ShopRepository().SetBillingCustomer(ctx, shop.Id, "mt-"+shop.Id.String()); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if !changed {
		s.logger.Info("BILLING", "Payment failed without affecting the subscription", map[string]interface{}{
			"shop_id": shop.Id.String(), "order_id": req.OrderId, "status": string(shop.SubscriptionStatus),
		})
		return nil
	}

	s.logger.Info("BILLING", "Subscription state changed", map[string]interface{}{
		"shop_id": shop.Id.String(), "from": string(shop.SubscriptionStatus), "to": string(newStatus),
	})
	publishEvent(ctx, s.eventPublisher, s.logger, eventType, map[string]interface{}{
		"shop_id":  shop.Id.String(),
		"order_id": req.OrderId,
		"amount":   req.GrossAmount,
	})
	return nil
}

// statusAfterFailure decides what a failed order does to the shop. Only an
// active subscription can lapse, and only when its period is over or the
// failed order is the payment currently backing it. Abandoned checkouts leave
// the shop as it was.
func (s *billingService) statusAfterFailure(ctx context.Context, uow unitofwork.UnitOfWork, shop *entity.Shop, txn *entity.BillingTransaction) (entity.SubscriptionStatus, error) {
	if shop.SubscriptionStatus != entity.SubscriptionStatusActive {
		return shop.SubscriptionStatus, nil
	}
	if end := shop.SubscriptionCurrentPeriodEnd; end != nil && !end.After(time.Now()) {
		return entity.SubscriptionStatusPastDue, nil
	}
	if txn.Status != entity.PaymentStatusPaid {
		return shop.SubscriptionStatus, nil
	}

	latest, err := uow.BillingRepository().FindTransaction(ctx,
		specification.ByShopID{ShopID: shop.Id},
		specification.ByPaymentStatus{Status: string(entity.PaymentStatusPaid)},
		specification.NewestFirst{},
	)
	if err != nil {
		return "", err
	}
	if latest != nil && latest.OrderId == txn.OrderId {
		return entity.SubscriptionStatusPastDue, nil
	}
	return shop.SubscriptionStatus, nil
}
