package service

import (
	"context"
	"errors"
	"net/http"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/shell"
	"simpliparts-be/pkg/authbus"

	"github.com/google/uuid"
)

// The adapters below let a server-hosted shell instance use the services
// directly, with the auth bus standing in for the hosted SDK's change stream.

type busAuth struct {
	appSessionId string
	initialToken string
	auth         IAuthService
	bus          *authbus.Bus
}

func changeToSession(c authbus.Change) *shell.Session {
	if !c.SignedIn {
		return nil
	}
	return &shell.Session{
		AccessToken: c.AccessToken,
		UserID:      c.UserID,
		Email:       c.Email,
		ExpiresAt:   c.ExpiresAt,
	}
}

func sessionFromResponse(s *dto.SessionResponse) *shell.Session {
	return &shell.Session{
		AccessToken:  s.AccessToken,
		UserID:       s.UserId.String(),
		Email:        s.Email,
		UserMetadata: s.UserMetadata,
		ExpiresAt:    s.ExpiresAt,
	}
}

func (a *busAuth) GetCurrentSession(ctx context.Context) (*shell.Session, error) {
	if a.initialToken == "" {
		return nil, nil
	}
	s, err := a.auth.GetSession(ctx, a.initialToken)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sessionFromResponse(s), nil
}

func (a *busAuth) Subscribe(onChange func(*shell.Session)) (func(), error) {
	return a.bus.Subscribe(a.appSessionId, func(c authbus.Change) {
		onChange(changeToSession(c))
	})
}

func (a *busAuth) meta() dto.ClientMeta {
	return dto.ClientMeta{AppSessionId: a.appSessionId, UserAgent: "app-session"}
}

func (a *busAuth) SignInWithPassword(ctx context.Context, email, password string) (*shell.Session, error) {
	resp, err := a.auth.Login(ctx, &dto.LoginRequest{Email: email, Password: password}, a.meta())
	if err != nil {
		return nil, err
	}
	return loginToSession(resp), nil
}

func (a *busAuth) SignUp(ctx context.Context, email, password string, profile shell.SignUpProfile) (*shell.Session, error) {
	resp, err := a.auth.SignUp(ctx, &dto.SignUpRequest{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     email,
		ShopName:  profile.ShopName,
		Password:  password,
	}, a.meta())
	if err != nil {
		return nil, err
	}
	return loginToSession(resp), nil
}

func (a *busAuth) SignOut(ctx context.Context) error {
	return a.auth.Logout(ctx, "", a.meta())
}

func loginToSession(resp *dto.LoginResponse) *shell.Session {
	return &shell.Session{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.Id.String(),
		Email:       resp.User.Email,
		ExpiresAt:   resp.ExpiresAt,
	}
}

type shopLoader struct {
	shops IShopService
}

func (l shopLoader) FetchShop(ctx context.Context, s shell.Session) (*shell.ShopProfile, error) {
	userId, err := uuid.Parse(s.UserID)
	if err != nil {
		return nil, err
	}
	info, err := l.shops.GetShopInfo(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &shell.ShopProfile{
		ID:                           info.Id.String(),
		Name:                         info.Name,
		SubscriptionStatus:           info.SubscriptionStatus,
		FreeCreditsRemaining:         info.FreeCreditsRemaining,
		SubscriptionCurrentPeriodEnd: info.SubscriptionCurrentPeriodEnd,
		BillingCustomerID:            info.BillingCustomerId,
		NotificationEmails:           info.NotificationEmails,
	}, nil
}

type billingGateway struct {
	billing IBillingService
}

func (b billingGateway) StartCheckout(ctx context.Context, s shell.Session) (string, error) {
	userId, err := uuid.Parse(s.UserID)
	if err != nil {
		return "", err
	}
	res, err := b.billing.StartCheckout(ctx, userId)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (b billingGateway) OpenBillingPortal(ctx context.Context, s shell.Session) (string, error) {
	userId, err := uuid.Parse(s.UserID)
	if err != nil {
		return "", err
	}
	res, err := b.billing.OpenBillingPortal(ctx, userId)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// GuardUsage reports a denial as a 402 result rather than an error.
func (b billingGateway) GuardUsage(ctx context.Context, s shell.Session) (shell.UsageGuardResult, error) {
	userId, err := uuid.Parse(s.UserID)
	if err != nil {
		return shell.UsageGuardResult{}, err
	}
	res, err := b.billing.GuardUsage(ctx, userId)
	if errors.Is(err, ErrUsageDenied) && res != nil {
		return shell.UsageGuardResult{
			Allowed:          false,
			RemainingCredits: res.RemainingCredits,
			Status:           res.Status,
			StatusCode:       http.StatusPaymentRequired,
		}, nil
	}
	if err != nil {
		return shell.UsageGuardResult{}, err
	}
	return shell.UsageGuardResult{
		Allowed:          res.Allowed,
		Reason:           res.Reason,
		RemainingCredits: res.RemainingCredits,
		Status:           res.Status,
		StatusCode:       http.StatusOK,
	}, nil
}
