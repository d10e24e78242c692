package controller

import (
	"context"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/serverutils"
	"simpliparts-be/internal/service"
	"simpliparts-be/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

var testUserID = uuid.MustParse("6a1f0c55-3b1d-4e5f-9b8a-0a0b0c0d0e0f")

func signedToken() string {
	claims := serverutils.TokenClaims{
		UserID: testUserID.String(),
		Email:  "owner@shop.test",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	return token
}

func newTestApp(controllers ...interface{ RegisterRoutes(fiber.Router) }) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	for _, c := range controllers {
		c.RegisterRoutes(api)
	}
	return app
}

type fakeAuthService struct {
	loginErr error
	lastMeta dto.ClientMeta
	session  *dto.SessionResponse
}

func (f *fakeAuthService) SignUp(ctx context.Context, req *dto.SignUpRequest, meta dto.ClientMeta) (*dto.LoginResponse, error) {
	f.lastMeta = meta
	return &dto.LoginResponse{AccessToken: "tok", User: dto.UserDTO{Id: testUserID, Email: req.Email}}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest, meta dto.ClientMeta) (*dto.LoginResponse, error) {
	f.lastMeta = meta
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.LoginResponse{AccessToken: "tok", User: dto.UserDTO{Id: testUserID, Email: req.Email}}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string, meta dto.ClientMeta) error {
	return service.ErrUnauthorized
}

func (f *fakeAuthService) GetSession(ctx context.Context, accessToken string) (*dto.SessionResponse, error) {
	if f.session == nil {
		return nil, service.ErrUnauthorized
	}
	return f.session, nil
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	return nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.Code != "123456" {
		return service.ErrInvalidResetCode
	}
	return nil
}

type fakeShopService struct {
	lastUser uuid.UUID
}

func (f *fakeShopService) GetShopInfo(ctx context.Context, userId uuid.UUID) (*dto.ShopInfoResponse, error) {
	f.lastUser = userId
	return &dto.ShopInfoResponse{Id: uuid.New(), Name: "Main Street Auto", SubscriptionStatus: "free"}, nil
}

func (f *fakeShopService) UpdateName(ctx context.Context, userId uuid.UUID, req *dto.UpdateShopRequest) (*dto.ShopInfoResponse, error) {
	return &dto.ShopInfoResponse{Name: req.Name}, nil
}

func (f *fakeShopService) UpdateNotificationEmails(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotificationEmailsRequest) (*dto.ShopInfoResponse, error) {
	return &dto.ShopInfoResponse{NotificationEmails: req.Emails}, nil
}

func (f *fakeShopService) ListIntegrations(ctx context.Context, userId uuid.UUID) ([]dto.IntegrationResponse, error) {
	return []dto.IntegrationResponse{}, nil
}

func (f *fakeShopService) UpsertIntegration(ctx context.Context, userId uuid.UUID, provider string, req *dto.UpsertIntegrationRequest) (*dto.IntegrationResponse, error) {
	if provider != "partstech" && provider != "tekmetric" {
		return nil, service.ErrInvalidIntegration
	}
	return &dto.IntegrationResponse{Provider: provider, ApiKey: "••••1234"}, nil
}

func (f *fakeShopService) DeleteIntegration(ctx context.Context, userId uuid.UUID, provider string) error {
	return service.ErrIntegrationNotFound
}

type fakeBillingService struct {
	guard    *dto.UsageGuardResponse
	guardErr error
	hookErr  error
}

func (f *fakeBillingService) StartCheckout(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error) {
	return &dto.URLResponse{URL: "https://pay.test/checkout"}, nil
}

func (f *fakeBillingService) OpenBillingPortal(ctx context.Context, userId uuid.UUID) (*dto.URLResponse, error) {
	return nil, service.ErrNoBillingCustomer
}

func (f *fakeBillingService) GuardUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageGuardResponse, error) {
	return f.guard, f.guardErr
}

func (f *fakeBillingService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	return f.hookErr
}

type fakeFeedbackService struct{}

func (fakeFeedbackService) Submit(ctx context.Context, userId uuid.UUID, req *dto.FeedbackRequest, meta dto.ClientMeta) (*dto.FeedbackResponse, error) {
	return &dto.FeedbackResponse{Id: "fb-1"}, nil
}

type fakeContactService struct{}

func (fakeContactService) Send(ctx context.Context, req *dto.ContactRequest) error { return nil }

type fakeWaitlistService struct{ listed bool }

func (f fakeWaitlistService) Join(ctx context.Context, req *dto.WaitlistRequest) (*dto.WaitlistResponse, error) {
	return &dto.WaitlistResponse{AlreadyListed: f.listed}, nil
}

type fakeSiteService struct {
	maintenance bool
	password    string
}

func (f fakeSiteService) Status() *dto.SiteStatusResponse {
	return &dto.SiteStatusResponse{Maintenance: f.maintenance, PreviewProtected: f.maintenance && f.password != ""}
}

func (f fakeSiteService) Unlock(password string) (string, error) {
	if f.password != "" && password != f.password {
		return "", service.ErrInvalidPreviewPassword
	}
	return "unlock-token", nil
}

func (f fakeSiteService) IsUnlocked(cookie string) bool {
	return !f.maintenance || cookie == "unlock-token"
}

type fakeAppSessionService struct {
	lastToken string
	sessions  map[string]*dto.AppSessionResponse
	// sessions held by another instance
	remote map[string]view.View
}

func newFakeAppSessionService() *fakeAppSessionService {
	return &fakeAppSessionService{sessions: map[string]*dto.AppSessionResponse{}, remote: map[string]view.View{}}
}

func (f *fakeAppSessionService) Create(ctx context.Context, req *dto.CreateAppSessionRequest, accessToken string) (*dto.AppSessionResponse, error) {
	f.lastToken = accessToken
	v := req.InitialView
	if v == "" {
		v = "landing"
	}
	res := &dto.AppSessionResponse{Id: "s1", View: v, HasSession: accessToken != ""}
	f.sessions[res.Id] = res
	return res, nil
}

func (f *fakeAppSessionService) Get(ctx context.Context, id string) (*dto.AppSessionResponse, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, service.ErrAppSessionNotFound
}

func (f *fakeAppSessionService) Navigate(ctx context.Context, id string, target string) (*dto.AppSessionResponse, error) {
	if target == "nowhere" {
		return nil, service.ErrInvalidView
	}
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.View = target
	return s, nil
}

func (f *fakeAppSessionService) SetMobileMenu(ctx context.Context, id string, open bool) (*dto.AppSessionResponse, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.MobileMenuOpen = open
	return s, nil
}

func (f *fakeAppSessionService) CheckUsage(ctx context.Context, id string) (*dto.UsageDecisionResponse, error) {
	if _, err := f.Get(ctx, id); err != nil {
		return nil, err
	}
	return &dto.UsageDecisionResponse{Allowed: false, Message: "Sign in to continue"}, nil
}

func (f *fakeAppSessionService) Delete(ctx context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return service.ErrAppSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeAppSessionService) CurrentView(ctx context.Context, id string) (view.View, error) {
	if s, ok := f.sessions[id]; ok {
		return view.View(s.View), nil
	}
	if v, ok := f.remote[id]; ok {
		return v, nil
	}
	return "", service.ErrAppSessionNotFound
}
