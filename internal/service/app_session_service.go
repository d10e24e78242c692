package service

import (
	"context"
	"time"

	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/memory"
	"simpliparts-be/internal/shell"
	"simpliparts-be/internal/view"
	"simpliparts-be/pkg/authbus"

	"github.com/google/uuid"
)

const mountTimeout = 10 * time.Second

// ViewFanout carries an app session's view to every socket watching it, on
// this instance or another one.
type ViewFanout interface {
	Track(appSessionId string, v view.View)
	PushView(appSessionId string, v view.View)
	RemoteView(ctx context.Context, appSessionId string) (view.View, bool)
	Forget(appSessionId string)
}

type IAppSessionService interface {
	Create(ctx context.Context, req *dto.CreateAppSessionRequest, accessToken string) (*dto.AppSessionResponse, error)
	Get(ctx context.Context, id string) (*dto.AppSessionResponse, error)
	Navigate(ctx context.Context, id string, target string) (*dto.AppSessionResponse, error)
	SetMobileMenu(ctx context.Context, id string, open bool) (*dto.AppSessionResponse, error)
	CheckUsage(ctx context.Context, id string) (*dto.UsageDecisionResponse, error)
	Delete(ctx context.Context, id string) error
	// CurrentView also answers for app sessions held by another instance.
	CurrentView(ctx context.Context, id string) (view.View, error)
}

type appSessionService struct {
	repo    *memory.AppSessionRepository
	bus     *authbus.Bus
	auth    IAuthService
	shops   IShopService
	billing IBillingService
	fanout  ViewFanout
	logger  logger.ILogger
}

func NewAppSessionService(
	repo *memory.AppSessionRepository,
	bus *authbus.Bus,
	auth IAuthService,
	shops IShopService,
	billing IBillingService,
	fanout ViewFanout,
	log logger.ILogger,
) IAppSessionService {
	return &appSessionService{
		repo:    repo,
		bus:     bus,
		auth:    auth,
		shops:   shops,
		billing: billing,
		fanout:  fanout,
		logger:  log,
	}
}

func (s *appSessionService) Create(ctx context.Context, req *dto.CreateAppSessionRequest, accessToken string) (*dto.AppSessionResponse, error) {
	initial := view.Landing
	if req.InitialView != "" {
		v, err := view.Parse(req.InitialView)
		if err != nil {
			return nil, ErrInvalidView
		}
		initial = v
	}

	id := uuid.NewString()
	auth := &busAuth{appSessionId: id, initialToken: accessToken, auth: s.auth, bus: s.bus}
	inst := shell.NewInstance(id, initial, auth, shopLoader{shops: s.shops}, billingGateway{billing: s.billing}, s.logger)

	if s.fanout != nil {
		s.fanout.Track(id, inst.Router.Current())
		inst.Router.OnChange(func(_, to view.View) { s.fanout.PushView(id, to) })
	}

	mountCtx, cancel := context.WithTimeout(ctx, mountTimeout)
	defer cancel()
	if err := inst.Gate.Mount(mountCtx); err != nil {
		inst.Close()
		return nil, err
	}

	s.repo.Save(inst)
	s.logger.Info("APP_SESSION", "App session created", map[string]interface{}{"id": id, "view": string(inst.Router.Current())})
	return s.snapshot(inst), nil
}

func (s *appSessionService) find(id string) (*shell.Instance, error) {
	inst, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrAppSessionNotFound
	}
	return inst, nil
}

func (s *appSessionService) snapshot(inst *shell.Instance) *dto.AppSessionResponse {
	resp := &dto.AppSessionResponse{
		Id:             inst.ID,
		View:           string(inst.Router.Current()),
		HasSession:     inst.Gate.Session() != nil,
		MobileMenuOpen: inst.MobileMenuOpen(),
	}
	if p := inst.Gate.Shop(); p != nil {
		shopId, _ := uuid.Parse(p.ID)
		resp.Shop = &dto.ShopInfoResponse{
			Id:                           shopId,
			Name:                         p.Name,
			SubscriptionStatus:           p.SubscriptionStatus,
			FreeCreditsRemaining:         p.FreeCreditsRemaining,
			SubscriptionCurrentPeriodEnd: p.SubscriptionCurrentPeriodEnd,
			BillingCustomerId:            p.BillingCustomerID,
			NotificationEmails:           p.NotificationEmails,
		}
	}
	return resp
}

func (s *appSessionService) Get(ctx context.Context, id string) (*dto.AppSessionResponse, error) {
	inst, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(inst), nil
}

func (s *appSessionService) Navigate(ctx context.Context, id string, target string) (*dto.AppSessionResponse, error) {
	v, err := view.Parse(target)
	if err != nil {
		return nil, ErrInvalidView
	}
	inst, err := s.find(id)
	if err != nil {
		return nil, err
	}
	inst.Router.Navigate(v)
	return s.snapshot(inst), nil
}

func (s *appSessionService) SetMobileMenu(ctx context.Context, id string, open bool) (*dto.AppSessionResponse, error) {
	inst, err := s.find(id)
	if err != nil {
		return nil, err
	}
	inst.SetMobileMenu(open)
	return s.snapshot(inst), nil
}

func (s *appSessionService) CheckUsage(ctx context.Context, id string) (*dto.UsageDecisionResponse, error) {
	inst, err := s.find(id)
	if err != nil {
		return nil, err
	}
	d := inst.Usage.Check(ctx)
	return &dto.UsageDecisionResponse{
		Allowed:          d.Allowed,
		Unlimited:        d.Unlimited,
		RemainingCredits: d.RemainingCredits,
		ShowUpgrade:      d.ShowUpgrade,
		Retryable:        d.Retryable,
		Message:          d.Message,
	}, nil
}

func (s *appSessionService) Delete(ctx context.Context, id string) error {
	if !s.repo.Delete(id) {
		return ErrAppSessionNotFound
	}
	if s.fanout != nil {
		s.fanout.Forget(id)
	}
	s.logger.Info("APP_SESSION", "App session disposed", map[string]interface{}{"id": id})
	return nil
}

func (s *appSessionService) CurrentView(ctx context.Context, id string) (view.View, error) {
	if inst, ok := s.repo.Get(id); ok {
		return inst.Router.Current(), nil
	}
	if s.fanout != nil {
		if v, ok := s.fanout.RemoteView(ctx, id); ok {
			return v, nil
		}
	}
	return "", ErrAppSessionNotFound
}
