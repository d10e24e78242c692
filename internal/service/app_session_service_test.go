package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/dto"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/repository/memory"
	"simpliparts-be/internal/view"
	"simpliparts-be/pkg/authbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFanout struct {
	mu        sync.Mutex
	views     []view.View
	tracked   map[string]view.View
	remote    map[string]view.View
	forgotten []string
}

func newRecordingFanout() *recordingFanout {
	return &recordingFanout{tracked: map[string]view.View{}, remote: map[string]view.View{}}
}

func (p *recordingFanout) Track(id string, v view.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked[id] = v
}

func (p *recordingFanout) PushView(id string, v view.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
	p.tracked[id] = v
}

func (p *recordingFanout) RemoteView(ctx context.Context, id string) (view.View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.remote[id]
	return v, ok
}

func (p *recordingFanout) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forgotten = append(p.forgotten, id)
	delete(p.tracked, id)
}

type appFixture struct {
	store  *memStore
	bus    *authbus.Bus
	repo   *memory.AppSessionRepository
	auth   IAuthService
	fanout *recordingFanout
	svc    IAppSessionService
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	log := logger.NewNopLogger()
	f := &appFixture{
		store:  newMemStore(),
		bus:    authbus.New(nil),
		repo:   memory.NewAppSessionRepository(),
		fanout: newRecordingFanout(),
	}
	f.auth = NewAuthService(f.store, newFakeMailer(), nil, f.bus, testSecret, 1, log)
	shops := NewShopService(f.store)
	billing := NewBillingService(f.store, &fakeSnap{}, nil, &config.Config{}, log)
	f.svc = NewAppSessionService(f.repo, f.bus, f.auth, shops, billing, f.fanout, log)
	t.Cleanup(func() {
		f.repo.Close()
		f.bus.Close()
	})
	return f
}

func TestAppSessionFollowsSignInAndOut(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{InitialView: "login"}, "")
	require.NoError(t, err)
	assert.Equal(t, "login", created.View)
	assert.False(t, created.HasSession)

	_, err = f.auth.SignUp(ctx, signUpReq(), dto.ClientMeta{AppSessionId: created.Id})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", got.View)
	assert.True(t, got.HasSession)
	require.Eventually(t, func() bool {
		s, _ := f.svc.Get(ctx, created.Id)
		return s.Shop != nil && s.Shop.Name == "Ruiz Auto"
	}, time.Second, 10*time.Millisecond)

	_, err = f.svc.Navigate(ctx, created.Id, "shop-settings")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, "", dto.ClientMeta{AppSessionId: created.Id}))
	got, err = f.svc.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "landing", got.View)
	assert.Nil(t, got.Shop)

	f.fanout.mu.Lock()
	assert.Equal(t, []view.View{view.Dashboard, view.ShopSettings, view.Landing}, f.fanout.views)
	assert.Equal(t, view.Landing, f.fanout.tracked[created.Id])
	f.fanout.mu.Unlock()
}

func TestAppSessionMountWithTokenKeepsDeepLink(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	resp, err := f.auth.SignUp(ctx, signUpReq(), dto.ClientMeta{})
	require.NoError(t, err)

	created, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{InitialView: "ro-audit"}, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ro-audit", created.View)
	assert.True(t, created.HasSession)

	landing, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{}, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", landing.View)
}

func TestAppSessionUsageCheck(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	resp, err := f.auth.SignUp(ctx, signUpReq(), dto.ClientMeta{})
	require.NoError(t, err)
	created, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{InitialView: "upload-files"}, resp.AccessToken)
	require.NoError(t, err)

	first, err := f.svc.CheckUsage(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 0, *first.RemainingCredits)

	second, err := f.svc.CheckUsage(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.True(t, second.ShowUpgrade)
}

func TestAppSessionErrors(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{InitialView: "nowhere"}, "")
	assert.ErrorIs(t, err, ErrInvalidView)

	_, err = f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrAppSessionNotFound)

	created, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{}, "")
	require.NoError(t, err)

	_, err = f.svc.Navigate(ctx, created.Id, "nowhere")
	assert.ErrorIs(t, err, ErrInvalidView)

	menu, err := f.svc.SetMobileMenu(ctx, created.Id, true)
	require.NoError(t, err)
	assert.True(t, menu.MobileMenuOpen)

	require.NoError(t, f.svc.Delete(ctx, created.Id))
	assert.ErrorIs(t, f.svc.Delete(ctx, created.Id), ErrAppSessionNotFound)
	_, err = f.svc.CurrentView(ctx, created.Id)
	assert.ErrorIs(t, err, ErrAppSessionNotFound)

	f.fanout.mu.Lock()
	assert.Equal(t, []string{created.Id}, f.fanout.forgotten)
	f.fanout.mu.Unlock()
}

func TestAppSessionCurrentView(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &dto.CreateAppSessionRequest{InitialView: "about"}, "")
	require.NoError(t, err)
	f.fanout.mu.Lock()
	assert.Equal(t, view.About, f.fanout.tracked[created.Id])
	f.fanout.remote["elsewhere"] = view.RODetail
	f.fanout.mu.Unlock()

	_, err = f.svc.Navigate(ctx, created.Id, "contact")
	require.NoError(t, err)
	v, err := f.svc.CurrentView(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, view.Contact, v)

	v, err = f.svc.CurrentView(ctx, "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, view.RODetail, v)

	_, err = f.svc.CurrentView(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAppSessionNotFound)
}
