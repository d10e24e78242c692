package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthFixture() (*memStore, *recordingPublisher, *oauthService) {
	store := newMemStore()
	pub := &recordingPublisher{}
	cfg := &config.Config{}
	cfg.OAuth.GoogleClientID = "client-id"
	cfg.OAuth.GoogleRedirectURL = "http://localhost/api/auth/google/callback"
	cfg.Auth.JwtSecret = testSecret
	cfg.Billing.FreeCredits = 3
	svc := NewOAuthService(store, cfg, pub, logger.NewNopLogger()).(*oauthService)
	return store, pub, svc
}

func TestOAuthLoginURLCarriesState(t *testing.T) {
	_, _, svc := newOAuthFixture()

	res, err := svc.GetLoginURL("google")

	require.NoError(t, err)
	assert.NotEmpty(t, res.State)
	assert.Contains(t, res.URL, "client_id=client-id")
	assert.Contains(t, res.URL, "state=")
}

func TestOAuthRejectsUnknownProvider(t *testing.T) {
	_, _, svc := newOAuthFixture()

	_, err := svc.GetLoginURL("github")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = svc.HandleCallback(context.Background(), "github", "code")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestOAuthFirstSignInCreatesUserAndShop(t *testing.T) {
	store, pub, svc := newOAuthFixture()

	user, err := svc.findOrCreateUser(context.Background(), &googleUser{ID: "g-1", Email: "Ari@Shop.test", GivenName: "Ari"})

	require.NoError(t, err)
	assert.Equal(t, "ari@shop.test", user.Email)

	profile := store.profiles[user.Id]
	require.NotNil(t, profile)
	shop := store.shops[profile.ShopId]
	assert.Equal(t, "Ari's Shop", shop.Name)
	assert.Equal(t, entity.SubscriptionStatusFree, shop.SubscriptionStatus)
	assert.Equal(t, 3, shop.FreeCreditsRemaining)
	require.Len(t, store.providers, 1)
	assert.Equal(t, "g-1", store.providers[0].ProviderUserId)
	assert.Contains(t, pub.types(), events.TypeUserSignedUp)
}

func TestOAuthReturningUserResolvesThroughProviderLink(t *testing.T) {
	store, _, svc := newOAuthFixture()
	ctx := context.Background()

	first, err := svc.findOrCreateUser(ctx, &googleUser{ID: "g-2", Email: "old@shop.test", GivenName: "Bo"})
	require.NoError(t, err)

	// the Google account's email changed since the first sign-in
	again, err := svc.findOrCreateUser(ctx, &googleUser{ID: "g-2", Email: "new@shop.test", GivenName: "Bo"})

	require.NoError(t, err)
	assert.Equal(t, first.Id, again.Id)
	assert.Len(t, store.users, 1)
	assert.Len(t, store.providers, 1)
}

func TestOAuthLinksExistingPasswordAccount(t *testing.T) {
	store, _, svc := newOAuthFixture()
	existing := store.seedUser("sam@shop.test", &entity.Shop{Name: "Sam's Garage"})

	user, err := svc.findOrCreateUser(context.Background(), &googleUser{ID: "g-3", Email: "SAM@shop.test"})

	require.NoError(t, err)
	assert.Equal(t, existing.Id, user.Id)
	assert.Len(t, store.shops, 1)
	require.Len(t, store.providers, 1)
	assert.Equal(t, existing.Id, store.providers[0].UserId)
}

func TestFetchGoogleUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/userinfo") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-9","email":"lee@shop.test","given_name":"Lee","family_name":"Park"}`))
	}))
	defer srv.Close()

	_, _, svc := newOAuthFixture()
	svc.userInfoURL = srv.URL + "/userinfo"

	u, err := svc.fetchGoogleUser(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "g-9", u.ID)
	assert.Equal(t, "Park", u.FamilyName)

	svc.userInfoURL = srv.URL + "/missing"
	_, err = svc.fetchGoogleUser(context.Background(), srv.Client())
	assert.Error(t, err)
}
