package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/shell"
	"simpliparts-be/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "6a1f0c55-3b1d-4e5f-9b8a-0a0b0c0d0e0f"

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 300,
		"code":    status,
		"message": message,
		"data":    data,
	})
}

type fakeAPI struct {
	credits   int32
	validTok  string
	lastAuthz atomic.Value
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Secret123" {
			writeEnvelope(w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Login successful", map[string]interface{}{
			"access_token": f.validTok,
			"expires_at":   time.Now().Add(time.Hour),
			"user":         map[string]string{"id": userID, "email": body["email"]},
		})
	})
	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "Validation failed", map[string]string{"password": "must contain an uppercase letter"})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "Logged out", nil)
	})
	mux.HandleFunc("/api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.validTok {
			writeEnvelope(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Session", map[string]interface{}{
			"access_token": f.validTok, "user_id": userID, "email": "owner@shop.test",
		})
	})
	mux.HandleFunc("/api/shop", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuthz.Store(r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "Shop retrieved", map[string]interface{}{
			"id": "shop-1", "name": "Main Street Auto", "subscription_status": "free",
			"free_credits_remaining": atomic.LoadInt32(&f.credits), "notification_emails": []string{},
		})
	})
	mux.HandleFunc("/api/billing/usage-guard", func(w http.ResponseWriter, r *http.Request) {
		left := atomic.AddInt32(&f.credits, -1)
		if left < 0 {
			writeEnvelope(w, http.StatusPaymentRequired, "no free audits left", map[string]interface{}{
				"allowed": false, "remaining_credits": 0, "status": "free",
			})
			return
		}
		writeEnvelope(w, http.StatusOK, "Usage allowed", map[string]interface{}{
			"allowed": true, "reason": "free_credit", "remaining_credits": left, "status": "free",
		})
	})
	mux.HandleFunc("/api/billing/portal", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "no billing customer", nil)
	})
	return mux
}

func newServer(t *testing.T, credits int32) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{credits: credits, validTok: "tok-1"}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return api, srv
}

func TestSignInNotifiesSubscribers(t *testing.T) {
	_, srv := newServer(t, 3)
	c := New(srv.URL + "/api")

	var got []*shell.Session
	unsub, err := c.Subscribe(func(s *shell.Session) { got = append(got, s) })
	require.NoError(t, err)

	_, err = c.SignInWithPassword(context.Background(), "owner@shop.test", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Empty(t, got)

	s, err := c.SignInWithPassword(context.Background(), "owner@shop.test", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, userID, s.UserID)
	require.Len(t, got, 1)
	assert.Equal(t, "tok-1", got[0].AccessToken)

	require.NoError(t, c.SignOut(context.Background()))
	require.Len(t, got, 2)
	assert.Nil(t, got[1])

	unsub()
	unsub()
	_, _ = c.SignInWithPassword(context.Background(), "owner@shop.test", "Secret123")
	assert.Len(t, got, 2)
}

func TestSignUpReturnsFieldErrors(t *testing.T) {
	_, srv := newServer(t, 3)
	c := New(srv.URL + "/api")

	_, err := c.SignUp(context.Background(), "new@shop.test", "weak", shell.SignUpProfile{FirstName: "A", LastName: "B", ShopName: "C"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "must contain an uppercase letter", apiErr.Fields["password"])
}

func TestGetCurrentSession(t *testing.T) {
	_, srv := newServer(t, 3)

	s, err := New(srv.URL + "/api").GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	stale := New(srv.URL+"/api", WithSession(&shell.Session{AccessToken: "expired"}))
	s, err = stale.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	fresh := New(srv.URL+"/api", WithSession(&shell.Session{AccessToken: "tok-1"}))
	s, err = fresh.GetCurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "owner@shop.test", s.Email)
}

func TestGuardUsageMaps402ToResult(t *testing.T) {
	_, srv := newServer(t, 1)
	c := New(srv.URL + "/api")
	sess := shell.Session{AccessToken: "tok-1", UserID: userID}

	res, err := c.GuardUsage(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, shell.ReasonFreeCredit, res.Reason)
	require.NotNil(t, res.RemainingCredits)
	assert.Equal(t, 0, *res.RemainingCredits)

	res, err = c.GuardUsage(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, http.StatusPaymentRequired, res.StatusCode)
}

func TestPortalErrorSurfaces(t *testing.T) {
	_, srv := newServer(t, 1)
	_, err := New(srv.URL+"/api").OpenBillingPortal(context.Background(), shell.Session{AccessToken: "tok-1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no billing customer", apiErr.Message)
}

func TestTransportErrorIsReturned(t *testing.T) {
	c := New("http://127.0.0.1:1/api", WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))
	_, err := c.FetchShop(context.Background(), shell.Session{AccessToken: "tok-1"})
	assert.Error(t, err)
}

func TestDrivesSessionGate(t *testing.T) {
	api, srv := newServer(t, 2)
	c := New(srv.URL + "/api")

	router := view.NewRouter(view.Login)
	gate := shell.NewSessionGate(c, c, router, logger.NewNopLogger())
	require.NoError(t, gate.Mount(context.Background()))
	defer gate.Close()
	assert.Equal(t, view.Login, router.Current())

	_, err := c.SignInWithPassword(context.Background(), "owner@shop.test", "Secret123")
	require.NoError(t, err)

	assert.Equal(t, view.Dashboard, router.Current())
	require.Eventually(t, func() bool { return gate.Shop() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Main Street Auto", gate.Shop().Name)
	assert.Equal(t, "Bearer tok-1", api.lastAuthz.Load())

	usage := shell.NewUsageGate(gate, c, logger.NewNopLogger())
	d := usage.Check(context.Background())
	assert.True(t, d.Allowed)
	require.NotNil(t, d.RemainingCredits)
	assert.Equal(t, 1, *d.RemainingCredits)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, view.Landing, router.Current())
}
