package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"simpliparts-be/internal/shell"
)

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        struct {
		Id    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (r loginResponse) session() *shell.Session {
	return &shell.Session{
		AccessToken: r.AccessToken,
		UserID:      r.User.Id,
		Email:       r.User.Email,
		ExpiresAt:   r.ExpiresAt,
	}
}

type sessionResponse struct {
	AccessToken  string                 `json:"access_token"`
	UserId       string                 `json:"user_id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	ExpiresAt    time.Time              `json:"expires_at"`
}

// GetCurrentSession validates the stored token with the server. An expired or
// revoked token clears the session and returns nil without error.
func (c *Client) GetCurrentSession(ctx context.Context) (*shell.Session, error) {
	token := c.token()
	if token == "" {
		return nil, nil
	}

	var res sessionResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &res)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s := &shell.Session{
		AccessToken:  res.AccessToken,
		UserID:       res.UserId,
		Email:        res.Email,
		UserMetadata: res.UserMetadata,
		ExpiresAt:    res.ExpiresAt,
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	cp := *s
	return &cp, nil
}

func (c *Client) Subscribe(onChange func(*shell.Session)) (func(), error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = onChange
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*shell.Session, error) {
	var res loginResponse
	body := map[string]interface{}{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	s := res.session()
	c.setSession(s)
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, profile shell.SignUpProfile) (*shell.Session, error) {
	var res loginResponse
	body := map[string]interface{}{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"shop_name":  profile.ShopName,
		"email":      email,
		"password":   password,
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &res); err != nil {
		return nil, err
	}
	s := res.session()
	c.setSession(s)
	return s, nil
}

// SignOut always clears the local session, even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", c.token(), map[string]interface{}{}, nil)
	c.setSession(nil)
	return err
}

func (c *Client) RequestResetCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]interface{}{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]interface{}{
		"email":            email,
		"code":             code,
		"new_password":     newPassword,
		"confirm_password": newPassword,
	}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", "", body, nil)
}
