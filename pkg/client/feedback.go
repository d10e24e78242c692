package client

import (
	"context"
	"net/http"

	"simpliparts-be/internal/shell"
)

// SubmitFeedback posts a validated feedback form for the signed-in user.
func (c *Client) SubmitFeedback(ctx context.Context, s shell.Session, form shell.FeedbackForm) error {
	return c.do(ctx, http.MethodPost, "/feedback", s.AccessToken, form, nil)
}
