package client

import (
	"context"
	"errors"
	"net/http"

	"simpliparts-be/internal/shell"
)

type urlResponse struct {
	URL string `json:"url"`
}

type usageGuardResponse struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason"`
	RemainingCredits *int   `json:"remaining_credits"`
	Status           string `json:"status"`
}

func (c *Client) StartCheckout(ctx context.Context, s shell.Session) (string, error) {
	var res urlResponse
	if err := c.do(ctx, http.MethodPost, "/billing/checkout", s.AccessToken, nil, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (c *Client) OpenBillingPortal(ctx context.Context, s shell.Session) (string, error) {
	var res urlResponse
	if err := c.do(ctx, http.MethodPost, "/billing/portal", s.AccessToken, nil, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

// GuardUsage returns a 402 as a result, not an error.
func (c *Client) GuardUsage(ctx context.Context, s shell.Session) (shell.UsageGuardResult, error) {
	var res usageGuardResponse
	err := c.do(ctx, http.MethodPost, "/billing/usage-guard", s.AccessToken, nil, &res)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
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
