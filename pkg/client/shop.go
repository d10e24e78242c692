package client

import (
	"context"
	"net/http"
	"time"

	"simpliparts-be/internal/shell"
)

type shopInfo struct {
	Id                           string     `json:"id"`
	Name                         string     `json:"name"`
	SubscriptionStatus           string     `json:"subscription_status"`
	FreeCreditsRemaining         int        `json:"free_credits_remaining"`
	SubscriptionCurrentPeriodEnd *time.Time `json:"subscription_current_period_end"`
	BillingCustomerId            *string    `json:"billing_customer_id"`
	NotificationEmails           []string   `json:"notification_emails"`
}

func (c *Client) FetchShop(ctx context.Context, s shell.Session) (*shell.ShopProfile, error) {
	var res shopInfo
	if err := c.do(ctx, http.MethodGet, "/shop", s.AccessToken, nil, &res); err != nil {
		return nil, err
	}
	return &shell.ShopProfile{
		ID:                           res.Id,
		Name:                         res.Name,
		SubscriptionStatus:           res.SubscriptionStatus,
		FreeCreditsRemaining:         res.FreeCreditsRemaining,
		SubscriptionCurrentPeriodEnd: res.SubscriptionCurrentPeriodEnd,
		BillingCustomerID:            res.BillingCustomerId,
		NotificationEmails:           res.NotificationEmails,
	}, nil
}

// UpdateNotificationEmails replaces the shop's notification list.
func (c *Client) UpdateNotificationEmails(ctx context.Context, s shell.Session, emails []string) error {
	return c.do(ctx, http.MethodPut, "/shop/notification-emails", s.AccessToken, map[string]interface{}{"emails": emails}, nil)
}
