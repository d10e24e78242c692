// Package shell is the application shell: it keeps one client's current view
// consistent with its authentication state, loads the shop profile for the
// signed-in user and interprets usage-guard answers from billing.
package shell

import (
	"context"
	"time"
)

// Session is the proof of identity handed out by the auth collaborator.
type Session struct {
	AccessToken  string
	UserID       string
	Email        string
	UserMetadata map[string]interface{}
	ExpiresAt    time.Time
}

type ShopProfile struct {
	ID                           string
	Name                         string
	SubscriptionStatus           string
	FreeCreditsRemaining         int
	SubscriptionCurrentPeriodEnd *time.Time
	BillingCustomerID            *string
	NotificationEmails           []string
}

func (p *ShopProfile) HasActiveSubscription() bool {
	return p != nil && p.SubscriptionStatus == "active"
}

type SignUpProfile struct {
	FirstName string
	LastName  string
	ShopName  string
}

type AuthCollaborator interface {
	GetCurrentSession(ctx context.Context) (*Session, error)
	// Subscribe registers onChange for sign-in, sign-out and refresh events.
	// A nil session means signed out. The returned func must be safe to call
	// more than once.
	Subscribe(onChange func(*Session)) (unsubscribe func(), err error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, profile SignUpProfile) (*Session, error)
	SignOut(ctx context.Context) error
}

type ShopCollaborator interface {
	FetchShop(ctx context.Context, session Session) (*ShopProfile, error)
}

const (
	ReasonActiveSubscription = "active_subscription"
	ReasonFreeCredit         = "free_credit"
)

// UsageGuardResult is the raw usage-guard answer. StatusCode carries the HTTP
// status so a 402 can be told apart from a transport failure.
type UsageGuardResult struct {
	Allowed          bool
	Reason           string
	RemainingCredits *int
	Status           string
	StatusCode       int
}

type BillingCollaborator interface {
	StartCheckout(ctx context.Context, session Session) (string, error)
	OpenBillingPortal(ctx context.Context, session Session) (string, error)
	GuardUsage(ctx context.Context, session Session) (UsageGuardResult, error)
}
