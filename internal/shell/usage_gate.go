package shell

import (
	"context"
	"fmt"
	"net/http"

	"simpliparts-be/internal/pkg/logger"
)

// Decision is what the upload screen shows after a usage check.
type Decision struct {
	Allowed          bool   `json:"allowed"`
	Unlimited        bool   `json:"unlimited"`
	RemainingCredits *int   `json:"remaining_credits,omitempty"`
	ShowUpgrade      bool   `json:"show_upgrade"`
	Retryable        bool   `json:"retryable"`
	Message          string `json:"message"`
}

const (
	msgSignIn      = "Sign in to continue"
	msgOutOfCredit = "You have used all of your free audits. Upgrade to keep going."
	msgRetry       = "We couldn't check your usage right now. Please try again."
	msgUnlimited   = "Unlimited audits on your plan"
)

// UsageGate asks billing whether one more audit is allowed. It keeps no
// credit counter of its own.
type UsageGate struct {
	sessions interface{ Session() *Session }
	billing  BillingCollaborator
	logger   logger.ILogger
}

func NewUsageGate(sessions interface{ Session() *Session }, billing BillingCollaborator, log logger.ILogger) *UsageGate {
	return &UsageGate{sessions: sessions, billing: billing, logger: log}
}

func (u *UsageGate) Check(ctx context.Context) Decision {
	session := u.sessions.Session()
	if session == nil {
		return Decision{Message: msgSignIn}
	}

	res, err := u.billing.GuardUsage(ctx, *session)
	if err != nil {
		u.logger.Warn("USAGE_GATE", "Usage guard request failed", map[string]interface{}{"user_id": session.UserID, "error": err.Error()})
		return Decision{Retryable: true, Message: msgRetry}
	}
	return Interpret(res)
}

// Interpret maps a usage-guard answer to a Decision.
func Interpret(res UsageGuardResult) Decision {
	if res.StatusCode == http.StatusPaymentRequired || !res.Allowed {
		return Decision{ShowUpgrade: true, RemainingCredits: res.RemainingCredits, Message: msgOutOfCredit}
	}
	if res.Reason == ReasonActiveSubscription {
		return Decision{Allowed: true, Unlimited: true, Message: msgUnlimited}
	}
	d := Decision{Allowed: true, RemainingCredits: res.RemainingCredits}
	if res.RemainingCredits != nil {
		d.Message = fmt.Sprintf("%d free audit(s) remaining", *res.RemainingCredits)
	}
	return d
}
