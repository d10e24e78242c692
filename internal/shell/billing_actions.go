package shell

import (
	"context"

	"simpliparts-be/internal/pkg/logger"
)

// ActionResult is either a URL to open or a dismissable message.
type ActionResult struct {
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ActionResult) OK() bool { return r.URL != "" }

type BillingActions struct {
	gate    *SessionGate
	billing BillingCollaborator
	logger  logger.ILogger
}

func NewBillingActions(gate *SessionGate, billing BillingCollaborator, log logger.ILogger) *BillingActions {
	return &BillingActions{gate: gate, billing: billing, logger: log}
}

// Label is the billing button text for the held profile.
func (b *BillingActions) Label() string {
	if b.gate.Shop().HasActiveSubscription() {
		return "Manage Billing"
	}
	return "Upgrade to Pro"
}

func (b *BillingActions) Upgrade(ctx context.Context) ActionResult {
	return b.run(ctx, "checkout", b.billing.StartCheckout, "Could not start checkout. Please try again.")
}

func (b *BillingActions) Manage(ctx context.Context) ActionResult {
	return b.run(ctx, "portal", b.billing.OpenBillingPortal, "Could not open the billing portal. Please try again.")
}

// Primary runs whichever action Label describes.
func (b *BillingActions) Primary(ctx context.Context) ActionResult {
	if b.gate.Shop().HasActiveSubscription() {
		return b.Manage(ctx)
	}
	return b.Upgrade(ctx)
}

func (b *BillingActions) run(ctx context.Context, name string, call func(context.Context, Session) (string, error), failure string) ActionResult {
	session := b.gate.Session()
	if session == nil {
		return ActionResult{Message: msgSignIn}
	}
	url, err := call(ctx, *session)
	if err != nil || url == "" {
		details := map[string]interface{}{"action": name}
		if err != nil {
			details["error"] = err.Error()
		}
		b.logger.Warn("BILLING_ACTIONS", "Billing action failed", details)
		return ActionResult{Message: failure}
	}
	return ActionResult{URL: url}
}
