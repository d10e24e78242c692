package events

import (
	"context"
	"time"
)

const (
	TypeUserSignedUp          = "USER_SIGNED_UP"
	TypeUserLogin             = "USER_LOGIN"
	TypePasswordReset         = "PASSWORD_RESET"
	TypeFeedbackSubmitted     = "FEEDBACK_SUBMITTED"
	TypeUsageDenied           = "USAGE_DENIED"
	TypeSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	TypePaymentFailed         = "PAYMENT_FAILED"
	TypeWaitlistJoined        = "WAITLIST_JOINED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher is satisfied by the NATS publisher; services depend on this
// rather than on the broker client.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

// Envelope is the wire form carried on the bus.
type Envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

func (e Envelope) Event() BaseEvent {
	return BaseEvent{Type: e.Type, Data: e.Data, OccurredAt: e.OccurredAt}
}
