package billing

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
)

// Ledger provider tags
const (
	ProviderStripe = "stripe"
	ProviderManual = "manual"
)

// Stripe event types the ingress dispatches on
const (
	stripeEventCheckoutCompleted     = "checkout.session.completed"
	stripeEventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	stripeEventChargeRefunded        = "charge.refunded"
)

// Metadata keys the payment processor echoes back on events. The correlation
// token is set when the payment link is created and must come back unchanged.
const (
	metadataKeyToken       = "project_token"
	metadataKeyEnvironment = "environment"
)

// WebhookEvent is the typed union of inbound payment events. Dispatch is an
// exhaustive type switch; payloads that don't decode into one of the known
// shapes come back as UnknownEvent.
type WebhookEvent interface {
	isWebhookEvent()
}

// CheckoutCompletedEvent signals a completed checkout for a project
type CheckoutCompletedEvent struct {
	EventID          string
	EventType        string
	CorrelationToken string
	Environment      string
	SessionID        string
}

func (CheckoutCompletedEvent) isWebhookEvent() {}

// RefundIssuedEvent signals that a charge for a project was refunded
type RefundIssuedEvent struct {
	EventID          string
	EventType        string
	CorrelationToken string
	Environment      string
	ChargeID         string
}

func (RefundIssuedEvent) isWebhookEvent() {}

// UnknownEvent carries an event type this service does not act on. It is
// acknowledged so the source stops redelivering it.
type UnknownEvent struct {
	EventID   string
	EventType string
}

func (UnknownEvent) isWebhookEvent() {}

// DecodeWebhookEvent maps a verified Stripe event onto the typed union
func DecodeWebhookEvent(event stripe.Event) (WebhookEvent, error) {
	switch string(event.Type) {
	case stripeEventCheckoutCompleted, stripeEventAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		token := session.ClientReferenceID
		if token == "" {
			token = session.Metadata[metadataKeyToken]
		}
		return CheckoutCompletedEvent{
			EventID:          event.ID,
			EventType:        string(event.Type),
			CorrelationToken: token,
			Environment:      session.Metadata[metadataKeyEnvironment],
			SessionID:        session.ID,
		}, nil

	case stripeEventChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("failed to unmarshal charge: %w", err)
		}
		return RefundIssuedEvent{
			EventID:          event.ID,
			EventType:        string(event.Type),
			CorrelationToken: charge.Metadata[metadataKeyToken],
			Environment:      charge.Metadata[metadataKeyEnvironment],
			ChargeID:         charge.ID,
		}, nil

	default:
		return UnknownEvent{
			EventID:   event.ID,
			EventType: string(event.Type),
		}, nil
	}
}
