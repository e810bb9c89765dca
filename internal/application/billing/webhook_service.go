package billing

import (
	"context"
	"fmt"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// ErrWebhookSignature is returned when the transport signature on a webhook
// request cannot be verified against the shared secret
var ErrWebhookSignature = shared.NewDomainError("WEBHOOK_SIGNATURE_INVALID", "Webhook signature verification failed")

// PaymentApplier is the slice of the payment state engine the webhook
// ingress dispatches into
type PaymentApplier interface {
	ApplyCheckoutCompleted(ctx context.Context, evt CheckoutCompletedEvent) (*PaymentResult, error)
	ApplyRefund(ctx context.Context, evt RefundIssuedEvent) (*PaymentResult, error)
}

// WebhookService is the webhook ingress. It verifies the signature over the
// raw bytes before any parsing, filters events by environment tag, and
// dispatches the typed event to the payment state engine. Engine errors are
// propagated so the handler answers with a retryable status; everything else
// is acknowledged so the source stops redelivering.
type WebhookService struct {
	webhookSecret string
	environment   string
	payments      PaymentApplier
	logger        *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	WebhookSecret string
	Environment   string
	Payments      PaymentApplier
	Logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		webhookSecret: cfg.WebhookSecret,
		environment:   cfg.Environment,
		payments:      cfg.Payments,
		logger:        logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Skipped   bool   `json:"skipped,omitempty"`
	Unmatched bool   `json:"unmatched,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and applies a raw webhook request. The payload
// must be the unmodified request body: the signature is computed over the
// raw bytes, so verification happens before any JSON parsing.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, ErrWebhookSignature
	}
	return s.dispatch(ctx, event)
}

// dispatch routes a verified event to the payment state engine
func (s *WebhookService) dispatch(ctx context.Context, event stripe.Event) (*WebhookResult, error) {
	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	decoded, err := DecodeWebhookEvent(event)
	if err != nil {
		// A malformed payload for a known type will be malformed on every
		// redelivery; acknowledge it instead of asking for a retry.
		s.logger.Error("Failed to decode webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = "malformed event payload"
		return result, nil
	}

	switch evt := decoded.(type) {
	case CheckoutCompletedEvent:
		return s.apply(result, evt.Environment, func() (*PaymentResult, error) {
			return s.payments.ApplyCheckoutCompleted(ctx, evt)
		})
	case RefundIssuedEvent:
		return s.apply(result, evt.Environment, func() (*PaymentResult, error) {
			return s.payments.ApplyRefund(ctx, evt)
		})
	case UnknownEvent:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", result.EventType))
		result.Message = "event type not handled"
		return result, nil
	default:
		result.Message = "event type not handled"
		return result, nil
	}
}

func (s *WebhookService) apply(result *WebhookResult, environment string, fn func() (*PaymentResult, error)) (*WebhookResult, error) {
	if environment != s.environment {
		// Shared processor accounts deliver events from every environment.
		// Foreign events are acknowledged without effect so the source does
		// not retry them against the wrong deployment.
		s.logger.Info("Ignoring webhook event from different environment",
			zap.String("event_id", result.EventID),
			zap.String("event_environment", environment),
			zap.String("running_environment", s.environment))
		result.Ignored = true
		result.Message = "environment mismatch"
		return result, nil
	}

	applied, err := fn()
	if err != nil {
		s.logger.Error("Failed to apply webhook event",
			zap.String("event_id", result.EventID),
			zap.String("event_type", result.EventType),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, fmt.Errorf("failed to apply webhook event %s: %w", result.EventID, err)
	}

	result.Skipped = applied.Skipped
	result.Unmatched = applied.Unmatched
	switch {
	case applied.Unmatched:
		result.Message = "no matching project; recorded for reconciliation"
	case applied.Skipped:
		result.Message = "already processed"
	}
	return result, nil
}
