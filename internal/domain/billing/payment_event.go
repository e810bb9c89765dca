package billing

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventStatus is the recorded outcome of an externally observed payment event
type EventStatus string

const (
	EventStatusSuccess   EventStatus = "SUCCESS"
	EventStatusFailed    EventStatus = "FAILED"
	EventStatusUnmatched EventStatus = "UNMATCHED"
)

// PaymentEvent is one row of the idempotency ledger: one entry per distinct
// externally observed event, keyed by the provider-assigned event id.
// Entries are append-only; they are created exactly once and never mutated
// or deleted. The unique constraint on (provider, event id) is the
// serialization point for concurrent redeliveries.
type PaymentEvent struct {
	shared.BaseEntity
	Provider    string
	ExternalID  string
	EventType   string
	Status      EventStatus
	ProjectID   *uuid.UUID
	OperatorID  *string
	ErrorMsg    *string
	Metadata    map[string]string
	ProcessedAt time.Time
}

// NewPaymentEvent creates a ledger entry for a successfully applied event
func NewPaymentEvent(provider, externalID, eventType string, projectID uuid.UUID) (*PaymentEvent, error) {
	e, err := newEvent(provider, externalID, eventType, EventStatusSuccess)
	if err != nil {
		return nil, err
	}
	e.ProjectID = &projectID
	return e, nil
}

// NewUnmatchedPaymentEvent creates a ledger entry for an event that could
// not be resolved to a project; retained for manual reconciliation
func NewUnmatchedPaymentEvent(provider, externalID, eventType, reason string) (*PaymentEvent, error) {
	e, err := newEvent(provider, externalID, eventType, EventStatusUnmatched)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		e.ErrorMsg = &reason
	}
	return e, nil
}

// NewFailedPaymentEvent creates a ledger entry for an event whose state
// mutation was refused by a domain guard
func NewFailedPaymentEvent(provider, externalID, eventType, errorMsg string, projectID *uuid.UUID) (*PaymentEvent, error) {
	e, err := newEvent(provider, externalID, eventType, EventStatusFailed)
	if err != nil {
		return nil, err
	}
	e.ProjectID = projectID
	if errorMsg != "" {
		e.ErrorMsg = &errorMsg
	}
	return e, nil
}

func newEvent(provider, externalID, eventType string, status EventStatus) (*PaymentEvent, error) {
	if strings.TrimSpace(provider) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Event provider is required")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Event ID is required")
	}
	return &PaymentEvent{
		BaseEntity:  shared.NewBaseEntity(),
		Provider:    provider,
		ExternalID:  externalID,
		EventType:   eventType,
		Status:      status,
		Metadata:    make(map[string]string),
		ProcessedAt: time.Now(),
	}, nil
}

// WithOperator tags the entry with the administrative operator who caused
// it (manual override path) and the audit reason
func (e *PaymentEvent) WithOperator(operatorID, reason string) *PaymentEvent {
	e.OperatorID = &operatorID
	if reason != "" {
		e.Metadata["reason"] = reason
	}
	return e
}

// WithMetadata attaches an opaque key/value pair to the entry
func (e *PaymentEvent) WithMetadata(key, value string) *PaymentEvent {
	e.Metadata[key] = value
	return e
}
