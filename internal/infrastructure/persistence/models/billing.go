package models

import (
	"encoding/json"
	"time"

	"github.com/clientdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEventModel maps the idempotency ledger to the payment_events
// table. The unique index on (provider, external_id) is the serialization
// point for concurrent redeliveries. project_id is nullable so UNMATCHED
// entries survive, and is severed (not cascaded) on project deletion.
type PaymentEventModel struct {
	BaseModel
	Provider    string     `gorm:"size:32;not null;uniqueIndex:idx_payment_events_provider_external_id"`
	ExternalID  string     `gorm:"size:255;not null;uniqueIndex:idx_payment_events_provider_external_id"`
	EventType   string     `gorm:"size:128;not null"`
	Status      string     `gorm:"size:16;not null;index"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index"`
	OperatorID  *string    `gorm:"size:64"`
	ErrorMsg    *string    `gorm:"size:1024"`
	Metadata    string     `gorm:"type:text"`
	ProcessedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for PaymentEventModel
func (PaymentEventModel) TableName() string {
	return "payment_events"
}

// ToDomain converts PaymentEventModel to a domain PaymentEvent
func (m *PaymentEventModel) ToDomain() *billing.PaymentEvent {
	e := &billing.PaymentEvent{
		BaseEntity:  m.BaseModel.ToDomain(),
		Provider:    m.Provider,
		ExternalID:  m.ExternalID,
		EventType:   m.EventType,
		Status:      billing.EventStatus(m.Status),
		ProjectID:   m.ProjectID,
		OperatorID:  m.OperatorID,
		ErrorMsg:    m.ErrorMsg,
		Metadata:    make(map[string]string),
		ProcessedAt: m.ProcessedAt,
	}
	if m.Metadata != "" {
		// corrupt metadata is tolerated; the ledger entry itself matters more
		_ = json.Unmarshal([]byte(m.Metadata), &e.Metadata)
	}
	return e
}

// PaymentEventModelFromDomain converts a domain PaymentEvent to PaymentEventModel
func PaymentEventModelFromDomain(e *billing.PaymentEvent) *PaymentEventModel {
	m := &PaymentEventModel{
		Provider:    e.Provider,
		ExternalID:  e.ExternalID,
		EventType:   e.EventType,
		Status:      string(e.Status),
		ProjectID:   e.ProjectID,
		OperatorID:  e.OperatorID,
		ErrorMsg:    e.ErrorMsg,
		ProcessedAt: e.ProcessedAt,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	if len(e.Metadata) > 0 {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			m.Metadata = string(raw)
		}
	}
	return m
}

// InvoiceModel maps the Invoice aggregate to the invoices table
type InvoiceModel struct {
	AggregateModel
	Number    string          `gorm:"size:64;not null;uniqueIndex"`
	ProjectID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency  string          `gorm:"size:3;not null;default:'USD'"`
	Status    string          `gorm:"size:16;not null;default:'OPEN';index"`
	PaidAt    *time.Time
}

// TableName returns the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts InvoiceModel to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		Number:    m.Number,
		ProjectID: m.ProjectID,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    billing.InvoiceStatus(m.Status),
		PaidAt:    m.PaidAt,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	return inv
}

// InvoiceModelFromDomain converts a domain Invoice to InvoiceModel
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:    inv.Number,
		ProjectID: inv.ProjectID,
		Amount:    inv.Amount,
		Currency:  inv.Currency,
		Status:    string(inv.Status),
		PaidAt:    inv.PaidAt,
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}
