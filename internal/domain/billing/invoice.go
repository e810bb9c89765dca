package billing

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen InvoiceStatus = "OPEN"
	InvoiceStatusPaid InvoiceStatus = "PAID"
	InvoiceStatusVoid InvoiceStatus = "VOID"
)

// Invoice correlates a project's billable amount with its payment. Line
// items and editing live outside this core; the payment state engine only
// flips open invoices to PAID inside the same transaction as the project
// mutation.
type Invoice struct {
	shared.BaseAggregateRoot
	Number    string
	ProjectID uuid.UUID
	Amount    decimal.Decimal
	Currency  string
	Status    InvoiceStatus
	PaidAt    *time.Time
}

// NewInvoice creates an open invoice for a project
func NewInvoice(number string, projectID uuid.UUID, amount decimal.Decimal, currency string) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice amount cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ProjectID:         projectID,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		Status:            InvoiceStatusOpen,
	}, nil
}

// MarkPaid flips an open invoice to PAID. Already-paid invoices are left
// untouched so redeliveries stay idempotent.
func (i *Invoice) MarkPaid() {
	if i.Status == InvoiceStatusPaid {
		return
	}
	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
}

// MarkVoid voids an open invoice (refund path)
func (i *Invoice) MarkVoid() error {
	if i.Status == InvoiceStatusVoid {
		return nil
	}
	i.Status = InvoiceStatusVoid
	i.PaidAt = nil
	i.UpdatedAt = time.Now()
	return nil
}
