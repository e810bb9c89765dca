package billing

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentEventRepository is the idempotency ledger. Insert must be backed
// by a unique constraint on (provider, external id): a duplicate insert
// returns ErrDuplicateEvent, which callers treat as "already processed",
// never as a failure.
type PaymentEventRepository interface {
	// Insert appends a ledger entry. Returns ErrDuplicateEvent when an
	// entry with the same provider and external id already exists.
	Insert(ctx context.Context, event *PaymentEvent) error

	// HasProcessed is the fast pre-check used by ingress to short-circuit
	// obvious redeliveries. It is advisory only: the authoritative check
	// is the Insert inside the state-mutating transaction.
	HasProcessed(ctx context.Context, provider, externalID string) (bool, error)

	// FindByExternalID retrieves a ledger entry; (nil, nil) when absent
	FindByExternalID(ctx context.Context, provider, externalID string) (*PaymentEvent, error)

	// FindUnmatched lists UNMATCHED entries for manual reconciliation
	FindUnmatched(ctx context.Context, filter shared.Filter) (shared.Paginated[PaymentEvent], error)
}

// InvoiceRepository provides access to invoices
type InvoiceRepository interface {
	// FindByID retrieves an invoice; (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindOpenByProjectID lists a project's open invoices
	FindOpenByProjectID(ctx context.Context, projectID uuid.UUID) ([]Invoice, error)

	// Save persists an invoice (insert or update)
	Save(ctx context.Context, invoice *Invoice) error
}
