package billing

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/billing"
	"github.com/clientdesk/backend/internal/domain/project"
)

// TransactionalRepositories provides access to the repositories the payment
// state engine touches, scoped to a single transaction.
type TransactionalRepositories interface {
	// Projects returns the project repository scoped to the current transaction
	Projects() project.Repository

	// PaymentEvents returns the idempotency ledger scoped to the current transaction
	PaymentEvents() billing.PaymentEventRepository

	// Invoices returns the invoice repository scoped to the current transaction
	Invoices() billing.InvoiceRepository
}

// TransactionScope executes a function atomically. The ledger insert and the
// project mutation it guards must commit or roll back together; running them
// in one scope is what makes the unique-constraint insert the serialization
// point for concurrent redeliveries.
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
