package delivery

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/domain/project"
)

// TransactionalRepositories provides access to the repositories a delivery
// lifecycle transition touches, scoped to a single transaction.
type TransactionalRepositories interface {
	// Projects returns the project repository scoped to the current transaction
	Projects() project.Repository

	// Deliverables returns the deliverable repository scoped to the current transaction
	Deliverables() delivery.DeliverableRepository

	// Feedbacks returns the feedback repository scoped to the current transaction
	Feedbacks() delivery.FeedbackRepository

	// Signoffs returns the signoff repository scoped to the current transaction
	Signoffs() delivery.SignoffRepository
}

// TransactionScope executes a function atomically. Sign-off writes the
// signoff record, finalizes the deliverable, and releases the project; the
// three must commit or roll back together, or a transient failure strands a
// signoff row against a project that never released and a retry can record
// a second one.
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
