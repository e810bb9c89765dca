package billing

import "github.com/clientdesk/backend/internal/domain/shared"

// Domain errors for the billing context
var (
	// ErrDuplicateEvent signals that the ledger already holds an entry for
	// the event id: the caller lost the insert race (or is a redelivery)
	// and must not mutate state.
	ErrDuplicateEvent = shared.NewDomainError("DUPLICATE_EVENT", "Event has already been processed")

	ErrInvoiceNotFound = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
)
