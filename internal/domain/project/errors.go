package project

import "github.com/clientdesk/backend/internal/domain/shared"

// Domain errors for the project context. Guard violations carry specific
// codes so callers can distinguish a structured refusal from a validation
// failure.
var (
	ErrProjectNotFound = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
	ErrAlreadyPaid     = shared.NewDomainError("ALREADY_PAID", "Project is already paid")
	ErrNotPaid         = shared.NewDomainError("NOT_PAID", "Project has no payment to refund")
	ErrProjectRefunded = shared.NewDomainError("PROJECT_REFUNDED", "Project has been refunded and cannot be paid again")
	ErrPaymentRequired = shared.NewDomainError("PAYMENT_REQUIRED", "Payment is required before release")
	ErrInvalidStage    = shared.NewDomainError("INVALID_STAGE_TRANSITION", "Portal stage transition not allowed")
)
