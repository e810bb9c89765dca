package delivery

import "github.com/clientdesk/backend/internal/domain/shared"

// Domain errors for the delivery context
var (
	ErrDeliverableNotFound     = shared.NewDomainError("DELIVERABLE_NOT_FOUND", "Deliverable not found")
	ErrInvalidDeliverableState = shared.NewDomainError("INVALID_DELIVERABLE_STATE", "Deliverable state transition not allowed")
	ErrNotesRequired           = shared.NewDomainError("NOTES_REQUIRED", "Revision feedback requires notes")
	ErrInvalidFeedbackType     = shared.NewDomainError("INVALID_FEEDBACK_TYPE", "Unknown feedback type")
	ErrSubmitterRequired       = shared.NewDomainError("SUBMITTER_REQUIRED", "Submitter name and email are required")
	ErrDuplicateSignoff        = shared.NewDomainError("DUPLICATE_SIGNOFF", "Project already has a release signoff")
)
