package delivery

import (
	"strings"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FeedbackType classifies a client's response to a deliverable version
type FeedbackType string

const (
	FeedbackApprove       FeedbackType = "APPROVE"
	FeedbackApproveMinor  FeedbackType = "APPROVE_MINOR"
	FeedbackNeedsRevision FeedbackType = "NEEDS_REVISION"
)

// IsValid reports whether the feedback type is known
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackApprove, FeedbackApproveMinor, FeedbackNeedsRevision:
		return true
	}
	return false
}

// IsApproval reports whether the feedback expresses approval
func (t FeedbackType) IsApproval() bool {
	return t == FeedbackApprove || t == FeedbackApproveMinor
}

// Feedback is a client's response to a specific deliverable version.
// Immutable once created: the record survives even when a follow-up
// release is refused by the payment guard.
type Feedback struct {
	shared.BaseEntity
	DeliverableID  uuid.UUID
	ProjectID      uuid.UUID
	Type           FeedbackType
	Notes          string
	SubmitterName  string
	SubmitterEmail string
}

// NewFeedback creates a feedback record. Notes are required for
// NEEDS_REVISION: a revision request without direction is not actionable.
func NewFeedback(deliverableID, projectID uuid.UUID, fbType FeedbackType, notes, submitterName, submitterEmail string) (*Feedback, error) {
	if !fbType.IsValid() {
		return nil, ErrInvalidFeedbackType
	}
	if fbType == FeedbackNeedsRevision && strings.TrimSpace(notes) == "" {
		return nil, ErrNotesRequired
	}
	if strings.TrimSpace(submitterName) == "" || strings.TrimSpace(submitterEmail) == "" {
		return nil, ErrSubmitterRequired
	}

	return &Feedback{
		BaseEntity:     shared.NewBaseEntity(),
		DeliverableID:  deliverableID,
		ProjectID:      projectID,
		Type:           fbType,
		Notes:          notes,
		SubmitterName:  submitterName,
		SubmitterEmail: submitterEmail,
	}, nil
}
