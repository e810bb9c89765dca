package project

import (
	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the project aggregate
const (
	EventTypeProjectPaid     = "project.paid"
	EventTypeProjectRefunded = "project.refunded"
	EventTypeProjectReleased = "project.released"
)

const aggregateTypeProject = "Project"

// ProjectPaidEvent is emitted when the payment gate opens for a project
type ProjectPaidEvent struct {
	shared.BaseDomainEvent
	PublicID string `json:"public_id"`
	Provider string `json:"provider"`
}

// NewProjectPaidEvent creates a new project paid event
func NewProjectPaidEvent(projectID uuid.UUID, publicID, provider string) *ProjectPaidEvent {
	return &ProjectPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectPaid, aggregateTypeProject, projectID),
		PublicID:        publicID,
		Provider:        provider,
	}
}

// ProjectRefundedEvent is emitted when a paid project is refunded
type ProjectRefundedEvent struct {
	shared.BaseDomainEvent
	PublicID string `json:"public_id"`
}

// NewProjectRefundedEvent creates a new project refunded event
func NewProjectRefundedEvent(projectID uuid.UUID, publicID string) *ProjectRefundedEvent {
	return &ProjectRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectRefunded, aggregateTypeProject, projectID),
		PublicID:        publicID,
	}
}

// ProjectReleasedEvent is emitted when a project passes sign-off and the
// clean artifact becomes servable
type ProjectReleasedEvent struct {
	shared.BaseDomainEvent
	PublicID string `json:"public_id"`
}

// NewProjectReleasedEvent creates a new project released event
func NewProjectReleasedEvent(projectID uuid.UUID, publicID string) *ProjectReleasedEvent {
	return &ProjectReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectReleased, aggregateTypeProject, projectID),
		PublicID:        publicID,
	}
}
