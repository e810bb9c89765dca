package delivery

import (
	"context"

	"github.com/google/uuid"
)

// DeliverableRepository provides access to deliverable versions
type DeliverableRepository interface {
	// FindByID retrieves a deliverable; (nil, nil) when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Deliverable, error)

	// FindByProjectID lists a project's deliverables ordered by version descending
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]Deliverable, error)

	// FindLatestByProjectID retrieves the highest-version deliverable;
	// (nil, nil) when the project has none
	FindLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*Deliverable, error)

	// NextVersion returns the next version number for a project (1 when none exist)
	NextVersion(ctx context.Context, projectID uuid.UUID) (int, error)

	// Save persists a deliverable (insert or update)
	Save(ctx context.Context, d *Deliverable) error
}

// FeedbackRepository provides access to feedback records
type FeedbackRepository interface {
	// FindByDeliverableID lists feedback for a deliverable, newest first
	FindByDeliverableID(ctx context.Context, deliverableID uuid.UUID) ([]Feedback, error)

	// FindByProjectID lists all feedback across a project's versions
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]Feedback, error)

	// Save persists a feedback record
	Save(ctx context.Context, f *Feedback) error
}

// SignoffRepository provides access to signoff records
type SignoffRepository interface {
	// FindByProjectID lists a project's signoffs
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]Signoff, error)

	// Save persists a signoff record
	Save(ctx context.Context, s *Signoff) error
}
