package project

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to projects
type Repository interface {
	// FindByID retrieves a project by its internal ID
	// Returns (nil, nil) when not found
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByPublicID retrieves a project by its opaque public identifier
	// Returns (nil, nil) when not found
	FindByPublicID(ctx context.Context, publicID string) (*Project, error)

	// FindByCorrelationToken resolves a webhook event's echoed correlation
	// token to a project. Returns (nil, nil) when no project matches.
	FindByCorrelationToken(ctx context.Context, token string) (*Project, error)

	// Save persists a project (insert or update)
	Save(ctx context.Context, p *Project) error

	// SaveWithLock persists a project with optimistic lock version checking
	SaveWithLock(ctx context.Context, p *Project) error
}
