package delivery

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SignoffAction describes what the sign-off authorized
const SignoffActionApprovedAndReleased = "APPROVED_AND_RELEASED"

// Signoff is the terminal, immutable approval record that authorizes
// release of the clean artifact. A released project has exactly one
// effective signoff referencing its released deliverable version.
type Signoff struct {
	shared.BaseEntity
	ProjectID     uuid.UUID
	DeliverableID uuid.UUID
	SignerName    string
	SignerEmail   string
	Action        string
	SignedAt      time.Time
}

// NewSignoff creates a signoff record
func NewSignoff(projectID, deliverableID uuid.UUID, signerName, signerEmail string) (*Signoff, error) {
	if strings.TrimSpace(signerName) == "" || strings.TrimSpace(signerEmail) == "" {
		return nil, ErrSubmitterRequired
	}
	return &Signoff{
		BaseEntity:    shared.NewBaseEntity(),
		ProjectID:     projectID,
		DeliverableID: deliverableID,
		SignerName:    signerName,
		SignerEmail:   signerEmail,
		Action:        SignoffActionApprovedAndReleased,
		SignedAt:      time.Now(),
	}, nil
}
