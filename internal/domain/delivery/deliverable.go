package delivery

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliverableState is the lifecycle state of one artifact version. It only
// moves forward; a revision request spawns a new version in DRAFT instead
// of regressing an existing one.
type DeliverableState string

const (
	DeliverableStateDraft  DeliverableState = "DRAFT"
	DeliverableStateReview DeliverableState = "REVIEW"
	DeliverableStateFinal  DeliverableState = "FINAL"
)

// Deliverable is one artifact at a specific version for a project. Two
// renditions are stored at upload time: the clean original and, when the
// format supports it, a watermarked preview. WatermarkApplied records
// whether the preview actually carries a mark; when it does not, the
// preview key points at the original as a fallback.
type Deliverable struct {
	shared.BaseAggregateRoot
	ProjectID        uuid.UUID
	Version          int
	State            DeliverableState
	FileName         string
	MimeType         string
	ByteSize         int64
	CleanKey         string
	PreviewKey       string
	WatermarkApplied bool
	UploadedBy       string
}

// NewDeliverable creates a new deliverable version in DRAFT state.
// Version numbering is assigned by the caller from the repository's
// per-project sequence, starting at 1.
func NewDeliverable(projectID uuid.UUID, version int, fileName, mimeType string, byteSize int64, cleanKey string) (*Deliverable, error) {
	if version < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Deliverable version must start at 1")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Deliverable file name is required")
	}
	if strings.TrimSpace(cleanKey) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Deliverable storage key is required")
	}
	if byteSize <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Deliverable size must be positive")
	}

	return &Deliverable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Version:           version,
		State:             DeliverableStateDraft,
		FileName:          fileName,
		MimeType:          mimeType,
		ByteSize:          byteSize,
		CleanKey:          cleanKey,
		PreviewKey:        cleanKey,
		WatermarkApplied:  false,
	}, nil
}

// SetPreview records the watermarked variant produced at upload time
func (d *Deliverable) SetPreview(previewKey string, watermarkApplied bool) {
	if previewKey != "" {
		d.PreviewKey = previewKey
	}
	d.WatermarkApplied = watermarkApplied
	d.UpdatedAt = time.Now()
}

// MarkReady advances DRAFT -> REVIEW: the version becomes visible to the
// client and the project enters review
func (d *Deliverable) MarkReady() error {
	if d.State != DeliverableStateDraft {
		return ErrInvalidDeliverableState
	}
	d.State = DeliverableStateReview
	d.UpdatedAt = time.Now()
	return nil
}

// Finalize advances REVIEW -> FINAL on release; no regression afterwards
func (d *Deliverable) Finalize() error {
	if d.State == DeliverableStateFinal {
		return nil
	}
	if d.State != DeliverableStateReview {
		return ErrInvalidDeliverableState
	}
	d.State = DeliverableStateFinal
	d.UpdatedAt = time.Now()
	return nil
}
