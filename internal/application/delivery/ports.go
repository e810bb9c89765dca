package delivery

import (
	"context"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
)

// ErrUnsupportedFormat is the explicit signal that no watermark renderer
// exists for an artifact's mime type. The pipeline must return it instead of
// silently passing the original through, so the caller can pick a safe
// fallback and the decision stays observable for audit.
var ErrUnsupportedFormat = shared.NewDomainError("UNSUPPORTED_FORMAT", "No watermark renderer for this mime type")

// ErrApprovalRequired is returned when sign-off is attempted on a
// deliverable that has no approval feedback
var ErrApprovalRequired = shared.NewDomainError("APPROVAL_REQUIRED", "Sign-off requires an approval feedback on the deliverable")

// ArtifactStorage stores artifact renditions and hands out short-lived
// download URLs. Implementations live in infrastructure/storage.
type ArtifactStorage interface {
	// Upload stores data under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned URL for storageKey
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object; deleting a missing object is not an error
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether an object is present
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Watermarker produces the watermarked rendition of an artifact. It returns
// ErrUnsupportedFormat for mime types it has no renderer for.
type Watermarker interface {
	Apply(ctx context.Context, original []byte, mimeType string) ([]byte, error)
}
