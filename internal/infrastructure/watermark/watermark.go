// Package watermark renders the watermarked preview rendition of uploaded
// artifacts. Rendering happens once, at upload time.
package watermark

import (
	"context"
	"mime"
	"strings"

	appdelivery "github.com/clientdesk/backend/internal/application/delivery"
	"github.com/clientdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure Pipeline implements the application watermarker port
var _ appdelivery.Watermarker = (*Pipeline)(nil)

// Pipeline dispatches an artifact to the renderer for its mime type. Raster
// images get a tiled, rotated text pattern across the full canvas; PDFs get
// the same text stamped at multiple positions per page. Unsupported types
// are reported explicitly so the caller can pick a safe fallback.
type Pipeline struct {
	images *imageStamper
	pdfs   *pdfStamper
	logger *zap.Logger
}

// NewPipeline creates a watermarking pipeline from configuration
func NewPipeline(cfg *config.WatermarkConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	text := cfg.Text
	if text == "" {
		text = "DRAFT"
	}
	opacity := cfg.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 0.18
	}
	angle := cfg.Angle
	if angle == 0 {
		angle = 30
	}
	return &Pipeline{
		images: &imageStamper{text: text, opacity: opacity, angle: angle},
		pdfs:   &pdfStamper{text: text, opacity: opacity, angle: angle},
		logger: logger,
	}
}

// Apply produces the watermarked rendition of original. It returns
// ErrUnsupportedFormat for mime types without a renderer; any other error
// means rendering failed for a supported type.
func (p *Pipeline) Apply(ctx context.Context, original []byte, mimeType string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch normalizeMime(mimeType) {
	case "image/png", "image/jpeg":
		return p.images.stamp(original, normalizeMime(mimeType))
	case "application/pdf":
		return p.pdfs.stamp(original)
	default:
		return nil, appdelivery.ErrUnsupportedFormat
	}
}

func normalizeMime(mimeType string) string {
	parsed, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return strings.ToLower(parsed)
}
