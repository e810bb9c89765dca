package delivery

import (
	"github.com/clientdesk/backend/internal/domain/project"
)

// Variant identifies which rendition of an artifact is being served
type Variant string

const (
	VariantClean       Variant = "CLEAN"
	VariantWatermarked Variant = "WATERMARKED"
)

// Access is a granted access decision: which variant to serve and from
// which storage key. Draft marks watermarked previews so the caller can
// label them explicitly.
type Access struct {
	Variant    Variant
	StorageKey string
	Draft      bool
}

// ResolveDownload evaluates the download decision table in order:
//
//  1. payment required and not PAID -> denied, regardless of portal stage
//  2. paid (or payment waived) and stage RELEASED/COMPLETE -> CLEAN
//  3. paid but not yet released -> WATERMARKED, labeled as draft
//
// The payment check is evaluated independently of the portal stage so a
// stage inconsistency can never open the payment gate. When the
// watermarked variant does not exist (unsupported format), an unpaid
// download stays denied: the fallback never becomes a payment bypass.
func ResolveDownload(p *project.Project, d *Deliverable) (*Access, error) {
	if !p.IsPaymentSatisfied() {
		if p.PaymentStatus == project.PaymentStatusRefunded {
			return nil, project.ErrProjectRefunded
		}
		return nil, project.ErrPaymentRequired
	}

	if p.PortalStage == project.StageReleased || p.PortalStage == project.StageComplete {
		return &Access{Variant: VariantClean, StorageKey: d.CleanKey}, nil
	}

	return &Access{Variant: VariantWatermarked, StorageKey: d.PreviewKey, Draft: true}, nil
}

// ResolveView serves the watermarked preview inline regardless of payment
// state: a marked preview carries no extraction value beyond signaling.
// When no watermark could be applied, the preview key aliases the clean
// original, so the same payment gate as ResolveDownload applies before it
// is served. An unpaid client never receives clean bytes through the view.
func ResolveView(p *project.Project, d *Deliverable) (*Access, error) {
	if d.WatermarkApplied {
		return &Access{Variant: VariantWatermarked, StorageKey: d.PreviewKey, Draft: true}, nil
	}

	if !p.IsPaymentSatisfied() {
		if p.PaymentStatus == project.PaymentStatusRefunded {
			return nil, project.ErrProjectRefunded
		}
		return nil, project.ErrPaymentRequired
	}

	return &Access{Variant: VariantClean, StorageKey: d.PreviewKey, Draft: true}, nil
}
