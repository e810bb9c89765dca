package handler

import (
	"time"

	deliveryapp "github.com/clientdesk/backend/internal/application/delivery"
	"github.com/clientdesk/backend/internal/domain/delivery"
)

// DeliverableResponse represents a deliverable version in API responses
// @Description One uploaded artifact version and its review state
type DeliverableResponse struct {
	ID               string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID        string `json:"project_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Version          int    `json:"version" example:"1"`
	State            string `json:"state" example:"DRAFT" enums:"DRAFT,REVIEW,FINAL"`
	FileName         string `json:"file_name" example:"album-v1.pdf"`
	MimeType         string `json:"mime_type" example:"application/pdf"`
	ByteSize         int64  `json:"byte_size" example:"1048576"`
	WatermarkApplied bool   `json:"watermark_applied" example:"true"`
	UploadedBy       string `json:"uploaded_by" example:"operator@studio.example"`
	CreatedAt        string `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt        string `json:"updated_at" example:"2026-01-24T12:00:00Z"`
}

// FeedbackResponse represents a feedback record in API responses
// @Description A client response to a deliverable version
type FeedbackResponse struct {
	ID             string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DeliverableID  string `json:"deliverable_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	ProjectID      string `json:"project_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	Type           string `json:"type" example:"APPROVE" enums:"APPROVE,APPROVE_MINOR,NEEDS_REVISION"`
	Notes          string `json:"notes,omitempty" example:"Please brighten image 12"`
	SubmitterName  string `json:"submitter_name" example:"Jane Cooper"`
	SubmitterEmail string `json:"submitter_email" example:"jane@example.com"`
	CreatedAt      string `json:"created_at" example:"2026-01-24T12:00:00Z"`
}

// SignoffResponse represents a sign-off record in API responses
// @Description A recorded release authorization
type SignoffResponse struct {
	ID            string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID     string `json:"project_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	DeliverableID string `json:"deliverable_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	SignerName    string `json:"signer_name" example:"Jane Cooper"`
	SignerEmail   string `json:"signer_email" example:"jane@example.com"`
	Action        string `json:"action" example:"RELEASE"`
	SignedAt      string `json:"signed_at" example:"2026-01-24T12:00:00Z"`
}

// AccessGrantResponse represents a granted artifact access
// @Description Time-limited URL for one artifact rendition
type AccessGrantResponse struct {
	Variant   string `json:"variant" example:"WATERMARKED" enums:"CLEAN,WATERMARKED"`
	Draft     bool   `json:"draft" example:"true"`
	URL       string `json:"url" example:"https://storage.example.com/download/key?expires=..."`
	ExpiresAt string `json:"expires_at" example:"2026-01-24T12:15:00Z"`
	FileName  string `json:"file_name" example:"album-v1.pdf"`
	MimeType  string `json:"mime_type" example:"application/pdf"`
}

// SubmitFeedbackRequest carries a client's response to a deliverable
// @Description Feedback submission; notes are required for NEEDS_REVISION
type SubmitFeedbackRequest struct {
	Type           string `json:"type" binding:"required,oneof=APPROVE APPROVE_MINOR NEEDS_REVISION" example:"NEEDS_REVISION"`
	Notes          string `json:"notes" binding:"max=4000" example:"Please brighten image 12"`
	SubmitterName  string `json:"submitter_name" binding:"required,max=120" example:"Jane Cooper"`
	SubmitterEmail string `json:"submitter_email" binding:"required,email" example:"jane@example.com"`
}

// SignOffRequest carries a release authorization
// @Description Sign-off request; triggers the release transition
type SignOffRequest struct {
	SignerName  string `json:"signer_name" binding:"required,max=120" example:"Jane Cooper"`
	SignerEmail string `json:"signer_email" binding:"required,email" example:"jane@example.com"`
}

func toDeliverableResponse(d *delivery.Deliverable) DeliverableResponse {
	return DeliverableResponse{
		ID:               d.ID.String(),
		ProjectID:        d.ProjectID.String(),
		Version:          d.Version,
		State:            string(d.State),
		FileName:         d.FileName,
		MimeType:         d.MimeType,
		ByteSize:         d.ByteSize,
		WatermarkApplied: d.WatermarkApplied,
		UploadedBy:       d.UploadedBy,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        d.UpdatedAt.Format(time.RFC3339),
	}
}

func toFeedbackResponse(fb *delivery.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:             fb.ID.String(),
		DeliverableID:  fb.DeliverableID.String(),
		ProjectID:      fb.ProjectID.String(),
		Type:           string(fb.Type),
		Notes:          fb.Notes,
		SubmitterName:  fb.SubmitterName,
		SubmitterEmail: fb.SubmitterEmail,
		CreatedAt:      fb.CreatedAt.Format(time.RFC3339),
	}
}

func toSignoffResponse(s *delivery.Signoff) SignoffResponse {
	return SignoffResponse{
		ID:            s.ID.String(),
		ProjectID:     s.ProjectID.String(),
		DeliverableID: s.DeliverableID.String(),
		SignerName:    s.SignerName,
		SignerEmail:   s.SignerEmail,
		Action:        s.Action,
		SignedAt:      s.SignedAt.Format(time.RFC3339),
	}
}

func toAccessGrantResponse(grant *deliveryapp.AccessGrant) AccessGrantResponse {
	return AccessGrantResponse{
		Variant:   string(grant.Variant),
		Draft:     grant.Draft,
		URL:       grant.URL,
		ExpiresAt: grant.ExpiresAt.Format(time.RFC3339),
		FileName:  grant.FileName,
		MimeType:  grant.MimeType,
	}
}
