package handler

import (
	"time"

	billingapp "github.com/clientdesk/backend/internal/application/billing"
	projectapp "github.com/clientdesk/backend/internal/application/project"
	"github.com/clientdesk/backend/internal/domain/billing"
	"github.com/clientdesk/backend/internal/domain/project"
)

// ProjectResponse represents a project in API responses
// @Description Project details with payment status and portal stage
type ProjectResponse struct {
	ID              string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PublicID        string  `json:"public_id" example:"a1b2c3d4e5"`
	Name            string  `json:"name" example:"Wedding photo set"`
	ClientName      string  `json:"client_name" example:"Jane Cooper"`
	ClientEmail     string  `json:"client_email" example:"jane@example.com"`
	PaymentRequired bool    `json:"payment_required" example:"true"`
	PaymentStatus   string  `json:"payment_status" example:"UNPAID" enums:"UNPAID,PAID,REFUNDED"`
	PaymentProvider *string `json:"payment_provider,omitempty" example:"STRIPE" enums:"STRIPE,MANUAL"`
	PaidAt          *string `json:"paid_at,omitempty" example:"2026-01-24T12:00:00Z"`
	RefundedAt      *string `json:"refunded_at,omitempty" example:"2026-01-25T12:00:00Z"`
	PaymentLinkURL  *string `json:"payment_link_url,omitempty" example:"https://pay.stripe.com/link/xyz"`
	PortalStage     string  `json:"portal_stage" example:"SCHEDULED" enums:"SCHEDULED,IN_DELIVERY,IN_REVIEW,RELEASED,COMPLETE"`
	LastUpdateAt    string  `json:"last_update_at" example:"2026-01-24T12:00:00Z"`
	CreatedAt       string  `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt       string  `json:"updated_at" example:"2026-01-24T12:00:00Z"`
	Version         int     `json:"version" example:"1"`
}

// PortalStateResponse represents the client-facing portal view
// @Description Project state with the latest deliverable and feedback history
type PortalStateResponse struct {
	Project           ProjectResponse      `json:"project"`
	LatestDeliverable *DeliverableResponse `json:"latest_deliverable,omitempty"`
	Feedback          []FeedbackResponse   `json:"feedback"`
}

// MarkPaidRequest carries a manual payment override
// @Description Manual mark-paid request with a mandatory audit reason
type MarkPaidRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500" example:"Bank transfer received 2026-01-24"`
}

// PaymentResultResponse reports how a payment mutation was applied
// @Description Outcome of a payment state change
type PaymentResultResponse struct {
	ProjectID *string `json:"project_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Skipped   bool    `json:"skipped" example:"false"`
	Unmatched bool    `json:"unmatched" example:"false"`
}

// PaymentEventResponse represents a ledger entry in API responses
// @Description Recorded payment event from the idempotency ledger
type PaymentEventResponse struct {
	ID          string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Provider    string            `json:"provider" example:"STRIPE"`
	ExternalID  string            `json:"external_id" example:"evt_1234567890"`
	EventType   string            `json:"event_type" example:"checkout.session.completed"`
	Status      string            `json:"status" example:"UNMATCHED" enums:"SUCCESS,SKIPPED,UNMATCHED"`
	ProjectID   *string           `json:"project_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	OperatorID  *string           `json:"operator_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440002"`
	ErrorMsg    *string           `json:"error_msg,omitempty" example:"no project matched correlation token"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ProcessedAt string            `json:"processed_at" example:"2026-01-24T12:00:00Z"`
}

func toProjectResponse(p *project.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:              p.ID.String(),
		PublicID:        p.PublicID,
		Name:            p.Name,
		ClientName:      p.ClientName,
		ClientEmail:     p.ClientEmail,
		PaymentRequired: p.PaymentRequired,
		PaymentStatus:   string(p.PaymentStatus),
		PaymentLinkURL:  p.PaymentLinkURL,
		PortalStage:     string(p.PortalStage),
		LastUpdateAt:    p.LastUpdateAt.Format(time.RFC3339),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
		Version:         p.Version,
	}
	if p.PaymentProvider != nil {
		provider := string(*p.PaymentProvider)
		resp.PaymentProvider = &provider
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	if p.RefundedAt != nil {
		refundedAt := p.RefundedAt.Format(time.RFC3339)
		resp.RefundedAt = &refundedAt
	}
	return resp
}

func toPortalStateResponse(state *projectapp.PortalState) PortalStateResponse {
	resp := PortalStateResponse{
		Project:  toProjectResponse(state.Project),
		Feedback: make([]FeedbackResponse, 0, len(state.Feedback)),
	}
	if state.LatestDeliverable != nil {
		latest := toDeliverableResponse(state.LatestDeliverable)
		resp.LatestDeliverable = &latest
	}
	for i := range state.Feedback {
		resp.Feedback = append(resp.Feedback, toFeedbackResponse(&state.Feedback[i]))
	}
	return resp
}

func toPaymentResultResponse(result *billingapp.PaymentResult) PaymentResultResponse {
	resp := PaymentResultResponse{
		Skipped:   result.Skipped,
		Unmatched: result.Unmatched,
	}
	if result.ProjectID != nil {
		id := result.ProjectID.String()
		resp.ProjectID = &id
	}
	return resp
}

func toPaymentEventResponse(e *billing.PaymentEvent) PaymentEventResponse {
	resp := PaymentEventResponse{
		ID:          e.ID.String(),
		Provider:    e.Provider,
		ExternalID:  e.ExternalID,
		EventType:   e.EventType,
		Status:      string(e.Status),
		OperatorID:  e.OperatorID,
		ErrorMsg:    e.ErrorMsg,
		Metadata:    e.Metadata,
		ProcessedAt: e.ProcessedAt.Format(time.RFC3339),
	}
	if e.ProjectID != nil {
		id := e.ProjectID.String()
		resp.ProjectID = &id
	}
	return resp
}
