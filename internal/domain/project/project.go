package project

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/domain/shared"
)

// PaymentStatus is the authoritative payment state of a project
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentProvider identifies how a project was paid
type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "STRIPE"
	PaymentProviderManual PaymentProvider = "MANUAL"
)

// Project is the unit of billable work. Payment fields are mutated only by
// the payment state engine; portal fields only by the delivery stage
// machine. PaidAt is set if and only if PaymentStatus is PAID.
type Project struct {
	shared.BaseAggregateRoot
	PublicID         string
	Name             string
	ClientName       string
	ClientEmail      string
	PaymentRequired  bool
	PaymentStatus    PaymentStatus
	PaymentProvider  *PaymentProvider
	PaidAt           *time.Time
	RefundedAt       *time.Time
	PaymentLinkID    *string
	PaymentLinkURL   *string
	CorrelationToken string
	PortalStage      PortalStage
	LastUpdateAt     time.Time
}

// NewProject creates a new project in SCHEDULED stage with UNPAID status
func NewProject(publicID, name, clientName, clientEmail string, paymentRequired bool) (*Project, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Project public ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Project name is required")
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PublicID:          publicID,
		Name:              name,
		ClientName:        clientName,
		ClientEmail:       clientEmail,
		PaymentRequired:   paymentRequired,
		PaymentStatus:     PaymentStatusUnpaid,
		PortalStage:       StageScheduled,
		LastUpdateAt:      time.Now(),
	}
	return p, nil
}

// AttachPaymentLink stores the external payment-link reference and the
// correlation token the processor will echo back in webhook events
func (p *Project) AttachPaymentLink(linkID, linkURL, correlationToken string) error {
	if strings.TrimSpace(correlationToken) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Correlation token is required")
	}
	p.PaymentLinkID = &linkID
	p.PaymentLinkURL = &linkURL
	p.CorrelationToken = correlationToken
	p.touch()
	return nil
}

// MarkPaid transitions UNPAID -> PAID. An already-paid project returns
// ErrAlreadyPaid so the caller can treat the call as an idempotent skip.
// A refunded project is never resurrected.
func (p *Project) MarkPaid(provider PaymentProvider) error {
	switch p.PaymentStatus {
	case PaymentStatusRefunded:
		return ErrProjectRefunded
	case PaymentStatusPaid:
		return ErrAlreadyPaid
	}

	now := time.Now()
	p.PaymentStatus = PaymentStatusPaid
	p.PaymentProvider = &provider
	p.PaidAt = &now
	p.touch()

	p.AddDomainEvent(NewProjectPaidEvent(p.ID, p.PublicID, string(provider)))
	return nil
}

// MarkRefunded transitions PAID -> REFUNDED. Refunding a project that was
// never paid returns ErrNotPaid; the caller records the observation without
// mutating state.
func (p *Project) MarkRefunded() error {
	if p.PaymentStatus == PaymentStatusRefunded {
		return ErrProjectRefunded
	}
	if p.PaymentStatus != PaymentStatusPaid {
		return ErrNotPaid
	}

	now := time.Now()
	p.PaymentStatus = PaymentStatusRefunded
	p.PaidAt = nil
	p.RefundedAt = &now
	p.touch()

	p.AddDomainEvent(NewProjectRefundedEvent(p.ID, p.PublicID))
	return nil
}

// IsPaymentSatisfied reports whether the payment gate is open for this
// project: either no payment is required or the project is PAID
func (p *Project) IsPaymentSatisfied() bool {
	return !p.PaymentRequired || p.PaymentStatus == PaymentStatusPaid
}

// StartDelivery transitions SCHEDULED -> IN_DELIVERY (admin marks work started)
func (p *Project) StartDelivery() error {
	if !p.PortalStage.CanTransitionTo(StageInDelivery) {
		return ErrInvalidStage
	}
	p.setStage(StageInDelivery)
	return nil
}

// EnterReview transitions IN_DELIVERY -> IN_REVIEW when a deliverable is
// marked ready for client eyes. A project already in review stays there:
// the revision loop uploads a new version without a stage change.
func (p *Project) EnterReview() error {
	if p.PortalStage == StageInReview {
		return nil
	}
	if !p.PortalStage.CanTransitionTo(StageInReview) {
		return ErrInvalidStage
	}
	p.setStage(StageInReview)
	return nil
}

// Release transitions IN_REVIEW -> RELEASED on sign-off. The payment guard
// is evaluated here, independently of the stage: release is refused while
// the payment gate is closed, with a guard-specific error so callers can
// distinguish the refusal from a validation failure.
func (p *Project) Release() error {
	if p.PortalStage != StageInReview && p.PortalStage != StageApproved {
		return ErrInvalidStage
	}
	if !p.IsPaymentSatisfied() {
		if p.PaymentStatus == PaymentStatusRefunded {
			return ErrProjectRefunded
		}
		return ErrPaymentRequired
	}
	p.setStage(StageReleased)
	p.AddDomainEvent(NewProjectReleasedEvent(p.ID, p.PublicID))
	return nil
}

// Complete transitions RELEASED -> COMPLETE (administrative close-out)
func (p *Project) Complete() error {
	if !p.PortalStage.CanTransitionTo(StageComplete) {
		return ErrInvalidStage
	}
	p.setStage(StageComplete)
	return nil
}

func (p *Project) setStage(stage PortalStage) {
	p.PortalStage = stage
	p.touch()
}

func (p *Project) touch() {
	p.LastUpdateAt = time.Now()
	p.UpdatedAt = p.LastUpdateAt
}
