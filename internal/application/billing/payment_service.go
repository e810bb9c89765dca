package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clientdesk/backend/internal/domain/billing"
	"github.com/clientdesk/backend/internal/domain/project"
	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentResult reports how an inbound payment event was applied.
// Skipped means the event was observed but caused no state change (duplicate
// delivery, or the project was already in the target state). Unmatched means
// no project could be resolved and the event was recorded for manual
// reconciliation. Neither is a failure.
type PaymentResult struct {
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Skipped   bool       `json:"skipped"`
	Unmatched bool       `json:"unmatched"`
}

// PaymentService is the payment state engine. All mutations run inside a
// TransactionScope so the ledger insert and the project update commit
// atomically; the unique constraint on the ledger decides insert races.
type PaymentService struct {
	scope          TransactionScope
	ledger         billing.PaymentEventRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// PaymentServiceConfig contains configuration for PaymentService.
// Ledger is optional: when set, inbound events are pre-checked against it
// before a transaction is opened, so redeliveries of already-settled events
// skip without touching the database write path.
type PaymentServiceConfig struct {
	Scope          TransactionScope
	Ledger         billing.PaymentEventRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:          cfg.Scope,
		ledger:         cfg.Ledger,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
	}
}

// alreadyProcessed is the advisory fast path for redeliveries. It never
// decides the outcome on error: the in-transaction Insert against the
// ledger's unique constraint stays authoritative.
func (s *PaymentService) alreadyProcessed(ctx context.Context, eventID string) bool {
	if s.ledger == nil {
		return false
	}
	seen, err := s.ledger.HasProcessed(ctx, ProviderStripe, eventID)
	if err != nil {
		s.logger.Warn("Ledger pre-check failed, falling through to transaction",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false
	}
	return seen
}

// ApplyCheckoutCompleted transitions the resolved project UNPAID -> PAID.
// Duplicate events and events for an already-paid project return skipped
// without touching the project; the ledger entry is still recorded once.
func (s *PaymentService) ApplyCheckoutCompleted(ctx context.Context, evt CheckoutCompletedEvent) (*PaymentResult, error) {
	result := &PaymentResult{}
	var paid *project.Project

	if s.alreadyProcessed(ctx, evt.EventID) {
		result.Skipped = true
		s.logResult("checkout completed", evt.EventID, result)
		return result, nil
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.resolveProject(ctx, repos, evt.CorrelationToken)
		if err != nil {
			return err
		}
		if p == nil {
			return s.recordUnmatched(ctx, repos, evt.EventID, evt.EventType,
				"no project matches correlation token", result)
		}
		result.ProjectID = &p.ID

		entry, err := billing.NewPaymentEvent(ProviderStripe, evt.EventID, evt.EventType, p.ID)
		if err != nil {
			return err
		}
		if evt.SessionID != "" {
			entry.WithMetadata("session_id", evt.SessionID)
		}
		if err := repos.PaymentEvents().Insert(ctx, entry); err != nil {
			if errors.Is(err, billing.ErrDuplicateEvent) {
				result.Skipped = true
				return nil
			}
			return err
		}

		if err := p.MarkPaid(project.PaymentProviderStripe); err != nil {
			switch {
			case errors.Is(err, project.ErrAlreadyPaid), errors.Is(err, project.ErrProjectRefunded):
				// out-of-order or redundant "completed" event: the ledger
				// entry stays, the project is not touched
				result.Skipped = true
				return nil
			default:
				return err
			}
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := s.settleOpenInvoices(ctx, repos, p.ID); err != nil {
			return err
		}
		paid = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, paid)
	s.logResult("checkout completed", evt.EventID, result)
	return result, nil
}

// ApplyRefund transitions the resolved project PAID -> REFUNDED and voids
// its open invoices. A refund for a project that was never paid, or that is
// already refunded, is recorded in the ledger and returned as skipped; a
// refunded project is never transitioned back to PAID.
func (s *PaymentService) ApplyRefund(ctx context.Context, evt RefundIssuedEvent) (*PaymentResult, error) {
	result := &PaymentResult{}
	var refunded *project.Project

	if s.alreadyProcessed(ctx, evt.EventID) {
		result.Skipped = true
		s.logResult("refund", evt.EventID, result)
		return result, nil
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.resolveProject(ctx, repos, evt.CorrelationToken)
		if err != nil {
			return err
		}
		if p == nil {
			return s.recordUnmatched(ctx, repos, evt.EventID, evt.EventType,
				"no project matches correlation token", result)
		}
		result.ProjectID = &p.ID

		if err := p.MarkRefunded(); err != nil {
			switch {
			case errors.Is(err, project.ErrNotPaid), errors.Is(err, project.ErrProjectRefunded):
				entry, entryErr := billing.NewFailedPaymentEvent(
					ProviderStripe, evt.EventID, evt.EventType, err.Error(), &p.ID)
				if entryErr != nil {
					return entryErr
				}
				if insertErr := repos.PaymentEvents().Insert(ctx, entry); insertErr != nil {
					if errors.Is(insertErr, billing.ErrDuplicateEvent) {
						result.Skipped = true
						return nil
					}
					return insertErr
				}
				result.Skipped = true
				return nil
			default:
				return err
			}
		}

		entry, err := billing.NewPaymentEvent(ProviderStripe, evt.EventID, evt.EventType, p.ID)
		if err != nil {
			return err
		}
		if evt.ChargeID != "" {
			entry.WithMetadata("charge_id", evt.ChargeID)
		}
		if err := repos.PaymentEvents().Insert(ctx, entry); err != nil {
			if errors.Is(err, billing.ErrDuplicateEvent) {
				// concurrent redelivery won the insert race; the in-memory
				// mutation is discarded with the rollback
				result.Skipped = true
				return nil
			}
			return err
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := s.voidOpenInvoices(ctx, repos, p.ID); err != nil {
			return err
		}
		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refunded)
	s.logResult("refund", evt.EventID, result)
	return result, nil
}

// MarkPaidManually is the administrative override: it marks a project PAID
// outside the webhook flow and records who did it and why in the ledger.
// Marking an already-paid project is an idempotent success; a refunded
// project is refused with ErrProjectRefunded.
func (s *PaymentService) MarkPaidManually(ctx context.Context, projectID uuid.UUID, operatorID, reason string) (*PaymentResult, error) {
	result := &PaymentResult{}
	var paid *project.Project

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.Projects().FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return project.ErrProjectNotFound
		}
		result.ProjectID = &p.ID

		if err := p.MarkPaid(project.PaymentProviderManual); err != nil {
			if errors.Is(err, project.ErrAlreadyPaid) {
				result.Skipped = true
				return nil
			}
			return err
		}

		entry, err := billing.NewPaymentEvent(ProviderManual, manualEventID(), "manual.mark_paid", p.ID)
		if err != nil {
			return err
		}
		entry.WithOperator(operatorID, reason)
		if err := repos.PaymentEvents().Insert(ctx, entry); err != nil {
			return err
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := s.settleOpenInvoices(ctx, repos, p.ID); err != nil {
			return err
		}
		paid = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, paid)
	s.logger.Info("Project manually marked paid",
		zap.String("project_id", projectID.String()),
		zap.String("operator_id", operatorID),
		zap.Bool("skipped", result.Skipped))
	return result, nil
}

// ListUnmatched lists UNMATCHED ledger entries for manual reconciliation
func (s *PaymentService) ListUnmatched(ctx context.Context, filter shared.Filter) (shared.Paginated[billing.PaymentEvent], error) {
	var events shared.Paginated[billing.PaymentEvent]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var scopeErr error
		events, scopeErr = repos.PaymentEvents().FindUnmatched(ctx, filter)
		return scopeErr
	})
	return events, err
}

func (s *PaymentService) resolveProject(ctx context.Context, repos TransactionalRepositories, token string) (*project.Project, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	return repos.Projects().FindByCorrelationToken(ctx, token)
}

func (s *PaymentService) recordUnmatched(ctx context.Context, repos TransactionalRepositories, eventID, eventType, reason string, result *PaymentResult) error {
	entry, err := billing.NewUnmatchedPaymentEvent(ProviderStripe, eventID, eventType, reason)
	if err != nil {
		return err
	}
	if err := repos.PaymentEvents().Insert(ctx, entry); err != nil {
		if errors.Is(err, billing.ErrDuplicateEvent) {
			result.Skipped = true
			result.Unmatched = true
			return nil
		}
		return err
	}
	result.Unmatched = true
	s.logger.Warn("Payment event recorded as unmatched",
		zap.String("event_id", eventID),
		zap.String("event_type", eventType),
		zap.String("reason", reason))
	return nil
}

func (s *PaymentService) settleOpenInvoices(ctx context.Context, repos TransactionalRepositories, projectID uuid.UUID) error {
	invoices, err := repos.Invoices().FindOpenByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find open invoices: %w", err)
	}
	for i := range invoices {
		invoices[i].MarkPaid()
		if err := repos.Invoices().Save(ctx, &invoices[i]); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
	}
	return nil
}

func (s *PaymentService) voidOpenInvoices(ctx context.Context, repos TransactionalRepositories, projectID uuid.UUID) error {
	invoices, err := repos.Invoices().FindOpenByProjectID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find open invoices: %w", err)
	}
	for i := range invoices {
		if err := invoices[i].MarkVoid(); err != nil {
			return err
		}
		if err := repos.Invoices().Save(ctx, &invoices[i]); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
	}
	return nil
}

func (s *PaymentService) publishEvents(ctx context.Context, p *project.Project) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish payment events",
			zap.String("project_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}

func (s *PaymentService) logResult(action, eventID string, result *PaymentResult) {
	fields := []zap.Field{
		zap.String("event_id", eventID),
		zap.Bool("skipped", result.Skipped),
		zap.Bool("unmatched", result.Unmatched),
	}
	if result.ProjectID != nil {
		fields = append(fields, zap.String("project_id", result.ProjectID.String()))
	}
	s.logger.Info("Payment event applied: "+action, fields...)
}

func manualEventID() string {
	return "man_" + uuid.NewString()
}
