package event

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/project"
	"github.com/clientdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// GateAuditHandler writes an audit log line for project gate and stage
// changes so support can reconstruct when client access opened or closed
type GateAuditHandler struct {
	logger *zap.Logger
}

// NewGateAuditHandler creates a new gate audit handler
func NewGateAuditHandler(logger *zap.Logger) *GateAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateAuditHandler{logger: logger}
}

// EventTypes lists the project lifecycle events the handler audits
func (h *GateAuditHandler) EventTypes() []string {
	return []string{
		project.EventTypeProjectPaid,
		project.EventTypeProjectRefunded,
		project.EventTypeProjectReleased,
	}
}

// Handle logs the gate change with the project's public identifier
func (h *GateAuditHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("project_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	}
	switch e := evt.(type) {
	case *project.ProjectPaidEvent:
		fields = append(fields, zap.String("public_id", e.PublicID), zap.String("provider", e.Provider))
	case *project.ProjectRefundedEvent:
		fields = append(fields, zap.String("public_id", e.PublicID))
	case *project.ProjectReleasedEvent:
		fields = append(fields, zap.String("public_id", e.PublicID))
	}
	h.logger.Info("Project gate changed", fields...)
	return nil
}

// Ensure GateAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*GateAuditHandler)(nil)
