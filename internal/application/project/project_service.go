package project

import (
	"context"
	"fmt"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/domain/project"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService exposes the administrative stage transitions and the
// client-facing portal read model
type ProjectService struct {
	projectRepo     project.Repository
	deliverableRepo delivery.DeliverableRepository
	feedbackRepo    delivery.FeedbackRepository
	logger          *zap.Logger
}

// ProjectServiceConfig contains configuration for ProjectService
type ProjectServiceConfig struct {
	ProjectRepo     project.Repository
	DeliverableRepo delivery.DeliverableRepository
	FeedbackRepo    delivery.FeedbackRepository
	Logger          *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(cfg ProjectServiceConfig) *ProjectService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projectRepo:     cfg.ProjectRepo,
		deliverableRepo: cfg.DeliverableRepo,
		feedbackRepo:    cfg.FeedbackRepo,
		logger:          logger,
	}
}

// StartDelivery transitions SCHEDULED -> IN_DELIVERY (admin marks work started)
func (s *ProjectService) StartDelivery(ctx context.Context, projectID uuid.UUID) (*project.Project, error) {
	p, err := s.findByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.StartDelivery(); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	s.logger.Info("Project delivery started", zap.String("project_id", p.ID.String()))
	return p, nil
}

// Complete transitions RELEASED -> COMPLETE (administrative close-out)
func (s *ProjectService) Complete(ctx context.Context, projectID uuid.UUID) (*project.Project, error) {
	p, err := s.findByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.Complete(); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SaveWithLock(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	s.logger.Info("Project completed", zap.String("project_id", p.ID.String()))
	return p, nil
}

// PortalState is the client-facing read model of a project
type PortalState struct {
	Project           *project.Project      `json:"project"`
	LatestDeliverable *delivery.Deliverable `json:"latest_deliverable,omitempty"`
	Feedback          []delivery.Feedback   `json:"feedback"`
}

// GetPortalState assembles the portal view: the project, its latest
// deliverable version, and the feedback history
func (s *ProjectService) GetPortalState(ctx context.Context, publicID string) (*PortalState, error) {
	p, err := s.findByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	latest, err := s.deliverableRepo.FindLatestByProjectID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest deliverable: %w", err)
	}
	feedback, err := s.feedbackRepo.FindByProjectID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	return &PortalState{
		Project:           p,
		LatestDeliverable: latest,
		Feedback:          feedback,
	}, nil
}

func (s *ProjectService) findByPublicID(ctx context.Context, publicID string) (*project.Project, error) {
	p, err := s.projectRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, project.ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectService) findByID(ctx context.Context, projectID uuid.UUID) (*project.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, project.ErrProjectNotFound
	}
	return p, nil
}
