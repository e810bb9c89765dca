package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/domain/project"
	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryService coordinates the deliverable lifecycle: upload with the
// watermarking pipeline, review handoff, feedback, sign-off/release, and
// gated access resolution.
type DeliveryService struct {
	projectRepo      project.Repository
	deliverableRepo  delivery.DeliverableRepository
	feedbackRepo     delivery.FeedbackRepository
	signoffRepo      delivery.SignoffRepository
	scope            TransactionScope
	storage          ArtifactStorage
	watermarker      Watermarker
	watermarkTimeout time.Duration
	presignExpiry    time.Duration
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// DeliveryServiceConfig contains configuration for DeliveryService
type DeliveryServiceConfig struct {
	ProjectRepo      project.Repository
	DeliverableRepo  delivery.DeliverableRepository
	FeedbackRepo     delivery.FeedbackRepository
	SignoffRepo      delivery.SignoffRepository
	Scope            TransactionScope
	Storage          ArtifactStorage
	Watermarker      Watermarker
	WatermarkTimeout time.Duration
	PresignExpiry    time.Duration
	EventPublisher   shared.EventPublisher
	Logger           *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(cfg DeliveryServiceConfig) *DeliveryService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	watermarkTimeout := cfg.WatermarkTimeout
	if watermarkTimeout <= 0 {
		watermarkTimeout = 30 * time.Second
	}
	presignExpiry := cfg.PresignExpiry
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &DeliveryService{
		projectRepo:      cfg.ProjectRepo,
		deliverableRepo:  cfg.DeliverableRepo,
		feedbackRepo:     cfg.FeedbackRepo,
		signoffRepo:      cfg.SignoffRepo,
		scope:            cfg.Scope,
		storage:          cfg.Storage,
		watermarker:      cfg.Watermarker,
		watermarkTimeout: watermarkTimeout,
		presignExpiry:    presignExpiry,
		eventPublisher:   cfg.EventPublisher,
		logger:           logger,
	}
}

// UploadDeliverableRequest carries one uploaded artifact
type UploadDeliverableRequest struct {
	ProjectID  uuid.UUID
	FileName   string
	MimeType   string
	Data       []byte
	UploadedBy string
}

// UploadDeliverable stores a new deliverable version. The clean original is
// stored first; the watermarked preview is produced once, here at upload
// time, under a bounded timeout. Watermarking failure never fails the
// upload: the preview falls back to the original.
func (s *DeliveryService) UploadDeliverable(ctx context.Context, req UploadDeliverableRequest) (*delivery.Deliverable, error) {
	p, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, project.ErrProjectNotFound
	}
	if p.PortalStage != project.StageInDelivery && p.PortalStage != project.StageInReview {
		return nil, project.ErrInvalidStage
	}

	version, err := s.deliverableRepo.NextVersion(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate deliverable version: %w", err)
	}

	cleanKey := artifactKey(p.ID, version, "clean", req.FileName)
	d, err := delivery.NewDeliverable(p.ID, version, req.FileName, req.MimeType, int64(len(req.Data)), cleanKey)
	if err != nil {
		return nil, err
	}
	d.UploadedBy = req.UploadedBy

	if err := s.storage.Upload(ctx, cleanKey, req.Data, req.MimeType); err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	s.attachPreview(ctx, d, req.Data, req.MimeType)

	if err := s.deliverableRepo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save deliverable: %w", err)
	}

	s.logger.Info("Deliverable uploaded",
		zap.String("project_id", p.ID.String()),
		zap.Int("version", version),
		zap.String("mime_type", req.MimeType),
		zap.Bool("watermark_applied", d.WatermarkApplied))
	return d, nil
}

// attachPreview runs the watermarking pipeline and records the preview
// rendition. Every failure path falls back to serving the original.
func (s *DeliveryService) attachPreview(ctx context.Context, d *delivery.Deliverable, data []byte, mimeType string) {
	marked, err := s.renderWatermark(ctx, data, mimeType)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			s.logger.Info("No watermark renderer for mime type; preview falls back to original",
				zap.String("mime_type", mimeType))
		} else {
			s.logger.Warn("Watermarking failed; preview falls back to original",
				zap.String("mime_type", mimeType),
				zap.Error(err))
		}
		d.SetPreview("", false)
		return
	}

	previewKey := artifactKey(d.ProjectID, d.Version, "preview", d.FileName)
	if err := s.storage.Upload(ctx, previewKey, marked, mimeType); err != nil {
		s.logger.Warn("Failed to store watermarked preview; preview falls back to original",
			zap.String("preview_key", previewKey),
			zap.Error(err))
		d.SetPreview("", false)
		return
	}
	d.SetPreview(previewKey, true)
}

// renderWatermark bounds a single watermark run. The renderer may not be
// cancellable mid-draw, so the timeout is enforced here as well.
func (s *DeliveryService) renderWatermark(ctx context.Context, data []byte, mimeType string) ([]byte, error) {
	wmCtx, cancel := context.WithTimeout(ctx, s.watermarkTimeout)
	defer cancel()

	type rendered struct {
		data []byte
		err  error
	}
	done := make(chan rendered, 1)
	go func() {
		out, err := s.watermarker.Apply(wmCtx, data, mimeType)
		done <- rendered{data: out, err: err}
	}()

	select {
	case <-wmCtx.Done():
		return nil, wmCtx.Err()
	case r := <-done:
		return r.data, r.err
	}
}

// MarkReady advances a deliverable DRAFT -> REVIEW and moves the project
// into review. A project already in review stays there (revision loop).
// The two saves run in one transaction so a partial failure cannot leave a
// REVIEW deliverable on a project that never entered review.
func (s *DeliveryService) MarkReady(ctx context.Context, deliverableID uuid.UUID) (*delivery.Deliverable, error) {
	var out *delivery.Deliverable

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, p, err := loadDeliverableWithProject(ctx, repos.Deliverables(), repos.Projects(), deliverableID)
		if err != nil {
			return err
		}

		if err := d.MarkReady(); err != nil {
			return err
		}
		if err := p.EnterReview(); err != nil {
			return err
		}

		if err := repos.Deliverables().Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save deliverable: %w", err)
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}

		s.logger.Info("Deliverable marked ready for review",
			zap.String("deliverable_id", d.ID.String()),
			zap.String("project_id", p.ID.String()),
			zap.Int("version", d.Version))
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitFeedbackRequest carries a client's response to a deliverable version
type SubmitFeedbackRequest struct {
	DeliverableID  uuid.UUID
	Type           delivery.FeedbackType
	Notes          string
	SubmitterName  string
	SubmitterEmail string
}

// SubmitFeedback persists a feedback record. NEEDS_REVISION keeps the
// project at IN_REVIEW; the expected follow-up is a new deliverable version.
// The record is persisted regardless of what later happens at sign-off.
func (s *DeliveryService) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*delivery.Feedback, error) {
	d, _, err := s.findDeliverableWithProject(ctx, req.DeliverableID)
	if err != nil {
		return nil, err
	}

	fb, err := delivery.NewFeedback(d.ID, d.ProjectID, req.Type, req.Notes, req.SubmitterName, req.SubmitterEmail)
	if err != nil {
		return nil, err
	}
	if err := s.feedbackRepo.Save(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.logger.Info("Feedback submitted",
		zap.String("deliverable_id", d.ID.String()),
		zap.String("type", string(req.Type)))
	return fb, nil
}

// SignOffRequest carries a release authorization
type SignOffRequest struct {
	DeliverableID uuid.UUID
	SignerName    string
	SignerEmail   string
}

// SignOff records a sign-off and attempts the release transition. Release
// requires both an approval feedback on the deliverable and an open payment
// gate; a refusal surfaces the guard's reason code and leaves previously
// persisted feedback untouched. The signoff record, the deliverable
// finalization, and the project release commit in one transaction: a
// transient failure rolls all three back, so a retry never finds a stray
// signoff row against a project still in review.
func (s *DeliveryService) SignOff(ctx context.Context, req SignOffRequest) (*delivery.Signoff, error) {
	var signoff *delivery.Signoff
	var released *project.Project

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, p, err := loadDeliverableWithProject(ctx, repos.Deliverables(), repos.Projects(), req.DeliverableID)
		if err != nil {
			return err
		}

		feedbacks, err := repos.Feedbacks().FindByDeliverableID(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("failed to load feedback: %w", err)
		}
		approved := false
		for _, fb := range feedbacks {
			if fb.Type.IsApproval() {
				approved = true
				break
			}
		}
		if !approved {
			return ErrApprovalRequired
		}

		signoff, err = delivery.NewSignoff(p.ID, d.ID, req.SignerName, req.SignerEmail)
		if err != nil {
			return err
		}

		if err := p.Release(); err != nil {
			return err
		}
		if err := d.Finalize(); err != nil {
			return err
		}

		if err := repos.Signoffs().Save(ctx, signoff); err != nil {
			if errors.Is(err, delivery.ErrDuplicateSignoff) {
				// concurrent sign-off won the race; this transaction rolls back
				return err
			}
			return fmt.Errorf("failed to save signoff: %w", err)
		}
		if err := repos.Deliverables().Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save deliverable: %w", err)
		}
		if err := repos.Projects().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}

		s.logger.Info("Project released on sign-off",
			zap.String("project_id", p.ID.String()),
			zap.String("deliverable_id", d.ID.String()),
			zap.String("signer", req.SignerEmail))
		released = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, released)
	return signoff, nil
}

// ListDeliverables lists a project's deliverable versions, newest first
func (s *DeliveryService) ListDeliverables(ctx context.Context, projectID uuid.UUID) ([]delivery.Deliverable, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, project.ErrProjectNotFound
	}
	return s.deliverableRepo.FindByProjectID(ctx, projectID)
}

// ListFeedback lists all feedback across a project's versions, newest first
func (s *DeliveryService) ListFeedback(ctx context.Context, projectID uuid.UUID) ([]delivery.Feedback, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, project.ErrProjectNotFound
	}
	return s.feedbackRepo.FindByProjectID(ctx, projectID)
}

// AccessGrant is a granted, time-limited access to one artifact rendition
type AccessGrant struct {
	Variant   delivery.Variant `json:"variant"`
	Draft     bool             `json:"draft"`
	URL       string           `json:"url"`
	ExpiresAt time.Time        `json:"expires_at"`
	FileName  string           `json:"file_name"`
	MimeType  string           `json:"mime_type"`
}

// ResolveDownload evaluates the gating decision table for a download and,
// when access is granted, presigns the selected rendition
func (s *DeliveryService) ResolveDownload(ctx context.Context, deliverableID uuid.UUID) (*AccessGrant, error) {
	d, p, err := s.findDeliverableWithProject(ctx, deliverableID)
	if err != nil {
		return nil, err
	}

	access, err := delivery.ResolveDownload(p, d)
	if err != nil {
		return nil, err
	}
	return s.presign(ctx, d, access)
}

// ResolveView serves the inline preview. Watermarked previews are served
// regardless of payment; the unwatermarked fallback goes through the
// payment gate because it aliases the clean original.
func (s *DeliveryService) ResolveView(ctx context.Context, deliverableID uuid.UUID) (*AccessGrant, error) {
	d, p, err := s.findDeliverableWithProject(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	access, err := delivery.ResolveView(p, d)
	if err != nil {
		return nil, err
	}
	return s.presign(ctx, d, access)
}

func (s *DeliveryService) presign(ctx context.Context, d *delivery.Deliverable, access *delivery.Access) (*AccessGrant, error) {
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, access.StorageKey, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign artifact URL: %w", err)
	}
	return &AccessGrant{
		Variant:   access.Variant,
		Draft:     access.Draft,
		URL:       url,
		ExpiresAt: expiresAt,
		FileName:  d.FileName,
		MimeType:  d.MimeType,
	}, nil
}

func (s *DeliveryService) findDeliverableWithProject(ctx context.Context, deliverableID uuid.UUID) (*delivery.Deliverable, *project.Project, error) {
	return loadDeliverableWithProject(ctx, s.deliverableRepo, s.projectRepo, deliverableID)
}

func loadDeliverableWithProject(ctx context.Context, deliverables delivery.DeliverableRepository, projects project.Repository, deliverableID uuid.UUID) (*delivery.Deliverable, *project.Project, error) {
	d, err := deliverables.FindByID(ctx, deliverableID)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		return nil, nil, delivery.ErrDeliverableNotFound
	}
	p, err := projects.FindByID(ctx, d.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, project.ErrProjectNotFound
	}
	return d, p, nil
}

func (s *DeliveryService) publishEvents(ctx context.Context, p *project.Project) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish delivery events",
			zap.String("project_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}

func artifactKey(projectID uuid.UUID, version int, rendition, fileName string) string {
	return fmt.Sprintf("projects/%s/v%d/%s/%s", projectID, version, rendition, fileName)
}
