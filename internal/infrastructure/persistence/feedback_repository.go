package persistence

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeedbackRepository implements delivery.FeedbackRepository using GORM
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// FindByDeliverableID lists feedback for a deliverable, newest first
func (r *GormFeedbackRepository) FindByDeliverableID(ctx context.Context, deliverableID uuid.UUID) ([]delivery.Feedback, error) {
	var feedbackModels []models.FeedbackModel
	if err := r.db.WithContext(ctx).
		Where("deliverable_id = ?", deliverableID).
		Order("created_at DESC").
		Find(&feedbackModels).Error; err != nil {
		return nil, err
	}
	return feedbackFromModels(feedbackModels), nil
}

// FindByProjectID lists all feedback across a project's versions, newest first
func (r *GormFeedbackRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Feedback, error) {
	var feedbackModels []models.FeedbackModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&feedbackModels).Error; err != nil {
		return nil, err
	}
	return feedbackFromModels(feedbackModels), nil
}

// Save persists a feedback record
func (r *GormFeedbackRepository) Save(ctx context.Context, f *delivery.Feedback) error {
	model := models.FeedbackModelFromDomain(f)
	return r.db.WithContext(ctx).Save(model).Error
}

func feedbackFromModels(feedbackModels []models.FeedbackModel) []delivery.Feedback {
	feedbacks := make([]delivery.Feedback, len(feedbackModels))
	for i, model := range feedbackModels {
		feedbacks[i] = *model.ToDomain()
	}
	return feedbacks
}

// Ensure GormFeedbackRepository implements delivery.FeedbackRepository
var _ delivery.FeedbackRepository = (*GormFeedbackRepository)(nil)
