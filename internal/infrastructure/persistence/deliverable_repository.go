package persistence

import (
	"context"
	"errors"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliverableRepository implements delivery.DeliverableRepository using GORM
type GormDeliverableRepository struct {
	db *gorm.DB
}

// NewGormDeliverableRepository creates a new GormDeliverableRepository
func NewGormDeliverableRepository(db *gorm.DB) *GormDeliverableRepository {
	return &GormDeliverableRepository{db: db}
}

// FindByID finds a deliverable by ID
func (r *GormDeliverableRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Deliverable, error) {
	var model models.DeliverableModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProjectID lists a project's deliverables, newest version first
func (r *GormDeliverableRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Deliverable, error) {
	var deliverableModels []models.DeliverableModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("doc_version DESC").
		Find(&deliverableModels).Error; err != nil {
		return nil, err
	}
	deliverables := make([]delivery.Deliverable, len(deliverableModels))
	for i, model := range deliverableModels {
		deliverables[i] = *model.ToDomain()
	}
	return deliverables, nil
}

// FindLatestByProjectID finds the highest-version deliverable for a project
func (r *GormDeliverableRepository) FindLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*delivery.Deliverable, error) {
	var model models.DeliverableModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("doc_version DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// NextVersion returns the next version number for a project's deliverables
func (r *GormDeliverableRepository) NextVersion(ctx context.Context, projectID uuid.UUID) (int, error) {
	var maxVersion int
	if err := r.db.WithContext(ctx).
		Model(&models.DeliverableModel{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(doc_version), 0)").
		Scan(&maxVersion).Error; err != nil {
		return 0, err
	}
	return maxVersion + 1, nil
}

// Save creates or updates a deliverable
func (r *GormDeliverableRepository) Save(ctx context.Context, d *delivery.Deliverable) error {
	model := models.DeliverableModelFromDomain(d)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormDeliverableRepository implements delivery.DeliverableRepository
var _ delivery.DeliverableRepository = (*GormDeliverableRepository)(nil)
