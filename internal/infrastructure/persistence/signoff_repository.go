package persistence

import (
	"context"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSignoffRepository implements delivery.SignoffRepository using GORM
type GormSignoffRepository struct {
	db *gorm.DB
}

// NewGormSignoffRepository creates a new GormSignoffRepository
func NewGormSignoffRepository(db *gorm.DB) *GormSignoffRepository {
	return &GormSignoffRepository{db: db}
}

// FindByProjectID lists a project's signoffs, newest first
func (r *GormSignoffRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Signoff, error) {
	var signoffModels []models.SignoffModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("signed_at DESC").
		Find(&signoffModels).Error; err != nil {
		return nil, err
	}
	signoffs := make([]delivery.Signoff, len(signoffModels))
	for i, model := range signoffModels {
		signoffs[i] = *model.ToDomain()
	}
	return signoffs, nil
}

// Save persists a signoff record. The unique index on project_id backs the
// one-effective-signoff-per-release invariant: a violation means a
// concurrent sign-off already released the project.
func (r *GormSignoffRepository) Save(ctx context.Context, s *delivery.Signoff) error {
	model := models.SignoffModelFromDomain(s)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return delivery.ErrDuplicateSignoff
		}
		return err
	}
	return nil
}

// Ensure GormSignoffRepository implements delivery.SignoffRepository
var _ delivery.SignoffRepository = (*GormSignoffRepository)(nil)
