package persistence

import (
	"context"
	"errors"

	"github.com/clientdesk/backend/internal/domain/billing"
	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/clientdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentEventRepository implements billing.PaymentEventRepository
// using GORM. The ledger is append-only: only Insert writes, and the
// unique index on (provider, external_id) decides races.
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewGormPaymentEventRepository creates a new GormPaymentEventRepository
func NewGormPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// Insert appends a ledger entry. A unique-constraint violation on the
// event id means the entry already exists: the caller lost the insert
// race and receives billing.ErrDuplicateEvent, never a raw driver error.
func (r *GormPaymentEventRepository) Insert(ctx context.Context, event *billing.PaymentEvent) error {
	model := models.PaymentEventModelFromDomain(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return billing.ErrDuplicateEvent
		}
		return err
	}
	return nil
}

// HasProcessed is the advisory fast pre-check used by ingress
func (r *GormPaymentEventRepository) HasProcessed(ctx context.Context, provider, externalID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentEventModel{}).
		Where("provider = ? AND external_id = ?", provider, externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByExternalID finds a ledger entry by provider and external event id
func (r *GormPaymentEventRepository) FindByExternalID(ctx context.Context, provider, externalID string) (*billing.PaymentEvent, error) {
	var model models.PaymentEventModel
	if err := r.db.WithContext(ctx).
		First(&model, "provider = ? AND external_id = ?", provider, externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnmatched lists UNMATCHED entries for manual reconciliation, newest first
func (r *GormPaymentEventRepository) FindUnmatched(ctx context.Context, filter shared.Filter) (shared.Paginated[billing.PaymentEvent], error) {
	var empty shared.Paginated[billing.PaymentEvent]

	query := r.db.WithContext(ctx).
		Model(&models.PaymentEventModel{}).
		Where("status = ?", string(billing.EventStatusUnmatched))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return empty, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentEventSortFields, "processed_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var eventModels []models.PaymentEventModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&eventModels).Error; err != nil {
		return empty, err
	}

	events := make([]billing.PaymentEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return shared.NewPaginated(events, total, filter.Page, filter.PageSize), nil
}

// Ensure GormPaymentEventRepository implements billing.PaymentEventRepository
var _ billing.PaymentEventRepository = (*GormPaymentEventRepository)(nil)
