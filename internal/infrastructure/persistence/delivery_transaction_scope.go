package persistence

import (
	"context"

	appdelivery "github.com/clientdesk/backend/internal/application/delivery"
	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/domain/project"
	"gorm.io/gorm"
)

// GormDeliveryTransactionScope implements the delivery unit of work using
// GORM transactions, mirroring GormTransactionScope on the billing side.
type GormDeliveryTransactionScope struct {
	db *gorm.DB
}

// NewGormDeliveryTransactionScope creates a new GormDeliveryTransactionScope.
func NewGormDeliveryTransactionScope(db *gorm.DB) *GormDeliveryTransactionScope {
	return &GormDeliveryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormDeliveryTransactionScope) Execute(ctx context.Context, fn func(repos appdelivery.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormDeliveryRepositories{tx: tx}
		return fn(repos)
	})
}

// gormDeliveryRepositories provides transaction-scoped delivery repositories.
type gormDeliveryRepositories struct {
	tx *gorm.DB
}

// Projects returns the project repository scoped to the current transaction.
func (r *gormDeliveryRepositories) Projects() project.Repository {
	return NewGormProjectRepository(r.tx)
}

// Deliverables returns the deliverable repository scoped to the current transaction.
func (r *gormDeliveryRepositories) Deliverables() delivery.DeliverableRepository {
	return NewGormDeliverableRepository(r.tx)
}

// Feedbacks returns the feedback repository scoped to the current transaction.
func (r *gormDeliveryRepositories) Feedbacks() delivery.FeedbackRepository {
	return NewGormFeedbackRepository(r.tx)
}

// Signoffs returns the signoff repository scoped to the current transaction.
func (r *gormDeliveryRepositories) Signoffs() delivery.SignoffRepository {
	return NewGormSignoffRepository(r.tx)
}

// Ensure GormDeliveryTransactionScope implements TransactionScope
var _ appdelivery.TransactionScope = (*GormDeliveryTransactionScope)(nil)

// Ensure gormDeliveryRepositories implements TransactionalRepositories
var _ appdelivery.TransactionalRepositories = (*gormDeliveryRepositories)(nil)
