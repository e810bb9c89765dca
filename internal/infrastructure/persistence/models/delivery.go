package models

import (
	"time"

	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/google/uuid"
)

// DeliverableModel maps the Deliverable aggregate to the deliverables table
type DeliverableModel struct {
	AggregateModel
	ProjectID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_deliverables_project_version"`
	DocVersion       int       `gorm:"column:doc_version;not null;uniqueIndex:idx_deliverables_project_version"`
	State            string    `gorm:"size:16;not null;default:'DRAFT'"`
	FileName         string    `gorm:"size:255;not null"`
	MimeType         string    `gorm:"size:128"`
	ByteSize         int64     `gorm:"not null"`
	CleanKey         string    `gorm:"size:1024;not null"`
	PreviewKey       string    `gorm:"size:1024;not null"`
	WatermarkApplied bool      `gorm:"not null;default:false"`
	UploadedBy       string    `gorm:"size:255"`
}

// TableName returns the table name for DeliverableModel
func (DeliverableModel) TableName() string {
	return "deliverables"
}

// ToDomain converts DeliverableModel to a domain Deliverable
func (m *DeliverableModel) ToDomain() *delivery.Deliverable {
	d := &delivery.Deliverable{
		ProjectID:        m.ProjectID,
		Version:          m.DocVersion,
		State:            delivery.DeliverableState(m.State),
		FileName:         m.FileName,
		MimeType:         m.MimeType,
		ByteSize:         m.ByteSize,
		CleanKey:         m.CleanKey,
		PreviewKey:       m.PreviewKey,
		WatermarkApplied: m.WatermarkApplied,
		UploadedBy:       m.UploadedBy,
	}
	m.PopulateAggregateRoot(&d.BaseAggregateRoot)
	return d
}

// DeliverableModelFromDomain converts a domain Deliverable to DeliverableModel
func DeliverableModelFromDomain(d *delivery.Deliverable) *DeliverableModel {
	m := &DeliverableModel{
		ProjectID:        d.ProjectID,
		DocVersion:       d.Version,
		State:            string(d.State),
		FileName:         d.FileName,
		MimeType:         d.MimeType,
		ByteSize:         d.ByteSize,
		CleanKey:         d.CleanKey,
		PreviewKey:       d.PreviewKey,
		WatermarkApplied: d.WatermarkApplied,
		UploadedBy:       d.UploadedBy,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// FeedbackModel maps Feedback records to the feedbacks table
type FeedbackModel struct {
	BaseModel
	DeliverableID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type           string    `gorm:"size:16;not null"`
	Notes          string    `gorm:"type:text"`
	SubmitterName  string    `gorm:"size:255;not null"`
	SubmitterEmail string    `gorm:"size:255;not null"`
}

// TableName returns the table name for FeedbackModel
func (FeedbackModel) TableName() string {
	return "feedbacks"
}

// ToDomain converts FeedbackModel to a domain Feedback
func (m *FeedbackModel) ToDomain() *delivery.Feedback {
	return &delivery.Feedback{
		BaseEntity:     m.BaseModel.ToDomain(),
		DeliverableID:  m.DeliverableID,
		ProjectID:      m.ProjectID,
		Type:           delivery.FeedbackType(m.Type),
		Notes:          m.Notes,
		SubmitterName:  m.SubmitterName,
		SubmitterEmail: m.SubmitterEmail,
	}
}

// FeedbackModelFromDomain converts a domain Feedback to FeedbackModel
func FeedbackModelFromDomain(f *delivery.Feedback) *FeedbackModel {
	m := &FeedbackModel{
		DeliverableID:  f.DeliverableID,
		ProjectID:      f.ProjectID,
		Type:           string(f.Type),
		Notes:          f.Notes,
		SubmitterName:  f.SubmitterName,
		SubmitterEmail: f.SubmitterEmail,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// SignoffModel maps Signoff records to the signoffs table
type SignoffModel struct {
	BaseModel
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DeliverableID uuid.UUID `gorm:"type:uuid;not null;index"`
	SignerName    string    `gorm:"size:255;not null"`
	SignerEmail   string    `gorm:"size:255;not null"`
	Action        string    `gorm:"size:32;not null"`
	SignedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for SignoffModel
func (SignoffModel) TableName() string {
	return "signoffs"
}

// ToDomain converts SignoffModel to a domain Signoff
func (m *SignoffModel) ToDomain() *delivery.Signoff {
	return &delivery.Signoff{
		BaseEntity:    m.BaseModel.ToDomain(),
		ProjectID:     m.ProjectID,
		DeliverableID: m.DeliverableID,
		SignerName:    m.SignerName,
		SignerEmail:   m.SignerEmail,
		Action:        m.Action,
		SignedAt:      m.SignedAt,
	}
}

// SignoffModelFromDomain converts a domain Signoff to SignoffModel
func SignoffModelFromDomain(s *delivery.Signoff) *SignoffModel {
	m := &SignoffModel{
		ProjectID:     s.ProjectID,
		DeliverableID: s.DeliverableID,
		SignerName:    s.SignerName,
		SignerEmail:   s.SignerEmail,
		Action:        s.Action,
		SignedAt:      s.SignedAt,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
