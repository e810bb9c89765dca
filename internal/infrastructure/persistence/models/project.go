package models

import (
	"time"

	"github.com/clientdesk/backend/internal/domain/project"
)

// ProjectModel maps the Project aggregate to the projects table
type ProjectModel struct {
	AggregateModel
	PublicID         string     `gorm:"size:64;not null;uniqueIndex"`
	Name             string     `gorm:"size:255;not null"`
	ClientName       string     `gorm:"size:255"`
	ClientEmail      string     `gorm:"size:255"`
	PaymentRequired  bool       `gorm:"not null;default:true"`
	PaymentStatus    string     `gorm:"size:16;not null;default:'UNPAID';index"`
	PaymentProvider  *string    `gorm:"size:16"`
	PaidAt           *time.Time
	RefundedAt       *time.Time
	PaymentLinkID    *string `gorm:"size:255"`
	PaymentLinkURL   *string `gorm:"size:1024"`
	CorrelationToken *string `gorm:"size:128;uniqueIndex"`
	PortalStage      string  `gorm:"size:16;not null;default:'SCHEDULED'"`
	LastUpdateAt     time.Time
}

// TableName returns the table name for ProjectModel
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts ProjectModel to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	p := &project.Project{
		PublicID:        m.PublicID,
		Name:            m.Name,
		ClientName:      m.ClientName,
		ClientEmail:     m.ClientEmail,
		PaymentRequired: m.PaymentRequired,
		PaymentStatus:   project.PaymentStatus(m.PaymentStatus),
		PaidAt:          m.PaidAt,
		RefundedAt:      m.RefundedAt,
		PaymentLinkID:   m.PaymentLinkID,
		PaymentLinkURL:  m.PaymentLinkURL,
		PortalStage:     project.PortalStage(m.PortalStage),
		LastUpdateAt:    m.LastUpdateAt,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	if m.PaymentProvider != nil {
		provider := project.PaymentProvider(*m.PaymentProvider)
		p.PaymentProvider = &provider
	}
	if m.CorrelationToken != nil {
		p.CorrelationToken = *m.CorrelationToken
	}
	return p
}

// ProjectModelFromDomain converts a domain Project to ProjectModel
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		PublicID:        p.PublicID,
		Name:            p.Name,
		ClientName:      p.ClientName,
		ClientEmail:     p.ClientEmail,
		PaymentRequired: p.PaymentRequired,
		PaymentStatus:   string(p.PaymentStatus),
		PaidAt:          p.PaidAt,
		RefundedAt:      p.RefundedAt,
		PaymentLinkID:   p.PaymentLinkID,
		PaymentLinkURL:  p.PaymentLinkURL,
		PortalStage:     string(p.PortalStage),
		LastUpdateAt:    p.LastUpdateAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	if p.PaymentProvider != nil {
		provider := string(*p.PaymentProvider)
		m.PaymentProvider = &provider
	}
	if p.CorrelationToken != "" {
		token := p.CorrelationToken
		m.CorrelationToken = &token
	}
	return m
}
