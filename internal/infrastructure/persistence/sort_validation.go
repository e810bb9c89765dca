package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"public_id":      true,
	"name":           true,
	"payment_status": true,
	"portal_stage":   true,
	"last_update_at": true,
}

// PaymentEventSortFields contains allowed sort fields for ledger entries
var PaymentEventSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"provider":     true,
	"external_id":  true,
	"event_type":   true,
	"status":       true,
	"processed_at": true,
}

// DeliverableSortFields contains allowed sort fields for deliverables
var DeliverableSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"doc_version": true,
	"state":       true,
	"file_name":   true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"status":     true,
	"paid_at":    true,
}
