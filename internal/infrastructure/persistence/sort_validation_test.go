package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"uppercase ASC", "ASC", "ASC"},
		{"lowercase asc", "asc", "ASC"},
		{"padded asc", "  asc  ", "ASC"},
		{"uppercase DESC", "DESC", "DESC"},
		{"empty defaults to DESC", "", "DESC"},
		{"garbage defaults to DESC", "ascending; DROP TABLE projects", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	t.Run("accepts whitelisted field", func(t *testing.T) {
		got := ValidateSortField("processed_at", PaymentEventSortFields, "created_at")
		assert.Equal(t, "processed_at", got)
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		got := ValidateSortField("operator_id; --", PaymentEventSortFields, "processed_at")
		assert.Equal(t, "processed_at", got)
	})

	t.Run("empty falls back to default", func(t *testing.T) {
		got := ValidateSortField("", ProjectSortFields, "created_at")
		assert.Equal(t, "created_at", got)
	})
}

func TestSortFieldsWhitelists(t *testing.T) {
	// every whitelist must allow the base entity fields
	whitelists := map[string]map[string]bool{
		"CommonSortFields":       CommonSortFields,
		"ProjectSortFields":      ProjectSortFields,
		"PaymentEventSortFields": PaymentEventSortFields,
		"DeliverableSortFields":  DeliverableSortFields,
		"InvoiceSortFields":      InvoiceSortFields,
	}
	for name, fields := range whitelists {
		t.Run(name, func(t *testing.T) {
			assert.True(t, fields["id"])
			assert.True(t, fields["created_at"])
			assert.True(t, fields["updated_at"])
		})
	}
}
