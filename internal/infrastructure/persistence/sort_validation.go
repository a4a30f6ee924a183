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

// CommonSortFields contains fields common to most tables
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"display_name": true,
	"email":        true,
	"role":         true,
	"status":       true,
}

// DishSortFields contains allowed sort fields for dishes
var DishSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"category":     true,
	"price":        true,
	"prep_minutes": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":        true,
	"updated_at":        true,
	"order_number":      true,
	"status":            true,
	"total":             true,
	"approval_deadline": true,
	"delivered_at":      true,
	"completed_at":      true,
}

// LedgerSortFields contains allowed sort fields for loyalty ledger entries
var LedgerSortFields = map[string]bool{
	"created_at": true,
	"points":     true,
	"type":       true,
}

// NotificationSortFields contains allowed sort fields for notifications
var NotificationSortFields = map[string]bool{
	"created_at": true,
	"read_at":    true,
	"kind":       true,
}
