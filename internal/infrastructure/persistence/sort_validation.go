package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks sortField against a whitelist and falls back to
// defaultField for anything unknown
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var paymentSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"customer_name": true,
	"amount":        true,
	"currency":      true,
	"status":        true,
	"expected_date": true,
}

var payableSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"vendor_name": true,
	"amount":      true,
	"balance":     true,
	"currency":    true,
}
