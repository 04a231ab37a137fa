package rate

import "fmt"

// ValidationError reports malformed engine input. The caller must fix the input.
type ValidationError struct {
	ItemCode string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.ItemCode == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("item %s: invalid %s: %s", e.ItemCode, e.Field, e.Reason)
}

// MissingConfigError reports mandatory configuration absent for a region.
type MissingConfigError struct {
	ItemCode string
	Region   string
	Field    string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("item %s: missing regional configuration %q for region %q", e.ItemCode, e.Field, e.Region)
}

// Note records an optional surcharge row that was not found and resolved to zero.
type Note struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

func invalid(item CatalogItem, field, reason string) error {
	return &ValidationError{ItemCode: item.Code, Field: field, Reason: reason}
}
