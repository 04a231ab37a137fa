package server

import (
	"encoding/json"
	"errors"
	"strings"

	"boqrate/internal/rate"
)

// Normalizer maps loosely shaped catalog item payloads into rate.CatalogItem.
type Normalizer interface {
	Normalize(body []byte) (rate.CatalogItem, error)
}

// ErrMissingCode is returned when a payload cannot produce an item code.
var ErrMissingCode = errors.New("missing item code")

// NewNormalizer selects a normalizer for the given source.
// Currently returns DefaultNormalizer for all sources.
func NewNormalizer(source string) Normalizer { return &DefaultNormalizer{} }

// DefaultNormalizer accepts the common spellings found in uploaded schedules.
// Absent component rates and quantities become 0 and an absent unit becomes "-".
type DefaultNormalizer struct{}

func (n *DefaultNormalizer) Normalize(body []byte) (rate.CatalogItem, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return rate.CatalogItem{}, err
	}
	code := strings.TrimSpace(getString(payload, []string{"code", "item_code", "mapped_cpwd_code"}))
	if code == "" {
		return rate.CatalogItem{}, ErrMissingCode
	}
	item := rate.CatalogItem{
		ID:            getString(payload, []string{"id"}),
		RatebookID:    getString(payload, []string{"ratebook_id"}),
		Code:          code,
		Description:   getString(payload, []string{"description", "description_en", "desc"}),
		UOM:           orDefault(getString(payload, []string{"uom", "unit"}), "-"),
		Category:      rate.Category(strings.ToLower(getString(payload, []string{"category", "type"}))),
		BaseRate:      getFloat(payload, []string{"base_rate", "rate"}),
		InitialLeadKM: getFloat(payload, []string{"initial_lead_included_km", "initial_lead_km"}),
		InitialLiftM:  getFloat(payload, []string{"initial_lift_included_m", "initial_lift_m"}),
	}

	rows, _ := getAny(payload, []string{"analysis.components", "analysis_json.components", "components"}).([]any)
	if len(rows) == 0 {
		return item, nil
	}
	qty := getFloat(payload, []string{"analysis.analysis_for_quantity", "analysis_json.analysis_for_quantity", "analysis_for_quantity"})
	if getAny(payload, []string{"analysis.analysis_for_quantity", "analysis_json.analysis_for_quantity", "analysis_for_quantity"}) == nil {
		qty = 1
	}
	item.Analysis = &rate.CostAnalysis{
		AnalysisForQuantity: qty,
		UOM:                 getString(payload, []string{"analysis.uom", "analysis_json.uom"}),
	}
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		item.Analysis.Components = append(item.Analysis.Components, rate.CostComponent{
			Category:    rate.Category(strings.ToLower(getString(m, []string{"category", "type", "component_type"}))),
			Description: getString(m, []string{"description", "desc", "name"}),
			Quantity:    getFloat(m, []string{"quantity", "qty"}),
			Rate:        getFloat(m, []string{"rate", "unit_rate"}),
			UOM:         orDefault(getString(m, []string{"uom", "unit"}), "-"),
		})
	}
	return item, nil
}

// getString returns the first non-empty string from the candidate keys.
// Supports dot-path navigation for nested maps.
func getString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v := getPath(m, k); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// getFloat returns the first numeric value (or numeric string) from the
// candidate keys, or 0.
func getFloat(m map[string]any, keys []string) float64 {
	for _, k := range keys {
		v := getPath(m, k)
		if f, ok := toFloat(v); ok {
			return f
		}
		if s, ok := v.(string); ok {
			if f, err := parseFloat(strings.TrimSpace(s)); err == nil {
				return f
			}
		}
	}
	return 0
}

// getAny returns the first non-nil value from the candidate keys.
func getAny(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v := getPath(m, k); v != nil {
			return v
		}
	}
	return nil
}

// getPath navigates a dot-separated key into nested maps.
func getPath(m map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var cur any = m
	for _, p := range parts {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := mm[p]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}
