package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postCalculate(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := New(nil)
	req := httptest.NewRequest(http.MethodPost, "/rates/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const looseAnalysisItem = `{
	"item_code": "0221",
	"description_en": "Plain cement concrete 1:2:4",
	"unit": "cum",
	"category": "Concrete",
	"base_rate": 8339.85,
	"analysis_json": {
		"analysis_for_quantity": 10,
		"components": [
			{"type": "material", "desc": "Cement", "qty": 1.2, "rate": 500, "uom": "t"},
			{"type": "labour", "desc": "Mason", "qty": "0.5", "rate": 800},
			{"type": "machinery", "desc": "Mixer", "qty": 0.1, "rate": 1500},
			{"type": "material", "desc": "Water", "qty": 0.3, "rate": 100},
			{"type": "sundry", "desc": "Sundries"}
		]
	}
}`

func TestCalculate(t *testing.T) {
	rr := postCalculate(t, `{"item":`+looseAnalysisItem+`,
		"line": {"quantity": 10},
		"policy": {"water_pct": 0, "gst_factor": 0, "cpoh_pct": 0, "cess_pct": 0},
		"tables": {"default_lead_km": 5, "default_lift_m": 6},
		"region": "MH"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res CalculateResponse
	decode(t, rr, &res)
	if res.ItemCode != "0221" || res.UOM != "cum" {
		t.Fatalf("unexpected header: %+v", res.Result)
	}
	if res.Buckets["material"] != 63 || res.Buckets["labour"] != 40 || res.Buckets["machinery"] != 15 {
		t.Fatalf("unexpected buckets: %+v", res.Buckets)
	}
	if res.FinalRate != 118 || res.FinalAmount != 1180 {
		t.Fatalf("final = %v / %v", res.FinalRate, res.FinalAmount)
	}
}

func TestCalculate_WithMarkups(t *testing.T) {
	rr := postCalculate(t, `{
		"item": {"code": "0114", "description": "Earthwork excavation in all kinds of soil", "uom": "cum",
			"category": "composite", "base_rate": 74.01, "initial_lead_included_km": 5, "initial_lift_included_m": 6},
		"line": {"quantity": 2500, "total_lead_km": 5, "total_lift_m": 6},
		"policy": {"water_pct": 1, "gst_factor": 0.2127, "cpoh_pct": 15, "cess_pct": 1},
		"tables": {},
		"region": "MH"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res CalculateResponse
	decode(t, rr, &res)
	if res.FinalRate != 105.29 || res.FinalAmount != 263225 {
		t.Fatalf("final = %v / %v", res.FinalRate, res.FinalAmount)
	}
	if res.Deltas.CPOH <= 0 {
		t.Fatalf("expected a positive overhead delta: %+v", res.Deltas)
	}
}

func TestCalculate_Errors(t *testing.T) {
	policy := `"policy": {"water_pct": 1, "gst_factor": 0.2127, "cpoh_pct": 15, "cess_pct": 1}`
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing item", `{"line":{"quantity":1},` + policy + `}`, http.StatusBadRequest, "validation_error"},
		{"missing code", `{"item":{"base_rate":10,"category":"labour"},` + policy + `,"tables":{}}`, http.StatusBadRequest, "validation_error"},
		{"item not an object", `{"item":[1,2],` + policy + `}`, http.StatusBadRequest, "invalid_json"},
		{"no policy", `{"item":{"code":"A","base_rate":10,"category":"labour"},"line":{"quantity":1},"tables":{},"region":"MH"}`, http.StatusUnprocessableEntity, "missing_configuration"},
		{"no tables", `{"item":{"code":"A","base_rate":10,"category":"labour"},"line":{"quantity":1},` + policy + `,"region":"MH"}`, http.StatusUnprocessableEntity, "missing_configuration"},
		{"negative quantity", `{"item":{"code":"A","base_rate":10,"category":"labour"},"line":{"quantity":-1},` + policy + `,"tables":{}}`, http.StatusBadRequest, "validation_error"},
		{"zero analysis quantity", `{"item":{"code":"A","category":"labour","analysis":{"analysis_for_quantity":0,"components":[{"category":"labour","quantity":1,"rate":1}]}},` + policy + `,"tables":{}}`, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, postCalculate(t, tt.body), tt.status, tt.code)
		})
	}
}
