package server

import (
	"errors"
	"testing"

	"boqrate/internal/rate"
)

func TestDefaultNormalizer(t *testing.T) {
	item, err := NewNormalizer("upload").Normalize([]byte(looseAnalysisItem))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if item.Code != "0221" || item.UOM != "cum" || item.Category != rate.Concrete {
		t.Fatalf("unexpected item: %+v", item)
	}
	a := item.Analysis
	if a == nil || a.AnalysisForQuantity != 10 || len(a.Components) != 5 {
		t.Fatalf("unexpected analysis: %+v", a)
	}
	if a.Components[1].Quantity != 0.5 || a.Components[1].UOM != "-" {
		t.Fatalf("string quantity or missing uom not normalized: %+v", a.Components[1])
	}
	sundry := a.Components[4]
	if sundry.Quantity != 0 || sundry.Rate != 0 || sundry.UOM != "-" || sundry.Category != rate.Sundry {
		t.Fatalf("absent fields should default: %+v", sundry)
	}
}

func TestDefaultNormalizer_Defaults(t *testing.T) {
	item, err := NewNormalizer("").Normalize([]byte(`{"code":"X","components":[{"category":"labour","qty":2,"rate":3}]}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if item.UOM != "-" || item.Analysis == nil || item.Analysis.AnalysisForQuantity != 1 {
		t.Fatalf("expected default uom and analysis quantity: %+v", item)
	}

	_, err = NewNormalizer("").Normalize([]byte(`{"description":"no code"}`))
	if !errors.Is(err, ErrMissingCode) {
		t.Fatalf("expected ErrMissingCode, got %v", err)
	}
	if _, err := NewNormalizer("").Normalize([]byte(`nope`)); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestGetPath(t *testing.T) {
	m := map[string]any{"a": map[string]any{"b": map[string]any{"c": "deep"}}}
	if got := getString(m, []string{"a.x", "a.b.c"}); got != "deep" {
		t.Fatalf("getString = %q", got)
	}
	if getPath(m, "a.b.c.d") != nil {
		t.Fatalf("expected nil past a leaf")
	}
	if getFloat(map[string]any{"n": "12.5"}, []string{"n"}) != 12.5 {
		t.Fatalf("numeric string not parsed")
	}
}
