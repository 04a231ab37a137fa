package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"boqrate/internal/db"
	"boqrate/internal/migrations"
	"boqrate/internal/rate"
	"boqrate/internal/seed"
)

func seededStore(t *testing.T) (*Store, *db.DB) {
	t.Helper()
	ctx := context.Background()
	d, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if _, err := migrations.Up(ctx, d.DB.DB, d.Driver); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := seed.Run(ctx, d.DB); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return New(d.DB), d
}

func TestProject(t *testing.T) {
	s, _ := seededStore(t)
	p, err := s.Project(context.Background(), seed.SampleProjectID)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if p.Region != "MH" || p.RatebookID != seed.Ratebook2024ID {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.Policy.GSTFactor == nil || *p.Policy.GSTFactor != 0.2127 {
		t.Fatalf("unexpected policy: %+v", p.Policy)
	}

	_, err = s.Project(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProject_NullPolicyColumns(t *testing.T) {
	s, d := seededStore(t)
	if _, err := d.Exec(d.Rebind(`UPDATE projects SET cess_pct = NULL WHERE id = ?`), seed.SampleProjectID); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, err := s.Project(context.Background(), seed.SampleProjectID)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if p.Policy.CessPct != nil || p.Policy.WaterPct == nil {
		t.Fatalf("expected only cess to be unset: %+v", p.Policy)
	}
}

func TestLineItems(t *testing.T) {
	s, _ := seededStore(t)
	ctx := context.Background()
	lines, err := s.LineItems(ctx, seed.SampleProjectID)
	if err != nil {
		t.Fatalf("LineItems: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0].ID != seed.LineID("rbi-excavation-soil") || lines[1].ID != seed.LineID("rbi-excavation-rock") {
		t.Fatalf("lines out of order: %+v", lines)
	}
	if lines[0].TotalLeadKM == nil || *lines[0].TotalLeadKM != 5 {
		t.Fatalf("soil line lead override missing: %+v", lines[0])
	}
	if lines[2].TotalLeadKM != nil || lines[2].TotalLiftM != nil {
		t.Fatalf("pcc line should have no overrides: %+v", lines[2])
	}

	subs, err := s.Subprojects(ctx, seed.SampleProjectID)
	if err != nil || len(subs) != 2 || subs[0].Name != "Excavation Works" {
		t.Fatalf("Subprojects = %+v, %v", subs, err)
	}

	line, projectID, err := s.LineItem(ctx, seed.LineID("pcc-plinth"))
	if err != nil {
		t.Fatalf("LineItem: %v", err)
	}
	if projectID != seed.SampleProjectID || line.Quantity != 120 {
		t.Fatalf("unexpected line: %+v in %s", line, projectID)
	}
	if _, _, err := s.LineItem(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogItems(t *testing.T) {
	s, _ := seededStore(t)
	ctx := context.Background()
	pcc := seed.ItemID("cpwd-2024", "0221")
	soil := seed.ItemID("cpwd-2024", "0114")

	items, err := s.CatalogItems(ctx, []string{pcc, soil, "missing"})
	if err != nil {
		t.Fatalf("CatalogItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	a := items[pcc].Analysis
	if a == nil || a.AnalysisForQuantity != 10 || len(a.Components) != 7 {
		t.Fatalf("pcc analysis not loaded: %+v", a)
	}
	if a.Components[0].Description != "Portland cement" || a.Components[6].Category != rate.Machinery {
		t.Fatalf("components out of order: %+v", a.Components)
	}
	if items[soil].Analysis != nil || items[soil].InitialLeadKM != 1 {
		t.Fatalf("unexpected soil item: %+v", items[soil])
	}

	if _, err := s.CatalogItem(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRatebookItems(t *testing.T) {
	s, _ := seededStore(t)
	ctx := context.Background()
	items, err := s.RatebookItems(ctx, seed.Ratebook2025ID)
	if err != nil {
		t.Fatalf("RatebookItems: %v", err)
	}
	if len(items) != 4 || items[0].Code != "0114" || items[0].BaseRate != 145.50 {
		t.Fatalf("unexpected items: %+v", items)
	}
	rb, err := s.Ratebook(ctx, seed.Ratebook2025ID)
	if err != nil || rb.Year != 2025 {
		t.Fatalf("Ratebook = %+v, %v", rb, err)
	}
}

func TestTables(t *testing.T) {
	s, _ := seededStore(t)
	ctx := context.Background()

	tables, err := s.Tables(ctx, "mh")
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if tables.DefaultLeadKM != 5 || tables.DefaultLiftM != 6 {
		t.Fatalf("defaults = %v/%v", tables.DefaultLeadKM, tables.DefaultLiftM)
	}
	if len(tables.Royalties) != 2 || len(tables.Handling) != 6 || len(tables.Slabs) != 14 {
		t.Fatalf("unexpected table sizes: %d/%d/%d", len(tables.Royalties), len(tables.Handling), len(tables.Slabs))
	}
	var open, cumulative int
	for _, sl := range tables.Slabs {
		if sl.Unbounded() {
			open++
		}
		if sl.Cumulative {
			cumulative++
		}
	}
	if open != 4 || cumulative != 10 {
		t.Fatalf("open=%d cumulative=%d", open, cumulative)
	}

	missing, err := s.Tables(ctx, "KA")
	if err != nil {
		t.Fatalf("Tables(KA): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no tables for an unconfigured region, got %+v", missing)
	}

	tg, err := s.Tables(ctx, "TG")
	if err != nil {
		t.Fatalf("Tables(TG): %v", err)
	}
	if tg == nil || tg.DefaultLeadKM != 5 || len(tg.Slabs) != 0 {
		t.Fatalf("expected TG defaults without slabs: %+v", tg)
	}
}
