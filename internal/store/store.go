// Package store reads projects, catalog items and regional surcharge tables
// and hands them to the engine as plain values.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"boqrate/internal/rate"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type Project struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Region     string       `json:"region"`
	RatebookID string       `json:"ratebook_id,omitempty"`
	Policy     *rate.Policy `json:"policy"`
}

type Subproject struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Name      string `json:"name" db:"name"`
	Position  int    `json:"position" db:"position"`
}

// LineItem is a persisted BOQ line.
type LineItem struct {
	ID             string   `json:"id"`
	SubprojectID   string   `json:"subproject_id"`
	RatebookItemID string   `json:"ratebook_item_id"`
	Quantity       float64  `json:"quantity"`
	TotalLeadKM    *float64 `json:"total_lead_km,omitempty"`
	TotalLiftM     *float64 `json:"total_lift_m,omitempty"`
	Position       int      `json:"position"`
}

// Line converts the persisted row into engine input.
func (l LineItem) Line() rate.Line {
	return rate.Line{ID: l.ID, Quantity: l.Quantity, TotalLeadKM: l.TotalLeadKM, TotalLiftM: l.TotalLiftM}
}

type Ratebook struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Region string `json:"region" db:"region"`
	Year   int    `json:"year" db:"year"`
}

type projectRow struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	Region     string          `db:"region"`
	RatebookID sql.NullString  `db:"ratebook_id"`
	WaterPct   sql.NullFloat64 `db:"water_pct"`
	GSTFactor  sql.NullFloat64 `db:"gst_factor"`
	CPOHPct    sql.NullFloat64 `db:"cpoh_pct"`
	CessPct    sql.NullFloat64 `db:"cess_pct"`
}

type lineRow struct {
	ID             string          `db:"id"`
	SubprojectID   string          `db:"subproject_id"`
	RatebookItemID string          `db:"ratebook_item_id"`
	Quantity       float64         `db:"quantity"`
	TotalLeadKM    sql.NullFloat64 `db:"total_lead_km"`
	TotalLiftM     sql.NullFloat64 `db:"total_lift_m"`
	Position       int             `db:"position"`
}

func (r lineRow) toLineItem() LineItem {
	return LineItem{
		ID:             r.ID,
		SubprojectID:   r.SubprojectID,
		RatebookItemID: r.RatebookItemID,
		Quantity:       r.Quantity,
		TotalLeadKM:    nullable(r.TotalLeadKM),
		TotalLiftM:     nullable(r.TotalLiftM),
		Position:       r.Position,
	}
}

type itemRow struct {
	ID            string  `db:"id"`
	RatebookID    string  `db:"ratebook_id"`
	Code          string  `db:"item_code"`
	Description   string  `db:"description"`
	UOM           string  `db:"uom"`
	Category      string  `db:"category"`
	BaseRate      float64 `db:"base_rate"`
	InitialLeadKM float64 `db:"initial_lead_km"`
	InitialLiftM  float64 `db:"initial_lift_m"`
}

func (r itemRow) toItem() rate.CatalogItem {
	return rate.CatalogItem{
		ID:            r.ID,
		RatebookID:    r.RatebookID,
		Code:          r.Code,
		Description:   r.Description,
		UOM:           r.UOM,
		Category:      rate.Category(r.Category),
		BaseRate:      r.BaseRate,
		InitialLeadKM: r.InitialLeadKM,
		InitialLiftM:  r.InitialLiftM,
	}
}

type componentRow struct {
	ItemID      string  `db:"ratebook_item_id"`
	Category    string  `db:"category"`
	Description string  `db:"description"`
	Quantity    float64 `db:"quantity"`
	Rate        float64 `db:"rate"`
	UOM         string  `db:"uom"`
}

type analysisRow struct {
	ItemID              string  `db:"ratebook_item_id"`
	AnalysisForQuantity float64 `db:"analysis_for_quantity"`
	UOM                 string  `db:"uom"`
}

const itemColumns = `id, ratebook_id, item_code, description, uom, category, base_rate, initial_lead_km, initial_lift_m`

func (s *Store) Project(ctx context.Context, id string) (Project, error) {
	var r projectRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`
		SELECT id, name, region, ratebook_id, water_pct, gst_factor, cpoh_pct, cess_pct
		FROM projects WHERE id = ?`), id)
	if err != nil {
		return Project{}, notFound(err, "project", id)
	}
	return Project{
		ID:         r.ID,
		Name:       r.Name,
		Region:     r.Region,
		RatebookID: r.RatebookID.String,
		Policy: &rate.Policy{
			WaterPct:  nullable(r.WaterPct),
			GSTFactor: nullable(r.GSTFactor),
			CPOHPct:   nullable(r.CPOHPct),
			CessPct:   nullable(r.CessPct),
		},
	}, nil
}

func (s *Store) Subprojects(ctx context.Context, projectID string) ([]Subproject, error) {
	var out []Subproject
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`
		SELECT id, project_id, name, position FROM subprojects
		WHERE project_id = ? ORDER BY position, id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("select subprojects: %w", err)
	}
	return out, nil
}

// LineItems returns every BOQ line of a project in subproject then line order.
func (s *Store) LineItems(ctx context.Context, projectID string) ([]LineItem, error) {
	var rows []lineRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT b.id, b.subproject_id, b.ratebook_item_id, b.quantity, b.total_lead_km, b.total_lift_m, b.position
		FROM boq_items b
		JOIN subprojects sp ON sp.id = b.subproject_id
		WHERE sp.project_id = ?
		ORDER BY sp.position, sp.id, b.position, b.id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("select boq items: %w", err)
	}
	out := make([]LineItem, len(rows))
	for i, r := range rows {
		out[i] = r.toLineItem()
	}
	return out, nil
}

// LineItem returns one BOQ line together with the project that owns it.
func (s *Store) LineItem(ctx context.Context, id string) (LineItem, string, error) {
	var r struct {
		lineRow
		ProjectID string `db:"project_id"`
	}
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`
		SELECT b.id, b.subproject_id, b.ratebook_item_id, b.quantity, b.total_lead_km, b.total_lift_m, b.position, sp.project_id
		FROM boq_items b
		JOIN subprojects sp ON sp.id = b.subproject_id
		WHERE b.id = ?`), id)
	if err != nil {
		return LineItem{}, "", notFound(err, "boq item", id)
	}
	return r.toLineItem(), r.ProjectID, nil
}

func (s *Store) Ratebook(ctx context.Context, id string) (Ratebook, error) {
	var rb Ratebook
	err := s.db.GetContext(ctx, &rb, s.db.Rebind(`SELECT id, name, region, year FROM ratebooks WHERE id = ?`), id)
	if err != nil {
		return Ratebook{}, notFound(err, "ratebook", id)
	}
	return rb, nil
}

// CatalogItem loads one ratebook item with its cost analysis, if any.
func (s *Store) CatalogItem(ctx context.Context, id string) (rate.CatalogItem, error) {
	items, err := s.CatalogItems(ctx, []string{id})
	if err != nil {
		return rate.CatalogItem{}, err
	}
	item, ok := items[id]
	if !ok {
		return rate.CatalogItem{}, fmt.Errorf("ratebook item %s: %w", id, ErrNotFound)
	}
	return item, nil
}

// CatalogItems loads several ratebook items with their analyses in three
// queries. Missing ids are simply absent from the result.
func (s *Store) CatalogItems(ctx context.Context, ids []string) (map[string]rate.CatalogItem, error) {
	out := make(map[string]rate.CatalogItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM ratebook_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select ratebook items: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.toItem()
	}

	query, args, err = sqlx.In(`
		SELECT ratebook_item_id, analysis_for_quantity, uom
		FROM rate_analyses WHERE ratebook_item_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build analysis query: %w", err)
	}
	var analyses []analysisRow
	if err := s.db.SelectContext(ctx, &analyses, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select rate analyses: %w", err)
	}
	if len(analyses) == 0 {
		return out, nil
	}

	query, args, err = sqlx.In(`
		SELECT ratebook_item_id, category, description, quantity, rate, uom
		FROM rate_analysis_components WHERE ratebook_item_id IN (?)
		ORDER BY ratebook_item_id, position, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build component query: %w", err)
	}
	var comps []componentRow
	if err := s.db.SelectContext(ctx, &comps, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select analysis components: %w", err)
	}
	byItem := make(map[string][]rate.CostComponent)
	for _, c := range comps {
		byItem[c.ItemID] = append(byItem[c.ItemID], rate.CostComponent{
			Category:    rate.Category(c.Category),
			Description: c.Description,
			Quantity:    c.Quantity,
			Rate:        c.Rate,
			UOM:         c.UOM,
		})
	}
	for _, a := range analyses {
		item, ok := out[a.ItemID]
		if !ok {
			continue
		}
		item.Analysis = &rate.CostAnalysis{
			AnalysisForQuantity: a.AnalysisForQuantity,
			UOM:                 a.UOM,
			Components:          byItem[a.ItemID],
		}
		out[a.ItemID] = item
	}
	return out, nil
}

// RatebookItems lists a ratebook's items by code, without analyses.
func (s *Store) RatebookItems(ctx context.Context, ratebookID string) ([]rate.CatalogItem, error) {
	var rows []itemRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT `+itemColumns+` FROM ratebook_items WHERE ratebook_id = ? ORDER BY item_code`), ratebookID)
	if err != nil {
		return nil, fmt.Errorf("select ratebook items: %w", err)
	}
	out := make([]rate.CatalogItem, len(rows))
	for i, r := range rows {
		out[i] = r.toItem()
	}
	return out, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", kind, id, err)
}
