package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boqrate/internal/rate"
)

type slabRow struct {
	Region           string          `db:"region"`
	TransportType    string          `db:"transport_type"`
	MaterialCategory string          `db:"material_category"`
	Start            float64         `db:"start_value"`
	End              sql.NullFloat64 `db:"end_value"`
	Rate             float64         `db:"rate"`
	Cumulative       bool            `db:"is_cumulative_total"`
}

// Tables loads the surcharge snapshot for one region. It returns nil tables
// and no error when the region has no defaults row, which the engine reports
// as missing regional configuration.
func (s *Store) Tables(ctx context.Context, region string) (*rate.Tables, error) {
	t := &rate.Tables{}

	var defaults struct {
		Lead float64 `db:"default_lead_km"`
		Lift float64 `db:"default_lift_m"`
	}
	err := s.db.GetContext(ctx, &defaults, s.db.Rebind(`
		SELECT default_lead_km, default_lift_m FROM region_defaults WHERE UPPER(region) = UPPER(?)`), region)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get region defaults %s: %w", region, err)
	}
	t.DefaultLeadKM, t.DefaultLiftM = defaults.Lead, defaults.Lift

	var royalties []struct {
		Region           string  `db:"region"`
		MaterialCategory string  `db:"material_category"`
		Rate             float64 `db:"rate"`
		UOM              string  `db:"uom"`
	}
	if err := s.db.SelectContext(ctx, &royalties, s.db.Rebind(`
		SELECT region, material_category, rate, uom FROM royalty_charges
		WHERE UPPER(region) = UPPER(?) ORDER BY material_category`), region); err != nil {
		return nil, fmt.Errorf("select royalty charges: %w", err)
	}
	for _, r := range royalties {
		t.Royalties = append(t.Royalties, rate.RoyaltyCharge{
			Region:           r.Region,
			MaterialCategory: rate.MaterialCategory(r.MaterialCategory),
			Rate:             r.Rate,
			UOM:              r.UOM,
		})
	}

	var handling []struct {
		Region           string  `db:"region"`
		MaterialCategory string  `db:"material_category"`
		ChargeType       string  `db:"charge_type"`
		Method           string  `db:"method"`
		Rate             float64 `db:"rate"`
		UOM              string  `db:"uom"`
	}
	if err := s.db.SelectContext(ctx, &handling, s.db.Rebind(`
		SELECT region, material_category, charge_type, method, rate, uom FROM handling_charges
		WHERE UPPER(region) = UPPER(?) ORDER BY material_category, charge_type, method`), region); err != nil {
		return nil, fmt.Errorf("select handling charges: %w", err)
	}
	for _, h := range handling {
		t.Handling = append(t.Handling, rate.HandlingCharge{
			Region:           h.Region,
			MaterialCategory: rate.MaterialCategory(h.MaterialCategory),
			ChargeType:       rate.ChargeType(h.ChargeType),
			Method:           rate.HandlingMethod(h.Method),
			Rate:             h.Rate,
			UOM:              h.UOM,
		})
	}

	var slabs []slabRow
	if err := s.db.SelectContext(ctx, &slabs, s.db.Rebind(`
		SELECT region, transport_type, material_category, start_value, end_value, rate, is_cumulative_total
		FROM transport_slabs
		WHERE UPPER(region) = UPPER(?)
		ORDER BY transport_type, material_category, start_value, id`), region); err != nil {
		return nil, fmt.Errorf("select transport slabs: %w", err)
	}
	for _, r := range slabs {
		sl := rate.Slab{
			Region:           r.Region,
			TransportType:    rate.TransportType(r.TransportType),
			MaterialCategory: rate.MaterialCategory(r.MaterialCategory),
			Start:            r.Start,
			Rate:             r.Rate,
			Cumulative:       r.Cumulative,
		}
		if r.End.Valid {
			sl.End = r.End.Float64
		}
		t.Slabs = append(t.Slabs, sl)
	}
	return t, nil
}
