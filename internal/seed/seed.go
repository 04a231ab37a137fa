// Package seed loads an idempotent sample data set: two ratebooks, the
// Maharashtra and Telangana surcharge tables and one project with a BOQ.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"boqrate/internal/rate"
)

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("boqrate"))

// ID derives a stable identifier so repeated seeding finds its own rows.
func ID(parts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.Join(parts, "/"))).String()
}

var (
	SampleProjectID = ID("project", sampleProjectName)
	Ratebook2024ID  = ID("ratebook", ratebook2024)
	Ratebook2025ID  = ID("ratebook", ratebook2025)
)

// ItemID is the ratebook item id for code in the given ratebook key.
func ItemID(ratebookKey, code string) string { return ID("item", ratebookKey, code) }

// LineID is the BOQ line id for one of the sample lines.
func LineID(key string) string { return ID("line", key) }

type Stats struct {
	Inserts int
	Skipped int
}

// Run inserts any missing sample rows in one transaction.
func Run(ctx context.Context, db *sqlx.DB) (Stats, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}
	s := &seeder{ctx: ctx, tx: tx}

	steps := []func() error{
		s.ensureRatebooks,
		s.ensureItems,
		s.ensureRegionDefaults,
		s.ensureRoyalties,
		s.ensureHandling,
		s.ensureSlabs,
		s.ensureProject,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return s.stats, nil
}

type seeder struct {
	ctx   context.Context
	tx    *sqlx.Tx
	stats Stats
}

// insert runs query unless a row with id already exists in table.
func (s *seeder) insert(table, id, query string, args ...any) error {
	var exists bool
	if err := s.tx.GetContext(s.ctx, &exists, s.tx.Rebind(`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`), id); err != nil {
		return fmt.Errorf("check %s %s: %w", table, id, err)
	}
	if exists {
		s.stats.Skipped++
		return nil
	}
	if _, err := s.tx.ExecContext(s.ctx, s.tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert %s %s: %w", table, id, err)
	}
	s.stats.Inserts++
	return nil
}

func (s *seeder) ensureRatebooks() error {
	for _, rb := range ratebooks {
		id := ID("ratebook", rb.key)
		if err := s.insert("ratebooks", id,
			`INSERT INTO ratebooks (id, name, region, year) VALUES (?, ?, ?, ?)`,
			id, rb.name, rb.region, rb.year); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureItems() error {
	for _, rb := range ratebooks {
		for _, it := range items {
			baseRate, ok := it.rates[rb.key]
			if !ok {
				continue
			}
			id := ItemID(rb.key, it.code)
			if err := s.insert("ratebook_items", id, `
				INSERT INTO ratebook_items (id, ratebook_id, item_code, description, uom, category, base_rate, initial_lead_km, initial_lift_m)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, ID("ratebook", rb.key), it.code, it.desc, it.uom, string(it.category), baseRate, it.leadKM, it.liftM); err != nil {
				return err
			}
			// Analyses belong to the earliest ratebook only.
			if rb.key == ratebook2024 && len(it.components) > 0 {
				if err := s.ensureAnalysis(id, it); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *seeder) ensureAnalysis(itemID string, it itemSeed) error {
	var exists bool
	if err := s.tx.GetContext(s.ctx, &exists, s.tx.Rebind(
		`SELECT EXISTS(SELECT 1 FROM rate_analyses WHERE ratebook_item_id = ?)`), itemID); err != nil {
		return fmt.Errorf("check rate analysis %s: %w", itemID, err)
	}
	if exists {
		s.stats.Skipped++
		return nil
	}
	if _, err := s.tx.ExecContext(s.ctx, s.tx.Rebind(
		`INSERT INTO rate_analyses (ratebook_item_id, analysis_for_quantity, uom) VALUES (?, ?, ?)`),
		itemID, it.analysisQty, it.uom); err != nil {
		return fmt.Errorf("insert rate analysis %s: %w", itemID, err)
	}
	s.stats.Inserts++
	for i, c := range it.components {
		id := ID("component", itemID, fmt.Sprint(i))
		if err := s.insert("rate_analysis_components", id, `
			INSERT INTO rate_analysis_components (id, ratebook_item_id, position, category, description, quantity, rate, uom)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, itemID, i, string(c.category), c.desc, c.quantity, c.unitFee, c.uom); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureRegionDefaults() error {
	for _, d := range regionDefaults {
		var exists bool
		if err := s.tx.GetContext(s.ctx, &exists, s.tx.Rebind(
			`SELECT EXISTS(SELECT 1 FROM region_defaults WHERE region = ?)`), d.region); err != nil {
			return fmt.Errorf("check region defaults %s: %w", d.region, err)
		}
		if exists {
			s.stats.Skipped++
			continue
		}
		if _, err := s.tx.ExecContext(s.ctx, s.tx.Rebind(
			`INSERT INTO region_defaults (region, default_lead_km, default_lift_m) VALUES (?, ?, ?)`),
			d.region, d.lead, d.lift); err != nil {
			return fmt.Errorf("insert region defaults %s: %w", d.region, err)
		}
		s.stats.Inserts++
	}
	return nil
}

func (s *seeder) ensureRoyalties() error {
	for _, r := range royalties {
		id := ID("royalty", r.Region, string(r.MaterialCategory))
		if err := s.insert("royalty_charges", id,
			`INSERT INTO royalty_charges (id, region, material_category, rate, uom) VALUES (?, ?, ?, ?, ?)`,
			id, r.Region, string(r.MaterialCategory), r.Rate, r.UOM); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureHandling() error {
	for _, h := range handling {
		id := ID("handling", h.Region, string(h.MaterialCategory), string(h.ChargeType), string(h.Method))
		if err := s.insert("handling_charges", id, `
			INSERT INTO handling_charges (id, region, material_category, charge_type, method, rate, uom)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, h.Region, string(h.MaterialCategory), string(h.ChargeType), string(h.Method), h.Rate, h.UOM); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureSlabs() error {
	for _, sl := range slabs {
		id := ID("slab", sl.region, string(sl.transport), string(sl.material), fmt.Sprint(sl.start))
		var end *float64
		if sl.end > 0 {
			end = f(sl.end)
		}
		if err := s.insert("transport_slabs", id, `
			INSERT INTO transport_slabs (id, region, transport_type, material_category, start_value, end_value, rate, is_cumulative_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, sl.region, string(sl.transport), string(sl.material), sl.start, end, sl.rate, sl.cumulative); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureProject() error {
	p := samplePolicy
	if err := s.insert("projects", SampleProjectID, `
		INSERT INTO projects (id, name, region, ratebook_id, water_pct, gst_factor, cpoh_pct, cess_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		SampleProjectID, sampleProjectName, sampleProjectRegion, Ratebook2024ID,
		*p.WaterPct, *p.GSTFactor, *p.CPOHPct, *p.CessPct); err != nil {
		return err
	}
	for i, sp := range subprojects {
		spID := ID("subproject", SampleProjectID, sp.name)
		if err := s.insert("subprojects", spID,
			`INSERT INTO subprojects (id, project_id, name, position) VALUES (?, ?, ?, ?)`,
			spID, SampleProjectID, sp.name, i); err != nil {
			return err
		}
		for j, l := range sp.lines {
			id := LineID(l.key)
			if err := s.insert("boq_items", id, `
				INSERT INTO boq_items (id, subproject_id, ratebook_item_id, quantity, total_lead_km, total_lift_m, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, spID, ItemID(ratebook2024, l.itemCode), l.quantity, l.lead, l.lift, j); err != nil {
				return err
			}
		}
	}
	return nil
}

// SamplePolicy returns a copy of the sample project's markup policy.
func SamplePolicy() *rate.Policy {
	p := samplePolicy
	return rate.NewPolicy(*p.WaterPct, *p.GSTFactor, *p.CPOHPct, *p.CessPct)
}
