package rate

import (
	"sort"
)

// Distance is a lead (km) or lift (m) requirement for one line.
type Distance struct {
	Initial    float64 `json:"initial_included"`
	Total      float64 `json:"total_required"`
	Additional float64 `json:"additional"`
}

func newDistance(initial, total float64) Distance {
	d := Distance{Initial: initial, Total: total}
	if total > initial {
		d.Additional = total - initial
	}
	return d
}

// Surcharge is the regional add-on per unit, split by source.
type Surcharge struct {
	Royalty        float64 `json:"royalty"`
	Loading        float64 `json:"loading"`
	Unloading      float64 `json:"unloading"`
	AdditionalLead float64 `json:"additional_lead"`
	AdditionalLift float64 `json:"additional_lift"`
	Total          float64 `json:"total"`
}

func (s *Surcharge) sum() {
	s.Total = s.Royalty + s.Loading + s.Unloading + s.AdditionalLead + s.AdditionalLift
}

// Trace records which table rows produced a Surcharge.
type Trace struct {
	Royalty      *RoyaltyCharge  `json:"royalty,omitempty"`
	Loading      *HandlingCharge `json:"loading,omitempty"`
	Unloading    *HandlingCharge `json:"unloading,omitempty"`
	LeadSlabs    []Slab          `json:"lead_slabs,omitempty"`
	LiftSlabs    []Slab          `json:"lift_slabs,omitempty"`
	LeadTier     *Slab           `json:"lead_tier,omitempty"`
	LeadDeducted float64         `json:"lead_deducted"`
	LeadPerUnit  *Slab           `json:"lead_per_unit,omitempty"`
	LiftPerUnit  *Slab           `json:"lift_per_unit,omitempty"`
}

// SurchargeRequest identifies what to look up in the regional tables.
type SurchargeRequest struct {
	Region   string
	Material MaterialCategory
	Method   HandlingMethod
	Lead     Distance
	Lift     Distance
}

// ResolveSurcharge computes royalty, handling and additional lead/lift
// charges. Missing rows contribute zero and are reported as notes.
func ResolveSurcharge(t *Tables, req SurchargeRequest) (Surcharge, Trace, []Note) {
	var (
		s     Surcharge
		tr    Trace
		notes []Note
	)
	if t == nil || req.Material == DefaultMaterial || req.Material == "" {
		return s, tr, nil
	}
	key := req.Region + "/" + string(req.Material)

	if r := findRoyalty(t.Royalties, req.Region, req.Material); r != nil {
		tr.Royalty = r
		s.Royalty = r.Rate
	} else {
		notes = append(notes, Note{Table: "royalty", Key: key})
	}

	method := req.Method
	if method == "" {
		method = Mechanical
	}
	if h := findHandling(t.Handling, req.Region, req.Material, Loading, method); h != nil {
		tr.Loading = h
		s.Loading = h.Rate
	} else {
		notes = append(notes, Note{Table: "loading", Key: key})
	}
	if h := findHandling(t.Handling, req.Region, req.Material, Unloading, method); h != nil {
		tr.Unloading = h
		s.Unloading = h.Rate
	} else {
		notes = append(notes, Note{Table: "unloading", Key: key})
	}

	if req.Lead.Additional > 0 {
		tr.LeadSlabs = selectSlabs(t.Slabs, req.Region, Lead, req.Material)
		if len(tr.LeadSlabs) == 0 {
			notes = append(notes, Note{Table: "lead_slabs", Key: key})
		}
		s.AdditionalLead, tr.LeadTier, tr.LeadDeducted, tr.LeadPerUnit = leadCharge(tr.LeadSlabs, req.Lead)
	}
	if req.Lift.Additional > 0 {
		tr.LiftSlabs = selectSlabs(t.Slabs, req.Region, Lift, req.Material)
		if band := perUnitBand(tr.LiftSlabs, req.Lift.Initial, req.Lift.Total); band != nil {
			tr.LiftPerUnit = band
			s.AdditionalLift = req.Lift.Additional * band.Rate
		} else {
			notes = append(notes, Note{Table: "lift_slabs", Key: key})
		}
	}

	s.sum()
	return s, tr, notes
}

// leadCharge prices the additional lead. The highest cumulative band ending
// inside (initial, total] contributes its total less the total of the band
// covering the initial distance; the distance past that band is charged at
// the applicable per-km rate.
func leadCharge(slabs []Slab, d Distance) (cost float64, tier *Slab, deducted float64, perUnit *Slab) {
	if d.Additional <= 0 || len(slabs) == 0 {
		return 0, nil, 0, nil
	}
	covered := d.Initial
	for i := range slabs {
		s := &slabs[i]
		if !s.Cumulative || s.Unbounded() {
			continue
		}
		if s.End <= d.Total && s.End > d.Initial && (tier == nil || s.End > tier.End) {
			tier = s
		}
	}
	if tier != nil {
		if band := coveringBand(slabs, d.Initial); band != nil {
			deducted = band.Rate
		}
		cost = tier.Rate - deducted
		covered = tier.End
	}
	if remaining := d.Total - covered; remaining > 0 {
		if perUnit = perUnitBand(slabs, covered, d.Total); perUnit != nil {
			cost += remaining * perUnit.Rate
		}
	}
	return cost, tier, deducted, perUnit
}

// coveringBand is the first cumulative band, in start order, with
// Start <= x <= End. A distance on a shared boundary belongs to the lower
// band, so the band ending there is the one already priced in.
func coveringBand(slabs []Slab, x float64) *Slab {
	for i := range slabs {
		s := &slabs[i]
		if s.Cumulative && !s.Unbounded() && x >= s.Start && x <= s.End {
			return s
		}
	}
	return nil
}

// perUnitBand finds the per-unit band owning from, or else the first per-unit
// band starting before total.
func perUnitBand(slabs []Slab, from, total float64) *Slab {
	for i := range slabs {
		if !slabs[i].Cumulative && slabs[i].Covers(from) {
			return &slabs[i]
		}
	}
	for i := range slabs {
		s := &slabs[i]
		if !s.Cumulative && s.Start >= from && s.Start < total {
			return s
		}
	}
	return nil
}

func selectSlabs(all []Slab, region string, tt TransportType, m MaterialCategory) []Slab {
	var out []Slab
	for _, s := range all {
		if sameRegion(s.Region, region) && s.TransportType == tt && s.MaterialCategory == m {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func findRoyalty(rows []RoyaltyCharge, region string, m MaterialCategory) *RoyaltyCharge {
	for i := range rows {
		if sameRegion(rows[i].Region, region) && rows[i].MaterialCategory == m {
			r := rows[i]
			return &r
		}
	}
	return nil
}

func findHandling(rows []HandlingCharge, region string, m MaterialCategory, ct ChargeType, method HandlingMethod) *HandlingCharge {
	var fallback *HandlingCharge
	for i := range rows {
		h := rows[i]
		if !sameRegion(h.Region, region) || h.MaterialCategory != m || h.ChargeType != ct {
			continue
		}
		if h.Method == method {
			return &h
		}
		if fallback == nil {
			fallback = &h
		}
	}
	return fallback
}
