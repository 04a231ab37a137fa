package rate

import "strings"

// CatalogItem is one priced line of a published rate schedule.
type CatalogItem struct {
	ID            string        `json:"id,omitempty"`
	RatebookID    string        `json:"ratebook_id,omitempty"`
	Code          string        `json:"code"`
	Description   string        `json:"description"`
	UOM           string        `json:"uom"`
	Category      Category      `json:"category"`
	BaseRate      float64       `json:"base_rate"`
	Analysis      *CostAnalysis `json:"analysis,omitempty"`
	InitialLeadKM float64       `json:"initial_lead_included_km"`
	InitialLiftM  float64       `json:"initial_lift_included_m"`
}

// CostAnalysis itemizes an item's cost for a batch of AnalysisForQuantity units.
type CostAnalysis struct {
	AnalysisForQuantity float64         `json:"analysis_for_quantity"`
	UOM                 string          `json:"uom,omitempty"`
	Components          []CostComponent `json:"components"`
}

// CostComponent is one row of a cost analysis.
type CostComponent struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Rate        float64  `json:"rate"`
	UOM         string   `json:"uom"`
}

// Amount is quantity times rate.
func (c CostComponent) Amount() float64 { return c.Quantity * c.Rate }

// Policy holds the project's markup percentages. A nil field means the
// value was never configured.
type Policy struct {
	WaterPct  *float64 `json:"water_pct"`
	GSTFactor *float64 `json:"gst_factor"`
	CPOHPct   *float64 `json:"cpoh_pct"`
	CessPct   *float64 `json:"cess_pct"`
}

// NewPolicy builds a fully configured policy. gstFactor is fractional (0.2127), the rest are percents.
func NewPolicy(waterPct, gstFactor, cpohPct, cessPct float64) *Policy {
	return &Policy{WaterPct: &waterPct, GSTFactor: &gstFactor, CPOHPct: &cpohPct, CessPct: &cessPct}
}

// ChargeType distinguishes loading from unloading rows.
type ChargeType string

const (
	Loading   ChargeType = "loading"
	Unloading ChargeType = "unloading"
)

// HandlingMethod is how material is moved on and off the vehicle.
type HandlingMethod string

const (
	Manual     HandlingMethod = "manual"
	Mechanical HandlingMethod = "mechanical"
)

// TransportType separates horizontal lead from vertical lift slabs.
type TransportType string

const (
	Lead TransportType = "lead"
	Lift TransportType = "lift"
)

// RoyaltyCharge is a flat per-unit seigniorage fee.
type RoyaltyCharge struct {
	Region           string           `json:"region"`
	MaterialCategory MaterialCategory `json:"material_category"`
	Rate             float64          `json:"rate"`
	UOM              string           `json:"uom,omitempty"`
}

// HandlingCharge is a flat per-unit loading or unloading fee.
type HandlingCharge struct {
	Region           string           `json:"region"`
	MaterialCategory MaterialCategory `json:"material_category"`
	ChargeType       ChargeType       `json:"charge_type"`
	Method           HandlingMethod   `json:"method"`
	Rate             float64          `json:"rate"`
	UOM              string           `json:"uom,omitempty"`
}

// Slab is one distance or height band. When Cumulative is set, Rate is the
// total charge accumulated through End; otherwise it is a rate per km or m.
// End <= 0 marks an open-ended band.
type Slab struct {
	Region           string           `json:"region"`
	TransportType    TransportType    `json:"transport_type"`
	MaterialCategory MaterialCategory `json:"material_category"`
	Start            float64          `json:"start"`
	End              float64          `json:"end"`
	Rate             float64          `json:"rate"`
	Cumulative       bool             `json:"is_cumulative_total"`
}

// Unbounded reports whether the band extends to infinity.
func (s Slab) Unbounded() bool { return s.End <= 0 }

// Covers reports whether x lies in [Start, End).
func (s Slab) Covers(x float64) bool {
	return x >= s.Start && (s.Unbounded() || x < s.End)
}

// Tables is an immutable snapshot of the regional surcharge data.
type Tables struct {
	Royalties     []RoyaltyCharge  `json:"royalties"`
	Handling      []HandlingCharge `json:"handling"`
	Slabs         []Slab           `json:"slabs"`
	DefaultLeadKM float64          `json:"default_lead_km"`
	DefaultLiftM  float64          `json:"default_lift_m"`
}

// Line is a BOQ line: a quantity of a catalog item plus optional lead/lift overrides.
type Line struct {
	ID          string   `json:"id,omitempty"`
	Quantity    float64  `json:"quantity"`
	TotalLeadKM *float64 `json:"total_lead_km,omitempty"`
	TotalLiftM  *float64 `json:"total_lift_m,omitempty"`
}

// Input is everything one calculation needs, already resident in memory.
type Input struct {
	Item   CatalogItem `json:"item"`
	Line   Line        `json:"line"`
	Policy *Policy     `json:"policy"`
	Tables *Tables     `json:"tables"`
	Region string      `json:"region"`
}

func sameRegion(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
