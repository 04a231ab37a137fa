package rate

// ComponentGroup is the analysis rows of one category with their subtotal.
type ComponentGroup struct {
	Category   Category        `json:"category"`
	Components []CostComponent `json:"components"`
	Subtotal   float64         `json:"subtotal"`
}

// Derivation explains where the base buckets came from.
type Derivation struct {
	Source              string           `json:"source"`
	BaseRate            float64          `json:"base_rate"`
	AnalysisForQuantity float64          `json:"analysis_for_quantity,omitempty"`
	Groups              []ComponentGroup `json:"groups,omitempty"`
	Buckets             Buckets          `json:"buckets"`
}

const (
	SourceAnalysis = "analysis"
	SourceBaseRate = "base_rate"
)

// Context is the complete, deterministic summary of one calculation handed
// to a narrative generator. Its numbers reconcile with Result.FinalRate.
type Context struct {
	ItemCode         string           `json:"item_code"`
	Description      string           `json:"description"`
	UOM              string           `json:"uom"`
	Category         Category         `json:"category"`
	Region           string           `json:"region"`
	Quantity         float64          `json:"quantity"`
	Derivation       Derivation       `json:"derivation"`
	MaterialCategory MaterialCategory `json:"material_category"`
	Lead             Distance         `json:"lead"`
	Lift             Distance         `json:"lift"`
	Royalty          *RoyaltyCharge   `json:"royalty,omitempty"`
	Loading          *HandlingCharge  `json:"loading,omitempty"`
	Unloading        *HandlingCharge  `json:"unloading,omitempty"`
	LeadSlabs        []Slab           `json:"lead_slabs"`
	LiftSlabs        []Slab           `json:"lift_slabs"`
	Surcharge        Surcharge        `json:"surcharge_breakdown"`
	Buckets          Buckets          `json:"buckets"`
	Policy           PolicyValues     `json:"policy"`
	Stages           Stages           `json:"stages"`
	Deltas           Deltas           `json:"deltas"`
	FinalRate        float64          `json:"final_rate"`
	FinalAmount      float64          `json:"final_amount"`
}

// NewContext assembles the explanation context from the inputs and the
// result they produced.
func NewContext(in Input, res Result) Context {
	ctx := Context{
		ItemCode:         in.Item.Code,
		Description:      in.Item.Description,
		UOM:              in.Item.UOM,
		Category:         in.Item.Category,
		Region:           in.Region,
		Quantity:         res.Quantity,
		Derivation:       derive(in.Item, res.BaseBuckets),
		MaterialCategory: res.MaterialCategory,
		Lead:             res.Lead,
		Lift:             res.Lift,
		Royalty:          res.Trace.Royalty,
		Loading:          res.Trace.Loading,
		Unloading:        res.Trace.Unloading,
		LeadSlabs:        res.Trace.LeadSlabs,
		LiftSlabs:        res.Trace.LiftSlabs,
		Surcharge:        res.Surcharge,
		Buckets:          res.Buckets,
		Policy:           res.Policy,
		Stages:           res.Stages,
		Deltas:           res.Stages.Deltas(),
		FinalRate:        res.FinalRate,
		FinalAmount:      res.FinalAmount,
	}
	if ctx.LeadSlabs == nil {
		ctx.LeadSlabs = []Slab{}
	}
	if ctx.LiftSlabs == nil {
		ctx.LiftSlabs = []Slab{}
	}
	return ctx
}

func derive(item CatalogItem, base Buckets) Derivation {
	d := Derivation{Source: SourceBaseRate, BaseRate: item.BaseRate, Buckets: base}
	a := item.Analysis
	if a == nil || len(a.Components) == 0 {
		return d
	}
	d.Source = SourceAnalysis
	d.AnalysisForQuantity = a.AnalysisForQuantity
	for _, c := range Categories {
		var g ComponentGroup
		for _, comp := range a.Components {
			if cat, _ := ParseCategory(string(comp.Category)); cat == c {
				g.Components = append(g.Components, comp)
				g.Subtotal += comp.Amount()
			}
		}
		if len(g.Components) > 0 {
			g.Category = c
			d.Groups = append(d.Groups, g)
		}
	}
	return d
}
