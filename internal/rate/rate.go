// Package rate builds a fully loaded unit rate for a BOQ line from a catalog
// item, the regional surcharge tables and the project markup policy.
package rate

import (
	"github.com/shopspring/decimal"
)

// Result is the auditable outcome of one line calculation.
type Result struct {
	ItemCode         string           `json:"item_code"`
	UOM              string           `json:"uom"`
	Quantity         float64          `json:"quantity"`
	BaseBuckets      Buckets          `json:"base_buckets"`
	Buckets          Buckets          `json:"buckets"`
	MaterialCategory MaterialCategory `json:"material_category"`
	Lead             Distance         `json:"lead"`
	Lift             Distance         `json:"lift"`
	Surcharge        Surcharge        `json:"surcharge_breakdown"`
	Policy           PolicyValues     `json:"policy"`
	Stages           Stages           `json:"stages"`
	FinalRate        float64          `json:"final_rate"`
	FinalAmount      float64          `json:"final_amount"`
	Trace            Trace            `json:"trace"`
	Notes            []Note           `json:"notes,omitempty"`
}

// Engine runs the calculation pipeline. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	classifier Classifier
	method     HandlingMethod
}

type Option func(*Engine)

func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

func WithHandlingMethod(m HandlingMethod) Option {
	return func(e *Engine) {
		if m != "" {
			e.method = m
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{classifier: NewKeywordClassifier(), method: Mechanical}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate aggregates, resolves surcharges, stages markups and rounds.
func (e *Engine) Calculate(in Input) (Result, error) {
	item := in.Item
	if in.Line.Quantity < 0 {
		return Result{}, invalid(item, "quantity", "must not be negative")
	}
	if v := in.Line.TotalLeadKM; v != nil && *v < 0 {
		return Result{}, invalid(item, "total_lead_km", "must not be negative")
	}
	if v := in.Line.TotalLiftM; v != nil && *v < 0 {
		return Result{}, invalid(item, "total_lift_m", "must not be negative")
	}

	base, err := Aggregate(item)
	if err != nil {
		return Result{}, err
	}
	policy, err := in.Policy.Resolve(item, in.Region)
	if err != nil {
		return Result{}, err
	}
	if in.Tables == nil {
		return Result{}, &MissingConfigError{ItemCode: item.Code, Region: in.Region, Field: "surcharge_tables"}
	}

	leadTotal := in.Tables.DefaultLeadKM
	if in.Line.TotalLeadKM != nil {
		leadTotal = *in.Line.TotalLeadKM
	}
	liftTotal := in.Tables.DefaultLiftM
	if in.Line.TotalLiftM != nil {
		liftTotal = *in.Line.TotalLiftM
	}

	res := Result{
		ItemCode:         item.Code,
		UOM:              item.UOM,
		Quantity:         in.Line.Quantity,
		BaseBuckets:      base,
		MaterialCategory: e.classifier.Classify(item.Description),
		Lead:             newDistance(item.InitialLeadKM, leadTotal),
		Lift:             newDistance(item.InitialLiftM, liftTotal),
		Policy:           policy,
	}
	res.Surcharge, res.Trace, res.Notes = ResolveSurcharge(in.Tables, SurchargeRequest{
		Region:   in.Region,
		Material: res.MaterialCategory,
		Method:   e.method,
		Lead:     res.Lead,
		Lift:     res.Lift,
	})

	res.Buckets = base.clone()
	res.Buckets[Carriage] += res.Surcharge.Total
	res.Stages = ApplyMarkups(res.Buckets.Total(), policy)
	res.FinalRate = Round2(res.Stages.Z)
	res.FinalAmount = Amount(res.FinalRate, res.Quantity)
	return res, nil
}

// Round2 rounds half away from zero to two decimal places, working from the
// shortest decimal representation of v so 100.005 becomes 100.01.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Amount multiplies an already rounded rate by a quantity without binary drift.
func Amount(rate, quantity float64) float64 {
	f, _ := decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(quantity)).Float64()
	return f
}
