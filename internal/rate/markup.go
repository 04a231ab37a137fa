package rate

// Stages are the successive totals of the markup chain.
//
//	W  = sum(buckets)
//	X  = W  * (1 + water/100)
//	Y  = X  * (1 + gst_factor)
//	Z0 = Y  * (1 + cpoh/100)
//	Z  = Z0 * (1 + cess/100)
type Stages struct {
	W  float64 `json:"W"`
	X  float64 `json:"X"`
	Y  float64 `json:"Y"`
	Z0 float64 `json:"Z0"`
	Z  float64 `json:"Z"`
}

// Deltas is what each markup added on top of the previous stage.
type Deltas struct {
	Water float64 `json:"water"`
	GST   float64 `json:"gst"`
	CPOH  float64 `json:"cpoh"`
	Cess  float64 `json:"cess"`
}

func (s Stages) Deltas() Deltas {
	return Deltas{
		Water: s.X - s.W,
		GST:   s.Y - s.X,
		CPOH:  s.Z0 - s.Y,
		Cess:  s.Z - s.Z0,
	}
}

// PolicyValues is a Policy with every field resolved.
type PolicyValues struct {
	WaterPct  float64 `json:"water_pct"`
	GSTFactor float64 `json:"gst_factor"`
	CPOHPct   float64 `json:"cpoh_pct"`
	CessPct   float64 `json:"cess_pct"`
}

// ApplyMarkups runs the fixed water, tax, overhead, cess chain. Every stage
// is produced even when its percentage is zero.
func ApplyMarkups(w float64, p PolicyValues) Stages {
	var s Stages
	s.W = w
	s.X = s.W * (1 + p.WaterPct/100)
	s.Y = s.X * (1 + p.GSTFactor)
	s.Z0 = s.Y * (1 + p.CPOHPct/100)
	s.Z = s.Z0 * (1 + p.CessPct/100)
	return s
}

// Resolve checks that every policy field is configured and non-negative.
func (p *Policy) Resolve(item CatalogItem, region string) (PolicyValues, error) {
	if p == nil {
		return PolicyValues{}, &MissingConfigError{ItemCode: item.Code, Region: region, Field: "policy"}
	}
	var (
		out PolicyValues
		err error
	)
	get := func(name string, v *float64) float64 {
		if err != nil {
			return 0
		}
		if v == nil {
			err = &MissingConfigError{ItemCode: item.Code, Region: region, Field: name}
			return 0
		}
		if *v < 0 {
			err = invalid(item, name, "must not be negative")
			return 0
		}
		return *v
	}
	out.WaterPct = get("water_pct", p.WaterPct)
	out.GSTFactor = get("gst_factor", p.GSTFactor)
	out.CPOHPct = get("cpoh_pct", p.CPOHPct)
	out.CessPct = get("cess_pct", p.CessPct)
	if err != nil {
		return PolicyValues{}, err
	}
	return out, nil
}
