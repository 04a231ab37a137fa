package rate

import "fmt"

// Aggregate turns an item into per-unit category buckets. Itemized
// components are summed per category and normalized by the analysis
// quantity; without components the base rate fills the item's own bucket.
func Aggregate(item CatalogItem) (Buckets, error) {
	b := NewBuckets()
	a := item.Analysis
	if a == nil || len(a.Components) == 0 {
		cat, ok := ParseCategory(string(item.Category))
		if !ok {
			return nil, invalid(item, "category", "unknown category "+string(item.Category))
		}
		b[cat] = item.BaseRate
		return b, nil
	}

	if a.AnalysisForQuantity <= 0 {
		return nil, invalid(item, "analysis_for_quantity", "must be greater than zero")
	}
	for i, c := range a.Components {
		cat, ok := ParseCategory(string(c.Category))
		if !ok {
			return nil, invalid(item, fmt.Sprintf("components[%d].category", i), "unknown category "+string(c.Category))
		}
		if c.Quantity < 0 {
			return nil, invalid(item, fmt.Sprintf("components[%d].quantity", i), "must not be negative")
		}
		b[cat] += c.Amount()
	}
	for _, c := range Categories {
		b[c] /= a.AnalysisForQuantity
	}
	return b, nil
}

// Share is the material/labour/machinery split of an item's cost, in percent.
type Share struct {
	Material  float64 `json:"material"`
	Labour    float64 `json:"labour"`
	Machinery float64 `json:"machinery"`
}

// Shares reports how the three primary buckets divide their combined cost.
func Shares(b Buckets) Share {
	sum := b[Material] + b[Labour] + b[Machinery]
	if sum == 0 {
		return Share{}
	}
	return Share{
		Material:  b[Material] / sum * 100,
		Labour:    b[Labour] / sum * 100,
		Machinery: b[Machinery] / sum * 100,
	}
}
