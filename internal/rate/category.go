package rate

import "strings"

// Category is the cost bucket a catalog item or analysis component belongs to.
type Category string

const (
	Labour     Category = "labour"
	Material   Category = "material"
	Machinery  Category = "machinery"
	Carriage   Category = "carriage"
	Composite  Category = "composite"
	Sundry     Category = "sundry"
	Adjustment Category = "adjustment"
	Concrete   Category = "concrete"
)

// Categories lists every bucket in the fixed order used for summation.
var Categories = []Category{Labour, Material, Machinery, Carriage, Composite, Sundry, Adjustment, Concrete}

// ParseCategory accepts the canonical names plus the "labor" spelling.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "labor" {
		c = Labour
	}
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// MaterialCategory keys the regional surcharge tables.
type MaterialCategory string

const (
	RubbleStoneAggregate MaterialCategory = "rubble_stone_aggregate"
	EarthSandMurrum      MaterialCategory = "earth_sand_murrum"
	DefaultMaterial      MaterialCategory = "default"
)

// Buckets maps every Category to a per-unit cost.
type Buckets map[Category]float64

// NewBuckets returns buckets with all eight categories present at zero.
func NewBuckets() Buckets {
	b := make(Buckets, len(Categories))
	for _, c := range Categories {
		b[c] = 0
	}
	return b
}

// Total sums the buckets in Categories order so repeated calls are bit-identical.
func (b Buckets) Total() float64 {
	var sum float64
	for _, c := range Categories {
		sum += b[c]
	}
	return sum
}

func (b Buckets) clone() Buckets {
	out := NewBuckets()
	for _, c := range Categories {
		out[c] = b[c]
	}
	return out
}
