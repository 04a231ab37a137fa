package rate

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func ptr(v float64) *float64 { return &v }

func defaultPolicy() *Policy { return NewPolicy(1, 0.2127, 15, 1) }

// maharashtraTables mirrors the shape of a published regional schedule.
func maharashtraTables() *Tables {
	return &Tables{
		Royalties: []RoyaltyCharge{
			{Region: "MH", MaterialCategory: RubbleStoneAggregate, Rate: 64, UOM: "cum"},
			{Region: "MH", MaterialCategory: EarthSandMurrum, Rate: 35, UOM: "cum"},
			{Region: "TG", MaterialCategory: RubbleStoneAggregate, Rate: 90, UOM: "cum"},
		},
		Handling: []HandlingCharge{
			{Region: "MH", MaterialCategory: RubbleStoneAggregate, ChargeType: Loading, Method: Manual, Rate: 20.10},
			{Region: "MH", MaterialCategory: RubbleStoneAggregate, ChargeType: Loading, Method: Mechanical, Rate: 12.50},
			{Region: "MH", MaterialCategory: RubbleStoneAggregate, ChargeType: Unloading, Method: Mechanical, Rate: 8.40},
		},
		Slabs: []Slab{
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 5, End: 0, Rate: 15.20},
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 0, End: 1, Rate: 38.00, Cumulative: true},
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 1, End: 2, Rate: 53.20, Cumulative: true},
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 2, End: 3, Rate: 70.93, Cumulative: true},
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 3, End: 4, Rate: 86.13, Cumulative: true},
			{Region: "MH", TransportType: Lead, MaterialCategory: RubbleStoneAggregate, Start: 4, End: 5, Rate: 101.33, Cumulative: true},
			{Region: "MH", TransportType: Lift, MaterialCategory: RubbleStoneAggregate, Start: 0, End: 0, Rate: 4.10},
			{Region: "MH", TransportType: Lead, MaterialCategory: EarthSandMurrum, Start: 0, End: 0, Rate: 10},
		},
		DefaultLeadKM: 5,
		DefaultLiftM:  6,
	}
}
