package seed

import "boqrate/internal/rate"

type ratebookSeed struct {
	key, name, region string
	year              int
}

type componentSeed struct {
	category          rate.Category
	desc, uom         string
	quantity, unitFee float64
}

type itemSeed struct {
	code, desc, uom string
	category        rate.Category
	rates           map[string]float64 // ratebook key -> base rate
	leadKM, liftM   float64
	analysisQty     float64
	components      []componentSeed
}

type slabSeed struct {
	region     string
	transport  rate.TransportType
	material   rate.MaterialCategory
	start, end float64 // end 0 is open-ended
	rate       float64
	cumulative bool
}

type lineSeed struct {
	key, itemCode string
	quantity      float64
	lead, lift    *float64
}

type subprojectSeed struct {
	name  string
	lines []lineSeed
}

func f(v float64) *float64 { return &v }

const (
	ratebook2024 = "cpwd-2024"
	ratebook2025 = "cpwd-2025"
)

var ratebooks = []ratebookSeed{
	{key: ratebook2024, name: "CPWD Schedule of Rates 2024", region: "MH", year: 2024},
	{key: ratebook2025, name: "CPWD Schedule of Rates 2025", region: "MH", year: 2025},
}

var items = []itemSeed{
	{
		code: "0114", desc: "Earthwork excavation up to 3 m depth in all soil.", uom: "cum",
		category: rate.Composite, leadKM: 1, liftM: 3,
		rates: map[string]float64{ratebook2024: 138.07, ratebook2025: 145.50},
	},
	{
		code: "0115", desc: "Excavation in hard rock requiring blasting, including disposal.", uom: "cum",
		category: rate.Composite, leadKM: 1, liftM: 3,
		rates: map[string]float64{ratebook2024: 412.30, ratebook2025: 398.00},
	},
	{
		code: "0221", desc: "Providing and laying in position plain cement concrete of specified grade excluding the cost of centering and shuttering, all work up to plinth level.", uom: "cum",
		category:    rate.Concrete,
		rates:       map[string]float64{ratebook2024: 8339.85, ratebook2025: 8100.00},
		analysisQty: 10,
		components: []componentSeed{
			{rate.Material, "Portland cement", "t", 4.4, 7800},
			{rate.Material, "Coarse sand", "cum", 4.7, 1850},
			{rate.Material, "Graded stone aggregate 20 mm", "cum", 8.8, 1650},
			{rate.Labour, "Mason", "day", 1.7, 980},
			{rate.Labour, "Beldar", "day", 17, 780},
			{rate.Machinery, "Concrete mixer 0.4 cum", "hr", 1.6, 1200},
			{rate.Machinery, "Needle vibrator", "hr", 1.6, 450},
		},
	},
	{
		code: "1120", desc: "12 mm cement plaster of mix 1:6 (1 cement: 6 coarse sand).", uom: "sqm",
		category: rate.Composite, leadKM: 1, liftM: 3,
		rates: map[string]float64{ratebook2024: 230.15, ratebook2025: 240.00},
	},
}

type regionDefaultSeed struct {
	region     string
	lead, lift float64
}

var regionDefaults = []regionDefaultSeed{
	{"MH", 5, 6},
	{"TG", 5, 6},
}

var royalties = []rate.RoyaltyCharge{
	{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, Rate: 64.00, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.EarthSandMurrum, Rate: 35.00, UOM: "cum"},
	{Region: "TG", MaterialCategory: rate.RubbleStoneAggregate, Rate: 90.00, UOM: "cum"},
	{Region: "TG", MaterialCategory: rate.EarthSandMurrum, Rate: 45.00, UOM: "cum"},
}

var handling = []rate.HandlingCharge{
	{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, ChargeType: rate.Loading, Method: rate.Mechanical, Rate: 12.50, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, ChargeType: rate.Loading, Method: rate.Manual, Rate: 20.10, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, ChargeType: rate.Unloading, Method: rate.Mechanical, Rate: 8.40, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, ChargeType: rate.Unloading, Method: rate.Manual, Rate: 14.60, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.EarthSandMurrum, ChargeType: rate.Loading, Method: rate.Mechanical, Rate: 9.80, UOM: "cum"},
	{Region: "MH", MaterialCategory: rate.EarthSandMurrum, ChargeType: rate.Unloading, Method: rate.Mechanical, Rate: 6.20, UOM: "cum"},
}

var slabs = []slabSeed{
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 0, 1, 38.00, true},
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 1, 2, 53.20, true},
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 2, 3, 70.93, true},
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 3, 4, 86.13, true},
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 4, 5, 101.33, true},
	{"MH", rate.Lead, rate.RubbleStoneAggregate, 5, 0, 15.20, false},
	{"MH", rate.Lift, rate.RubbleStoneAggregate, 0, 0, 4.10, false},
	{"MH", rate.Lead, rate.EarthSandMurrum, 0, 1, 30.40, true},
	{"MH", rate.Lead, rate.EarthSandMurrum, 1, 2, 42.50, true},
	{"MH", rate.Lead, rate.EarthSandMurrum, 2, 3, 56.70, true},
	{"MH", rate.Lead, rate.EarthSandMurrum, 3, 4, 68.90, true},
	{"MH", rate.Lead, rate.EarthSandMurrum, 4, 5, 81.10, true},
	{"MH", rate.Lead, rate.EarthSandMurrum, 5, 0, 12.15, false},
	{"MH", rate.Lift, rate.EarthSandMurrum, 0, 0, 3.25, false},
}

const (
	sampleProjectName   = "Metro Building Phase 1"
	sampleProjectRegion = "MH"
)

var samplePolicy = rate.NewPolicy(1.0, 0.2127, 15.0, 1.0)

var subprojects = []subprojectSeed{
	{name: "Excavation Works", lines: []lineSeed{
		{key: "rbi-excavation-soil", itemCode: "0114", quantity: 2500, lead: f(5), lift: f(6)},
		{key: "rbi-excavation-rock", itemCode: "0115", quantity: 800, lead: f(5), lift: f(6)},
	}},
	{name: "Superstructure Works", lines: []lineSeed{
		{key: "pcc-plinth", itemCode: "0221", quantity: 120},
		{key: "plaster-internal", itemCode: "1120", quantity: 1850, lead: f(5)},
	}},
}
