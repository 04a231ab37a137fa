package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"boqrate/internal/rate"
)

var groupTitles = map[rate.Category]string{
	rate.Material:   "MATERIALS",
	rate.Labour:     "LABOUR",
	rate.Machinery:  "MACHINERY",
	rate.Carriage:   "CARRIAGE",
	rate.Composite:  "COMPOSITE",
	rate.Sundry:     "SUNDRIES",
	rate.Adjustment: "ADJUSTMENTS",
	rate.Concrete:   "CONCRETE",
}

// BuildPrompt renders c as a quantity-surveyor briefing. The output depends
// only on c, so the same calculation always yields the same prompt.
func BuildPrompt(c rate.Context) string {
	var b strings.Builder
	uom := c.UOM
	if uom == "" {
		uom = "unit"
	}

	b.WriteString("You are an expert quantity surveyor. Explain, step by step, how the rate below was built up, ")
	b.WriteString("in the format of a public works department rate analysis. Use only the figures given; do not recompute or change them.\n\n")

	b.WriteString("ITEM DETAILS:\n")
	fmt.Fprintf(&b, "- Description: %s\n", c.Description)
	fmt.Fprintf(&b, "- Code: %s\n", c.ItemCode)
	fmt.Fprintf(&b, "- Unit of measurement: %s\n", uom)
	fmt.Fprintf(&b, "- Region: %s\n", c.Region)
	fmt.Fprintf(&b, "- Quantity: %s %s\n\n", formatNumber(c.Quantity), uom)

	b.WriteString("BASE RATE DERIVATION:\n")
	d := c.Derivation
	if d.Source == rate.SourceAnalysis {
		fmt.Fprintf(&b, "Derived from a detailed analysis for %s %s:\n", formatNumber(d.AnalysisForQuantity), uom)
		for i, g := range d.Groups {
			fmt.Fprintf(&b, "%c. %s (subtotal %s):\n", 'A'+i, groupTitle(g.Category), FormatINR(g.Subtotal))
			for _, comp := range g.Components {
				fmt.Fprintf(&b, "   - %s: %s %s @ %s\n", comp.Description, formatNumber(comp.Quantity), comp.UOM, FormatINR(comp.Rate))
			}
		}
		b.WriteString("Each subtotal is divided by the analysis quantity to give a per-unit cost.\n")
	} else {
		fmt.Fprintf(&b, "The schedule base rate is %s per %s and is taken as a single %s cost.\n", FormatINR(d.BaseRate), uom, c.Category)
	}
	b.WriteString("Per-unit cost by category:\n")
	writeBuckets(&b, d.Buckets)
	b.WriteString("\n")

	fmt.Fprintf(&b, "ADDITIONAL CHARGES (material class %s):\n", c.MaterialCategory)
	fmt.Fprintf(&b, "- Lead: %s km included, %s km required, %s km additional\n",
		formatNumber(c.Lead.Initial), formatNumber(c.Lead.Total), formatNumber(c.Lead.Additional))
	fmt.Fprintf(&b, "- Lift: %s m included, %s m required, %s m additional\n",
		formatNumber(c.Lift.Initial), formatNumber(c.Lift.Total), formatNumber(c.Lift.Additional))
	fmt.Fprintf(&b, "- Royalty: %s\n", FormatINR(c.Surcharge.Royalty))
	fmt.Fprintf(&b, "- Loading: %s%s\n", FormatINR(c.Surcharge.Loading), handlingMethod(c.Loading))
	fmt.Fprintf(&b, "- Unloading: %s%s\n", FormatINR(c.Surcharge.Unloading), handlingMethod(c.Unloading))
	fmt.Fprintf(&b, "- Additional lead: %s\n", FormatINR(c.Surcharge.AdditionalLead))
	fmt.Fprintf(&b, "- Additional lift: %s\n", FormatINR(c.Surcharge.AdditionalLift))
	fmt.Fprintf(&b, "- Surcharge total: %s (added to carriage)\n", FormatINR(c.Surcharge.Total))
	fmt.Fprintf(&b, "- Lead slabs: %s\n", compactJSON(c.LeadSlabs))
	fmt.Fprintf(&b, "- Lift slabs: %s\n\n", compactJSON(c.LiftSlabs))

	b.WriteString("MARKUPS:\n")
	s, dl, p := c.Stages, c.Deltas, c.Policy
	fmt.Fprintf(&b, "- W (sum of categories): %s\n", FormatINR(s.W))
	fmt.Fprintf(&b, "- X = W + water %s%%: %s (+%s)\n", formatNumber(p.WaterPct), FormatINR(s.X), FormatINR(dl.Water))
	fmt.Fprintf(&b, "- Y = X * (1 + GST factor %s): %s (+%s)\n", formatNumber(p.GSTFactor), FormatINR(s.Y), FormatINR(dl.GST))
	fmt.Fprintf(&b, "- Z0 = Y + contractor profit and overheads %s%%: %s (+%s)\n", formatNumber(p.CPOHPct), FormatINR(s.Z0), FormatINR(dl.CPOH))
	fmt.Fprintf(&b, "- Z = Z0 + labour welfare cess %s%%: %s (+%s)\n\n", formatNumber(p.CessPct), FormatINR(s.Z), FormatINR(dl.Cess))

	fmt.Fprintf(&b, "FINAL RATE: %s per %s\n", FormatINR(c.FinalRate), uom)
	fmt.Fprintf(&b, "FINAL AMOUNT: %s\n\n", FormatINR(c.FinalAmount))

	b.WriteString("YOUR TASK:\n")
	b.WriteString("1. State the base rate and how it was derived.\n")
	b.WriteString("2. List each additional charge and the table row or slab it came from.\n")
	b.WriteString("3. Walk through the markups from W to Z.\n")
	fmt.Fprintf(&b, "4. Finish with a summary table and the final rate per %s. Respond in markdown.\n", uom)
	return b.String()
}

func writeBuckets(b *strings.Builder, buckets rate.Buckets) {
	for _, cat := range rate.Categories {
		if v := buckets[cat]; v != 0 {
			fmt.Fprintf(b, "- %s: %s\n", cat, FormatINR(v))
		}
	}
}

func groupTitle(c rate.Category) string {
	if t, ok := groupTitles[c]; ok {
		return t
	}
	return strings.ToUpper(string(c))
}

func handlingMethod(h *rate.HandlingCharge) string {
	if h == nil {
		return ""
	}
	return " (" + string(h.Method) + ")"
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
