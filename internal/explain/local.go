package explain

import (
	"context"
	"fmt"
	"strings"

	"boqrate/internal/rate"
)

// LocalGenerator writes a fixed-format narrative straight from the context.
// It needs no network access and is fully deterministic.
type LocalGenerator struct{}

func NewLocalGenerator() *LocalGenerator { return &LocalGenerator{} }

func (l *LocalGenerator) Name() string { return "local" }

func (l *LocalGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := req.Context
	if c.ItemCode == "" {
		return "", fmt.Errorf("no item in context")
	}
	uom := c.UOM
	if uom == "" {
		uom = "unit"
	}
	var b strings.Builder

	fmt.Fprintf(&b, "## Rate analysis for item %s\n\n", c.ItemCode)
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Description)
	}

	b.WriteString("### 1. Base rate\n")
	if c.Derivation.Source == rate.SourceAnalysis {
		fmt.Fprintf(&b, "Derived from an analysis for %s %s.\n", formatNumber(c.Derivation.AnalysisForQuantity), uom)
		for _, g := range c.Derivation.Groups {
			fmt.Fprintf(&b, "- %s: %s for the analysed quantity\n", groupTitle(g.Category), FormatINR(g.Subtotal))
		}
	} else {
		fmt.Fprintf(&b, "Schedule rate of %s per %s.\n", FormatINR(c.Derivation.BaseRate), uom)
	}
	b.WriteString("\n")

	b.WriteString("### 2. Additional charges\n")
	if c.Surcharge.Total == 0 {
		fmt.Fprintf(&b, "No royalty, handling or carriage surcharge applies (material class %s).\n\n", c.MaterialCategory)
	} else {
		b.WriteString("| Charge | Amount |\n|---|---|\n")
		fmt.Fprintf(&b, "| Royalty | %s |\n", FormatINR(c.Surcharge.Royalty))
		fmt.Fprintf(&b, "| Loading | %s |\n", FormatINR(c.Surcharge.Loading))
		fmt.Fprintf(&b, "| Unloading | %s |\n", FormatINR(c.Surcharge.Unloading))
		fmt.Fprintf(&b, "| Additional lead (%s km) | %s |\n", formatNumber(c.Lead.Additional), FormatINR(c.Surcharge.AdditionalLead))
		fmt.Fprintf(&b, "| Additional lift (%s m) | %s |\n", formatNumber(c.Lift.Additional), FormatINR(c.Surcharge.AdditionalLift))
		fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", FormatINR(c.Surcharge.Total))
	}

	b.WriteString("### 3. Markups\n")
	b.WriteString("| Stage | Value | Added |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| W | %s | |\n", FormatINR(c.Stages.W))
	fmt.Fprintf(&b, "| X (water %s%%) | %s | %s |\n", formatNumber(c.Policy.WaterPct), FormatINR(c.Stages.X), FormatINR(c.Deltas.Water))
	fmt.Fprintf(&b, "| Y (GST factor %s) | %s | %s |\n", formatNumber(c.Policy.GSTFactor), FormatINR(c.Stages.Y), FormatINR(c.Deltas.GST))
	fmt.Fprintf(&b, "| Z0 (CPOH %s%%) | %s | %s |\n", formatNumber(c.Policy.CPOHPct), FormatINR(c.Stages.Z0), FormatINR(c.Deltas.CPOH))
	fmt.Fprintf(&b, "| Z (cess %s%%) | %s | %s |\n\n", formatNumber(c.Policy.CessPct), FormatINR(c.Stages.Z), FormatINR(c.Deltas.Cess))

	fmt.Fprintf(&b, "**Total effective rate: %s per %s**", FormatINR(c.FinalRate), uom)
	if c.Quantity > 0 {
		fmt.Fprintf(&b, " for %s %s, amounting to %s.", formatNumber(c.Quantity), uom, FormatINR(c.FinalAmount))
	}
	b.WriteString("\n")
	return b.String(), nil
}
