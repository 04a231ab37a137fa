package explain

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	c := sampleContext(t)
	p := BuildPrompt(c)
	if p != BuildPrompt(c) {
		t.Fatalf("prompt is not deterministic")
	}
	for _, want := range []string{
		"Code: 0310",
		"Region: MH",
		"Derived from a detailed analysis for 10 cum",
		"A. LABOUR (subtotal ₹6,800.00)",
		"B. MATERIALS (subtotal ₹11,250.00)",
		"Rubble: 12.5 cum @ ₹900.00",
		"material class rubble_stone_aggregate",
		"Royalty: ₹64.00",
		`"is_cumulative_total":true`,
		"FINAL RATE: " + FormatINR(c.FinalRate) + " per cum",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_BaseRate(t *testing.T) {
	c := sampleContext(t)
	c.Derivation.Source = "base_rate"
	c.Derivation.Groups = nil
	c.Derivation.BaseRate = 74.01
	p := BuildPrompt(c)
	if !strings.Contains(p, "The schedule base rate is ₹74.01 per cum") {
		t.Fatalf("unexpected base rate section:\n%s", p)
	}
}
