package explain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"boqrate/internal/rate"
)

type stubGenerator struct {
	text  string
	err   error
	delay time.Duration
	got   Request
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	s.got = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func sampleContext(t *testing.T) rate.Context {
	t.Helper()
	lead, lift := 7.0, 6.0
	in := rate.Input{
		Item: rate.CatalogItem{
			Code:          "0310",
			Description:   "Random rubble masonry in cement mortar 1:6",
			UOM:           "cum",
			Category:      rate.Composite,
			InitialLeadKM: 0.01,
			InitialLiftM:  3,
			Analysis: &rate.CostAnalysis{
				AnalysisForQuantity: 10,
				Components: []rate.CostComponent{
					{Category: rate.Material, Description: "Rubble", Quantity: 12.5, Rate: 900, UOM: "cum"},
					{Category: rate.Labour, Description: "Mason", Quantity: 8, Rate: 850, UOM: "day"},
				},
			},
		},
		Line:   rate.Line{Quantity: 120, TotalLeadKM: &lead, TotalLiftM: &lift},
		Policy: rate.NewPolicy(1, 0.2127, 15, 1),
		Tables: &rate.Tables{
			Royalties: []rate.RoyaltyCharge{{Region: "MH", MaterialCategory: rate.RubbleStoneAggregate, Rate: 64}},
			Slabs: []rate.Slab{
				{Region: "MH", TransportType: rate.Lead, MaterialCategory: rate.RubbleStoneAggregate, Start: 0, End: 5, Rate: 101.33, Cumulative: true},
				{Region: "MH", TransportType: rate.Lead, MaterialCategory: rate.RubbleStoneAggregate, Start: 5, Rate: 15.20},
			},
		},
		Region: "MH",
	}
	res, err := rate.NewEngine().Calculate(in)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return rate.NewContext(in, res)
}

func TestServiceExplain(t *testing.T) {
	gen := &stubGenerator{text: "  narrative \n"}
	svc := NewService(gen, time.Second, nil)
	c := sampleContext(t)

	got, err := svc.Explain(context.Background(), c)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "narrative" {
		t.Fatalf("expected trimmed narrative, got %q", got)
	}
	if gen.got.Prompt != BuildPrompt(c) || gen.got.Context.ItemCode != "0310" {
		t.Fatalf("generator did not receive the rendered request")
	}
	if svc.Provider() != "stub" {
		t.Fatalf("provider = %q", svc.Provider())
	}
}

func TestServiceExplain_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"generator error", &stubGenerator{err: errors.New("quota exceeded")}},
		{"empty narrative", &stubGenerator{text: "   "}},
		{"timeout", &stubGenerator{text: "late", delay: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.gen, 20*time.Millisecond, nil)
			_, err := svc.Explain(context.Background(), sampleContext(t))
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestNewGenerator(t *testing.T) {
	if g := NewGenerator(Config{}, nil); g.Name() != "local" {
		t.Fatalf("expected local generator without a key, got %s", g.Name())
	}
	g := NewGenerator(Config{APIKey: "sk-test"}, nil)
	o, ok := g.(*OpenAIGenerator)
	if !ok {
		t.Fatalf("expected *OpenAIGenerator, got %T", g)
	}
	if o.model != defaultModel {
		t.Fatalf("model = %q", o.model)
	}
}

func TestLocalGenerator(t *testing.T) {
	c := sampleContext(t)
	gen := NewLocalGenerator()
	first, err := gen.Generate(context.Background(), Request{Context: c})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, _ := gen.Generate(context.Background(), Request{Context: c})
	if first != second {
		t.Fatalf("local narrative is not deterministic")
	}
	for _, want := range []string{"0310", "Royalty", "₹64.00", FormatINR(c.FinalRate) + " per cum"} {
		if !strings.Contains(first, want) {
			t.Fatalf("narrative missing %q:\n%s", want, first)
		}
	}

	if _, err := gen.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for an empty context")
	}
}
