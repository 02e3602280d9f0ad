package llm

import (
	"math"
	"testing"
)

func TestPricingForExact(t *testing.T) {
	p, ok := PricingFor("gpt-4o")
	if !ok {
		t.Fatal("expected pricing for gpt-4o")
	}
	if p.InputPrice != 2.50 || p.OutputPrice != 10.00 {
		t.Errorf("unexpected gpt-4o pricing: %+v", p)
	}
}

func TestPricingForPrefix(t *testing.T) {
	// Dated variants resolve to their family
	p, ok := PricingFor("gpt-4o-2024-11-20")
	if !ok {
		t.Fatal("expected prefix pricing for dated gpt-4o")
	}
	if p.InputPrice != 2.50 {
		t.Errorf("unexpected pricing: %+v", p)
	}

	// Longest prefix wins: gpt-4o-mini variants must not resolve to gpt-4o
	p, ok = PricingFor("gpt-4o-mini-2024-07-18")
	if !ok {
		t.Fatal("expected prefix pricing for dated gpt-4o-mini")
	}
	if p.InputPrice != 0.15 {
		t.Errorf("mini variant got %+v, want mini pricing", p)
	}
}

func TestPricingForUnknown(t *testing.T) {
	if _, ok := PricingFor("qwen2.5-coder:1.5b"); ok {
		t.Error("local model should have no pricing")
	}
}

func TestCost(t *testing.T) {
	p := ModelPricing{InputPrice: 3.00, OutputPrice: 15.00, CacheWritePrice: 3.75, CacheReadPrice: 0.30}
	u := Usage{
		InputTokens:      1_000_000,
		OutputTokens:     100_000,
		CacheWriteTokens: 200_000,
		CacheReadTokens:  500_000,
	}

	want := 3.00 + 1.50 + 0.75 + 0.15
	got := p.Cost(u)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
}

func TestUsageAdd(t *testing.T) {
	u := Usage{Cost: 0.01, InputTokens: 100, OutputTokens: 50}
	u.Add(&Usage{Cost: 0.02, InputTokens: 200, OutputTokens: 25, CacheReadTokens: 10})
	u.Add(nil)

	if u.Cost != 0.03 {
		t.Errorf("Cost = %v, want 0.03", u.Cost)
	}
	if u.InputTokens != 300 || u.OutputTokens != 75 || u.CacheReadTokens != 10 {
		t.Errorf("unexpected totals: %+v", u)
	}
}
