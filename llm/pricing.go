package llm

import "strings"

// ModelPricing contains per-token pricing information for a model.
// Prices are in USD per million tokens.
type ModelPricing struct {
	InputPrice      float64 // USD per 1M input tokens
	OutputPrice     float64 // USD per 1M output tokens
	CacheWritePrice float64 // USD per 1M cache-write tokens
	CacheReadPrice  float64 // USD per 1M cache-read tokens
}

// modelPricing maps model identifiers (or identifier prefixes) to pricing.
// Local models are absent and therefore cost zero.
var modelPricing = map[string]ModelPricing{
	// OpenAI
	"gpt-4o":                 {InputPrice: 2.50, OutputPrice: 10.00, CacheReadPrice: 1.25},
	"gpt-4o-mini":            {InputPrice: 0.15, OutputPrice: 0.60, CacheReadPrice: 0.075},
	"gpt-3.5-turbo-instruct": {InputPrice: 1.50, OutputPrice: 2.00},

	// Anthropic
	"claude-sonnet-4-20250514": {InputPrice: 3.00, OutputPrice: 15.00, CacheWritePrice: 3.75, CacheReadPrice: 0.30},
	"claude-haiku-4-20250514":  {InputPrice: 0.80, OutputPrice: 4.00, CacheWritePrice: 1.00, CacheReadPrice: 0.08},
	"claude-3-5-haiku-20241022": {InputPrice: 0.80, OutputPrice: 4.00, CacheWritePrice: 1.00, CacheReadPrice: 0.08},

	// DeepSeek
	"deepseek-chat":  {InputPrice: 0.27, OutputPrice: 1.10, CacheReadPrice: 0.07},
	"deepseek-coder": {InputPrice: 0.27, OutputPrice: 1.10, CacheReadPrice: 0.07},

	// Gemini
	"gemini-2.5-flash": {InputPrice: 0.30, OutputPrice: 2.50, CacheReadPrice: 0.075},
	"gemini-2.0-flash": {InputPrice: 0.10, OutputPrice: 0.40, CacheReadPrice: 0.025},
}

// PricingFor returns pricing for a model. Falls back to the longest
// registered prefix so dated variants resolve to their family.
func PricingFor(model string) (ModelPricing, bool) {
	if p, ok := modelPricing[model]; ok {
		return p, true
	}

	bestLen := 0
	var best ModelPricing
	for name, p := range modelPricing {
		if strings.HasPrefix(model, name) && len(name) > bestLen {
			bestLen = len(name)
			best = p
		}
	}
	if bestLen > 0 {
		return best, true
	}
	return ModelPricing{}, false
}

// Cost computes the USD cost of a usage record under this pricing.
func (p ModelPricing) Cost(u Usage) float64 {
	const million = 1_000_000
	return float64(u.InputTokens)*p.InputPrice/million +
		float64(u.OutputTokens)*p.OutputPrice/million +
		float64(u.CacheWriteTokens)*p.CacheWritePrice/million +
		float64(u.CacheReadTokens)*p.CacheReadPrice/million
}

// priceUsage fills in the cost field of a usage record for a model.
// Unknown models (local servers in particular) cost zero.
func priceUsage(model string, u *Usage) {
	if u == nil {
		return
	}
	if p, ok := PricingFor(model); ok {
		u.Cost = p.Cost(*u)
	}
}
