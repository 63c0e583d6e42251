package pricing

import (
	"sort"
	"strings"

	"github.com/ritchiero/Budget-Agent/internal/model"
)

// DefaultModel is used when a model identifier is unknown or empty
const DefaultModel = "claude-sonnet-4-5"

type entry struct {
	pricing model.ModelPricing
	// alias entries duplicate another model's card under a dated name and are
	// left out of cross-model comparisons
	alias bool
}

var table = map[string]entry{
	"claude-sonnet-4-5": {
		pricing: model.ModelPricing{
			InputPerMillion:      3.0,
			OutputPerMillion:     15.0,
			CacheReadPerMillion:  0.30,
			CacheWritePerMillion: 3.75,
		},
	},
	"claude-sonnet-4-20250514": {
		pricing: model.ModelPricing{
			InputPerMillion:      3.0,
			OutputPerMillion:     15.0,
			CacheReadPerMillion:  0.30,
			CacheWritePerMillion: 3.75,
		},
		alias: true,
	},
	"claude-opus-4-5": {
		pricing: model.ModelPricing{
			InputPerMillion:      15.0,
			OutputPerMillion:     75.0,
			CacheReadPerMillion:  1.50,
			CacheWritePerMillion: 18.75,
		},
	},
	"claude-haiku-4-5": {
		pricing: model.ModelPricing{
			InputPerMillion:      0.80,
			OutputPerMillion:     4.0,
			CacheReadPerMillion:  0.08,
			CacheWritePerMillion: 1.0,
		},
	},
}

// Lookup returns the rate card for a model and whether it was found.
// Matching is exact first, then on the normalized name.
func Lookup(modelName string) (model.ModelPricing, bool) {
	if e, ok := table[modelName]; ok {
		return e.pricing, true
	}

	normalized := normalizeModelName(modelName)
	if normalized == "" {
		return model.ModelPricing{}, false
	}
	for name, e := range table {
		if normalizeModelName(name) == normalized {
			return e.pricing, true
		}
	}
	return model.ModelPricing{}, false
}

// GetPricing returns pricing for a model, falling back to DefaultModel
func GetPricing(modelName string) model.ModelPricing {
	if p, ok := Lookup(modelName); ok {
		return p
	}
	return table[DefaultModel].pricing
}

// Known reports whether the model has its own rate card
func Known(modelName string) bool {
	_, ok := Lookup(modelName)
	return ok
}

// Models returns the sorted identifiers of every priced model
func Models() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComparableModels returns the sorted non-alias model identifiers
func ComparableModels() []string {
	var names []string
	for name, e := range table {
		if !e.alias {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SameModel reports whether two identifiers name the same model, ignoring
// case, provider prefixes and separators
func SameModel(a, b string) bool {
	return normalizeModelName(a) == normalizeModelName(b)
}

// normalizeModelName normalizes model names for matching
func normalizeModelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	// provider-prefixed ids such as anthropic/claude-sonnet-4-5
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, ".", "")
	return name
}

// CalculateCost prices a token usage against a rate card
func CalculateCost(usage model.TokenUsage, p model.ModelPricing) model.CostBreakdown {
	c := model.CostBreakdown{
		Input:      float64(usage.InputTokens) / 1e6 * p.InputPerMillion,
		Output:     float64(usage.OutputTokens) / 1e6 * p.OutputPerMillion,
		CacheRead:  float64(usage.CacheReadTokens) / 1e6 * p.CacheReadPerMillion,
		CacheWrite: float64(usage.CacheWriteTokens) / 1e6 * p.CacheWritePerMillion,
	}
	c.Total = c.Input + c.Output + c.CacheRead + c.CacheWrite
	return c
}
