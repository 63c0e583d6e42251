package report

import (
	"strings"

	"github.com/samber/lo"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/pricing"
)

// DefaultEstimateModel is the target model when none is given
const DefaultEstimateModel = pricing.DefaultModel

const (
	// per-call overhead, scaled by 2x the tier multiplier
	overheadPerCall = 0.014

	fallbackInput     = 8000
	fallbackOutput    = 1500
	fallbackCacheRead = 50000
	fallbackCost      = 0.03
)

// Tier is a task complexity bucket
type Tier struct {
	Complexity    string
	Multiplier    float64
	EstimatedTime string
	ToolCalls     int
	Keywords      []string
}

// Tiers are matched in order against the lowercased task description
var Tiers = []Tier{
	{"high", 4.0, "3-8 min", 8, []string{"research", "investigate", "analyze", "deep dive", "compare"}},
	{"medium", 1.5, "30-90s", 2, []string{"email", "draft", "write", "reply", "correo"}},
	{"low", 0.8, "10-30s", 1, []string{"check", "status", "list", "show", "revisar"}},
	{"medium-high", 2.5, "1-3 min", 3, []string{"summarize", "recap", "resumen"}},
	{"medium", 3.0, "2-5 min", 5, []string{"browse", "search", "find", "buscar"}},
}

// DefaultTier applies when no keyword matches
var DefaultTier = Tier{"medium", 1.5, "1-3 min", 3, nil}

// ClassifyTask picks the complexity tier for a task description
func ClassifyTask(task string) Tier {
	lower := strings.ToLower(task)
	for _, t := range Tiers {
		if lo.SomeBy(t.Keywords, func(kw string) bool { return strings.Contains(lower, kw) }) {
			return t
		}
	}
	return DefaultTier
}

// EstimateDetail is the projected token volume and cost of the task
type EstimateDetail struct {
	InputTokens        int64   `json:"input_tokens"`
	OutputTokens       int64   `json:"output_tokens"`
	TaskCostUSD        float64 `json:"task_cost_usd"`
	OverheadCostUSD    float64 `json:"overhead_cost_usd"`
	TotalCostUSD       float64 `json:"total_cost_usd"`
	EstimatedToolCalls int     `json:"estimated_tool_calls"`
	EstimatedTime      string  `json:"estimated_time"`
}

// BasedOn describes the historical sample behind an estimate
type BasedOn struct {
	AvgResponseCost float64 `json:"avg_response_cost"`
	SampleSize      int     `json:"sample_size"`
}

// ModelCost pairs a model with a cost
type ModelCost struct {
	Model   string  `json:"model"`
	CostUSD float64 `json:"cost_usd"`
}

// Estimate is the task estimate document
type Estimate struct {
	Task              string             `json:"task"`
	Complexity        string             `json:"complexity"`
	Multiplier        float64            `json:"multiplier"`
	Model             string             `json:"model"`
	Estimate          EstimateDetail     `json:"estimate"`
	BasedOn           BasedOn            `json:"based_on"`
	AlternativeModels map[string]float64 `json:"alternative_models"`
	CheapestOption    *ModelCost         `json:"cheapest_option"`
}

type averages struct {
	input, output, cacheRead, cost float64
	samples                        int
}

// historicalAverages averages usage over assistant messages
func historicalAverages(entries []aggregator.Entry) averages {
	assistant := lo.Filter(entries, func(e aggregator.Entry, _ int) bool {
		return e.Message.Role() == "assistant"
	})
	if len(assistant) == 0 {
		return averages{
			input:     fallbackInput,
			output:    fallbackOutput,
			cacheRead: fallbackCacheRead,
			cost:      fallbackCost,
		}
	}

	n := float64(len(assistant))
	return averages{
		input:     float64(lo.SumBy(assistant, func(e aggregator.Entry) int64 { return e.Usage.Tokens.InputTokens })) / n,
		output:    float64(lo.SumBy(assistant, func(e aggregator.Entry) int64 { return e.Usage.Tokens.OutputTokens })) / n,
		cacheRead: float64(lo.SumBy(assistant, func(e aggregator.Entry) int64 { return e.Usage.Tokens.CacheReadTokens })) / n,
		cost:      lo.SumBy(assistant, func(e aggregator.Entry) float64 { return e.Usage.Cost.Total }) / n,
		samples:   len(assistant),
	}
}

// BuildEstimate scales historical per-message spend by the task's tier
func BuildEstimate(task, targetModel string, entries []aggregator.Entry) *Estimate {
	if targetModel == "" {
		targetModel = DefaultEstimateModel
	}

	avg := historicalAverages(entries)
	tier := ClassifyTask(task)

	taskCost := avg.cost * tier.Multiplier
	overhead := overheadPerCall * (tier.Multiplier * 2)

	alternatives := make(map[string]float64)
	var cheapest *ModelCost
	for _, name := range pricing.ComparableModels() {
		if pricing.SameModel(name, targetModel) {
			continue
		}
		p := pricing.GetPricing(name)
		cost := round(avg.input*tier.Multiplier/1e6*p.InputPerMillion+
			avg.output*tier.Multiplier/1e6*p.OutputPerMillion+
			avg.cacheRead/1e6*p.CacheReadPerMillion, 4)
		alternatives[name] = cost
		// names are sorted, so ties keep the first
		if cheapest == nil || cost < cheapest.CostUSD {
			cheapest = &ModelCost{Model: name, CostUSD: cost}
		}
	}

	return &Estimate{
		Task:       task,
		Complexity: tier.Complexity,
		Multiplier: tier.Multiplier,
		Model:      targetModel,
		Estimate: EstimateDetail{
			InputTokens:        int64(avg.input * tier.Multiplier),
			OutputTokens:       int64(avg.output * tier.Multiplier),
			TaskCostUSD:        round(taskCost, 4),
			OverheadCostUSD:    round(overhead, 4),
			TotalCostUSD:       round(taskCost+overhead, 4),
			EstimatedToolCalls: tier.ToolCalls,
			EstimatedTime:      tier.EstimatedTime,
		},
		BasedOn: BasedOn{
			AvgResponseCost: round(avg.cost, 4),
			SampleSize:      avg.samples,
		},
		AlternativeModels: alternatives,
		CheapestOption:    cheapest,
	}
}
