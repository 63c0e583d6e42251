package usage

import (
	"github.com/ritchiero/Budget-Agent/internal/model"
	"github.com/ritchiero/Budget-Agent/internal/pricing"
)

// Options controls how cost is filled in when a log omits it
type Options struct {
	// DeriveMissingCost prices the token counts with the model's rate card
	// when the record carries no usable cost (absent block, or a zero total
	// with no per-kind amounts).
	// When false, absent cost fields are taken as zero.
	DeriveMissingCost bool
}

// Extract returns the normalized usage of a message.
// The second result is false when the message has no usage data, in which
// case the message is not a billable event.
func Extract(msg model.LogMessage, opts Options) (model.UsageRecord, bool) {
	raw := msg.Message.Usage
	if raw == nil || raw.Empty {
		return model.UsageRecord{}, false
	}

	rec := model.UsageRecord{
		Tokens: model.TokenUsage{
			InputTokens:      raw.Input,
			OutputTokens:     raw.Output,
			CacheReadTokens:  raw.CacheRead,
			CacheWriteTokens: raw.CacheWrite,
		},
		TotalTokens: raw.TotalTokens,
	}
	if rec.TotalTokens == 0 {
		rec.TotalTokens = raw.Input + raw.Output
	}

	if raw.Cost != nil {
		rec.Cost = model.CostBreakdown{
			Input:      raw.Cost.Input,
			Output:     raw.Cost.Output,
			CacheRead:  raw.Cost.CacheRead,
			CacheWrite: raw.Cost.CacheWrite,
			Total:      raw.Cost.Total,
		}
		if rec.Cost.Total == 0 {
			rec.Cost.Total = rec.Cost.Input + rec.Cost.Output + rec.Cost.CacheRead + rec.Cost.CacheWrite
		}
	}

	if opts.DeriveMissingCost && rec.Cost.Total == 0 && hasTokens(rec.Tokens) {
		rec.Cost = pricing.CalculateCost(rec.Tokens, pricing.GetPricing(msg.Model()))
		rec.CostDerived = true
	}

	return rec, true
}

func hasTokens(t model.TokenUsage) bool {
	return t.InputTokens+t.OutputTokens+t.CacheReadTokens+t.CacheWriteTokens > 0
}
