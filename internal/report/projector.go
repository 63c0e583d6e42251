package report

import (
	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/classifier"
)

const (
	projectionDays = 30
	// cache-read spend is only worth flagging above this monthly amount
	cacheReadThreshold = 0.01
	cacheReadSavings   = 40
)

// Recommendation is one savings suggestion
type Recommendation struct {
	Category     string  `json:"category"`
	Issue        string  `json:"issue"`
	MonthlyWaste float64 `json:"monthly_waste"`
	Fix          string  `json:"fix"`
	SavingsPct   float64 `json:"savings_pct"`
}

type heuristic struct {
	category   classifier.Category
	issue      string
	fix        string
	savingsPct float64
}

// heuristics are emitted in this order regardless of cost
var heuristics = []heuristic{
	{
		category:   classifier.Heartbeat,
		issue:      "Heartbeat overhead - LLM health checks burning tokens 24/7",
		fix:        "Replace LLM heartbeats with HTTP pings. Only invoke model when action needed.",
		savingsPct: 80,
	},
	{
		category:   classifier.MemoryResync,
		issue:      "Full memory resyncs reloading SOUL.md + history",
		fix:        "Cache SOUL.md locally. Incremental history loading. Only full resync after reconnects.",
		savingsPct: 60,
	},
	{
		category:   classifier.WhatsAppReconnect,
		issue:      "WhatsApp reconnects invoking the LLM",
		fix:        "Handle reconnects at transport layer. Simple state machine, no LLM needed.",
		savingsPct: 95,
	},
	{
		category:   classifier.EmailCheck,
		issue:      "Himalaya email scans using LLM to check inbox",
		fix:        "Use himalaya CLI directly. Only invoke LLM when emails need processing/response.",
		savingsPct: 75,
	},
	{
		category:   classifier.CostReport,
		issue:      "Auto cost reports using LLM for arithmetic",
		fix:        "Generate cost reports with bash script. Zero token cost for math.",
		savingsPct: 100,
	},
	{
		category:   classifier.CronTask,
		issue:      "Cron tasks consuming tokens on schedule",
		fix:        "Gate cron tasks behind lightweight checks. Only invoke LLM when action is needed.",
		savingsPct: 50,
	},
}

// SavingsPct returns the heuristic savings percentage of a category, or 0
func SavingsPct(c classifier.Category) float64 {
	for _, h := range heuristics {
		if h.category == c {
			return h.savingsPct
		}
	}
	return 0
}

// Monthly projects a cost observed over activeDays onto 30 days
func Monthly(cost, activeDays float64) float64 {
	if activeDays <= 0 {
		return 0
	}
	return cost / activeDays * projectionDays
}

// Recommend derives the recommendation list from a category breakdown
func Recommend(b aggregator.Breakdown, activeDays float64) []Recommendation {
	recs := []Recommendation{}
	for _, h := range heuristics {
		cost := b.Cost(h.category)
		if cost <= 0 {
			continue
		}
		recs = append(recs, Recommendation{
			Category:     string(h.category),
			Issue:        h.issue,
			MonthlyWaste: round(Monthly(cost, activeDays), 2),
			Fix:          h.fix,
			SavingsPct:   h.savingsPct,
		})
	}

	if b.CacheReadCost > 0 {
		monthly := Monthly(b.CacheReadCost, activeDays)
		if monthly > cacheReadThreshold {
			recs = append(recs, Recommendation{
				Category:     "cache_read",
				Issue:        "Cache read overhead: $" + formatMoney(monthly) + "/mo",
				MonthlyWaste: round(monthly, 2),
				Fix:          "Oversized system prompts or history re-sent each turn. Trim prompt, use sliding window.",
				SavingsPct:   cacheReadSavings,
			})
		}
	}
	return recs
}

// PotentialSavings sums monthly_waste * savings_pct / 100 over recommendations
func PotentialSavings(recs []Recommendation) float64 {
	var total float64
	for _, r := range recs {
		total += r.MonthlyWaste * r.SavingsPct / 100
	}
	return total
}
