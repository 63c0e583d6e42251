package report

import (
	"sort"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
)

// TimelineWindow is how many of the latest entries a timeline returns
const TimelineWindow = 50

// TimelineEntry is one billable event on the timeline
type TimelineEntry struct {
	Timestamp         float64 `json:"timestamp"`
	Category          string  `json:"category"`
	CostUSD           float64 `json:"cost_usd"`
	Tokens            int64   `json:"tokens"`
	InputTokens       int64   `json:"input_tokens"`
	OutputTokens      int64   `json:"output_tokens"`
	CacheReadTokens   int64   `json:"cache_read_tokens"`
	Model             string  `json:"model"`
	SourceFile        string  `json:"source_file"`
	CumulativeCostUSD float64 `json:"cumulative_cost_usd"`
}

// DayCost names the costliest day
type DayCost struct {
	Date    string  `json:"date"`
	CostUSD float64 `json:"cost_usd"`
}

// Timeline is the cost timeline document
type Timeline struct {
	Timeline         []TimelineEntry    `json:"timeline"`
	TotalEntries     int                `json:"total_entries"`
	TotalCost        float64            `json:"total_cost"`
	DailyCosts       map[string]float64 `json:"daily_costs"`
	MostExpensiveDay DayCost            `json:"most_expensive_day"`
	TotalDays        int                `json:"total_days"`
}

// BuildTimeline orders spend by time and accumulates it
func BuildTimeline(entries []aggregator.Entry) *Timeline {
	sorted := make([]aggregator.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	items := make([]TimelineEntry, 0, len(sorted))
	var cumulative float64
	for _, e := range sorted {
		cumulative += e.Usage.Cost.Total
		items = append(items, TimelineEntry{
			Timestamp:         e.Timestamp,
			Category:          string(e.Category),
			CostUSD:           e.Usage.Cost.Total,
			Tokens:            e.Usage.TotalTokens,
			InputTokens:       e.Usage.Tokens.InputTokens,
			OutputTokens:      e.Usage.Tokens.OutputTokens,
			CacheReadTokens:   e.Usage.Tokens.CacheReadTokens,
			Model:             orDefault(e.Message.Model(), "unknown"),
			SourceFile:        orDefault(e.Message.SourceFile, "unknown"),
			CumulativeCostUSD: round(cumulative, 4),
		})
	}

	days := aggregator.ByDay(sorted)
	daily := make(map[string]float64, len(days))
	most := DayCost{Date: "unknown"}
	for _, d := range days {
		daily[d.Day] = round(d.Cost, 4)
		// days are in date order, so ties keep the earliest
		if most.Date == "unknown" || d.Cost > most.CostUSD {
			most = DayCost{Date: d.Day, CostUSD: d.Cost}
		}
	}
	most.CostUSD = round(most.CostUSD, 4)

	latest := items
	if len(latest) > TimelineWindow {
		latest = latest[len(latest)-TimelineWindow:]
	}

	return &Timeline{
		Timeline:         latest,
		TotalEntries:     len(items),
		TotalCost:        round(cumulative, 4),
		DailyCosts:       daily,
		MostExpensiveDay: most,
		TotalDays:        len(days),
	}
}
