package report

import (
	"fmt"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/classifier"
	"github.com/ritchiero/Budget-Agent/internal/timewindow"
)

// CategoryCost is one row of the cost breakdown
type CategoryCost struct {
	Count       int     `json:"count"`
	Tokens      int64   `json:"tokens"`
	CacheRead   int64   `json:"cache_read"`
	CostUSD     float64 `json:"cost_usd"`
	Description string  `json:"description"`
}

// Summary is the cost summary of one analysis pass
type Summary struct {
	TotalCost              float64 `json:"total_cost"`
	UserInitiatedCost      float64 `json:"user_initiated_cost"`
	HiddenCost             float64 `json:"hidden_cost"`
	WastePercentage        float64 `json:"waste_percentage"`
	ActiveDaysAnalyzed     float64 `json:"active_days_analyzed"`
	DailyAvgCost           float64 `json:"daily_avg_cost"`
	ProjectedMonthlyTotal  float64 `json:"projected_monthly_total"`
	ProjectedMonthlyHidden float64 `json:"projected_monthly_hidden"`
	CacheReadCost          float64 `json:"cache_read_cost"`
	CacheWriteCost         float64 `json:"cache_write_cost"`
}

// HiddenCosts is the hidden-cost analysis document
type HiddenCosts struct {
	CostBreakdown                map[string]CategoryCost `json:"cost_breakdown"`
	Summary                      Summary                 `json:"summary"`
	Recommendations              []Recommendation        `json:"recommendations"`
	TotalPotentialMonthlySavings float64                 `json:"total_potential_monthly_savings"`
}

// BuildHiddenCosts classifies spend into categories and projects it monthly
func BuildHiddenCosts(entries []aggregator.Entry, window timewindow.Policy) *HiddenCosts {
	b := aggregator.ByCategory(entries)

	userCost := b.UserCost()
	hiddenCost := b.HiddenCost()
	totalCost := userCost + hiddenCost

	var wastePct float64
	if totalCost > 0 {
		wastePct = hiddenCost / totalCost * 100
	}

	activeDays := timewindow.ActiveDays(b.Timestamps, window)
	dailyCost := totalCost / activeDays

	breakdown := make(map[string]CategoryCost)
	for _, c := range classifier.All {
		t := b.Categories[c]
		if t.Count == 0 {
			continue
		}
		breakdown[string(c)] = CategoryCost{
			Count:       t.Count,
			Tokens:      t.Tokens,
			CacheRead:   t.CacheReadTokens,
			CostUSD:     round(t.Cost, 4),
			Description: c.Description(),
		}
	}

	recs := Recommend(b, activeDays)

	return &HiddenCosts{
		CostBreakdown: breakdown,
		Summary: Summary{
			TotalCost:              round(totalCost, 4),
			UserInitiatedCost:      round(userCost, 4),
			HiddenCost:             round(hiddenCost, 4),
			WastePercentage:        round(wastePct, 1),
			ActiveDaysAnalyzed:     round(activeDays, 1),
			DailyAvgCost:           round(dailyCost, 4),
			ProjectedMonthlyTotal:  round(dailyCost*projectionDays, 2),
			ProjectedMonthlyHidden: round(Monthly(hiddenCost, activeDays), 2),
			CacheReadCost:          round(b.CacheReadCost, 4),
			CacheWriteCost:         round(b.CacheWriteCost, 4),
		},
		Recommendations:              recs,
		TotalPotentialMonthlySavings: round(PotentialSavings(recs), 2),
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// CategoryRow is a breakdown row with its category name
type CategoryRow struct {
	Name string
	CategoryCost
}

// Rows returns the breakdown in reporting order
func (h *HiddenCosts) Rows() []CategoryRow {
	rows := make([]CategoryRow, 0, len(h.CostBreakdown))
	for _, c := range classifier.All {
		if cc, ok := h.CostBreakdown[string(c)]; ok {
			rows = append(rows, CategoryRow{Name: string(c), CategoryCost: cc})
		}
	}
	return rows
}
