package assistant

import (
	"fmt"
	"strings"
)

// Fallback writes a plain-text answer straight from the reports
func Fallback(intent Intent, f Facts) string {
	var sb strings.Builder

	switch intent {
	case IntentEstimate:
		if e := f.Estimate; e != nil {
			fmt.Fprintf(&sb, "Estimate for %q on %s: $%.4f (%s complexity, ~%d tool calls, %s).\n",
				e.Task, e.Model, e.Estimate.TotalCostUSD, e.Complexity,
				e.Estimate.EstimatedToolCalls, e.Estimate.EstimatedTime)
			if e.CheapestOption != nil {
				fmt.Fprintf(&sb, "Cheapest alternative: %s at $%.4f.\n", e.CheapestOption.Model, e.CheapestOption.CostUSD)
			}
			fmt.Fprintf(&sb, "Based on %d past responses averaging $%.4f.\n", e.BasedOn.SampleSize, e.BasedOn.AvgResponseCost)
		}
	case IntentTimeline:
		if t := f.Timeline; t != nil {
			fmt.Fprintf(&sb, "%d billable events over %d days, $%.4f in total.\n", t.TotalEntries, t.TotalDays, t.TotalCost)
			if t.MostExpensiveDay.Date != "unknown" {
				fmt.Fprintf(&sb, "Most expensive day: %s ($%.4f).\n", t.MostExpensiveDay.Date, t.MostExpensiveDay.CostUSD)
			}
		}
	case IntentOverview:
		if o := f.Overview; o != nil {
			fmt.Fprintf(&sb, "%d sessions, %d log files, %d billable messages, %d tokens, $%.4f total.\n",
				o.TotalSessions, o.TotalJSONLFiles, o.TotalMessages, o.TotalTokens, o.TotalCostUSD)
			if len(o.TopSpendingSessions) > 0 {
				top := o.TopSpendingSessions[0]
				fmt.Fprintf(&sb, "Top spender: %s ($%.4f over %d messages, %s).\n", top.File, top.CostUSD, top.Messages, top.Model)
			}
		}
	}

	if h := f.HiddenCosts; h != nil {
		s := h.Summary
		if s.TotalCost == 0 {
			sb.WriteString("No billable usage found in the session logs.")
			return strings.TrimSpace(sb.String())
		}
		fmt.Fprintf(&sb, "Hidden spend is $%.4f of $%.4f (%.1f%%) over %.1f days, about $%.2f/month.\n",
			s.HiddenCost, s.TotalCost, s.WastePercentage, s.ActiveDaysAnalyzed, s.ProjectedMonthlyHidden)
		for i, r := range h.Recommendations {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "- %s ($%.2f/mo): %s\n", r.Issue, r.MonthlyWaste, r.Fix)
		}
		if h.TotalPotentialMonthlySavings > 0 {
			fmt.Fprintf(&sb, "Potential savings: $%.2f/month.", h.TotalPotentialMonthlySavings)
		}
	}

	return strings.TrimSpace(sb.String())
}
