package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ritchiero/Budget-Agent/internal/report"
)

func rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// PrintHiddenCosts prints the category breakdown, summary and recommendations
func PrintHiddenCosts(w io.Writer, h *report.HiddenCosts, opts TableOptions) {
	rows := h.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No billable usage found.")
		return
	}

	compact := opts.compact()
	fmt.Fprintln(w)

	if compact {
		fmt.Fprintf(w, "%-18s  %8s  %12s\n", "Category", "Count", "Cost")
		rule(w, 18+2+8+2+12)
		for _, r := range rows {
			fmt.Fprintf(w, "%-18s  %8d  %12s\n", truncate(r.Name, 18), r.Count, FormatCost(r.CostUSD))
		}
	} else {
		fmt.Fprintf(w, "%-18s  %8s  %14s  %14s  %12s  %s\n", "Category", "Count", "Tokens", "Cache Read", "Cost", "Description")
		rule(w, 18+2+8+2+14+2+14+2+12+2+40)
		for _, r := range rows {
			fmt.Fprintf(w, "%-18s  %8d  %14s  %14s  %12s  %s\n",
				r.Name, r.Count,
				FormatNumber(r.Tokens),
				FormatNumber(r.CacheRead),
				FormatCost(r.CostUSD),
				r.Description)
		}
	}

	s := h.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total cost:          %s\n", FormatCost(s.TotalCost))
	fmt.Fprintf(w, "User initiated:      %s\n", FormatCost(s.UserInitiatedCost))
	fmt.Fprintf(w, "Hidden:              %s (%.1f%%)\n", FormatCost(s.HiddenCost), s.WastePercentage)
	fmt.Fprintf(w, "Active days:         %.1f\n", s.ActiveDaysAnalyzed)
	fmt.Fprintf(w, "Projected / month:   %s (hidden %s)\n", FormatCost(s.ProjectedMonthlyTotal), FormatCost(s.ProjectedMonthlyHidden))

	if len(h.Recommendations) == 0 {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recommendations:")
	for _, r := range h.Recommendations {
		fmt.Fprintf(w, "  - %s (%s/mo, save %.0f%%)\n", r.Issue, FormatCost(r.MonthlyWaste), r.SavingsPct)
		if !compact {
			fmt.Fprintf(w, "    %s\n", r.Fix)
		}
	}
	fmt.Fprintf(w, "\nPotential savings: %s/month\n\n", FormatCost(h.TotalPotentialMonthlySavings))
}

// PrintOverview prints sessions and the top spending log files
func PrintOverview(w io.Writer, o *report.Overview, opts TableOptions) {
	compact := opts.compact()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sessions: %d   Log files: %d   Messages: %d   Tokens: %s   Cost: %s\n",
		o.TotalSessions, o.TotalJSONLFiles, o.TotalMessages, FormatNumber(o.TotalTokens), FormatCost(o.TotalCostUSD))

	if len(o.TopSpendingSessions) == 0 {
		fmt.Fprintln(w, "\nNo session logs found.")
		return
	}

	fileWidth := 4
	for _, s := range o.TopSpendingSessions {
		if len(s.File) > fileWidth {
			fileWidth = len(s.File)
		}
	}
	// Cap file width in compact mode
	if compact && fileWidth > 24 {
		fileWidth = 24
	}

	fmt.Fprintln(w)
	if compact {
		fmt.Fprintf(w, "%-*s  %8s  %12s\n", fileWidth, "File", "Messages", "Cost")
		rule(w, fileWidth+2+8+2+12)
		for _, s := range o.TopSpendingSessions {
			fmt.Fprintf(w, "%-*s  %8d  %12s\n", fileWidth, truncate(s.File, fileWidth), s.Messages, FormatCost(s.CostUSD))
		}
	} else {
		fmt.Fprintf(w, "%-*s  %-12s  %8s  %14s  %12s\n", fileWidth, "File", "Model", "Messages", "Tokens", "Cost")
		rule(w, fileWidth+2+12+2+8+2+14+2+12)
		for _, s := range o.TopSpendingSessions {
			fmt.Fprintf(w, "%-*s  %-12s  %8d  %14s  %12s\n",
				fileWidth, s.File, truncate(ShortenModelName(s.Model), 12), s.Messages, FormatNumber(s.Tokens), FormatCost(s.CostUSD))
		}
	}
	fmt.Fprintln(w)
}

// PrintTimeline prints per-day cost and the most expensive day
func PrintTimeline(w io.Writer, t *report.Timeline, opts TableOptions) {
	if t.TotalEntries == 0 {
		fmt.Fprintln(w, "No billable usage found.")
		return
	}

	days := make([]string, 0, len(t.DailyCosts))
	for d := range t.DailyCosts {
		days = append(days, d)
	}
	sort.Strings(days)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s  %12s\n", "Date", "Cost")
	rule(w, 10+2+12)
	for _, d := range days {
		fmt.Fprintf(w, "%-10s  %12s\n", d, FormatCost(t.DailyCosts[d]))
	}
	rule(w, 10+2+12)
	fmt.Fprintf(w, "%-10s  %12s\n", "Total", FormatCost(t.TotalCost))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Most expensive day: %s (%s)\n", t.MostExpensiveDay.Date, FormatCost(t.MostExpensiveDay.CostUSD))

	if !opts.compact() && len(t.Timeline) > 0 {
		last := t.Timeline[len(t.Timeline)-1]
		fmt.Fprintf(w, "Latest event: %s on %s, %s (running total %s)\n",
			last.Category, ShortenModelName(last.Model), FormatCost(last.CostUSD), FormatCost(last.CumulativeCostUSD))
	}
	fmt.Fprintln(w)
}

// PrintEstimate prints a task estimate with model alternatives
func PrintEstimate(w io.Writer, e *report.Estimate, opts TableOptions) {
	d := e.Estimate
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Task:        %s\n", e.Task)
	fmt.Fprintf(w, "Complexity:  %s (x%.1f)\n", e.Complexity, e.Multiplier)
	fmt.Fprintf(w, "Model:       %s\n", e.Model)
	fmt.Fprintf(w, "Estimate:    %s (task %s + overhead %s)\n",
		FormatCost(d.TotalCostUSD), FormatCost(d.TaskCostUSD), FormatCost(d.OverheadCostUSD))
	fmt.Fprintf(w, "Tool calls:  ~%d, %s\n", d.EstimatedToolCalls, d.EstimatedTime)
	if !opts.compact() {
		fmt.Fprintf(w, "Tokens:      %s in / %s out\n", FormatNumber(d.InputTokens), FormatNumber(d.OutputTokens))
		fmt.Fprintf(w, "Based on:    %d past responses, avg %s\n", e.BasedOn.SampleSize, FormatCost(e.BasedOn.AvgResponseCost))
	}

	if len(e.AlternativeModels) > 0 {
		models := make([]string, 0, len(e.AlternativeModels))
		for m := range e.AlternativeModels {
			models = append(models, m)
		}
		sort.Strings(models)

		fmt.Fprintln(w, "\nAlternatives:")
		for _, m := range models {
			fmt.Fprintf(w, "  - %-20s %s\n", m, FormatCost(e.AlternativeModels[m]))
		}
	}
	if e.CheapestOption != nil {
		fmt.Fprintf(w, "\nCheapest option: %s at %s\n", e.CheapestOption.Model, FormatCost(e.CheapestOption.CostUSD))
	}
	fmt.Fprintln(w)
}
