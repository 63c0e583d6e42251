package aggregator

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/ritchiero/Budget-Agent/internal/classifier"
	"github.com/ritchiero/Budget-Agent/internal/model"
	"github.com/ritchiero/Budget-Agent/internal/timewindow"
	"github.com/ritchiero/Budget-Agent/internal/usage"
)

// TopSources is the length of the top-spending list
const TopSources = 10

// Entry is one billable message with its derived facts
type Entry struct {
	Message   model.LogMessage
	Usage     model.UsageRecord
	Category  classifier.Category
	Timestamp float64 // epoch seconds, 0 when unknown
}

// Options for aggregation
type Options struct {
	Usage usage.Options
	Since time.Time
	Until time.Time
}

// Collect extracts, classifies and timestamps every usage-bearing message
func Collect(messages []model.LogMessage, opts Options) []Entry {
	var entries []Entry
	for _, m := range messages {
		u, ok := usage.Extract(m, opts.Usage)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Message:   m,
			Usage:     u,
			Category:  classifier.Classify(m),
			Timestamp: timewindow.Normalize(m.Timestamp),
		})
	}
	return FilterEntries(entries, opts)
}

// FilterEntries filters entries based on date range.
// With no range set every entry is kept, including those without a timestamp.
func FilterEntries(entries []Entry, opts Options) []Entry {
	if opts.Since.IsZero() && opts.Until.IsZero() {
		return entries
	}
	return lo.Filter(entries, func(e Entry, _ int) bool {
		if e.Timestamp == 0 {
			return false
		}
		ts := unixTime(e.Timestamp)
		if !opts.Since.IsZero() && ts.Before(opts.Since) {
			return false
		}
		if !opts.Until.IsZero() && ts.After(opts.Until) {
			return false
		}
		return true
	})
}

// CategoryTotals accumulates usage for one category
type CategoryTotals struct {
	Category        classifier.Category
	Count           int
	Tokens          int64
	CacheReadTokens int64
	Cost            float64
}

// Breakdown holds totals for every category, including empty ones
type Breakdown struct {
	Categories     map[classifier.Category]*CategoryTotals
	CacheReadCost  float64
	CacheWriteCost float64
	Timestamps     []float64
}

// ByCategory aggregates usage by cost category
func ByCategory(entries []Entry) Breakdown {
	b := Breakdown{Categories: make(map[classifier.Category]*CategoryTotals, len(classifier.All))}
	for _, c := range classifier.All {
		b.Categories[c] = &CategoryTotals{Category: c}
	}

	for _, e := range entries {
		cat, ok := b.Categories[e.Category]
		if !ok {
			cat = b.Categories[classifier.Other]
		}
		cat.Count++
		cat.Tokens += e.Usage.TotalTokens
		cat.CacheReadTokens += e.Usage.Tokens.CacheReadTokens
		cat.Cost += e.Usage.Cost.Total

		b.CacheReadCost += e.Usage.Cost.CacheRead
		b.CacheWriteCost += e.Usage.Cost.CacheWrite
		b.Timestamps = append(b.Timestamps, e.Timestamp)
	}
	return b
}

// Cost returns the summed cost of a category
func (b Breakdown) Cost(c classifier.Category) float64 {
	if t, ok := b.Categories[c]; ok {
		return t.Cost
	}
	return 0
}

// UserCost is the cost of user requests and their direct responses
func (b Breakdown) UserCost() float64 {
	return lo.SumBy(lo.Filter(classifier.All, func(c classifier.Category, _ int) bool {
		return c.UserInitiated()
	}), b.Cost)
}

// HiddenCost is the cost of every category that is not user-initiated
func (b Breakdown) HiddenCost() float64 {
	return lo.SumBy(lo.Filter(classifier.All, func(c classifier.Category, _ int) bool {
		return !c.UserInitiated()
	}), b.Cost)
}

// SourceTotals aggregates usage per log file
type SourceTotals struct {
	File     string
	Cost     float64
	Tokens   int64
	Messages int
	Model    string
}

// BySource aggregates usage by source file, most expensive first
func BySource(entries []Entry) []SourceTotals {
	grouped := make(map[string]*SourceTotals)
	for _, e := range entries {
		key := e.Message.SourceFile
		if key == "" {
			key = "unknown"
		}
		agg, ok := grouped[key]
		if !ok {
			agg = &SourceTotals{File: key, Model: "unknown"}
			grouped[key] = agg
		}
		agg.Cost += e.Usage.Cost.Total
		agg.Tokens += e.Usage.TotalTokens
		agg.Messages++
		// last seen model wins
		if m := e.Message.Model(); m != "" {
			agg.Model = m
		}
	}

	results := make([]SourceTotals, 0, len(grouped))
	for _, key := range lo.Keys(grouped) {
		results = append(results, *grouped[key])
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Cost != results[j].Cost {
			return results[i].Cost > results[j].Cost
		}
		return results[i].File < results[j].File
	})
	return results
}

// Top returns at most n leading sources
func Top(sources []SourceTotals, n int) []SourceTotals {
	if len(sources) > n {
		return sources[:n]
	}
	return sources
}

// DayTotals is the cost of one UTC calendar day
type DayTotals struct {
	Day      string
	Cost     float64
	Tokens   int64
	Messages int
}

// ByDay aggregates usage by UTC day, oldest first.
// Entries without a timestamp are left out.
func ByDay(entries []Entry) []DayTotals {
	grouped := make(map[string]*DayTotals)
	for _, e := range entries {
		if e.Timestamp == 0 {
			continue
		}
		key := timewindow.Day(e.Timestamp)
		agg, ok := grouped[key]
		if !ok {
			agg = &DayTotals{Day: key}
			grouped[key] = agg
		}
		agg.Cost += e.Usage.Cost.Total
		agg.Tokens += e.Usage.TotalTokens
		agg.Messages++
	}

	results := make([]DayTotals, 0, len(grouped))
	for _, agg := range grouped {
		results = append(results, *agg)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Day < results[j].Day
	})
	return results
}

// Totals sums cost, tokens and message count over entries
func Totals(entries []Entry) (cost float64, tokens int64, messages int) {
	for _, e := range entries {
		cost += e.Usage.Cost.Total
		tokens += e.Usage.TotalTokens
	}
	return cost, tokens, len(entries)
}

func unixTime(ts float64) time.Time {
	sec := int64(ts)
	return time.Unix(sec, int64((ts-float64(sec))*1e9))
}
