package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/classifier"
	"github.com/ritchiero/Budget-Agent/internal/model"
)

func TestBuildTimeline(t *testing.T) {
	day1 := float64(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Unix())
	day2 := float64(time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC).Unix())

	entries := []aggregator.Entry{
		entry(classifier.Response, "assistant", day2, 0.5, model.TokenUsage{OutputTokens: 10}),
		entry(classifier.UserRequest, "user", day1, 0.25, model.TokenUsage{InputTokens: 5}),
		entry(classifier.Heartbeat, "user", day1+60, 0.125, model.TokenUsage{InputTokens: 1}),
		entry(classifier.Other, "system", 0, 1, model.TokenUsage{}),
	}

	tl := BuildTimeline(entries)

	assert.Equal(t, 4, tl.TotalEntries)
	assert.Equal(t, 1.875, tl.TotalCost)
	require.Len(t, tl.Timeline, 4)

	// unknown timestamps sort first
	assert.Equal(t, "other", tl.Timeline[0].Category)
	assert.Equal(t, "user_request", tl.Timeline[1].Category)
	assert.Equal(t, "heartbeat", tl.Timeline[2].Category)
	assert.Equal(t, "response", tl.Timeline[3].Category)
	assert.Equal(t, 1.875, tl.Timeline[3].CumulativeCostUSD)
	assert.Equal(t, 1.375, tl.Timeline[2].CumulativeCostUSD)
	assert.Equal(t, "s.jsonl", tl.Timeline[3].SourceFile)

	assert.Equal(t, map[string]float64{"2025-03-01": 0.375, "2025-03-02": 0.5}, tl.DailyCosts)
	assert.Equal(t, DayCost{Date: "2025-03-02", CostUSD: 0.5}, tl.MostExpensiveDay)
	assert.Equal(t, 2, tl.TotalDays)
}

func TestBuildTimelineKeepsLatestWindow(t *testing.T) {
	base := float64(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Unix())

	var entries []aggregator.Entry
	for i := 0; i < TimelineWindow+10; i++ {
		entries = append(entries, entry(classifier.UserRequest, "user", base+float64(i), 0.5, model.TokenUsage{}))
	}

	tl := BuildTimeline(entries)
	assert.Equal(t, TimelineWindow+10, tl.TotalEntries)
	require.Len(t, tl.Timeline, TimelineWindow)
	assert.Equal(t, base+10, tl.Timeline[0].Timestamp)
	assert.Equal(t, float64(TimelineWindow+10)*0.5, tl.Timeline[TimelineWindow-1].CumulativeCostUSD)
}

func TestBuildTimelineTieKeepsEarliestDay(t *testing.T) {
	day1 := float64(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Unix())
	day2 := float64(time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC).Unix())

	tl := BuildTimeline([]aggregator.Entry{
		entry(classifier.UserRequest, "user", day2, 1, model.TokenUsage{}),
		entry(classifier.UserRequest, "user", day1, 1, model.TokenUsage{}),
	})
	assert.Equal(t, "2025-03-01", tl.MostExpensiveDay.Date)
}
