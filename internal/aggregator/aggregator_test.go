package aggregator

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/classifier"
	"github.com/ritchiero/Budget-Agent/internal/model"
	"github.com/ritchiero/Budget-Agent/internal/usage"
)

func message(t *testing.T, source, ts, role, content, modelName, usageJSON string) model.LogMessage {
	t.Helper()
	line := fmt.Sprintf(`{"type":"message","timestamp":%q,"message":{"role":%q,"content":%q,"model":%q,"usage":%s}}`,
		ts, role, content, modelName, usageJSON)
	var msg model.LogMessage
	require.NoError(t, json.Unmarshal([]byte(line), &msg))
	msg.SourceFile = source
	return msg
}

func fixture(t *testing.T) []model.LogMessage {
	return []model.LogMessage{
		message(t, "a.jsonl", "2025-03-01T10:00:00Z", "user", "Plan my trip", "", `{"input":100,"cost":{"total":0.5}}`),
		message(t, "a.jsonl", "2025-03-01T10:00:05Z", "assistant", "Here is the plan", "claude-sonnet-4-5", `{"output":50,"cost":{"total":0.25,"cacheRead":0.05}}`),
		message(t, "b.jsonl", "2025-03-02T00:00:00Z", "user", "HEARTBEAT_OK", "claude-haiku-4-5", `{"input":10,"output":5,"cost":{"total":0.125,"cacheWrite":0.02}}`),
		message(t, "b.jsonl", "2025-03-02T00:00:01Z", "assistant", "no usage here", "", `null`),
		message(t, "c.jsonl", "", "system", "bootstrap", "", `{"input":4,"cost":{"total":1}}`),
	}
}

func TestCollect(t *testing.T) {
	entries := Collect(fixture(t), Options{})
	require.Len(t, entries, 4)

	assert.Equal(t, classifier.UserRequest, entries[0].Category)
	assert.Equal(t, classifier.Response, entries[1].Category)
	assert.Equal(t, classifier.Heartbeat, entries[2].Category)
	assert.Equal(t, classifier.Other, entries[3].Category)
	assert.Zero(t, entries[3].Timestamp)
	assert.Equal(t, float64(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).Unix()), entries[0].Timestamp)
}

func TestFilterEntries(t *testing.T) {
	entries := Collect(fixture(t), Options{})

	since := Collect(fixture(t), Options{Since: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)})
	require.Len(t, since, 1)
	assert.Equal(t, classifier.Heartbeat, since[0].Category)

	until := FilterEntries(entries, Options{Until: time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)})
	assert.Len(t, until, 2)

	assert.Len(t, FilterEntries(entries, Options{}), 4)
}

func TestByCategory(t *testing.T) {
	b := ByCategory(Collect(fixture(t), Options{Usage: usage.Options{DeriveMissingCost: true}}))

	require.Len(t, b.Categories, len(classifier.All))
	assert.Equal(t, int64(100), b.Categories[classifier.UserRequest].Tokens)
	assert.Equal(t, int64(50), b.Categories[classifier.Response].Tokens)
	assert.Equal(t, int64(15), b.Categories[classifier.Heartbeat].Tokens)
	assert.Equal(t, 1, b.Categories[classifier.Other].Count)
	assert.Zero(t, b.Categories[classifier.CronTask].Count)

	assert.InDelta(t, 0.75, b.UserCost(), 1e-12)
	assert.InDelta(t, 1.125, b.HiddenCost(), 1e-12)
	assert.InDelta(t, 0.05, b.CacheReadCost, 1e-12)
	assert.InDelta(t, 0.02, b.CacheWriteCost, 1e-12)
	assert.Len(t, b.Timestamps, 4)

	var sum float64
	for _, c := range classifier.All {
		sum += b.Cost(c)
	}
	assert.InDelta(t, sum, b.UserCost()+b.HiddenCost(), 1e-12)
}

func TestBySource(t *testing.T) {
	sources := BySource(Collect(fixture(t), Options{}))
	require.Len(t, sources, 3)

	assert.Equal(t, "c.jsonl", sources[0].File)
	assert.Equal(t, "unknown", sources[0].Model)

	assert.Equal(t, "a.jsonl", sources[1].File)
	assert.InDelta(t, 0.75, sources[1].Cost, 1e-12)
	assert.Equal(t, int64(150), sources[1].Tokens)
	assert.Equal(t, 2, sources[1].Messages)
	assert.Equal(t, "claude-sonnet-4-5", sources[1].Model)

	assert.Equal(t, "b.jsonl", sources[2].File)
	assert.Equal(t, 1, sources[2].Messages)

	assert.Len(t, Top(sources, 2), 2)
	assert.Len(t, Top(sources, 10), 3)
}

func TestBySourceTieBreaksOnFileName(t *testing.T) {
	msgs := []model.LogMessage{
		message(t, "z.jsonl", "", "user", "x", "", `{"input":1,"cost":{"total":0.5}}`),
		message(t, "m.jsonl", "", "user", "x", "", `{"input":1,"cost":{"total":0.5}}`),
	}
	sources := BySource(Collect(msgs, Options{}))
	require.Len(t, sources, 2)
	assert.Equal(t, "m.jsonl", sources[0].File)
	assert.Equal(t, "z.jsonl", sources[1].File)
}

func TestByDay(t *testing.T) {
	days := ByDay(Collect(fixture(t), Options{}))
	require.Len(t, days, 2)

	assert.Equal(t, "2025-03-01", days[0].Day)
	assert.InDelta(t, 0.75, days[0].Cost, 1e-12)
	assert.Equal(t, 2, days[0].Messages)

	assert.Equal(t, "2025-03-02", days[1].Day)
	assert.InDelta(t, 0.125, days[1].Cost, 1e-12)
}

func TestTotals(t *testing.T) {
	cost, tokens, messages := Totals(Collect(fixture(t), Options{}))
	assert.InDelta(t, 1.875, cost, 1e-12)
	assert.Equal(t, int64(169), tokens)
	assert.Equal(t, 4, messages)
}
