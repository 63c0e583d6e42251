package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func line(ts, role, content, usage string) string {
	return fmt.Sprintf(`{"type":"message","timestamp":%q,"message":{"role":%q,"content":%q,"model":"claude-sonnet-4-5","usage":%s}}`,
		ts, role, content, usage)
}

func TestHiddenCostsScenario(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "session.jsonl",
		line("2025-03-01T10:00:00Z", "user", "Plan my trip to Madrid", `{"input":100,"output":0}`),
		line("2025-03-01T10:00:10Z", "assistant", "Here is your plan.", `{"input":0,"output":50}`),
		line("2025-03-01T11:00:00Z", "user", "HEARTBEAT_OK", `{"input":10,"output":5}`),
	)

	h, err := NewAnalyzer(dir).HiddenCosts()
	require.NoError(t, err)

	require.Contains(t, h.CostBreakdown, "user_request")
	require.Contains(t, h.CostBreakdown, "response")
	require.Contains(t, h.CostBreakdown, "heartbeat")
	assert.Len(t, h.CostBreakdown, 3)

	assert.Equal(t, int64(100), h.CostBreakdown["user_request"].Tokens)
	assert.Equal(t, int64(50), h.CostBreakdown["response"].Tokens)
	assert.Equal(t, int64(15), h.CostBreakdown["heartbeat"].Tokens)

	assert.Equal(t, h.CostBreakdown["heartbeat"].CostUSD, h.Summary.HiddenCost)
	assert.Greater(t, h.Summary.HiddenCost, 0.0)
	assert.InDelta(t, h.Summary.TotalCost, h.Summary.UserInitiatedCost+h.Summary.HiddenCost, 2e-4)

	// all on one day
	assert.Equal(t, 1.0, h.Summary.ActiveDaysAnalyzed)

	require.Len(t, h.Recommendations, 1)
	assert.Equal(t, "heartbeat", h.Recommendations[0].Category)
	assert.Equal(t, 80.0, h.Recommendations[0].SavingsPct)

	rows := h.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "heartbeat", rows[0].Name)
	assert.Equal(t, "user_request", rows[1].Name)
	assert.Equal(t, "response", rows[2].Name)
}

func TestEmptyDataDir(t *testing.T) {
	for name, dir := range map[string]string{
		"empty":   t.TempDir(),
		"missing": filepath.Join(t.TempDir(), "does-not-exist"),
	} {
		t.Run(name, func(t *testing.T) {
			a := NewAnalyzer(dir)

			h, err := a.HiddenCosts()
			require.NoError(t, err)
			assert.Zero(t, h.Summary.TotalCost)
			assert.Zero(t, h.Summary.WastePercentage)
			assert.NotNil(t, h.Recommendations)
			assert.Empty(t, h.Recommendations)
			assert.Empty(t, h.CostBreakdown)
			assert.Equal(t, 14.0, h.Summary.ActiveDaysAnalyzed)

			o, err := a.Overview()
			require.NoError(t, err)
			assert.Zero(t, o.TotalSessions)
			assert.Zero(t, o.TotalCostUSD)
			assert.Zero(t, o.TotalJSONLFiles)
			assert.NotNil(t, o.Sessions)
			assert.NotNil(t, o.TopSpendingSessions)

			tl, err := a.Timeline()
			require.NoError(t, err)
			assert.Zero(t, tl.TotalEntries)
			assert.Equal(t, "unknown", tl.MostExpensiveDay.Date)
			assert.Zero(t, tl.TotalDays)
		})
	}
}

func TestOverviewMatchesHiddenCosts(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "main.jsonl",
		line("2025-03-01T10:00:00Z", "user", "Draft a reply to Ana", `{"input":1200,"output":0,"cost":{"total":0.5}}`),
		line("2025-03-01T10:00:30Z", "assistant", "Draft ready", `{"input":0,"output":800,"cost":{"total":0.25}}`),
		line("2025-03-03T09:00:00Z", "assistant", "Checking email via himalaya", `{"input":300,"output":20,"cost":{"total":0.125}}`),
		`{"type":"message","message":{"role":"assistant","content":"no usage"}}`,
		`{broken`,
	)
	writeLog(t, dir, "cron.jsonl",
		line("2025-03-02T06:00:00Z", "user", "[cron] nightly digest", `{"input":50,"output":50,"cost":{"total":0.0625}}`),
	)
	writeLog(t, dir, "sessions.json", `{"agent:main:main":{"model":"claude-sonnet-4-5","deliveryContext":{"channel":"whatsapp"},"compactionCount":2},"agent:main:cron:daily":{}}`)

	a := NewAnalyzer(dir)
	o, err := a.Overview()
	require.NoError(t, err)
	h, err := a.HiddenCosts()
	require.NoError(t, err)

	assert.Equal(t, h.Summary.TotalCost, o.TotalCostUSD)
	assert.Equal(t, 0.9375, o.TotalCostUSD)
	assert.Equal(t, 4, o.TotalMessages)
	assert.Equal(t, 2, o.TotalJSONLFiles)

	var perSource float64
	for _, s := range o.TopSpendingSessions {
		perSource += s.CostUSD
	}
	assert.Equal(t, h.Summary.TotalCost, perSource)

	require.Len(t, o.TopSpendingSessions, 2)
	assert.Equal(t, "main.jsonl", o.TopSpendingSessions[0].File)
	assert.Equal(t, 3, o.TopSpendingSessions[0].Messages)

	require.Len(t, o.Sessions, 2)
	assert.Equal(t, 2, o.TotalSessions)
	assert.Equal(t, "agent:main:cron:daily", o.Sessions[0].SessionKey)
	assert.Equal(t, "cron", o.Sessions[0].Type)
	assert.Equal(t, "unknown", o.Sessions[0].Channel)
	assert.Equal(t, "main", o.Sessions[1].Agent)
	assert.Equal(t, "main", o.Sessions[1].Type)
	assert.Equal(t, "whatsapp", o.Sessions[1].Channel)
	assert.Equal(t, int64(2), o.Sessions[1].CompactionCount)

	// span is two days
	assert.Equal(t, 2.0, h.Summary.ActiveDaysAnalyzed)
	assert.Equal(t, 0.75, h.Summary.UserInitiatedCost)
	assert.Equal(t, 0.1875, h.Summary.HiddenCost)
	assert.Equal(t, 20.0, h.Summary.WastePercentage)
}

func TestAnalyzerDateFilter(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "main.jsonl",
		line("2025-03-01T10:00:00Z", "user", "first", `{"input":1,"cost":{"total":1}}`),
		line("2025-03-05T10:00:00Z", "user", "second", `{"input":1,"cost":{"total":2}}`),
	)

	a := NewAnalyzer(dir)
	a.Since = mustDate(t, "2025-03-02")

	tl, err := a.Timeline()
	require.NoError(t, err)
	assert.Equal(t, 1, tl.TotalEntries)
	assert.Equal(t, 2.0, tl.TotalCost)
}

func TestHiddenCostsToleratesOddInput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs[2025]")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeLog(t, dir, "a.jsonl",
		line("2025-03-01T10:00:00Z", "user", "first", `{"input":100,"cost":{"total":0.5}}`),
		line("2025-03-01T11:00:00Z", "user", "second", `{"input":100.0,"cost":{"total":0.5}}`),
	)
	writeLog(t, dir, "sessions.json", `{"agent:main:main":{"totalTokens":1200.0}}`)

	a := NewAnalyzer(dir)
	h, err := a.HiddenCosts()
	require.NoError(t, err)
	assert.Equal(t, 1.0, h.Summary.TotalCost)
	assert.Equal(t, 2, h.CostBreakdown["user_request"].Count)

	o, err := a.Overview()
	require.NoError(t, err)
	assert.Equal(t, 1, o.TotalSessions)
	assert.Equal(t, 1.0, o.TotalCostUSD)
}
