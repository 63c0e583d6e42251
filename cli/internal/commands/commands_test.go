package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/assistant"
	"github.com/ritchiero/Budget-Agent/internal/auth"
	"github.com/ritchiero/Budget-Agent/internal/config"
	"github.com/ritchiero/Budget-Agent/internal/report"
)

const testLog = `{"type":"message","timestamp":"2025-03-01T10:00:00Z","message":{"role":"user","content":"Plan my week","model":"claude-sonnet-4-5","usage":{"input":1000,"output":0}}}
{"type":"message","timestamp":"2025-03-02T10:00:00Z","message":{"role":"user","content":"HEARTBEAT_OK","model":"claude-sonnet-4-5","usage":{"input":2000,"output":100}}}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts := &options{
		out:        &out,
		loadConfig: func() (*config.Config, error) { return config.Default(), nil },
	}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func logDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.jsonl"), []byte(testLog), 0644))
	return dir
}

func TestHiddenCostsJSON(t *testing.T) {
	out, err := run(t, "hidden-costs", "--json", "--data-dir", logDir(t))
	require.NoError(t, err)

	var h report.HiddenCosts
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Contains(t, h.CostBreakdown, "heartbeat")
	assert.Contains(t, h.CostBreakdown, "user_request")
	assert.Greater(t, h.Summary.HiddenCost, 0.0)
}

func TestReportCommandsTable(t *testing.T) {
	dir := logDir(t)

	out, err := run(t, "hidden", "--compact", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendations:")

	out, err = run(t, "overview", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "main.jsonl")

	out, err = run(t, "timeline", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03-02")

	out, err = run(t, "estimate", "research", "competitors", "-m", "claude-opus-4-5", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Task:        research competitors")
	assert.Contains(t, out, "Model:       claude-opus-4-5")
}

func TestDateFilters(t *testing.T) {
	dir := logDir(t)

	out, err := run(t, "timeline", "--json", "--data-dir", dir, "--since", "20250302", "--until", "20250302")
	require.NoError(t, err)
	var tl report.Timeline
	require.NoError(t, json.Unmarshal([]byte(out), &tl))
	assert.Equal(t, 1, tl.TotalEntries)
	assert.Equal(t, "2025-03-02", tl.MostExpensiveDay.Date)

	_, err = run(t, "timeline", "--data-dir", dir, "--since", "2025-03-02")
	assert.EqualError(t, err, "invalid --since date format, use YYYYMMDD")

	_, err = run(t, "timeline", "--data-dir", dir, "--until", "March")
	assert.EqualError(t, err, "invalid --until date format, use YYYYMMDD")

	_, err = run(t, "overview", "--remote", "http://127.0.0.1:1", "--since", "20250301")
	assert.EqualError(t, err, "--since and --until are not supported with --remote")
}

func TestEstimateRequiresTask(t *testing.T) {
	_, err := run(t, "estimate")
	assert.Error(t, err)
}

func TestConfigErrorIsWrapped(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(&options{
		out:        &out,
		loadConfig: func() (*config.Config, error) { return nil, errors.New("bad yaml") },
	})
	cmd.SetArgs([]string{"overview"})
	cmd.SetErr(io.Discard)
	assert.EqualError(t, cmd.Execute(), "error loading config: bad yaml")
}

func TestHashKey(t *testing.T) {
	out, err := run(t, "hash-key", "ba_mine")
	require.NoError(t, err)
	assert.NotContains(t, out, "API key:")
	require.Contains(t, out, "Hash:    ")

	hash := out[len("Hash:    ") : len(out)-1]
	assert.True(t, auth.CheckKey("ba_mine", hash))
}

func TestHashKeyGenerateAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget-agent.yaml")
	t.Setenv("BUDGET_AGENT_CONFIG", path)
	t.Setenv("OPENROUTER_API_KEY", "sk-should-not-be-saved")

	out, err := run(t, "hash-key", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "API key: "+auth.KeyPrefix)
	assert.Contains(t, out, "Saved to "+path)

	cfg, err := config.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.APIKeyHash)
	assert.Empty(t, cfg.LLM.APIKey)
}

type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) ReadInput(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type fakeResponder struct {
	asked []string
}

func (f *fakeResponder) Reply(_ context.Context, message string) (*assistant.Reply, error) {
	f.asked = append(f.asked, message)
	if message == "break" {
		return nil, errors.New("provider exploded")
	}
	return &assistant.Reply{Response: "answer to " + message, Source: assistant.SourceFallback}, nil
}

func TestRunChat(t *testing.T) {
	t.Run("exit word", func(t *testing.T) {
		r := &fakeResponder{}
		var out bytes.Buffer
		in := &scriptedInput{lines: []string{"  ", "where does it go", "break", "QUIT", "never asked"}}

		require.NoError(t, runChat(context.Background(), r, in, &out))
		assert.Equal(t, []string{"where does it go", "break"}, r.asked)
		assert.Contains(t, out.String(), "answer to where does it go")
		assert.Contains(t, out.String(), "(answered from local reports)")
		assert.Contains(t, out.String(), "provider exploded")
	})

	t.Run("end of input", func(t *testing.T) {
		r := &fakeResponder{}
		require.NoError(t, runChat(context.Background(), r, &scriptedInput{lines: []string{"hi"}}, io.Discard))
		assert.Equal(t, []string{"hi"}, r.asked)
	})

	t.Run("read error", func(t *testing.T) {
		err := runChat(context.Background(), &fakeResponder{}, failingInput{}, io.Discard)
		assert.EqualError(t, err, "terminal gone")
	})
}

type failingInput struct{}

func (failingInput) ReadInput(string) (string, error) { return "", errors.New("terminal gone") }

func TestIsExit(t *testing.T) {
	for _, w := range []string{"q", "Quit", "EXIT"} {
		assert.True(t, isExit(w), w)
	}
	assert.False(t, isExit("quitting"))
}
