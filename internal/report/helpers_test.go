package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/classifier"
	"github.com/ritchiero/Budget-Agent/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// entry builds an aggregated entry directly, bypassing the loader
func entry(cat classifier.Category, role string, ts float64, cost float64, tokens model.TokenUsage) aggregator.Entry {
	var msg model.LogMessage
	msg.Type = "message"
	msg.Message.Role = role
	msg.Message.Model = "claude-sonnet-4-5"
	msg.SourceFile = "s.jsonl"
	return aggregator.Entry{
		Message:  msg,
		Category: cat,
		Usage: model.UsageRecord{
			Tokens:      tokens,
			TotalTokens: tokens.InputTokens + tokens.OutputTokens,
			Cost:        model.CostBreakdown{Total: cost},
		},
		Timestamp: ts,
	}
}
