package report

import (
	"sort"
	"strings"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/model"
)

// SessionInfo describes one entry of the session index
type SessionInfo struct {
	SessionKey      string `json:"session_key"`
	Agent           string `json:"agent"`
	Type            string `json:"type"`
	Channel         string `json:"channel"`
	CompactionCount int64  `json:"compaction_count"`
	Model           string `json:"model,omitempty"`
}

// SourceCost is the spend attributed to one log file
type SourceCost struct {
	File     string  `json:"file"`
	CostUSD  float64 `json:"cost_usd"`
	Tokens   int64   `json:"tokens"`
	Messages int     `json:"messages"`
	Model    string  `json:"model"`
}

// Overview is the overview document
type Overview struct {
	Sessions            []SessionInfo `json:"sessions"`
	TotalSessions       int           `json:"total_sessions"`
	TotalCostUSD        float64       `json:"total_cost_usd"`
	TotalTokens         int64         `json:"total_tokens"`
	TotalMessages       int           `json:"total_messages"`
	TotalJSONLFiles     int           `json:"total_jsonl_files"`
	TopSpendingSessions []SourceCost  `json:"top_spending_sessions"`
}

// BuildOverview combines the session index with per-file spend
func BuildOverview(sessions map[string]model.SessionMeta, entries []aggregator.Entry) *Overview {
	keys := make([]string, 0, len(sessions))
	for k := range sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	infos := make([]SessionInfo, 0, len(keys))
	for _, key := range keys {
		meta := sessions[key]
		infos = append(infos, SessionInfo{
			SessionKey:      key,
			Agent:           agentName(key),
			Type:            sessionType(key),
			Channel:         orDefault(meta.DeliveryContext.Channel, "unknown"),
			CompactionCount: meta.CompactionCount,
			Model:           meta.Model,
		})
	}

	sources := aggregator.BySource(entries)
	cost, tokens, messages := aggregator.Totals(entries)

	top := make([]SourceCost, 0, aggregator.TopSources)
	for _, s := range aggregator.Top(sources, aggregator.TopSources) {
		top = append(top, SourceCost{
			File:     s.File,
			CostUSD:  round(s.Cost, 4),
			Tokens:   s.Tokens,
			Messages: s.Messages,
			Model:    s.Model,
		})
	}

	return &Overview{
		Sessions:            infos,
		TotalSessions:       len(sessions),
		TotalCostUSD:        round(cost, 4),
		TotalTokens:         tokens,
		TotalMessages:       messages,
		TotalJSONLFiles:     len(sources),
		TopSpendingSessions: top,
	}
}

// agentName is the second segment of keys like "agent:main:cron:daily"
func agentName(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) > 1 {
		return parts[1]
	}
	return key
}

func sessionType(key string) string {
	if strings.Contains(key, "cron") {
		return "cron"
	}
	return "main"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
