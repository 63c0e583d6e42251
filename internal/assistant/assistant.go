// Package assistant answers free-text questions about agent spend.
//
// Answers come from a chat model primed with freshly computed reports. When
// the model is unavailable the same reports are summarized locally, so a
// question always gets an answer.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/config"
	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/report"
)

// ErrEmptyMessage is returned for blank questions
var ErrEmptyMessage = errors.New("no message provided")

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

const systemPrompt = `You are the Agent Cost Auditor, an assistant that analyzes the token usage and costs
of other AI agents.

Your job is to:
1. Show users exactly where their money is going when running AI agents
2. Find HIDDEN costs users don't know about (heartbeats, memory resyncs, reconnects, compactions)
3. Estimate costs BEFORE running tasks so users can make informed decisions
4. Recommend specific optimizations to reduce spending

The user's question is followed by JSON reports computed from their session logs.
Answer only from those numbers. Be direct, specific and quantitative. Always show dollar amounts.
Lead with the most impactful finding.`

// Intent is the report a question is mostly about
type Intent string

const (
	IntentHiddenCosts Intent = "hidden_costs"
	IntentOverview    Intent = "overview"
	IntentTimeline    Intent = "timeline"
	IntentEstimate    Intent = "estimate"
)

var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentEstimate, []string{"estimate", "how much would", "how much will", "cost of", "before running"}},
	{IntentTimeline, []string{"timeline", "when", "per day", "daily", "spike", "over time"}},
	{IntentOverview, []string{"overview", "session", "agent", "summary", "total"}},
}

// DetectIntent routes a question to the report it needs
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range intentRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return IntentHiddenCosts
}

// Usage is the model token usage of one reply
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Reply is the answer to one chat turn
type Reply struct {
	ID       string `json:"id"`
	Response string `json:"response"`
	Source   string `json:"source"`
	Intent   Intent `json:"intent"`
	Usage    Usage  `json:"usage"`
}

// Assistant is built once at startup and shared by all requests.
// It holds no per-request state.
type Assistant struct {
	analyzer *report.Analyzer
	llm      Completer
}

// New creates an Assistant. llm may be nil, in which case every reply is
// produced locally.
func New(analyzer *report.Analyzer, llm Completer) *Assistant {
	return &Assistant{analyzer: analyzer, llm: llm}
}

// Reply answers a question about agent spend
func (a *Assistant) Reply(ctx context.Context, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	intent := DetectIntent(message)
	facts, err := a.gather(intent, message)
	if err != nil {
		return nil, err
	}

	reply := &Reply{ID: uuid.NewString(), Intent: intent}

	if a.llm != nil {
		completion, err := a.llm.Complete(ctx, []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message + "\n\nReports:\n" + facts.JSON()},
		})
		if err == nil && strings.TrimSpace(completion.Content) != "" {
			reply.Response = completion.Content
			reply.Source = SourceLLM
			reply.Usage = Usage{
				InputTokens:  completion.Usage.PromptTokens,
				OutputTokens: completion.Usage.CompletionTokens,
			}
			return reply, nil
		}
		if err != nil && !errors.Is(err, ErrNotConfigured) {
			logger.Log.WithFields(logrus.Fields{
				"reply_id": reply.ID,
				"error":    err.Error(),
			}).Warn("Chat model failed, answering from local reports")
		}
	}

	reply.Response = Fallback(intent, facts)
	reply.Source = SourceFallback
	return reply, nil
}

// Facts are the reports gathered for one question
type Facts struct {
	HiddenCosts *report.HiddenCosts `json:"hidden_costs,omitempty"`
	Overview    *report.Overview    `json:"overview,omitempty"`
	Timeline    *report.Timeline    `json:"timeline,omitempty"`
	Estimate    *report.Estimate    `json:"estimate,omitempty"`
}

// JSON renders the facts for the model prompt
func (f Facts) JSON() string {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (a *Assistant) gather(intent Intent, message string) (Facts, error) {
	var f Facts
	var err error

	switch intent {
	case IntentEstimate:
		f.Estimate, err = a.analyzer.Estimate(message, report.DefaultEstimateModel)
	case IntentTimeline:
		f.Timeline, err = a.analyzer.Timeline()
	case IntentOverview:
		f.Overview, err = a.analyzer.Overview()
	}
	if err != nil {
		return f, err
	}

	// Hidden costs are context for every answer
	f.HiddenCosts, err = a.analyzer.HiddenCosts()
	return f, err
}

// FromConfig builds an Assistant backed by the configured chat provider.
// Without an API key every reply is produced locally.
func FromConfig(cfg config.LLMConfig, analyzer *report.Analyzer) *Assistant {
	if cfg.APIKey == "" {
		return New(analyzer, nil)
	}
	return New(analyzer, NewChatClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout))
}
