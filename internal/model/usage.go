package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LogMessage represents a single "message" record from an agent session log
type LogMessage struct {
	Type       string          `json:"type"`
	Timestamp  json.RawMessage `json:"timestamp,omitempty"`
	Message    MessageBody     `json:"message"`
	SourceFile string          `json:"-"`
}

// MessageBody is the "message" sub-object of a log record
type MessageBody struct {
	Role    string    `json:"role"`
	Content Content   `json:"content"`
	Model   string    `json:"model"`
	Usage   *RawUsage `json:"usage,omitempty"`
}

// Role returns the message role
func (m LogMessage) Role() string {
	return m.Message.Role
}

// Model returns the model identifier, or "" when the record has none
func (m LogMessage) Model() string {
	return m.Message.Model
}

// RawUsage is the usage block as written by the agent runtime
type RawUsage struct {
	Input       int64    `json:"input"`
	Output      int64    `json:"output"`
	CacheRead   int64    `json:"cacheRead"`
	CacheWrite  int64    `json:"cacheWrite"`
	TotalTokens int64    `json:"totalTokens"`
	Cost        *RawCost `json:"cost,omitempty"`

	// Empty is set when the usage block was present but had no keys
	Empty bool `json:"-"`
}

// Count is a token count that also accepts float encodings such as 100.0.
// Fractions are truncated.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == "" {
		return nil
	}
	if i, err := n.Int64(); err == nil {
		*c = Count(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*c = Count(int64(f))
	return nil
}

// UnmarshalJSON records whether the usage object carried any fields at all
func (u *RawUsage) UnmarshalJSON(data []byte) error {
	var w struct {
		Input       Count    `json:"input"`
		Output      Count    `json:"output"`
		CacheRead   Count    `json:"cacheRead"`
		CacheWrite  Count    `json:"cacheWrite"`
		TotalTokens Count    `json:"totalTokens"`
		Cost        *RawCost `json:"cost,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*u = RawUsage{
		Input:       int64(w.Input),
		Output:      int64(w.Output),
		CacheRead:   int64(w.CacheRead),
		CacheWrite:  int64(w.CacheWrite),
		TotalTokens: int64(w.TotalTokens),
		Cost:        w.Cost,
		Empty:       len(keys) == 0,
	}
	return nil
}

// RawCost is the precomputed cost breakdown some runtimes attach to usage
type RawCost struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	CacheRead  float64 `json:"cacheRead"`
	CacheWrite float64 `json:"cacheWrite"`
	Total      float64 `json:"total"`
}

// ContentKind distinguishes the two shapes message content can take
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentPlainText
	ContentBlocks
)

// Content is either a plain string or a sequence of typed content blocks
type Content struct {
	Kind   ContentKind
	Text   string
	Blocks []ContentBlock
}

// ContentBlock is one element of a structured content sequence.
// A bare string inside the sequence is stored with Type "text".
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

// UnmarshalJSON accepts a string, an array of blocks/strings, or null
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Content{Kind: ContentPlainText, Text: s}
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		blocks := make([]ContentBlock, 0, len(items))
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			if item[0] == '"' {
				var s string
				if err := json.Unmarshal(item, &s); err == nil {
					blocks = append(blocks, ContentBlock{Type: "text", Text: s})
				}
				continue
			}
			var b ContentBlock
			if err := json.Unmarshal(item, &b); err != nil {
				// tool_use / image blocks etc. carry no text
				continue
			}
			blocks = append(blocks, b)
		}
		*c = Content{Kind: ContentBlocks, Blocks: blocks}
		return nil
	}

	// Numbers, objects, booleans: no text to classify
	*c = Content{}
	return nil
}

// Flatten returns the text-bearing parts of the content joined by spaces.
// Only text and thinking blocks contribute.
func (c Content) Flatten() string {
	switch c.Kind {
	case ContentPlainText:
		return c.Text
	case ContentBlocks:
		var sb strings.Builder
		for _, b := range c.Blocks {
			switch b.Type {
			case "text":
				sb.WriteString(b.Text)
				sb.WriteByte(' ')
			case "thinking":
				sb.WriteString(b.Thinking)
				sb.WriteByte(' ')
			}
		}
		return sb.String()
	}
	return ""
}

// TokenUsage contains token counts per kind
type TokenUsage struct {
	InputTokens      int64 `json:"input"`
	OutputTokens     int64 `json:"output"`
	CacheReadTokens  int64 `json:"cache_read"`
	CacheWriteTokens int64 `json:"cache_write"`
}

// CostBreakdown holds USD cost per token kind plus the total
type CostBreakdown struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	CacheRead  float64 `json:"cache_read"`
	CacheWrite float64 `json:"cache_write"`
	Total      float64 `json:"total"`
}

// UsageRecord is the normalized usage extracted from one LogMessage
type UsageRecord struct {
	Tokens      TokenUsage
	TotalTokens int64
	Cost        CostBreakdown
	// CostDerived is set when Cost was computed from the pricing table
	// instead of being read from the log.
	CostDerived bool
}

// ModelPricing contains pricing info for a model (USD per 1,000,000 tokens)
type ModelPricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CacheReadPerMillion  float64
	CacheWritePerMillion float64
}

// SessionMeta is one entry of the sessions index file
type SessionMeta struct {
	Model             string          `json:"model"`
	SessionCount      int64           `json:"sessionCount"`
	TotalTokens       int64           `json:"totalTokens"`
	TotalInputTokens  int64           `json:"totalInputTokens"`
	TotalOutputTokens int64           `json:"totalOutputTokens"`
	TotalCacheRead    int64           `json:"totalCacheRead"`
	LastActive        json.RawMessage `json:"lastActive,omitempty"`
	DeliveryContext   struct {
		Channel string `json:"channel"`
	} `json:"deliveryContext"`
	CompactionCount int64 `json:"compactionCount"`
}

// UnmarshalJSON decodes the counters with the same tolerance as usage blocks
func (m *SessionMeta) UnmarshalJSON(data []byte) error {
	var w struct {
		Model             string          `json:"model"`
		SessionCount      Count           `json:"sessionCount"`
		TotalTokens       Count           `json:"totalTokens"`
		TotalInputTokens  Count           `json:"totalInputTokens"`
		TotalOutputTokens Count           `json:"totalOutputTokens"`
		TotalCacheRead    Count           `json:"totalCacheRead"`
		LastActive        json.RawMessage `json:"lastActive,omitempty"`
		DeliveryContext   struct {
			Channel string `json:"channel"`
		} `json:"deliveryContext"`
		CompactionCount Count `json:"compactionCount"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = SessionMeta{
		Model:             w.Model,
		SessionCount:      int64(w.SessionCount),
		TotalTokens:       int64(w.TotalTokens),
		TotalInputTokens:  int64(w.TotalInputTokens),
		TotalOutputTokens: int64(w.TotalOutputTokens),
		TotalCacheRead:    int64(w.TotalCacheRead),
		LastActive:        w.LastActive,
		CompactionCount:   int64(w.CompactionCount),
	}
	m.DeliveryContext.Channel = w.DeliveryContext.Channel
	return nil
}
