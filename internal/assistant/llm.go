package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/logger"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("llm provider not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type ResponseUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *ResponseUsage `json:"usage,omitempty"`
}

// Completion is a finished model answer
type Completion struct {
	Content string
	Usage   ResponseUsage
}

// Completer sends a conversation to a model and returns its answer
type Completer interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

// ChatClient talks to an OpenAI-compatible chat-completions endpoint
type ChatClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewChatClient creates a client for baseURL (e.g. https://openrouter.ai/api/v1)
func NewChatClient(apiKey, baseURL, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  4096,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete sends a chat request and returns the first choice
func (c *ChatClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         c.model,
		"message_count": len(messages),
	}).Info("Calling chat completions API")

	reqBody := ChatRequest{
		Model:     c.model,
		Messages:  messages,
		Stream:    false,
		MaxTokens: c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Title", "Budget Agent")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	out := &Completion{Content: chatResp.Choices[0].Message.Content}
	if chatResp.Usage != nil {
		out.Usage = *chatResp.Usage
	}
	return out, nil
}
