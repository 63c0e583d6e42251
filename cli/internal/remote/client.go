package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ritchiero/Budget-Agent/internal/assistant"
	"github.com/ritchiero/Budget-Agent/internal/report"
)

// Client reads reports from a running budget-agent-server
type Client struct {
	server     string
	apiKey     string
	httpClient *http.Client
}

// ErrorResponse is the body of a failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new remote client
func NewClient(server, apiKey string) *Client {
	return &Client{
		server: strings.TrimRight(server, "/"),
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Overview fetches /api/overview
func (c *Client) Overview() (*report.Overview, error) {
	return fetch[report.Overview](c, "/api/overview")
}

// HiddenCosts fetches /api/hidden-costs
func (c *Client) HiddenCosts() (*report.HiddenCosts, error) {
	return fetch[report.HiddenCosts](c, "/api/hidden-costs")
}

// Timeline fetches /api/timeline
func (c *Client) Timeline() (*report.Timeline, error) {
	return fetch[report.Timeline](c, "/api/timeline")
}

// Estimate fetches /api/estimate for a task
func (c *Client) Estimate(task, model string) (*report.Estimate, error) {
	q := url.Values{}
	q.Set("task", task)
	if model != "" {
		q.Set("model", model)
	}
	return fetch[report.Estimate](c, "/api/estimate?"+q.Encode())
}

// Reply posts a chat message to /api/chat
func (c *Client) Reply(ctx context.Context, message string) (*assistant.Reply, error) {
	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out assistant.Reply
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func fetch[T any](c *Client, path string) (*T, error) {
	var out T
	if err := c.get(context.Background(), path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
