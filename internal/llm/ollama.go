// Package llm is a minimal client for the Ollama REST API: chat and generate
// calls with raw request/response retention for debug payloads, model listing
// and pulling, transient-failure retry, and latency stats.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls a single Ollama instance.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Stats aggregates chat/generate latencies for the stats endpoint.
	Stats *Stats
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// BaseURL returns the configured Ollama endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Message is one turn of an Ollama chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result carries the extracted reply plus the raw wire payloads, which the
// API exposes verbatim in debug responses.
type Result struct {
	Model    string
	Reply    string
	Request  json.RawMessage
	Response json.RawMessage
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// Chat sends a conversation to /api/chat and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, options map[string]any) (*Result, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Options: options})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.call(ctx, model, "/api/chat", body)
}

// Generate sends a single prompt to /api/generate.
func (c *Client) Generate(ctx context.Context, model, prompt string, options map[string]any) (*Result, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Options: options})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.call(ctx, model, "/api/generate", body)
}

func (c *Client) call(ctx context.Context, model, path string, body []byte) (*Result, error) {
	start := time.Now()
	respBody, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	c.Stats.Record(time.Since(start).Milliseconds())

	reply, err := extractReply(respBody)
	if err != nil {
		return nil, err
	}
	return &Result{
		Model:    model,
		Reply:    reply,
		Request:  json.RawMessage(body),
		Response: respBody,
	}, nil
}

// extractReply pulls the assistant text out of a chat or generate response.
func extractReply(raw json.RawMessage) (string, error) {
	var envelope struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != "" {
		return "", fmt.Errorf("ollama error: %s", envelope.Error)
	}
	if envelope.Message != nil && envelope.Message.Content != "" {
		return strings.TrimSpace(envelope.Message.Content), nil
	}
	return strings.TrimSpace(envelope.Response), nil
}

// ListModels returns the names of locally available models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	respBody, err := c.get(ctx, "/api/tags")
	if err != nil {
		return nil, err
	}
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(respBody, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// HasModel checks whether a model is available locally.
func (c *Client) HasModel(ctx context.Context, model string) (bool, error) {
	names, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == model || strings.SplitN(name, ":", 2)[0] == model {
			return true, nil
		}
	}
	return false, nil
}

// EnsureModel pulls a model from the Ollama registry unless it is already
// present locally.
func (c *Client) EnsureModel(ctx context.Context, model string) error {
	ok, err := c.HasModel(ctx, model)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	body, err := json.Marshal(map[string]any{"name": model, "stream": false})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	if _, err := c.post(ctx, "/api/pull", body); err != nil {
		return fmt.Errorf("pull model %q: %w", model, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.doWithRetry(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doWithRetry(req, body)
}

// doWithRetry executes the request, retrying transient failures (transport
// errors, 429, 5xx) with backoff. The body is re-supplied on each attempt.
func (c *Client) doWithRetry(req *http.Request, body []byte) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(Backoff(attempt - 1)):
			}
			if body != nil {
				req.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		respBody, err := c.do(req)
		if err == nil {
			return respBody, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Message: fmt.Sprintf("ollama unreachable at %s: %v", c.baseURL, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return json.RawMessage(respBody), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
