// Package llm is a minimal client for an OpenAI-style chat-completion API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/metrics"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Message is one conversation message in the chat-completion protocol.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries the parameters of a single completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Usage is the token accounting reported by the upstream API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Client)

// WithEndpoint overrides the upstream URL. Used by tests.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		// Backstop only; callers bound each request with a context deadline.
		http: &http.Client{Timeout: 60 * time.Second},
		log:  log.With().Str("component", "llm").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete issues one chat-completion call and returns the assistant text
// plus the upstream usage report. op labels the call for logs and metrics.
// There are no retries: a failed call is the caller's to degrade on.
func (c *Client) Complete(ctx context.Context, op string, req CompletionRequest) (string, Usage, error) {
	start := time.Now()
	text, usage, err := c.complete(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
		c.log.Warn().Str("op", op).Dur("duration", time.Since(start)).Err(err).Msg("completion failed")
	} else {
		c.log.Debug().Str("op", op).Dur("duration", time.Since(start)).
			Int("total_tokens", usage.TotalTokens).Msg("completion ok")
	}
	c.metrics.RecordLLMCall(op, status, time.Since(start))

	return text, usage, err
}

func (c *Client) complete(ctx context.Context, req CompletionRequest) (string, Usage, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", Usage{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", Usage{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, fmt.Errorf("openai: status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", Usage{}, fmt.Errorf("openai: unmarshal: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("openai: empty choices")
	}

	return chatResp.Choices[0].Message.Content, chatResp.Usage, nil
}
