package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/models"
)

// Classified provider failures. Handlers map these onto participant-facing
// messages instead of leaking raw provider errors into the chat pane.
var (
	ErrUnauthorized  = errors.New("llm: invalid API key")
	ErrRateLimited   = errors.New("llm: rate limited")
	ErrQuotaExceeded = errors.New("llm: quota exceeded")
)

// Options configures the chat completion client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client talks to an OpenAI-style chat completions endpoint.
type Client struct {
	opts Options
	http *http.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 512
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete forwards the transcript and returns the assistant's reply text.
func (c *Client) Complete(ctx context.Context, transcript []models.Message) (string, error) {
	req := chatRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	for _, m := range transcript {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.opts.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, parsed); err != nil {
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus maps provider failure modes onto the sentinel errors.
// Quota exhaustion arrives as a 429 with a distinct error code, so the body
// has to be consulted before the status.
func classifyStatus(status int, parsed chatResponse) error {
	if status == http.StatusOK {
		return nil
	}
	if parsed.Error != nil && parsed.Error.Code == "insufficient_quota" {
		return ErrQuotaExceeded
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if parsed.Error != nil {
		return fmt.Errorf("provider returned status %d: %s", status, parsed.Error.Message)
	}
	return fmt.Errorf("provider returned status %d", status)
}
