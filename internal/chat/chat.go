package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	roleSystem    = "system"

	// MaxHistory is how many prior messages are forwarded to the model.
	MaxHistory = 20

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

var (
	ErrNotConfigured = errors.New("chat: ai provider is not configured")
	ErrEmptyMessage  = errors.New("chat: message is required")
	ErrUpstream      = errors.New("chat: ai provider error")
)

// Message is one turn of a conversation. It is never stored server side.
type Message struct {
	Role    string `json:"role" validate:"omitempty,oneof=user assistant system"`
	Content string `json:"content" validate:"max=4000"`
}

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
}

type Client struct {
	cfg    Config
	http   *resty.Client
	logger *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	h := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{cfg: cfg, http: h, logger: logger}
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Reply sends the system prompt, the tail of history and message to the model and
// returns the assistant's answer.
func (c *Client) Reply(ctx context.Context, message string, history []Message) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	var result completionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.APIKey).
		SetBody(completionRequest{Model: c.cfg.Model, Messages: c.buildMessages(message, history)}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		c.logger.Warnw("ai provider returned error", "status", resp.StatusCode(), "body", truncate(resp.String(), 500))
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Client) buildMessages(message string, history []Message) []Message {
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	out := make([]Message, 0, len(history)+2)
	if c.cfg.SystemPrompt != "" {
		out = append(out, Message{Role: roleSystem, Content: c.cfg.SystemPrompt})
	}
	for _, m := range history {
		// only user and assistant turns are forwarded; a client cannot inject a system prompt
		if (m.Role != RoleUser && m.Role != RoleAssistant) || strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return append(out, Message{Role: RoleUser, Content: message})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
