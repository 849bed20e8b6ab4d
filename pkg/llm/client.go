// pkg/llm/client.go
package llm

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

	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when the model answers without content
var ErrEmptyCompletion = errors.New("empty completion")

// Suggester proposes a cleaned value for a flagged cell
type Suggester interface {
	Suggest(ctx context.Context, text string) (string, error)
}

// Config holds the settings of an OpenAI-compatible chat completions endpoint
type Config struct {
	BaseURL       string // e.g. https://api.groq.com/openai/v1
	APIKey        string
	Model         string
	Temperature   float64
	Timeout       time.Duration // Per attempt
	MaxInputChars int           // Longer cell text is truncated before sending
	RetryAttempts int           // Retries after the first attempt for transient failures
	RetryDelay    time.Duration
}

// StatusError is returned for non-200 responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether the request may succeed when retried
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Client calls a chat completions endpoint. It is safe for concurrent use.
type Client struct {
	url    string
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient creates a Client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("LLM base URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("LLM model cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger.Named("llm"),
	}, nil
}

// Suggest asks the model for a cleaned version of text
func (c *Client) Suggest(ctx context.Context, text string) (string, error) {
	prompt := BuildPrompt(Truncate(text, c.cfg.MaxInputChars))

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying completion",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		content, err := c.complete(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !isTransient(ctx, err) {
			break
		}
	}

	return "", fmt.Errorf("failed to get completion: %w", lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	choice := decoded.Choices[0]
	if choice.FinishReason == "length" {
		c.logger.Warn("Completion truncated by token limit")
	}

	content := cleanCompletion(choice.Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// isTransient reports whether err is worth retrying. Cancellation of the caller's
// context never is; a per-attempt timeout is.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return !errors.Is(err, ErrEmptyCompletion)
}
