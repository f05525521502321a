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

	"github.com/selva-k-r/dbt-docgen/iox"
	"github.com/selva-k-r/dbt-docgen/types"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// DefaultBaseURL is the OpenAI API base.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultTimeout caps one generation call. The endpoint gives no progress
// signal, so an unbounded wait would stall a limiter slot indefinitely.
const DefaultTimeout = 60 * time.Second

// errorBodyLimit bounds how much of an error response body is carried
// into the failure diagnostic.
const errorBodyLimit = 512

// Client issues one generation request per model.
// Implementations never panic and never return errors: every outcome,
// including transport failures, is a GenerationResult.
type Client interface {
	Generate(ctx context.Context, record *types.ModelRecord) types.GenerationResult
}

// Config configures the OpenAI client.
type Config struct {
	// APIKey is the bearer token (required).
	APIKey string
	// Model is the chat model selector (default gpt-3.5-turbo).
	Model string
	// BaseURL is the API base URL (default https://api.openai.com/v1).
	BaseURL string
	// Timeout is the per-request timeout (default 60s).
	Timeout time.Duration
}

// OpenAIClient calls a chat-completions endpoint over HTTPS.
type OpenAIClient struct {
	config Config
	client *http.Client
}

// NewOpenAIClient creates a client from the given config.
// Returns an error if the API key is empty.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation client requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OpenAIClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// chatRequest is the chat-completions request payload.
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

// chatResponse is the subset of the response envelope this tool reads.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// StatusError is returned for non-2xx HTTP responses. It carries the
// status code and a bounded excerpt of the response body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Generate issues exactly one chat-completions call for the record.
// Non-success responses and transport errors both become Failure results.
func (c *OpenAIClient) Generate(ctx context.Context, record *types.ModelRecord) types.GenerationResult {
	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(record)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}

	text, err := c.complete(ctx, payload)
	if err != nil {
		return types.Failure(fmt.Sprintf("model %s: %v", record.Name, err))
	}
	return types.Success(text)
}

// complete performs the HTTP round trip and extracts the generated text.
func (c *OpenAIClient) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("malformed response body: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return "", errors.New("response carried no choices")
	}

	return envelope.Choices[0].Message.Content, nil
}
