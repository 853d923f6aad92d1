package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
)

// OpenAI generates text through any OpenAI-compatible chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAI generator.
type OpenAIOption func(*openai.ClientConfig, *OpenAI)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAI) {
		if baseURL != "" {
			cfg.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) OpenAIOption {
	return func(_ *openai.ClientConfig, g *OpenAI) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAI) {
		cfg.HTTPClient = hc
	}
}

// NewOpenAI returns a generator authenticated with apiKey.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is empty", ErrInvalidCredential)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(DefaultBaseURL, "/")
	g := &OpenAI{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg, g)
	}
	g.client = openai.NewClientWithConfig(cfg)
	return g, nil
}

// Model returns the configured model name.
func (g *OpenAI) Model() string {
	return g.model
}

// Generate sends prompt as a single user message.
func (g *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// classifyError maps authentication failures onto ErrInvalidCredential and
// wraps everything else.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if credentialRejected(apiErr.HTTPStatusCode, apiErr.Message) {
			return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
		}
		return fmt.Errorf("generate (status %d): %w", apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if credentialRejected(reqErr.HTTPStatusCode, string(reqErr.Body)) {
			return fmt.Errorf("%w: status %d", ErrInvalidCredential, reqErr.HTTPStatusCode)
		}
		return fmt.Errorf("generate (status %d): %w", reqErr.HTTPStatusCode, err)
	}

	return fmt.Errorf("generate: %w", err)
}

func credentialRejected(status int, message string) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		msg := strings.ToLower(message)
		return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key")
	}
	return false
}
