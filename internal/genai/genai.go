// Package genai produces free text from a generative language model, either
// over Gemini's OpenAI-compatible API or by driving the Gemini web UI.
package genai

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredential is returned when the service rejects the API key.
	ErrInvalidCredential = errors.New("genai: invalid credential")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("genai: empty response")
)

// Generator turns one self-contained prompt into text. Implementations keep
// no conversation state between calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
