package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 15 * time.Second

// Advisor asks the model for waste handling recommendations and answers
// waste-topic questions.
type Advisor struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// NewAdvisor wraps gen. A non-positive timeout selects DefaultTimeout.
func NewAdvisor(gen Generator, timeout time.Duration, log zerolog.Logger) *Advisor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Advisor{
		gen:     gen,
		timeout: timeout,
		log:     log.With().Str("component", "advisor").Logger(),
	}
}

// Recommend returns handling tips for wasteType (a sub-category label).
func (a *Advisor) Recommend(ctx context.Context, wasteType string) (string, error) {
	text, err := a.generate(ctx, RecommendationPrompt(wasteType))
	if err != nil {
		return "", fmt.Errorf("recommendation for %q: %w", wasteType, err)
	}
	return text, nil
}

// Answer returns the model's answer to a user question. The model itself
// refuses questions outside waste management.
func (a *Advisor) Answer(ctx context.Context, question string) (string, error) {
	clean, injected := SanitizeQuestion(question)
	if injected {
		a.log.Warn().Msg("🛡️ prompt override attempt in question")
	}
	if clean == "" {
		return OffTopicAnswer, nil
	}

	text, err := a.generate(ctx, QuestionPrompt(clean))
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return text, nil
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.gen.Generate(ctx, prompt)
	a.log.Debug().Dur("took", time.Since(start)).Err(err).Msg("generation finished")
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
