// Package llm defines the completion capability every pipeline stage talks to.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrTimeout is returned when a call exceeds its time budget.
	ErrTimeout = errors.New("llm: call timed out")
)

// Params are the sampling parameters of a completion call.
type Params struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// Common parameter sets.
var (
	// Structured is used by the stages that must return strict JSON.
	Structured = Params{Temperature: 0.2, TopK: 40, TopP: 0.95, MaxOutputTokens: 8192}
	// Planning is the near-deterministic set used for implementation plans.
	Planning = Params{Temperature: 0.1, TopK: 1, TopP: 0.7, MaxOutputTokens: 8192}
	// Creative is used for free-form prompt passthrough.
	Creative = Params{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048}
)

// CompletionService turns a prompt into text.
type CompletionService interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// Func adapts a plain function to CompletionService.
type Func func(ctx context.Context, prompt string, params Params) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	return f(ctx, prompt, params)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

type timeoutService struct {
	next    CompletionService
	timeout time.Duration
}

// WithTimeout bounds every call to svc by d. A call that runs out of time
// fails with an error wrapping both ErrTimeout and context.DeadlineExceeded.
// A non-positive d returns svc unchanged.
func WithTimeout(svc CompletionService, d time.Duration) CompletionService {
	if d <= 0 {
		return svc
	}
	return &timeoutService{next: svc, timeout: d}
}

func (s *timeoutService) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.next.Generate(ctx, prompt, params)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", ErrTimeout, s.timeout, context.DeadlineExceeded)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
