// Package engines holds the prompt-driven stages of the proposal pipeline.
//
// Every stage builds a prompt, asks the completion service, parses the
// answer and normalizes it. Apart from strategy generation and
// implementation planning, a stage never fails on bad model output: it logs
// the problem and returns a documented fallback value. The only error the
// fallback stages return is the cancellation of their context.
package engines

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/llm"
)

// DefaultValidationTarget is the average validation score below which a
// batch asks for refinement.
const DefaultValidationTarget = 80

// Engine runs the pipeline stages against one completion service.
type Engine struct {
	llm              llm.CompletionService
	logger           *zap.Logger
	validationTarget float64
}

// Option customizes an Engine.
type Option func(*Engine)

// WithValidationTarget overrides DefaultValidationTarget.
func WithValidationTarget(target float64) Option {
	return func(e *Engine) { e.validationTarget = target }
}

// New creates an Engine.
func New(svc llm.CompletionService, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		llm:              svc,
		logger:           logger,
		validationTarget: DefaultValidationTarget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// complete sends prompt and logs the exchange at debug level.
func (e *Engine) complete(ctx context.Context, stage, prompt string, params llm.Params) (string, error) {
	start := time.Now()
	text, err := e.llm.Generate(ctx, prompt, params)
	if err != nil {
		e.logger.Warn("completion failed", zap.String("stage", stage), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}
	e.logger.Debug("completion received",
		zap.String("stage", stage),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("response", text),
	)
	return text, nil
}

// fallback logs why a stage substitutes its default value. It returns the
// context error when the failure was a cancellation, so callers can stop.
func (e *Engine) fallback(ctx context.Context, stage string, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.logger.Warn("using fallback", zap.String("stage", stage), zap.Error(cause))
	return nil
}

// indent renders v as indented JSON for embedding in a prompt.
func indent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
