package engines

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
)

// route answers a prompt with the response of the first marker it contains.
type route struct {
	marker   string
	response string
	err      error
}

type scriptedLLM struct {
	mu      sync.Mutex
	routes  []route
	prompts []string
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string, _ llm.Params) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	for _, r := range s.routes {
		if strings.Contains(prompt, r.marker) {
			return r.response, r.err
		}
	}
	return "", errors.New("no scripted response")
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func newScripted(routes ...route) *scriptedLLM {
	return &scriptedLLM{routes: routes}
}

func newTestEngine(t *testing.T, svc llm.CompletionService) *Engine {
	t.Helper()
	return New(svc, zap.NewNop())
}

func constant(text string) llm.CompletionService {
	return llm.Func(func(context.Context, string, llm.Params) (string, error) {
		return text, nil
	})
}

func failing(err error) llm.CompletionService {
	return llm.Func(func(context.Context, string, llm.Params) (string, error) {
		return "", err
	})
}

func validated(id, title, description string, category models.Category, score float64) models.ValidatedStrategy {
	return models.NewValidatedStrategy(models.Strategy{
		ID:          id,
		Title:       title,
		Description: description,
		Impact:      models.LevelHigh,
		Complexity:  models.LevelMedium,
		Timeframe:   models.ShortTerm,
		Category:    category,
	}, models.ValidationCriteria{}, score, false, nil, nil)
}

func twentyItems(prefix string) string {
	items := make([]string, 20)
	for i := range items {
		items[i] = `"` + prefix + `"`
	}
	return "[" + strings.Join(items, ",") + "]"
}
