package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/pipeline"
)

var fixedNow = time.UnixMilli(1700000000000)

type failingScraper struct{}

func (failingScraper) Scrape(context.Context, string) (models.ScrapedData, error) {
	return models.ScrapedData{}, errors.New("browser unavailable")
}

// echoLLM answers free-form prompts with the prompt itself and fails every
// pipeline stage so that proposals fall back to their defaults.
func echoLLM(prompts *[]string) llm.Func {
	return func(ctx context.Context, prompt string, _ llm.Params) (string, error) {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		if strings.HasPrefix(prompt, "You are an AI") {
			return "", errors.New("model unavailable")
		}
		return "echo: " + prompt, nil
	}
}

type testEnv struct {
	orch  *pipeline.Orchestrator
	cache *cache.Cache
}

func newTestEnv(t *testing.T, svc llm.CompletionService) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c := cache.New(cache.NewFileStore(t.TempDir()), zap.NewNop(), true)
	orch := pipeline.New(svc, failingScraper{}, c, pipeline.DefaultConfig(), zap.NewNop(),
		pipeline.WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(orch.Wait)
	return &testEnv{orch: orch, cache: c}
}

func (e *testEnv) seed(t *testing.T, name string) models.Proposal {
	t.Helper()
	p := pipeline.MockProposal(name, "https://acme.example", fixedNow)
	require.NoError(t, e.cache.Write(cache.CompanyID(name), cache.StageFinalProposal, p))
	return p
}

func serve(r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
