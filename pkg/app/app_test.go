package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "ai-proposal-api/configs"
	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/llm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Environment:     "production",
		LLMProvider:     config.ProviderGemini,
		CacheBackend:    config.CacheBackendFile,
		CacheDir:        filepath.Join(dir, "cache"),
		CacheSQLitePath: filepath.Join(dir, "proposals.db"),
		BrowserHeadless: true,
	}
}

func TestNew_WithoutCredentialsFallsBack(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.LLM.Generate(context.Background(), "hello", llm.Creative)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Nil(t, a.Index)
	assert.True(t, a.Cache.Enabled())
}

func TestNew_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = config.CacheBackendSQLite
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Cache.Write("acme", cache.StageLLMContent, map[string]string{"a": "b"}))
	assert.True(t, a.Cache.Exists("acme", cache.StageLLMContent))
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "openrouter"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.CacheBackend = "redis"
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestHandler_ServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	a.Maintenance.Set(true)
	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNew_BoundsPromptCalls(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("LLM_CALL_TIMEOUT", "50ms")
	orig := providerFactory
	t.Cleanup(func() { providerFactory = orig })
	providerFactory = func(context.Context, *config.Config, *zap.Logger) (llm.CompletionService, llm.Embedder, error) {
		return llm.Func(func(ctx context.Context, _ string, _ llm.Params) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), nil, nil
	}

	a, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	start := time.Now()
	_, err = a.LLM.Generate(context.Background(), "hello", llm.Creative)
	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt": "Write a haiku"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "timed out")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
