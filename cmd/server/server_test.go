package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "ai-proposal-api/configs"
	"ai-proposal-api/pkg/app"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// a local .env may be absent
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

func TestApplicationSetup(t *testing.T) {
	dir := t.TempDir()
	env := map[string]string{
		"PORT":              "0",
		"ENVIRONMENT":       "test",
		"LLM_PROVIDER":      "gemini",
		"GOOGLE_AI_API_KEY": "",
		"CACHE_BACKEND":     "file",
		"CACHE_DIR":         filepath.Join(dir, "cache"),
		"QDRANT_URL":        "",
		"API_KEY":           "test-key",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	a, cfg := setup(t)
	defer a.Close()
	assert.Equal(t, "test-key", cfg.APIKey)

	r := a.Handler()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cache-status/acme", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/cache-status/acme", nil)
	req.Header.Set("X-API-KEY", "test-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func setup(t *testing.T) (*app.App, *config.Config) {
	t.Helper()
	cfg := config.LoadConfig()
	a, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	return a, cfg
}
