package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/pipeline"
	"ai-proposal-api/pkg/services"
)

type noScraper struct{}

func (noScraper) Scrape(context.Context, string) (models.ScrapedData, error) {
	return models.ScrapedData{}, errors.New("offline")
}

func newTestRouter(t *testing.T, apiKey string) (*gin.Engine, *services.MonitoringService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := llm.Func(func(context.Context, string, llm.Params) (string, error) { return "ok", nil })
	c := cache.New(cache.NewFileStore(t.TempDir()), zap.NewNop(), true)
	orch := pipeline.New(svc, noScraper{}, c, pipeline.DefaultConfig(), zap.NewNop())
	t.Cleanup(orch.Wait)

	monitoring := services.NewMonitoringService(zap.NewNop())
	r := New(Dependencies{
		Orchestrator:  orch,
		LLM:           svc,
		Monitoring:    monitoring,
		APIKey:        apiKey,
		AdminUsername: "admin",
		AdminPassword: "pw",
		Logger:        zap.NewNop(),
	})
	return r, monitoring
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t, "secret")

	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_APIKey(t *testing.T) {
	r, _ := newTestRouter(t, "secret")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/cache-status/acme", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/cache-status/acme", nil)
	req.Header.Set("X-API-KEY", "secret")
	w = do(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_OpenWithoutKey(t *testing.T) {
	r, monitoring := newTestRouter(t, "")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/strategies/search?q=chatbot", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get(services.RequestIDHeader))

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/proposal/acme/pdf", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	data := monitoring.GetDashboardData(1)
	assert.Equal(t, 1, data.Endpoints["/api/strategies/search"])
}

func TestRouter_CORS(t *testing.T) {
	r, _ := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-API-KEY")
	w := do(r, req)

	require.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthMiddleware("k"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-API-KEY", "wrong")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-API-KEY", "k")
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)
}
