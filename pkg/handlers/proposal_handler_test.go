package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
)

func proposalRouter(h *ProposalHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/generate", h.Generate)
	r.POST("/api/analyze", h.Analyze)
	r.POST("/api/analysis/:company/generate", h.GenerateForCompany)
	return r
}

func TestGenerate_PromptPassthrough(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/generate", map[string]string{"prompt": "Write a tagline"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo: Write a tagline", decode(t, w)["content"])
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/generate", map[string]string{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_UnknownBodyListsKeys(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/generate", map[string]string{"url": "x", "company": "y"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Equal(t, []interface{}{"company", "url"}, details["receivedKeys"])
}

func TestGenerate_ReturnsCachedProposal(t *testing.T) {
	var prompts []string
	svc := echoLLM(&prompts)
	env := newTestEnv(t, svc)
	seeded := env.seed(t, "Acme Corp")
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/generate", map[string]string{
		"companyUrl":  "https://acme.example",
		"companyName": "Acme Corp",
	})
	env.orch.Wait()

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, seeded.ID, body["id"])
	assert.Equal(t, "Acme Corp", body["companyName"])
	assert.Empty(t, prompts)
}

func TestAnalyze_RunsPipeline(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/analyze", map[string]string{
		"companyUrl":  "https://globex.example",
		"companyName": "Globex",
	})
	env.orch.Wait()

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Globex", body["companyName"])
	assert.NotEmpty(t, body["aiOpportunities"])
}

func TestAnalyze_MissingField(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/analyze", map[string]string{"companyName": "Globex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateForCompany_PrefixesContext(t *testing.T) {
	svc := echoLLM(nil)
	env := newTestEnv(t, svc)
	require.NoError(t, env.cache.Write("acme-corp", cache.StageContextAnalysis, models.ContextAnalysis{BusinessContext: "Acme builds rockets."}))
	r := proposalRouter(NewProposalHandler(env.orch, svc, zap.NewNop()))

	w := serve(r, http.MethodPost, "/api/analysis/Acme%20Corp/generate", map[string]string{"prompt": "Summarize"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo: Company Context: Acme builds rockets.\n\nSummarize", decode(t, w)["content"])

	w = serve(r, http.MethodPost, "/api/analysis/globex/generate", map[string]string{"prompt": "Summarize"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo: Summarize", decode(t, w)["content"])
}
