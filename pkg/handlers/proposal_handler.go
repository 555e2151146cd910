package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/pipeline"
)

// ProposalHandler serves proposal generation and free-form prompts.
type ProposalHandler struct {
	orch   *pipeline.Orchestrator
	llm    llm.CompletionService
	logger *zap.Logger
}

// NewProposalHandler creates a ProposalHandler.
func NewProposalHandler(orch *pipeline.Orchestrator, svc llm.CompletionService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{orch: orch, llm: svc, logger: logger}
}

// ProposalRequest is the body of a proposal generation request.
type ProposalRequest struct {
	CompanyURL  string `json:"companyUrl"`
	CompanyName string `json:"companyName"`
}

// Generate handles POST /api/generate. A body with a prompt is passed
// straight to the model; a body with companyUrl and companyName generates a
// proposal.
func (h *ProposalHandler) Generate(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if raw, ok := body["prompt"]; ok {
		prompt, _ := raw.(string)
		if strings.TrimSpace(prompt) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required for LLM content generation"})
			return
		}
		h.complete(c, prompt)
		return
	}

	_, hasURL := body["companyUrl"]
	_, hasName := body["companyName"]
	if hasURL && hasName {
		url, _ := body["companyUrl"].(string)
		name, _ := body["companyName"].(string)
		if url == "" || name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Company URL and name are required for proposal generation"})
			return
		}
		h.propose(c, url, name)
		return
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": gin.H{"receivedKeys": keys},
	})
}

// Analyze handles POST /api/analyze.
func (h *ProposalHandler) Analyze(c *gin.Context) {
	var req ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CompanyURL == "" || req.CompanyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters: companyUrl and companyName are required"})
		return
	}
	h.propose(c, req.CompanyURL, req.CompanyName)
}

// GenerateForCompany handles POST /api/analysis/:company/generate. The
// prompt is prefixed with the cached business context of the company.
func (h *ProposalHandler) GenerateForCompany(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	prompt := req.Prompt
	var analysis models.ContextAnalysis
	companyID := cache.CompanyID(c.Param("company"))
	if h.orch.Cache().Load(companyID, cache.StageContextAnalysis, &analysis) && analysis.BusinessContext != "" {
		prompt = fmt.Sprintf("Company Context: %s\n\n%s", analysis.BusinessContext, req.Prompt)
	}
	h.complete(c, prompt)
}

func (h *ProposalHandler) complete(c *gin.Context, prompt string) {
	text, err := h.llm.Generate(c.Request.Context(), prompt, llm.Creative)
	if err != nil {
		h.logger.Error("content generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate LLM content", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": text})
}

func (h *ProposalHandler) propose(c *gin.Context, url, name string) {
	h.logger.Info("generating proposal", zap.String("company", name), zap.String("url", url))
	c.JSON(http.StatusOK, h.orch.GenerateProposal(c.Request.Context(), url, name))
}
