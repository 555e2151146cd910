package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/engines"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/pipeline"
	"ai-proposal-api/pkg/scoring"
)

const (
	defaultDisplayScore = 80
	maxDisplayScore     = 100
	expectedImprovement = 0.8
)

// AnalysisStrategy is a ranked strategy as the dashboard displays it.
type AnalysisStrategy struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	Impact               models.Level       `json:"impact"`
	Complexity           models.Level       `json:"complexity"`
	Timeframe            models.Timeframe   `json:"timeframe"`
	KeyBenefits          []string           `json:"keyBenefits"`
	ImplementationSteps  []string           `json:"implementationSteps"`
	ValidationScore      float64            `json:"validationScore"`
	FeasibilityScore     float64            `json:"feasibilityScore"`
	CombinedScore        float64            `json:"combinedScore"`
	OpportunityScore     float64            `json:"opportunityScore"`
	TechnicalChallenges  []string           `json:"technicalChallenges"`
	ResourceRequirements []string           `json:"resourceRequirements"`
	PainPointRelevances  []models.Relevance `json:"painPointRelevances"`
	Category             models.Category    `json:"category"`
}

// AnalysisHandler serves the dashboard views of cached proposals.
type AnalysisHandler struct {
	orch   *pipeline.Orchestrator
	logger *zap.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(orch *pipeline.Orchestrator, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{orch: orch, logger: logger}
}

// View handles GET /api/analysis/:company. The response is keyed by the
// file names the dashboard loads.
func (h *AnalysisHandler) View(c *gin.Context) {
	company := c.Param("company")
	p, ok := loadProposal(h.orch.Cache(), company)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found for the specified company"})
		return
	}
	c.JSON(http.StatusOK, AnalysisView(company, p))
}

// Narrative handles GET /api/llm-content/:company.
func (h *AnalysisHandler) Narrative(c *gin.Context) {
	content, source, err := h.orch.Narrative(c.Param("company"))
	if errors.Is(err, pipeline.ErrNoProposal) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No content or proposal found for this company"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve LLM content", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": content, "source": source})
}

// AnalysisView builds the dashboard document of p. Displayed validation and
// feasibility scores are capped at 100 and the derived scores are rounded.
func AnalysisView(company string, p models.Proposal) map[string]interface{} {
	description := p.BusinessContext
	if description == "" {
		description = fmt.Sprintf("AI transformation plan for %s.", company)
	}

	strategies := make([]AnalysisStrategy, 0, len(p.AIOpportunities))
	var validationSum, feasibilitySum, combinedSum float64
	for i, o := range p.AIOpportunities {
		s := displayStrategy(i, o)
		strategies = append(strategies, s)
		validationSum += s.ValidationScore
		feasibilitySum += s.FeasibilityScore
		combinedSum += math.Min(s.CombinedScore, maxDisplayScore)
	}

	report := gin.H{
		"averageValidationScore":  0.85,
		"averageFeasibilityScore": 0.80,
		"averageCombinedScore":    0.825,
		"expectedImprovement":     expectedImprovement,
	}
	if n := float64(len(strategies)); n > 0 {
		report["averageValidationScore"] = roundTo(validationSum/n/100, 3)
		report["averageFeasibilityScore"] = roundTo(feasibilitySum/n/100, 3)
		report["averageCombinedScore"] = roundTo(combinedSum/n/100, 3)
	}

	industry := p.Industry
	if industry == "" {
		industry = "Technology"
	}
	painPoints := p.PossiblePainPoints
	if painPoints == nil {
		painPoints = []models.PainPoint{}
	}

	var challenges interface{} = []string{}
	switch {
	case len(p.BusinessChallenges) > 0:
		challenges = p.BusinessChallenges
	case p.RecommendedApproach != "":
		challenges = []gin.H{{
			"name":        "Recommended Approach",
			"description": p.RecommendedApproach,
			"category":    "Recommendations",
			"priority":    3,
		}}
	}

	return map[string]interface{}{
		company + "-context.json":                    gin.H{"description": description},
		company + "-final-report.json":               report,
		company + "-final-strategies-optimized.json": strategies,
		company + "-industry.json": gin.H{
			"industry":           industry,
			"insights":           []string{},
			"possiblePainPoints": painPoints,
		},
		company + "-businessChallenges.json": challenges,
	}
}

func displayStrategy(i int, o models.Opportunity) AnalysisStrategy {
	validation := displayScore(o.ValidationScore)
	feasibility := displayScore(o.FeasibilityScore)
	category := engines.DetermineCategory(o.Title, o.Description)

	v := models.ValidatedStrategy{
		Strategy: models.Strategy{
			ID: o.ID, Title: o.Title, Description: o.Description,
			Impact: orLevel(o.Impact), Complexity: orLevel(o.Complexity), Timeframe: orTimeframe(o.Timeframe),
			Category: category,
		},
		ValidationScore:             validation,
		PainPointRelevances:         o.PainPointRelevances,
		BusinessChallengeRelevances: o.BusinessChallengeRelevances,
	}
	impl := models.ImplementationStrategy{ValidatedStrategy: v, FeasibilityScore: feasibility}

	id := o.ID
	if id == "" {
		id = fmt.Sprintf("strategy_%d", i+1)
	}
	name := o.Title
	if name == "" {
		name = "Untitled Strategy"
	}
	return AnalysisStrategy{
		ID:                   id,
		Name:                 name,
		Description:          o.Description,
		Impact:               v.Impact,
		Complexity:           v.Complexity,
		Timeframe:            v.Timeframe,
		KeyBenefits:          orEmpty(o.KeyBenefits),
		ImplementationSteps:  orEmpty(models.CapList(o.ImplementationSteps)),
		ValidationScore:      validation,
		FeasibilityScore:     feasibility,
		CombinedScore:        math.Round(scoring.CombinedScore(impl)),
		OpportunityScore:     math.Round(scoring.OpportunityScore(v)),
		TechnicalChallenges:  orEmpty(o.TechnicalChallenges),
		ResourceRequirements: orEmpty(o.ResourceRequirements),
		PainPointRelevances:  orRelevances(o.PainPointRelevances),
		Category:             category,
	}
}

// displayScore maps a missing score to 80 and caps it at 100.
func displayScore(v float64) float64 {
	if v == 0 {
		v = defaultDisplayScore
	}
	return math.Min(v, maxDisplayScore)
}

func orLevel(l models.Level) models.Level {
	if l == "" {
		return models.LevelMedium
	}
	return l
}

func orTimeframe(t models.Timeframe) models.Timeframe {
	if t == "" {
		return models.MediumTerm
	}
	return t
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func orRelevances(rs []models.Relevance) []models.Relevance {
	if rs == nil {
		return []models.Relevance{}
	}
	return rs
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// loadProposal reads the cached final proposal of company.
func loadProposal(c *cache.Cache, company string) (models.Proposal, bool) {
	var p models.Proposal
	ok := c.Load(cache.CompanyID(company), cache.StageFinalProposal, &p)
	return p, ok
}
