package engines

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/models"
)

var nonLLMKeywords = []string{
	"neural network", "deep learning", "regression", "classification algorithm",
	"decision tree", "data mining", "clustering", "forecasting model",
	"recommender system", "anomaly detection", "computer vision", "image generation",
	"image recognition", "predictive analysis", "statistical model", "data warehousing",
}

var llmKeywords = []string{
	"llm", "language model", "gpt", "claude", "gemini", "palm", "text generation",
	"understanding", "processing", "conversation", "chatbot", "response generation",
	"content creation", "analysis", "summarization", "knowledge extraction",
	"semantic search", "embedding", "question answering", "rag", "retrieval augmented",
}

var unsuitableDomainKeywords = []string{
	"real-time", "latency-sensitive", "safety-critical", "control system",
	"autonomous vehicle", "mission critical", "embedded system",
}

const shortDescription = 50

// PreImplementationResult is the outcome of ValidateBeforeImplementation.
type PreImplementationResult struct {
	Strategies []models.ValidatedStrategy
	Warnings   []models.StrategyWarning
	// AllValid is true when no warning is of high severity.
	AllValid bool
}

// ValidateBeforeImplementation flags strategies that look unsuitable for an
// LLM implementation and attaches the warnings and an overall risk level to
// each of them. It never drops a strategy.
func ValidateBeforeImplementation(strategies []models.ValidatedStrategy, logger *zap.Logger) PreImplementationResult {
	var warnings []models.StrategyWarning
	enriched := make([]models.ValidatedStrategy, len(strategies))

	for i, s := range strategies {
		found := strategyWarnings(s.Strategy)
		warnings = append(warnings, found...)

		s.ImplementationWarnings = found
		s.ImplementationRisk = ""
		if len(found) > 0 {
			s.ImplementationRisk = riskLevel(found)
		}
		enriched[i] = s
	}

	allValid := true
	for _, w := range warnings {
		logger.Warn("pre-implementation check",
			zap.String("strategy", w.StrategyID),
			zap.String("severity", w.Severity),
			zap.String("message", w.Message),
		)
		if w.Severity == models.SeverityHigh {
			allValid = false
		}
	}
	return PreImplementationResult{Strategies: enriched, Warnings: warnings, AllValid: allValid}
}

func strategyWarnings(s models.Strategy) []models.StrategyWarning {
	content := strings.ToLower(s.Title) + " " + strings.ToLower(s.Description)
	var out []models.StrategyWarning
	add := func(severity, format string, args ...any) {
		out = append(out, models.StrategyWarning{
			StrategyID: s.ID,
			Message:    fmt.Sprintf(format, args...),
			Severity:   severity,
		})
	}

	category := strings.ToLower(string(s.Category))
	if category == "" || !models.Category(category).Valid() {
		name := string(s.Category)
		if name == "" {
			name = "undefined"
		}
		add(models.SeverityMedium, "Strategy has invalid category: %q", name)
	}

	if matches := matching(content, nonLLMKeywords); len(matches) > 0 {
		severity := models.SeverityMedium
		if len(matches) > 2 {
			severity = models.SeverityHigh
		}
		add(severity, "Strategy contains non-LLM technology keywords: %s", strings.Join(matches, ", "))
	}

	if len(matching(content, llmKeywords)) == 0 {
		add(models.SeverityHigh, "Strategy does not mention any LLM-related technologies")
	}

	if s.Description != "" && len(s.Description) < shortDescription {
		add(models.SeverityLow, "Strategy description is too short to determine feasibility")
	}

	if matches := matching(content, unsuitableDomainKeywords); len(matches) > 0 {
		add(models.SeverityMedium, "Strategy targets problem domains that may not be suitable for LLMs: %s", strings.Join(matches, ", "))
	}
	return out
}

func riskLevel(warnings []models.StrategyWarning) string {
	risk := models.SeverityLow
	for _, w := range warnings {
		switch w.Severity {
		case models.SeverityHigh:
			return models.SeverityHigh
		case models.SeverityMedium:
			risk = models.SeverityMedium
		}
	}
	return risk
}

func matching(content string, keywords []string) []string {
	var out []string
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			out = append(out, keyword)
		}
	}
	return out
}
