package engines

import (
	"context"
	"fmt"
	"strings"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

const contextPrompt = `
You are an AI business analyst specialized in technology transformation.
Analyze the following company information and provide:
1. A comprehensive business context analysis (what the company does, their target market, their business model)
2. Domain knowledge (their industry, specific terms or concepts relevant to their business)

Company Information:
    Company Name: %s
    Website Title: %s
    Meta Description: %s
    About Text: %s
    Products: %s
    Services: %s
    Team Info: %s

Return only a valid JSON object with these exact fields, no markdown formatting or other text:
{
  "businessContext": "detailed analysis of the company's business context",
  "domainKnowledge": "domain-specific knowledge relevant to their industry"
}
`

// AnalyzeContext describes what the company does and the domain it works in.
func (e *Engine) AnalyzeContext(ctx context.Context, scraped models.ScrapedData, companyName string) (models.ContextAnalysis, error) {
	prompt := fmt.Sprintf(contextPrompt,
		companyName,
		scraped.Title,
		scraped.MetaDescription,
		scraped.AboutText,
		strings.Join(scraped.Products, ", "),
		strings.Join(scraped.Services, ", "),
		strings.Join(scraped.TeamInfo, ", "),
	)

	text, err := e.complete(ctx, "context_analysis", prompt, llm.Structured)
	if err == nil {
		var resp struct {
			BusinessContext parser.Text `json:"businessContext"`
			DomainKnowledge parser.Text `json:"domainKnowledge"`
		}
		if err = parser.Decode(text, &resp); err == nil {
			err = parser.Require(resp.BusinessContext != "", "businessContext")
		}
		if err == nil {
			return models.ContextAnalysis{
				BusinessContext: string(resp.BusinessContext),
				DomainKnowledge: resp.DomainKnowledge.Or(string(resp.BusinessContext)),
			}, nil
		}
	}
	if ctxErr := e.fallback(ctx, "context_analysis", err); ctxErr != nil {
		return models.ContextAnalysis{}, ctxErr
	}
	return FallbackContext(scraped, companyName), nil
}

// FallbackContext derives a minimal context from the scraped page alone.
func FallbackContext(scraped models.ScrapedData, companyName string) models.ContextAnalysis {
	parts := []string{companyName + " is a company presenting itself online"}
	if scraped.Title != "" {
		parts[0] += " as \"" + scraped.Title + "\""
	}
	parts[0] += "."
	if scraped.MetaDescription != "" {
		parts = append(parts, scraped.MetaDescription)
	}
	if scraped.AboutText != "" && scraped.AboutText != scraped.MetaDescription {
		parts = append(parts, scraped.AboutText)
	}
	businessContext := strings.Join(parts, " ")

	domain := scraped.MetaDescription
	if domain == "" {
		domain = businessContext
	}
	return models.ContextAnalysis{BusinessContext: businessContext, DomainKnowledge: domain}
}
