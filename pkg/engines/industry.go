package engines

import (
	"context"
	"fmt"
	"strings"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

const defaultIndustry = "Technology"

const industryPrompt = `
You are an AI industry analyst with expertise across multiple sectors.
Based on the following domain knowledge, identify:
1. The specific industry the company belongs to
2. 5-7 industry-specific insights or trends that might influence AI adoption

Domain Knowledge:
%s

Return only a valid JSON object with no markdown formatting or other text:
{
  "industry": "specific industry name",
  "industryInsights": [
    "industry insight 1",
    "industry insight 2",
    "etc..."
  ]
}
`

const painPointPrompt = `
Based on the industry context provided, identify 5-7 POSSIBLE business pain points that companies in this sector commonly face.

Industry Context:
%s

For each possible pain point:
1. Provide a concise title (max 5 words)
2. Write a brief description of the issue (2-3 sentences)
3. Assign a typical severity score (1-10) based on industry benchmarks
4. List 2-3 examples of how this pain point typically manifests
5. Explain why companies in this industry often face this challenge (1-2 sentences)

Return only a valid JSON array with no markdown formatting:
[
  {
    "title": "Possible pain point title",
    "description": "Description of this common industry challenge",
    "typicalSeverity": 8,
    "commonManifestations": ["symptom1", "symptom2"],
    "industryRelevance": "Companies in this industry often face this because..."
  }
]
`

// AnalyzeIndustry names the industry, lists its AI-relevant trends and then
// extracts the pain points typical for it.
func (e *Engine) AnalyzeIndustry(ctx context.Context, domainKnowledge string) (models.IndustryAnalysis, error) {
	text, err := e.complete(ctx, "industry_insights", fmt.Sprintf(industryPrompt, domainKnowledge), llm.Structured)
	if err == nil {
		var resp struct {
			Industry         parser.Text    `json:"industry"`
			IndustryInsights parser.Strings `json:"industryInsights"`
		}
		if err = parser.Decode(text, &resp); err == nil {
			industry := resp.Industry.Or(defaultIndustry)
			insights := []string(resp.IndustryInsights)
			if insights == nil {
				insights = []string{}
			}
			painPoints, ppErr := e.ExtractPainPoints(ctx, industry+"\n"+strings.Join(insights, "\n"))
			if ppErr != nil {
				return models.IndustryAnalysis{}, ppErr
			}
			return models.IndustryAnalysis{
				Industry:           industry,
				IndustryInsights:   insights,
				PossiblePainPoints: painPoints,
			}, nil
		}
	}
	if ctxErr := e.fallback(ctx, "industry_insights", err); ctxErr != nil {
		return models.IndustryAnalysis{}, ctxErr
	}
	return FallbackIndustry(), nil
}

// ExtractPainPoints lists the possible pain points of an industry. Ids are
// assigned by position and severities are clamped to [1,10].
func (e *Engine) ExtractPainPoints(ctx context.Context, industryContext string) ([]models.PainPoint, error) {
	text, err := e.complete(ctx, "pain_points", fmt.Sprintf(painPointPrompt, industryContext), llm.Structured)
	if err == nil {
		var raw []struct {
			Title                parser.Text    `json:"title"`
			Description          parser.Text    `json:"description"`
			TypicalSeverity      parser.Number  `json:"typicalSeverity"`
			CommonManifestations parser.Strings `json:"commonManifestations"`
			IndustryRelevance    parser.Text    `json:"industryRelevance"`
		}
		if err = parser.Decode(text, &raw); err == nil {
			points := make([]models.PainPoint, len(raw))
			for i, p := range raw {
				severity := 5.0
				if p.TypicalSeverity.Truthy() {
					severity = p.TypicalSeverity.Value
				}
				points[i] = models.PainPoint{
					ID:                   fmt.Sprintf("pain_point_%d", i+1),
					Title:                string(p.Title),
					Description:          string(p.Description),
					TypicalSeverity:      int(models.Clamp(severity, 1, 10)),
					CommonManifestations: models.CapList(p.CommonManifestations),
					IndustryRelevance:    string(p.IndustryRelevance),
				}
			}
			return points, nil
		}
	}
	if ctxErr := e.fallback(ctx, "pain_points", err); ctxErr != nil {
		return nil, ctxErr
	}
	return DefaultPainPoints(), nil
}

// DefaultPainPoints is used when pain point extraction fails.
func DefaultPainPoints() []models.PainPoint {
	return []models.PainPoint{
		{
			ID:                   "pain_point_1",
			Title:                "Operational Inefficiency",
			Description:          "Manual processes and legacy systems creating workflow bottlenecks.",
			TypicalSeverity:      7,
			CommonManifestations: []string{"Long processing times", "High error rates", "Customer complaints"},
			IndustryRelevance:    "Common across most industries as digital transformation accelerates.",
		},
		{
			ID:                   "pain_point_2",
			Title:                "Data Management Challenges",
			Description:          "Difficulty integrating and utilizing data effectively across systems.",
			TypicalSeverity:      8,
			CommonManifestations: []string{"Incomplete reporting", "Inconsistent data", "Decision delays"},
			IndustryRelevance:    "Increasingly important as data volumes grow exponentially.",
		},
		{
			ID:                   "pain_point_3",
			Title:                "Customer Experience Gaps",
			Description:          "Inability to meet modern customer expectations for personalization and responsiveness.",
			TypicalSeverity:      8,
			CommonManifestations: []string{"Declining satisfaction", "Lost customers", "Negative reviews"},
			IndustryRelevance:    "Critical factor in customer retention across all sectors.",
		},
	}
}

// FallbackIndustry is used when the industry analysis fails.
func FallbackIndustry() models.IndustryAnalysis {
	return models.IndustryAnalysis{
		Industry: defaultIndustry,
		IndustryInsights: []string{
			"AI adoption is rapidly increasing across the technology sector",
			"Companies are focusing on data-driven decision making",
			"Automation of routine tasks is a key trend",
		},
		PossiblePainPoints: []models.PainPoint{
			{
				ID:                   "pain_point_1",
				Title:                "Talent Acquisition Challenges",
				Description:          "Difficulty finding and retaining skilled technical personnel.",
				TypicalSeverity:      8,
				CommonManifestations: []string{"Extended hiring times", "High turnover", "Skill gaps"},
				IndustryRelevance:    "Technology companies face intense competition for limited talent.",
			},
			{
				ID:                   "pain_point_2",
				Title:                "Rapid Technology Evolution",
				Description:          "Challenge of keeping systems and skills current with fast-changing technology.",
				TypicalSeverity:      7,
				CommonManifestations: []string{"Technical debt", "Compatibility issues", "Competitive disadvantage"},
				IndustryRelevance:    "Technology sector faces constant disruption from new innovations.",
			},
		},
	}
}
