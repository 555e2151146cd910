package engines

import (
	"context"
	"fmt"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

// RefinementAverage is the average feasibility below which a batch reports
// that it needs refinement.
const RefinementAverage = 75

const feasibilityPrompt = `
You are an AI feasibility expert who evaluates AI implementation opportunities. Focus EXCLUSIVELY on strategies
where Large Language Models (LLMs) are the PRIMARY technology component.

Acceptable LLM applications include:
- Text-to-text: Traditional LLM applications where both input and output are text
- Image-to-text: Multimodal LLM applications where images can be inputs, but the LLM processes them to produce text outputs
  (e.g., document analysis, visual content understanding, image-based Q&A)

DO NOT favorably evaluate strategies that primarily rely on:
- Traditional machine learning or deep learning models with no LLM component
- Pure computer vision applications not utilizing LLMs
- Image generation or text-to-image models
- Audio processing or speech systems as the primary focus
- Forecasting or prediction systems not powered by LLMs
- Any system where an LLM is not the core reasoning/processing component

For each strategy, provide a detailed feasibility analysis considering the following criteria:

1. Technical Feasibility [0-25 points]:
   - Is the required LLM technology available and capable for this use case?
   - Is it compatible with existing systems?
   - How mature are the required LLM capabilities for this specific application?
   - Is the scope technically well-defined for an LLM-centric solution?

2. Resource Requirements Assessment [0-25 points]:
   - Are the necessary LLM implementation skills available in-house or easily acquired?
   - Is the expected timeline reasonable for an LLM deployment?
   - Is the cost of LLM API usage or fine-tuning proportional to expected benefits?
   - Can the LLM implementation be phased?

3. Risk Assessment [0-25 points]:
   - How predictable are the outcomes of the LLM system?
   - Are there mitigation strategies for LLM hallucinations and inaccuracies?
   - Can potential negative impacts of LLM usage be contained?
   - How likely is organizational resistance to LLM adoption?

4. Implementation Complexity [0-25 points]:
   - How many dependencies exist for the LLM implementation?
   - How many stakeholders are involved in the LLM project?
   - How much process change is required for LLM integration?
   - How straightforward is the testing and validation of LLM outputs?

Total Feasibility Score = Sum of all criteria (maximum 100 points)
The higher the score, the more feasible the implementation.

For each strategy, provide:
1. Detailed scores for each criterion
2. An overall feasibility score
3. Specific technical challenges identified (MAXIMUM 5), formatted as "Challenge Title: Brief description"
4. Resource requirements (MAXIMUM 5), formatted with the same title and description pattern
5. Risk factors (MAXIMUM 5), formatted with the same title and description pattern
6. Potential mitigation strategies (MAXIMUM 5), formatted with the same title and description pattern
7. Recommended implementation approach

If a strategy does not have an LLM as its core intelligence, assign it a very low feasibility
score (below 40) and explain why in the technical feedback.

Strategies:
%s

Return only a valid JSON object with no markdown formatting or other text, one entry per strategy in the same order:
{
  "feasibilityAnalysis": [
    {
      "id": "strategy_id",
      "feasibilityCriteria": {
        "technicalFeasibility": 20,
        "resourceRequirements": 15,
        "riskAssessment": 18,
        "implementationComplexity": 16
      },
      "feasibilityScore": 69,
      "technicalChallenges": ["challenge 1", "challenge 2"],
      "resourceRequirements": ["requirement 1", "requirement 2"],
      "riskFactors": ["risk 1", "risk 2"],
      "mitigationStrategies": ["strategy 1", "strategy 2"],
      "recommendedApproach": "detailed recommendation"
    }
  ],
  "technicalFeedback": "Technical feedback to be sent to strategy engine, or null if no feedback needed"
}
`

type rawFeasibility struct {
	FeasibilityCriteria *struct {
		TechnicalFeasibility     parser.Number `json:"technicalFeasibility"`
		ResourceRequirements     parser.Number `json:"resourceRequirements"`
		RiskAssessment           parser.Number `json:"riskAssessment"`
		ImplementationComplexity parser.Number `json:"implementationComplexity"`
	} `json:"feasibilityCriteria"`
	FeasibilityScore     parser.Number  `json:"feasibilityScore"`
	TechnicalChallenges  parser.Strings `json:"technicalChallenges"`
	ResourceRequirements parser.Strings `json:"resourceRequirements"`
	RiskFactors          parser.Strings `json:"riskFactors"`
	MitigationStrategies parser.Strings `json:"mitigationStrategies"`
	RecommendedApproach  parser.Text    `json:"recommendedApproach"`
}

func (r rawFeasibility) feedback() models.FeasibilityFeedback {
	var criteria models.FeasibilityCriteria
	switch {
	case r.FeasibilityCriteria != nil:
		c := r.FeasibilityCriteria
		criteria = models.FeasibilityCriteria{
			TechnicalFeasibility:     c.TechnicalFeasibility.Or(0),
			ResourceRequirements:     c.ResourceRequirements.Or(0),
			RiskAssessment:           c.RiskAssessment.Or(0),
			ImplementationComplexity: c.ImplementationComplexity.Or(0),
		}
	case r.FeasibilityScore.Valid:
		// only a total was reported: spread it evenly so the sum is preserved
		quarter := models.Clamp(r.FeasibilityScore.Value, 0, 100) / 4
		criteria = models.FeasibilityCriteria{
			TechnicalFeasibility:     quarter,
			ResourceRequirements:     quarter,
			RiskAssessment:           quarter,
			ImplementationComplexity: quarter,
		}
	default:
		criteria = fallbackFeasibilityCriteria
	}
	return models.FeasibilityFeedback{
		FeasibilityCriteria:  criteria,
		TechnicalChallenges:  r.TechnicalChallenges,
		ResourceRequirements: r.ResourceRequirements,
		RiskFactors:          r.RiskFactors,
		MitigationStrategies: r.MitigationStrategies,
		RecommendedApproach:  string(r.RecommendedApproach),
	}
}

var fallbackFeasibilityCriteria = models.FeasibilityCriteria{
	TechnicalFeasibility:     20,
	ResourceRequirements:     18,
	RiskAssessment:           19,
	ImplementationComplexity: 18,
}

// FallbackFeedback is the feasibility verdict used when none is available.
func FallbackFeedback() models.FeasibilityFeedback {
	return models.FeasibilityFeedback{
		FeasibilityScore:     fallbackFeasibilityCriteria.Sum(),
		FeasibilityCriteria:  fallbackFeasibilityCriteria,
		TechnicalChallenges:  []string{"Integration complexity", "Data quality requirements"},
		ResourceRequirements: []string{"AI expertise", "Development team", "Infrastructure"},
		RiskFactors:          []string{"Technical risks", "Resource availability"},
		MitigationStrategies: []string{"Phased implementation", "Expert consultation"},
		RecommendedApproach:  "Start with a pilot project to validate approach",
	}
}

// CheckFeasibility scores each implementation strategy on four 0-25
// criteria. Answers are matched to strategies by position; a strategy the
// answer does not cover gets FallbackFeedback.
func (e *Engine) CheckFeasibility(ctx context.Context, strategies []models.ImplementationStrategy) (models.FeasibilityResult, error) {
	if len(strategies) == 0 {
		return models.FeasibilityResult{Strategies: []models.FeasibilityAnalysis{}}, nil
	}

	text, err := e.complete(ctx, "feasibility", fmt.Sprintf(feasibilityPrompt, indent(strategies)), llm.Structured)
	if err == nil {
		var resp struct {
			FeasibilityAnalysis []rawFeasibility `json:"feasibilityAnalysis"`
			TechnicalFeedback   parser.Text      `json:"technicalFeedback"`
		}
		if err = parser.Decode(text, &resp); err == nil {
			err = parser.Require(resp.FeasibilityAnalysis != nil, "feasibilityAnalysis")
		}
		if err == nil {
			analyses := make([]models.FeasibilityAnalysis, len(strategies))
			for i, s := range strategies {
				fb := FallbackFeedback()
				if i < len(resp.FeasibilityAnalysis) {
					fb = resp.FeasibilityAnalysis[i].feedback()
				}
				analyses[i] = models.NewFeasibilityAnalysis(s, fb)
			}
			return newFeasibilityResult(analyses, string(resp.TechnicalFeedback)), nil
		}
	}
	if ctxErr := e.fallback(ctx, "feasibility", err); ctxErr != nil {
		return models.FeasibilityResult{}, ctxErr
	}
	return FallbackFeasibility(strategies), nil
}

// FallbackFeasibility rates every strategy 75 and asks for no refinement.
func FallbackFeasibility(strategies []models.ImplementationStrategy) models.FeasibilityResult {
	analyses := make([]models.FeasibilityAnalysis, len(strategies))
	for i, s := range strategies {
		analyses[i] = models.NewFeasibilityAnalysis(s, FallbackFeedback())
	}
	return models.FeasibilityResult{
		Strategies:         analyses,
		AverageScore:       fallbackFeasibilityCriteria.Sum(),
		RequiresRefinement: false,
	}
}

func newFeasibilityResult(analyses []models.FeasibilityAnalysis, technicalFeedback string) models.FeasibilityResult {
	total := 0.0
	for _, a := range analyses {
		total += a.FeasibilityScore
	}
	avg := 0.0
	if len(analyses) > 0 {
		avg = total / float64(len(analyses))
	}
	return models.FeasibilityResult{
		Strategies:         analyses,
		TechnicalFeedback:  technicalFeedback,
		AverageScore:       avg,
		RequiresRefinement: avg < RefinementAverage,
	}
}

// ApplyFeasibilityFeedback folds a feasibility verdict back into the plan:
// mitigation strategies become the key benefits and the first five resource
// requirements become the implementation steps. Empty feedback lists keep
// the existing values.
func ApplyFeasibilityFeedback(a models.FeasibilityAnalysis) models.ImplementationStrategy {
	refined := a.ImplementationStrategy
	if len(a.MitigationStrategies) > 0 {
		refined.KeyBenefits = models.CapList(a.MitigationStrategies)
	}
	if len(a.ResourceRequirements) > 0 {
		refined.ImplementationSteps = models.CapList(a.ResourceRequirements)
	}
	refined.ImplementationSteps = models.CapList(refined.ImplementationSteps)
	refined.FeasibilityScore = a.FeasibilityScore
	return refined
}
