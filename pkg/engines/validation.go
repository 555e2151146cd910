package engines

import (
	"context"
	"fmt"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

const validationPrompt = `
You are an AI validation expert who reviews AI transformation strategies.
Evaluate the following strategies based on how well they align with the business context and industry.
Improve any strategies that need refinement, and sort them by potential impact (highest first).

IMPORTANT: All strategies MUST leverage Large Language Models (LLMs) as their PRIMARY technology.

Acceptable LLM applications include:
- Text-to-text: Traditional LLM applications where both input and output are text
- Image-to-text: Multimodal LLM applications where images can be inputs, but the LLM processes them to produce text outputs
  (e.g., document analysis, visual content understanding, image-based Q&A)

Strategies that should receive low validation scores include:
- Traditional machine learning or deep learning models with no LLM component
- Pure computer vision applications not utilizing LLMs
- Image generation or text-to-image models
- Audio processing or speech systems as the primary focus
- Forecasting or prediction systems not powered by LLMs
- Any system where an LLM is not the core reasoning/processing component

For each strategy, evaluate it against these SPECIFIC criteria and assign points (maximum shown in brackets):

1. Business Alignment [0-25 points]:
   - How well does the strategy align with the company's business model and objectives?
   - Does it address real business challenges identified in the context?
   - Will it create meaningful business value?

2. Market Potential [0-25 points]:
   - Is there demonstrated market demand for this LLM-powered solution?
   - How significant is the potential market impact?
   - Does it provide a competitive advantage?

3. Industry Relevance [0-25 points]:
   - How relevant is the strategy to industry trends and challenges?
   - Does it leverage industry-specific opportunities for LLM applications?
   - Is it aligned with industry best practices or innovations in LLM technology?

4. LLM Suitability and Clarity [0-25 points]:
   - Is the strategy clearly articulated with the LLM as the primary intelligence?
   - Is it genuinely suited for an LLM solution rather than other AI technologies?
   - Does it leverage the unique capabilities of LLMs for understanding, reasoning, or generation?
   - Does it have a well-defined scope appropriate for LLM technology?

Total Validation Score = Sum of all criteria (maximum 100 points)

CRITICALLY IMPORTANT:
1. Focus on whether the LLM is the "brain" doing the main processing/reasoning. The input modality (text or images)
   is less important than whether an LLM is the core intelligence component.

2. If a strategy would clearly be better implemented without an LLM as its core (e.g., using traditional ML,
   pure computer vision, or statistical models), assign it a very low score (below 50) for the LLM Suitability criterion.

3. Image-to-text applications utilizing multimodal LLMs (like GPT-4 Vision, Claude, Gemini) should receive
   normal validation scores if the LLM is doing the core understanding/reasoning.

Provide a score for each criterion, along with an overall validation score.
If the average validation score across all strategies is below %d, indicate that feedback is required.

Business Context:
%s

Industry:
%s

Strategies:
%s

Return only a valid JSON object with no markdown formatting or other text:
{
  "validatedStrategies": [
    {
      "id": "strategy_id",
      "title": "potentially revised title",
      "description": "potentially revised description",
      "impact": "High/Medium/Low",
      "complexity": "High/Medium/Low",
      "timeframe": "Short-term/Medium-term/Long-term",
      "category": "category name",
      "validationCriteria": {
        "businessAlignment": 20,
        "marketPotential": 18,
        "industryRelevance": 22,
        "clarity": 15
      },
      "validationScore": 75
    }
  ],
  "requiresFeedback": true/false (set to true if average validation score is below %d)
}
`

const (
	fallbackValidationScore = 75
	defaultClarity          = 20
)

var fallbackValidationCriteria = models.ValidationCriteria{
	BusinessAlignment: 20,
	MarketPotential:   18,
	IndustryRelevance: 22,
	Clarity:           15,
}

// ValidationInput is the company knowledge strategies are judged against.
type ValidationInput struct {
	BusinessContext string
	Industry        string
	PainPoints      []models.PainPoint
	Challenges      []string
}

// ValidationResult is the outcome of one validation pass.
type ValidationResult struct {
	Strategies       []models.ValidatedStrategy
	RequiresFeedback bool
	AverageScore     float64
}

type rawValidated struct {
	rawStrategy
	ValidationCriteria struct {
		BusinessAlignment parser.Number `json:"businessAlignment"`
		MarketPotential   parser.Number `json:"marketPotential"`
		IndustryRelevance parser.Number `json:"industryRelevance"`
		Clarity           parser.Number `json:"clarity"`
	} `json:"validationCriteria"`
	ValidationScore parser.Number `json:"validationScore"`
}

// ValidateStrategies scores each strategy on four 0-25 criteria after
// judging its relevance to the pain points and business challenges. The
// result holds exactly one entry per input strategy, in input order, under
// the input id.
func (e *Engine) ValidateStrategies(ctx context.Context, strategies []models.Strategy, in ValidationInput) (ValidationResult, error) {
	if len(strategies) == 0 {
		return ValidationResult{Strategies: []models.ValidatedStrategy{}}, nil
	}

	painPointRel, err := e.AssessPainPointRelevance(ctx, strategies, in.PainPoints)
	if err != nil {
		return ValidationResult{}, err
	}
	challengeRel, err := e.AssessChallengeRelevance(ctx, strategies, in.Challenges)
	if err != nil {
		return ValidationResult{}, err
	}

	target := int(e.validationTarget)
	prompt := fmt.Sprintf(validationPrompt, target, in.BusinessContext, in.Industry, indent(strategies), target)

	text, err := e.complete(ctx, "validation", prompt, llm.Structured)
	if err == nil {
		var resp struct {
			ValidatedStrategies []rawValidated `json:"validatedStrategies"`
			RequiresFeedback    parser.Text    `json:"requiresFeedback"`
		}
		if err = parser.Decode(text, &resp); err == nil {
			err = parser.Require(resp.ValidatedStrategies != nil, "validatedStrategies")
		}
		if err == nil {
			validated := make([]models.ValidatedStrategy, len(strategies))
			entries := matchValidated(strategies, resp.ValidatedStrategies)
			for i, s := range strategies {
				pp, ch := painPointRel[s.ID], challengeRel[s.ID]
				if entries[i] == nil {
					validated[i] = models.NewValidatedStrategy(s, fallbackValidationCriteria, fallbackValidationScore, false, pp, ch)
					continue
				}
				validated[i] = entries[i].apply(s, pp, ch)
			}
			avg := averageValidation(validated)
			return ValidationResult{
				Strategies:       validated,
				RequiresFeedback: string(resp.RequiresFeedback) == "true" || avg < e.validationTarget,
				AverageScore:     avg,
			}, nil
		}
	}
	if ctxErr := e.fallback(ctx, "validation", err); ctxErr != nil {
		return ValidationResult{}, ctxErr
	}
	return FallbackValidation(strategies, painPointRel, challengeRel), nil
}

// FallbackValidation scores every strategy 75 and never asks for feedback.
func FallbackValidation(strategies []models.Strategy, painPoints, challenges RelevanceMap) ValidationResult {
	validated := make([]models.ValidatedStrategy, len(strategies))
	for i, s := range strategies {
		validated[i] = models.NewValidatedStrategy(s, fallbackValidationCriteria, fallbackValidationScore, false, painPoints[s.ID], challenges[s.ID])
	}
	return ValidationResult{
		Strategies:       validated,
		RequiresFeedback: false,
		AverageScore:     fallbackValidationScore,
	}
}

// matchValidated pairs every input strategy with a response entry: same id
// first, then the entry at the same position if that entry names no input
// strategy.
func matchValidated(strategies []models.Strategy, entries []rawValidated) []*rawValidated {
	inputIDs := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		inputIDs[s.ID] = true
	}
	byID := make(map[string]*rawValidated, len(entries))
	for i := range entries {
		id := string(entries[i].ID)
		if _, seen := byID[id]; !seen && id != "" {
			byID[id] = &entries[i]
		}
	}

	out := make([]*rawValidated, len(strategies))
	for i, s := range strategies {
		if entry, ok := byID[s.ID]; ok {
			out[i] = entry
			continue
		}
		if i < len(entries) && !inputIDs[string(entries[i].ID)] {
			out[i] = &entries[i]
		}
	}
	return out
}

func (r *rawValidated) apply(s models.Strategy, painPoints, challenges []models.Relevance) models.ValidatedStrategy {
	revised := s
	if r.Title.Or("") != "" {
		revised.Title = string(r.Title)
	}
	if r.Description.Or("") != "" {
		revised.Description = string(r.Description)
	}
	if r.Impact.Or("") != "" {
		revised.Impact = models.ParseLevel(string(r.Impact))
	}
	if r.Complexity.Or("") != "" {
		revised.Complexity = models.ParseLevel(string(r.Complexity))
	}
	if r.Timeframe.Or("") != "" {
		revised.Timeframe = models.ParseTimeframe(string(r.Timeframe))
	}
	if r.Category.Or("") != "" {
		revised.Category = models.ParseCategory(string(r.Category))
	}

	c := r.ValidationCriteria
	clarity := float64(defaultClarity)
	if c.Clarity.Valid {
		clarity = c.Clarity.Value
	}
	criteria := models.ValidationCriteria{
		BusinessAlignment: models.Clamp(c.BusinessAlignment.Or(0), 0, 25),
		MarketPotential:   models.Clamp(c.MarketPotential.Or(0), 0, 25),
		IndustryRelevance: models.Clamp(c.IndustryRelevance.Or(0), 0, 25),
		Clarity:           models.Clamp(clarity, 0, 25),
	}
	// a reported 0 is a score, not a missing criterion
	complete := c.BusinessAlignment.Valid && c.MarketPotential.Valid && c.IndustryRelevance.Valid

	return models.NewValidatedStrategy(revised, criteria, r.ValidationScore.Or(0), complete, painPoints, challenges)
}

func averageValidation(strategies []models.ValidatedStrategy) float64 {
	if len(strategies) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range strategies {
		total += s.ValidationScore
	}
	return total / float64(len(strategies))
}
