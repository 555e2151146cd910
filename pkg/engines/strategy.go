package engines

import (
	"context"
	"fmt"
	"strings"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

// Feedback steers a regeneration round towards the strategies that scored low.
type Feedback struct {
	Strategies       []models.ValidatedStrategy `json:"strategies"`
	FeedbackComments []string                   `json:"feedbackComments"`
	IndustryContext  string                     `json:"industryContext"`
}

const feedbackSection = `
Previous strategies that need improvement:
%s

Feedback comments:
%s

Additional industry context:
%s

Please refine these strategies by addressing the feedback. Keep what works well, and improve the areas with low scores.
For strategies with validation scores above 80, maintain their strengths while addressing any weaknesses.
For strategies with low validation scores (below 80), consider more significant revisions or replacements.
`

const strategyPrompt = `
You are an AI transformation consultant specializing in creating strategic opportunities.
Based on the following business challenges and industry insights, generate
3-5 specific AI transformation opportunities that drive modernization, automation, or growth for this company.

IMPORTANT: Focus ONLY on strategies that leverage Large Language Models (LLMs) as the PRIMARY technology.
Each strategy must have the LLM as the core reasoning/processing component, with text as the primary output.

Acceptable LLM applications include:
- Text-to-text: Traditional LLM applications where both input and output are text
- Image-to-text: Multimodal LLM applications where images can be inputs, but the LLM processes them to produce text outputs
  (e.g., document analysis, visual content understanding, image-based Q&A)

DO NOT suggest strategies that use:
- Traditional machine learning or deep learning models with no LLM component
- Pure computer vision applications not utilizing LLMs
- Image generation or text-to-image models
- Audio processing, speech recognition, or speech synthesis as the primary focus
- Time series forecasting or prediction
- Recommendation systems not powered by LLMs
- Anomaly detection systems not powered by LLMs
- Tabular data analysis without LLM reasoning

Each strategy MUST be directly implementable with commercial LLMs such as GPT-4 (including Vision), Claude, Gemini,
or similar foundation models as their PRIMARY technology. All strategies MUST be categorized into one of these categories:

1. Conversation: chatbots, virtual assistants, customer support automation, interactive dialogue systems
2. Content Generation: document/report creation, marketing content, code generation, writing assistance
3. Text Analysis: document understanding, sentiment analysis, information extraction, pattern recognition in text
4. Knowledge Management: knowledge bases, documentation automation, learning systems, information organization
5. Visual Understanding: document analysis with images, visual content interpretation, image-based Q&A
6. Automation: process automation using text or image inputs, workflow optimization with LLM processing
7. Other: ONLY when the strategy doesn't clearly fit into any of the above categories

FOR EACH STRATEGY, EXPLICITLY MENTION:
- Which specific LLM capabilities are being leveraged (understanding, generation, etc.)
- How the LLM adds unique value beyond traditional approaches
- What type of LLM would be appropriate (base model requirements)

TEST EACH STRATEGY: Ask yourself "Is the LLM the core intelligence in this system?" If not, the strategy is unsuitable.

Business Challenges:
%s

Industry Insights:
%s
%s

Return only a valid JSON object with no markdown formatting or other text:
{
  "strategies": [
    {
      "id": "unique_id_1",
      "title": "strategy title",
      "description": "detailed description",
      "impact": "High/Medium/Low",
      "complexity": "High/Medium/Low",
      "timeframe": "Short-term/Medium-term/Long-term",
      "category": "one of: conversation, content generation, text analysis, knowledge management, visual understanding, automation, other"
    }
  ]
}
`

type rawStrategy struct {
	ID          parser.Text `json:"id"`
	Title       parser.Text `json:"title"`
	Description parser.Text `json:"description"`
	Impact      parser.Text `json:"impact"`
	Complexity  parser.Text `json:"complexity"`
	Timeframe   parser.Text `json:"timeframe"`
	Category    parser.Text `json:"category"`
}

func (r rawStrategy) toStrategy() models.Strategy {
	return models.Strategy{
		ID:          strings.TrimSpace(string(r.ID)),
		Title:       string(r.Title),
		Description: string(r.Description),
		Impact:      models.ParseLevel(string(r.Impact)),
		Complexity:  models.ParseLevel(string(r.Complexity)),
		Timeframe:   models.ParseTimeframe(string(r.Timeframe)),
		Category:    models.ParseCategory(string(r.Category)),
	}
}

// CreateStrategies asks for 3-5 LLM-centred strategies. With feedback, the
// low-scoring strategies and coaching comments are embedded in the prompt.
// Unlike the other stages it reports failures, leaving the fallback policy
// to the caller.
func (e *Engine) CreateStrategies(ctx context.Context, challenges, insights []string, feedback *Feedback) ([]models.Strategy, error) {
	section := ""
	if feedback != nil && len(feedback.Strategies) > 0 {
		industryContext := feedback.IndustryContext
		if industryContext == "" {
			industryContext = "No additional context"
		}
		section = fmt.Sprintf(feedbackSection,
			indent(feedback.Strategies),
			strings.Join(feedback.FeedbackComments, "\n"),
			industryContext,
		)
	}
	prompt := fmt.Sprintf(strategyPrompt, numbered(challenges), numbered(insights), section)

	text, err := e.complete(ctx, "strategies", prompt, llm.Structured)
	if err != nil {
		return nil, fmt.Errorf("strategy generation failed: %w", err)
	}

	var resp struct {
		Strategies []rawStrategy `json:"strategies"`
	}
	if err := parser.Decode(text, &resp); err != nil {
		return nil, fmt.Errorf("strategy generation failed: %w", err)
	}
	if resp.Strategies == nil {
		return nil, fmt.Errorf("strategy generation failed: %w", parser.Require(false, "strategies"))
	}

	strategies := make([]models.Strategy, len(resp.Strategies))
	for i, raw := range resp.Strategies {
		strategies[i] = raw.toStrategy()
	}
	uniqueIDs(strategies)
	return strategies, nil
}

// uniqueIDs gives every strategy with a blank or repeated id the first free
// strategy_<n>, starting from its position. The first holder of an id keeps it.
func uniqueIDs(strategies []models.Strategy) {
	taken := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		if s.ID != "" {
			taken[s.ID] = true
		}
	}
	seen := make(map[string]bool, len(strategies))
	for i := range strategies {
		id := strategies[i].ID
		if id != "" && !seen[id] {
			seen[id] = true
			continue
		}
		n := i + 1
		candidate := fmt.Sprintf("strategy_%d", n)
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("strategy_%d", n)
		}
		taken[candidate] = true
		seen[candidate] = true
		strategies[i].ID = candidate
	}
}

// FallbackStrategies is the single strategy used when generation fails.
func FallbackStrategies() []models.Strategy {
	return []models.Strategy{{
		ID:          "strategy_1",
		Title:       "AI-Powered Process Automation",
		Description: "Implement AI to automate routine business processes",
		Impact:      models.LevelMedium,
		Complexity:  models.LevelMedium,
		Timeframe:   models.MediumTerm,
		Category:    models.CategoryAutomation,
	}}
}

func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}
