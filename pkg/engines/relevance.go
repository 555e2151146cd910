package engines

import (
	"context"
	"fmt"
	"sort"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

const painPointRelevancePrompt = `
Evaluate how well each proposed AI strategy addresses the identified possible industry challenges.

Possible Industry Pain Points:
%s

AI Strategies:
%s

For each strategy and each possible pain point, assess:
1. Relevance score (0-10) where 0 means "not relevant at all" and 10 means "perfectly addresses this pain point"
2. Brief explanation of how this strategy typically helps companies address this common challenge
3. Expected improvement range based on industry benchmarks (e.g., "20-30%% reduction in processing time")

Return only a valid JSON object with no markdown formatting:
{
  "strategy_id": {
    "pain_point_id": {
      "relevanceScore": 8,
      "explanation": "This strategy addresses... by...",
      "expectedImprovement": "70%% reduction in X"
    }
  }
}
`

const challengeRelevancePrompt = `
Evaluate how well each proposed AI strategy addresses the identified company-specific business challenges.

Business Challenges:
%s

AI Strategies:
%s

For each strategy and each business challenge, assess:
1. Relevance score (0-10) where 0 means "not relevant at all" and 10 means "perfectly addresses this challenge"
2. Brief explanation of how this strategy directly helps address this specific business challenge
3. Expected improvement based on typical implementations (e.g., "20-30%% reduction in processing time")

Return only a valid JSON object with no markdown formatting:
{
  "strategy_id": {
    "challenge_id": {
      "relevanceScore": 8,
      "explanation": "This strategy addresses... by...",
      "expectedImprovement": "70%% reduction in X"
    }
  }
}
`

// RelevanceMap holds the relevance judgments of each strategy id, sorted by
// score, highest first.
type RelevanceMap map[string][]models.Relevance

type rawRelevance struct {
	RelevanceScore      parser.Number `json:"relevanceScore"`
	Explanation         parser.Text   `json:"explanation"`
	ExpectedImprovement parser.Text   `json:"expectedImprovement"`
}

type relevanceDefaults struct {
	explanation string
	improvement string
	painPoint   bool
}

var (
	painPointDefaults = relevanceDefaults{
		explanation: "Addresses common industry challenges.",
		improvement: "Moderate improvement expected",
		painPoint:   true,
	}
	challengeDefaults = relevanceDefaults{
		explanation: "Addresses key business challenge.",
		improvement: "Significant improvement expected",
	}
)

// AssessPainPointRelevance scores every strategy against every pain point in
// a single call. An empty pain point list or an unusable answer yields an
// empty map.
func (e *Engine) AssessPainPointRelevance(ctx context.Context, strategies []models.Strategy, painPoints []models.PainPoint) (RelevanceMap, error) {
	if len(painPoints) == 0 {
		return RelevanceMap{}, nil
	}
	prompt := fmt.Sprintf(painPointRelevancePrompt, indent(painPoints), indent(strategies))
	return e.assessRelevance(ctx, "pain_point_relevance", prompt, painPointDefaults)
}

// AssessChallengeRelevance scores every strategy against every business
// challenge, referenced as challenge_1, challenge_2, ...
func (e *Engine) AssessChallengeRelevance(ctx context.Context, strategies []models.Strategy, challenges []string) (RelevanceMap, error) {
	if len(challenges) == 0 {
		return RelevanceMap{}, nil
	}
	prompt := fmt.Sprintf(challengeRelevancePrompt, indent(ChallengeRefs(challenges)), indent(strategies))
	return e.assessRelevance(ctx, "challenge_relevance", prompt, challengeDefaults)
}

func (e *Engine) assessRelevance(ctx context.Context, stage, prompt string, defaults relevanceDefaults) (RelevanceMap, error) {
	text, err := e.complete(ctx, stage, prompt, llm.Structured)
	if err == nil {
		var raw map[string]map[string]rawRelevance
		if err = parser.Decode(text, &raw); err == nil {
			return buildRelevanceMap(raw, defaults), nil
		}
	}
	if ctxErr := e.fallback(ctx, stage, err); ctxErr != nil {
		return nil, ctxErr
	}
	return RelevanceMap{}, nil
}

func buildRelevanceMap(raw map[string]map[string]rawRelevance, defaults relevanceDefaults) RelevanceMap {
	out := make(RelevanceMap, len(raw))
	for strategyID, entities := range raw {
		ids := make([]string, 0, len(entities))
		for id := range entities {
			ids = append(ids, id)
		}
		// map order is random; sort ids so equal scores keep a stable order
		sort.Strings(ids)

		judgments := make([]models.Relevance, 0, len(ids))
		for _, id := range ids {
			r := entities[id]
			judgment := models.Relevance{
				RelevanceScore:      models.Clamp(r.RelevanceScore.Or(0), 0, 10),
				Explanation:         r.Explanation.Or(defaults.explanation),
				ExpectedImprovement: r.ExpectedImprovement.Or(defaults.improvement),
			}
			if defaults.painPoint {
				judgment.PainPointID = id
			} else {
				judgment.ChallengeID = id
			}
			judgments = append(judgments, judgment)
		}
		models.SortRelevances(judgments)
		out[strategyID] = judgments
	}
	return out
}
