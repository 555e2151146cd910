package engines

import (
	"context"
	"fmt"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/parser"
)

const challengesPrompt = `
You are an AI business consultant specialized in identifying business challenges and opportunities.
Based on the following business context, identify 5-7 common business challenges or issues
that could be addressed or improved with AI solutions.

Business Context:
%s

For each business challenge:
1. Clearly articulate the specific challenge or inefficiency
2. Provide sufficient detail to understand the business impact
3. Ensure each challenge is distinct from others
4. Focus on actual pain points, not just general improvements

Format your response as a valid JSON array of strings, each describing a single business challenge.
Keep each challenge description to 2-3 sentences.

Example:
[
  "High customer churn due to inconsistent service quality across channels and lack of personalization, resulting in revenue loss.",
  "Manual data processing consuming 30+ hours weekly, leading to reporting delays and decision-making based on outdated information."
]
`

// GenerateChallenges lists company-specific business challenges. Anything
// other than a JSON array of strings yields an empty list.
func (e *Engine) GenerateChallenges(ctx context.Context, businessContext string) ([]string, error) {
	text, err := e.complete(ctx, "businessChallenges", fmt.Sprintf(challengesPrompt, businessContext), llm.Structured)
	if err == nil {
		var challenges parser.Strings
		if err = parser.Decode(text, &challenges); err == nil {
			if challenges == nil {
				return []string{}, nil
			}
			return challenges, nil
		}
	}
	if ctxErr := e.fallback(ctx, "businessChallenges", err); ctxErr != nil {
		return nil, ctxErr
	}
	return []string{}, nil
}

// ChallengeRef is the identified form of a business challenge used in prompts
// and relevance judgments.
type ChallengeRef struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ChallengeRefs numbers challenges as challenge_1, challenge_2, ...
func ChallengeRefs(challenges []string) []ChallengeRef {
	refs := make([]ChallengeRef, len(challenges))
	for i, c := range challenges {
		refs[i] = ChallengeRef{ID: fmt.Sprintf("challenge_%d", i+1), Description: c}
	}
	return refs
}
