// Package scoring ranks strategies. All functions are pure.
package scoring

import (
	"sort"

	"ai-proposal-api/pkg/models"
)

const (
	impactWeight     = 0.30
	complexityWeight = 0.15
	timeframeWeight  = 0.10
	painPointWeight  = 0.15
	challengeWeight  = 0.20

	quickWinBonus     = 10
	quickWinThreshold = 80

	feasibilityWeight = 0.6
	opportunityWeight = 0.4

	topRelevances = 3
)

var impactScores = map[models.Level]float64{
	models.LevelHigh:   100,
	models.LevelMedium: 60,
	models.LevelLow:    20,
}

// lower complexity scores higher
var complexityScores = map[models.Level]float64{
	models.LevelHigh:   20,
	models.LevelMedium: 60,
	models.LevelLow:    100,
}

var timeframeScores = map[models.Timeframe]float64{
	models.ShortTerm:  100,
	models.MediumTerm: 60,
	models.LongTerm:   20,
}

// OpportunityScore weighs impact, complexity, timeframe and relevance, plus a
// flat quick-win bonus. The result is not clamped and can exceed 100.
func OpportunityScore(s models.ValidatedStrategy) float64 {
	impact := impactScores[s.Impact]
	complexity := complexityScores[s.Complexity]
	timeframe := timeframeScores[s.Timeframe]

	bonus := 0.0
	if impact > quickWinThreshold && complexity > quickWinThreshold && timeframe > quickWinThreshold {
		bonus = quickWinBonus
	}

	return impact*impactWeight +
		complexity*complexityWeight +
		timeframe*timeframeWeight +
		RelevanceScore(s.PainPointRelevances)*painPointWeight +
		RelevanceScore(s.BusinessChallengeRelevances)*challengeWeight +
		bonus
}

// CombinedScore blends feasibility and opportunity. A missing feasibility score counts as 0.
func CombinedScore(s models.ImplementationStrategy) float64 {
	return s.FeasibilityScore*feasibilityWeight + OpportunityScore(s.ValidatedStrategy)*opportunityWeight
}

// RelevanceScore is the mean of the three best relevance scores on a 0-100 scale, or 0 without judgments.
func RelevanceScore(rs []models.Relevance) float64 {
	if len(rs) == 0 {
		return 0
	}
	scores := make([]float64, len(rs))
	for i, r := range rs {
		scores[i] = r.RelevanceScore
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	if len(scores) > topRelevances {
		scores = scores[:topRelevances]
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores)) * 10
}

// Rank scores every analysis and orders them by combined score, highest first.
func Rank(analyses []models.FeasibilityAnalysis) []models.ScoredStrategy {
	ranked := make([]models.ScoredStrategy, len(analyses))
	for i, a := range analyses {
		ranked[i] = models.NewScoredStrategy(a, OpportunityScore(a.ValidatedStrategy), CombinedScore(a.ImplementationStrategy))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore > ranked[j].CombinedScore
	})
	return ranked
}
