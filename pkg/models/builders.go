package models

import (
	"math"
	"sort"
	"strings"
)

// MaxListItems caps every benefits/steps/risk list.
const MaxListItems = 5

// CapList drops blank entries and keeps at most MaxListItems of the rest.
func CapList(items []string) []string {
	out := make([]string, 0, min(len(items), MaxListItems))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, item)
		if len(out) == MaxListItems {
			break
		}
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// SortRelevances orders judgments by score, highest first.
func SortRelevances(rs []Relevance) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].RelevanceScore > rs[j].RelevanceScore
	})
}

// NewValidatedStrategy attaches a validation result to s.
// The score is the rounded criteria sum when complete is true, otherwise reported; both end up in [1,100].
func NewValidatedStrategy(s Strategy, criteria ValidationCriteria, reported float64, complete bool, painPoints, challenges []Relevance) ValidatedStrategy {
	score := reported
	if complete {
		score = math.Round(criteria.Sum())
	}
	if painPoints == nil {
		painPoints = []Relevance{}
	}
	if challenges == nil {
		challenges = []Relevance{}
	}
	return ValidatedStrategy{
		Strategy:                    s,
		ValidationScore:             Clamp(score, 1, 100),
		ValidationCriteria:          criteria,
		PainPointRelevances:         painPoints,
		BusinessChallengeRelevances: challenges,
	}
}

// NewImplementationStrategy attaches an implementation plan to v.
func NewImplementationStrategy(v ValidatedStrategy, benefits, steps []string, feasibility float64) ImplementationStrategy {
	return ImplementationStrategy{
		ValidatedStrategy:   v,
		KeyBenefits:         CapList(benefits),
		ImplementationSteps: CapList(steps),
		FeasibilityScore:    Clamp(feasibility, 0, 100),
	}
}

// NewFeasibilityAnalysis attaches feasibility feedback to s.
// The feasibility score is always the criteria sum, whatever the feedback reported.
func NewFeasibilityAnalysis(s ImplementationStrategy, fb FeasibilityFeedback) FeasibilityAnalysis {
	criteria := FeasibilityCriteria{
		TechnicalFeasibility:     Clamp(fb.FeasibilityCriteria.TechnicalFeasibility, 0, 25),
		ResourceRequirements:     Clamp(fb.FeasibilityCriteria.ResourceRequirements, 0, 25),
		RiskAssessment:           Clamp(fb.FeasibilityCriteria.RiskAssessment, 0, 25),
		ImplementationComplexity: Clamp(fb.FeasibilityCriteria.ImplementationComplexity, 0, 25),
	}
	s.FeasibilityScore = criteria.Sum()
	s.ImplementationSteps = CapList(s.ImplementationSteps)
	s.KeyBenefits = CapList(s.KeyBenefits)
	return FeasibilityAnalysis{
		ImplementationStrategy: s,
		FeasibilityCriteria:    criteria,
		TechnicalChallenges:    CapList(fb.TechnicalChallenges),
		ResourceRequirements:   CapList(fb.ResourceRequirements),
		RiskFactors:            CapList(fb.RiskFactors),
		MitigationStrategies:   CapList(fb.MitigationStrategies),
		RecommendedApproach:    fb.RecommendedApproach,
	}
}

// NewScoredStrategy attaches the ranking scores to f.
func NewScoredStrategy(f FeasibilityAnalysis, opportunity, combined float64) ScoredStrategy {
	return ScoredStrategy{FeasibilityAnalysis: f, OpportunityScore: opportunity, CombinedScore: combined}
}

// NewOpportunity projects a ranked strategy onto the proposal shape.
func NewOpportunity(s ScoredStrategy) Opportunity {
	return Opportunity{
		ID:                          s.ID,
		Title:                       s.Title,
		Description:                 s.Description,
		Impact:                      s.Impact,
		Complexity:                  s.Complexity,
		Timeframe:                   s.Timeframe,
		Category:                    s.Category,
		KeyBenefits:                 nonNil(s.KeyBenefits),
		ImplementationSteps:         nonNil(CapList(s.ImplementationSteps)),
		PainPointRelevances:         s.PainPointRelevances,
		BusinessChallengeRelevances: s.BusinessChallengeRelevances,
		ValidationScore:             s.ValidationScore,
		FeasibilityScore:            s.FeasibilityScore,
		OpportunityScore:            s.OpportunityScore,
		CombinedScore:               s.CombinedScore,
		TechnicalChallenges:         s.TechnicalChallenges,
		ResourceRequirements:        s.ResourceRequirements,
		RiskFactors:                 s.RiskFactors,
		MitigationStrategies:        s.MitigationStrategies,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
