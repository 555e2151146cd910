package models

import "strings"

// Level is the High/Medium/Low scale used for impact and complexity.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// ParseLevel maps any casing of high/medium/low onto a Level. Unknown
// values are kept verbatim and score zero.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return LevelHigh
	case "medium":
		return LevelMedium
	case "low":
		return LevelLow
	}
	return Level(strings.TrimSpace(raw))
}

// Timeframe is the delivery horizon of a strategy.
type Timeframe string

const (
	ShortTerm  Timeframe = "Short-term"
	MediumTerm Timeframe = "Medium-term"
	LongTerm   Timeframe = "Long-term"
)

// ParseTimeframe maps loose spellings such as "short term" onto a Timeframe.
func ParseTimeframe(raw string) Timeframe {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "short"):
		return ShortTerm
	case strings.Contains(lower, "medium"):
		return MediumTerm
	case strings.Contains(lower, "long"):
		return LongTerm
	}
	return Timeframe(strings.TrimSpace(raw))
}

// Category classifies the kind of LLM application a strategy relies on.
type Category string

const (
	CategoryConversation        Category = "conversation"
	CategoryContentGeneration   Category = "content generation"
	CategoryTextAnalysis        Category = "text analysis"
	CategoryKnowledgeManagement Category = "knowledge management"
	CategoryVisualUnderstanding Category = "visual understanding"
	CategoryAutomation          Category = "automation"
	CategoryOther               Category = "other"
)

// Categories lists every category in enumeration order.
var Categories = []Category{
	CategoryConversation,
	CategoryContentGeneration,
	CategoryTextAnalysis,
	CategoryKnowledgeManagement,
	CategoryVisualUnderstanding,
	CategoryAutomation,
	CategoryOther,
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory lower-cases raw and maps anything outside the enum to CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// ScrapedData is what the scraper extracts from a company website.
type ScrapedData struct {
	PageContent     string   `json:"pageContent"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
	Products        []string `json:"products"`
	Services        []string `json:"services"`
	AboutText       string   `json:"aboutText"`
	TeamInfo        []string `json:"teamInfo"`
}

// ContextAnalysis is the output of the context stage.
type ContextAnalysis struct {
	BusinessContext string `json:"businessContext"`
	DomainKnowledge string `json:"domainKnowledge"`
}

// PainPoint is an industry-level challenge.
type PainPoint struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	TypicalSeverity      int      `json:"typicalSeverity"`
	CommonManifestations []string `json:"commonManifestations"`
	IndustryRelevance    string   `json:"industryRelevance"`
}

// IndustryAnalysis is the output of the industry stage.
type IndustryAnalysis struct {
	Industry           string      `json:"industry"`
	IndustryInsights   []string    `json:"industryInsights"`
	PossiblePainPoints []PainPoint `json:"possiblePainPoints"`
}

// Strategy is a candidate AI-transformation initiative.
type Strategy struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Impact      Level     `json:"impact"`
	Complexity  Level     `json:"complexity"`
	Timeframe   Timeframe `json:"timeframe"`
	Category    Category  `json:"category,omitempty"`
}

// Relevance is one judgment of a strategy against a pain point or a business challenge.
type Relevance struct {
	PainPointID         string  `json:"painPointId,omitempty"`
	ChallengeID         string  `json:"challengeId,omitempty"`
	RelevanceScore      float64 `json:"relevanceScore"`
	Explanation         string  `json:"explanation"`
	ExpectedImprovement string  `json:"expectedImprovement"`
}

// ValidationCriteria holds the four 0-25 validation sub-scores.
type ValidationCriteria struct {
	BusinessAlignment float64 `json:"businessAlignment"`
	MarketPotential   float64 `json:"marketPotential"`
	IndustryRelevance float64 `json:"industryRelevance"`
	Clarity           float64 `json:"clarity"`
}

// Sum adds the four sub-scores.
func (c ValidationCriteria) Sum() float64 {
	return c.BusinessAlignment + c.MarketPotential + c.IndustryRelevance + c.Clarity
}

// StrategyWarning is a finding of the pre-implementation check.
type StrategyWarning struct {
	StrategyID string `json:"strategyId"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
}

// Warning severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// ValidatedStrategy is a Strategy scored by the validation stage.
type ValidatedStrategy struct {
	Strategy
	ValidationScore             float64            `json:"validationScore"`
	ValidationCriteria          ValidationCriteria `json:"validationCriteria"`
	PainPointRelevances         []Relevance        `json:"painPointRelevances"`
	BusinessChallengeRelevances []Relevance        `json:"businessChallengeRelevances"`
	ImplementationWarnings      []StrategyWarning  `json:"implementationWarnings,omitempty"`
	ImplementationRisk          string             `json:"implementationRisk,omitempty"`
}

// ImplementationStrategy adds the implementation plan to a ValidatedStrategy.
type ImplementationStrategy struct {
	ValidatedStrategy
	KeyBenefits         []string `json:"keyBenefits"`
	ImplementationSteps []string `json:"implementationSteps"`
	FeasibilityScore    float64  `json:"feasibilityScore,omitempty"`
}

// FeasibilityCriteria holds the four 0-25 feasibility sub-scores.
type FeasibilityCriteria struct {
	TechnicalFeasibility     float64 `json:"technicalFeasibility"`
	ResourceRequirements     float64 `json:"resourceRequirements"`
	RiskAssessment           float64 `json:"riskAssessment"`
	ImplementationComplexity float64 `json:"implementationComplexity"`
}

// Sum adds the four sub-scores.
func (c FeasibilityCriteria) Sum() float64 {
	return c.TechnicalFeasibility + c.ResourceRequirements + c.RiskAssessment + c.ImplementationComplexity
}

// FeasibilityFeedback is the per-strategy output of the feasibility stage.
type FeasibilityFeedback struct {
	FeasibilityScore     float64             `json:"feasibilityScore"`
	FeasibilityCriteria  FeasibilityCriteria `json:"feasibilityCriteria"`
	TechnicalChallenges  []string            `json:"technicalChallenges"`
	ResourceRequirements []string            `json:"resourceRequirements"`
	RiskFactors          []string            `json:"riskFactors"`
	MitigationStrategies []string            `json:"mitigationStrategies"`
	RecommendedApproach  string              `json:"recommendedApproach"`
}

// FeasibilityAnalysis is an ImplementationStrategy together with its feasibility feedback.
type FeasibilityAnalysis struct {
	ImplementationStrategy
	FeasibilityCriteria  FeasibilityCriteria `json:"feasibilityCriteria"`
	TechnicalChallenges  []string            `json:"technicalChallenges"`
	ResourceRequirements []string            `json:"resourceRequirements"`
	RiskFactors          []string            `json:"riskFactors"`
	MitigationStrategies []string            `json:"mitigationStrategies"`
	RecommendedApproach  string              `json:"recommendedApproach,omitempty"`
}

// Feedback returns the feasibility feedback carried by the analysis.
func (f FeasibilityAnalysis) Feedback() FeasibilityFeedback {
	return FeasibilityFeedback{
		FeasibilityScore:     f.FeasibilityScore,
		FeasibilityCriteria:  f.FeasibilityCriteria,
		TechnicalChallenges:  f.TechnicalChallenges,
		ResourceRequirements: f.ResourceRequirements,
		RiskFactors:          f.RiskFactors,
		MitigationStrategies: f.MitigationStrategies,
		RecommendedApproach:  f.RecommendedApproach,
	}
}

// FeasibilityResult is the batch output of a feasibility check.
type FeasibilityResult struct {
	Strategies         []FeasibilityAnalysis `json:"strategies"`
	TechnicalFeedback  string                `json:"technicalFeedback"`
	AverageScore       float64               `json:"averageScore"`
	RequiresRefinement bool                  `json:"requiresRefinement"`
}

// ScoredStrategy is a final, ranked strategy.
type ScoredStrategy struct {
	FeasibilityAnalysis
	OpportunityScore float64 `json:"opportunityScore"`
	CombinedScore    float64 `json:"combinedScore"`
}

// Opportunity is the proposal-facing view of a ranked strategy.
type Opportunity struct {
	ID                          string      `json:"id"`
	Title                       string      `json:"title"`
	Description                 string      `json:"description"`
	Impact                      Level       `json:"impact"`
	Complexity                  Level       `json:"complexity"`
	Timeframe                   Timeframe   `json:"timeframe"`
	Category                    Category    `json:"category,omitempty"`
	KeyBenefits                 []string    `json:"keyBenefits"`
	ImplementationSteps         []string    `json:"implementationSteps"`
	PainPointRelevances         []Relevance `json:"painPointRelevances,omitempty"`
	BusinessChallengeRelevances []Relevance `json:"businessChallengeRelevances,omitempty"`
	ValidationScore             float64     `json:"validationScore,omitempty"`
	FeasibilityScore            float64     `json:"feasibilityScore,omitempty"`
	OpportunityScore            float64     `json:"opportunityScore,omitempty"`
	CombinedScore               float64     `json:"combinedScore,omitempty"`
	TechnicalChallenges         []string    `json:"technicalChallenges,omitempty"`
	ResourceRequirements        []string    `json:"resourceRequirements,omitempty"`
	RiskFactors                 []string    `json:"riskFactors,omitempty"`
	MitigationStrategies        []string    `json:"mitigationStrategies,omitempty"`
}

// CompanyOverview is only present on canned proposals.
type CompanyOverview struct {
	Description  string `json:"description"`
	FoundedYear  string `json:"foundedYear"`
	Headquarters string `json:"headquarters"`
	Employees    string `json:"employees"`
}

// IndustryOverview is only present on canned proposals.
type IndustryOverview struct {
	IndustryName string   `json:"industryName"`
	MarketSize   string   `json:"marketSize"`
	GrowthRate   string   `json:"growthRate"`
	KeyTrends    []string `json:"keyTrends"`
}

// RolloutPlan is only present on canned proposals.
type RolloutPlan struct {
	Approach             string   `json:"approach"`
	Timeline             string   `json:"timeline"`
	ResourceRequirements []string `json:"resourceRequirements"`
}

// RiskAssessment is only present on canned proposals.
type RiskAssessment struct {
	PotentialRisks       []string `json:"potentialRisks"`
	MitigationStrategies []string `json:"mitigationStrategies"`
}

// Proposal is the final artifact of a pipeline run.
type Proposal struct {
	ID                     string            `json:"id"`
	CompanyName            string            `json:"companyName"`
	CompanyURL             string            `json:"companyUrl"`
	Industry               string            `json:"industry"`
	BusinessContext        string            `json:"businessContext"`
	PossiblePainPoints     []PainPoint       `json:"possiblePainPoints,omitempty"`
	AIOpportunities        []Opportunity     `json:"aiOpportunities"`
	BusinessChallenges     []string          `json:"businessChallenges,omitempty"`
	CompanyOverview        *CompanyOverview  `json:"companyOverview,omitempty"`
	IndustryAnalysis       *IndustryOverview `json:"industryAnalysis,omitempty"`
	CurrentTechStack       []string          `json:"currentTechStack,omitempty"`
	ImplementationStrategy *RolloutPlan      `json:"implementationStrategy,omitempty"`
	RiskAssessment         *RiskAssessment   `json:"riskAssessment,omitempty"`
	RecommendedApproach    string            `json:"recommendedApproach"`
	NextSteps              []string          `json:"nextSteps"`
	ImagePrompts           []string          `json:"imagePrompts"`
}

// PrioritizedChallenge is one ranked challenge of an executive summary.
type PrioritizedChallenge struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Severity          int      `json:"severity"`
	Manifestations    []string `json:"manifestations"`
	IndustryRelevance string   `json:"industryRelevance"`
}

// ChallengeSolution pairs a challenge with the opportunity addressing it.
type ChallengeSolution struct {
	Challenge      string `json:"challenge"`
	Solution       string `json:"solution"`
	RelevanceScore int    `json:"relevanceScore"`
	ExpectedImpact string `json:"expectedImpact"`
}

// ExecutiveSummary is the report-ready summary derived from a proposal.
type ExecutiveSummary struct {
	ProblemStatement       string                 `json:"problemStatement"`
	PartnershipProposals   []string               `json:"partnershipProposals"`
	TimingPoints           []string               `json:"timingPoints"`
	BusinessContextSummary string                 `json:"businessContextSummary"`
	PrioritizedChallenges  []PrioritizedChallenge `json:"prioritizedChallenges"`
	ChallengeSolutions     []ChallengeSolution    `json:"challengeSolutions"`
	IndustryTerminology    []string               `json:"industryTerminology"`
}

// NarrativeContent is the pregenerated report text of a company.
type NarrativeContent struct {
	CompanyContext          string           `json:"companyContext"`
	KeyBusinessChallenges   []string         `json:"keyBusinessChallenges"`
	StrategicOpportunities  []string         `json:"strategicOpportunities"`
	ExecutiveSummaryContent ExecutiveSummary `json:"executiveSummaryContent"`
	GeneratedAt             int64            `json:"generatedAt"`
}
