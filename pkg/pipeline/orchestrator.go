// Package pipeline turns a company name and website into a ranked AI
// transformation proposal.
//
// Every stage result is cached per company, so a rerun resumes where the
// previous one stopped. GenerateProposal never fails: any error that escapes
// the stage fallbacks yields the canned MockProposal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/engines"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/narrative"
	"ai-proposal-api/pkg/refine"
	"ai-proposal-api/pkg/scoring"
)

// Proposal outcomes reported to the OutcomeRecorder.
const (
	OutcomeComputed = "computed"
	OutcomeCached   = "cached"
	OutcomeMock     = "mock"
)

const (
	recommendedApproach     = "Implement highest-scoring opportunities first, focusing on quick wins with low complexity."
	refinementIndustryNote  = "Based on industry trends and specifics"
	validationCoachAlign    = "Focus on improving alignment with business context and market potential"
	validationCoachSpecific = "Consider more specific implementation approaches in the description"
)

var (
	nextSteps = []string{
		"Conduct detailed technical assessment of selected opportunities",
		"Develop project plan with key stakeholders",
		"Allocate initial resources for first phase",
		"Set up measurement framework",
	}
	imagePrompts = []string{
		"AI transformation roadmap diagram",
		"Strategic opportunity matrix showing impact vs complexity",
		"Implementation timeline with key milestones",
	}
)

// Scraper fetches the public content of a company website.
type Scraper interface {
	Scrape(ctx context.Context, url string) (models.ScrapedData, error)
}

// Indexer archives finished proposals.
type Indexer interface {
	IndexProposal(ctx context.Context, p models.Proposal) error
}

// OutcomeRecorder counts how proposals were produced.
type OutcomeRecorder interface {
	RecordOutcome(company, outcome string)
}

// Orchestrator runs the proposal pipeline.
type Orchestrator struct {
	engine    *engines.Engine
	scraper   Scraper
	cache     *cache.Cache
	narrative *narrative.Builder
	indexer   Indexer
	recorder  OutcomeRecorder
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
	tasks     *narrativeTasks
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithIndexer archives every computed proposal in the background.
func WithIndexer(ix Indexer) Option {
	return func(o *Orchestrator) { o.indexer = ix }
}

// WithOutcomeRecorder reports the outcome of every GenerateProposal call.
func WithOutcomeRecorder(r OutcomeRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.narrative.Now = now
	}
}

// New creates an orchestrator. Every completion call is bounded by
// cfg.CallTimeout.
func New(svc llm.CompletionService, scraper Scraper, c *cache.Cache, cfg Config, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: engines.New(llm.WithTimeout(svc, cfg.CallTimeout), logger,
			engines.WithValidationTarget(cfg.ValidationAverageThreshold)),
		scraper:   scraper,
		cache:     c,
		narrative: narrative.New(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		tasks:     newNarrativeTasks(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Engine exposes the stage engines, for the prompt passthrough routes.
func (o *Orchestrator) Engine() *engines.Engine { return o.engine }

// Cache returns the stage cache.
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

// GenerateProposal returns the cached proposal of the company when there is
// one, and otherwise runs the pipeline. It always returns a proposal.
func (o *Orchestrator) GenerateProposal(ctx context.Context, companyURL, companyName string) (p models.Proposal) {
	companyID := cache.CompanyID(companyName)
	logger := o.logger.With(zap.String("company", companyID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked, returning mock proposal", zap.Any("panic", r))
			o.record(companyID, OutcomeMock)
			p = MockProposal(companyName, companyURL, o.now())
		}
	}()

	if o.cache.Enabled() {
		if cached, ok := o.LoadCachedProposal(companyName, companyURL); ok {
			logger.Info("returning cached proposal")
			o.record(companyID, OutcomeCached)
			o.schedule(cached, false)
			return cached
		}
	}

	proposal, err := o.run(ctx, companyID, companyURL, companyName)
	if err != nil {
		logger.Error("pipeline failed, returning mock proposal", zap.Error(err))
		o.record(companyID, OutcomeMock)
		return MockProposal(companyName, companyURL, o.now())
	}
	o.record(companyID, OutcomeComputed)
	o.schedule(proposal, true)
	return proposal
}

// LoadCachedProposal returns the cached final proposal when it belongs to
// companyName, compared case-insensitively, and, unless companyURL is
// empty, to companyURL.
func (o *Orchestrator) LoadCachedProposal(companyName, companyURL string) (models.Proposal, bool) {
	var p models.Proposal
	if !o.cache.Load(cache.CompanyID(companyName), cache.StageFinalProposal, &p) {
		return models.Proposal{}, false
	}
	if !strings.EqualFold(p.CompanyName, companyName) || (companyURL != "" && p.CompanyURL != companyURL) {
		o.logger.Info("cached proposal belongs to another company",
			zap.String("cachedName", p.CompanyName),
			zap.String("cachedUrl", p.CompanyURL),
			zap.String("requestedName", companyName),
			zap.String("requestedUrl", companyURL),
		)
		return models.Proposal{}, false
	}
	return p, true
}

func (o *Orchestrator) record(companyID, outcome string) {
	if o.recorder != nil {
		o.recorder.RecordOutcome(companyID, outcome)
	}
}

// stage returns the cached value of name or computes and caches it.
func stage[T any](o *Orchestrator, companyID, name string, compute func() (T, error)) (T, error) {
	var v T
	if o.cache.Read(companyID, name, &v) {
		o.logger.Info("stage loaded from cache", zap.String("company", companyID), zap.String("stage", name))
		return v, nil
	}
	o.logger.Info("stage started", zap.String("company", companyID), zap.String("stage", name))
	v, err := compute()
	if err != nil {
		return v, fmt.Errorf("%s: %w", name, err)
	}
	_ = o.cache.Write(companyID, name, v)
	return v, nil
}

func (o *Orchestrator) run(ctx context.Context, companyID, companyURL, companyName string) (models.Proposal, error) {
	scraped, err := stage(o, companyID, cache.StageScrapedData, func() (models.ScrapedData, error) {
		data, err := o.scraper.Scrape(ctx, companyURL)
		if err != nil {
			if ctx.Err() != nil {
				return models.ScrapedData{}, ctx.Err()
			}
			o.logger.Warn("scraping failed, using placeholder content", zap.String("company", companyID), zap.Error(err))
			return FallbackScrape(companyName, companyURL), nil
		}
		return data, nil
	})
	if err != nil {
		return models.Proposal{}, err
	}

	analysis, err := stage(o, companyID, cache.StageContextAnalysis, func() (models.ContextAnalysis, error) {
		return o.engine.AnalyzeContext(ctx, scraped, companyName)
	})
	if err != nil {
		return models.Proposal{}, err
	}

	challenges, err := stage(o, companyID, cache.StageBusinessChallenges, func() ([]string, error) {
		return o.engine.GenerateChallenges(ctx, analysis.BusinessContext)
	})
	if err != nil {
		return models.Proposal{}, err
	}

	industry, err := stage(o, companyID, cache.StageIndustryInsights, func() (models.IndustryAnalysis, error) {
		return o.engine.AnalyzeIndustry(ctx, analysis.DomainKnowledge)
	})
	if err != nil {
		return models.Proposal{}, err
	}

	strategies, err := stage(o, companyID, cache.StageStrategies, func() ([]models.Strategy, error) {
		s, err := o.engine.CreateStrategies(ctx, challenges, industry.IndustryInsights, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("strategy generation failed, using fallback", zap.String("company", companyID), zap.Error(err))
			return engines.FallbackStrategies(), nil
		}
		return s, nil
	})
	if err != nil {
		return models.Proposal{}, err
	}

	input := engines.ValidationInput{
		BusinessContext: analysis.BusinessContext,
		Industry:        industry.Industry,
		PainPoints:      industry.PossiblePainPoints,
		Challenges:      challenges,
	}
	validated, err := stage(o, companyID, cache.StageOptimizedStrategies, func() ([]models.ValidatedStrategy, error) {
		return o.optimizeStrategies(ctx, strategies, input, challenges, industry.IndustryInsights)
	})
	if err != nil {
		return models.Proposal{}, err
	}

	pre := engines.ValidateBeforeImplementation(validated, o.logger)
	if len(pre.Warnings) > 0 {
		o.logger.Warn("pre-implementation validation found issues",
			zap.String("company", companyID),
			zap.Int("warnings", len(pre.Warnings)),
			zap.Bool("allValid", pre.AllValid),
		)
	}
	_ = o.cache.Write(companyID, cache.StageEnrichedStrategies, pre.Strategies)

	plans, err := o.planImplementation(ctx, companyID, pre.Strategies)
	if err != nil {
		return models.Proposal{}, err
	}

	ranked, err := stage(o, companyID, cache.StageFinalImplementations, func() ([]models.ScoredStrategy, error) {
		return o.refineFeasibility(ctx, companyID, plans)
	})
	if err != nil {
		return models.Proposal{}, err
	}

	proposal := o.assemble(companyID, companyURL, companyName, analysis, industry, challenges, ranked)
	_ = o.cache.Write(companyID, cache.StageFinalProposal, proposal)
	o.logger.Info("proposal generated", zap.String("company", companyID), zap.Int("opportunities", len(proposal.AIOpportunities)))
	return proposal, nil
}

// FallbackScrape is the placeholder page used when the website cannot be read.
func FallbackScrape(companyName, companyURL string) models.ScrapedData {
	return models.ScrapedData{
		PageContent:     companyName + " website content",
		Title:           companyName + " - Innovative Solutions",
		MetaDescription: companyName + " provides innovative solutions for modern businesses.",
		Links:           []string{companyURL},
		Images:          []string{},
		Products:        []string{"Products"},
		Services:        []string{"Services"},
		AboutText:       companyName + " is a company focused on innovation.",
		TeamInfo:        []string{},
	}
}

func validationScore(s models.ValidatedStrategy) float64 { return s.ValidationScore }
func validatedID(s models.ValidatedStrategy) string       { return s.ID }
func strategyID(s models.Strategy) string                 { return s.ID }

// optimizeStrategies validates the strategies and, when the batch asks for
// feedback, regenerates the weak ones until they pass or the budget runs out.
func (o *Orchestrator) optimizeStrategies(ctx context.Context, strategies []models.Strategy, input engines.ValidationInput, challenges, insights []string) ([]models.ValidatedStrategy, error) {
	first, err := o.engine.ValidateStrategies(ctx, strategies, input)
	if err != nil {
		return nil, err
	}
	if !first.RequiresFeedback {
		return first.Strategies, nil
	}
	o.logger.Info("validation below target, refining strategies", zap.Float64("average", first.AverageScore))

	res, err := refine.Run(ctx, refine.Config[models.ValidatedStrategy]{
		MaxIterations: o.cfg.MaxValidationIterations,
		Threshold:     o.cfg.StrategyThreshold,
		ID:            validatedID,
		Score:         validationScore,
		Refine: func(ctx context.Context, iteration int, current, low []models.ValidatedStrategy) ([]models.ValidatedStrategy, error) {
			o.logger.Info("refining strategies", zap.Int("iteration", iteration), zap.Int("low", len(low)))
			feedback := &engines.Feedback{
				Strategies: low,
				FeedbackComments: []string{
					fmt.Sprintf("Overall validation score (%.1f) is below target threshold (%g)", average(current), o.cfg.ValidationAverageThreshold),
					validationCoachAlign,
					validationCoachSpecific,
				},
				IndustryContext: refinementIndustryNote,
			}
			regenerated, err := o.engine.CreateStrategies(ctx, challenges, insights, feedback)
			if err != nil {
				return nil, err
			}
			regenerated = regenerated[:min(len(regenerated), len(low))]
			for i := range regenerated {
				regenerated[i].ID = low[i].ID
			}

			base := make([]models.Strategy, len(current))
			for i, s := range current {
				base[i] = s.Strategy
			}
			next, err := o.engine.ValidateStrategies(ctx, refine.Merge(base, regenerated, strategyID), input)
			if err != nil {
				return nil, err
			}
			return next.Strategies, nil
		},
	}, first.Strategies)
	if err != nil {
		return nil, err
	}

	best := refine.AtLeast(res.Best, validationScore, o.cfg.MinStrategyScore)
	refine.SortByScore(best, validationScore)
	o.logger.Info("strategy refinement finished",
		zap.Int("rounds", res.Rounds),
		zap.Int("kept", len(best)),
		zap.Int("dropped", len(res.Best)-len(best)),
	)
	return best, nil
}

func average(strategies []models.ValidatedStrategy) float64 {
	if len(strategies) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range strategies {
		sum += s.ValidationScore
	}
	return sum / float64(len(strategies))
}

func (o *Orchestrator) planOptions() engines.PlanOptions {
	opts := engines.DefaultPlanOptions()
	opts.FailOnError = o.cfg.FailOnError
	opts.RequireMinimumStrategies = true
	opts.MinimumStrategies = o.cfg.MinimumStrategies
	return opts
}

func (o *Orchestrator) planImplementation(ctx context.Context, companyID string, strategies []models.ValidatedStrategy) ([]models.ImplementationStrategy, error) {
	var plans []models.ImplementationStrategy
	if o.cache.Read(companyID, cache.StageImplementation, &plans) {
		return plans, nil
	}
	o.logger.Info("stage started", zap.String("company", companyID), zap.String("stage", cache.StageImplementation))

	// Planning runs strict so a failed model call reaches the fallback
	// below. Too few strategies is not a failure when degrading: the
	// lenient planner tops them up with generic plans without a model call.
	strict := o.planOptions()
	strict.FailOnError = true
	plans, err := o.engine.PlanImplementation(ctx, strategies, strict)
	var tooFew *engines.NoValidStrategiesError
	if err != nil && !o.cfg.FailOnError && ctx.Err() == nil && errors.As(err, &tooFew) {
		plans, err = o.engine.PlanImplementation(ctx, strategies, o.planOptions())
	}
	if err == nil {
		_ = o.cache.Write(companyID, cache.StageImplementation, plans)
		return plans, nil
	}
	if ctx.Err() != nil || o.cfg.FailOnError {
		return nil, fmt.Errorf("%s: %w", cache.StageImplementation, err)
	}
	o.logger.Warn("implementation planning failed, using fallback plans", zap.String("company", companyID), zap.Error(err))
	plans = engines.FallbackPlans(strategies)
	_ = o.cache.Write(companyID, cache.StageImplementationFallback, plans)
	return plans, nil
}

// feasibilityRound is the cached record of one feasibility refinement round.
type feasibilityRound struct {
	RefinedStrategies []models.ImplementationStrategy `json:"refinedStrategies"`
	FeasibilityResult models.FeasibilityResult        `json:"feasibilityResult"`
}

func feasibilityScore(a models.FeasibilityAnalysis) float64 { return a.FeasibilityScore }
func analysisID(a models.FeasibilityAnalysis) string         { return a.ID }

// refineFeasibility checks the plans, splices the feedback into the weak
// ones until they pass or the budget runs out, and ranks the best version
// of every plan.
func (o *Orchestrator) refineFeasibility(ctx context.Context, companyID string, plans []models.ImplementationStrategy) ([]models.ScoredStrategy, error) {
	initial, err := stage(o, companyID, cache.StageInitialFeasibility, func() (models.FeasibilityResult, error) {
		return o.engine.CheckFeasibility(ctx, plans)
	})
	if err != nil {
		return nil, err
	}

	res, err := refine.Run(ctx, refine.Config[models.FeasibilityAnalysis]{
		MaxIterations: o.cfg.MaxFeasibilityIterations,
		Threshold:     o.cfg.FeasibilityThreshold,
		ID:            analysisID,
		Score:         feasibilityScore,
		Refine: func(ctx context.Context, iteration int, current, _ []models.FeasibilityAnalysis) ([]models.FeasibilityAnalysis, error) {
			name := cache.FeasibilityIteration(iteration)
			round, err := stage(o, companyID, name, func() (feasibilityRound, error) {
				refined := make([]models.ImplementationStrategy, len(current))
				for i, a := range current {
					if a.FeasibilityScore >= o.cfg.FeasibilityThreshold {
						refined[i] = a.ImplementationStrategy
						continue
					}
					refined[i] = engines.ApplyFeasibilityFeedback(a)
				}
				result, err := o.engine.CheckFeasibility(ctx, refined)
				if err != nil {
					return feasibilityRound{}, err
				}
				return feasibilityRound{RefinedStrategies: refined, FeasibilityResult: result}, nil
			})
			if err != nil {
				return nil, err
			}
			o.logger.Info("feasibility round finished",
				zap.Int("iteration", iteration),
				zap.Float64("average", round.FeasibilityResult.AverageScore),
			)
			return round.FeasibilityResult.Strategies, nil
		},
	}, initial.Strategies)
	if err != nil {
		return nil, err
	}
	_ = o.cache.Write(companyID, cache.StageFeasibilityEvolutions, res.Evolutions)

	return scoring.Rank(res.Best), nil
}

func (o *Orchestrator) assemble(companyID, companyURL, companyName string, analysis models.ContextAnalysis, industry models.IndustryAnalysis, challenges []string, ranked []models.ScoredStrategy) models.Proposal {
	opportunities := make([]models.Opportunity, len(ranked))
	for i, s := range ranked {
		opportunities[i] = models.NewOpportunity(s)
	}
	return models.Proposal{
		ID:                  fmt.Sprintf("%s-%d", companyID, o.now().UnixMilli()),
		CompanyName:         companyName,
		CompanyURL:          companyURL,
		Industry:            industry.Industry,
		BusinessContext:     analysis.BusinessContext,
		PossiblePainPoints:  industry.PossiblePainPoints,
		AIOpportunities:     opportunities,
		BusinessChallenges:  challenges,
		RecommendedApproach: recommendedApproach,
		NextSteps:           append([]string(nil), nextSteps...),
		ImagePrompts:        append([]string(nil), imagePrompts...),
	}
}
