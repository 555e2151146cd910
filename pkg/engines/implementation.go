package engines

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

// ImplementationPlanError is returned by PlanImplementation when FailOnError
// is set and planning cannot produce a result.
type ImplementationPlanError struct {
	Message string
	Details map[string]any
	Err     error
}

func (e *ImplementationPlanError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ImplementationPlanError) Unwrap() error { return e.Err }

// NoValidStrategiesError reports that there is nothing worth planning.
type NoValidStrategiesError struct {
	Message string
}

func (e *NoValidStrategiesError) Error() string {
	if e.Message == "" {
		return "no valid LLM strategies could be identified"
	}
	return e.Message
}

// PlanOptions is the failure policy of PlanImplementation.
type PlanOptions struct {
	// FailOnError returns typed errors instead of degrading to generic plans.
	FailOnError bool
	// RequireMinimumStrategies enforces MinimumStrategies on input and output.
	RequireMinimumStrategies bool
	MinimumStrategies        int
	// AllowPartialSuccess keeps the parsed plans when some are missing or unknown.
	AllowPartialSuccess bool
	// ValidateLLMFeasibility drops strategies that are not LLM applications
	// before prompting.
	ValidateLLMFeasibility bool
	// FallbackToGeneric fills gaps with generic plans.
	FallbackToGeneric bool
}

// DefaultPlanOptions returns the lenient policy.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		FailOnError:              false,
		RequireMinimumStrategies: false,
		MinimumStrategies:        1,
		AllowPartialSuccess:      true,
		ValidateLLMFeasibility:   true,
		FallbackToGeneric:        true,
	}
}

func (o PlanOptions) minimum() int {
	if o.MinimumStrategies < 1 {
		return 1
	}
	return o.MinimumStrategies
}

var (
	genericBenefits = []string{
		"Improved user experience",
		"Reduced manual effort",
		"Enhanced information processing",
		"Greater scalability",
		"Faster response times",
	}
	genericSteps = []string{
		"LLM Selection: Choose appropriate LLM model based on requirements",
		"Knowledge Base Setup: Gather and structure company data for LLM context",
		"Integration Development: Connect LLM APIs with existing systems",
		"Testing & Refinement: Evaluate LLM responses and refine prompts",
		"Deployment & Monitoring: Launch with continuous quality monitoring",
	}
	defaultPlanBenefits = []string{"Improved efficiency", "Enhanced accuracy", "Better user experience"}
	defaultPlanSteps    = []string{"LLM Selection", "Integration", "Testing", "Deployment", "Monitoring"}
)

const defaultPlanFeasibility = 75

const implementationPrompt = `
You are an AI implementation expert with deep knowledge of AI technologies and project management.
Analyze each strategy and provide detailed implementation insights. Focus EXCLUSIVELY on strategies
where Large Language Models (LLMs) are the PRIMARY technology component.

Acceptable LLM applications include:
- Text-to-text: Traditional LLM applications where both input and output are text
- Image-to-text: Multimodal LLM applications where images can be inputs, but the LLM processes them to produce text outputs
  (e.g., document analysis, visual content understanding, image-based Q&A)

All implementations MUST be based on commercial foundation models like GPT-4 (including Vision), Claude, Gemini,
or similar models where the LLM is the primary reasoning component.

Consider technical feasibility, resource requirements, and potential challenges specific to LLM implementations.

For each strategy, provide:
- Key benefits (3-5 bullet points) specifically related to the advantages of using LLMs for this application
- Implementation steps (MAXIMUM 5 KEY STEPS, no more than 5 steps), formatted as follows:
  "Step Title: Brief description of the step"

  For example:
  "Knowledge Base Creation: Gather and structure relevant company data to integrate with the LLM through a RAG approach"
- A feasibility score (0-100)

IMPORTANT: For image-to-text strategies using multimodal LLMs, include appropriate implementation
steps for handling image inputs, such as:
- Image preprocessing requirements (scaling, normalization, enhancement)
- Image input validation and quality assurance mechanisms
- Methods for combining image and text context
- Appropriate multimodal LLM selection
- Testing protocols specifically for visual inputs

VERY IMPORTANT FORMATTING INSTRUCTIONS:
1. Avoid using any special characters, control characters, or non-standard punctuation in your output.
2. Use only basic ASCII characters when possible.
3. Keep descriptions plain and simple without complex formatting.
4. Avoid using quotes within string values, use alternate punctuation if needed.
5. For bullet points, use simple hyphens (-) rather than special Unicode bullets.
6. Do not use any special line breaks, tabs, or invisible control characters.

Strategies:
%s

Return only a valid JSON object with no markdown formatting or other text:
{
  "implementationPlans": [
    {
      "id": "strategy_id",
      "title": "strategy title",
      "description": "strategy description",
      "impact": "impact level",
      "complexity": "complexity level",
      "timeframe": "implementation timeframe",
      "category": "category name",
      "keyBenefits": ["benefit 1", "benefit 2", "benefit 3"],
      "implementationSteps": ["step 1", "step 2", "step 3", "step 4", "step 5"],
      "feasibilityScore": 85
    }
  ]
}
`

type rawPlan struct {
	rawStrategy
	KeyBenefits         parser.Strings `json:"keyBenefits"`
	ImplementationSteps parser.Strings `json:"implementationSteps"`
	FeasibilityScore    parser.Number  `json:"feasibilityScore"`
}

// PlanImplementation attaches key benefits, at most five implementation
// steps and a feasibility estimate to each strategy. The outcome on bad
// input or bad model output is governed by opts; with FailOnError unset it
// only returns an error when ctx is done.
func (e *Engine) PlanImplementation(ctx context.Context, strategies []models.ValidatedStrategy, opts PlanOptions) ([]models.ImplementationStrategy, error) {
	if len(strategies) == 0 {
		err := &NoValidStrategiesError{Message: "No strategies provided to implementation planner"}
		if opts.FailOnError {
			return nil, err
		}
		e.logger.Warn("implementation planning skipped", zap.Error(err))
		return []models.ImplementationStrategy{}, nil
	}

	valid := strategies
	if opts.ValidateLLMFeasibility {
		valid = make([]models.ValidatedStrategy, 0, len(strategies))
		for _, s := range strategies {
			if ValidateLLMFeasibility(s.Strategy) {
				valid = append(valid, s)
			}
		}
		if len(valid) == 0 {
			err := &NoValidStrategiesError{Message: "None of the provided strategies can be implemented with LLMs"}
			if opts.FailOnError {
				return nil, err
			}
			e.logger.Warn("implementation planning degraded", zap.Error(err))
			return e.genericOrEmpty(opts, strategies), nil
		}
		if dropped := len(strategies) - len(valid); dropped > 0 {
			e.logger.Warn("strategies filtered out as not LLM-implementable", zap.Int("count", dropped))
		}
	}

	if opts.RequireMinimumStrategies && len(valid) < opts.minimum() {
		err := &NoValidStrategiesError{Message: fmt.Sprintf("Not enough valid strategies. Required: %d, Found: %d", opts.minimum(), len(valid))}
		if opts.FailOnError {
			return nil, err
		}
		e.logger.Warn("implementation planning degraded", zap.Error(err))
		plans := GenericPlans(valid)
		if opts.FallbackToGeneric {
			plans = append(plans, fillerPlans(opts.minimum()-len(valid), len(plans))...)
		}
		return plans, nil
	}

	text, err := e.complete(ctx, "implementation_strategies", fmt.Sprintf(implementationPrompt, indent(valid)), llm.Planning)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if opts.FailOnError {
			return nil, &ImplementationPlanError{Message: "AI model call failed", Err: err}
		}
		return e.genericOrEmpty(opts, valid), nil
	}

	plans, err := e.processPlans(text, strategies, valid, opts)
	if err != nil {
		if opts.FailOnError {
			var planErr *ImplementationPlanError
			if errors.As(err, &planErr) {
				return nil, err
			}
			return nil, &ImplementationPlanError{Message: "Failed to generate implementation plans", Err: err}
		}
		e.logger.Warn("using generic implementation plans", zap.Error(err))
		return e.genericOrEmpty(opts, valid), nil
	}
	return plans, nil
}

func (e *Engine) processPlans(text string, all, valid []models.ValidatedStrategy, opts PlanOptions) ([]models.ImplementationStrategy, error) {
	var resp struct {
		ImplementationPlans []rawPlan `json:"implementationPlans"`
	}
	if err := parser.DecodeRepaired(text, &resp); err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			return nil, &ImplementationPlanError{Message: "Failed to parse response despite multiple cleaning attempts", Err: err}
		}
		return nil, &ImplementationPlanError{Message: "Invalid response structure: missing implementationPlans array", Err: err}
	}
	if resp.ImplementationPlans == nil {
		return nil, &ImplementationPlanError{Message: "Invalid response structure: missing implementationPlans array"}
	}
	if len(resp.ImplementationPlans) == 0 {
		return nil, &ImplementationPlanError{Message: "LLM returned empty implementation plans array"}
	}

	byID := make(map[string]models.ValidatedStrategy, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	var failed []string
	covered := make(map[string]bool)
	processed := make([]models.ImplementationStrategy, 0, len(resp.ImplementationPlans))
	for _, plan := range resp.ImplementationPlans {
		id := string(plan.ID)
		original, known := byID[id]
		if !known {
			if id == "" {
				id = "unknown"
			}
			e.logger.Warn("implementation plan has unknown id", zap.String("id", id))
			failed = append(failed, id)
			continue
		}
		if covered[id] {
			continue
		}
		covered[id] = true
		processed = append(processed, planToStrategy(plan, original))
	}

	if len(processed) == 0 {
		return nil, &ImplementationPlanError{
			Message: "No valid implementation plans could be processed",
			Details: map[string]any{"failedStrategyIds": failed},
		}
	}

	var missing []models.ValidatedStrategy
	for _, s := range valid {
		if !covered[s.ID] {
			missing = append(missing, s)
		}
	}

	if (len(failed) > 0 || len(missing) > 0) && !opts.AllowPartialSuccess {
		return nil, &ImplementationPlanError{
			Message: "Failed to process an implementation plan",
			Details: map[string]any{"failedStrategyIds": failed, "missing": len(missing)},
		}
	}

	if opts.RequireMinimumStrategies && len(processed) < opts.minimum() {
		if opts.FailOnError {
			return nil, &ImplementationPlanError{Message: fmt.Sprintf("Not enough valid plans. Required: %d, Found: %d", opts.minimum(), len(processed))}
		}
		e.logger.Warn("not enough implementation plans", zap.Int("required", opts.minimum()), zap.Int("found", len(processed)))
		if opts.FallbackToGeneric {
			generic := GenericPlans(missing)
			generic = append(generic, fillerPlans(opts.minimum()-len(processed)-len(generic), len(generic))...)
			return append(processed, generic...), nil
		}
	}

	if opts.FallbackToGeneric && len(missing) > 0 {
		e.logger.Warn("creating generic plans for strategies missing from the response", zap.Int("count", len(missing)))
		processed = append(processed, GenericPlans(missing)...)
	}
	return processed, nil
}

func planToStrategy(plan rawPlan, original models.ValidatedStrategy) models.ImplementationStrategy {
	merged := original
	merged.Title = plan.Title.Or(original.Title)
	merged.Description = plan.Description.Or(original.Description)
	if plan.Impact.Or("") != "" {
		merged.Impact = models.ParseLevel(string(plan.Impact))
	}
	if plan.Complexity.Or("") != "" {
		merged.Complexity = models.ParseLevel(string(plan.Complexity))
	}
	if plan.Timeframe.Or("") != "" {
		merged.Timeframe = models.ParseTimeframe(string(plan.Timeframe))
	}
	if plan.Category.Or("") != "" {
		merged.Category = models.ParseCategory(string(plan.Category))
	}

	benefits := defaultPlanBenefits
	if plan.KeyBenefits != nil {
		benefits = plan.KeyBenefits
	}
	steps := defaultPlanSteps
	if plan.ImplementationSteps != nil {
		steps = plan.ImplementationSteps
	}
	return models.NewImplementationStrategy(merged, benefits, steps, plan.FeasibilityScore.Or(defaultPlanFeasibility))
}

func (e *Engine) genericOrEmpty(opts PlanOptions, strategies []models.ValidatedStrategy) []models.ImplementationStrategy {
	if !opts.FallbackToGeneric {
		return []models.ImplementationStrategy{}
	}
	return GenericPlans(strategies)
}

// GenericPlans gives every strategy the same LLM rollout plan. Feasibility
// scores spread over 75-84 by position so the ranking stays stable.
func GenericPlans(strategies []models.ValidatedStrategy) []models.ImplementationStrategy {
	plans := make([]models.ImplementationStrategy, len(strategies))
	for i, s := range strategies {
		plans[i] = genericPlan(s, i)
	}
	return plans
}

func genericPlan(s models.ValidatedStrategy, index int) models.ImplementationStrategy {
	return models.NewImplementationStrategy(s, genericBenefits[:3], genericSteps, float64(defaultPlanFeasibility+index%10))
}

// fillerPlans creates n placeholder strategies; offset continues the
// feasibility spread of the plans they are appended to.
func fillerPlans(n, offset int) []models.ImplementationStrategy {
	if n <= 0 {
		return nil
	}
	plans := make([]models.ImplementationStrategy, n)
	for i := range plans {
		filler := models.NewValidatedStrategy(models.Strategy{
			ID:          fmt.Sprintf("generic_strategy_%d", i+1),
			Title:       fmt.Sprintf("Generic AI Strategy %d", i+1),
			Description: "A general-purpose AI strategy using LLMs for business process improvement.",
			Impact:      models.LevelMedium,
			Complexity:  models.LevelMedium,
			Timeframe:   models.MediumTerm,
			Category:    models.CategoryAutomation,
		}, models.ValidationCriteria{}, 1, false, nil, nil)
		plans[i] = genericPlan(filler, offset+i)
	}
	return plans
}

var (
	fallbackPlanBenefits = []string{
		"Increased operational efficiency",
		"Enhanced user experience",
		"Reduced manual workload",
	}
	fallbackPlanSteps = []string{
		"Strategy Assessment: Evaluate specific requirements and constraints",
		"Model Selection: Choose appropriate LLM based on use case",
		"Integration Planning: Design system architecture and data flows",
		"Prototype Development: Build initial proof of concept",
		"Deployment & Monitoring: Roll out solution with proper tracking",
	}
)

// FallbackPlans is the pipeline-level substitute used when planning fails
// outright.
func FallbackPlans(strategies []models.ValidatedStrategy) []models.ImplementationStrategy {
	plans := make([]models.ImplementationStrategy, len(strategies))
	for i, s := range strategies {
		plans[i] = models.NewImplementationStrategy(s, fallbackPlanBenefits, fallbackPlanSteps, defaultPlanFeasibility)
	}
	return plans
}
