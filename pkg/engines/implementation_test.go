package engines

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/parser"
)

func llmStrategies(ids ...string) []models.ValidatedStrategy {
	out := make([]models.ValidatedStrategy, len(ids))
	for i, id := range ids {
		out[i] = validated(id, "Assistant "+id, "Uses a language model for support", models.CategoryConversation, 85)
		out[i].PainPointRelevances = []models.Relevance{{PainPointID: "pain_point_1", RelevanceScore: 8}}
	}
	return out
}

func TestPlanImplementation_NormalizesPlans(t *testing.T) {
	twenty := twentyItems("Step: detail")
	response := fmt.Sprintf("```json\n"+`{"implementationPlans": [
		{"id": "s1", "title": "", "impact": "low", "keyBenefits": %[1]s, "implementationSteps": %[1]s, "feasibilityScore": 140},
		{"id": "s2", "keyBenefits": {"not": "a list"}, "feasibilityScore": "n/a"}
	]}`+"\n```", twenty)
	svc := newScripted(route{marker: "AI implementation expert", response: response})
	e := newTestEngine(t, svc)

	plans, err := e.PlanImplementation(context.Background(), llmStrategies("s1", "s2"), DefaultPlanOptions())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	s1 := plans[0]
	assert.Equal(t, "s1", s1.ID)
	assert.Equal(t, "Assistant s1", s1.Title)
	assert.Equal(t, models.LevelLow, s1.Impact)
	assert.Len(t, s1.KeyBenefits, models.MaxListItems)
	assert.Len(t, s1.ImplementationSteps, models.MaxListItems)
	assert.Equal(t, 100.0, s1.FeasibilityScore)
	assert.Equal(t, "pain_point_1", s1.PainPointRelevances[0].PainPointID)
	assert.Equal(t, 85.0, s1.ValidationScore)

	s2 := plans[1]
	assert.Equal(t, defaultPlanBenefits, s2.KeyBenefits)
	assert.Equal(t, defaultPlanSteps, s2.ImplementationSteps)
	assert.Equal(t, 75.0, s2.FeasibilityScore)
}

func TestPlanImplementation_RepairsMalformedJSON(t *testing.T) {
	response := "Sure! {\"implementationPlans\": [{\"id\": \"s1\", \"keyBenefits\": [\"The \"smart\" inbox\"], \"implementationSteps\": [\"Pilot:\nrun it\"]}]} Let me know."
	e := newTestEngine(t, constant(response))

	plans, err := e.PlanImplementation(context.Background(), llmStrategies("s1"), PlanOptions{FailOnError: true, AllowPartialSuccess: true})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, []string{`The "smart" inbox`}, plans[0].KeyBenefits)
	assert.Equal(t, []string{"Pilot: run it"}, plans[0].ImplementationSteps)
}

func TestPlanImplementation_BackfillsMissingStrategies(t *testing.T) {
	e := newTestEngine(t, constant(`{"implementationPlans": [
		{"id": "s2", "keyBenefits": ["Faster answers"], "implementationSteps": ["Pilot: one team"], "feasibilityScore": 90},
		{"id": "ghost", "keyBenefits": ["x"]}
	]}`))

	plans, err := e.PlanImplementation(context.Background(), llmStrategies("s1", "s2", "s3"), DefaultPlanOptions())
	require.NoError(t, err)
	require.Len(t, plans, 3)

	assert.Equal(t, "s2", plans[0].ID)
	assert.Equal(t, 90.0, plans[0].FeasibilityScore)

	assert.Equal(t, "s1", plans[1].ID)
	assert.Equal(t, genericSteps, plans[1].ImplementationSteps)
	assert.Equal(t, genericBenefits[:3], plans[1].KeyBenefits)
	assert.Equal(t, 75.0, plans[1].FeasibilityScore)
	assert.Equal(t, "s3", plans[2].ID)
	assert.Equal(t, 76.0, plans[2].FeasibilityScore)
}

func TestPlanImplementation_PartialNotAllowed(t *testing.T) {
	response := `{"implementationPlans": [{"id": "s1"}]}`
	opts := DefaultPlanOptions()
	opts.AllowPartialSuccess = false
	opts.FailOnError = true

	_, err := newTestEngine(t, constant(response)).PlanImplementation(context.Background(), llmStrategies("s1", "s2"), opts)
	var planErr *ImplementationPlanError
	require.True(t, errors.As(err, &planErr))
	assert.Equal(t, "Failed to process an implementation plan", planErr.Message)

	opts.FailOnError = false
	plans, err := newTestEngine(t, constant(response)).PlanImplementation(context.Background(), llmStrategies("s1", "s2"), opts)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, genericSteps, plans[0].ImplementationSteps)
}

func TestPlanImplementation_FailOnErrorTypes(t *testing.T) {
	strict := PlanOptions{FailOnError: true, AllowPartialSuccess: true, ValidateLLMFeasibility: true}

	t.Run("no strategies", func(t *testing.T) {
		_, err := newTestEngine(t, constant("")).PlanImplementation(context.Background(), nil, strict)
		var noValid *NoValidStrategiesError
		require.True(t, errors.As(err, &noValid))
		assert.Equal(t, "No strategies provided to implementation planner", noValid.Message)
	})

	t.Run("nothing implementable", func(t *testing.T) {
		s := validated("s1", "Sensor grid", "Upgrade the warehouse sensors", models.CategoryOther, 80)
		_, err := newTestEngine(t, constant("")).PlanImplementation(context.Background(), []models.ValidatedStrategy{s}, strict)
		var noValid *NoValidStrategiesError
		require.True(t, errors.As(err, &noValid))
	})

	t.Run("below minimum", func(t *testing.T) {
		opts := strict
		opts.RequireMinimumStrategies = true
		opts.MinimumStrategies = 3
		_, err := newTestEngine(t, constant("")).PlanImplementation(context.Background(), llmStrategies("s1"), opts)
		var noValid *NoValidStrategiesError
		require.True(t, errors.As(err, &noValid))
		assert.Equal(t, "Not enough valid strategies. Required: 3, Found: 1", noValid.Message)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := newTestEngine(t, constant("no json at all")).PlanImplementation(context.Background(), llmStrategies("s1"), strict)
		var planErr *ImplementationPlanError
		require.True(t, errors.As(err, &planErr))
		var parseErr *parser.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := newTestEngine(t, constant(`{"plans": []}`)).PlanImplementation(context.Background(), llmStrategies("s1"), strict)
		var planErr *ImplementationPlanError
		require.True(t, errors.As(err, &planErr))
		assert.Equal(t, "Invalid response structure: missing implementationPlans array", planErr.Message)
	})

	t.Run("empty plans", func(t *testing.T) {
		_, err := newTestEngine(t, constant(`{"implementationPlans": []}`)).PlanImplementation(context.Background(), llmStrategies("s1"), strict)
		var planErr *ImplementationPlanError
		require.True(t, errors.As(err, &planErr))
		assert.Equal(t, "LLM returned empty implementation plans array", planErr.Message)
	})

	t.Run("call failure", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		_, err := newTestEngine(t, failing(boom)).PlanImplementation(context.Background(), llmStrategies("s1"), strict)
		var planErr *ImplementationPlanError
		require.True(t, errors.As(err, &planErr))
		assert.Equal(t, "AI model call failed", planErr.Message)
		assert.ErrorIs(t, err, boom)
	})
}

func TestPlanImplementation_DegradesWithoutFailOnError(t *testing.T) {
	plans, err := newTestEngine(t, constant("garbage")).PlanImplementation(context.Background(), llmStrategies("s1", "s2"), DefaultPlanOptions())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, []float64{75, 76}, []float64{plans[0].FeasibilityScore, plans[1].FeasibilityScore})

	noGeneric := DefaultPlanOptions()
	noGeneric.FallbackToGeneric = false
	plans, err = newTestEngine(t, constant("garbage")).PlanImplementation(context.Background(), llmStrategies("s1"), noGeneric)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestPlanImplementation_MinimumFillers(t *testing.T) {
	opts := DefaultPlanOptions()
	opts.RequireMinimumStrategies = true
	opts.MinimumStrategies = 3
	svc := newScripted()

	plans, err := newTestEngine(t, svc).PlanImplementation(context.Background(), llmStrategies("s1"), opts)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "s1", plans[0].ID)
	assert.Equal(t, "generic_strategy_1", plans[1].ID)
	assert.Equal(t, "Generic AI Strategy 2", plans[2].Title)
	assert.Equal(t, models.CategoryAutomation, plans[2].Category)
	assert.Zero(t, svc.calls())
}

func TestPlanImplementation_MinimumAfterParsing(t *testing.T) {
	opts := DefaultPlanOptions()
	opts.RequireMinimumStrategies = true
	opts.MinimumStrategies = 3

	e := newTestEngine(t, constant(`{"implementationPlans": [{"id": "s1", "feasibilityScore": 88}]}`))
	plans, err := e.PlanImplementation(context.Background(), llmStrategies("s1", "s2", "s3"), opts)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{plans[0].ID, plans[1].ID, plans[2].ID})
	assert.Equal(t, 88.0, plans[0].FeasibilityScore)
}

func TestFallbackPlans(t *testing.T) {
	plans := FallbackPlans(llmStrategies("s1"))
	require.Len(t, plans, 1)
	assert.Len(t, plans[0].ImplementationSteps, 5)
	assert.Equal(t, "Strategy Assessment: Evaluate specific requirements and constraints", plans[0].ImplementationSteps[0])
	assert.Equal(t, 75.0, plans[0].FeasibilityScore)
}
