package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
)

const (
	markerContext     = "You are an AI business analyst"
	markerChallenges  = "You are an AI business consultant"
	markerIndustry    = "You are an AI industry analyst"
	markerFeedback    = "Previous strategies that need improvement"
	markerStrategies  = "You are an AI transformation consultant"
	markerValidation  = "You are an AI validation expert"
	markerPlanning    = "You are an AI implementation expert"
	markerFeasibility = "You are an AI feasibility expert"
)

var fixedNow = time.UnixMilli(1700000000000)

// route answers prompts containing marker.
type route struct {
	marker  string
	respond func(prompt string) (string, error)
}

func reply(marker, text string) route {
	return route{marker: marker, respond: func(string) (string, error) { return text, nil }}
}

func fail(marker string, err error) route {
	return route{marker: marker, respond: func(string) (string, error) { return "", err }}
}

type fakeLLM struct {
	mu     sync.Mutex
	routes []route
	calls  map[string]int
}

func newFakeLLM(routes ...route) *fakeLLM {
	return &fakeLLM{routes: routes, calls: make(map[string]int)}
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, _ llm.Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.routes {
		if strings.Contains(prompt, r.marker) {
			f.calls[r.marker]++
			return r.respond(prompt)
		}
	}
	f.calls["unrouted"]++
	return "", errors.New("no scripted response")
}

func (f *fakeLLM) count(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[marker]
}

func (f *fakeLLM) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeScraper struct {
	data  models.ScrapedData
	err   error
	panic bool
}

func (s fakeScraper) Scrape(context.Context, string) (models.ScrapedData, error) {
	if s.panic {
		panic("browser crashed")
	}
	return s.data, s.err
}

type outcomes struct {
	mu   sync.Mutex
	seen []string
}

func (o *outcomes) RecordOutcome(_, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, outcome)
}

func (o *outcomes) list() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

type harness struct {
	orch     *Orchestrator
	cache    *cache.Cache
	outcomes *outcomes
}

func newHarness(t *testing.T, svc llm.CompletionService, scraper Scraper, cfg Config, opts ...Option) harness {
	t.Helper()
	c := cache.New(cache.NewFileStore(t.TempDir()), zap.NewNop(), cfg.UseCache)
	rec := &outcomes{}
	opts = append([]Option{WithOutcomeRecorder(rec), WithClock(func() time.Time { return fixedNow })}, opts...)
	o := New(svc, scraper, c, cfg, zap.NewNop(), opts...)
	t.Cleanup(o.Wait)
	return harness{orch: o, cache: c, outcomes: rec}
}

const (
	contextResponse    = `{"businessContext": "Acme runs a parcel network. It serves retailers.", "domainKnowledge": "Parcel logistics"}`
	challengesResponse = `["Manual dispatch planning", "Slow customer support"]`
	industryResponse   = `{"industry": "Logistics", "industryInsights": ["Same-day delivery is growing"]}`
	strategiesResponse = `{"strategies": [
		{"id": "strategy_1", "title": "Support Assistant", "description": "An LLM chatbot answers customer questions about parcels.", "impact": "High", "complexity": "Low", "timeframe": "Short-term", "category": "conversation"},
		{"id": "strategy_2", "title": "Claims Summaries", "description": "An LLM summarizes damage claims for adjusters using text analysis.", "impact": "Medium", "complexity": "Medium", "timeframe": "Medium-term", "category": "text analysis"},
		{"id": "strategy_3", "title": "Dispatch Notes", "description": "An LLM drafts dispatch notes from route data with text generation.", "impact": "Medium", "complexity": "Low", "timeframe": "Short-term", "category": "content generation"}
	]}`
	validationResponse = `{"validatedStrategies": [
		{"id": "strategy_1", "validationCriteria": {"businessAlignment": 22, "marketPotential": 22, "industryRelevance": 22, "clarity": 22}},
		{"id": "strategy_2", "validationCriteria": {"businessAlignment": 21, "marketPotential": 21, "industryRelevance": 21, "clarity": 21}},
		{"id": "strategy_3", "validationCriteria": {"businessAlignment": 20, "marketPotential": 20, "industryRelevance": 20, "clarity": 20}}
	], "requiresFeedback": false}`
	planningResponse = `{"implementationPlans": [
		{"id": "strategy_1", "keyBenefits": ["Fewer tickets"], "implementationSteps": ["Pilot", "Roll out"], "feasibilityScore": 80},
		{"id": "strategy_2", "keyBenefits": ["Faster claims"], "implementationSteps": ["Collect claims"], "feasibilityScore": 70},
		{"id": "strategy_3", "keyBenefits": ["Less typing"], "implementationSteps": ["Template notes"], "feasibilityScore": 75}
	]}`
	feasibilityResponse = `{"feasibilityAnalysis": [
		{"feasibilityCriteria": {"technicalFeasibility": 20, "resourceRequirements": 20, "riskAssessment": 20, "implementationComplexity": 20}, "mitigationStrategies": ["Human review"], "resourceRequirements": ["Prompt engineer"]},
		{"feasibilityCriteria": {"technicalFeasibility": 15, "resourceRequirements": 15, "riskAssessment": 15, "implementationComplexity": 15}, "mitigationStrategies": ["Start with one region"], "resourceRequirements": ["Claims analyst", "Data export"]},
		{"feasibilityCriteria": {"technicalFeasibility": 20, "resourceRequirements": 20, "riskAssessment": 20, "implementationComplexity": 15}}
	], "technicalFeedback": "ok"}`
)

func happyRoutes() []route {
	return []route{
		reply(markerContext, contextResponse),
		reply(markerChallenges, challengesResponse),
		reply(markerIndustry, industryResponse),
		reply(markerStrategies, strategiesResponse),
		reply(markerValidation, validationResponse),
		reply(markerPlanning, planningResponse),
		reply(markerFeasibility, feasibilityResponse),
	}
}

func acmeScraper() fakeScraper {
	return fakeScraper{data: models.ScrapedData{Title: "Acme Parcels", MetaDescription: "Parcel delivery"}}
}
