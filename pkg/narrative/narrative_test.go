package narrative

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-proposal-api/pkg/models"
)

func fixedBuilder() *Builder {
	return &Builder{Now: func() time.Time { return time.UnixMilli(1700000000000) }}
}

func TestBuild_FromFullProposal(t *testing.T) {
	p := models.Proposal{
		CompanyName:     "Acme",
		Industry:        "Retail",
		BusinessContext: "Acme sells shoes online. It ships across Europe. It was founded in 2010.",
		BusinessChallenges: []string{
			"Manual order handling: slows fulfilment",
			"Customer support backlog",
		},
		AIOpportunities: []models.Opportunity{
			{Title: "Support Copilot", Description: "Drafts replies to tickets. Learns from history.", Impact: models.LevelHigh},
			{Title: "Catalog Writer", Description: "Generates product copy."},
			{Title: "Demand Signals"},
		},
		RecommendedApproach: "Start small. Measure. Expand.",
	}

	got := fixedBuilder().Build(p)

	assert.Equal(t, "Acme sells shoes online. It ships across Europe.", got.CompanyContext)
	assert.Equal(t, p.BusinessChallenges, got.KeyBusinessChallenges)
	assert.Equal(t, []string{"Support Copilot", "Catalog Writer", "Demand Signals"}, got.StrategicOpportunities)
	assert.Equal(t, int64(1700000000000), got.GeneratedAt)

	s := got.ExecutiveSummaryContent
	assert.Equal(t, "Acme faces challenges that impact operational efficiency and competitive positioning. Specifically, drafts replies to tickets.", s.ProblemStatement)
	assert.Equal(t, []string{
		"Implementation of Support Copilot to drafts replies to tickets",
		"Implementation of Catalog Writer to generates product copy",
		"Implementation of Demand Signals to address business challenges",
	}, s.PartnershipProposals)
	assert.Equal(t, []string{"Start small", "Measure", "Expand"}, s.TimingPoints)
	assert.Equal(t, p.BusinessContext, s.BusinessContextSummary)

	require.Len(t, s.PrioritizedChallenges, 2)
	assert.Equal(t, "Manual order handling", s.PrioritizedChallenges[0].Title)
	assert.Equal(t, "Manual order handling: slows fulfilment.", s.PrioritizedChallenges[0].Description)
	assert.Equal(t, 9, s.PrioritizedChallenges[0].Severity)
	assert.Equal(t, 8, s.PrioritizedChallenges[1].Severity)
	assert.Equal(t, []string{"Inconsistent service across channels", "Slow response times to inquiries"}, s.PrioritizedChallenges[1].Manifestations)

	require.Len(t, s.ChallengeSolutions, 3)
	assert.Equal(t, "Support Copilot: Drafts replies to tickets. Learns from history.", s.ChallengeSolutions[0].Solution)
	assert.Equal(t, "High", s.ChallengeSolutions[0].ExpectedImpact)
	assert.Equal(t, 10, s.ChallengeSolutions[0].RelevanceScore)
	assert.Equal(t, "Substantial", s.ChallengeSolutions[1].ExpectedImpact)
	assert.Equal(t, "Inefficiency in Signals processes", s.ChallengeSolutions[2].Challenge)

	assert.Contains(t, s.IndustryTerminology, "Omnichannel")
}

func TestBuild_Defaults(t *testing.T) {
	got := fixedBuilder().Build(models.Proposal{CompanyName: "Tiny", Industry: "Logistics"})

	assert.Equal(t, "", got.CompanyContext)
	assert.Len(t, got.KeyBusinessChallenges, 5)
	assert.Equal(t, "Manual processes in Logistics requiring significant time and resources", got.KeyBusinessChallenges[0])
	assert.Equal(t, "AI-powered workflow automation for Logistics", got.StrategicOpportunities[0])

	s := got.ExecutiveSummaryContent
	assert.Equal(t, "Tiny operates in the Logistics industry, providing innovative solutions to address market challenges.", s.BusinessContextSummary)
	assert.Equal(t, "Tiny faces challenges in optimizing operations and maximizing efficiency, particularly with manual processes in logistics requiring significant time and resources.", s.ProblemStatement)
	require.Len(t, s.ChallengeSolutions, 5)
	assert.Equal(t, "Implement predictive analytics for data-driven decision making to address this challenge through automation and intelligence.", s.ChallengeSolutions[1].Solution)
	assert.Equal(t, "Measurable", s.ChallengeSolutions[4].ExpectedImpact)
	assert.Equal(t, "Logistics Analytics", s.IndustryTerminology[0])
}

func TestBuild_PainPointsWhenNoChallenges(t *testing.T) {
	p := models.Proposal{
		CompanyName: "Acme",
		PossiblePainPoints: []models.PainPoint{
			{Title: "Slow billing", Description: "Invoices go out late"},
			{Title: "Stock outs"},
		},
	}
	got := fixedBuilder().Build(p)
	assert.Equal(t, []string{"Invoices go out late", "Stock outs"}, got.KeyBusinessChallenges)
	assert.Contains(t, got.ExecutiveSummaryContent.IndustryTerminology, "DevOps")
}

func TestBuild_CapsAtFive(t *testing.T) {
	p := models.Proposal{CompanyName: "Acme", Industry: "Tech"}
	for i := 0; i < 8; i++ {
		p.BusinessChallenges = append(p.BusinessChallenges, "challenge")
		p.AIOpportunities = append(p.AIOpportunities, models.Opportunity{Title: "opp"})
	}
	got := fixedBuilder().Build(p)
	assert.Len(t, got.KeyBusinessChallenges, 5)
	assert.Len(t, got.StrategicOpportunities, 5)
	assert.Len(t, got.ExecutiveSummaryContent.ChallengeSolutions, 5)
	assert.Len(t, got.ExecutiveSummaryContent.PartnershipProposals, 3)
}

func TestManifestations(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Process inefficiencies impacting productivity"},
		{"Manual workflows", "Excessive time spent on routine tasks"},
		{"Data silos", "Incomplete customer views"},
		{"Rising expense", "Budget overruns on routine operations"},
		{"Something else", "Reduced operational efficiency"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Manifestations(tt.in)[0], tt.in)
	}
}

func TestTerminology(t *testing.T) {
	assert.Contains(t, Terminology("Banking"), "Open Banking")
	assert.Contains(t, Terminology("Healthcare"), "Patient Engagement")
	assert.Contains(t, Terminology("Manufacturing"), "IoT Sensors")
	assert.Len(t, Terminology("Software"), 10)
	assert.Len(t, Terminology("Agriculture"), 8)
}
