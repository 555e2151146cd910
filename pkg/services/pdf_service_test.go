package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-proposal-api/pkg/models"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(models.Proposal{
		CompanyName:     "Acme <Corp>",
		Industry:        "Logistics",
		BusinessContext: "Acme runs a parcel network.",
		AIOpportunities: []models.Opportunity{
			{Title: "Support Assistant", Description: "An LLM chatbot.", CombinedScore: 73.6, KeyBenefits: []string{"Faster answers"}},
		},
		NextSteps: []string{"Schedule a workshop"},
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "AI Strategy for Acme &lt;Corp&gt;")
	assert.NotContains(t, out, "<Corp>")
	assert.Contains(t, out, "1. Support Assistant")
	assert.Contains(t, out, "Score 74")
	assert.Contains(t, out, "<li>Faster answers</li>")
	assert.Contains(t, out, "<li>Schedule a workshop</li>")
	assert.NotContains(t, out, "Business Challenges")
}
