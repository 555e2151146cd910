// Package narrative derives report-ready text from a finished proposal.
// Everything here is deterministic; no model is consulted.
package narrative

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"ai-proposal-api/pkg/models"
)

const (
	maxItems         = 5
	minContextLength = 20
)

var impactWords = []string{"High", "Substantial", "Significant", "Moderate", "Measurable"}

// Builder assembles NarrativeContent. Now is overridable in tests.
type Builder struct {
	Now func() time.Time
}

// New returns a builder using the wall clock.
func New() *Builder {
	return &Builder{Now: time.Now}
}

// Build derives the narrative of p.
func (b *Builder) Build(p models.Proposal) models.NarrativeContent {
	industry := p.Industry
	if industry == "" {
		industry = "Technology"
	}

	companyContext := leadingSentences(p.BusinessContext, 2)
	challenges := keyChallenges(p, industry)
	opportunities := strategicOpportunities(p, industry)

	summary := models.ExecutiveSummary{
		ProblemStatement: fmt.Sprintf("%s faces challenges in optimizing operations and maximizing efficiency, particularly with %s.",
			p.CompanyName, strings.ToLower(challenges[0])),
		PartnershipProposals: []string{
			fmt.Sprintf("Implementation of AI solutions to address %s", strings.ToLower(challenges[0])),
			fmt.Sprintf("Development of %s to enhance competitive advantage", strings.ToLower(opportunities[0])),
			"Deployment of automated workflows to reduce manual effort and improve accuracy",
		},
		TimingPoints: []string{
			fmt.Sprintf("Increasing competitive pressure in the %s industry necessitates innovation", industry),
			"Growing availability of AI technologies makes implementation more cost-effective",
			"Early adoption provides opportunity to establish market differentiation",
		},
		BusinessContextSummary: contextSummary(p, companyContext, industry),
		IndustryTerminology:    Terminology(industry),
	}

	for i, c := range challenges {
		summary.PrioritizedChallenges = append(summary.PrioritizedChallenges, models.PrioritizedChallenge{
			Title:             strings.SplitN(c, ":", 2)[0],
			Description:       sentence(c),
			Severity:          9 - i,
			Manifestations:    Manifestations(c),
			IndustryRelevance: fmt.Sprintf("Common in the %s industry, impacting operational efficiency and competitive positioning.", industry),
		})
	}

	if len(p.AIOpportunities) > 0 {
		enrichFromOpportunities(&summary, p, challenges, industry)
	} else {
		for i, c := range challenges {
			opp := opportunities[0]
			if i < len(opportunities) {
				opp = opportunities[i]
			}
			summary.ChallengeSolutions = append(summary.ChallengeSolutions, models.ChallengeSolution{
				Challenge:      c,
				Solution:       fmt.Sprintf("Implement %s to address this challenge through automation and intelligence.", strings.ToLower(opp)),
				RelevanceScore: 9 - i,
				ExpectedImpact: impactWords[i%len(impactWords)],
			})
		}
	}

	return models.NarrativeContent{
		CompanyContext:          companyContext,
		KeyBusinessChallenges:   challenges,
		StrategicOpportunities:  opportunities,
		ExecutiveSummaryContent: summary,
		GeneratedAt:             b.Now().UnixMilli(),
	}
}

func enrichFromOpportunities(s *models.ExecutiveSummary, p models.Proposal, challenges []string, industry string) {
	first := p.AIOpportunities[0]
	if first.Description != "" {
		s.ProblemStatement = fmt.Sprintf("%s faces challenges that impact operational efficiency and competitive positioning. Specifically, %s.",
			p.CompanyName, strings.ToLower(firstClause(first.Description)))
	}

	s.PartnershipProposals = nil
	for _, opp := range p.AIOpportunities[:min(3, len(p.AIOpportunities))] {
		title := opp.Title
		if title == "" {
			title = "AI solution"
		}
		goal := "address business challenges"
		if opp.Description != "" {
			goal = strings.ToLower(firstClause(opp.Description))
		}
		s.PartnershipProposals = append(s.PartnershipProposals, fmt.Sprintf("Implementation of %s to %s", title, goal))
	}

	if approach := splitSentences(p.RecommendedApproach); len(approach) >= 3 {
		s.TimingPoints = approach[:3]
	}

	for i, opp := range p.AIOpportunities[:min(maxItems, len(p.AIOpportunities))] {
		challenge := ""
		if i < len(challenges) {
			challenge = challenges[i]
		} else {
			subject := industry
			if words := strings.Fields(opp.Title); len(words) > 1 {
				subject = strings.Join(words[1:], " ")
			}
			challenge = fmt.Sprintf("Inefficiency in %s processes", subject)
		}
		description := opp.Description
		if description == "" {
			description = "AI-powered solution to enhance operations"
		}
		impact := string(opp.Impact)
		if impact == "" {
			impact = impactWords[i%len(impactWords)]
		}
		s.ChallengeSolutions = append(s.ChallengeSolutions, models.ChallengeSolution{
			Challenge:      challenge,
			Solution:       fmt.Sprintf("%s: %s", opp.Title, description),
			RelevanceScore: 10 - i,
			ExpectedImpact: impact,
		})
	}
}

func keyChallenges(p models.Proposal, industry string) []string {
	var out []string
	switch {
	case len(p.BusinessChallenges) > 0:
		for _, c := range p.BusinessChallenges {
			if strings.TrimSpace(c) == "" {
				c = "Challenge in " + industry
			}
			out = append(out, c)
		}
	case len(p.PossiblePainPoints) > 0:
		for _, pp := range p.PossiblePainPoints {
			switch {
			case pp.Description != "":
				out = append(out, pp.Description)
			case pp.Title != "":
				out = append(out, pp.Title)
			default:
				out = append(out, "Challenge in "+industry)
			}
		}
	default:
		out = []string{
			fmt.Sprintf("Manual processes in %s requiring significant time and resources", industry),
			fmt.Sprintf("Data silos preventing comprehensive insights and decision-making in %s", industry),
			"Customer experience inconsistencies impacting satisfaction and retention",
			"Inefficient resource allocation resulting in increased operational costs",
			"Legacy systems limiting adaptation to market changes",
		}
	}
	return out[:min(maxItems, len(out))]
}

func strategicOpportunities(p models.Proposal, industry string) []string {
	if len(p.AIOpportunities) == 0 {
		return []string{
			"AI-powered workflow automation for " + industry,
			"Predictive analytics for data-driven decision making",
			"Intelligent customer engagement platforms",
			"Process optimization through machine learning",
			"Automated quality control and monitoring",
		}
	}
	var out []string
	for _, opp := range p.AIOpportunities[:min(maxItems, len(p.AIOpportunities))] {
		switch {
		case opp.Title != "":
			out = append(out, opp.Title)
		case opp.Description != "":
			out = append(out, opp.Description)
		default:
			out = append(out, "AI opportunity for "+industry)
		}
	}
	return out
}

func contextSummary(p models.Proposal, companyContext, industry string) string {
	summary := p.BusinessContext
	if len(summary) < minContextLength && len(companyContext) >= minContextLength {
		summary = companyContext
	}
	if len(summary) < minContextLength {
		summary = fmt.Sprintf("%s operates in the %s industry, providing innovative solutions to address market challenges.", p.CompanyName, industry)
	}
	return summary
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// leadingSentences returns the first n sentences of text, terminated by a period.
func leadingSentences(text string, n int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return strings.Join(sentences[:min(n, len(sentences))], ". ") + "."
}

func firstClause(text string) string {
	if clause := strings.Split(text, ".")[0]; clause != "" {
		return clause
	}
	return text
}

var bulletPrefix = regexp.MustCompile(`^[-•*\d.]+\s*`)

func sentence(challenge string) string {
	s := bulletPrefix.ReplaceAllString(challenge, "")
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// Manifestations guesses how a challenge shows up day to day.
func Manifestations(challenge string) []string {
	if challenge == "" {
		return []string{"Process inefficiencies impacting productivity", "Increased operational costs"}
	}
	c := strings.ToLower(challenge)
	switch {
	case strings.Contains(c, "manual") || strings.Contains(c, "workflow"):
		return []string{"Excessive time spent on routine tasks", "High error rates in data processing"}
	case strings.Contains(c, "data") || strings.Contains(c, "silo"):
		return []string{"Incomplete customer views", "Duplicate data entry requirements"}
	case strings.Contains(c, "customer") || strings.Contains(c, "experience"):
		return []string{"Inconsistent service across channels", "Slow response times to inquiries"}
	case strings.Contains(c, "cost") || strings.Contains(c, "expense"):
		return []string{"Budget overruns on routine operations", "Difficulty forecasting operational costs"}
	default:
		return []string{"Reduced operational efficiency", "Difficulty scaling with business growth"}
	}
}

var baseTerms = []string{
	"Predictive Analytics",
	"Machine Learning",
	"Workflow Automation",
	"Natural Language Processing",
	"Digital Transformation",
}

// Terminology lists vocabulary for the given industry.
func Terminology(industry string) []string {
	i := strings.ToLower(industry)
	var extra []string
	switch {
	case strings.Contains(i, "tech") || strings.Contains(i, "software"):
		extra = []string{"DevOps", "Agile Methodology", "Technical Debt", "Scalability", "Cloud Infrastructure"}
	case strings.Contains(i, "finance") || strings.Contains(i, "bank"):
		extra = []string{"Regulatory Compliance", "Risk Management", "Fraud Detection", "Customer Retention", "Open Banking"}
	case strings.Contains(i, "health") || strings.Contains(i, "medical"):
		extra = []string{"Electronic Health Records", "Patient Engagement", "Precision Medicine", "Regulatory Compliance", "Clinical Efficiency"}
	case strings.Contains(i, "retail") || strings.Contains(i, "commerce"):
		extra = []string{"Omnichannel", "Customer Journey", "Inventory Optimization", "Price Elasticity", "Personalization"}
	case strings.Contains(i, "manufact"):
		extra = []string{"Supply Chain Optimization", "Predictive Maintenance", "Quality Control", "Just-in-Time", "IoT Sensors"}
	default:
		return []string{
			industry + " Analytics",
			"Predictive Modeling",
			"Machine Learning",
			"Workflow Automation",
			"Natural Language Processing",
			"Customer Journey Mapping",
			"Operational Excellence",
			"Digital Transformation",
		}
	}
	return append(append([]string{}, baseTerms...), extra...)
}
