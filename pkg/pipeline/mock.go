package pipeline

import (
	"fmt"
	"time"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
)

// MockProposal is the canned proposal returned when a run fails. It has the
// same shape as a computed one.
func MockProposal(companyName, companyURL string, now time.Time) models.Proposal {
	return models.Proposal{
		ID:              fmt.Sprintf("%s-%d", cache.CompanyID(companyName), now.UnixMilli()),
		CompanyName:     companyName,
		CompanyURL:      companyURL,
		Industry:        "Technology",
		BusinessContext: companyName + " is a technology company focused on digital innovation.",
		CompanyOverview: &models.CompanyOverview{
			Description:  companyName + " provides digital solutions for modern businesses.",
			FoundedYear:  "2015",
			Headquarters: "San Francisco, CA",
			Employees:    "250-500",
		},
		IndustryAnalysis: &models.IndustryOverview{
			IndustryName: "Software as a Service (SaaS)",
			MarketSize:   "$157 billion (2023)",
			GrowthRate:   "21% annually",
			KeyTrends: []string{
				"Increased adoption of AI technologies",
				"Shift to remote work solutions",
				"Focus on data security and privacy",
			},
		},
		CurrentTechStack: []string{
			"Cloud infrastructure (AWS)",
			"Microservices architecture",
			"React.js frontend",
			"Python backend services",
		},
		AIOpportunities: []models.Opportunity{
			{
				ID:          "strategy_1",
				Title:       "AI-Powered Customer Service Automation",
				Description: "Implement AI chatbots and automated support systems to enhance customer service efficiency and availability.",
				Impact:      models.LevelHigh,
				Complexity:  models.LevelMedium,
				Timeframe:   models.ShortTerm,
				KeyBenefits: []string{
					"24/7 customer support availability",
					"Reduced response time by 75%",
					"Cost reduction of 35% for support operations",
				},
				ImplementationSteps: []string{
					"Select and customize NLP model",
					"Build knowledge base integration",
					"Develop conversation flows",
					"Test with subset of common queries",
					"Gradual rollout with human oversight",
				},
			},
			{
				ID:          "strategy_2",
				Title:       "Predictive Analytics for Business Intelligence",
				Description: "Develop AI models to analyze business data and provide predictive insights for decision making.",
				Impact:      models.LevelHigh,
				Complexity:  models.LevelHigh,
				Timeframe:   models.MediumTerm,
				KeyBenefits: []string{
					"Data-driven decision making",
					"15% improvement in forecast accuracy",
					"Early identification of market trends",
				},
				ImplementationSteps: []string{
					"Data collection and preparation",
					"Feature engineering",
					"Model selection and training",
					"Dashboard development",
					"Integration with existing systems",
				},
			},
			{
				ID:          "strategy_3",
				Title:       "Automated Content Generation",
				Description: "Utilize AI to generate marketing content, reports, and documentation.",
				Impact:      models.LevelMedium,
				Complexity:  models.LevelMedium,
				Timeframe:   models.ShortTerm,
				KeyBenefits: []string{
					"50% reduction in content creation time",
					"Consistent messaging across channels",
					"Ability to scale content production",
				},
				ImplementationSteps: []string{
					"Select AI model for content generation",
					"Fine-tune with company content",
					"Develop templates for different content types",
					"Create review workflow",
					"Integrate with content management systems",
				},
			},
		},
		ImplementationStrategy: &models.RolloutPlan{
			Approach: "Phased implementation starting with high-impact, lower-complexity opportunities",
			Timeline: "18-month roadmap with quarterly milestones",
			ResourceRequirements: []string{
				"Data science team (2-3 specialists)",
				"DevOps support for deployment",
				"Integration with existing systems",
			},
		},
		RiskAssessment: &models.RiskAssessment{
			PotentialRisks: []string{
				"Data privacy concerns",
				"Staff adaptation to new systems",
				"Integration challenges with legacy systems",
			},
			MitigationStrategies: []string{
				"Comprehensive data governance framework",
				"Change management and training programs",
				"Phased integration approach with thorough testing",
			},
		},
		RecommendedApproach: "Begin with customer service automation for quick wins, then expand to predictive analytics and content generation.",
		NextSteps: []string{
			"Conduct detailed technical assessment",
			"Develop project plan with key stakeholders",
			"Allocate initial resources for first phase",
			"Set up measurement framework",
		},
		ImagePrompts: []string{
			"AI chatbot interface for customer support",
			"Dashboard showing predictive analytics for business metrics",
			"Automated content generation workflow diagram",
		},
	}
}
