package engines

import (
	"strings"

	"ai-proposal-api/pkg/models"
)

// visual keywords win over every other group
var visualKeywords = []string{
	"image", "photo", "picture", "scan", "visual", "document analysis", "document processing",
	"ocr", "optical character", "vision", "camera", "image recognition",
	"document understanding", "image input", "image-based", "multimodal",
}

// categoryKeywords is ordered; ties go to the earlier group.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryConversation, []string{
		"chat", "conversation", "dialogue", "communication", "interaction",
		"support", "customer service", "chatbot", "virtual assistant",
		"interactive", "conversational ai", "chat interface", "llm chat",
		"gpt", "claude", "gemini", "llama", "agent", "conversational agent",
	}},
	{models.CategoryContentGeneration, []string{
		"generate", "creation", "write", "content", "text", "document",
		"report", "article", "blog", "draft", "create content",
		"writing assistant", "copywriting", "content creator", "text generator",
		"automated writing", "content creation", "llm writing", "generate text",
		"marketing copy", "email drafting", "blog generation",
	}},
	{models.CategoryTextAnalysis, []string{
		"analyze", "analysis", "process", "extract", "classify", "categorize",
		"sentiment", "understanding", "summarize", "summarization", "extraction",
		"semantic search", "text understanding", "text processing",
		"identify patterns", "classify text", "sentiment analysis",
		"text classification", "information extraction",
	}},
	{models.CategoryKnowledgeManagement, []string{
		"knowledge", "learning", "training", "documentation", "organize",
		"manage", "repository", "wiki", "faqs", "knowledge base",
		"information retrieval", "rag", "retrieval augmented", "vector database",
		"semantic search", "knowledge search", "document retrieval",
		"company knowledge", "institutional knowledge", "knowledge storage",
	}},
	{models.CategoryAutomation, []string{
		"automate", "workflow", "process", "task", "routine", "scheduling",
		"optimization", "streamline", "efficiency", "automated process",
		"workflow automation", "business process", "process improvement",
		"task management", "automated workflow", "email automation",
		"process automation", "customer interaction automation",
	}},
}

// DetermineCategory derives a category from title and description by
// keyword matching. Any visual keyword selects visual understanding;
// otherwise the group with the most hits wins and zero hits means other.
func DetermineCategory(title, description string) models.Category {
	content := strings.ToLower(title) + " " + strings.ToLower(description)

	for _, keyword := range visualKeywords {
		if strings.Contains(content, keyword) {
			return models.CategoryVisualUnderstanding
		}
	}

	best, bestScore := models.CategoryOther, 0
	for _, group := range categoryKeywords {
		score := 0
		for _, keyword := range group.keywords {
			if strings.Contains(content, keyword) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = group.category, score
		}
	}
	return best
}

var llmFeasibilityKeywords = []string{
	"llm", "language model", "ai model", "gpt", "claude", "gemini",
	"text generation", "understanding", "analysis", "processing",
}

// ValidateLLMFeasibility reports whether s can be built around an LLM: its
// category is one of the concrete categories, or its description mentions
// an LLM-related term.
func ValidateLLMFeasibility(s models.Strategy) bool {
	category := models.Category(strings.ToLower(string(s.Category)))
	if category.Valid() && category != models.CategoryOther {
		return true
	}
	description := strings.ToLower(s.Description)
	for _, keyword := range llmFeasibilityKeywords {
		if strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}
