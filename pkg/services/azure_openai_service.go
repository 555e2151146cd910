package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/azure"
	"ai-proposal-api/pkg/llm"
)

// AzureEmbeddingDimensions is the vector size of the ada-002 family.
const AzureEmbeddingDimensions = 1536

const azureSystemPrompt = "You are an AI strategy consultant. When a task asks for JSON, answer with JSON only."

// AzureOpenAIService implements llm.CompletionService and llm.Embedder on Azure OpenAI.
type AzureOpenAIService struct {
	client *azure.OpenAIClient
	logger *zap.Logger
}

// NewAzureOpenAIService creates the service.
func NewAzureOpenAIService(endpoint, apiKey, apiVersion, chatDeploymentName, embeddingDeploymentName, proxyURL string, logger *zap.Logger) *AzureOpenAIService {
	return &AzureOpenAIService{
		client: azure.NewOpenAIClient(endpoint, apiKey, apiVersion, chatDeploymentName, embeddingDeploymentName, proxyURL, logger),
		logger: logger,
	}
}

// Generate sends prompt as a single user turn. Azure has no top-k; it is ignored.
func (s *AzureOpenAIService) Generate(ctx context.Context, prompt string, params llm.Params) (string, error) {
	request := azure.ChatCompletionRequest{
		Messages: []azure.ChatMessage{
			{Role: "system", Content: azureSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   int(params.MaxOutputTokens),
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}

	resp, err := s.client.ChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	s.logger.Debug("azure openai response",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding of text.
func (s *AzureOpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.CreateEmbedding(ctx, text)
}

// Dimensions reports the embedding size.
func (s *AzureOpenAIService) Dimensions() int { return AzureEmbeddingDimensions }
