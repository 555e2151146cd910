package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"ai-proposal-api/pkg/llm"
)

// GeminiEmbeddingDimensions is the vector size requested from the embedding model.
const GeminiEmbeddingDimensions = 768

// GeminiService implements llm.CompletionService and llm.Embedder on the Gemini API.
type GeminiService struct {
	client         *genai.Client
	model          string
	embeddingModel string
	logger         *zap.Logger
}

// NewGeminiService creates a Gemini client for the given models.
func NewGeminiService(ctx context.Context, apiKey, model, embeddingModel string, logger *zap.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if embeddingModel == "" {
		embeddingModel = "gemini-embedding-001"
	}
	return &GeminiService{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		logger:         logger,
	}, nil
}

// Generate runs one content generation call.
func (s *GeminiService) Generate(ctx context.Context, prompt string, params llm.Params) (string, error) {
	temperature, topK, topP := params.Temperature, params.TopK, params.TopP
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: params.MaxOutputTokens,
	}
	if topK > 0 {
		config.TopK = &topK
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	s.logger.Debug("gemini response", zap.String("model", s.model), zap.Int("chars", len(text)))
	return text, nil
}

// Embed returns the embedding of text.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := int32(GeminiEmbeddingDimensions)
	result, err := s.client.Models.EmbedContent(ctx,
		s.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			TaskType:             "SEMANTIC_SIMILARITY",
			OutputDimensionality: &dim,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini returned no embedding")
	}
	return result.Embeddings[0].Values, nil
}

// Dimensions reports the embedding size.
func (s *GeminiService) Dimensions() int { return GeminiEmbeddingDimensions }
