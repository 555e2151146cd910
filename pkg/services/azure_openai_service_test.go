package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/azure"
	"ai-proposal-api/pkg/llm"
)

func newAzureTestServer(t *testing.T, handler http.HandlerFunc) *AzureOpenAIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAzureOpenAIService(server.URL, "test-key", "2024-02-01", "chat", "embed", "", zap.NewNop())
}

func TestAzureOpenAIService_Generate(t *testing.T) {
	var got azure.ChatCompletionRequest
	svc := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/chat/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	})

	text, err := svc.Generate(context.Background(), "hello", llm.Planning)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hello", got.Messages[1].Content)
	assert.Equal(t, 8192, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
}

func TestAzureOpenAIService_GenerateError(t *testing.T) {
	svc := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"429","message":"rate limited"}}`))
	})

	_, err := svc.Generate(context.Background(), "hello", llm.Structured)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429: rate limited")
}

func TestAzureOpenAIService_GenerateEmpty(t *testing.T) {
	svc := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Generate(context.Background(), "hello", llm.Structured)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestAzureOpenAIService_Embed(t *testing.T) {
	svc := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/embed/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	})

	vec, err := svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, AzureEmbeddingDimensions, svc.Dimensions())
}
