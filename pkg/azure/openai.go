package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAIClient sends requests to the Azure OpenAI REST API.
// endpoint may point at the Azure resource itself or at a forwarding proxy.
type OpenAIClient struct {
	endpoint                string
	apiKey                  string
	apiVersion              string
	chatDeploymentName      string
	embeddingDeploymentName string
	httpClient              *http.Client
}

// NewOpenAIClient creates a client. proxyURL, when set, is used as the HTTP
// transport proxy.
func NewOpenAIClient(endpoint, apiKey, apiVersion, chatDeploymentName, embeddingDeploymentName, proxyURL string, logger *zap.Logger) *OpenAIClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		proxy, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxy)
			logger.Info("azure openai: using HTTP proxy", zap.String("proxy", proxyURL))
		} else {
			logger.Warn("azure openai: invalid proxy URL, ignoring", zap.Error(err))
		}
	}

	return &OpenAIClient{
		endpoint:                endpoint,
		apiKey:                  apiKey,
		apiVersion:              apiVersion,
		chatDeploymentName:      chatDeploymentName,
		embeddingDeploymentName: embeddingDeploymentName,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   120 * time.Second,
		},
	}
}

// ChatMessage is one message of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the chat completions request body.
type ChatCompletionRequest struct {
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	TopP           float32         `json:"top_p,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat asks the deployment for a JSON object answer.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionResponse is the chat completions response body.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbeddingRequest is the embeddings request body.
type EmbeddingRequest struct {
	Input string `json:"input"`
}

// EmbeddingResponse is the embeddings response body.
type EmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// ErrorResponse is the error body returned on non-200 statuses.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ChatCompletion runs a chat completion against the chat deployment.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, request ChatCompletionRequest) (*ChatCompletionResponse, error) {
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(c.endpoint, "/"), c.chatDeploymentName, c.apiVersion)

	var response ChatCompletionResponse
	if err := c.doRequest(ctx, endpoint, request, &response); err != nil {
		return nil, fmt.Errorf("azure openai chat completion failed: %w", err)
	}
	return &response, nil
}

// CreateEmbedding returns the vector of text from the embedding deployment.
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c.embeddingDeploymentName == "" {
		return nil, fmt.Errorf("embedding deployment name is not configured")
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		strings.TrimSuffix(c.endpoint, "/"), c.embeddingDeploymentName, c.apiVersion)

	var embeddingResp EmbeddingResponse
	if err := c.doRequest(ctx, endpoint, EmbeddingRequest{Input: text}, &embeddingResp); err != nil {
		return nil, fmt.Errorf("azure openai embedding failed: %w", err)
	}
	if len(embeddingResp.Data) == 0 || len(embeddingResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("azure openai returned no embedding")
	}
	return embeddingResp.Data[0].Embedding, nil
}

// doRequest posts requestData as JSON and decodes the answer into responseData.
func (c *OpenAIClient) doRequest(ctx context.Context, endpoint string, requestData, responseData any) error {
	if c.apiKey == "" {
		return fmt.Errorf("API key is not configured")
	}

	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, errorResp.Error.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
