package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string

	LLMProvider          string
	GoogleAIAPIKey       string
	GeminiModel          string
	GeminiEmbeddingModel string

	AzureOpenAIEndpoint            string
	AzureOpenAIAPIKey              string
	AzureOpenAIAPIVersion          string
	AzureOpenAIChatDeploymentName  string
	AzureOpenAIEmbeddingDeployment string
	AzureOpenAIProxyURL            string

	CacheBackend    string
	CacheDir        string
	CacheSQLitePath string

	QdrantURL    string
	QdrantAPIKey string

	BrowserBin      string
	BrowserHeadless bool

	PipelineConfigFile string
}

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderAzure  = "azure"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		APIKey:        getEnv("API_KEY", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		LLMProvider:          getEnv("LLM_PROVIDER", ProviderGemini),
		GoogleAIAPIKey:       getEnv("GOOGLE_AI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),

		AzureOpenAIEndpoint:            getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:              getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIAPIVersion:          getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		AzureOpenAIChatDeploymentName:  getEnv("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME", "gpt-4o-mini"),
		AzureOpenAIEmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME", "text-embedding-3-small"),
		AzureOpenAIProxyURL:            getEnv("AZURE_OPENAI_PROXY_URL", ""),

		CacheBackend:    getEnv("CACHE_BACKEND", CacheBackendFile),
		CacheDir:        getEnv("CACHE_DIR", "./cache"),
		CacheSQLitePath: getEnv("CACHE_SQLITE_PATH", "./cache/proposals.db"),

		QdrantURL:    getEnv("QDRANT_URL", ""),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		BrowserBin:      getEnv("BROWSER_BIN", ""),
		BrowserHeadless: getBool("BROWSER_HEADLESS", true),

		PipelineConfigFile: getEnv("PIPELINE_CONFIG_FILE", ""),
	}
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
