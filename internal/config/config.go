package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Cache    CacheConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	Provider          string // "openai"
	BaseURL           string // optional OpenAI-compatible endpoint
	FastModel         string
	FastFallbackModel string
	PipelineModel     string
	PipelineFallback  string
	MaxTokens         int
	EmbeddingProvider string // "openai" or "gemini"
	EmbeddingModel    string
	ToolConcurrency   int
}

type RagConfig struct {
	TopK           int
	Threshold      float64
	DocsDir        string
	WebResearch    bool
	IngestTopic    string
	ChunkSize      int
	ChunkOverlap   int
}

type CacheConfig struct {
	ChatTTL         time.Duration
	ConversationTTL time.Duration
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
	Tavily       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			Provider:          getEnv("LLM_PROVIDER", "openai"),
			BaseURL:           getEnv("LLM_BASE_URL", ""),
			FastModel:         getEnv("LLM_FAST_MODEL", "gpt-4o-mini"),
			FastFallbackModel: getEnv("LLM_FAST_FALLBACK_MODEL", "gpt-4o-mini"),
			PipelineModel:     getEnv("LLM_PIPELINE_MODEL", "gpt-4o"),
			PipelineFallback:  getEnv("LLM_PIPELINE_FALLBACK_MODEL", "gpt-4o-mini"),
			MaxTokens:         getEnvAsInt("LLM_PIPELINE_MAX_TOKENS", 1500),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			ToolConcurrency:   getEnvAsInt("TOOL_CONCURRENCY", 8),
		},
		Rag: RagConfig{
			TopK:         getEnvAsInt("RAG_TOP_K", 4),
			Threshold:    getEnvAsFloat("RAG_THRESHOLD", 0.75),
			DocsDir:      getEnv("RAG_DOCS_DIR", "docs"),
			WebResearch:  getEnvAsBool("WEB_RESEARCH_ENABLED", false),
			IngestTopic:  getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
			ChunkSize:    getEnvAsInt("RAG_CHUNK_SIZE", 900),
			ChunkOverlap: getEnvAsInt("RAG_CHUNK_OVERLAP", 120),
		},
		Cache: CacheConfig{
			ChatTTL:         getEnvAsDuration("CHAT_CACHE_TTL", 15*time.Minute),
			ConversationTTL: getEnvAsDuration("CONVERSATION_TTL", 24*time.Hour),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Tavily:       getEnv("TAVILY_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
