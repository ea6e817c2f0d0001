package config

import (
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Config holds every tunable the service reads from the environment.
// Load never fails; missing required credentials are reported by Validate
// so the process can run degraded (signal sources fall back to neutral).
type Config struct {
	Port     string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PineconeAPIKey    string
	PineconeIndexName string
	PineconeNamespace string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	GenerationModel string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int

	EmbeddingModel     string
	EmbeddingDimension int

	MaxDocuments        int
	SimilarityThreshold float64

	// Optional HTTP model services. Empty URL means the capability is
	// unavailable and fusion degrades to its neutral contribution.
	IntentClassifierURL string
	ZeroShotURL         string
	SentimentModelURL   string
	EntityExtractorURL  string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnv("PINECONE_INDEX", "mentalbloom"),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", "mental-health-resources"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),

		GenerationModel: getEnv("GENERATION_MODEL", "gpt-4o-mini"),
		Temperature:     getEnvFloat("GENERATION_TEMPERATURE", 0.7),
		TopP:            getEnvFloat("GENERATION_TOP_P", 0.95),
		MaxOutputTokens: getEnvInt("GENERATION_MAX_OUTPUT_TOKENS", 1024),

		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 1536),

		MaxDocuments:        getEnvInt("MAX_DOCUMENTS", 5),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.7),

		IntentClassifierURL: os.Getenv("INTENT_CLASSIFIER_URL"),
		ZeroShotURL:         os.Getenv("ZERO_SHOT_URL"),
		SentimentModelURL:   os.Getenv("SENTIMENT_MODEL_URL"),
		EntityExtractorURL:  os.Getenv("ENTITY_EXTRACTOR_URL"),
	}
}

// Validate logs a warning for every missing credential. The service still
// starts; the affected capability degrades instead of failing requests.
func (c *Config) Validate(logger *zap.Logger) {
	if c.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, generation and embeddings will not work")
	}
	if c.PineconeAPIKey == "" {
		logger.Warn("PINECONE_API_KEY is not set, document retrieval will be disabled")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
