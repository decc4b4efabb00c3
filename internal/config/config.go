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
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtlpEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	EmbeddingDevice   string // "cpu" or "gpu"
	EmbeddingDims     int
	OllamaBaseURL     string
	OllamaModel       string
	JinaAPIKey        string
}

// PipelineConfig is the explicit tuning surface of the ingestion pipeline.
// All knobs are threaded through the runner constructor; nothing is read
// from ambient globals at run time.
type PipelineConfig struct {
	BatchSize       int
	ChunkWindow     int // words
	ChunkOverlap    int // words
	ChunkTimeout    time.Duration
	MaxChunkRetries int
	MaxStoreRetries int
	RetryBackoff    time.Duration
	LeaseTTL        time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtlpEndpoint:       getEnv("OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingDevice:   getEnv("EMBEDDING_DEVICE", "cpu"),
			EmbeddingDims:     getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			BatchSize:       getEnvAsInt("PIPELINE_BATCH_SIZE", 25),
			ChunkWindow:     getEnvAsInt("PIPELINE_CHUNK_WINDOW", 512),
			ChunkOverlap:    getEnvAsInt("PIPELINE_CHUNK_OVERLAP", 100),
			ChunkTimeout:    getEnvAsDuration("PIPELINE_CHUNK_TIMEOUT", 30*time.Second),
			MaxChunkRetries: getEnvAsInt("PIPELINE_MAX_CHUNK_RETRIES", 3),
			MaxStoreRetries: getEnvAsInt("PIPELINE_MAX_STORE_RETRIES", 3),
			RetryBackoff:    getEnvAsDuration("PIPELINE_RETRY_BACKOFF", 500*time.Millisecond),
			LeaseTTL:        getEnvAsDuration("PIPELINE_LEASE_TTL", 10*time.Minute),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
