package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Topics   TopicConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type TopicConfig struct {
	EmbedDocument string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiKey         string
	GeminiModel       string
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIKey         string
	OpenAIModel       string
	GroqKey           string
	GroqModel         string
	AnswerCacheStore  string // "memory" or "redis"
	CacheTTLMinutes   int
	CooldownMinutes   int
	DecayScanCron     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Topics: TopicConfig{
			EmbedDocument: getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT_CONTENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GroqKey:           getEnv("GROQ_API_KEY", ""),
			GroqModel:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			AnswerCacheStore:  getEnv("ANSWER_CACHE_STORE", "memory"),
			CacheTTLMinutes:   getEnvAsInt("ANSWER_CACHE_TTL_MINUTES", 15),
			CooldownMinutes:   getEnvAsInt("AI_COOLDOWN_MINUTES", 30),
			DecayScanCron:     getEnv("DECAY_SCAN_CRON", "0 3 * * *"),
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
