// Package config provides configuration for the chat server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvChatMode is the environment variable name for mode selection.
	EnvChatMode = "CHAT_MODE"
	// ModeMock indicates mock generation backends should be used.
	ModeMock = "MOCK"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	Port int
	Env  string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Catalog
	GroceryCSVPath string

	// Generation backends
	DefaultBackend string
	OpenAIAPIBase  string
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIBase  string
	GeminiAPIKey   string
	GeminiModel    string
	OllamaAPIBase  string
	OllamaModel    string
	LLMTimeout     time.Duration

	// Pipeline
	PipelineWorkers  int
	ChatHistoryLimit int

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables.
// A .env file is read first if present (for development).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnvInt("PORT", 8000),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", "./data/grocerychat.db"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 1440)) * time.Minute,

		GroceryCSVPath: getEnv("GROCERY_CSV_PATH", "./GroceryDataset.csv"),

		DefaultBackend: getEnv("DEFAULT_LLM_BACKEND", "openai"),
		OpenAIAPIBase:  getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIBase:  getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OllamaAPIBase:  getEnv("OLLAMA_API_BASE", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "tinyllama"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,

		PipelineWorkers:  getEnvInt("PIPELINE_WORKERS", 4),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 50),

		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MockMode reports whether mock generation backends were requested.
func MockMode() bool {
	return os.Getenv(EnvChatMode) == ModeMock
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
