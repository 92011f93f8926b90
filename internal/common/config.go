package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	LLM      LLMConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver     string // "postgres" | "sqlite"
	DSN        string // postgres DSN
	SQLitePath string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext string // binary name or absolute path; empty disables the poppler strategy
}

// LLMConfig holds generative-backend configuration
type LLMConfig struct {
	DefaultBackend string
	GroqAPIKey     string
	GroqModel      string
	GroqBaseURL    string
	GeminiAPIKey   string
	GeminiModel    string
	Timeout        time.Duration
	MaxRetries     int
}

// IngestConfig holds drop-folder ingestion configuration
type IngestConfig struct {
	WatchDir string // empty disables the watcher
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			DSN:        getEnv("DB_URL", ""),
			SQLitePath: getEnv("SQLITE_PATH", "./invoiceflow.db"),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":4000"),
		},
		Extract: ExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", ""),
		},
		LLM: LLMConfig{
			DefaultBackend: getEnv("DEFAULT_BACKEND", "groq"),
			GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
			GroqModel:      getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			GroqBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			MaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 0),
		},
		Ingest: IngestConfig{
			WatchDir: getEnv("WATCH_DIR", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required when DB_DRIVER=postgres", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.GroqAPIKey == "" && c.LLM.GeminiAPIKey == "" {
		return NewAppError("CONFIG_ERROR", "at least one of GROQ_API_KEY, GEMINI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
