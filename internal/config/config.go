package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Places   PlacesConfig
	Auth     AuthConfig
	Finder   FinderConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
}

type AuthConfig struct {
	JWTSecret string
}

type FinderConfig struct {
	SearchTimeout   time.Duration
	DirectoryURL    string
	EnableDirectory bool
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8080),
			AllowedOrigins:  parseCommaSeparated(getEnv("ALLOWED_ORIGINS", "*")),
			ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Postgres: PostgresConfig{
			Host:     getEnv("SUPABASE_DB_HOST", "localhost"),
			Port:     getEnvInt("SUPABASE_DB_PORT", 5432),
			User:     getEnv("SUPABASE_DB_USER", "postgres"),
			Password: getEnv("SUPABASE_DB_PASSWORD", ""),
			Database: getEnv("SUPABASE_DB_NAME", "postgres"),
			SSLMode:  getEnv("SUPABASE_DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Places: PlacesConfig{
			APIKey:  getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL: getEnv("GOOGLE_PLACES_BASE_URL", "https://places.googleapis.com/v1"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		},
		Finder: FinderConfig{
			SearchTimeout:   time.Duration(getEnvInt("FINDER_SEARCH_TIMEOUT_SECONDS", 10)) * time.Second,
			DirectoryURL:    getEnv("FINDER_DIRECTORY_URL", ""),
			EnableDirectory: getEnvBool("FINDER_ENABLE_DIRECTORY", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Places.APIKey == "" {
		return fmt.Errorf("GOOGLE_PLACES_API_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.Postgres.Password == "" {
		return fmt.Errorf("SUPABASE_DB_PASSWORD is required")
	}
	if c.Finder.EnableDirectory && c.Finder.DirectoryURL == "" {
		return fmt.Errorf("FINDER_DIRECTORY_URL is required when FINDER_ENABLE_DIRECTORY is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
