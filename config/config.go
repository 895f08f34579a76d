// Package config provides configuration for the Skills Ladder API.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration. It is constructed once at
// process start and injected into every component that needs it.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Generation model settings
	LLMBaseURL      string        `yaml:"llm_base_url"`
	LLMAPIKey       string        `yaml:"llm_api_key"`
	LLMTimeout      time.Duration `yaml:"-"`
	ChatModel       string        `yaml:"chat_model"`
	ChatMaxTokens   int           `yaml:"chat_max_tokens"`
	ChatTemperature float64       `yaml:"chat_temperature"`
	PlanMaxTokens   int           `yaml:"plan_max_tokens"`
	PlanTemperature float64       `yaml:"plan_temperature"`

	// Chat history service settings
	HistoryBaseURL     string        `yaml:"history_base_url"`
	HistoryCollection  string        `yaml:"history_collection"`
	HistorySearchField string        `yaml:"history_search_field"`
	HistoryTimeout     time.Duration `yaml:"-"`

	// Auth stub (disabled by default)
	AuthEnabled bool   `yaml:"auth_enabled"`
	AuthToken   string `yaml:"auth_token"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables. Environment variables take precedence over the file.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:           8000,
		DatabaseURL:        "file:skillsladder.db?cache=shared&mode=rwc",
		LLMBaseURL:         "http://localhost:4000",
		ChatModel:          "anthropic.claude-3-haiku-20240307-v1:0",
		ChatMaxTokens:      500,
		ChatTemperature:    0.7,
		PlanMaxTokens:      5000,
		PlanTemperature:    0.7,
		HistoryBaseURL:     "http://localhost:8000",
		HistoryCollection:  "chatHistories",
		HistorySearchField: "sessionName",
		LogLevel:           "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_MS", 300000)) * time.Millisecond
	cfg.ChatModel = getEnv("CHAT_MODEL", cfg.ChatModel)
	cfg.ChatMaxTokens = getEnvInt("CHAT_MAX_TOKENS", cfg.ChatMaxTokens)
	cfg.ChatTemperature = getEnvFloat("CHAT_TEMPERATURE", cfg.ChatTemperature)
	cfg.PlanMaxTokens = getEnvInt("PLAN_MAX_TOKENS", cfg.PlanMaxTokens)
	cfg.PlanTemperature = getEnvFloat("PLAN_TEMPERATURE", cfg.PlanTemperature)
	cfg.HistoryBaseURL = getEnv("HISTORY_BASE_URL", cfg.HistoryBaseURL)
	cfg.HistoryCollection = getEnv("HISTORY_COLLECTION", cfg.HistoryCollection)
	cfg.HistorySearchField = getEnv("HISTORY_SEARCH_FIELD", cfg.HistorySearchField)
	cfg.HistoryTimeout = time.Duration(getEnvInt("HISTORY_TIMEOUT_MS", 10000)) * time.Millisecond
	cfg.AuthEnabled = getEnvBool("AUTH_ENABLED", cfg.AuthEnabled)
	cfg.AuthToken = getEnv("AUTH_TOKEN", cfg.AuthToken)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings. A failure here is fatal at startup.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("CHAT_MODEL is required")
	}
	if c.HistoryBaseURL == "" {
		return fmt.Errorf("HISTORY_BASE_URL is required")
	}
	if c.HistoryCollection == "" {
		return fmt.Errorf("HISTORY_COLLECTION is required")
	}
	if c.HistorySearchField == "" {
		return fmt.Errorf("HISTORY_SEARCH_FIELD is required")
	}
	if c.AuthEnabled && c.AuthToken == "" {
		return fmt.Errorf("AUTH_TOKEN is required when AUTH_ENABLED is set")
	}
	return nil
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

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
