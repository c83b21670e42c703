package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration used across the service. Values come
// from the active environment profile (.env) with process environment taking
// precedence, mirroring how operators switch profiles with cmd/switchenv.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Emotion  EmotionConfig
	Chat     ChatConfig
	Cache    CacheConfig
}

// AppConfig carries identity and debug toggles.
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	LogLevel    string
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// DatabaseConfig holds the connection string for the relational store.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// AuthConfig drives token signing.
type AuthConfig struct {
	SecretKey          string
	Algorithm          string
	AccessTokenExpire  time.Duration
	RefreshTokenExpire time.Duration
}

// LLMConfig contains OpenAI settings.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// EmotionConfig controls the emotion analysis pipeline.
type EmotionConfig struct {
	Threshold    float64
	HumeAPIKey   string
	PreloadModel bool
	InferenceURL string
}

// ChatConfig tunes conversation handling.
type ChatConfig struct {
	MaxConversationHistory int
	PersonasPath           string
}

// CacheConfig contains connection information for the analysis cache.
type CacheConfig struct {
	Enabled bool
	Addr    string
}

// Load reads the active environment profile and process environment.
//
// The profile file (default .env, override via ENV_FILE) is loaded first so
// that already-exported variables keep precedence, matching the switcher's
// contract that profile selection is immutable for the process lifetime.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := defaultConfig()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.App.Debug = parseBool(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitOrigins(v)
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := os.Getenv("ALGORITHM"); v != "" {
		cfg.Auth.Algorithm = v
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Auth.AccessTokenExpire = time.Duration(parsed) * time.Minute
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("EMOTION_ANALYSIS_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Emotion.Threshold = parsed
		}
	}
	if v := os.Getenv("HUME_API_KEY"); v != "" {
		cfg.Emotion.HumeAPIKey = v
	}
	if v := os.Getenv("PRELOAD_EMOTION_MODEL"); v != "" {
		cfg.Emotion.PreloadModel = parseBool(v)
	}
	if v := os.Getenv("EMOTION_INFERENCE_URL"); v != "" {
		cfg.Emotion.InferenceURL = v
	}
	if v := os.Getenv("MAX_CONVERSATION_HISTORY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxConversationHistory = parsed
		}
	}
	if v := os.Getenv("PERSONAS_PATH"); v != "" {
		cfg.Chat.PersonasPath = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "InnerCalm API",
			Version:     "1.0.0",
			Environment: "development",
			Debug:       false,
			LogLevel:    "info",
		},
		HTTP: HTTPConfig{
			Address:        ":8000",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Database: DatabaseConfig{
			MaxConns: 4,
		},
		Auth: AuthConfig{
			Algorithm:          "HS256",
			AccessTokenExpire:  30 * time.Minute,
			RefreshTokenExpire: 7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "gpt-4",
			Temperature: 0.7,
		},
		Emotion: EmotionConfig{
			Threshold: 0.5,
		},
		Chat: ChatConfig{
			MaxConversationHistory: 20,
			PersonasPath:           "configs/personas.yaml",
		},
	}
}

// UsesPostgres reports whether the DATABASE_URL points at a Postgres server.
// Profiles carrying a sqlite-style DSN (the testing profile uses
// sqlite:///:memory:) run on the in-memory repositories instead.
func (c *Config) UsesPostgres() bool {
	url := strings.TrimSpace(c.Database.URL)
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "testing", "production":
	default:
		return fmt.Errorf("unknown environment %q", c.App.Environment)
	}
	if c.HTTP.Address == "" {
		return errors.New("http address cannot be empty")
	}
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return errors.New("SECRET_KEY cannot be empty")
	}
	if c.Auth.Algorithm != "HS256" {
		return fmt.Errorf("unsupported token algorithm %q", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpire <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Emotion.Threshold < 0 || c.Emotion.Threshold > 1 {
		return errors.New("EMOTION_ANALYSIS_THRESHOLD must be within [0, 1]")
	}
	if c.Chat.MaxConversationHistory <= 0 {
		return errors.New("MAX_CONVERSATION_HISTORY must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("rate limit requests per minute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("rate limit burst must be positive")
		}
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("CACHE_ADDR cannot be empty when the cache is enabled")
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.Trim(strings.TrimSpace(part), `"'`)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
