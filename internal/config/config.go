package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the callcoach server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Recording  RecordingConfig
	AI         AIConfig
	Frameworks FrameworksConfig
	Analysis   AnalysisConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL string
}

type RecordingConfig struct {
	BaseURL      string
	AccessKey    string
	AccessSecret string
	Timeout      time.Duration
	PageSize     int
	MaxPages     int
	MaxRetries   int
	CacheTTL     time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	MaxTokens        int
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type FrameworksConfig struct {
	// Dir optionally overrides embedded definitions with <name>.yaml files.
	Dir string
}

type AnalysisConfig struct {
	Workers            int
	Timeout            time.Duration
	MaxTranscriptChars int
}

const (
	minWorkers = 1
	maxWorkers = 16
	maxPage    = 100
)

var validProviders = map[string]bool{
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
	"mock":      true,
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("CALLCOACH_PORT", 8080),
			Env:             envString("CALLCOACH_ENV", "development"),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Recording: RecordingConfig{
			BaseURL:      strings.TrimRight(os.Getenv("RECORDING_BASE_URL"), "/"),
			AccessKey:    os.Getenv("RECORDING_ACCESS_KEY"),
			AccessSecret: os.Getenv("RECORDING_ACCESS_SECRET"),
			Timeout:      envDuration("RECORDING_TIMEOUT", 30*time.Second),
			PageSize:     envInt("RECORDING_PAGE_SIZE", maxPage),
			MaxPages:     envInt("RECORDING_MAX_PAGES", 50),
			MaxRetries:   envInt("RECORDING_MAX_RETRIES", 3),
			CacheTTL:     envDuration("RECORDING_CACHE_TTL", 10*time.Minute),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			MaxTokens:        envInt("AI_MAX_TOKENS", 8000),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3.1"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			},
		},
		Frameworks: FrameworksConfig{
			Dir: os.Getenv("FRAMEWORKS_DIR"),
		},
		Analysis: AnalysisConfig{
			Workers:            clamp(envInt("ANALYSIS_WORKERS", 4), minWorkers, maxWorkers),
			Timeout:            envDuration("ANALYSIS_TIMEOUT", 10*time.Minute),
			MaxTranscriptChars: envInt("ANALYSIS_MAX_TRANSCRIPT_CHARS", 120000),
		},
	}

	if cfg.Recording.PageSize <= 0 || cfg.Recording.PageSize > maxPage {
		cfg.Recording.PageSize = maxPage
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Recording.BaseURL == "" {
		return fmt.Errorf("RECORDING_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Recording.BaseURL, "http://") && !strings.HasPrefix(c.Recording.BaseURL, "https://") {
		return fmt.Errorf("RECORDING_BASE_URL must start with http:// or https://, got %q", c.Recording.BaseURL)
	}
	if (c.Recording.AccessKey == "") != (c.Recording.AccessSecret == "") {
		return fmt.Errorf("RECORDING_ACCESS_KEY and RECORDING_ACCESS_SECRET must be set together")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, anthropic, mock; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AI.MaxTokens)
	}

	if c.Frameworks.Dir != "" {
		info, err := os.Stat(c.Frameworks.Dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("FRAMEWORKS_DIR %q is not a readable directory", c.Frameworks.Dir)
		}
	}

	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive")
	}

	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
