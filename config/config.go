package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/s3agent/logging"
	"github.com/hupe1980/s3agent/objectstore/s3"
)

// LLM providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderMock       = "mock"
)

// Storage backends.
const (
	BackendS3     = "s3"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// OpenRouterBaseURL is the OpenAI compatible endpoint used by the openrouter provider.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Default model per provider.
var defaultModels = map[string]string{
	ProviderOpenRouter: "tngtech/deepseek-r1t2-chimera:free",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-3-5-sonnet-20241022",
	ProviderMock:       "mock",
}

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete service configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Runner  RunnerConfig  `mapstructure:"runner"`
	Log     LogConfig     `mapstructure:"log"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider        string            `mapstructure:"provider"`
	BaseURL         string            `mapstructure:"base_url"`
	APIKey          string            `mapstructure:"api_key"`
	Model           string            `mapstructure:"model"`
	MaxOutputTokens int64             `mapstructure:"max_output_tokens"`
	MaxRetries      int               `mapstructure:"max_retries"`
	Headers         map[string]string `mapstructure:"headers"`
	// Prompt overrides the default summarize template.
	Prompt string `mapstructure:"prompt"`
}

// StorageConfig selects the object store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	// Root is the base directory of the local backend.
	Root string    `mapstructure:"root"`
	S3   s3.Config `mapstructure:",squash"`
}

// ServerConfig configures the HTTP handler.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RunnerConfig bounds concurrent invocations.
type RunnerConfig struct {
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
	InvocationTimeout time.Duration `mapstructure:"invocation_timeout"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenRouter
	}
	if c.LLM.BaseURL == "" && c.LLM.Provider == ProviderOpenRouter {
		c.LLM.BaseURL = OpenRouterBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = 300
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendS3
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "./data"
	}
	c.Storage.S3.ApplyDefaults()

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}

	if c.Runner.MaxConcurrent <= 0 {
		c.Runner.MaxConcurrent = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return fmt.Errorf("%w: llm.provider %q", ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: llm.max_output_tokens must be positive", ErrInvalidConfig)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("%w: llm.max_retries must not be negative", ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case BackendS3, BackendMemory:
	case BackendLocal:
		if c.Storage.Root == "" {
			return fmt.Errorf("%w: storage.root is required for the local backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// Warnings lists settings that are valid but will likely fail at runtime,
// such as a missing or placeholder API key.
func (c *Config) Warnings() []string {
	var out []string
	if c.LLM.Provider != ProviderMock && isPlaceholder(c.LLM.APIKey) {
		out = append(out, fmt.Sprintf("no API key configured for provider %s; set OPENROUTER_API_KEY or llm.api_key", c.LLM.Provider))
	}
	if c.Storage.Backend == BackendS3 && c.Storage.S3.AccessKey != "" && c.Storage.S3.SecretKey == "" {
		out = append(out, "storage.access_key is set without storage.secret_key; the default AWS credential chain will be used")
	}
	return out
}

func isPlaceholder(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return k == "" || strings.HasPrefix(k, "your") || strings.Contains(k, "xxx") || k == "changeme"
}
