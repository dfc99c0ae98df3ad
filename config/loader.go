package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment. Variables that are
// already set win over the file.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// Environ returns the environment to bind. Defaults to os.Environ.
	Environ func() []string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnviron replaces the environment source.
func WithEnviron(fn func() []string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Environ = fn }
}

var configSearchPaths = []string{
	"./config.yml",
	"./config.yaml",
	"./config/config.yml",
	"./cmd/s3agent/config.yml",
}

var envSearchPaths = []string{
	"./.env",
	"./cmd/s3agent/.env",
}

// envAliases binds well-known variable names that do not follow the
// SECTION_FIELD convention.
var envAliases = map[string][]string{
	"llm.api_key":               {"LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
	"storage.region":            {"STORAGE_REGION", "AWS_REGION", "AWS_DEFAULT_REGION"},
	"storage.endpoint":          {"STORAGE_ENDPOINT", "AWS_ENDPOINT_URL_S3", "AWS_ENDPOINT_URL"},
	"storage.access_key":        {"STORAGE_ACCESS_KEY", "AWS_ACCESS_KEY_ID"},
	"storage.secret_key":        {"STORAGE_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"},
	"storage.session_token":     {"STORAGE_SESSION_TOKEN", "AWS_SESSION_TOKEN"},
	"server.addr":               {"SERVER_ADDR"},
	"runner.max_concurrent":     {"RUNNER_MAX_CONCURRENT"},
	"runner.invocation_timeout": {"RUNNER_INVOCATION_TIMEOUT"},
}

var sections = map[string]bool{"llm": true, "storage": true, "server": true, "runner": true, "log": true}

// Load resolves config.yml and .env, binds environment variables, unmarshals
// the result, applies defaults and validates it.
//
// Precedence, highest first: environment (including .env), config file,
// defaults.
func Load(opts ...LoaderOption) (*Config, error) {
	lc := LoaderConfig{
		FileSystem: RealFileSystem{},
		Environ:    os.Environ,
	}
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem, configSearchPaths)
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem, envSearchPaths)
	}

	v := viper.New()

	// 1. Load YAML config first (base configuration)
	if configFile != "" {
		if !lc.FileSystem.Exists(configFile) {
			return nil, fmt.Errorf("config file %s not found", configFile)
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	// 2. Load .env so its variables are visible to the binding below
	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	// 3. Bind environment variables
	bindEnv(v, lc.Environ())

	// 4. Unmarshal, default, validate
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnv sets every SECTION_FIELD variable under its nested key, then the
// aliases, so that LLM_MODEL becomes llm.model and OPENROUTER_API_KEY becomes
// llm.api_key. An explicit SECTION_FIELD variable wins over an alias.
func bindEnv(v *viper.Viper, environ []string) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		env[key] = value
	}

	set := make(map[string]bool)
	for key, value := range env {
		nested, ok := nestedKey(key)
		if !ok {
			continue
		}
		v.Set(nested, value)
		set[nested] = true
	}

	for nested, names := range envAliases {
		if set[nested] {
			continue
		}
		for _, name := range names {
			if value, ok := env[name]; ok {
				v.Set(nested, value)
				break
			}
		}
	}
}

// nestedKey maps LLM_MAX_OUTPUT_TOKENS to llm.max_output_tokens. Only the
// known sections are bound.
func nestedKey(envKey string) (string, bool) {
	section, field, ok := strings.Cut(strings.ToLower(envKey), "_")
	if !ok || field == "" || !sections[section] {
		return "", false
	}
	return section + "." + field, true
}
