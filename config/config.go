// Package config reads the playground configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

type Config struct {
	App        AppConfig
	Playground PlaygroundConfig
	Keys       APIKeys
	Auth       AuthConfig
}

type AppConfig struct {
	Port               string
	Debug              bool
	LogFile            string
	CorsAllowedOrigins []string
}

type PlaygroundConfig struct {
	// DefaultModel overrides the catalog default when set.
	DefaultModel      string
	MaxPromptLength   int
	StrictBackends    bool
	GenerationTimeout time.Duration
	SessionTTL        time.Duration
	CatalogPath       string
}

type APIKeys struct {
	Gemini        string
	OpenAI        string
	OpenAIBaseURL string
}

type AuthConfig struct {
	SessionTokenSecret string
}

const devTokenSecret = "playground-dev-secret-change-me"

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = gotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "8080"),
			Debug:              env.Bool("DEBUG", false),
			LogFile:            getEnv("LOG_FILE", ""),
			CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Playground: PlaygroundConfig{
			DefaultModel:      getEnv("DEFAULT_MODEL", ""),
			MaxPromptLength:   env.Int("MAX_PROMPT_LENGTH", domain.DefaultMaxPromptLength),
			StrictBackends:    env.Bool("STRICT_BACKENDS", false),
			GenerationTimeout: env.Duration("GENERATION_TIMEOUT", 60*time.Second),
			SessionTTL:        env.Duration("SESSION_TTL", time.Hour),
			CatalogPath:       getEnv("MODEL_CATALOG_PATH", ""),
		},
		Keys: APIKeys{
			Gemini:        getEnv("GEMINI_API_KEY", ""),
			OpenAI:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Auth: AuthConfig{
			SessionTokenSecret: getEnv("SESSION_TOKEN_SECRET", ""),
		},
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Auth.SessionTokenSecret == "" && cfg.App.Debug {
		cfg.Auth.SessionTokenSecret = devTokenSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.Playground.MaxPromptLength <= 0 {
		return errors.New("MAX_PROMPT_LENGTH must be > 0")
	}
	if c.Playground.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be > 0")
	}
	if c.Playground.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be > 0")
	}
	if c.Auth.SessionTokenSecret == "" {
		return errors.New("SESSION_TOKEN_SECRET is required unless DEBUG=true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

// envReader parses typed variables and keeps every malformed value it meets.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, value, want string) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q is not a valid %s", key, value, want))
}

func (r *envReader) Bool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		r.fail(key, value, "boolean")
		return fallback
	}
}

func (r *envReader) Int(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, value, "integer")
		return fallback
	}
	return n
}

// Duration accepts Go durations ("90s") and plain seconds ("90").
func (r *envReader) Duration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return time.Duration(n) * time.Second
	}
	r.fail(key, value, "duration")
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
