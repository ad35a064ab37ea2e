package chat

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-derived client settings. Every field is
// read from the HOMEBASE_CHAT_* namespace.
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" required:"true"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	APIKey      string        `envconfig:"API_KEY"`
	DisplayName string        `envconfig:"DISPLAY_NAME"`
	Debug       bool          `envconfig:"DEBUG"`
}

// ConfigFromEnv loads the client configuration from the environment.
// A present-but-empty base URL is rejected like a missing one, so NewFromEnv
// returns an error instead of tripping New's panic.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("homebase_chat", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("HOMEBASE_CHAT_BASE_URL must not be empty")
	}
	return cfg, nil
}

// NewFromEnv constructs a Client from environment configuration plus the
// supplied credentials. Explicit options override the environment.
func NewFromEnv(creds Credentials, opts ...Option) (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	envOpts := []Option{WithHTTPTimeout(cfg.HTTPTimeout)}
	if cfg.APIKey != "" {
		envOpts = append(envOpts, WithAPIKey(cfg.APIKey))
	}
	if cfg.DisplayName != "" {
		envOpts = append(envOpts, WithDisplayName(cfg.DisplayName))
	}
	if cfg.Debug {
		envOpts = append(envOpts, WithDebugLogging(true))
	}
	return New(cfg.BaseURL, creds, append(envOpts, opts...)...)
}
