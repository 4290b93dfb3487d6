// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.hoopsight/config.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the Gemini API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty or invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max output tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max output tokens")

	// ErrInvalidOddsBaseURL indicates the odds feed base URL is not a valid URL.
	ErrInvalidOddsBaseURL = errors.New("invalid odds feed base URL")

	// ErrInvalidMaxToolRounds indicates the tool-round cap is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")
)

const (
	// DefaultModelName is the Gemini model used for chat and preload turns.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultOddsBaseURL is where the odds-and-predictions backend listens
	// in local development.
	DefaultOddsBaseURL = "http://localhost:8000"

	// DefaultMaxToolRounds bounds the tool-call loop per chat turn.
	// The model normally needs a single GET_ODDS round trip; the cap only
	// guards against a misbehaving model requesting tools forever.
	DefaultMaxToolRounds = 3

	// MaxAllowedToolRounds is the absolute upper bound for the cap.
	MaxAllowedToolRounds = 10
)

// Config stores application configuration.
type Config struct {
	// Model configuration
	ModelName       string  `mapstructure:"model_name"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`

	// GeminiAPIKey is read from the GEMINI_API_KEY environment variable.
	// SENSITIVE: never logged.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Odds feed configuration
	OddsBaseURL    string `mapstructure:"odds_base_url"`
	OddsTimeoutSec int    `mapstructure:"odds_timeout_sec"`

	// Orchestration configuration
	MaxToolRounds int `mapstructure:"max_tool_rounds"`

	// Serve configuration
	ServeAddr string `mapstructure:"serve_addr"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".hoopsight")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_output_tokens", 8192)

	v.SetDefault("odds_base_url", DefaultOddsBaseURL)
	v.SetDefault("odds_timeout_sec", 15)

	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)

	v.SetDefault("serve_addr", "127.0.0.1:3400")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded strings can't fail to bind; a panic here is a bug, not a
	// runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "HOOPSIGHT_MODEL_NAME")
	mustBind("odds_base_url", "HOOPSIGHT_ODDS_BASE_URL")
	mustBind("serve_addr", "HOOPSIGHT_SERVE_ADDR")
	mustBind("log_level", "HOOPSIGHT_LOG_LEVEL")
}

// Validate checks configuration invariants (fail-fast at startup).
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (must be in [0, 2])", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidMaxTokens, c.MaxOutputTokens)
	}
	if c.MaxToolRounds <= 0 || c.MaxToolRounds > MaxAllowedToolRounds {
		return fmt.Errorf("%w: %d (must be in [1, %d])",
			ErrInvalidMaxToolRounds, c.MaxToolRounds, MaxAllowedToolRounds)
	}
	u, err := url.Parse(c.OddsBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidOddsBaseURL, c.OddsBaseURL)
	}
	return nil
}

// ValidateServe checks invariants required in serve and ask modes, on top of
// Validate. The API key is only required when the model backend is actually
// called, so offline commands (version) skip this.
func (c *Config) ValidateServe() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}
