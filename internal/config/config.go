package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/notify"
)

// Configuration represents the automaker CLI tool configuration
type Configuration struct {
	DefaultModel string          `koanf:"default_model" validate:"required"`
	LogLevel     string          `koanf:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	GraceTimeout int             `koanf:"grace_timeout" validate:"min=1,max=600"` // seconds between SIGTERM and SIGKILL
	NATS         NATSConfig      `koanf:"nats"`
	Providers    ProvidersConfig `koanf:"providers"`
	Notify       notify.Config   `koanf:"notify"`
}

// NATSConfig configures the event bus connection. When Embedded is true the
// serve command runs an in-process NATS server on Host:Port instead of
// connecting to an external one.
type NATSConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	Embedded bool   `koanf:"embedded"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Codex     CLIProviderConfig `koanf:"codex"`
	Gemini    CLIProviderConfig `koanf:"gemini"`
	Anthropic AnthropicConfig   `koanf:"anthropic"`
	Browser   BrowserConfig     `koanf:"browser"`
}

// CLIProviderConfig configures a CLI-backed provider binary.
type CLIProviderConfig struct {
	Cmd  string   `koanf:"cmd" validate:"required"`
	Args []string `koanf:"args"`
}

// AnthropicConfig configures the SDK-backed provider. An empty APIKey falls
// back to the ANTHROPIC_API_KEY environment variable at execution time.
type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
}

// BrowserConfig configures the browser-automated provider. URL empty means
// the provider is not registered.
type BrowserConfig struct {
	URL              string `koanf:"url"`
	ChromePath       string `koanf:"chrome_path"`
	PromptSelector   string `koanf:"prompt_selector"`
	SendSelector     string `koanf:"send_selector"`
	ResponseSelector string `koanf:"response_selector"`
	BusySelector     string `koanf:"busy_selector"`
	PollIntervalMS   int    `koanf:"poll_interval_ms" validate:"omitempty,min=50"`
}

// Load loads configuration from global, local, and environment sources
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	// Apply defaults first
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Load global config if it exists
	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalPath := filepath.Join(homeDir, ".automaker", "config.json")
		if _, err := os.Stat(globalPath); err == nil {
			if err := k.Load(file.Provider(globalPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
		}
	}

	// Load local config if it exists
	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			if err := k.Load(file.Provider(localConfigPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load local config: %w", err)
			}
		}
	}

	// Override with environment variables (highest priority)
	k.Load(env.Provider("AUTOMAKER_", ".", envTransform), nil)

	// Unmarshal into struct
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envTransform converts environment variable names to config keys. A double
// underscore separates nesting levels so single underscores survive inside
// key names.
// Example: AUTOMAKER_DEFAULT_MODEL -> default_model
// Example: AUTOMAKER_NATS__PORT    -> nats.port
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "AUTOMAKER_"))
	return strings.ReplaceAll(key, "__", ".")
}

// GraceDuration returns the configured SIGTERM-to-SIGKILL grace period.
func (c *Configuration) GraceDuration() time.Duration {
	return time.Duration(c.GraceTimeout) * time.Second
}
