// Package config loads PlayForge configuration from YAML with sane
// defaults: construct the default Config first, then overlay the file so
// absent keys keep their defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionConfig tunes the session registry.
type SessionConfig struct {
	// TTL bounds each session's lifetime from creation.
	TTL time.Duration `yaml:"ttl"`
	// MaxPerUser caps concurrent sessions per user.
	MaxPerUser int `yaml:"max_per_user"`
	// ReapInterval is the period of the expiry sweep.
	ReapInterval time.Duration `yaml:"reap_interval"`
}

// ProvidersConfig carries the credentials and model choices of the
// external collaborators. Empty keys leave the matching step degraded or,
// for required collaborators, unconfigured.
type ProvidersConfig struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	WebstockAPIKey  string `yaml:"webstock_api_key"`
	ClipdropAPIKey  string `yaml:"clipdrop_api_key"`

	AnalyzerModel string `yaml:"analyzer_model"`
	CodegenModel  string `yaml:"codegen_model"`
	ImageModel    string `yaml:"image_model"`
}

// RelayConfig tunes the websocket event relay.
type RelayConfig struct {
	// SendBuffer is the per-client outbound queue length; a client that
	// falls this far behind is dropped.
	SendBuffer int `yaml:"send_buffer"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Config is the root configuration document.
type Config struct {
	Session   SessionConfig   `yaml:"session"`
	Providers ProvidersConfig `yaml:"providers"`
	Relay     RelayConfig     `yaml:"relay"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			TTL:          2 * time.Hour,
			MaxPerUser:   3,
			ReapInterval: 5 * time.Minute,
		},
		Relay: RelayConfig{
			SendBuffer: 16,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path and overlays it onto the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
