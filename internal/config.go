package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingSecret     = errors.New("github secret is required (github.secret or GITHUB_SECRET)")
	ErrMissingWebhookURL = errors.New("discord webhook url is required (discord.webhook_url or DISCORD_WEBHOOK_URL)")
)

// Config represents the application configuration.
type Config struct {
	// Server holds server-specific configuration.
	Server ServerConfig `yaml:"server"`
	// GitHub configures the inbound webhook endpoint.
	GitHub GitHubConfig `yaml:"github"`
	// Discord configures the outbound webhook.
	Discord DiscordConfig `yaml:"discord"`
	// Locale selects the message catalog.
	Locale string `yaml:"locale"`
	// Filters mute notable events.
	Filters     []Filter `yaml:"filters"`
	DebugEvents bool     `yaml:"debug_events"`
}

type ServerConfig struct {
	Port           int    `yaml:"port"`
	ReadTimeoutMS  int64  `yaml:"read_timeout_ms"`
	WriteTimeoutMS int64  `yaml:"write_timeout_ms"`
	IdleTimeoutMS  int64  `yaml:"idle_timeout_ms"`
	ReadHeaderMS   int64  `yaml:"read_header_timeout_ms"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsPath    string `yaml:"metrics_path"`
	HealthPath     string `yaml:"health_path"`
}

type GitHubConfig struct {
	Path   string `yaml:"path"`
	Secret string `yaml:"secret"`
}

// DiscordConfig holds the destination webhook and the sender overrides.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	TimeoutMS  int64  `yaml:"timeout_ms"`
	Username   string `yaml:"username"`
	AvatarURL  string `yaml:"avatar_url"`
	// Driver is "http" (default) or "gochannel", which only logs messages.
	Driver string `yaml:"driver"`
}

// LoadConfig loads the configuration from a YAML file.
// It expands environment variables, falls back to the well-known variables
// for unset secrets, and applies default values. A missing file is not an
// error, so the environment alone can configure the relay.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	filters, err := normalizeFilters(cfg.Filters)
	if err != nil {
		return cfg, err
	}
	cfg.Filters = filters
	return cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GitHub.Secret) == "" {
		return ErrMissingSecret
	}
	return c.ValidateDelivery()
}

// ValidateDelivery checks only the outbound side, for runs that receive
// events without a signature.
func (c Config) ValidateDelivery() error {
	if strings.TrimSpace(c.Discord.WebhookURL) == "" {
		return ErrMissingWebhookURL
	}
	return nil
}

func applyEnv(cfg *Config) {
	if cfg.GitHub.Secret == "" {
		cfg.GitHub.Secret = os.Getenv("GITHUB_SECRET")
	}
	if cfg.Discord.WebhookURL == "" {
		cfg.Discord.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if cfg.Locale == "" {
		cfg.Locale = os.Getenv("GITCORD_LOCALE")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutMS == 0 {
		cfg.Server.ReadTimeoutMS = 5000
	}
	if cfg.Server.WriteTimeoutMS == 0 {
		cfg.Server.WriteTimeoutMS = 15000
	}
	if cfg.Server.IdleTimeoutMS == 0 {
		cfg.Server.IdleTimeoutMS = 60000
	}
	if cfg.Server.ReadHeaderMS == 0 {
		cfg.Server.ReadHeaderMS = 5000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.Server.HealthPath == "" {
		cfg.Server.HealthPath = "/healthz"
	}
	if cfg.GitHub.Path == "" {
		cfg.GitHub.Path = "/webhooks/github"
	}
	if cfg.Discord.TimeoutMS == 0 {
		cfg.Discord.TimeoutMS = 10000
	}
	if cfg.Discord.Driver == "" {
		cfg.Discord.Driver = "http"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
}

func normalizeFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, 0, len(filters))
	for i := range filters {
		filter := filters[i]
		filter.When = strings.TrimSpace(filter.When)
		if filter.When == "" {
			return nil, fmt.Errorf("filter %d is missing when", i)
		}
		if len(filter.Events) > 0 {
			events := make([]string, 0, len(filter.Events))
			for _, event := range filter.Events {
				trimmed := strings.TrimSpace(event)
				if trimmed != "" {
					events = append(events, trimmed)
				}
			}
			filter.Events = events
		}
		out = append(out, filter)
	}
	return out, nil
}
