// Package config loads the YAML configuration, expands ${VAR} references
// from the environment, and validates the result. All secrets (panel key,
// bridge token, monitoring bot token) are expected to arrive via environment
// expansion rather than being committed in the file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PouryDev/support-telegram-account/internal/telegram"
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// such as "10s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Heartbeat  HeartbeatConfig  `yaml:"heartbeat"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Bind            string   `yaml:"bind"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds the shared secret the panel presents on every request.
type AuthConfig struct {
	APIKey string `yaml:"api_key" validate:"required"`
}

// TelegramConfig holds the account bridge settings.
type TelegramConfig struct {
	APIURL      string               `yaml:"api_url" validate:"required,url"`
	Token       string               `yaml:"token" validate:"required"`
	BotUsername string               `yaml:"bot_username" validate:"required"`
	Proxy       telegram.ProxyConfig `yaml:"proxy"`
}

// MonitoringConfig holds the alert sink settings. An empty bot token
// disables alerting.
type MonitoringConfig struct {
	BotToken string   `yaml:"bot_token"`
	GroupID  int64    `yaml:"group_id"`
	Mentions []string `yaml:"mentions"`
	APIURL   string   `yaml:"api_url"`
}

// HeartbeatConfig holds the liveness reporter settings.
type HeartbeatConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// TracingConfig holds the optional OTLP exporter settings. An empty endpoint
// leaves tracing disabled.
type TracingConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Server.Bind == "" {
		c.Server.Bind = "0.0.0.0:8080"
	}
	if c.Heartbeat.Schedule == "" {
		c.Heartbeat.Schedule = "*/5 * * * *"
	}
	if c.Monitoring.APIURL == "" {
		c.Monitoring.APIURL = "https://api.telegram.org"
	}
}
